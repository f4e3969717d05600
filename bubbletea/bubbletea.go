// Package bubbletea provides a Bubble Tea chat TUI for watsonx agents.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/watsonx"
)

// ReplyFunc sends message on threadID and streams the agent's reply to h.
// It blocks until the reply completes or ctx is cancelled. An empty
// threadID starts a new thread; the outcome names the thread to continue.
type ReplyFunc func(ctx context.Context, message, threadID string, h watsonx.FragmentHandler) (watsonx.StreamOutcome, error)

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) (Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		m = fm
	}
	return m, err
}

// FragmentMsg delivers one fragment of the agent's reply.
type FragmentMsg struct {
	Fragment watsonx.Fragment
}

// ReplyDoneMsg signals that the agent's reply has completed.
type ReplyDoneMsg struct {
	Outcome watsonx.StreamOutcome
	Err     error
}
