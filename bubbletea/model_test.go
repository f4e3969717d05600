package bubbletea_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/watsonx"
	bt "github.com/fwojciec/watsonx/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopReply(context.Context, string, string, watsonx.FragmentHandler) (watsonx.StreamOutcome, error) {
	return watsonx.StreamOutcome{}, nil
}

func initModel(t *testing.T, reply bt.ReplyFunc, conv *watsonx.Conversation) bt.Model {
	t.Helper()
	return initModelWithSize(t, reply, conv, 80, 24)
}

func initModelWithSize(t *testing.T, reply bt.ReplyFunc, conv *watsonx.Conversation, w, h int) bt.Model {
	t.Helper()
	m := bt.New(reply, conv, watsonx.DefaultTheme(), bt.Config{AgentName: "helper"})
	return updateModel(t, m, tea.WindowSizeMsg{Width: w, Height: h})
}

func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

func typeText(t *testing.T, m bt.Model, text string) bt.Model {
	t.Helper()
	return updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestNew(t *testing.T) {
	t.Parallel()

	conv := &watsonx.Conversation{AgentID: "agent-1"}
	m := bt.New(nopReply, conv, watsonx.DefaultTheme(), bt.Config{})

	assert.False(t, m.Running())
	assert.NoError(t, m.Err())
	assert.Same(t, conv, m.Conversation())
	assert.Equal(t, "Initializing...", m.View())
}

func TestModel_Update(t *testing.T) {
	t.Parallel()

	t.Run("window size sets viewport dimensions", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopReply, &watsonx.Conversation{})
		assert.Equal(t, 80, m.Viewport.Width)
		assert.Equal(t, 20, m.Viewport.Height) // 24 - 1 - 1 - 2 = 20

		m = updateModel(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
		assert.Equal(t, 100, m.Viewport.Width)
		assert.Equal(t, 36, m.Viewport.Height)
	})

	t.Run("tiny window keeps one viewport line", func(t *testing.T) {
		t.Parallel()

		m := initModelWithSize(t, nopReply, &watsonx.Conversation{}, 20, 2)
		assert.Equal(t, 1, m.Viewport.Height)
	})

	t.Run("enter submits input and records user turn", func(t *testing.T) {
		t.Parallel()

		conv := &watsonx.Conversation{}
		m := initModel(t, nopReply, conv)
		m = typeText(t, m, "hello")

		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = updated.(bt.Model)

		assert.True(t, m.Running())
		assert.NotNil(t, cmd)
		assert.Empty(t, m.Input.Value())
		require.Len(t, conv.Turns, 1)
		assert.Equal(t, watsonx.RoleUser, conv.Turns[0].Role)
		assert.Equal(t, "hello", conv.Turns[0].Text)
		assert.Contains(t, bt.RenderContent(m), "hello")
	})

	t.Run("enter ignores blank input", func(t *testing.T) {
		t.Parallel()

		conv := &watsonx.Conversation{}
		m := initModel(t, nopReply, conv)
		m = typeText(t, m, "   ")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		assert.False(t, m.Running())
		assert.Empty(t, conv.Turns)
	})

	t.Run("fragments accumulate into one agent block", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopReply, &watsonx.Conversation{})
		m = updateModel(t, m, bt.FragmentMsg{Fragment: watsonx.Fragment{Text: "Hello"}})
		m = updateModel(t, m, bt.FragmentMsg{Fragment: watsonx.Fragment{Text: " world"}})

		content := bt.RenderContent(m)
		assert.Contains(t, content, "helper")
		assert.Contains(t, content, "Hello world")
		assert.Equal(t, 1, strings.Count(content, "helper"))
	})

	t.Run("reply done records agent turn and thread id", func(t *testing.T) {
		t.Parallel()

		conv := &watsonx.Conversation{}
		m := initModel(t, nopReply, conv)
		m = updateModel(t, m, bt.FragmentMsg{Fragment: watsonx.Fragment{Text: "Hi"}})
		m = updateModel(t, m, bt.ReplyDoneMsg{Outcome: watsonx.StreamOutcome{Text: "Hi", ThreadID: "t-1", Terminal: true}})

		assert.False(t, m.Running())
		assert.Equal(t, "t-1", conv.ThreadID)
		require.Len(t, conv.Turns, 1)
		assert.Equal(t, watsonx.RoleAgent, conv.Turns[0].Role)
		assert.Equal(t, "Hi", conv.Turns[0].Text)
		assert.Contains(t, bt.StatusLine(m), "thread t-1")
	})

	t.Run("reply done without fragments renders outcome text", func(t *testing.T) {
		t.Parallel()

		conv := &watsonx.Conversation{}
		m := initModel(t, nopReply, conv)
		m = updateModel(t, m, bt.ReplyDoneMsg{Outcome: watsonx.StreamOutcome{Text: "Whole answer"}})

		assert.Contains(t, bt.RenderContent(m), "Whole answer")
		require.Len(t, conv.Turns, 1)
	})

	t.Run("reply done keeps earlier thread id when none returned", func(t *testing.T) {
		t.Parallel()

		conv := &watsonx.Conversation{ThreadID: "t-0"}
		m := initModel(t, nopReply, conv)
		m = updateModel(t, m, bt.ReplyDoneMsg{Outcome: watsonx.StreamOutcome{Text: "ok"}})

		assert.Equal(t, "t-0", conv.ThreadID)
	})

	t.Run("reply error shows error block and status", func(t *testing.T) {
		t.Parallel()

		conv := &watsonx.Conversation{}
		m := initModel(t, nopReply, conv)
		m = updateModel(t, m, bt.ReplyDoneMsg{Err: errors.New("boom")})

		require.Error(t, m.Err())
		assert.Contains(t, bt.RenderContent(m), "Error: boom")
		assert.Contains(t, bt.StatusLine(m), "boom")
		assert.Empty(t, conv.Turns)
	})

	t.Run("cancelled reply is not an error", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopReply, &watsonx.Conversation{})
		m = updateModel(t, m, bt.ReplyDoneMsg{Err: context.Canceled})

		assert.NoError(t, m.Err())
	})

	t.Run("ctrl+c quits when idle", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopReply, &watsonx.Conversation{})
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	})

	t.Run("existing turns render on first resize", func(t *testing.T) {
		t.Parallel()

		conv := &watsonx.Conversation{Turns: []watsonx.Turn{
			{Role: watsonx.RoleUser, Text: "hello there"},
			{Role: watsonx.RoleAgent, Text: "Hi! How can I help?"},
		}}
		m := initModel(t, nopReply, conv)

		content := bt.RenderContent(m)
		assert.Contains(t, content, "hello there")
		assert.Contains(t, content, "Hi! How can I help?")
	})
}

func TestModel_StatusLine(t *testing.T) {
	t.Parallel()

	t.Run("idle shows hint and agent name", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopReply, &watsonx.Conversation{})
		line := bt.StatusLine(m)
		assert.Contains(t, line, "Enter to send")
		assert.Contains(t, line, "helper")
	})

	t.Run("narrow width drops right side", func(t *testing.T) {
		t.Parallel()

		m := initModelWithSize(t, nopReply, &watsonx.Conversation{ThreadID: "t-1"}, 20, 24)
		line := bt.StatusLine(m)
		assert.NotContains(t, line, "thread")
	})
}

func TestModel_Teatest(t *testing.T) {
	t.Parallel()

	t.Run("full reply cycle with fragment delivery", func(t *testing.T) {
		t.Parallel()

		var gotThread string
		reply := func(ctx context.Context, message, threadID string, h watsonx.FragmentHandler) (watsonx.StreamOutcome, error) {
			gotThread = threadID
			if err := h.HandleFragment(ctx, watsonx.Fragment{Text: "Hello!"}); err != nil {
				return watsonx.StreamOutcome{}, err
			}
			return watsonx.StreamOutcome{Text: "Hello!", ThreadID: "t-9", Terminal: true}, nil
		}

		conv := &watsonx.Conversation{AgentID: "agent-1"}
		m := bt.New(reply, conv, watsonx.DefaultTheme(), bt.Config{AgentName: "helper"})

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		tm.Type("hi")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Hello!")) &&
				bytes.Contains(out, []byte("Enter to send"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Running())
		assert.NoError(t, final.Err())
		assert.Empty(t, gotThread)
		assert.Equal(t, "t-9", conv.ThreadID)
		assert.Len(t, conv.Turns, 2)
	})

	t.Run("ctrl+c cancels running reply", func(t *testing.T) {
		t.Parallel()

		reply := func(ctx context.Context, _, _ string, _ watsonx.FragmentHandler) (watsonx.StreamOutcome, error) {
			<-ctx.Done()
			return watsonx.StreamOutcome{}, ctx.Err()
		}

		conv := &watsonx.Conversation{}
		m := bt.New(reply, conv, watsonx.DefaultTheme(), bt.Config{AgentName: "helper"})

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		tm.Type("wait")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Waiting for helper"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Enter to send"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.NoError(t, final.Err())
		assert.Len(t, conv.Turns, 1)
	})
}
