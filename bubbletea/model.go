package bubbletea

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/watsonx"
	"github.com/rivo/uniseg"
)

var _ tea.Model = Model{}

// Config holds display metadata for the status line.
type Config struct {
	AgentName string
}

// Model is the Bubble Tea model for the agent chat TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	reply  ReplyFunc
	conv   *watsonx.Conversation
	theme  watsonx.Theme
	styles Styles
	config Config
	now    func() time.Time

	blocks []MessageBlock
	active *AgentBlock

	running    bool
	cancel     context.CancelFunc
	fragmentCh chan watsonx.Fragment
	doneCh     chan ReplyDoneMsg
	err        error
	ready      bool
}

// New creates a chat Model that sends user input through reply and records
// every turn in conv.
func New(reply ReplyFunc, conv *watsonx.Conversation, theme watsonx.Theme, config Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Message the agent..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	if config.AgentName == "" {
		config.AgentName = conv.AgentID
	}
	return Model{
		Input:  ti,
		reply:  reply,
		conv:   conv,
		theme:  theme,
		styles: NewStyles(theme),
		config: config,
		now:    time.Now,
	}
}

// Running returns whether a reply is currently streaming.
func (m Model) Running() bool { return m.running }

// Err returns the last reply error, if any.
func (m Model) Err() error { return m.err }

// Conversation returns the transcript the model records into.
func (m Model) Conversation() *watsonx.Conversation { return m.conv }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case FragmentMsg:
		if m.active == nil {
			m.active = NewAgentBlock(m.config.AgentName, m.theme, m.styles)
			m.blocks = append(m.blocks, m.active)
		}
		m.active.Append(msg.Fragment.Text)
		m.refresh()
		if m.fragmentCh != nil {
			return m, listenForFragment(m.fragmentCh, m.doneCh)
		}
		return m, nil

	case ReplyDoneMsg:
		m = m.finishReply(msg)
		m.refresh()
		cmd := m.Input.Focus()
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2
	vpHeight := msg.Height - inputH - statusHeight - borderHeight

	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderConversation()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.refresh()

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)
	}

	// Character keys go to the input only so that j/k type rather than
	// scroll.
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	m.conv.Append(watsonx.RoleUser, text, m.now())
	m.blocks = append(m.blocks, NewUserBlock(text, m.styles))
	m.active = nil
	m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.fragmentCh = make(chan watsonx.Fragment, 256)
	m.doneCh = make(chan ReplyDoneMsg, 1)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startReply(ctx, m.reply, text, m.conv.ThreadID, m.fragmentCh, m.doneCh),
		listenForFragment(m.fragmentCh, m.doneCh),
	)
}

// finishReply records the agent turn and carries the thread id forward.
// A cancelled reply keeps whatever text arrived but reports no error.
func (m Model) finishReply(msg ReplyDoneMsg) Model {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
	m.cancel = nil
	m.fragmentCh = nil
	m.doneCh = nil

	if msg.Outcome.ThreadID != "" {
		m.conv.ThreadID = msg.Outcome.ThreadID
	}

	text := msg.Outcome.Text
	if m.active != nil && text == "" {
		text = m.active.Text()
	}
	if text != "" {
		if m.active == nil {
			m.active = NewAgentBlock(m.config.AgentName, m.theme, m.styles)
			m.active.Append(text)
			m.blocks = append(m.blocks, m.active)
		}
		m.conv.Append(watsonx.RoleAgent, text, m.now())
	}
	m.active = nil

	if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
		m.err = msg.Err
		m.blocks = append(m.blocks, NewErrorBlock(msg.Err, m.styles))
	}
	return m
}

// renderConversation creates blocks for turns recorded before the TUI
// started.
func (m Model) renderConversation() Model {
	for _, turn := range m.conv.Turns {
		switch turn.Role {
		case watsonx.RoleUser:
			m.blocks = append(m.blocks, NewUserBlock(turn.Text, m.styles))
		case watsonx.RoleAgent:
			b := NewAgentBlock(m.config.AgentName, m.theme, m.styles)
			b.Append(turn.Text)
			m.blocks = append(m.blocks, b)
		}
	}
	return m
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// statusLine shows the reply state on the left and the agent and thread on
// the right, padded to the viewport width.
func (m Model) statusLine() string {
	var left string
	switch {
	case m.running:
		left = "Waiting for " + m.config.AgentName + "..."
	case m.err != nil:
		return m.styles.Error.Render("Error: " + m.err.Error())
	default:
		left = "Enter to send, Ctrl+C to quit"
	}

	right := m.config.AgentName
	if m.conv.ThreadID != "" {
		right += " · thread " + m.conv.ThreadID
	}

	gap := m.Viewport.Width - uniseg.StringWidth(left) - uniseg.StringWidth(right)
	if gap < 1 {
		return m.styles.Muted.Render(left)
	}
	return m.styles.Muted.Render(left + strings.Repeat(" ", gap) + right)
}

// startReply runs the reply and signals completion.
func startReply(ctx context.Context, reply ReplyFunc, text, threadID string, fragmentCh chan<- watsonx.Fragment, doneCh chan<- ReplyDoneMsg) tea.Cmd {
	return func() tea.Msg {
		h := watsonx.FragmentHandlerFunc(func(ctx context.Context, f watsonx.Fragment) error {
			select {
			case fragmentCh <- f:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		outcome, err := reply(ctx, text, threadID, h)
		close(fragmentCh)
		doneCh <- ReplyDoneMsg{Outcome: outcome, Err: err}
		return nil
	}
}

// listenForFragment waits for the next fragment. When the channel closes,
// it returns the ReplyDoneMsg from doneCh.
func listenForFragment(fragmentCh <-chan watsonx.Fragment, doneCh <-chan ReplyDoneMsg) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-fragmentCh
		if !ok {
			return <-doneCh
		}
		return FragmentMsg{Fragment: f}
	}
}
