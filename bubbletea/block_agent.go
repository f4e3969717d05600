package bubbletea

import (
	"strings"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/goldmark"
)

var _ MessageBlock = (*AgentBlock)(nil)

// AgentBlock renders a streamed agent reply as markdown under a name
// header. Text up to the last paragraph break outside a code fence is
// rendered once per width and cached; only the tail is re-rendered as
// fragments arrive.
type AgentBlock struct {
	name     string
	content  strings.Builder
	renderer *goldmark.Renderer
	styles   Styles

	stable        string
	stableByWidth map[int]string
}

// NewAgentBlock creates an empty AgentBlock for the agent called name.
func NewAgentBlock(name string, theme watsonx.Theme, styles Styles) *AgentBlock {
	return &AgentBlock{
		name:          name,
		renderer:      goldmark.New(theme),
		styles:        styles,
		stableByWidth: make(map[int]string),
	}
}

// Append adds reply text.
func (b *AgentBlock) Append(text string) {
	b.content.WriteString(text)
	b.promote()
}

// Text returns the raw reply text received so far.
func (b *AgentBlock) Text() string { return b.content.String() }

func (b *AgentBlock) View(width int) string {
	header := b.styles.Agent.Render(b.name)
	body := b.body(width)
	if body == "" {
		return header
	}
	return header + "\n" + body
}

func (b *AgentBlock) body(width int) string {
	stable := b.renderStable(width)
	tail := strings.TrimPrefix(b.content.String(), b.stable)
	tail = strings.TrimPrefix(tail, "\n\n")
	if openFence(tail) {
		tail += "\n```"
	}
	if strings.TrimSpace(tail) == "" {
		return stable
	}
	rendered := b.renderer.Render(tail, width)
	if stable == "" {
		return rendered
	}
	return strings.TrimRight(stable, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// promote advances the stable prefix to the last "\n\n" whose prefix has
// every code fence closed.
func (b *AgentBlock) promote() {
	raw := b.content.String()
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		if candidate := raw[:idx]; !openFence(candidate) {
			if candidate != b.stable {
				b.stable = candidate
				clear(b.stableByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *AgentBlock) renderStable(width int) string {
	if width <= 0 || b.stable == "" {
		return ""
	}
	if cached, ok := b.stableByWidth[width]; ok {
		return cached
	}
	rendered := b.renderer.Render(b.stable, width)
	b.stableByWidth[width] = rendered
	return rendered
}

// openFence reports an odd number of "```" markers in s.
func openFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
