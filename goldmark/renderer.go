package goldmark

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/watsonx"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Renderer turns markdown into styled terminal text.
type Renderer struct {
	parser parser.Parser

	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	code      lipgloss.Style
	quote     lipgloss.Style
	underline lipgloss.Style
}

// New returns a Renderer using theme colors.
func New(theme watsonx.Theme) *Renderer {
	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.TaskList))
	return &Renderer{
		parser:    md.Parser(),
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		strike:    lipgloss.NewStyle().Strikethrough(true),
		heading:   lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		code:      lipgloss.NewStyle().Foreground(ansiColor(theme.Code)),
		quote:     lipgloss.NewStyle().Foreground(ansiColor(theme.Agent)),
		underline: lipgloss.NewStyle().Underline(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

// Render parses source and returns styled output wrapped to width.
func (r *Renderer) Render(source string, width int) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	src := []byte(source)
	doc := r.parser.Parse(text.NewReader(src))

	var buf bytes.Buffer
	r.blocks(doc, src, width, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

func (r *Renderer) blocks(node ast.Node, src []byte, width int, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.block(c, src, width, buf)
		if c.NextSibling() != nil && !isHTML(c) {
			buf.WriteString("\n")
		}
	}
}

func isHTML(n ast.Node) bool {
	_, ok := n.(*ast.HTMLBlock)
	return ok
}

func (r *Renderer) block(node ast.Node, src []byte, width int, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		r.wrap(buf, r.inlines(n, src), width)

	case *ast.Heading:
		r.wrap(buf, r.heading.Render(r.inlines(n, src)), width)

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(src)); lang != "" {
			buf.WriteString(r.muted.Render(lang) + "\n")
		}
		r.codeLines(n, src, buf)

	case *ast.CodeBlock:
		r.codeLines(n, src, buf)

	case *ast.Blockquote:
		var inner bytes.Buffer
		r.blocks(n, src, max(width-2, 10), &inner)
		bar := r.quote.Render("▌") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			buf.WriteString(bar + line + "\n")
		}

	case *ast.List:
		r.list(n, src, width, buf, 0)

	case *ast.ThematicBreak:
		buf.WriteString(r.muted.Render(strings.Repeat("─", min(width, defaultWidth))) + "\n")

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}

	default:
		r.blocks(node, src, width, buf)
	}
}

func (r *Renderer) wrap(buf *bytes.Buffer, s string, width int) {
	buf.WriteString(lipgloss.NewStyle().Width(width).Render(s))
	buf.WriteString("\n")
}

func (r *Renderer) codeLines(n ast.Node, src []byte, buf *bytes.Buffer) {
	gutter := r.code.Render("│") + " "
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.WriteString(gutter + strings.TrimRight(string(seg.Value(src)), "\n") + "\n")
	}
}

func (r *Renderer) list(node *ast.List, src []byte, width int, buf *bytes.Buffer, depth int) {
	indent := strings.Repeat("  ", depth)
	n := node.Start
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "• "
		if node.IsOrdered() {
			marker = fmt.Sprintf("%d. ", n)
			n++
		}

		var content bytes.Buffer
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				content.WriteString(r.inlines(in, src))
			case *ast.List:
				if content.Len() > 0 {
					r.item(buf, indent, marker, content.String(), width)
					content.Reset()
				}
				r.list(in, src, width, buf, depth+1)
				marker = strings.Repeat(" ", lipgloss.Width(marker))
			default:
				r.block(ic, src, width, &content)
			}
		}
		if content.Len() > 0 {
			r.item(buf, indent, marker, content.String(), width)
		}
	}
}

// item writes one list entry, indenting continuation lines under the
// marker.
func (r *Renderer) item(buf *bytes.Buffer, indent, marker, content string, width int) {
	prefix := indent + marker
	pad := lipgloss.Width(prefix)
	wrapped := lipgloss.NewStyle().Width(max(width-pad, 10)).Render(content)
	for i, line := range strings.Split(wrapped, "\n") {
		if i == 0 {
			buf.WriteString(prefix + line + "\n")
			continue
		}
		buf.WriteString(strings.Repeat(" ", pad) + line + "\n")
	}
}

func (r *Renderer) inlines(node ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.inline(c, src, &buf)
	}
	return buf.String()
}

func (r *Renderer) inline(node ast.Node, src []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(src))
		switch {
		case n.HardLineBreak():
			buf.WriteByte('\n')
		case n.SoftLineBreak():
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		if n.Level == 1 {
			buf.WriteString(r.italic.Render(r.inlines(n, src)))
		} else {
			buf.WriteString(r.bold.Render(r.inlines(n, src)))
		}

	case *east.Strikethrough:
		buf.WriteString(r.strike.Render(r.inlines(n, src)))

	case *east.TaskCheckBox:
		if n.IsChecked {
			buf.WriteString("[x] ")
		} else {
			buf.WriteString("[ ] ")
		}

	case *ast.CodeSpan:
		buf.WriteString(r.code.Render(r.inlines(n, src)))

	case *ast.Link:
		buf.WriteString(r.underline.Render(r.inlines(n, src)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.AutoLink:
		buf.WriteString(r.underline.Render(string(n.URL(src))))

	case *ast.Image:
		buf.WriteString(r.underline.Render(r.inlines(n, src)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(src))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.inline(c, src, buf)
		}
	}
}
