// Package goldmark renders markdown replies to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
package goldmark

import "github.com/fwojciec/watsonx"

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs, quotes and list items are word-wrapped to width. Code blocks
// keep their line structure.
func Render(source string, width int, theme watsonx.Theme) string {
	return New(theme).Render(source, width)
}
