package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const maxCellWidth = 60

// writeTable prints rows in aligned columns. Cells are sanitized, flattened
// to one line and clipped. Widths are measured in terminal cells so wide
// runes line up.
func writeTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	cells := func(row []string) []string {
		out := make([]string, len(headers))
		for i := range out {
			if i < len(row) {
				cell := strings.ReplaceAll(sanitize(row[i]), "\n", " ")
				out[i] = runewidth.Truncate(cell, maxCellWidth, "…")
			}
		}
		return out
	}
	table := [][]string{cells(headers)}
	for _, r := range rows {
		table = append(table, cells(r))
	}

	widths := make([]int, len(headers))
	for _, row := range table {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for _, row := range table {
		var b strings.Builder
		for i, cell := range row {
			if i < len(row)-1 {
				cell = runewidth.FillRight(cell, widths[i]+2)
			}
			b.WriteString(cell)
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}
