// Package components renders tables and bars for CLI output.
package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/counsel/internal/ui/theme"
)

// Column describes one table column.
type Column struct {
	Title string
	Width int  // 0 sizes the column to its widest cell
	Right bool // right-align, for numbers
}

// Table is a plain text table with styled cells. Cells may already
// contain ANSI styling; widths are measured on visible text.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// AddRow appends a row. Missing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

func (t *Table) widths() []int {
	w := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		w[i] = c.Width
		if w[i] > 0 {
			continue
		}
		w[i] = lipgloss.Width(c.Title)
		for _, r := range t.Rows {
			if i < len(r) {
				w[i] = max(w[i], lipgloss.Width(r[i]))
			}
		}
	}
	return w
}

// View renders the header, a rule and every row.
func (t *Table) View() string {
	widths := t.widths()
	var b strings.Builder

	header := make([]string, len(t.Columns))
	total := 0
	for i, c := range t.Columns {
		header[i] = theme.Header.Render(pad(c.Title, widths[i], c.Right))
		total += widths[i]
	}
	total += 2 * max(len(t.Columns)-1, 0)
	b.WriteString(strings.Join(header, "  "))
	b.WriteByte('\n')
	b.WriteString(theme.Rule.Render(strings.Repeat("─", total)))
	b.WriteByte('\n')

	for _, r := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cell := ""
			if i < len(r) {
				cell = r[i]
			}
			cells[i] = pad(cell, widths[i], c.Right)
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// pad fits s into width visible cells, truncating plain text that is too
// long.
func pad(s string, width int, right bool) string {
	w := lipgloss.Width(s)
	if w > width {
		if w == len(s) && width > 1 {
			return s[:width-1] + "…"
		}
		return s
	}
	fill := strings.Repeat(" ", width-w)
	if right {
		return fill + s
	}
	return s + fill
}
