// Package formats implements the text-table and streaming-JSON output
// primitives shared by all analysis emitters.
package formats

import (
	"io"
	"strings"
)

// Align is a table column's alignment.
type Align int

const (
	// AlignLeft pads cells on the right.
	AlignLeft Align = iota
	// AlignRight pads cells on the left.
	AlignRight
)

// Column is a table column header with its alignment.
type Column struct {
	Align Align
	Title string
}

// Table accumulates rows and renders them as an aligned text table with
// box-drawing separators.
type Table struct {
	header []Column
	rows   [][]string
}

// NewTable creates a table with the given header columns.
func NewTable(header ...Column) *Table {
	if len(header) == 0 {
		panic("formats: a table needs at least one column")
	}
	return &Table{header: header}
}

// AddRow appends a row. The cell count must match the header.
func (t *Table) AddRow(cells ...string) {
	if len(cells) != len(t.header) {
		panic("formats: row width does not match the table header")
	}
	t.rows = append(t.rows, cells)
}

// WriteTo renders the table.
func (t *Table) WriteTo(w io.Writer) error {
	maxs := make([]int, len(t.header))
	for i, h := range t.header {
		maxs[i] = len(h.Title)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if len(cell) > maxs[i] {
				maxs[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	last := len(t.header) - 1

	for i, h := range t.header {
		if i == 0 {
			b.WriteString(" ")
		} else {
			b.WriteString(" │ ")
		}
		b.WriteString(h.Title)
		if i != last {
			b.WriteString(strings.Repeat(" ", maxs[i]-len(h.Title)))
		}
	}
	b.WriteString("\n")

	for i, max := range maxs {
		if i == 0 {
			b.WriteString("─")
		} else {
			b.WriteString("─┼─")
		}
		b.WriteString(strings.Repeat("─", max))
	}
	b.WriteString("\n")

	for _, row := range t.rows {
		for i, cell := range row {
			if i == 0 {
				b.WriteString(" ")
			} else {
				b.WriteString(" ┊ ")
			}
			switch t.header[i].Align {
			case AlignLeft:
				b.WriteString(cell)
				if i != last {
					b.WriteString(strings.Repeat(" ", maxs[i]-len(cell)))
				}
			case AlignRight:
				b.WriteString(strings.Repeat(" ", maxs[i]-len(cell)))
				b.WriteString(cell)
			}
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
