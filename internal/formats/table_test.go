package formats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Render(t *testing.T) {
	tbl := NewTable(
		Column{AlignRight, "Bytes"},
		Column{AlignLeft, "Item"},
	)
	tbl.AddRow("100", "alpha")
	tbl.AddRow("7", "b")

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteTo(&buf))

	got := buf.String()
	lines := bytes.Split([]byte(got), []byte("\n"))
	assert.Equal(t, " Bytes │ Item", string(lines[0]))
	assert.Equal(t, "───────┼──────", string(lines[1]))
	assert.Equal(t, "   100 ┊ alpha", string(lines[2]))
	assert.Equal(t, "     7 ┊ b", string(lines[3]))
}

func TestTable_ColumnWidthTracksWidestCell(t *testing.T) {
	tbl := NewTable(
		Column{AlignRight, "N"},
		Column{AlignLeft, "Name"},
	)
	tbl.AddRow("123456", "x")

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteTo(&buf))
	assert.Contains(t, buf.String(), " 123456 ┊ x\n")
	assert.Contains(t, buf.String(), " N      │ Name\n")
}

func TestTable_PanicsOnWidthMismatch(t *testing.T) {
	tbl := NewTable(Column{AlignLeft, "A"}, Column{AlignLeft, "B"})
	assert.Panics(t, func() { tbl.AddRow("only one") })
}
