package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rustwasm/twiggy-sub000/pkg/errors"
)

func TestForData_Wasm(t *testing.T) {
	p, err := ForData([]byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, "wasm", p.Name())
}

func TestForData_Elf(t *testing.T) {
	p, err := ForData([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, "elf", p.Name())
}

func TestForData_Unknown(t *testing.T) {
	_, err := ForData([]byte("MZ\x90\x00"))
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
}

func TestParseData_EmptyWasmModule(t *testing.T) {
	g, err := ParseData([]byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint32(8), g.Size())
	assert.Equal(t, 1, g.Len(), "only the meta root")
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile("/nonexistent/input.wasm")
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
}
