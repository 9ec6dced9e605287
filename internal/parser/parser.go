// Package parser turns binary files into ir graphs. The concrete walkers
// live in the wasm and elf subpackages; this package picks one by magic
// bytes.
package parser

import (
	"bytes"
	"os"

	apperrors "github.com/rustwasm/twiggy-sub000/pkg/errors"

	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/parser/elf"
	"github.com/rustwasm/twiggy-sub000/internal/parser/wasm"
)

// Parser lowers a byte buffer into an ir graph.
type Parser interface {
	// Parse drives an ir.Builder with the file's items, roots, edges, and
	// data ranges, and returns the frozen graph.
	Parse(data []byte) (*ir.Graph, error)

	// Name returns the parser's format name.
	Name() string
}

var (
	wasmMagic = []byte{0x00, 'a', 's', 'm'}
	elfMagic  = []byte{0x7f, 'E', 'L', 'F'}
)

// ForData returns the parser matching the buffer's magic bytes.
func ForData(data []byte) (Parser, error) {
	switch {
	case bytes.HasPrefix(data, wasmMagic):
		return wasm.New(), nil
	case bytes.HasPrefix(data, elfMagic):
		return elf.New(), nil
	default:
		return nil, apperrors.New(apperrors.CodeParseError, "unrecognized file format")
	}
}

// ParseData parses an in-memory binary.
func ParseData(data []byte) (*ir.Graph, error) {
	p, err := ForData(data)
	if err != nil {
		return nil, err
	}
	return p.Parse(data)
}

// ParseFile reads and parses a binary from disk.
func ParseFile(path string) (*ir.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeParseError, "reading "+path, err)
	}
	return ParseData(data)
}
