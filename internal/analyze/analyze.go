// Package analyze implements the size analyses over a frozen ir.Graph: top,
// dominators, paths, monos, garbage, and diff. Each analysis returns a
// result value implementing Emit; the caller picks the output format.
package analyze

import (
	"fmt"
	"io"

	apperrors "github.com/rustwasm/twiggy-sub000/pkg/errors"

	"github.com/rustwasm/twiggy-sub000/internal/ir"
)

// Emit is implemented by every analysis result. The graph handed to the
// emit methods must be the graph the analysis ran over.
type Emit interface {
	// EmitText renders an aligned text table.
	EmitText(g *ir.Graph, w io.Writer) error
	// EmitJSON streams a JSON document.
	EmitJSON(g *ir.Graph, w io.Writer) error
	// EmitCSV writes one CSV record per visible row.
	EmitCSV(g *ir.Graph, w io.Writer) error
}

// Format selects an output format.
type Format string

const (
	// FormatText is the human-readable table format.
	FormatText Format = "text"
	// FormatJSON is the machine-readable JSON format.
	FormatJSON Format = "json"
	// FormatCSV is the comma-separated-values format.
	FormatCSV Format = "csv"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatCSV:
		return Format(s), nil
	default:
		return "", apperrors.Newf(apperrors.CodeInvalidInput, "unknown output format %q", s)
	}
}

// Write renders the result to w in the given format.
func Write(result Emit, g *ir.Graph, format Format, w io.Writer) error {
	var err error
	switch format {
	case FormatJSON:
		err = result.EmitJSON(g, w)
	case FormatCSV:
		err = result.EmitCSV(g, w)
	default:
		err = result.EmitText(g, w)
	}
	if err != nil {
		return apperrors.Wrap(apperrors.CodeWriteError, fmt.Sprintf("emitting %s output", format), err)
	}
	return nil
}
