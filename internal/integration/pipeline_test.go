// Package integration exercises the full pipeline: bytes in, rendered
// analyses out.
package integration

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustwasm/twiggy-sub000/internal/analyze"
	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/options"
	"github.com/rustwasm/twiggy-sub000/internal/parser"
)

// testModule is a minimal wasm module: one type, two functions where the
// exported first calls the second, and a name section naming them.
func testModule() []byte {
	sec := func(id byte, payload ...byte) []byte {
		return append([]byte{id, byte(len(payload))}, payload...)
	}

	module := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	module = append(module, sec(1, 0x01, 0x60, 0x00, 0x00)...)
	module = append(module, sec(3, 0x02, 0x00, 0x00)...)
	module = append(module, sec(7, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00)...)
	module = append(module, sec(10,
		0x02,
		0x04, 0x00, 0x10, 0x01, 0x0B, // main = { call 1 }
		0x02, 0x00, 0x0B, // helper = { }
	)...)
	module = append(module, sec(0,
		0x04, 'n', 'a', 'm', 'e',
		0x01, 0x0F,
		0x02,
		0x00, 0x04, 'm', 'a', 'i', 'n',
		0x01, 0x06, 'h', 'e', 'l', 'p', 'e', 'r',
	)...)
	return module
}

func parseTestModule(t *testing.T) *ir.Graph {
	t.Helper()
	g, err := parser.ParseData(testModule())
	require.NoError(t, err)
	return g
}

func TestPipeline_AllAnalysesAllFormats(t *testing.T) {
	g := parseTestModule(t)

	results := map[string]analyze.Emit{}

	var err error
	results["top"], err = analyze.Top(g, options.NewTop())
	require.NoError(t, err)
	results["dominators"], err = analyze.Dominators(g, options.NewDominators())
	require.NoError(t, err)
	results["paths"], err = analyze.Paths(g, options.NewPaths())
	require.NoError(t, err)
	results["monos"], err = analyze.Monos(g, options.NewMonos())
	require.NoError(t, err)
	results["garbage"], err = analyze.Garbage(g, options.NewGarbage())
	require.NoError(t, err)

	for name, result := range results {
		for _, format := range []analyze.Format{analyze.FormatText, analyze.FormatJSON, analyze.FormatCSV} {
			var buf bytes.Buffer
			require.NoError(t, analyze.Write(result, g, format, &buf), "%s/%s", name, format)
			assert.NotEmpty(t, buf.String(), "%s/%s", name, format)

			if format == analyze.FormatJSON {
				assert.True(t, json.Valid(buf.Bytes()), "%s emits valid JSON: %s", name, buf.String())
			}
		}
	}
}

func TestPipeline_RetainedSizesAddUp(t *testing.T) {
	g := parseTestModule(t)
	g.ComputeRetainedSizes()

	var reachableSum uint64
	idoms := g.ImmediateDominators()
	for _, it := range g.Iter() {
		if _, ok := idoms[it.Id()]; ok {
			reachableSum += uint64(it.Size())
		}
	}
	assert.Equal(t, reachableSum, uint64(g.RetainedSize(g.MetaRoot())))
	assert.LessOrEqual(t, uint64(g.RetainedSize(g.MetaRoot())), uint64(g.Size()))
}

func TestPipeline_DiffAgainstSelfIsEmpty(t *testing.T) {
	oldGraph := parseTestModule(t)
	newGraph := parseTestModule(t)

	result, err := analyze.Diff(oldGraph, newGraph, options.NewDiff())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(newGraph, &buf))
	assert.Contains(t, buf.String(), "Σ [0 Total Rows]")
	assert.Contains(t, buf.String(), "+0")
}

func TestPipeline_PathsFindsCallChain(t *testing.T) {
	g := parseTestModule(t)

	opts := options.NewPaths()
	opts.Functions = []string{"helper"}

	result, err := analyze.Paths(g, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	out := buf.String()

	// helper is retained through its declaration, which main's body calls.
	assert.Contains(t, out, "helper")
	assert.Contains(t, out, "main")
}
