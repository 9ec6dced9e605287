package analyze

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustwasm/twiggy-sub000/internal/options"
	"github.com/rustwasm/twiggy-sub000/internal/testutil"
)

func TestDominators_WholeTree(t *testing.T) {
	g := testutil.ChainGraph()
	result, err := Dominators(g, options.NewDominators())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	require.Len(t, lines, 5, "header, rule, X, Y, Z")
	assert.Contains(t, lines[0], "Retained Bytes")
	assert.Contains(t, lines[0], "Dominator Tree")

	assert.Contains(t, lines[2], "15")
	assert.Contains(t, lines[2], "X")
	assert.NotContains(t, lines[2], "⤷")

	assert.Contains(t, lines[3], "10")
	assert.Contains(t, lines[3], "⤷ Y")

	assert.Contains(t, lines[4], "3")
	assert.Contains(t, lines[4], "    ⤷ Z") // depth 3 gets deeper indentation
}

func TestDominators_MaxRows(t *testing.T) {
	g := testutil.ChainGraph()
	opts := options.NewDominators()
	opts.MaxRows = 1

	result, err := Dominators(g, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	out := buf.String()

	assert.Contains(t, out, "X")
	assert.NotContains(t, out, "Y")
	assert.NotContains(t, out, "Z")
}

func TestDominators_MaxDepth(t *testing.T) {
	g := testutil.ChainGraph()
	opts := options.NewDominators()
	opts.MaxDepth = 2

	result, err := Dominators(g, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	out := buf.String()

	assert.Contains(t, out, "X")
	assert.Contains(t, out, "Y")
	assert.NotContains(t, out, "Z")
}

func TestDominators_UnreachableSummary(t *testing.T) {
	g := testutil.GarbageGraph()
	result, err := Dominators(g, options.NewDominators())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	out := buf.String()

	assert.Contains(t, out, "[1 Unreachable Items]")
	assert.Contains(t, out, "2.00%")
}

func TestDominators_ExactNameSeeds(t *testing.T) {
	g := testutil.ChainGraph()
	opts := options.NewDominators()
	opts.Items = []string{"Y"}

	result, err := Dominators(g, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	out := buf.String()

	assert.Contains(t, out, "Y")
	assert.Contains(t, out, "Z")
	assert.NotContains(t, out, "X")
	assert.NotContains(t, out, "Unreachable", "summary only renders for the unfiltered tree")
}

func TestDominators_RegexpSeeds(t *testing.T) {
	g := testutil.ChainGraph()
	opts := options.NewDominators()
	opts.Items = []string{"^[YZ]$"}
	opts.UsingRegexps = true

	result, err := Dominators(g, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	// Y (retained 10) sorts before Z (retained 3); each seed renders its
	// own subtree, so Z appears under Y and again as a seed.
	assert.Contains(t, lines[2], "Y")
	assert.Contains(t, lines[3], "⤷ Z")
	assert.Contains(t, lines[4], "Z")
}

func TestDominators_BadRegexp(t *testing.T) {
	g := testutil.ChainGraph()
	opts := options.NewDominators()
	opts.Items = []string{"("}
	opts.UsingRegexps = true

	_, err := Dominators(g, opts)
	assert.Error(t, err)
}

func TestDominators_EmitJSON(t *testing.T) {
	g := testutil.ChainGraph()
	result, err := Dominators(g, options.NewDominators())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitJSON(g, &buf))

	testutil.AssertJSONEqual(t, `{
		"items": [{
			"name": "<meta root>",
			"shallow_size": 0,
			"shallow_size_percent": 0,
			"retained_size": 15,
			"retained_size_percent": 15,
			"children": [{
				"name": "X",
				"shallow_size": 5,
				"shallow_size_percent": 5,
				"retained_size": 15,
				"retained_size_percent": 15,
				"children": [{
					"name": "Y",
					"shallow_size": 7,
					"shallow_size_percent": 7,
					"retained_size": 10,
					"retained_size_percent": 10,
					"children": [{
						"name": "Z",
						"shallow_size": 3,
						"shallow_size_percent": 3,
						"retained_size": 3,
						"retained_size_percent": 3
					}]
				}]
			}]
		}]
	}`, buf.String())
}

func TestDominators_EmitCSV(t *testing.T) {
	g := testutil.ChainGraph()
	result, err := Dominators(g, options.NewDominators())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitCSV(g, &buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	require.Len(t, lines, 5, "header plus meta root, X, Y, Z")
	assert.Equal(t,
		"Id,Name,ShallowSize,ShallowSizePercent,RetainedSize,RetainedSizePercent,ImmediateDominator",
		lines[0])
	assert.Contains(t, lines[1], "<meta root>")
	assert.Contains(t, lines[2], "X")
	assert.Contains(t, lines[3], "Y")
	assert.Contains(t, lines[4], "Z")
}
