package analyze

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/options"
	"github.com/rustwasm/twiggy-sub000/internal/testutil"
)

func TestMonos_BloatOfEqualInstantiations(t *testing.T) {
	// Three instantiations of size 10: total=30, max=10, avg=10,
	// avg_savings=20, remove_largest=20, bloat=20.
	g := testutil.MonosGraph()
	result, err := Monos(g, options.NewMonos())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	assert.Contains(t, lines[0], "Apprx. Bloat Bytes")
	assert.Contains(t, lines[0], "Monomorphizations")

	// The f group ranks first on bloat 20; the singleton has bloat 0.
	assert.Contains(t, lines[2], "20")
	assert.Contains(t, lines[2], "30")
	assert.Contains(t, lines[2], "f")
	// Three indented instantiation rows follow.
	assert.Contains(t, lines[3], "    f::ha000000000000001")
	assert.Contains(t, lines[4], "    f::ha000000000000002")
	assert.Contains(t, lines[5], "    f::ha000000000000003")

	// Singleton group: bloat 0.
	assert.Contains(t, lines[6], "0")
	assert.Contains(t, lines[6], "lonely")

	// Totals row counts generic rows plus instantiation rows.
	last := lines[len(lines)-1]
	assert.Contains(t, last, "Σ [6 Total Rows]")
	assert.Contains(t, last, "39")
	assert.Contains(t, last, "20")
}

func TestMonos_SingletonHasZeroBloat(t *testing.T) {
	b := ir.NewBuilder(100)
	b.AddRoot(ir.NewCode(ir.EntryId(0, 0), 9, "only::hc000000000000001", "code[0]"))
	g := b.Finish()

	result, err := Monos(g, options.NewMonos())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	// Generic row: bloat 0, size 9.
	assert.Contains(t, lines[2], "0")
	assert.Contains(t, lines[2], "9")
	assert.Contains(t, lines[2], "only")
}

func TestMonos_MaxMonosTruncatesInstantiations(t *testing.T) {
	g := testutil.MonosGraph()
	opts := options.NewMonos()
	opts.MaxMonos = 1

	result, err := Monos(g, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	out := buf.String()

	assert.Contains(t, out, "    f::ha000000000000001")
	assert.NotContains(t, out, "f::ha000000000000002")
	assert.Contains(t, out, "... and 2 more.")
}

func TestMonos_MaxGenericsTruncatesEntries(t *testing.T) {
	g := testutil.MonosGraph()
	opts := options.NewMonos()
	opts.MaxGenerics = 1

	result, err := Monos(g, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	out := buf.String()

	assert.Contains(t, out, "f")
	assert.NotContains(t, out, "lonely::h")
	// One remaining entry summarizing the dropped singleton and its one
	// instantiation row.
	assert.Contains(t, out, "... and 2 more.")
}

func TestMonos_AllGenericsLiftsCap(t *testing.T) {
	g := testutil.MonosGraph()
	opts := options.NewMonos()
	opts.MaxGenerics = 1
	opts.AllGenerics = true

	result, err := Monos(g, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	assert.Contains(t, buf.String(), "lonely")
}

func TestMonos_OnlyGenerics(t *testing.T) {
	g := testutil.MonosGraph()
	opts := options.NewMonos()
	opts.OnlyGenerics = true

	result, err := Monos(g, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	out := buf.String()

	assert.Contains(t, out, "f")
	assert.NotContains(t, out, "    f::h", "instantiation rows dropped")
	// Sizes still reflect the full groups.
	assert.Contains(t, out, "30")
}

func TestMonos_FilterByStem(t *testing.T) {
	g := testutil.MonosGraph()
	opts := options.NewMonos()
	opts.Functions = []string{"lonely"}

	result, err := Monos(g, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitText(g, &buf))
	out := buf.String()

	assert.Contains(t, out, "lonely")
	assert.NotContains(t, out, "f::h")
}

func TestMonos_EmitJSON(t *testing.T) {
	b := ir.NewBuilder(100)
	b.AddRoot(ir.NewCode(ir.EntryId(0, 0), 10, "g::hd000000000000001", "code[0]"))
	b.AddItem(ir.NewCode(ir.EntryId(0, 1), 6, "g::hd000000000000002", "code[1]"))
	g := b.Finish()

	result, err := Monos(g, options.NewMonos())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitJSON(g, &buf))

	testutil.AssertJSONEqual(t, `[
		{
			"generic": "g",
			"approximate_monomorphization_bloat_bytes": 6,
			"approximate_monomorphization_bloat_percent": 6,
			"total_size": 16,
			"total_size_percent": 16,
			"monomorphizations": [
				{"name": "g::hd000000000000001", "shallow_size": 10, "shallow_size_percent": 10},
				{"name": "g::hd000000000000002", "shallow_size": 6, "shallow_size_percent": 6}
			]
		},
		{
			"generic": "Σ [3 Total Rows]",
			"approximate_monomorphization_bloat_bytes": 6,
			"approximate_monomorphization_bloat_percent": 6,
			"total_size": 16,
			"total_size_percent": 16,
			"monomorphizations": []
		}
	]`, buf.String())
}

func TestMonos_EmitCSV(t *testing.T) {
	g := testutil.MonosGraph()
	result, err := Monos(g, options.NewMonos())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.EmitCSV(g, &buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	assert.Equal(t,
		"Generic,ApproximateMonomorphizationBloatBytes,ApproximateMonomorphizationBloatPercent,TotalSize,TotalSizePercent,Monomorphizations",
		lines[0])
	assert.Contains(t, lines[1], "f,20,2,30,3,")
	assert.Contains(t, lines[1], "f::ha000000000000001, f::ha000000000000002, f::ha000000000000003")
}
