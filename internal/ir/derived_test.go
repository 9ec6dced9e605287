package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildChain returns meta-root -> x(5) -> y(7) -> z(3).
func buildChain() (*Graph, Id, Id, Id) {
	b := NewBuilder(100)
	x := b.AddRoot(NewMisc(EntryId(0, 0), 5, "x"))
	y := b.AddItem(NewMisc(EntryId(0, 1), 7, "y"))
	z := b.AddItem(NewMisc(EntryId(0, 2), 3, "z"))
	b.AddEdge(x, y)
	b.AddEdge(y, z)
	return b.Finish(), x, y, z
}

func TestComputePredecessors(t *testing.T) {
	b := NewBuilder(10)
	a := b.AddRoot(NewMisc(EntryId(0, 0), 1, "a"))
	c := b.AddItem(NewMisc(EntryId(0, 1), 1, "c"))
	d := b.AddItem(NewMisc(EntryId(0, 2), 1, "d"))
	b.AddEdge(a, d)
	b.AddEdge(c, d)
	b.AddEdge(c, d) // duplicate edge collapses in the predecessor map
	g := b.Finish()

	g.ComputePredecessors()
	assert.Equal(t, []Id{a, c}, g.Predecessors(d))
	assert.Equal(t, []Id{g.MetaRoot()}, g.Predecessors(a))
	assert.Empty(t, g.Predecessors(g.MetaRoot()))
}

func TestPredecessors_PanicsBeforeCompute(t *testing.T) {
	g, _, _, _ := buildChain()
	assert.Panics(t, func() { g.Predecessors(g.MetaRoot()) })
}

func TestComputeDominators_Chain(t *testing.T) {
	g, x, y, z := buildChain()
	g.ComputeDominators()

	idoms := g.ImmediateDominators()
	assert.Equal(t, g.MetaRoot(), idoms[x])
	assert.Equal(t, x, idoms[y])
	assert.Equal(t, y, idoms[z])

	_, ok := idoms[g.MetaRoot()]
	assert.False(t, ok, "the meta root has no immediate dominator")
}

func TestComputeDominators_Diamond(t *testing.T) {
	// root -> a, root -> b, a -> c, b -> c: c's idom is the meta root's
	// single successor, not a or b.
	b := NewBuilder(10)
	r := b.AddRoot(NewMisc(EntryId(0, 0), 1, "r"))
	a := b.AddItem(NewMisc(EntryId(0, 1), 1, "a"))
	bb := b.AddItem(NewMisc(EntryId(0, 2), 1, "b"))
	c := b.AddItem(NewMisc(EntryId(0, 3), 1, "c"))
	b.AddEdge(r, a)
	b.AddEdge(r, bb)
	b.AddEdge(a, c)
	b.AddEdge(bb, c)
	g := b.Finish()

	g.ComputeDominators()
	idoms := g.ImmediateDominators()
	assert.Equal(t, r, idoms[c])
	assert.Equal(t, r, idoms[a])
	assert.Equal(t, r, idoms[bb])
}

func TestComputeDominators_UnreachableGetsNoEntry(t *testing.T) {
	b := NewBuilder(10)
	b.AddRoot(NewMisc(EntryId(0, 0), 1, "live"))
	dead := b.AddItem(NewMisc(EntryId(0, 1), 1, "dead"))
	g := b.Finish()

	g.ComputeDominatorTree()
	_, ok := g.ImmediateDominators()[dead]
	assert.False(t, ok)

	tree := g.DominatorTree()
	for dom, children := range tree {
		assert.NotContains(t, children, dead, "dominator %v", dom)
	}
}

func TestComputeDominators_SelfLoopAndCycle(t *testing.T) {
	b := NewBuilder(10)
	a := b.AddRoot(NewMisc(EntryId(0, 0), 1, "a"))
	c := b.AddItem(NewMisc(EntryId(0, 1), 1, "c"))
	b.AddEdge(a, a)
	b.AddEdge(a, c)
	b.AddEdge(c, a)
	g := b.Finish()

	g.ComputeDominators()
	assert.Equal(t, a, g.ImmediateDominators()[c])
}

func TestDominatorTree_Structure(t *testing.T) {
	g, x, y, z := buildChain()
	g.ComputeDominatorTree()

	tree := g.DominatorTree()
	assert.Equal(t, []Id{x}, tree[g.MetaRoot()])
	assert.Equal(t, []Id{y}, tree[x])
	assert.Equal(t, []Id{z}, tree[y])
	assert.Empty(t, tree[z])
}

func TestComputeRetainedSizes_Chain(t *testing.T) {
	g, x, y, z := buildChain()
	g.ComputeRetainedSizes()

	assert.Equal(t, uint32(3), g.RetainedSize(z))
	assert.Equal(t, uint32(10), g.RetainedSize(y))
	assert.Equal(t, uint32(15), g.RetainedSize(x))
	assert.Equal(t, uint32(15), g.RetainedSize(g.MetaRoot()))
}

func TestComputeRetainedSizes_MetaRootSumsReachable(t *testing.T) {
	b := NewBuilder(100)
	r := b.AddRoot(NewMisc(EntryId(0, 0), 4, "r"))
	kid := b.AddItem(NewMisc(EntryId(0, 1), 8, "kid"))
	b.AddItem(NewMisc(EntryId(0, 2), 2, "garbage"))
	b.AddEdge(r, kid)
	g := b.Finish()

	g.ComputeRetainedSizes()
	assert.Equal(t, uint32(12), g.RetainedSize(g.MetaRoot()),
		"unreachable items do not count toward the meta root")

	for _, it := range g.Iter() {
		if _, reachable := g.ImmediateDominators()[it.Id()]; reachable {
			assert.GreaterOrEqual(t, g.RetainedSize(it.Id()), it.Size())
		}
	}
}

func TestRetainedSize_PanicsBeforeCompute(t *testing.T) {
	g, x, _, _ := buildChain()
	assert.Panics(t, func() { g.RetainedSize(x) })
}

func TestDerivedCaches_Idempotent(t *testing.T) {
	g, x, _, _ := buildChain()
	g.ComputeRetainedSizes()
	first := g.RetainedSize(x)

	g.ComputePredecessors()
	g.ComputeDominators()
	g.ComputeDominatorTree()
	g.ComputeRetainedSizes()
	require.Equal(t, first, g.RetainedSize(x))
}
