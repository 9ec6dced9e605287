package ir

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/flow"
	"gonum.org/v1/gonum/graph/simple"
)

// ComputePredecessors inverts the edge map into a successor-to-predecessors
// mapping. Each predecessor list is deduplicated and sorted by id. Idempotent.
func (g *Graph) ComputePredecessors() {
	if g.predecessors != nil {
		return
	}

	sets := make(map[Id]map[Id]struct{})
	for from, tos := range g.edges {
		for _, to := range tos {
			set, ok := sets[to]
			if !ok {
				set = make(map[Id]struct{})
				sets[to] = set
			}
			set[from] = struct{}{}
		}
	}

	preds := make(map[Id][]Id, len(sets))
	for to, set := range sets {
		list := make([]Id, 0, len(set))
		for from := range set {
			list = append(list, from)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Less(list[j]) })
		preds[to] = list
	}
	g.predecessors = preds
}

// ComputeDominators computes the immediate dominator of every item reachable
// from the meta root. Idempotent; shares its traversal with
// ComputeDominatorTree.
func (g *Graph) ComputeDominators() {
	g.computeDominatorCaches()
}

// ComputeDominatorTree computes the dominator tree rooted at the meta root.
// Idempotent; shares its traversal with ComputeDominators.
func (g *Graph) ComputeDominatorTree() {
	g.computeDominatorCaches()
}

// computeDominatorCaches runs Lengauer-Tarjan over a gonum mirror of the
// graph and fills both the immediate-dominator map and the dominator tree.
// Items not reachable from the meta root receive no entry.
func (g *Graph) computeDominatorCaches() {
	if g.idoms != nil {
		return
	}

	mirror := simple.NewDirectedGraph()
	byNode := make(map[int64]Id, len(g.ids))
	for _, id := range g.ids {
		nid := int64(id.Serializable())
		byNode[nid] = id
		if mirror.Node(nid) == nil {
			mirror.AddNode(simple.Node(nid))
		}
	}
	for from, tos := range g.edges {
		f := int64(from.Serializable())
		for _, to := range tos {
			t := int64(to.Serializable())
			if f == t {
				// Self edges never affect dominance.
				continue
			}
			mirror.SetEdge(simple.Edge{F: simple.Node(f), T: simple.Node(t)})
		}
	}

	tree := flow.Dominators(simple.Node(int64(g.metaRoot.Serializable())), mirror)

	idoms := make(map[Id]Id)
	domTree := make(map[Id][]Id)
	for _, id := range g.ids {
		dom := tree.DominatorOf(int64(id.Serializable()))
		if dom == nil {
			continue
		}
		idom := byNode[dom.ID()]
		idoms[id] = idom
		domTree[idom] = append(domTree[idom], id)
	}
	for _, children := range domTree {
		sort.Slice(children, func(i, j int) bool { return children[i].Less(children[j]) })
	}

	g.idoms = idoms
	g.domTree = domTree
}

// ImmediateDominators returns the item-to-immediate-dominator map.
// ComputeDominators must have been called first.
func (g *Graph) ImmediateDominators() map[Id]Id {
	if g.idoms == nil {
		panic("ir: ComputeDominators must be called before ImmediateDominators")
	}
	return g.idoms
}

// DominatorTree returns the dominator-to-dominated-children map.
// ComputeDominatorTree must have been called first.
func (g *Graph) DominatorTree() map[Id][]Id {
	if g.domTree == nil {
		panic("ir: ComputeDominatorTree must be called before DominatorTree")
	}
	return g.domTree
}

// ComputeRetainedSizes computes each item's retained size: its shallow size
// plus the retained sizes of everything it dominates. Idempotent.
func (g *Graph) ComputeRetainedSizes() {
	if g.retained != nil {
		return
	}
	g.ComputeDominatorTree()

	retained := make(map[Id]uint32, len(g.ids))

	// The dominator tree is acyclic, but items are visited in id order
	// rather than bottom up, so a subtree may already be accounted for.
	var retainedSize func(id Id) uint32
	retainedSize = func(id Id) uint32 {
		if rsize, ok := retained[id]; ok {
			return rsize
		}
		rsize := g.items[id].Size()
		for _, child := range g.domTree[id] {
			rsize += retainedSize(child)
		}
		retained[id] = rsize
		return rsize
	}

	for _, id := range g.ids {
		retainedSize(id)
	}
	g.retained = retained
}

// RetainedSize returns the item's retained size. ComputeRetainedSizes must
// have been called first.
func (g *Graph) RetainedSize(id Id) uint32 {
	if g.retained == nil {
		panic("ir: ComputeRetainedSizes must be called before RetainedSize")
	}
	rsize, ok := g.retained[id]
	if !ok {
		panic(fmt.Sprintf("ir: no retained size for %v", id))
	}
	return rsize
}
