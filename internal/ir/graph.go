package ir

import "fmt"

// Graph is the frozen, queryable item graph produced by Builder.Finish.
// Topology and item records never change after freezing; the four derived
// caches (predecessors, immediate dominators, dominator tree, retained
// sizes) are computed at most once, on demand.
type Graph struct {
	size     uint32
	ids      []Id
	items    map[Id]*Item
	edges    map[Id][]Id
	roots    []Id
	metaRoot Id
	data     dataMap

	predecessors map[Id][]Id
	idoms        map[Id]Id
	domTree      map[Id][]Id
	retained     map[Id]uint32
}

// Size returns the total byte budget the graph is accounting for, usually
// the input file length.
func (g *Graph) Size() uint32 { return g.size }

// MetaRoot returns the id of the synthetic item whose edges are exactly the
// real roots.
func (g *Graph) MetaRoot() Id { return g.metaRoot }

// Len returns the number of items, including the meta root.
func (g *Graph) Len() int { return len(g.ids) }

// Iter returns all items in id order. Callers must not mutate the slice.
func (g *Graph) Iter() []*Item {
	items := make([]*Item, len(g.ids))
	for i, id := range g.ids {
		items[i] = g.items[id]
	}
	return items
}

// Item returns the item with the given id, panicking on an unknown id the
// way an out-of-bounds index would.
func (g *Graph) Item(id Id) *Item {
	it, ok := g.items[id]
	if !ok {
		panic(fmt.Sprintf("ir: no item with id %v", id))
	}
	return it
}

// GetItem returns the item with the given id, if any.
func (g *Graph) GetItem(id Id) (*Item, bool) {
	it, ok := g.items[id]
	return it, ok
}

// Neighbors returns the ids an item has edges to, in insertion order.
// Callers must not mutate the slice.
func (g *Graph) Neighbors(id Id) []Id {
	return g.edges[id]
}

// Predecessors returns the ids that have edges to an item, in id order.
// ComputePredecessors must have been called first.
func (g *Graph) Predecessors(id Id) []Id {
	if g.predecessors == nil {
		panic("ir: ComputePredecessors must be called before Predecessors")
	}
	return g.predecessors[id]
}

// GetItemByName finds an item with the given display name. Names are not
// indexed; this is a linear search.
func (g *Graph) GetItemByName(name string) (*Item, bool) {
	for _, id := range g.ids {
		if it := g.items[id]; it.Name() == name {
			return it, true
		}
	}
	return nil, false
}

// GetData locates the data item defining the memory at the given offset.
func (g *Graph) GetData(offset uint32) (Id, bool) {
	return g.data.lookup(offset)
}
