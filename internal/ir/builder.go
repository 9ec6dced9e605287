package ir

import (
	"fmt"
	"math"
	"sort"
)

// dataRange records that the bytes at [start, start+length) belong to the
// data item with the given id.
type dataRange struct {
	start  uint32
	length uint32
	id     Id
}

// dataMap is an offset-ordered collection of data ranges supporting
// greatest-key-not-above lookup.
type dataMap struct {
	ranges []dataRange
}

func (m *dataMap) insert(start, length uint32, id Id) {
	i := sort.Search(len(m.ranges), func(i int) bool { return m.ranges[i].start >= start })
	if i < len(m.ranges) && m.ranges[i].start == start {
		m.ranges[i] = dataRange{start: start, length: length, id: id}
		return
	}
	m.ranges = append(m.ranges, dataRange{})
	copy(m.ranges[i+1:], m.ranges[i:])
	m.ranges[i] = dataRange{start: start, length: length, id: id}
}

// lookup finds the range with the greatest start not above offset and
// returns its id iff the offset falls inside the range.
func (m *dataMap) lookup(offset uint32) (Id, bool) {
	i := sort.Search(len(m.ranges), func(i int) bool { return m.ranges[i].start > offset })
	if i == 0 {
		return Id{}, false
	}
	r := m.ranges[i-1]
	if uint64(offset) < uint64(r.start)+uint64(r.length) {
		return r.id, true
	}
	return Id{}, false
}

// Builder collects items, roots, edges, and data ranges while a parser walks
// a binary, and freezes them into a Graph.
type Builder struct {
	size      uint32
	sizeAdded uint32
	items     map[Id]*Item
	edges     map[Id][]Id
	roots     []Id
	rootSet   map[Id]struct{}
	data      dataMap
}

// NewBuilder constructs a builder for a binary of the given total size.
func NewBuilder(size uint32) *Builder {
	return &Builder{
		size:    size,
		items:   make(map[Id]*Item),
		edges:   make(map[Id][]Id),
		rootSet: make(map[Id]struct{}),
	}
}

// AddItem adds the given item to the graph and returns its Id. Adding the
// same id twice is a parser bug and panics.
func (b *Builder) AddItem(item *Item) Id {
	id := item.Id()
	if _, ok := b.items[id]; ok {
		panic(fmt.Sprintf("ir: item %v parsed twice", id))
	}
	b.items[id] = item
	b.sizeAdded += item.Size()
	return id
}

// AddRoot adds the given item as a root and returns its Id.
func (b *Builder) AddRoot(item *Item) Id {
	id := b.AddItem(item)
	if _, ok := b.rootSet[id]; !ok {
		b.rootSet[id] = struct{}{}
		b.roots = append(b.roots, id)
	}
	return id
}

// AddEdge appends an edge from one item to another. Edge lists preserve
// insertion order; duplicates are kept.
func (b *Builder) AddEdge(from, to Id) {
	b.edges[from] = append(b.edges[from], to)
}

// LinkData registers that the data item with the given id covers the memory
// at [offset, offset+length). Ranges that do not fit the 32-bit address
// space are ignored.
func (b *Builder) LinkData(offset int64, length int, id Id) {
	if offset < 0 || offset > math.MaxUint32 {
		return
	}
	if uint64(offset)+uint64(length) >= math.MaxUint32 {
		return
	}
	b.data.insert(uint32(offset), uint32(length), id)
}

// GetData locates the data item defining the memory at the given offset.
func (b *Builder) GetData(offset uint32) (Id, bool) {
	return b.data.lookup(offset)
}

// SizeAdded returns the sum of the sizes of all items added so far.
func (b *Builder) SizeAdded() uint32 {
	return b.sizeAdded
}

// Finish freezes the collected items into an immutable Graph. The synthetic
// meta root is inserted here, with size zero and an edge to every root.
func (b *Builder) Finish() *Graph {
	metaRoot := MetaRootId()
	b.items[metaRoot] = NewMisc(metaRoot, 0, "<meta root>")
	rootEdges := make([]Id, len(b.roots))
	copy(rootEdges, b.roots)
	b.edges[metaRoot] = rootEdges

	ids := make([]Id, 0, len(b.items))
	for id := range b.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	g := &Graph{
		size:     b.size,
		ids:      ids,
		items:    b.items,
		edges:    b.edges,
		roots:    b.roots,
		metaRoot: metaRoot,
		data:     b.data,
	}

	// The builder must not leak mutable access to the frozen maps.
	b.items = nil
	b.edges = nil
	b.roots = nil
	b.rootSet = nil

	return g
}
