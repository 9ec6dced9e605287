package analyze

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/rustwasm/twiggy-sub000/internal/formats"
	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/options"
)

// pathsEntry is one node of a retaining-path tree: a seed item and, one
// level down, the items that retain it (ascending) or that it retains
// (descending).
type pathsEntry struct {
	name     string
	size     uint32
	children []*pathsEntry
}

// pathsResult is the forest of retaining-path trees produced by Paths.
type pathsResult struct {
	entries []*pathsEntry
	opts    *options.Paths
}

// Paths traces retaining paths from the seed items: toward the meta root by
// default, away from the seeds when descending.
func Paths(g *ir.Graph, opts *options.Paths) (Emit, error) {
	if !opts.Descending {
		g.ComputePredecessors()
	}

	seeds, err := pathSeeds(g, opts)
	if err != nil {
		return nil, err
	}

	entries := make([]*pathsEntry, 0, len(seeds))
	for _, id := range seeds {
		seen := make(map[ir.Id]struct{})
		entries = append(entries, createPathsEntry(g, opts, id, 0, seen))
	}

	return &pathsResult{entries: entries, opts: opts}, nil
}

func pathSeeds(g *ir.Graph, opts *options.Paths) ([]ir.Id, error) {
	switch {
	case len(opts.Functions) > 0 && opts.UsingRegexps:
		return matchItemsByRegexps(g, opts.Functions)
	case len(opts.Functions) > 0:
		return matchItemsByName(g, opts.Functions), nil
	case opts.Descending:
		// All roots, largest first.
		roots := make([]ir.Id, len(g.Neighbors(g.MetaRoot())))
		copy(roots, g.Neighbors(g.MetaRoot()))
		sort.SliceStable(roots, func(i, j int) bool {
			return g.Item(roots[i]).Size() > g.Item(roots[j]).Size()
		})
		return roots, nil
	default:
		// Every item, largest first.
		var ids []ir.Id
		for _, it := range g.Iter() {
			if it.Id() != g.MetaRoot() {
				ids = append(ids, it.Id())
			}
		}
		sort.SliceStable(ids, func(i, j int) bool {
			return g.Item(ids[i]).Size() > g.Item(ids[j]).Size()
		})
		return ids, nil
	}
}

// createPathsEntry builds the tree under one item. The seen set guards
// against cycles in the underlying graph; an id already on the current path
// is not revisited, and the meta root is never shown.
func createPathsEntry(g *ir.Graph, opts *options.Paths, id ir.Id, depth uint32, seen map[ir.Id]struct{}) *pathsEntry {
	item := g.Item(id)
	entry := &pathsEntry{name: item.Name(), size: item.Size()}

	if depth >= opts.MaxDepth {
		return entry
	}

	var next []ir.Id
	if opts.Descending {
		next = g.Neighbors(id)
	} else {
		next = g.Predecessors(id)
	}

	seen[id] = struct{}{}
	for _, childId := range next {
		if uint32(len(entry.children)) >= opts.MaxPaths {
			break
		}
		if childId == g.MetaRoot() {
			continue
		}
		if _, onPath := seen[childId]; onPath {
			continue
		}
		entry.children = append(entry.children, createPathsEntry(g, opts, childId, depth+1, seen))
	}
	delete(seen, id)

	return entry
}

func (p *pathsResult) indent(depth uint32) string {
	var b strings.Builder
	for i := uint32(1); i < depth; i++ {
		b.WriteString("    ")
	}
	if depth > 0 {
		if p.opts.Descending {
			b.WriteString("  ↳ ")
		} else {
			b.WriteString("  ⬑ ")
		}
	}
	return b.String()
}

// EmitText renders each tree with sizes on the top-most rows only.
func (p *pathsResult) EmitText(g *ir.Graph, w io.Writer) error {
	table := formats.NewTable(
		formats.Column{Align: formats.AlignRight, Title: "Shallow Bytes"},
		formats.Column{Align: formats.AlignRight, Title: "Shallow %"},
		formats.Column{Align: formats.AlignLeft, Title: "Retaining Paths"},
	)

	var addRows func(entry *pathsEntry, depth uint32)
	addRows = func(entry *pathsEntry, depth uint32) {
		sizeCol, percentCol := "", ""
		if depth == 0 {
			sizeCol = strconv.FormatUint(uint64(entry.size), 10)
			percentCol = formatPercent(percent(g, uint64(entry.size)))
		}
		table.AddRow(sizeCol, percentCol, p.indent(depth)+entry.name)

		for _, child := range entry.children {
			addRows(child, depth+1)
		}
	}

	for _, entry := range p.entries {
		addRows(entry, 0)
	}

	return table.WriteTo(w)
}

// EmitJSON streams one object per seed with nested caller lists.
func (p *pathsResult) EmitJSON(g *ir.Graph, w io.Writer) error {
	var addEntry func(entry *pathsEntry, obj *formats.JSONObject) error
	addEntry = func(entry *pathsEntry, obj *formats.JSONObject) error {
		if err := obj.Field("name", entry.name); err != nil {
			return err
		}
		if err := obj.Field("shallow_size", entry.size); err != nil {
			return err
		}
		if err := obj.Field("shallow_size_percent", percent(g, uint64(entry.size))); err != nil {
			return err
		}
		arr, err := obj.Array("callers")
		if err != nil {
			return err
		}
		for _, child := range entry.children {
			childObj, err := arr.Object()
			if err != nil {
				return err
			}
			if err := addEntry(child, childObj); err != nil {
				return err
			}
			if err := childObj.Close(); err != nil {
				return err
			}
		}
		return arr.Close()
	}

	arr, err := formats.NewJSONArray(w)
	if err != nil {
		return err
	}
	for _, entry := range p.entries {
		obj, err := arr.Object()
		if err != nil {
			return err
		}
		if err := addEntry(entry, obj); err != nil {
			return err
		}
		if err := obj.Close(); err != nil {
			return err
		}
	}
	return arr.Close()
}

// EmitCSV writes one record per visible row, with the chain of names from
// the seed down to the row's item.
func (p *pathsResult) EmitCSV(g *ir.Graph, w io.Writer) error {
	wtr := csv.NewWriter(w)
	header := []string{"Name", "ShallowSize", "ShallowSizePercent", "Path"}
	if err := wtr.Write(header); err != nil {
		return err
	}

	var addEntry func(entry *pathsEntry, chain []string) error
	addEntry = func(entry *pathsEntry, chain []string) error {
		chain = append(chain, entry.name)
		record := []string{
			entry.name,
			strconv.FormatUint(uint64(entry.size), 10),
			formatFloat(percent(g, uint64(entry.size))),
			strings.Join(chain, " -> "),
		}
		if err := wtr.Write(record); err != nil {
			return err
		}
		for _, child := range entry.children {
			if err := addEntry(child, chain); err != nil {
				return err
			}
		}
		return nil
	}

	for _, entry := range p.entries {
		if err := addEntry(entry, nil); err != nil {
			return err
		}
	}

	wtr.Flush()
	return wtr.Error()
}
