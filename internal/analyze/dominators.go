package analyze

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/rustwasm/twiggy-sub000/internal/formats"
	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/options"
)

// unreachableSummary aggregates the items that no path from the meta root
// reaches.
type unreachableSummary struct {
	count       int
	size        uint64
	sizePercent float64
}

// dominatorsResult is the dominator-tree decomposition produced by
// Dominators.
type dominatorsResult struct {
	tree    map[ir.Id][]ir.Id
	items   []ir.Id
	summary *unreachableSummary
	opts    *options.Dominators
}

// Dominators renders the dominator tree, either whole or rooted at the
// requested items.
func Dominators(g *ir.Graph, opts *options.Dominators) (Emit, error) {
	g.ComputeDominatorTree()
	g.ComputeDominators()
	g.ComputeRetainedSizes()
	g.ComputePredecessors()

	var seeds []ir.Id
	switch {
	case len(opts.Items) == 0:
		seeds = []ir.Id{g.MetaRoot()}
	case opts.UsingRegexps:
		matched, err := matchItemsByRegexps(g, opts.Items)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(matched, func(i, j int) bool {
			return g.RetainedSize(matched[i]) > g.RetainedSize(matched[j])
		})
		seeds = matched
	default:
		seeds = matchItemsByName(g, opts.Items)
	}

	var summary *unreachableSummary
	if len(opts.Items) == 0 {
		reachable := reachableSet(g)
		var count int
		var size uint64
		for _, it := range g.Iter() {
			if _, ok := reachable[it.Id()]; !ok {
				count++
				size += uint64(it.Size())
			}
		}
		if count > 0 {
			summary = &unreachableSummary{
				count:       count,
				size:        size,
				sizePercent: percent(g, size),
			}
		}
	}

	return &dominatorsResult{
		tree:    g.DominatorTree(),
		items:   seeds,
		summary: summary,
		opts:    opts,
	}, nil
}

// sortedChildren returns the node's dominated children, largest retained
// size first.
func (d *dominatorsResult) sortedChildren(g *ir.Graph, id ir.Id) []ir.Id {
	children := d.tree[id]
	sorted := make([]ir.Id, len(children))
	copy(sorted, children)
	sort.SliceStable(sorted, func(i, j int) bool {
		return g.RetainedSize(sorted[i]) > g.RetainedSize(sorted[j])
	})
	return sorted
}

// EmitText walks each seed's subtree depth first, largest retained size
// first, stopping a branch when either limit trips.
func (d *dominatorsResult) EmitText(g *ir.Graph, w io.Writer) error {
	table := formats.NewTable(
		formats.Column{Align: formats.AlignRight, Title: "Retained Bytes"},
		formats.Column{Align: formats.AlignRight, Title: "Retained %"},
		formats.Column{Align: formats.AlignLeft, Title: "Dominator Tree"},
	)

	var row uint32
	var addRows func(id ir.Id, depth uint32)
	addRows = func(id ir.Id, depth uint32) {
		if row > d.opts.MaxRows || depth > d.opts.MaxDepth {
			return
		}

		if depth > 0 {
			rsize := g.RetainedSize(id)

			label := ""
			for i := uint32(2); i < depth; i++ {
				label += "    "
			}
			if depth != 1 {
				label += "  ⤷ "
			}
			label += g.Item(id).Name()

			table.AddRow(
				strconv.FormatUint(uint64(rsize), 10),
				formatPercent(percent(g, uint64(rsize))),
				label,
			)
		}

		for _, child := range d.sortedChildren(g, id) {
			row++
			addRows(child, depth+1)
		}
	}

	for _, id := range d.items {
		startDepth := uint32(1)
		if id == g.MetaRoot() {
			startDepth = 0
		}
		addRows(id, startDepth)
	}

	if s := d.summary; s != nil {
		table.AddRow(
			strconv.FormatUint(s.size, 10),
			formatPercent(s.sizePercent),
			"["+strconv.Itoa(s.count)+" Unreachable Items]",
		)
	}

	return table.WriteTo(w)
}

// EmitJSON streams the full subtree of every seed.
func (d *dominatorsResult) EmitJSON(g *ir.Graph, w io.Writer) error {
	var addChildren func(id ir.Id, obj *formats.JSONObject) error
	addChildren = func(id ir.Id, obj *formats.JSONObject) error {
		item := g.Item(id)
		if err := obj.Field("name", item.Name()); err != nil {
			return err
		}
		if err := obj.Field("shallow_size", item.Size()); err != nil {
			return err
		}
		if err := obj.Field("shallow_size_percent", percent(g, uint64(item.Size()))); err != nil {
			return err
		}
		rsize := g.RetainedSize(id)
		if err := obj.Field("retained_size", rsize); err != nil {
			return err
		}
		if err := obj.Field("retained_size_percent", percent(g, uint64(rsize))); err != nil {
			return err
		}

		children := d.sortedChildren(g, id)
		if len(children) == 0 {
			return nil
		}
		arr, err := obj.Array("children")
		if err != nil {
			return err
		}
		for _, child := range children {
			childObj, err := arr.Object()
			if err != nil {
				return err
			}
			if err := addChildren(child, childObj); err != nil {
				return err
			}
			if err := childObj.Close(); err != nil {
				return err
			}
		}
		return arr.Close()
	}

	obj, err := formats.NewJSONObject(w)
	if err != nil {
		return err
	}

	items, err := obj.Array("items")
	if err != nil {
		return err
	}
	for _, id := range d.items {
		itemObj, err := items.Object()
		if err != nil {
			return err
		}
		if err := addChildren(id, itemObj); err != nil {
			return err
		}
		if err := itemObj.Close(); err != nil {
			return err
		}
	}
	if err := items.Close(); err != nil {
		return err
	}

	if s := d.summary; s != nil {
		summaryArr, err := obj.Array("summary")
		if err != nil {
			return err
		}
		summaryObj, err := summaryArr.Object()
		if err != nil {
			return err
		}
		if err := summaryObj.Field("name", "["+strconv.Itoa(s.count)+" Unreachable Items]"); err != nil {
			return err
		}
		if err := summaryObj.Field("retained_size", s.size); err != nil {
			return err
		}
		if err := summaryObj.Field("retained_size_percent", s.sizePercent); err != nil {
			return err
		}
		if err := summaryObj.Close(); err != nil {
			return err
		}
		if err := summaryArr.Close(); err != nil {
			return err
		}
	}

	return obj.Close()
}

// EmitCSV writes the whole tree from the meta root, one record per item,
// with each item's immediate dominator for reconstruction.
func (d *dominatorsResult) EmitCSV(g *ir.Graph, w io.Writer) error {
	wtr := csv.NewWriter(w)
	header := []string{
		"Id", "Name", "ShallowSize", "ShallowSizePercent",
		"RetainedSize", "RetainedSizePercent", "ImmediateDominator",
	}
	if err := wtr.Write(header); err != nil {
		return err
	}

	idoms := g.ImmediateDominators()

	var addChildren func(id ir.Id) error
	addChildren = func(id ir.Id) error {
		item := g.Item(id)
		rsize := g.RetainedSize(id)
		idom, ok := idoms[id]
		if !ok {
			idom = id
		}
		record := []string{
			strconv.FormatUint(id.Serializable(), 10),
			item.Name(),
			strconv.FormatUint(uint64(item.Size()), 10),
			formatFloat(percent(g, uint64(item.Size()))),
			strconv.FormatUint(uint64(rsize), 10),
			formatFloat(percent(g, uint64(rsize))),
			strconv.FormatUint(idom.Serializable(), 10),
		}
		if err := wtr.Write(record); err != nil {
			return err
		}
		for _, child := range d.sortedChildren(g, id) {
			if err := addChildren(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := addChildren(g.MetaRoot()); err != nil {
		return err
	}

	if s := d.summary; s != nil {
		record := []string{
			"",
			"[" + strconv.Itoa(s.count) + " Unreachable Items]",
			strconv.FormatUint(s.size, 10),
			formatFloat(s.sizePercent),
			strconv.FormatUint(s.size, 10),
			formatFloat(s.sizePercent),
			"",
		}
		if err := wtr.Write(record); err != nil {
			return err
		}
	}

	wtr.Flush()
	return wtr.Error()
}
