package analyze

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	apperrors "github.com/rustwasm/twiggy-sub000/pkg/errors"

	"github.com/rustwasm/twiggy-sub000/internal/formats"
	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/options"
)

// topResult is the ranked item list produced by Top.
type topResult struct {
	items []ir.Id
	opts  *options.Top
}

// Top ranks all items by shallow size, or by retained size when requested.
func Top(g *ir.Graph, opts *options.Top) (Emit, error) {
	if opts.RetainingPaths {
		return nil, apperrors.New(apperrors.CodeUnsupported, "retaining paths are not yet implemented")
	}

	if opts.Retained {
		g.ComputeRetainedSizes()
	}

	size := func(id ir.Id) uint32 {
		if opts.Retained {
			return g.RetainedSize(id)
		}
		return g.Item(id).Size()
	}

	var items []ir.Id
	for _, it := range g.Iter() {
		if it.Id() != g.MetaRoot() {
			items = append(items, it.Id())
		}
	}
	// Stable over id order, so ties break deterministically by id.
	sort.SliceStable(items, func(i, j int) bool {
		return size(items[i]) > size(items[j])
	})

	return &topResult{items: items, opts: opts}, nil
}

func (t *topResult) size(g *ir.Graph, id ir.Id) uint32 {
	if t.opts.Retained {
		return g.RetainedSize(id)
	}
	return g.Item(id).Size()
}

// summarize accumulates total size, total percentage, and count over a span
// of the ranked items.
func (t *topResult) summarize(g *ir.Graph, ids []ir.Id) (uint64, float64, int) {
	var totalSize uint64
	var totalPercent float64
	for _, id := range ids {
		size := uint64(t.size(g, id))
		totalSize += size
		totalPercent += percent(g, size)
	}
	return totalSize, totalPercent, len(ids)
}

func (t *topResult) visible() int {
	if uint64(len(t.items)) < uint64(t.opts.MaxItems) {
		return len(t.items)
	}
	return int(t.opts.MaxItems)
}

// EmitText renders the ranking with a remaining row (when truncated) and a
// totals row. With retained sizes the summary sizes print "..." because
// retained sizes are not additive across arbitrary subsets.
func (t *topResult) EmitText(g *ir.Graph, w io.Writer) error {
	sortLabel := "Shallow"
	if t.opts.Retained {
		sortLabel = "Retained"
	}

	table := formats.NewTable(
		formats.Column{Align: formats.AlignRight, Title: sortLabel + " Bytes"},
		formats.Column{Align: formats.AlignRight, Title: sortLabel + " %"},
		formats.Column{Align: formats.AlignLeft, Title: "Item"},
	)

	max := t.visible()
	for _, id := range t.items[:max] {
		size := uint64(t.size(g, id))
		table.AddRow(
			strconv.FormatUint(size, 10),
			formatPercent(percent(g, size)),
			g.Item(id).Name(),
		)
	}

	if remSize, remPercent, remCount := t.summarize(g, t.items[max:]); remCount > 0 {
		sizeCol, percentCol := strconv.FormatUint(remSize, 10), formatPercent(remPercent)
		if t.opts.Retained {
			sizeCol, percentCol = "...", "..."
		}
		table.AddRow(sizeCol, percentCol, "... and "+strconv.Itoa(remCount)+" more.")
	}

	totalSize, totalPercent, totalCount := t.summarize(g, t.items)
	sizeCol, percentCol := strconv.FormatUint(totalSize, 10), formatPercent(totalPercent)
	if t.opts.Retained {
		sizeCol, percentCol = "...", "..."
	}
	table.AddRow(sizeCol, percentCol, "Σ ["+strconv.Itoa(totalCount)+" Total Rows]")

	return table.WriteTo(w)
}

// EmitJSON streams the visible rows; summary rows are omitted.
func (t *topResult) EmitJSON(g *ir.Graph, w io.Writer) error {
	arr, err := formats.NewJSONArray(w)
	if err != nil {
		return err
	}

	for _, id := range t.items[:t.visible()] {
		obj, err := arr.Object()
		if err != nil {
			return err
		}
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
		if t.opts.Retained {
			rsize := g.RetainedSize(id)
			if err := obj.Field("retained_size", rsize); err != nil {
				return err
			}
			if err := obj.Field("retained_size_percent", percent(g, uint64(rsize))); err != nil {
				return err
			}
		}
		if err := obj.Close(); err != nil {
			return err
		}
	}

	return arr.Close()
}

// EmitCSV writes the visible rows plus the summary rows. Retained columns
// stay empty for summary rows.
func (t *topResult) EmitCSV(g *ir.Graph, w io.Writer) error {
	wtr := csv.NewWriter(w)
	header := []string{"Name", "ShallowSize", "ShallowSizePercent", "RetainedSize", "RetainedSizePercent"}
	if err := wtr.Write(header); err != nil {
		return err
	}

	max := t.visible()
	for _, id := range t.items[:max] {
		item := g.Item(id)
		record := []string{
			item.Name(),
			strconv.FormatUint(uint64(item.Size()), 10),
			formatFloat(percent(g, uint64(item.Size()))),
			"",
			"",
		}
		if t.opts.Retained {
			rsize := g.RetainedSize(id)
			record[3] = strconv.FormatUint(uint64(rsize), 10)
			record[4] = formatFloat(percent(g, uint64(rsize)))
		}
		if err := wtr.Write(record); err != nil {
			return err
		}
	}

	shallowSum := func(ids []ir.Id) (uint64, float64) {
		var size uint64
		for _, id := range ids {
			size += uint64(g.Item(id).Size())
		}
		return size, percent(g, size)
	}

	if len(t.items) > max {
		remSize, remPercent := shallowSum(t.items[max:])
		rem := []string{
			"... and " + strconv.Itoa(len(t.items)-max) + " more.",
			strconv.FormatUint(remSize, 10),
			formatFloat(remPercent),
			"", "",
		}
		if err := wtr.Write(rem); err != nil {
			return err
		}
	}

	totalSize, totalPercent := shallowSum(t.items)
	total := []string{
		"Σ [" + strconv.Itoa(len(t.items)) + " Total Rows]",
		strconv.FormatUint(totalSize, 10),
		formatFloat(totalPercent),
		"", "",
	}
	if err := wtr.Write(total); err != nil {
		return err
	}

	wtr.Flush()
	return wtr.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
