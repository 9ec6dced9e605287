package analyze

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/rustwasm/twiggy-sub000/internal/formats"
	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/options"
)

// diffEntry is one name's size change between the two graphs.
type diffEntry struct {
	name  string
	delta int64
}

// diffResult is the delta listing produced by Diff, summary rows included.
type diffResult struct {
	deltas []diffEntry
}

// Diff compares two graphs by item display name and reports the size
// changes, largest magnitude first.
func Diff(oldGraph, newGraph *ir.Graph, opts *options.Diff) (Emit, error) {
	oldSizes := namesAndSizes(oldGraph)
	newSizes := namesAndSizes(newGraph)

	names := make(map[string]struct{}, len(oldSizes)+len(newSizes))
	for name := range oldSizes {
		names[name] = struct{}{}
	}
	for name := range newSizes {
		names[name] = struct{}{}
	}

	if len(opts.Items) > 0 {
		if opts.UsingRegexps {
			set, err := compileRegexps(opts.Items)
			if err != nil {
				return nil, err
			}
			for name := range names {
				if !set.matches(name) {
					delete(names, name)
				}
			}
		} else {
			wanted := make(map[string]struct{}, len(opts.Items))
			for _, name := range opts.Items {
				wanted[name] = struct{}{}
			}
			for name := range names {
				if _, ok := wanted[name]; !ok {
					delete(names, name)
				}
			}
		}
	}

	var deltas []diffEntry
	for name := range names {
		delta := newSizes[name] - oldSizes[name]
		if delta == 0 {
			continue
		}
		deltas = append(deltas, diffEntry{name: name, delta: delta})
	}
	sort.Slice(deltas, func(i, j int) bool {
		ai, aj := abs64(deltas[i].delta), abs64(deltas[j].delta)
		if ai != aj {
			return ai > aj
		}
		return deltas[i].name < deltas[j].name
	})

	maxItems := int(opts.EffectiveMaxItems())
	if maxItems > len(deltas) {
		maxItems = len(deltas)
	}

	var remCount int
	var remDelta int64
	for _, entry := range deltas[maxItems:] {
		remCount++
		remDelta += entry.delta
	}

	// Without a name filter the totals row uses the graph-size difference,
	// which also captures overhead not attributable to any single item.
	totalCount := len(deltas)
	var totalDelta int64
	if len(opts.Items) == 0 {
		totalDelta = int64(newGraph.Size()) - int64(oldGraph.Size())
	} else {
		for _, entry := range deltas {
			totalDelta += entry.delta
		}
	}

	deltas = deltas[:maxItems]
	if remCount > 0 {
		deltas = append(deltas, diffEntry{
			name:  "... and " + strconv.Itoa(remCount) + " more.",
			delta: remDelta,
		})
	}
	deltas = append(deltas, diffEntry{
		name:  "Σ [" + strconv.Itoa(totalCount) + " Total Rows]",
		delta: totalDelta,
	})

	return &diffResult{deltas: deltas}, nil
}

func namesAndSizes(g *ir.Graph) map[string]int64 {
	sizes := make(map[string]int64, g.Len())
	for _, it := range g.Iter() {
		if it.Id() == g.MetaRoot() {
			continue
		}
		sizes[it.Name()] = int64(it.Size())
	}
	return sizes
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// EmitText renders the signed deltas.
func (d *diffResult) EmitText(g *ir.Graph, w io.Writer) error {
	table := formats.NewTable(
		formats.Column{Align: formats.AlignRight, Title: "Delta Bytes"},
		formats.Column{Align: formats.AlignLeft, Title: "Item"},
	)
	for _, entry := range d.deltas {
		table.AddRow(fmt.Sprintf("%+d", entry.delta), entry.name)
	}
	return table.WriteTo(w)
}

// EmitJSON streams the delta rows.
func (d *diffResult) EmitJSON(g *ir.Graph, w io.Writer) error {
	arr, err := formats.NewJSONArray(w)
	if err != nil {
		return err
	}
	for _, entry := range d.deltas {
		obj, err := arr.Object()
		if err != nil {
			return err
		}
		if err := obj.Field("delta_bytes", entry.delta); err != nil {
			return err
		}
		if err := obj.Field("name", entry.name); err != nil {
			return err
		}
		if err := obj.Close(); err != nil {
			return err
		}
	}
	return arr.Close()
}

// EmitCSV writes one record per delta row.
func (d *diffResult) EmitCSV(g *ir.Graph, w io.Writer) error {
	wtr := csv.NewWriter(w)
	if err := wtr.Write([]string{"DeltaBytes", "Item"}); err != nil {
		return err
	}
	for _, entry := range d.deltas {
		if err := wtr.Write([]string{fmt.Sprintf("%+d", entry.delta), entry.name}); err != nil {
			return err
		}
	}
	wtr.Flush()
	return wtr.Error()
}
