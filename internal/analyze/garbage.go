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

// garbageRow is one unreachable item, or the aggregate standing in for the
// unreachable data segments.
type garbageRow struct {
	name string
	size uint32
}

// garbageResult is the unreachable-item listing produced by Garbage.
type garbageResult struct {
	rows  []garbageRow
	limit uint32
}

// Garbage finds items that no export, entry point, or debug section
// transitively references.
func Garbage(g *ir.Graph, opts *options.Garbage) (Emit, error) {
	reachable := reachableSet(g)

	var unreachable []*ir.Item
	for _, it := range g.Iter() {
		if _, ok := reachable[it.Id()]; !ok {
			unreachable = append(unreachable, it)
		}
	}

	var rows []garbageRow
	if opts.ShowDataSegments {
		for _, it := range unreachable {
			rows = append(rows, garbageRow{name: it.Name(), size: it.Size()})
		}
	} else {
		// Unreachable data segments are frequent false positives (their
		// only references come through memory loads); collapse them into a
		// single aggregate row unless the caller asked to see them.
		var dataCount int
		var dataSize uint32
		for _, it := range unreachable {
			if it.Kind() == ir.KindData {
				dataCount++
				dataSize += it.Size()
				continue
			}
			rows = append(rows, garbageRow{name: it.Name(), size: it.Size()})
		}
		if dataCount > 0 {
			rows = append(rows, garbageRow{
				name: "[" + strconv.Itoa(dataCount) + " Data Segments]",
				size: dataSize,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].size > rows[j].size })

	return &garbageResult{rows: rows, limit: opts.EffectiveMaxItems()}, nil
}

func (r *garbageResult) visible() int {
	if uint64(len(r.rows)) < uint64(r.limit) {
		return len(r.rows)
	}
	return int(r.limit)
}

func (r *garbageResult) summarize(rows []garbageRow) (uint64, int) {
	var size uint64
	for _, row := range rows {
		size += uint64(row.size)
	}
	return size, len(rows)
}

// EmitText renders the garbage listing with a remaining row (when
// truncated) and a totals row over every unreachable item.
func (r *garbageResult) EmitText(g *ir.Graph, w io.Writer) error {
	table := formats.NewTable(
		formats.Column{Align: formats.AlignRight, Title: "Bytes"},
		formats.Column{Align: formats.AlignRight, Title: "Size %"},
		formats.Column{Align: formats.AlignLeft, Title: "Garbage Item"},
	)

	max := r.visible()
	for _, row := range r.rows[:max] {
		table.AddRow(
			strconv.FormatUint(uint64(row.size), 10),
			formatPercent(percent(g, uint64(row.size))),
			row.name,
		)
	}

	if remSize, remCount := r.summarize(r.rows[max:]); remCount > 0 {
		table.AddRow(
			strconv.FormatUint(remSize, 10),
			formatPercent(percent(g, remSize)),
			"... and "+strconv.Itoa(remCount)+" more.",
		)
	}

	totalSize, totalCount := r.summarize(r.rows)
	table.AddRow(
		strconv.FormatUint(totalSize, 10),
		formatPercent(percent(g, totalSize)),
		"Σ ["+strconv.Itoa(totalCount)+" Total Rows]",
	)

	return table.WriteTo(w)
}

// EmitJSON streams the visible rows; summary rows are omitted.
func (r *garbageResult) EmitJSON(g *ir.Graph, w io.Writer) error {
	arr, err := formats.NewJSONArray(w)
	if err != nil {
		return err
	}
	for _, row := range r.rows[:r.visible()] {
		obj, err := arr.Object()
		if err != nil {
			return err
		}
		if err := obj.Field("name", row.name); err != nil {
			return err
		}
		if err := obj.Field("bytes", row.size); err != nil {
			return err
		}
		if err := obj.Field("size_percent", percent(g, uint64(row.size))); err != nil {
			return err
		}
		if err := obj.Close(); err != nil {
			return err
		}
	}
	return arr.Close()
}

// EmitCSV writes the visible rows plus the summary rows.
func (r *garbageResult) EmitCSV(g *ir.Graph, w io.Writer) error {
	wtr := csv.NewWriter(w)
	if err := wtr.Write([]string{"Name", "Bytes", "SizePercent"}); err != nil {
		return err
	}

	max := r.visible()
	for _, row := range r.rows[:max] {
		record := []string{
			row.name,
			strconv.FormatUint(uint64(row.size), 10),
			formatFloat(percent(g, uint64(row.size))),
		}
		if err := wtr.Write(record); err != nil {
			return err
		}
	}

	if remSize, remCount := r.summarize(r.rows[max:]); remCount > 0 {
		record := []string{
			"... and " + strconv.Itoa(remCount) + " more.",
			strconv.FormatUint(remSize, 10),
			formatFloat(percent(g, remSize)),
		}
		if err := wtr.Write(record); err != nil {
			return err
		}
	}

	totalSize, totalCount := r.summarize(r.rows)
	record := []string{
		"Σ [" + strconv.Itoa(totalCount) + " Total Rows]",
		strconv.FormatUint(totalSize, 10),
		formatFloat(percent(g, totalSize)),
	}
	if err := wtr.Write(record); err != nil {
		return err
	}

	wtr.Flush()
	return wtr.Error()
}
