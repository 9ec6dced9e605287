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

// monoInst is one monomorphized instantiation of a generic function.
type monoInst struct {
	name string
	size uint32
}

// monosEntry groups a generic function with its instantiations. The summary
// entries appended after truncation have no instantiation list.
type monosEntry struct {
	name  string
	insts []monoInst
	size  uint32
	bloat uint32
}

// monosResult is the bloat ranking produced by Monos.
type monosResult struct {
	entries []monosEntry
}

// Monos estimates how much code size is attributable to monomorphizations
// of generic functions.
func Monos(g *ir.Graph, opts *options.Monos) (Emit, error) {
	stems, err := collectMonomorphizations(g, opts)
	if err != nil {
		return nil, err
	}

	entries := processMonomorphizations(stems, opts)

	maxGenerics := int(opts.EffectiveMaxGenerics())
	if maxGenerics > len(entries) {
		maxGenerics = len(entries)
	}

	remCount, remSize, remBloat := summarizeMonosEntries(entries[maxGenerics:])
	totalCount, totalSize, totalBloat := summarizeMonosEntries(entries)

	entries = entries[:maxGenerics]
	if remCount > 0 {
		entries = append(entries, monosEntry{
			name:  "... and " + strconv.Itoa(remCount) + " more.",
			size:  remSize,
			bloat: remBloat,
		})
	}
	entries = append(entries, monosEntry{
		name:  "Σ [" + strconv.Itoa(totalCount) + " Total Rows]",
		size:  totalSize,
		bloat: totalBloat,
	})

	return &monosResult{entries: entries}, nil
}

// collectMonomorphizations groups instantiations by generic stem, each
// group deduplicated and sorted largest first.
func collectMonomorphizations(g *ir.Graph, opts *options.Monos) (map[string][]monoInst, error) {
	var matcher regexpSet
	var exact map[string]struct{}
	if len(opts.Functions) > 0 {
		if opts.UsingRegexps {
			var err error
			matcher, err = compileRegexps(opts.Functions)
			if err != nil {
				return nil, err
			}
		} else {
			exact = make(map[string]struct{}, len(opts.Functions))
			for _, name := range opts.Functions {
				exact[name] = struct{}{}
			}
		}
	}

	sets := make(map[string]map[monoInst]struct{})
	for _, it := range g.Iter() {
		generic := it.MonomorphizationOf()
		if generic == "" {
			continue
		}
		if matcher != nil && !matcher.matches(generic) {
			continue
		}
		if exact != nil {
			if _, ok := exact[generic]; !ok {
				continue
			}
		}
		set, ok := sets[generic]
		if !ok {
			set = make(map[monoInst]struct{})
			sets[generic] = set
		}
		set[monoInst{name: it.Name(), size: it.Size()}] = struct{}{}
	}

	stems := make(map[string][]monoInst, len(sets))
	for generic, set := range sets {
		insts := make([]monoInst, 0, len(set))
		for inst := range set {
			insts = append(insts, inst)
		}
		sort.Slice(insts, func(i, j int) bool {
			if insts[i].size != insts[j].size {
				return insts[i].size > insts[j].size
			}
			return insts[i].name < insts[j].name
		})
		stems[generic] = insts
	}
	return stems, nil
}

// calculateTotalAndBloat finds the honest lower bound on the savings of
// removing monomorphizations: the cheaper of removing all but the largest
// instantiation and removing all but one average-sized instantiation.
func calculateTotalAndBloat(insts []monoInst) (total uint32, bloat uint32) {
	var max uint32
	for _, inst := range insts {
		total += inst.size
		if inst.size > max {
			max = inst.size
		}
	}
	count := uint32(len(insts))
	if count == 0 {
		return 0, 0
	}
	sizePerInst := total / count
	avgSavings := sizePerInst * (count - 1)
	removeLargestSavings := total - max
	if avgSavings < removeLargestSavings {
		return total, avgSavings
	}
	return total, removeLargestSavings
}

func processMonomorphizations(stems map[string][]monoInst, opts *options.Monos) []monosEntry {
	entries := make([]monosEntry, 0, len(stems))
	for generic, insts := range stems {
		total, bloat := calculateTotalAndBloat(insts)

		if opts.OnlyGenerics {
			insts = nil
		} else {
			maxMonos := int(opts.EffectiveMaxMonos())
			if maxMonos < len(insts) {
				var remCount int
				var remSize uint32
				for _, inst := range insts[maxMonos:] {
					remCount++
					remSize += inst.size
				}
				insts = append(insts[:maxMonos:maxMonos], monoInst{
					name: "... and " + strconv.Itoa(remCount) + " more.",
					size: remSize,
				})
			}
		}

		entries = append(entries, monosEntry{
			name:  generic,
			insts: insts,
			size:  total,
			bloat: bloat,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return monosEntryLess(entries[i], entries[j]) })
	return entries
}

// monosEntryLess orders by bloat descending, total size descending,
// instantiation list, then name.
func monosEntryLess(a, b monosEntry) bool {
	if a.bloat != b.bloat {
		return a.bloat > b.bloat
	}
	if a.size != b.size {
		return a.size > b.size
	}
	for i := 0; i < len(a.insts) && i < len(b.insts); i++ {
		if a.insts[i].name != b.insts[i].name {
			return a.insts[i].name < b.insts[i].name
		}
		if a.insts[i].size != b.insts[i].size {
			return a.insts[i].size < b.insts[i].size
		}
	}
	if len(a.insts) != len(b.insts) {
		return len(a.insts) < len(b.insts)
	}
	return a.name < b.name
}

// summarizeMonosEntries counts rows (entries plus their instantiation rows)
// and sums sizes and bloat.
func summarizeMonosEntries(entries []monosEntry) (count int, size uint32, bloat uint32) {
	for _, e := range entries {
		count += 1 + len(e.insts)
		size += e.size
		bloat += e.bloat
	}
	return count, size, bloat
}

// EmitText renders one row per generic followed by its indented
// instantiations.
func (m *monosResult) EmitText(g *ir.Graph, w io.Writer) error {
	table := formats.NewTable(
		formats.Column{Align: formats.AlignRight, Title: "Apprx. Bloat Bytes"},
		formats.Column{Align: formats.AlignRight, Title: "Apprx. Bloat %"},
		formats.Column{Align: formats.AlignRight, Title: "Bytes"},
		formats.Column{Align: formats.AlignRight, Title: "%"},
		formats.Column{Align: formats.AlignLeft, Title: "Monomorphizations"},
	)

	for _, entry := range m.entries {
		table.AddRow(
			strconv.FormatUint(uint64(entry.bloat), 10),
			formatPercent(percent(g, uint64(entry.bloat))),
			strconv.FormatUint(uint64(entry.size), 10),
			formatPercent(percent(g, uint64(entry.size))),
			entry.name,
		)
		for _, inst := range entry.insts {
			table.AddRow(
				"",
				"",
				strconv.FormatUint(uint64(inst.size), 10),
				formatPercent(percent(g, uint64(inst.size))),
				"    "+inst.name,
			)
		}
	}

	return table.WriteTo(w)
}

// EmitJSON streams one object per entry with a nested instantiation array.
func (m *monosResult) EmitJSON(g *ir.Graph, w io.Writer) error {
	arr, err := formats.NewJSONArray(w)
	if err != nil {
		return err
	}

	for _, entry := range m.entries {
		obj, err := arr.Object()
		if err != nil {
			return err
		}
		if err := obj.Field("generic", entry.name); err != nil {
			return err
		}
		if err := obj.Field("approximate_monomorphization_bloat_bytes", entry.bloat); err != nil {
			return err
		}
		if err := obj.Field("approximate_monomorphization_bloat_percent", percent(g, uint64(entry.bloat))); err != nil {
			return err
		}
		if err := obj.Field("total_size", entry.size); err != nil {
			return err
		}
		if err := obj.Field("total_size_percent", percent(g, uint64(entry.size))); err != nil {
			return err
		}
		monos, err := obj.Array("monomorphizations")
		if err != nil {
			return err
		}
		for _, inst := range entry.insts {
			instObj, err := monos.Object()
			if err != nil {
				return err
			}
			if err := instObj.Field("name", inst.name); err != nil {
				return err
			}
			if err := instObj.Field("shallow_size", inst.size); err != nil {
				return err
			}
			if err := instObj.Field("shallow_size_percent", percent(g, uint64(inst.size))); err != nil {
				return err
			}
			if err := instObj.Close(); err != nil {
				return err
			}
		}
		if err := monos.Close(); err != nil {
			return err
		}
		if err := obj.Close(); err != nil {
			return err
		}
	}

	return arr.Close()
}

// EmitCSV writes one record per entry with the instantiation names joined.
func (m *monosResult) EmitCSV(g *ir.Graph, w io.Writer) error {
	wtr := csv.NewWriter(w)
	header := []string{
		"Generic",
		"ApproximateMonomorphizationBloatBytes",
		"ApproximateMonomorphizationBloatPercent",
		"TotalSize",
		"TotalSizePercent",
		"Monomorphizations",
	}
	if err := wtr.Write(header); err != nil {
		return err
	}

	for _, entry := range m.entries {
		names := make([]string, len(entry.insts))
		for i, inst := range entry.insts {
			names[i] = inst.name
		}
		record := []string{
			entry.name,
			strconv.FormatUint(uint64(entry.bloat), 10),
			formatFloat(percent(g, uint64(entry.bloat))),
			strconv.FormatUint(uint64(entry.size), 10),
			formatFloat(percent(g, uint64(entry.size))),
			strings.Join(names, ", "),
		}
		if err := wtr.Write(record); err != nil {
			return err
		}
	}

	wtr.Flush()
	return wtr.Error()
}
