// Package elf lowers ELF objects and executables into an ir graph using the
// standard library's debug/elf reader. Defined function and object symbols
// become items, every non-null section becomes a section item, and
// relocation entries become edges.
package elf

import (
	"bytes"
	"debug/elf"
	"fmt"
	"strings"

	apperrors "github.com/rustwasm/twiggy-sub000/pkg/errors"

	"github.com/rustwasm/twiggy-sub000/internal/ir"
)

// Parser is the ELF parser.
type Parser struct{}

// New creates an ELF parser.
func New() *Parser { return &Parser{} }

// Name returns the parser's format name.
func (p *Parser) Name() string { return "elf" }

// Parse lowers the object into a frozen ir graph. The graph's size is the
// sum of the loadable segments' file sizes.
func (p *Parser) Parse(data []byte) (*ir.Graph, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeParseError, "reading ELF", err)
	}
	defer f.Close()

	var size uint64
	for _, prog := range f.Progs {
		if prog.Type == elf.PT_LOAD {
			size += prog.Filesz
		}
	}

	b := ir.NewBuilder(uint32(size))
	w := &walker{file: f, builder: b}

	w.itemizeSections()
	if err := w.itemizeSymbols(); err != nil {
		return nil, err
	}
	if err := w.addRelocationEdges(); err != nil {
		return nil, err
	}

	return b.Finish(), nil
}

// walker carries the symbol and section tables between the item pass and
// the relocation pass.
type walker struct {
	file    *elf.File
	builder *ir.Builder

	// symbolIds maps a 1-based symbol-table index to its item, matching
	// the indices relocation entries carry.
	symbolIds map[int]ir.Id
	symbols   []elf.Symbol
	// sectionIds maps a section header index to its section item.
	sectionIds map[int]ir.Id
}

// itemizeSections creates one item per non-null section. Debug, symbol-table
// and string-table sections are roots: nothing references them, yet they
// occupy file space.
func (w *walker) itemizeSections() {
	w.sectionIds = make(map[int]ir.Id)
	for i, sec := range w.file.Sections {
		if sec.Type == elf.SHT_NULL {
			continue
		}

		size := uint32(sec.FileSize)
		if sec.Type == elf.SHT_NOBITS {
			size = 0
		}
		id := ir.SectionId(i)
		w.sectionIds[i] = id

		switch {
		case strings.HasPrefix(sec.Name, ".debug"):
			w.builder.AddRoot(ir.NewDebug(id, size, fmt.Sprintf("section '%s'", sec.Name)))
		case sec.Type == elf.SHT_SYMTAB || sec.Type == elf.SHT_STRTAB:
			w.builder.AddRoot(ir.NewDebug(id, size, fmt.Sprintf("section '%s'", sec.Name)))
		default:
			w.builder.AddItem(ir.NewMisc(id, 0, fmt.Sprintf("section '%s'", sec.Name)))
		}
	}
}

// itemizeSymbols creates a code or data item per defined symbol. Global
// function and object symbols are the binary's outward surface, so they are
// roots, as is the symbol containing the entry point.
func (w *walker) itemizeSymbols() error {
	symbols, err := w.file.Symbols()
	if err != nil {
		if err == elf.ErrNoSymbols {
			return nil
		}
		return apperrors.Wrap(apperrors.CodeParseError, "reading symbol table", err)
	}

	w.symbols = symbols
	w.symbolIds = make(map[int]ir.Id, len(symbols))

	for i, sym := range symbols {
		if sym.Section == elf.SHN_UNDEF || sym.Section >= elf.SHN_LORESERVE {
			continue
		}
		symType := elf.ST_TYPE(sym.Info)
		if symType != elf.STT_FUNC && symType != elf.STT_OBJECT {
			continue
		}

		// debug/elf omits the null symbol, so table indices are off by one.
		tableIdx := i + 1
		id := ir.EntryId(int(sym.Section), tableIdx)
		w.symbolIds[tableIdx] = id

		var item *ir.Item
		if symType == elf.STT_FUNC {
			item = ir.NewCode(id, uint32(sym.Size), sym.Name, fmt.Sprintf("function[%d]", tableIdx))
		} else {
			item = ir.NewData(id, uint32(sym.Size), sym.Name, "")
		}

		isRoot := elf.ST_BIND(sym.Info) == elf.STB_GLOBAL || w.containsEntryPoint(sym)
		if isRoot {
			w.builder.AddRoot(item)
		} else {
			w.builder.AddItem(item)
		}

		// The symbol is accounted under its section.
		if secId, ok := w.sectionIds[int(sym.Section)]; ok {
			w.builder.AddEdge(secId, id)
		}
	}
	return nil
}

func (w *walker) containsEntryPoint(sym elf.Symbol) bool {
	entry := w.file.Entry
	return entry != 0 && sym.Value <= entry && entry < sym.Value+sym.Size
}

// addRelocationEdges decodes SHT_RELA and SHT_REL sections and adds an edge
// from the symbol containing each relocation site to the relocation's
// target symbol. Addend handling is deliberately untouched: ABS32-style
// addends on non-function symbols are not resolved further.
func (w *walker) addRelocationEdges() error {
	for _, sec := range w.file.Sections {
		if sec.Type != elf.SHT_RELA && sec.Type != elf.SHT_REL {
			continue
		}
		// Info names the section the relocations apply to.
		targetSection := int(sec.Info)

		data, err := sec.Data()
		if err != nil {
			return apperrors.Wrap(apperrors.CodeParseError, "reading relocation section", err)
		}
		if err := w.walkRelocations(sec.Type, data, targetSection); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkRelocations(secType elf.SectionType, data []byte, targetSection int) error {
	order := w.file.ByteOrder
	is64 := w.file.Class == elf.ELFCLASS64

	var entrySize int
	switch {
	case is64 && secType == elf.SHT_RELA:
		entrySize = 24
	case is64:
		entrySize = 16
	case secType == elf.SHT_RELA:
		entrySize = 12
	default:
		entrySize = 8
	}

	for off := 0; off+entrySize <= len(data); off += entrySize {
		var rOffset uint64
		var symIdx int
		if is64 {
			rOffset = order.Uint64(data[off:])
			info := order.Uint64(data[off+8:])
			symIdx = int(info >> 32)
		} else {
			rOffset = uint64(order.Uint32(data[off:]))
			info := order.Uint32(data[off+4:])
			symIdx = int(info >> 8)
		}
		if symIdx == 0 {
			continue
		}

		toId, ok := w.symbolIds[symIdx]
		if !ok {
			continue
		}
		fromId, ok := w.symbolContaining(targetSection, rOffset)
		if !ok || fromId == toId {
			continue
		}
		w.builder.AddEdge(fromId, toId)
	}
	return nil
}

// symbolContaining finds the defined symbol whose address range covers the
// given offset within the given section.
func (w *walker) symbolContaining(sectionIdx int, offset uint64) (ir.Id, bool) {
	for i, sym := range w.symbols {
		tableIdx := i + 1
		id, ok := w.symbolIds[tableIdx]
		if !ok || int(sym.Section) != sectionIdx {
			continue
		}
		if sym.Value <= offset && offset < sym.Value+sym.Size {
			return id, true
		}
	}
	return ir.Id{}, false
}
