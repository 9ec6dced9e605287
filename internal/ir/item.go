package ir

import "github.com/rustwasm/twiggy-sub000/internal/demangle"

// ItemKind classifies what an item is in the binary.
type ItemKind int

const (
	// KindCode is executable code: function bodies and their declarations.
	KindCode ItemKind = iota
	// KindData is data inside the binary that may or may not end up loaded
	// into memory with the executable code.
	KindData
	// KindDebug is debugging symbols and information, such as DWARF or name
	// sections.
	KindDebug
	// KindMisc is anything else: type signatures, imports, metadata.
	KindMisc
)

// String returns the kind's display name.
func (k ItemKind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindData:
		return "data"
	case KindDebug:
		return "debug"
	default:
		return "misc"
	}
}

// Item is an immutable entity in the binary: a function, a data segment, a
// section, an export. Items are created once by a parser and never mutated.
type Item struct {
	id   Id
	size uint32
	kind ItemKind
	name string

	// Code only.
	symbol             string
	demangled          string
	monomorphizationOf string

	// Data only.
	dataType string
}

// NewCode creates a code item. symbol is the raw linker symbol if one is
// known, and fallback is the display name used when there is none (for
// example "code[7]"). The demangled form and the generic stem are derived
// here, once, so that analyses never pay for demangling.
func NewCode(id Id, size uint32, symbol, fallback string) *Item {
	it := &Item{
		id:     id,
		size:   size,
		kind:   KindCode,
		symbol: symbol,
	}
	if symbol != "" {
		it.demangled = demangle.Demangle(symbol)
		it.monomorphizationOf = demangle.GenericStem(it.demangled)
	}
	switch {
	case it.demangled != "":
		it.name = it.demangled
	case symbol != "":
		it.name = symbol
	default:
		it.name = fallback
	}
	return it
}

// NewData creates a data item. dataType describes the data's type when the
// parser knows it, and may be empty.
func NewData(id Id, size uint32, name, dataType string) *Item {
	return &Item{id: id, size: size, kind: KindData, name: name, dataType: dataType}
}

// NewDebug creates a debug-information item.
func NewDebug(id Id, size uint32, name string) *Item {
	return &Item{id: id, size: size, kind: KindDebug, name: name}
}

// NewMisc creates a miscellaneous item.
func NewMisc(id Id, size uint32, name string) *Item {
	return &Item{id: id, size: size, kind: KindMisc, name: name}
}

// Id returns the item's identifier.
func (it *Item) Id() Id { return it.id }

// Size returns the number of bytes attributed directly to the item.
func (it *Item) Size() uint32 { return it.size }

// Kind returns the item's kind.
func (it *Item) Kind() ItemKind { return it.kind }

// Name returns the item's display name. For code this prefers the demangled
// name over the raw symbol over the parser-provided fallback.
func (it *Item) Name() string { return it.name }

// Symbol returns the raw linker symbol for code items, or "".
func (it *Item) Symbol() string { return it.symbol }

// DataType returns the type descriptor for data items, or "".
func (it *Item) DataType() string { return it.dataType }

// MonomorphizationOf returns the name of the generic function this item is a
// monomorphization of, or "" if it is not one.
func (it *Item) MonomorphizationOf() string { return it.monomorphizationOf }
