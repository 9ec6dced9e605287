// Package ir holds the architecture- and target-independent representation
// of the functions, data segments, sections, and other entities in a binary
// that is being size profiled. Parsers populate a Builder; analyses query
// the frozen Graph it produces.
package ir

import (
	"fmt"
	"math"
)

// Id is an item's unique identifier: the index of the section the item lives
// in, and the index of the entry within that section.
type Id struct {
	section uint32
	entry   uint32
}

// sentinel entry index marking an item that spans a whole section.
const wholeSection = math.MaxUint32

// SectionId creates an Id for the given section as a whole.
func SectionId(section int) Id {
	if section >= math.MaxUint32 {
		panic(fmt.Sprintf("ir: section index %d out of range", section))
	}
	return Id{section: uint32(section), entry: wholeSection}
}

// EntryId creates an Id for the given entry in the given section.
func EntryId(section, index int) Id {
	if section >= math.MaxUint32 {
		panic(fmt.Sprintf("ir: section index %d out of range", section))
	}
	if index >= math.MaxUint32 {
		panic(fmt.Sprintf("ir: entry index %d out of range", index))
	}
	return Id{section: uint32(section), entry: uint32(index)}
}

// MetaRootId returns the Id reserved for the synthetic meta root.
func MetaRootId() Id {
	return Id{section: math.MaxUint32, entry: math.MaxUint32}
}

// Less reports whether id orders before other, lexicographically by
// (section, entry).
func (id Id) Less(other Id) bool {
	if id.section != other.section {
		return id.section < other.section
	}
	return id.entry < other.entry
}

// Serializable packs the identifier into a single 64-bit value for stable
// external identity.
func (id Id) Serializable() uint64 {
	return uint64(id.section)<<32 | uint64(id.entry)
}

// String implements fmt.Stringer.
func (id Id) String() string {
	if id == MetaRootId() {
		return "Id(<meta root>)"
	}
	if id.entry == wholeSection {
		return fmt.Sprintf("Id(section %d)", id.section)
	}
	return fmt.Sprintf("Id(%d, %d)", id.section, id.entry)
}
