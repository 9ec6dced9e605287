package demangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDemangle_PassthroughUnmangled(t *testing.T) {
	assert.Equal(t, "wasm-function[42]", Demangle("wasm-function[42]"))
	assert.Equal(t, "memcpy", Demangle("memcpy"))
	assert.Equal(t, "", Demangle(""))
}

func TestDemangle_Itanium(t *testing.T) {
	// _Z3fooi => foo(int)
	assert.Equal(t, "foo(int)", Demangle("_Z3fooi"))
}

func TestGenericStem_RustHashSuffix(t *testing.T) {
	stem := GenericStem("alloc::vec::Vec<T>::push::h1234567890abcdef")
	assert.Equal(t, "alloc::vec::Vec<T>::push", stem)

	// A final segment that merely starts with 'h' is not a hash.
	assert.Equal(t, "", GenericStem("foo::hello"))
}

func TestGenericStem_TemplateBrackets(t *testing.T) {
	assert.Equal(t, "std::sort", GenericStem("std::sort<int*>"))
	assert.Equal(t, "", GenericStem("plain_function"))

	// Trait-impl paths start with '<' and are not instantiations.
	assert.Equal(t, "", GenericStem("<T as core::fmt::Debug>::fmt"))

	// '>' before '<' is not a bracket pair.
	assert.Equal(t, "", GenericStem("operator> <"))
}

func TestGenericStem_HashBeatsBrackets(t *testing.T) {
	// The hash rule wins even when the name also contains brackets.
	stem := GenericStem("core::ptr::drop_in_place<alloc::string::String>::hdeadbeef00000000")
	assert.Equal(t, "core::ptr::drop_in_place<alloc::string::String>", stem)
}
