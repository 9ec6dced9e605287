// Package demangle turns raw linker symbols into display names and recovers
// the generic function a monomorphized instantiation was produced from.
package demangle

import (
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// Demangle maps a raw symbol to its display name. Rust and Itanium C++
// manglings are decoded; anything else is returned unchanged.
func Demangle(symbol string) string {
	if symbol == "" {
		return ""
	}
	return demangle.Filter(symbol)
}

// GenericStem extracts the name of the generic function that a demangled
// symbol is a monomorphization of. It returns "" when the symbol does not
// look like an instantiation.
//
// Two cascading rules:
//
//  1. Rust symbols end in a "::h<hex>" hash segment. If the final path
//     segment is such a hash, the stem is everything before it. Mangled Rust
//     symbols do not carry the concrete type arguments, so this is all the
//     information available.
//  2. Otherwise, treat the symbol as a C++-style template instantiation and
//     take everything before the outermost '<'...'>' pair. A leading '<' is
//     a trait-impl path (`<T as Trait>::method`), not an instantiation.
func GenericStem(demangled string) string {
	if idx := strings.LastIndex(demangled, "::h"); idx >= 0 {
		if idx == strings.LastIndex(demangled, "::") && isHexSuffix(demangled[idx+3:]) {
			return demangled[:idx]
		}
	}

	open := strings.IndexByte(demangled, '<')
	close := strings.LastIndexByte(demangled, '>')
	if open <= 0 || close < open {
		return ""
	}
	return demangled[:open]
}

func isHexSuffix(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
