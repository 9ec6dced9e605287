// Package testutil provides shared graph fixtures and assertion helpers for
// tests.
package testutil

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/rustwasm/twiggy-sub000/internal/ir"
)

// ShallowGraph builds a graph with three disconnected root items:
// A(10), B(20), C(1), in a 100-byte binary.
func ShallowGraph() *ir.Graph {
	b := ir.NewBuilder(100)
	b.AddRoot(ir.NewMisc(ir.EntryId(0, 0), 10, "A"))
	b.AddRoot(ir.NewMisc(ir.EntryId(0, 1), 20, "B"))
	b.AddRoot(ir.NewMisc(ir.EntryId(0, 2), 1, "C"))
	return b.Finish()
}

// ChainGraph builds meta-root -> X(5) -> Y(7) -> Z(3) in a 100-byte binary.
func ChainGraph() *ir.Graph {
	b := ir.NewBuilder(100)
	x := b.AddRoot(ir.NewMisc(ir.EntryId(0, 0), 5, "X"))
	y := b.AddItem(ir.NewMisc(ir.EntryId(0, 1), 7, "Y"))
	z := b.AddItem(ir.NewMisc(ir.EntryId(0, 2), 3, "Z"))
	b.AddEdge(x, y)
	b.AddEdge(y, z)
	return b.Finish()
}

// GarbageGraph builds root A(4) -> B(8) with unreachable C(2) in a 100-byte
// binary.
func GarbageGraph() *ir.Graph {
	b := ir.NewBuilder(100)
	a := b.AddRoot(ir.NewMisc(ir.EntryId(0, 0), 4, "A"))
	bb := b.AddItem(ir.NewMisc(ir.EntryId(0, 1), 8, "B"))
	b.AddItem(ir.NewMisc(ir.EntryId(0, 2), 2, "C"))
	b.AddEdge(a, bb)
	return b.Finish()
}

// SharedTargetGraph builds roots A(1) and C(1) both pointing at B(6).
func SharedTargetGraph() *ir.Graph {
	b := ir.NewBuilder(100)
	a := b.AddRoot(ir.NewMisc(ir.EntryId(0, 0), 1, "A"))
	bb := b.AddItem(ir.NewMisc(ir.EntryId(0, 1), 6, "B"))
	c := b.AddRoot(ir.NewMisc(ir.EntryId(0, 2), 1, "C"))
	b.AddEdge(a, bb)
	b.AddEdge(c, bb)
	return b.Finish()
}

// MonosGraph builds three equal-sized instantiations of one generic stem
// plus one singleton instantiation of another.
func MonosGraph() *ir.Graph {
	b := ir.NewBuilder(1000)
	b.AddRoot(ir.NewCode(ir.EntryId(0, 0), 10, "f::ha000000000000001", "code[0]"))
	b.AddItem(ir.NewCode(ir.EntryId(0, 1), 10, "f::ha000000000000002", "code[1]"))
	b.AddItem(ir.NewCode(ir.EntryId(0, 2), 10, "f::ha000000000000003", "code[2]"))
	b.AddItem(ir.NewCode(ir.EntryId(0, 3), 9, "lonely::hb00000000000000f", "code[3]"))
	return b.Finish()
}

// AssertJSONEqual asserts that two JSON strings are semantically equal.
func AssertJSONEqual(t *testing.T, expected, actual string) {
	t.Helper()

	var expectedJSON, actualJSON interface{}

	if err := json.Unmarshal([]byte(expected), &expectedJSON); err != nil {
		t.Fatalf("failed to parse expected JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(actual), &actualJSON); err != nil {
		t.Fatalf("failed to parse actual JSON: %v", err)
	}

	if !reflect.DeepEqual(expectedJSON, actualJSON) {
		expectedPretty, _ := json.MarshalIndent(expectedJSON, "", "  ")
		actualPretty, _ := json.MarshalIndent(actualJSON, "", "  ")
		t.Errorf("JSON not equal:\nExpected:\n%s\n\nActual:\n%s", expectedPretty, actualPretty)
	}
}
