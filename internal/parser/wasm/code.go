package wasm

import "github.com/rustwasm/twiggy-sub000/internal/ir"

// scanBody walks a function body's instruction stream and records edges for
// direct calls, global accesses, function references, and loads from
// constant addresses. Operands are decoded only far enough to stay aligned;
// an opcode the scanner does not know ends the scan with whatever edges
// were found so far.
func (m *module) scanBody(bodyId ir.Id, body []byte) {
	r := newReader(body)

	// Local declarations precede the instructions.
	count, err := r.u32()
	if err != nil {
		return
	}
	for i := uint32(0); i < count; i++ {
		if _, err := r.u32(); err != nil {
			return
		}
		if _, err := r.byte(); err != nil {
			return
		}
	}

	seen := make(map[ir.Id]struct{})
	addEdge := func(to ir.Id) {
		if to == bodyId {
			return
		}
		if _, dup := seen[to]; dup {
			return
		}
		seen[to] = struct{}{}
		m.builder.AddEdge(bodyId, to)
	}

	// The value of the most recent i32.const, if the instruction directly
	// before the current one set it.
	var lastConst *int64

	for !r.done() {
		op, err := r.byte()
		if err != nil {
			return
		}
		var nextConst *int64

		switch {
		case op == 0x41: // i32.const
			v, err := r.s64()
			if err != nil {
				return
			}
			nextConst = &v

		case op >= 0x28 && op <= 0x3E: // loads and stores
			align, err := r.u32()
			if err != nil {
				return
			}
			_ = align
			offset, err := r.u32()
			if err != nil {
				return
			}
			// A constant address feeding a memory access resolves to the
			// data segment covering it.
			if lastConst != nil && op <= 0x35 {
				if dataId, ok := m.builder.GetData(uint32(uint64(*lastConst) + uint64(offset))); ok {
					addEdge(dataId)
				}
			}

		case op == 0x10: // call
			funcIdx, err := r.u32()
			if err != nil {
				return
			}
			if int(funcIdx) < len(m.funcIds) {
				addEdge(m.funcIds[funcIdx])
			}

		case op == 0x11: // call_indirect
			typeIdx, err := r.u32()
			if err != nil {
				return
			}
			if _, err := r.u32(); err != nil {
				return
			}
			if int(typeIdx) < len(m.typeIds) {
				addEdge(m.typeIds[typeIdx])
			}

		case op == 0x23 || op == 0x24: // global.get, global.set
			globalIdx, err := r.u32()
			if err != nil {
				return
			}
			if int(globalIdx) < len(m.globalIds) {
				addEdge(m.globalIds[globalIdx])
			}

		case op == 0xD2: // ref.func
			funcIdx, err := r.u32()
			if err != nil {
				return
			}
			if int(funcIdx) < len(m.funcIds) {
				addEdge(m.funcIds[funcIdx])
			}

		default:
			if !m.skipOperands(r, op) {
				return
			}
		}

		lastConst = nextConst
	}
}

// skipOperands advances past an opcode's immediates. It reports false for
// opcodes it cannot decode.
func (m *module) skipOperands(r *reader, op byte) bool {
	skipU32 := func(n int) bool {
		for i := 0; i < n; i++ {
			if _, err := r.u32(); err != nil {
				return false
			}
		}
		return true
	}

	switch {
	case op <= 0x01, op == 0x05, op == 0x0B, op == 0x0F: // unreachable, nop, else, end, return
		return true
	case op >= 0x02 && op <= 0x04: // block, loop, if: block type
		_, err := r.s64()
		return err == nil
	case op == 0x0C || op == 0x0D: // br, br_if
		return skipU32(1)
	case op == 0x0E: // br_table
		n, err := r.u32()
		if err != nil {
			return false
		}
		return skipU32(int(n) + 1)
	case op == 0x1A || op == 0x1B: // drop, select
		return true
	case op == 0x1C: // select with types
		n, err := r.u32()
		if err != nil {
			return false
		}
		return r.skip(int(n)) == nil
	case op >= 0x20 && op <= 0x26: // local.*, table.get/set
		return skipU32(1)
	case op == 0x3F || op == 0x40: // memory.size, memory.grow
		_, err := r.byte()
		return err == nil
	case op == 0x42: // i64.const
		_, err := r.s64()
		return err == nil
	case op == 0x43:
		return r.f32() == nil
	case op == 0x44:
		return r.f64() == nil
	case op >= 0x45 && op <= 0xC4: // numeric ops, no immediates
		return true
	case op == 0xD0: // ref.null
		_, err := r.byte()
		return err == nil
	case op == 0xD1: // ref.is_null
		return true
	case op == 0xFC:
		return m.skipMiscOperands(r)
	default:
		return false
	}
}

func (m *module) skipMiscOperands(r *reader) bool {
	sub, err := r.u32()
	if err != nil {
		return false
	}
	skipU32 := func(n int) bool {
		for i := 0; i < n; i++ {
			if _, err := r.u32(); err != nil {
				return false
			}
		}
		return true
	}
	switch sub {
	case 0, 1, 2, 3, 4, 5, 6, 7: // saturating truncations
		return true
	case 8: // memory.init
		if !skipU32(1) {
			return false
		}
		_, err := r.byte()
		return err == nil
	case 9, 13: // data.drop, elem.drop
		return skipU32(1)
	case 10: // memory.copy
		return r.skip(2) == nil
	case 11: // memory.fill
		return r.skip(1) == nil
	case 12, 14: // table.init, table.copy
		return skipU32(2)
	case 15, 16, 17: // table.grow, table.size, table.fill
		return skipU32(1)
	default:
		return false
	}
}
