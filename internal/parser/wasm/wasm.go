// Package wasm walks the WebAssembly binary format and lowers it into an ir
// graph: one item per section entry, edges for calls, global accesses,
// table elements, exports, and constant-address data loads.
package wasm

import (
	"fmt"
	"strings"

	apperrors "github.com/rustwasm/twiggy-sub000/pkg/errors"

	"github.com/rustwasm/twiggy-sub000/internal/ir"
)

// Section ids from the binary format.
const (
	secCustom    = 0
	secType      = 1
	secImport    = 2
	secFunction  = 3
	secTable     = 4
	secMemory    = 5
	secGlobal    = 6
	secExport    = 7
	secStart     = 8
	secElement   = 9
	secCode      = 10
	secData      = 11
	secDataCount = 12
)

// Import kinds.
const (
	importFunc   = 0
	importTable  = 1
	importMemory = 2
	importGlobal = 3
)

// Parser is the WebAssembly parser.
type Parser struct{}

// New creates a WebAssembly parser.
func New() *Parser { return &Parser{} }

// Name returns the parser's format name.
func (p *Parser) Name() string { return "wasm" }

// section is one section of the module, with its position in the file.
type section struct {
	id      byte
	index   int // position in the file, used as the ir section index
	payload []byte
	name    string // custom sections only
	size    uint32 // whole section span including id and size field
}

// module carries the intermediate state between the item pass and the edge
// pass.
type module struct {
	builder  *ir.Builder
	sections []section

	// Index spaces: imports first, then local definitions.
	typeIds   []ir.Id
	funcIds   []ir.Id // function declaration or import item per func index
	tableIds  []ir.Id
	memoryIds []ir.Id
	globalIds []ir.Id

	codeIds []ir.Id // body item per code entry
	elemIds []ir.Id

	numImportedFuncs int
	funcTypeIdx      []uint32 // type index per declared function

	funcNames map[uint32]string

	// Per code entry, the raw body bytes for the edge pass.
	codeBodies [][]byte
	// Element segments' function indices and tables for the edge pass.
	elemFuncs  [][]uint32
	elemTables []uint32
	// Export and start targets resolved during the edge pass.
	exportEdges []edge
	startFunc   *uint32
	startId     ir.Id
}

type edge struct {
	from ir.Id
	to   ir.Id
}

// Parse lowers the module into a frozen ir graph. The graph's size is the
// file length.
func (p *Parser) Parse(data []byte) (*ir.Graph, error) {
	r := newReader(data)

	magic, err := r.u32le()
	if err != nil {
		return nil, err
	}
	if magic != 0x6d736100 {
		return nil, apperrors.New(apperrors.CodeParseError, "not a wasm module: bad magic")
	}
	version, err := r.u32le()
	if err != nil {
		return nil, err
	}
	if version != 1 {
		return nil, apperrors.Newf(apperrors.CodeParseError, "unsupported wasm version %d", version)
	}

	m := &module{
		builder:   ir.NewBuilder(uint32(len(data))),
		funcNames: make(map[uint32]string),
	}

	if err := m.splitSections(r); err != nil {
		return nil, err
	}
	if err := m.parseNameSections(); err != nil {
		return nil, err
	}
	if err := m.parseItems(); err != nil {
		return nil, err
	}
	if err := m.parseEdges(); err != nil {
		return nil, err
	}

	return m.builder.Finish(), nil
}

// splitSections records every section's payload and position.
func (m *module) splitSections(r *reader) error {
	index := 0
	for !r.done() {
		start := r.pos
		id, err := r.byte()
		if err != nil {
			return err
		}
		size, err := r.u32()
		if err != nil {
			return err
		}
		payload, err := r.bytes(int(size))
		if err != nil {
			return err
		}

		sec := section{
			id:      id,
			index:   index,
			payload: payload,
			size:    uint32(r.pos - start),
		}
		if id == secCustom {
			pr := newReader(payload)
			name, err := pr.name()
			if err != nil {
				return err
			}
			sec.name = name
			sec.payload = payload[pr.pos:]
		}
		m.sections = append(m.sections, sec)
		index++
	}
	return nil
}

// parseNameSections collects function names ahead of item creation so that
// code items carry their symbols from the start.
func (m *module) parseNameSections() error {
	for _, sec := range m.sections {
		if sec.id != secCustom || sec.name != "name" {
			continue
		}
		r := newReader(sec.payload)
		for !r.done() {
			kind, err := r.byte()
			if err != nil {
				return err
			}
			size, err := r.u32()
			if err != nil {
				return err
			}
			body, err := r.bytes(int(size))
			if err != nil {
				return err
			}
			// Subsection 1 holds the function name map.
			if kind != 1 {
				continue
			}
			nr := newReader(body)
			count, err := nr.u32()
			if err != nil {
				return err
			}
			for i := uint32(0); i < count; i++ {
				idx, err := nr.u32()
				if err != nil {
					return err
				}
				name, err := nr.name()
				if err != nil {
					return err
				}
				m.funcNames[idx] = name
			}
		}
	}
	return nil
}

// parseItems creates one ir item per section entry.
func (m *module) parseItems() error {
	for _, sec := range m.sections {
		var err error
		switch sec.id {
		case secCustom:
			err = m.itemizeCustom(sec)
		case secType:
			err = m.itemizeType(sec)
		case secImport:
			err = m.itemizeImport(sec)
		case secFunction:
			err = m.itemizeFunction(sec)
		case secTable:
			err = m.itemizeTable(sec)
		case secMemory:
			err = m.itemizeMemory(sec)
		case secGlobal:
			err = m.itemizeGlobal(sec)
		case secExport:
			err = m.itemizeExport(sec)
		case secStart:
			err = m.itemizeStart(sec)
		case secElement:
			err = m.itemizeElement(sec)
		case secCode:
			err = m.itemizeCode(sec)
		case secData:
			err = m.itemizeData(sec)
		case secDataCount:
			// Carries no entries of its own.
		default:
			err = apperrors.Newf(apperrors.CodeParseError, "unknown section id %d", sec.id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *module) itemizeCustom(sec section) error {
	id := ir.SectionId(sec.index)
	name := fmt.Sprintf("custom section '%s'", sec.name)
	if sec.name == "name" || strings.HasPrefix(sec.name, ".debug") {
		m.builder.AddRoot(ir.NewDebug(id, sec.size, name))
	} else {
		m.builder.AddRoot(ir.NewMisc(id, sec.size, name))
	}
	return nil
}

func (m *module) itemizeType(sec section) error {
	r := newReader(sec.payload)
	count, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		start := r.pos
		form, err := r.byte()
		if err != nil {
			return err
		}
		if form != 0x60 {
			return apperrors.Newf(apperrors.CodeParseError, "unexpected type form %#x", form)
		}
		for range [2]int{} {
			n, err := r.u32()
			if err != nil {
				return err
			}
			if err := r.skip(int(n)); err != nil {
				return err
			}
		}
		id := ir.EntryId(sec.index, int(i))
		m.builder.AddItem(ir.NewMisc(id, uint32(r.pos-start), fmt.Sprintf("type[%d]", i)))
		m.typeIds = append(m.typeIds, id)
	}
	return nil
}

func (m *module) itemizeImport(sec section) error {
	r := newReader(sec.payload)
	count, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		start := r.pos
		mod, err := r.name()
		if err != nil {
			return err
		}
		field, err := r.name()
		if err != nil {
			return err
		}
		kind, err := r.byte()
		if err != nil {
			return err
		}

		id := ir.EntryId(sec.index, int(i))
		switch kind {
		case importFunc:
			if _, err := r.u32(); err != nil {
				return err
			}
			m.funcIds = append(m.funcIds, id)
			m.numImportedFuncs++
		case importTable:
			if _, err := r.byte(); err != nil {
				return err
			}
			if err := skipLimits(r); err != nil {
				return err
			}
			m.tableIds = append(m.tableIds, id)
		case importMemory:
			if err := skipLimits(r); err != nil {
				return err
			}
			m.memoryIds = append(m.memoryIds, id)
		case importGlobal:
			if err := r.skip(2); err != nil {
				return err
			}
			m.globalIds = append(m.globalIds, id)
		default:
			return apperrors.Newf(apperrors.CodeParseError, "unknown import kind %d", kind)
		}

		name := fmt.Sprintf("import %s::%s", mod, field)
		m.builder.AddItem(ir.NewMisc(id, uint32(r.pos-start), name))
	}
	return nil
}

func skipLimits(r *reader) error {
	flags, err := r.byte()
	if err != nil {
		return err
	}
	if _, err := r.u32(); err != nil {
		return err
	}
	if flags&1 != 0 {
		if _, err := r.u32(); err != nil {
			return err
		}
	}
	return nil
}

func (m *module) itemizeFunction(sec section) error {
	r := newReader(sec.payload)
	count, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		start := r.pos
		typeIdx, err := r.u32()
		if err != nil {
			return err
		}
		id := ir.EntryId(sec.index, int(i))
		funcIdx := len(m.funcIds)
		m.builder.AddItem(ir.NewMisc(id, uint32(r.pos-start), fmt.Sprintf("func[%d]", funcIdx)))
		m.funcIds = append(m.funcIds, id)
		m.funcTypeIdx = append(m.funcTypeIdx, typeIdx)
	}
	return nil
}

func (m *module) itemizeTable(sec section) error {
	r := newReader(sec.payload)
	count, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		start := r.pos
		if _, err := r.byte(); err != nil {
			return err
		}
		if err := skipLimits(r); err != nil {
			return err
		}
		id := ir.EntryId(sec.index, int(i))
		m.builder.AddItem(ir.NewMisc(id, uint32(r.pos-start), fmt.Sprintf("table[%d]", len(m.tableIds))))
		m.tableIds = append(m.tableIds, id)
	}
	return nil
}

func (m *module) itemizeMemory(sec section) error {
	r := newReader(sec.payload)
	count, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		start := r.pos
		if err := skipLimits(r); err != nil {
			return err
		}
		id := ir.EntryId(sec.index, int(i))
		m.builder.AddItem(ir.NewMisc(id, uint32(r.pos-start), fmt.Sprintf("memory[%d]", len(m.memoryIds))))
		m.memoryIds = append(m.memoryIds, id)
	}
	return nil
}

func (m *module) itemizeGlobal(sec section) error {
	r := newReader(sec.payload)
	count, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		start := r.pos
		if err := r.skip(2); err != nil { // valtype, mutability
			return err
		}
		if _, err := skipInitExpr(r); err != nil {
			return err
		}
		id := ir.EntryId(sec.index, int(i))
		m.builder.AddItem(ir.NewMisc(id, uint32(r.pos-start), fmt.Sprintf("global[%d]", len(m.globalIds))))
		m.globalIds = append(m.globalIds, id)
	}
	return nil
}

func (m *module) itemizeExport(sec section) error {
	r := newReader(sec.payload)
	count, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		start := r.pos
		name, err := r.name()
		if err != nil {
			return err
		}
		kind, err := r.byte()
		if err != nil {
			return err
		}
		index, err := r.u32()
		if err != nil {
			return err
		}

		id := ir.EntryId(sec.index, int(i))
		m.builder.AddRoot(ir.NewMisc(id, uint32(r.pos-start), fmt.Sprintf("export \"%s\"", name)))

		var target []ir.Id
		switch kind {
		case 0:
			target = m.funcIds
		case 1:
			target = m.tableIds
		case 2:
			target = m.memoryIds
		case 3:
			target = m.globalIds
		default:
			return apperrors.Newf(apperrors.CodeParseError, "unknown export kind %d", kind)
		}
		if int(index) >= len(target) {
			return apperrors.Newf(apperrors.CodeParseError, "export %q references unknown index %d", name, index)
		}
		m.exportEdges = append(m.exportEdges, edge{from: id, to: target[index]})
	}
	return nil
}

func (m *module) itemizeStart(sec section) error {
	r := newReader(sec.payload)
	funcIdx, err := r.u32()
	if err != nil {
		return err
	}
	id := ir.SectionId(sec.index)
	m.builder.AddRoot(ir.NewMisc(id, sec.size, "start"))
	m.startFunc = &funcIdx
	m.startId = id
	return nil
}

func (m *module) itemizeElement(sec section) error {
	r := newReader(sec.payload)
	count, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		start := r.pos
		tableIdx, err := r.u32()
		if err != nil {
			return err
		}
		if _, err := skipInitExpr(r); err != nil {
			return err
		}
		n, err := r.u32()
		if err != nil {
			return err
		}
		funcs := make([]uint32, 0, n)
		for j := uint32(0); j < n; j++ {
			funcIdx, err := r.u32()
			if err != nil {
				return err
			}
			funcs = append(funcs, funcIdx)
		}

		id := ir.EntryId(sec.index, int(i))
		m.builder.AddItem(ir.NewMisc(id, uint32(r.pos-start), fmt.Sprintf("elem[%d]", i)))
		m.elemIds = append(m.elemIds, id)
		m.elemFuncs = append(m.elemFuncs, funcs)
		m.elemTables = append(m.elemTables, tableIdx)
	}
	return nil
}

func (m *module) itemizeCode(sec section) error {
	r := newReader(sec.payload)
	count, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		start := r.pos
		bodySize, err := r.u32()
		if err != nil {
			return err
		}
		body, err := r.bytes(int(bodySize))
		if err != nil {
			return err
		}

		funcIdx := uint32(m.numImportedFuncs) + i
		id := ir.EntryId(sec.index, int(i))
		symbol := m.funcNames[funcIdx]
		m.builder.AddItem(ir.NewCode(id, uint32(r.pos-start), symbol, fmt.Sprintf("code[%d]", i)))
		m.codeIds = append(m.codeIds, id)
		m.codeBodies = append(m.codeBodies, body)
	}
	return nil
}

func (m *module) itemizeData(sec section) error {
	r := newReader(sec.payload)
	count, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		start := r.pos
		flags, err := r.u32()
		if err != nil {
			return err
		}

		var offset *int64
		switch flags {
		case 0:
			offset, err = skipInitExpr(r)
		case 1:
			// Passive segment: no offset expression.
		case 2:
			if _, err = r.u32(); err == nil {
				offset, err = skipInitExpr(r)
			}
		default:
			err = apperrors.Newf(apperrors.CodeParseError, "unknown data segment flags %d", flags)
		}
		if err != nil {
			return err
		}

		n, err := r.u32()
		if err != nil {
			return err
		}
		if err := r.skip(int(n)); err != nil {
			return err
		}

		id := ir.EntryId(sec.index, int(i))
		m.builder.AddItem(ir.NewData(id, uint32(r.pos-start), fmt.Sprintf("data[%d]", i), ""))
		if offset != nil {
			m.builder.LinkData(*offset, int(n), id)
		}
	}
	return nil
}

// skipInitExpr walks a constant expression up to its end opcode, returning
// the value when the expression is a single i32.const.
func skipInitExpr(r *reader) (*int64, error) {
	var constValue *int64
	first := true
	for {
		op, err := r.byte()
		if err != nil {
			return nil, err
		}
		switch op {
		case 0x0B: // end
			return constValue, nil
		case 0x41: // i32.const
			v, err := r.s64()
			if err != nil {
				return nil, err
			}
			if first {
				constValue = &v
			}
		case 0x42: // i64.const
			if _, err := r.s64(); err != nil {
				return nil, err
			}
		case 0x43:
			if err := r.f32(); err != nil {
				return nil, err
			}
		case 0x44:
			if err := r.f64(); err != nil {
				return nil, err
			}
		case 0x23: // global.get
			if _, err := r.u32(); err != nil {
				return nil, err
			}
		case 0xD0: // ref.null
			if _, err := r.byte(); err != nil {
				return nil, err
			}
		case 0xD2: // ref.func
			if _, err := r.u32(); err != nil {
				return nil, err
			}
		default:
			return nil, apperrors.Newf(apperrors.CodeParseError, "unexpected opcode %#x in constant expression", op)
		}
		first = false
	}
}

// parseEdges wires the edges that need the full item table: declarations to
// types and bodies, bodies to callees, globals, and data, exports and the
// start section to their targets, and tables to their element segments.
func (m *module) parseEdges() error {
	// function declaration -> type, declaration -> body
	for i, typeIdx := range m.funcTypeIdx {
		declId := m.funcIds[m.numImportedFuncs+i]
		if int(typeIdx) < len(m.typeIds) {
			m.builder.AddEdge(declId, m.typeIds[typeIdx])
		}
		if i < len(m.codeIds) {
			m.builder.AddEdge(declId, m.codeIds[i])
		}
	}

	// export -> target
	for _, e := range m.exportEdges {
		m.builder.AddEdge(e.from, e.to)
	}

	// start -> function
	if m.startFunc != nil && int(*m.startFunc) < len(m.funcIds) {
		m.builder.AddEdge(m.startId, m.funcIds[*m.startFunc])
	}

	// table -> element segment -> functions
	for i, elemId := range m.elemIds {
		if int(m.elemTables[i]) < len(m.tableIds) {
			m.builder.AddEdge(m.tableIds[m.elemTables[i]], elemId)
		}
		for _, funcIdx := range m.elemFuncs[i] {
			if int(funcIdx) < len(m.funcIds) {
				m.builder.AddEdge(elemId, m.funcIds[funcIdx])
			}
		}
	}

	// body -> called function, referenced global, referenced data
	for i, body := range m.codeBodies {
		m.scanBody(m.codeIds[i], body)
	}

	return nil
}
