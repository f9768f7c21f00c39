package value

import (
	"fmt"

	"github.com/mna/glox/lang/intern"
)

// A Builder is the write surface used to construct a Chunk. The compiler
// owns exactly one Builder per function being compiled.
type Builder struct {
	code      []byte
	constants []Value
	constIdx  map[Value]int
	strIdx    map[*intern.Symbol]int
	lines     []lineRun

	pendingPatches int // unresolved Patch tokens outstanding
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		constIdx: make(map[Value]int),
		strIdx:   make(map[*intern.Symbol]int),
	}
}

// Len returns the current code length.
func (b *Builder) Len() int { return len(b.code) }

// EmitOpcode appends op and records its source line, then returns the
// position of the opcode within the code stream. Line numbers recorded
// across calls must be non-decreasing.
func (b *Builder) EmitOpcode(op Op, line int) int {
	pos := len(b.code)
	b.code = append(b.code, byte(op))
	b.recordLine(line)
	return pos
}

// EmitByte appends a single operand byte. It must follow an opcode that
// still expects at least one more operand byte.
func (b *Builder) EmitByte(v byte) {
	b.code = append(b.code, v)
	b.recordLine(b.lastLine())
}

// EmitShort appends a big-endian u16 operand.
func (b *Builder) EmitShort(v uint16) {
	b.EmitByte(byte(v >> 8))
	b.EmitByte(byte(v))
}

func (b *Builder) recordLine(line int) {
	if n := len(b.lines); n > 0 && b.lines[n-1].line == line {
		b.lines[n-1].count++
		return
	}
	b.lines = append(b.lines, lineRun{line: line, count: 1})
}

func (b *Builder) lastLine() int {
	if n := len(b.lines); n > 0 {
		return b.lines[n-1].line
	}
	return 0
}

// AddConstant deduplicates v by value equality against the existing pool
// and returns its index. It panics if the pool would grow past
// MaxConstants; callers must check NumConstants before calling when the
// count must instead surface as a compile error ("Too many constants in
// one chunk.").
func (b *Builder) AddConstant(v Value) int {
	if idx, ok := b.lookupConstant(v); ok {
		return idx
	}
	if len(b.constants) >= MaxConstants {
		panic("value: too many constants in one chunk")
	}
	idx := len(b.constants)
	b.constants = append(b.constants, v)
	switch vv := v.(type) {
	case Nil, Bool, Double:
		b.constIdx[v] = idx
	case *String:
		b.strIdx[vv.Sym] = idx
	}
	return idx
}

// NumConstants returns the current number of pool entries, so the
// compiler can check the 256-entry ceiling before calling AddConstant.
func (b *Builder) NumConstants() int { return len(b.constants) }

// lookupConstant finds an existing pool entry equal to v, deduplicating
// Nil/Bool/Double by value and String by interned-symbol identity (which
// coincides with content equality). Functions are never deduplicated:
// each compiled function is a distinct constant even if byte-for-byte
// identical to another.
func (b *Builder) lookupConstant(v Value) (int, bool) {
	switch vv := v.(type) {
	case Nil, Bool, Double:
		idx, ok := b.constIdx[v]
		return idx, ok
	case *String:
		idx, ok := b.strIdx[vv.Sym]
		return idx, ok
	default:
		return -1, false
	}
}

// ReservePatch reserves two zero-initialized operand bytes and returns a
// Patch token that can later write the jump distance into them.
func (b *Builder) ReservePatch() Patch {
	pos := len(b.code)
	b.code = append(b.code, 0, 0)
	b.recordLine(b.lastLine())
	b.pendingPatches++
	return Patch{b: b, pos: pos}
}

// Finish yields the immutable Chunk. It panics if any Patch reserved from
// this builder has not been applied. It does not check that every opcode's
// operand bytes were written.
func (b *Builder) Finish() *Chunk {
	if b.pendingPatches != 0 {
		panic(fmt.Sprintf("value: %d unresolved patch(es) at Finish", b.pendingPatches))
	}
	return &Chunk{code: b.code, constants: b.constants, lines: b.lines}
}

// A Patch is a placeholder for a two-byte jump operand whose value is not
// known until later code has been emitted.
type Patch struct {
	b   *Builder
	pos int
}

// Apply writes address as a big-endian u16 into the reserved bytes and
// marks the patch resolved. Applying the same Patch twice is not detected:
// each call counts as resolving one of the builder's pending patches.
func (p Patch) Apply(address uint16) {
	p.b.code[p.pos] = byte(address >> 8)
	p.b.code[p.pos+1] = byte(address)
	p.b.pendingPatches--
}

// Pos returns the code position of the reserved operand, the basis used
// to compute forward-jump distances once the target is known.
func (p Patch) Pos() int { return p.pos }
