package value_test

import (
	"bytes"
	"testing"

	"github.com/mna/glox/lang/intern"
	"github.com/mna/glox/lang/value"
	"github.com/stretchr/testify/require"
)

func TestBuilderEmitAndFinish(t *testing.T) {
	b := value.NewBuilder()
	idx := b.AddConstant(value.Double(2))
	require.Equal(t, 0, idx)

	b.EmitOpcode(value.OpConstant, 0)
	b.EmitByte(byte(idx))
	b.EmitOpcode(value.OpReturn, 0)

	ch := b.Finish()
	require.Equal(t, 3, ch.Len())
	require.Equal(t, byte(value.OpConstant), ch.CodeUnitAt(0))
	require.Equal(t, byte(0), ch.CodeUnitAt(1))
	require.Equal(t, byte(value.OpReturn), ch.CodeUnitAt(2))
	require.Equal(t, value.Double(2), ch.ValueAt(0))
}

func TestBuilderConstantDedup(t *testing.T) {
	b := value.NewBuilder()
	tbl := intern.NewTable()
	s1 := value.NewString(tbl.Intern("hi"))
	s2 := value.NewString(tbl.Intern("hi"))

	i1 := b.AddConstant(s1)
	i2 := b.AddConstant(s2)
	require.Equal(t, i1, i2)
	require.Equal(t, 1, b.NumConstants())

	i3 := b.AddConstant(value.Double(1))
	i4 := b.AddConstant(value.Double(1))
	require.Equal(t, i3, i4)
}

func TestBuilderTooManyConstants(t *testing.T) {
	b := value.NewBuilder()
	for i := 0; i < value.MaxConstants; i++ {
		b.AddConstant(value.Double(i))
	}
	require.Panics(t, func() {
		b.AddConstant(value.Double(value.MaxConstants))
	})
}

func TestPatchApply(t *testing.T) {
	b := value.NewBuilder()
	b.EmitOpcode(value.OpJumpIfFalse, 1)
	patch := b.ReservePatch()
	b.EmitOpcode(value.OpPop, 1)
	dist := uint16(b.Len() - (patch.Pos() + 2))
	patch.Apply(dist)

	ch := b.Finish()
	require.Equal(t, byte(0), ch.CodeUnitAt(1))
	require.Equal(t, byte(1), ch.CodeUnitAt(2))
}

func TestFinishPanicsOnUnresolvedPatch(t *testing.T) {
	b := value.NewBuilder()
	b.ReservePatch()
	require.Panics(t, func() { b.Finish() })
}

func TestLineMapRunLength(t *testing.T) {
	b := value.NewBuilder()
	b.EmitOpcode(value.OpNil, 1)
	b.EmitOpcode(value.OpPop, 1)
	b.EmitOpcode(value.OpNil, 2)
	ch := b.Finish()
	require.Equal(t, 1, ch.LineAt(0))
	require.Equal(t, 1, ch.LineAt(1))
	require.Equal(t, 2, ch.LineAt(2))
}

func TestDisassemble(t *testing.T) {
	b := value.NewBuilder()
	idx := b.AddConstant(value.Double(2))
	b.EmitOpcode(value.OpConstant, 1)
	b.EmitByte(byte(idx))
	b.EmitOpcode(value.OpReturn, 1)
	ch := b.Finish()

	var buf bytes.Buffer
	ch.Disassemble(&buf, "test chunk")
	require.Contains(t, buf.String(), "== test chunk ==")
	require.Contains(t, buf.String(), "OP_CONSTANT")
	require.Contains(t, buf.String(), "OP_RETURN")
}
