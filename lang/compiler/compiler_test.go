package compiler_test

import (
	"testing"

	"github.com/mna/glox/lang/compiler"
	"github.com/mna/glox/lang/intern"
	"github.com/mna/glox/lang/value"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) (*value.Function, []compiler.Diagnostic, bool) {
	t.Helper()
	return compiler.Compile([]byte(src), intern.NewTable())
}

func opsOf(fn *value.Function) []value.Op {
	var ops []value.Op
	c := fn.Chunk
	for i := 0; i < c.Len(); {
		op := value.Op(c.CodeUnitAt(i))
		ops = append(ops, op)
		i++
	}
	return ops
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	fn, diags, ok := compile(t, "print 1 + 2 * 3;")
	require.True(t, ok, "%v", diags)
	require.Empty(t, diags)
	require.Contains(t, opsOf(fn), value.OpMultiply)
	require.Contains(t, opsOf(fn), value.OpAdd)
}

func TestCompileGlobalVarRoundTrip(t *testing.T) {
	fn, diags, ok := compile(t, `var a = 1; a = 2; print a;`)
	require.True(t, ok, "%v", diags)
	ops := opsOf(fn)
	require.Contains(t, ops, value.OpDefineGlobal)
	require.Contains(t, ops, value.OpSetGlobal)
	require.Contains(t, ops, value.OpGetGlobal)
}

func TestCompileLocalScope(t *testing.T) {
	fn, diags, ok := compile(t, `{ var a = 1; print a; }`)
	require.True(t, ok, "%v", diags)
	ops := opsOf(fn)
	require.Contains(t, ops, value.OpGetLocal)
	require.NotContains(t, ops, value.OpDefineGlobal)
	require.Contains(t, ops, value.OpPop) // scope exit pop
}

func TestCompileSelfReferenceInInitializerIsError(t *testing.T) {
	_, diags, ok := compile(t, `{ var a = a; }`)
	require.False(t, ok)
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Message, "own initializer")
}

func TestCompileIfElse(t *testing.T) {
	fn, diags, ok := compile(t, `if (true) { print 1; } else { print 2; }`)
	require.True(t, ok, "%v", diags)
	ops := opsOf(fn)
	require.Contains(t, ops, value.OpJumpIfFalse)
	require.Contains(t, ops, value.OpJump)
}

func TestCompileWhileLoop(t *testing.T) {
	fn, diags, ok := compile(t, `while (true) { print 1; }`)
	require.True(t, ok, "%v", diags)
	require.Contains(t, opsOf(fn), value.OpLoop)
}

func TestCompileForLoopDesugarsToLoop(t *testing.T) {
	fn, diags, ok := compile(t, `for (var i = 0; i < 3; i = i + 1) { print i; }`)
	require.True(t, ok, "%v", diags)
	ops := opsOf(fn)
	require.Contains(t, ops, value.OpLoop)
	require.Contains(t, ops, value.OpJumpIfFalse)
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	fn, diags, ok := compile(t, `
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`)
	require.True(t, ok, "%v", diags)
	require.Contains(t, opsOf(fn), value.OpClosure)
}

func TestCompileClassWithMethodsAndInheritance(t *testing.T) {
	fn, diags, ok := compile(t, `
		class Base { speak() { print "base"; } }
		class Derived < Base {
			init() { this.x = 1; }
			speak() { super.speak(); }
		}
	`)
	require.True(t, ok, "%v", diags)
	ops := opsOf(fn)
	require.Contains(t, ops, value.OpClass)
	require.Contains(t, ops, value.OpInherit)
	require.Contains(t, ops, value.OpMethod)
	require.Contains(t, ops, value.OpSuperInvoke)
	require.Contains(t, ops, value.OpSetProperty)
}

func TestCompileReturnAtTopLevelIsError(t *testing.T) {
	_, diags, ok := compile(t, `return 1;`)
	require.False(t, ok)
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Message, "top-level")
}

func TestCompileReturnValueFromInitializerIsError(t *testing.T) {
	_, diags, ok := compile(t, `class C { init() { return 1; } }`)
	require.False(t, ok)
	require.Contains(t, diags[0].Message, "initializer")
}

func TestCompileThisOutsideClassIsError(t *testing.T) {
	_, diags, ok := compile(t, `print this;`)
	require.False(t, ok)
	require.Contains(t, diags[0].Message, "'this'")
}

func TestCompileSuperOutsideClassIsError(t *testing.T) {
	_, diags, ok := compile(t, `fun f() { super.x(); }`)
	require.False(t, ok)
	require.Contains(t, diags[0].Message, "'super'")
}

func TestCompileInvalidAssignmentTarget(t *testing.T) {
	_, diags, ok := compile(t, `1 + 2 = 3;`)
	require.False(t, ok)
	require.Contains(t, diags[0].Message, "Invalid assignment target.")
}

func TestCompileSynchronizesAfterError(t *testing.T) {
	// The missing semicolon after the first statement should produce one
	// diagnostic, then synchronize and compile the second statement fine;
	// confirms panic-mode recovery doesn't cascade or abort early.
	_, diags, ok := compile(t, `print 1 print 2;`)
	require.False(t, ok)
	require.Len(t, diags, 1)
}

func TestCompileAndOrShortCircuitEmitsJumps(t *testing.T) {
	fn, diags, ok := compile(t, `print true and false or true;`)
	require.True(t, ok, "%v", diags)
	ops := opsOf(fn)
	require.Contains(t, ops, value.OpJumpIfFalse)
	require.Contains(t, ops, value.OpJump)
}

func TestCompileCallArguments(t *testing.T) {
	fn, diags, ok := compile(t, `fun f(a, b) { return a + b; } print f(1, 2);`)
	require.True(t, ok, "%v", diags)
	require.Contains(t, opsOf(fn), value.OpCall)
}

func TestCompileTooManyArguments(t *testing.T) {
	src := "fun f() {} f("
	for i := 0; i < 256; i++ {
		if i > 0 {
			src += ", "
		}
		src += "1"
	}
	src += ");"
	_, diags, ok := compile(t, src)
	require.False(t, ok)
	require.Contains(t, diags[0].Message, "255 arguments")
}
