package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mna/glox/lang/compiler"
	"github.com/mna/glox/lang/intern"
	"github.com/mna/glox/lang/vm"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	interner := intern.NewTable()
	fn, diags, ok := compiler.Compile([]byte(src), interner)
	require.True(t, ok, "%v", diags)

	var out bytes.Buffer
	m := vm.New(interner)
	m.Stdout = &out
	err := m.Interpret(fn)
	return out.String(), err
}

func TestArithmeticAndPrint(t *testing.T) {
	out, err := run(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, err := run(t, `print "foo" + "bar";`)
	require.NoError(t, err)
	require.Equal(t, "foobar\n", out)
}

func TestGlobalAndLocalVariables(t *testing.T) {
	out, err := run(t, `
		var a = "global";
		{
			var a = "local";
			print a;
		}
		print a;
	`)
	require.NoError(t, err)
	require.Equal(t, "local\nglobal\n", out)
}

func TestIfElseAndWhile(t *testing.T) {
	out, err := run(t, `
		var i = 0;
		while (i < 3) {
			if (i == 1) { print "one"; } else { print i; }
			i = i + 1;
		}
	`)
	require.NoError(t, err)
	require.Equal(t, "0\none\n2\n", out)
}

func TestForLoop(t *testing.T) {
	out, err := run(t, `
		for (var i = 0; i < 3; i = i + 1) { print i; }
	`)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestClosureCapturesSharedUpvalue(t *testing.T) {
	// The closure returned by makeCounter keeps one cell for i after
	// makeCounter returns: each call sees the previous call's mutation.
	out, err := run(t, `
		fun makeCounter() {
			var i = 0;
			fun increment() {
				i = i + 1;
				print i;
			}
			return increment;
		}
		var counter = makeCounter();
		counter();
		counter();
		counter();
	`)
	require.NoError(t, err)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestClassesFieldsAndMethods(t *testing.T) {
	out, err := run(t, `
		class Counter {
			init() { this.count = 0; }
			increment() { this.count = this.count + 1; return this.count; }
		}
		var c = Counter();
		print c.increment();
		print c.increment();
		print c;
	`)
	require.NoError(t, err)
	require.Equal(t, "1\n2\nCounter instance\n", out)
}

func TestInheritanceAndSuper(t *testing.T) {
	out, err := run(t, `
		class Animal {
			speak() { print "..."; }
			describe() { this.speak(); }
		}
		class Dog < Animal {
			speak() { print "Woof"; }
			describe() { super.speak(); this.speak(); }
		}
		Dog().describe();
	`)
	require.NoError(t, err)
	require.Equal(t, "...\nWoof\n", out)
}

func TestNativeClockReturnsNumber(t *testing.T) {
	out, err := run(t, `print clock() > 0;`)
	require.NoError(t, err)
	require.Equal(t, "true\n", out)
}

func TestRuntimeErrorUndefinedVariable(t *testing.T) {
	_, err := run(t, `print notDefined;`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Undefined variable 'notDefined'.")
	require.Contains(t, err.Error(), "[line 1] in script")
}

func TestRuntimeErrorWrongOperandType(t *testing.T) {
	_, err := run(t, `print 1 + "two";`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Operands must be two numbers or two strings.")
}

func TestRuntimeErrorStackTraceAcrossCalls(t *testing.T) {
	_, err := run(t, `
		fun a() { b(); }
		fun b() { c(); }
		fun c() { return 1 + nil; }
		a();
	`)
	require.Error(t, err)
	lines := strings.Split(err.Error(), "\n")
	require.True(t, len(lines) >= 4)
	require.Contains(t, lines[1], "in c()")
	require.Contains(t, lines[2], "in b()")
	require.Contains(t, lines[3], "in a()")
}

func TestCallingUncallableValueIsRuntimeError(t *testing.T) {
	_, err := run(t, `var x = 1; x();`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Can only call functions and classes.")
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	_, err := run(t, `fun f(a, b) { return a + b; } f(1);`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Expected 2 arguments but got 1.")
}
