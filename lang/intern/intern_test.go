package intern_test

import (
	"runtime"
	"testing"

	"github.com/mna/glox/lang/intern"
	"github.com/stretchr/testify/require"
)

func TestInternIdentity(t *testing.T) {
	tbl := intern.NewTable()
	a := tbl.Intern("hello")
	b := tbl.Intern("hello")
	require.Same(t, a, b)
	require.Equal(t, "hello", a.String())
}

func TestInternDistinct(t *testing.T) {
	tbl := intern.NewTable()
	a := tbl.Intern("foo")
	b := tbl.Intern("bar")
	require.NotSame(t, a, b)
}

func TestInternWeak(t *testing.T) {
	tbl := intern.NewTable()
	tbl.Intern("ephemeral")
	runtime.GC()
	runtime.GC()
	// The symbol is no longer referenced anywhere by the test, so it may
	// already be gone; re-interning must still succeed and must not reuse a
	// stale, collected entry's memory.
	sym := tbl.Intern("ephemeral")
	require.Equal(t, "ephemeral", sym.String())
}
