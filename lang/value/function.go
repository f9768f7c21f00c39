package value

import (
	"fmt"

	"github.com/mna/glox/lang/intern"
)

// FunctionKind distinguishes the few compile-time contexts that change a
// function's runtime behavior: the implicit top-level script, an ordinary
// function, a class method, and a class's "init" method.
type FunctionKind uint8

const (
	KindScript FunctionKind = iota
	KindFunc
	KindMethod
	KindInitializer
)

// A Function is the compiled, immutable representation of a Lox function
// or the top-level script. It is shared by reference: every Closure built
// over the same Function shares this same value.
type Function struct {
	Name         *intern.Symbol // nil for the top-level script
	Arity        int
	Chunk        *Chunk
	UpvalueCount int
	FnKind       FunctionKind
}

var _ Value = (*Function)(nil)

func (fn *Function) String() string {
	if fn.Name == nil {
		return "<fn <script>>"
	}
	return fmt.Sprintf("<fn %s>", fn.Name.String())
}
func (*Function) Kind() Kind { return KindFunction }

// DisplayName returns the name that heads the function's disassembly: the
// function's name, or "script" for the implicit top-level function.
func (fn *Function) DisplayName() string {
	if fn.Name == nil {
		return "script"
	}
	return fn.Name.String()
}
