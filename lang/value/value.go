// Package value defines the runtime value model shared by the compiler and
// the virtual machine: the Value variant, the compiled Chunk/Builder pair
// that holds bytecode, and the Function/Closure/Class/Instance/BoundMethod
// object graph a running program builds out of them.
//
// Chunk and Value live in the same package because a Chunk's constant pool
// holds Values (including compiled Function values referenced by Closure),
// and a Function holds a Chunk: the two are mutually recursive and do not
// admit a clean package split, the same way the teacher keeps Value,
// Function, Tuple, and Frame together in a single machine package.
package value

import (
	"fmt"
	"strconv"

	"github.com/mna/glox/lang/intern"
)

// Kind identifies the dynamic type of a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindDouble
	KindString
	KindFunction
	KindNativeFunction
	KindClosure
	KindClass
	KindInstance
	KindBoundMethod
)

// Value is implemented by every value a Lox program can manipulate.
type Value interface {
	// String returns the value's display representation, per spec.md's
	// Value-display table.
	String() string
	// Kind reports the value's dynamic type.
	Kind() Kind
}

// Nil is the value of the `nil` literal. There is exactly one Nil value;
// use the package-level NilValue, do not construct additional ones.
type Nil struct{}

func (Nil) String() string { return "nil" }
func (Nil) Kind() Kind     { return KindNil }

// NilValue is the singleton nil value.
var NilValue Value = Nil{}

// Bool is a boolean value.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Bool) Kind() Kind { return KindBool }

// Double is a Lox number, always an IEEE-754 binary64.
type Double float64

func (d Double) String() string { return strconv.FormatFloat(float64(d), 'g', -1, 64) }
func (Double) Kind() Kind       { return KindDouble }

// String is an interned Lox string value.
type String struct {
	Sym *intern.Symbol
}

func (s *String) String() string { return s.Sym.String() }
func (*String) Kind() Kind       { return KindString }

// NewString wraps sym as a Value.
func NewString(sym *intern.Symbol) *String { return &String{Sym: sym} }

// Equal implements the equality rule of spec.md §3: Nil equals Nil;
// Bool/Double/String compare by content (String by symbol identity, which
// coincides with content equality because of interning); every other kind
// compares by object identity.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Nil:
		return true
	case Bool:
		return av == b.(Bool)
	case Double:
		return av == b.(Double)
	case *String:
		return av.Sym == b.(*String).Sym
	default:
		return a == b
	}
}

// Falsey reports whether v is falsey per spec.md §4.E.5: Nil and
// Bool(false) are falsey, everything else is truthy.
func Falsey(v Value) bool {
	switch vv := v.(type) {
	case Nil:
		return true
	case Bool:
		return !bool(vv)
	default:
		return false
	}
}

// TypeName returns a short, human-readable name for v's kind, used in
// runtime error messages.
func TypeName(v Value) string {
	switch v.Kind() {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindDouble:
		return "number"
	case KindString:
		return "string"
	case KindFunction, KindClosure:
		return "function"
	case KindNativeFunction:
		return "native function"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindBoundMethod:
		return "bound method"
	default:
		return fmt.Sprintf("kind(%d)", v.Kind())
	}
}
