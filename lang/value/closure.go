package value

// A Closure pairs an immutable Function with the vector of Upvalue cells
// it captured at creation time, some of which may be shared with other
// closures (e.g. two inner functions declared in the same enclosing
// scope, closing over the same local).
type Closure struct {
	Fn       *Function
	Upvalues []*Upvalue
}

var (
	_ Value    = (*Closure)(nil)
	_ Callable = (*Closure)(nil)
)

// NewClosure returns a Closure over fn with a freshly allocated, empty
// upvalue vector of the size fn declares.
func NewClosure(fn *Function) *Closure {
	return &Closure{Fn: fn, Upvalues: make([]*Upvalue, fn.UpvalueCount)}
}

// String displays as the underlying function, per spec.md §6.
func (c *Closure) String() string { return c.Fn.String() }
func (*Closure) Kind() Kind       { return KindClosure }

// ArityOf returns the number of declared parameters.
func (c *Closure) ArityOf() int { return c.Fn.Arity }

// A NativeFunction is a host-implemented callable exposed to Lox code,
// such as clock().
type NativeFunction struct {
	FnName string
	Arity  int
	Fn     func(args []Value) (Value, error)
}

var (
	_ Value    = (*NativeFunction)(nil)
	_ Callable = (*NativeFunction)(nil)
)

func (*NativeFunction) String() string { return "<native fn>" }
func (*NativeFunction) Kind() Kind     { return KindNativeFunction }

// Callable is implemented by every value whose call shares the same
// arity-check shape: Closure and NativeFunction. Class and BoundMethod
// are called through the VM's own invocation logic (spec.md §4.E.2)
// rather than through this interface, since constructing an Instance or
// rebinding a receiver isn't a plain function call.
type Callable interface {
	Value
	ArityOf() int
}

func (n *NativeFunction) ArityOf() int { return n.Arity }
