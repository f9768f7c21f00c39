package value

// An Upvalue is a shared mutable cell referencing a captured variable.
// While Open, it points at a still-live slot in the VM's value stack by
// absolute index; once the originating scope exits, the VM closes it,
// copying the value in and switching it to Closed, after which every
// closure sharing the cell keeps observing and mutating the same value.
type Upvalue struct {
	// StackIndex is meaningful only while Closed is false.
	StackIndex int
	Closed     bool
	value      Value // valid only once Closed is true
}

// NewOpenUpvalue returns an Upvalue pointing at the given absolute value
// stack index.
func NewOpenUpvalue(stackIndex int) *Upvalue {
	return &Upvalue{StackIndex: stackIndex}
}

// Get reads the current value of the cell. stack is the VM's value stack,
// used when the cell is still open.
func (u *Upvalue) Get(stack []Value) Value {
	if u.Closed {
		return u.value
	}
	return stack[u.StackIndex]
}

// Set writes v into the cell. stack is the VM's value stack, used when
// the cell is still open.
func (u *Upvalue) Set(stack []Value, v Value) {
	if u.Closed {
		u.value = v
		return
	}
	stack[u.StackIndex] = v
}

// Close transitions the cell from Open to Closed, copying in the value
// currently held at its stack slot so it survives the slot's scope.
func (u *Upvalue) Close(stack []Value) {
	u.value = stack[u.StackIndex]
	u.Closed = true
}
