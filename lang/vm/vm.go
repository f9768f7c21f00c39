// Package vm implements glox's stack-based bytecode interpreter: it walks
// the Chunk produced by lang/compiler, maintaining a value stack, a
// call-frame stack, a global variable table, and the list of currently
// open upvalues, per spec.md §4.E.
package vm

import (
	"io"
	"os"

	"github.com/dolthub/swiss"
	"github.com/mna/glox/lang/intern"
	"github.com/mna/glox/lang/value"
)

// maxFrames bounds call-stack depth the same way clox's FRAMES_MAX does;
// exceeding it is reported as the runtime error "Stack overflow."
const maxFrames = 64

// frame is one active call: the closure being executed, its instruction
// pointer into that closure's chunk, and the value-stack index of its
// slot 0 (the callee for ordinary functions, the receiver for methods).
type frame struct {
	closure *value.Closure
	ip      int
	base    int
}

// VM is a single-threaded bytecode interpreter, one per program run. It is
// not safe for concurrent use.
type VM struct {
	// Stdout receives print output and Stderr receives the Trace and
	// Disassemble output. Runtime errors are not written to Stderr: Interpret
	// returns them to the caller. If nil, Interpret defaults them to
	// os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// Trace, if set, writes the value stack and the next instruction to
	// Stderr before every dispatch, mirroring clox's DEBUG_TRACE_EXECUTION.
	Trace bool

	// Disassemble, if set, writes a full disassembly of the script
	// function and every function nested in it to Stderr once, before
	// the first instruction runs, mirroring clox's DEBUG_PRINT_CODE.
	Disassemble bool

	interner *intern.Table
	initSym  *intern.Symbol

	stack        []value.Value
	frames       []frame
	openUpvalues []*value.Upvalue
	globals      *swiss.Map[*intern.Symbol, value.Value]
}

// New returns a VM that interns identifiers through interner (which must
// be the same table the compiler used, so that global-name and
// property-name symbols compare equal by pointer). The clock() native
// function is registered immediately.
func New(interner *intern.Table) *VM {
	vm := &VM{
		interner: interner,
		initSym:  interner.Intern("init"),
		globals:  swiss.NewMap[*intern.Symbol, value.Value](8),
	}
	vm.defineNative("clock", 0, nativeClock)
	return vm
}

// Interpret runs fn (typically the top-level script Function returned by
// compiler.Compile) to completion, returning a *RuntimeError if execution
// raised one. The VM's stack and frame state is reset before each call, so
// a single VM can be reused across several Interpret calls (e.g. a REPL).
func (vm *VM) Interpret(fn *value.Function) error {
	if vm.Stdout == nil {
		vm.Stdout = os.Stdout
	}
	if vm.Stderr == nil {
		vm.Stderr = os.Stderr
	}
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.openUpvalues = nil

	if vm.Disassemble {
		disassembleTree(vm.Stderr, fn, make(map[*value.Function]bool))
	}

	closure := value.NewClosure(fn)
	vm.push(closure)
	if err := vm.call(closure, 0); err != nil {
		return err
	}
	return vm.run()
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) value.Value { return vm.stack[len(vm.stack)-1-distance] }

// disassembleTree writes fn's chunk followed by every function nested
// inside it (depth-first, skipping any already seen), so that
// VM.Disassemble dumps the whole call graph up front rather than only the
// functions that happen to execute.
func disassembleTree(w io.Writer, fn *value.Function, seen map[*value.Function]bool) {
	if fn == nil || seen[fn] {
		return
	}
	seen[fn] = true
	fn.Chunk.Disassemble(w, fn.DisplayName())
	for i := 0; i < fn.Chunk.NumConstants(); i++ {
		if nested, ok := fn.Chunk.ValueAt(i).(*value.Function); ok {
			disassembleTree(w, nested, seen)
		}
	}
}

func (vm *VM) defineNative(name string, arity int, fn func([]value.Value) (value.Value, error)) {
	sym := vm.interner.Intern(name)
	vm.globals.Put(sym, &value.NativeFunction{FnName: name, Arity: arity, Fn: fn})
}
