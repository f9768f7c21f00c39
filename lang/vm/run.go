package vm

import (
	"fmt"

	"github.com/mna/glox/lang/intern"
	"github.com/mna/glox/lang/value"
)

// run executes instructions from the innermost active frame until an
// OpReturn unwinds the last frame or an opcode raises a runtime error.
func (vm *VM) run() error {
	for {
		fr := &vm.frames[len(vm.frames)-1]
		chunk := fr.closure.Fn.Chunk

		if vm.Trace {
			vm.traceInstruction(fr, chunk)
		}

		op := value.Op(chunk.CodeUnitAt(fr.ip))
		fr.ip++

		switch op {
		case value.OpConstant:
			vm.push(chunk.ValueAt(int(vm.readByte(fr, chunk))))

		case value.OpNil:
			vm.push(value.NilValue)
		case value.OpTrue:
			vm.push(value.Bool(true))
		case value.OpFalse:
			vm.push(value.Bool(false))
		case value.OpPop:
			vm.pop()

		case value.OpGetLocal:
			slot := vm.readByte(fr, chunk)
			vm.push(vm.stack[fr.base+int(slot)])
		case value.OpSetLocal:
			slot := vm.readByte(fr, chunk)
			vm.stack[fr.base+int(slot)] = vm.peek(0)

		case value.OpGetGlobal:
			name := vm.readSymbol(fr, chunk)
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.String())
			}
			vm.push(v)
		case value.OpDefineGlobal:
			name := vm.readSymbol(fr, chunk)
			vm.globals.Put(name, vm.pop())
		case value.OpSetGlobal:
			name := vm.readSymbol(fr, chunk)
			if _, ok := vm.globals.Get(name); !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.String())
			}
			vm.globals.Put(name, vm.peek(0))

		case value.OpGetUpvalue:
			idx := vm.readByte(fr, chunk)
			vm.push(fr.closure.Upvalues[idx].Get(vm.stack))
		case value.OpSetUpvalue:
			idx := vm.readByte(fr, chunk)
			fr.closure.Upvalues[idx].Set(vm.stack, vm.peek(0))

		case value.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case value.OpGreater:
			if err := vm.numericBinary(op); err != nil {
				return err
			}
		case value.OpLess:
			if err := vm.numericBinary(op); err != nil {
				return err
			}
		case value.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case value.OpSubtract, value.OpMultiply, value.OpDivide:
			if err := vm.numericBinary(op); err != nil {
				return err
			}
		case value.OpNot:
			vm.push(value.Bool(value.Falsey(vm.pop())))
		case value.OpNegate:
			n, ok := vm.peek(0).(value.Double)
			if !ok {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.stack[len(vm.stack)-1] = -n

		case value.OpPrint:
			fmt.Fprintln(vm.Stdout, vm.pop().String())

		case value.OpJump:
			dist := vm.readShort(fr, chunk)
			fr.ip += int(dist)
		case value.OpJumpIfFalse:
			dist := vm.readShort(fr, chunk)
			if value.Falsey(vm.peek(0)) {
				fr.ip += int(dist)
			}
		case value.OpLoop:
			dist := vm.readShort(fr, chunk)
			fr.ip -= int(dist)

		case value.OpCall:
			argCount := int(vm.readByte(fr, chunk))
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}

		case value.OpInvoke:
			name := vm.readSymbol(fr, chunk)
			argCount := int(vm.readByte(fr, chunk))
			if err := vm.invoke(name, argCount); err != nil {
				return err
			}
		case value.OpSuperInvoke:
			name := vm.readSymbol(fr, chunk)
			argCount := int(vm.readByte(fr, chunk))
			superclass, _ := vm.pop().(*value.Class)
			method, ok := superclass.Method(name)
			if !ok {
				return vm.runtimeError("Undefined property '%s'.", name.String())
			}
			if err := vm.call(method, argCount); err != nil {
				return err
			}

		case value.OpClosure:
			fn, _ := chunk.ValueAt(int(vm.readByte(fr, chunk))).(*value.Function)
			closure := value.NewClosure(fn)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := vm.readByte(fr, chunk)
				index := vm.readByte(fr, chunk)
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(fr.base + int(index))
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}
			vm.push(closure)
		case value.OpCloseUpvalue:
			vm.closeUpvalues(len(vm.stack) - 1)
			vm.pop()

		case value.OpReturn:
			result := vm.pop()
			closing := vm.frames[len(vm.frames)-1]
			vm.closeUpvalues(closing.base)
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop() // the top-level script closure
				return nil
			}
			vm.stack = vm.stack[:closing.base]
			vm.push(result)

		case value.OpClass:
			name := vm.readSymbol(fr, chunk)
			vm.push(value.NewClass(name))
		case value.OpInherit:
			superclass, ok := vm.peek(1).(*value.Class)
			if !ok {
				return vm.runtimeError("Superclass must be a class.")
			}
			subclass, _ := vm.peek(0).(*value.Class)
			superclass.Methods.Iter(func(k *intern.Symbol, m *value.Closure) bool {
				subclass.Methods.Put(k, m)
				return false
			})
			vm.pop() // the subclass reference fetched for this opcode only
		case value.OpMethod:
			name := vm.readSymbol(fr, chunk)
			method, _ := vm.pop().(*value.Closure)
			class, _ := vm.peek(0).(*value.Class)
			class.Methods.Put(name, method)

		case value.OpGetProperty:
			name := vm.readSymbol(fr, chunk)
			instance, ok := vm.peek(0).(*value.Instance)
			if !ok {
				return vm.runtimeError("Only instances have properties.")
			}
			if v, ok := instance.Fields.Get(name); ok {
				vm.stack[len(vm.stack)-1] = v
				break
			}
			if err := vm.bindMethod(instance.Class, name); err != nil {
				return err
			}
		case value.OpSetProperty:
			name := vm.readSymbol(fr, chunk)
			instance, ok := vm.peek(1).(*value.Instance)
			if !ok {
				return vm.runtimeError("Only instances have fields.")
			}
			v := vm.pop()
			vm.pop() // instance
			instance.Fields.Put(name, v)
			vm.push(v)
		case value.OpGetSuper:
			name := vm.readSymbol(fr, chunk)
			superclass, _ := vm.pop().(*value.Class)
			if err := vm.bindMethod(superclass, name); err != nil {
				return err
			}

		default:
			return vm.runtimeError("internal error: unimplemented opcode %s", op)
		}
	}
}

// traceInstruction prints the current value stack followed by the
// instruction about to execute, the same two lines clox's
// DEBUG_TRACE_EXECUTION prints before every dispatch.
func (vm *VM) traceInstruction(fr *frame, chunk *value.Chunk) {
	fmt.Fprint(vm.Stderr, "          ")
	for _, v := range vm.stack {
		fmt.Fprintf(vm.Stderr, "[ %s ]", v.String())
	}
	fmt.Fprintln(vm.Stderr)
	chunk.DisassembleInstruction(vm.Stderr, fr.ip)
}

func (vm *VM) readByte(fr *frame, chunk *value.Chunk) byte {
	b := chunk.CodeUnitAt(fr.ip)
	fr.ip++
	return b
}

func (vm *VM) readShort(fr *frame, chunk *value.Chunk) uint16 {
	hi := vm.readByte(fr, chunk)
	lo := vm.readByte(fr, chunk)
	return uint16(hi)<<8 | uint16(lo)
}

func (vm *VM) readSymbol(fr *frame, chunk *value.Chunk) *intern.Symbol {
	idx := vm.readByte(fr, chunk)
	s, _ := chunk.ValueAt(int(idx)).(*value.String)
	return s.Sym
}

// add implements spec.md §6's overload of '+' for both numbers and
// strings; any other operand pairing is a runtime error.
func (vm *VM) add() error {
	b, a := vm.peek(0), vm.peek(1)
	switch av := a.(type) {
	case value.Double:
		bv, ok := b.(value.Double)
		if !ok {
			return vm.runtimeError("Operands must be two numbers or two strings.")
		}
		vm.pop()
		vm.pop()
		vm.push(av + bv)
	case *value.String:
		bv, ok := b.(*value.String)
		if !ok {
			return vm.runtimeError("Operands must be two numbers or two strings.")
		}
		vm.pop()
		vm.pop()
		vm.push(value.NewString(vm.interner.Intern(av.Sym.String() + bv.Sym.String())))
	default:
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}
	return nil
}

// numericBinary implements the arithmetic and ordering operators that
// require both operands to be numbers: -, *, /, >, <.
func (vm *VM) numericBinary(op value.Op) error {
	b, ok1 := vm.peek(0).(value.Double)
	a, ok2 := vm.peek(1).(value.Double)
	if !ok1 || !ok2 {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	switch op {
	case value.OpSubtract:
		vm.push(a - b)
	case value.OpMultiply:
		vm.push(a * b)
	case value.OpDivide:
		vm.push(a / b)
	case value.OpGreater:
		vm.push(value.Bool(a > b))
	case value.OpLess:
		vm.push(value.Bool(a < b))
	}
	return nil
}
