package vm

import (
	"github.com/mna/glox/lang/intern"
	"github.com/mna/glox/lang/value"
)

// callValue dispatches a call to whatever callable value sits at the
// bottom of its own argument window (spec.md §4.E.2): a Closure runs as a
// new frame, a NativeFunction runs immediately, a Class instantiates (and
// runs its "init" method if it has one), and a BoundMethod rebinds its
// receiver into slot 0 before calling through to its Closure.
func (vm *VM) callValue(callee value.Value, argCount int) error {
	switch c := callee.(type) {
	case *value.Closure:
		return vm.call(c, argCount)
	case *value.NativeFunction:
		return vm.callNative(c, argCount)
	case *value.Class:
		vm.stack[len(vm.stack)-1-argCount] = value.NewInstance(c)
		if initializer, ok := c.Method(vm.initSym); ok {
			return vm.call(initializer, argCount)
		}
		if argCount != 0 {
			return vm.runtimeError("Expected 0 arguments but got %d.", argCount)
		}
		return nil
	case *value.BoundMethod:
		vm.stack[len(vm.stack)-1-argCount] = c.Receiver
		return vm.call(c.Method, argCount)
	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

// checkArity reports spec.md's "Expected N arguments but got M." error for
// any Callable whose declared arity doesn't match argCount.
func (vm *VM) checkArity(c value.Callable, argCount int) error {
	if argCount != c.ArityOf() {
		return vm.runtimeError("Expected %d arguments but got %d.", c.ArityOf(), argCount)
	}
	return nil
}

func (vm *VM) call(closure *value.Closure, argCount int) error {
	if err := vm.checkArity(closure, argCount); err != nil {
		return err
	}
	if len(vm.frames) >= maxFrames {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames = append(vm.frames, frame{
		closure: closure,
		base:    len(vm.stack) - argCount - 1,
	})
	return nil
}

func (vm *VM) callNative(nf *value.NativeFunction, argCount int) error {
	if err := vm.checkArity(nf, argCount); err != nil {
		return err
	}
	args := vm.stack[len(vm.stack)-argCount:]
	result, err := nf.Fn(args)
	if err != nil {
		return vm.runtimeError("%s", err.Error())
	}
	vm.stack = vm.stack[:len(vm.stack)-argCount-1]
	vm.push(result)
	return nil
}

// invoke fuses property lookup and call for the common `recv.method(...)`
// shape (spec.md §4.D.8): a field holding a callable is called like an
// ordinary value, falling back to class method dispatch otherwise.
func (vm *VM) invoke(name *intern.Symbol, argCount int) error {
	receiver := vm.peek(argCount)
	instance, ok := receiver.(*value.Instance)
	if !ok {
		return vm.runtimeError("Only instances have methods.")
	}
	if v, ok := instance.Fields.Get(name); ok {
		vm.stack[len(vm.stack)-1-argCount] = v
		return vm.callValue(v, argCount)
	}
	method, ok := instance.Class.Method(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.String())
	}
	return vm.call(method, argCount)
}

// bindMethod looks up name on class, binding it to the value currently on
// top of the stack (the receiver) and replacing that value with the
// resulting BoundMethod.
func (vm *VM) bindMethod(class *value.Class, name *intern.Symbol) error {
	method, ok := class.Method(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.String())
	}
	receiver := vm.pop()
	vm.push(&value.BoundMethod{Receiver: receiver, Method: method})
	return nil
}
