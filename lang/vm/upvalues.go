package vm

import "github.com/mna/glox/lang/value"

// captureUpvalue returns the open Upvalue for stackIndex, reusing one
// already tracked by an enclosing or sibling closure so that two closures
// capturing the same local share one mutable cell (spec.md §4.E.4).
func (vm *VM) captureUpvalue(stackIndex int) *value.Upvalue {
	for i := len(vm.openUpvalues) - 1; i >= 0; i-- {
		if uv := vm.openUpvalues[i]; uv.StackIndex == stackIndex {
			return uv
		}
	}
	uv := value.NewOpenUpvalue(stackIndex)
	vm.openUpvalues = append(vm.openUpvalues, uv)
	return uv
}

// closeUpvalues closes every open upvalue pointing at or above from,
// copying each cell's value off the stack before the scope that owns that
// slot disappears (a block exit or a function return).
func (vm *VM) closeUpvalues(from int) {
	kept := vm.openUpvalues[:0]
	for _, uv := range vm.openUpvalues {
		if uv.StackIndex >= from {
			uv.Close(vm.stack)
		} else {
			kept = append(kept, uv)
		}
	}
	vm.openUpvalues = kept
}
