package vm

import (
	"fmt"
	"strings"
)

// A RuntimeError is a failure raised while executing bytecode: an
// operator or call applied to values it doesn't support, an undefined
// variable or property, or a call-depth overflow. Its Error text already
// includes the "[line L] in NAME" stack trace required by spec.md §4.E.6.
type RuntimeError struct {
	Message string
	Trace   []string // innermost frame first
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, line := range e.Trace {
		b.WriteByte('\n')
		b.WriteString(line)
	}
	return b.String()
}

// runtimeError builds a RuntimeError from the current call-frame stack and
// resets the VM's stack and frames to an empty, reusable state.
func (vm *VM) runtimeError(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	trace := make([]string, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := vm.frames[i]
		fn := fr.closure.Fn
		line := fn.Chunk.LineAt(fr.ip - 1)
		if fn.Name == nil {
			trace = append(trace, fmt.Sprintf("[line %d] in script", line))
		} else {
			trace = append(trace, fmt.Sprintf("[line %d] in %s()", line, fn.Name.String()))
		}
	}

	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.openUpvalues = nil

	return &RuntimeError{Message: msg, Trace: trace}
}
