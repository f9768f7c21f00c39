package compiler

import (
	"golang.org/x/exp/slices"

	"github.com/mna/glox/lang/token"
	"github.com/mna/glox/lang/value"
)

func (c *Compiler) beginScope() { c.fs.scopeDepth++ }

// endScope pops every local declared at the scope being left. A captured
// local is closed instead of popped (OpCloseUpvalue moves its value out
// of the stack slot and onto the heap), per spec.md §4.E.4.
func (c *Compiler) endScope() {
	c.fs.scopeDepth--
	locals := c.fs.locals
	for len(locals) > 0 && locals[len(locals)-1].depth > c.fs.scopeDepth {
		last := locals[len(locals)-1]
		if last.isCaptured {
			c.emitOp(value.OpCloseUpvalue)
		} else {
			c.emitOp(value.OpPop)
		}
		locals = locals[:len(locals)-1]
	}
	c.fs.locals = locals
}

// declareVariable registers the just-consumed identifier (c.previous) as a
// local in the current scope. Globals are not declared here: their name
// lives in the constant pool and is resolved at runtime.
func (c *Compiler) declareVariable() {
	if c.fs.scopeDepth == 0 {
		return
	}
	name := c.previous.Lit
	for i := len(c.fs.locals) - 1; i >= 0; i-- {
		l := c.fs.locals[i]
		if l.depth != -1 && l.depth < c.fs.scopeDepth {
			break
		}
		if l.name == name {
			c.errorAtPrevious("Already declared a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.fs.locals) >= maxLocals {
		c.errorAtPrevious("Too many local variables in function.")
		return
	}
	c.fs.locals = append(c.fs.locals, local{name: name, depth: -1})
}

// markInitialized makes the most recently declared local visible to name
// resolution. It is a no-op at global scope, where parseVariable never
// added a local in the first place.
func (c *Compiler) markInitialized() {
	if c.fs.scopeDepth == 0 {
		return
	}
	c.fs.locals[len(c.fs.locals)-1].depth = c.fs.scopeDepth
}

// parseVariable consumes an identifier and declares it, returning the
// constant-pool index of its name for global definition (0, unused, for
// locals).
func (c *Compiler) parseVariable(msg string) uint8 {
	c.consume(token.IDENT, msg)
	c.declareVariable()
	if c.fs.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous.Lit)
}

func (c *Compiler) defineVariable(global uint8) {
	if c.fs.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(value.OpDefineGlobal, global)
}

// resolveLocal searches fs's locals from innermost to outermost, reporting
// the "read in its own initializer" error for a local whose depth is still
// the uninitialized sentinel.
func resolveLocal(c *Compiler, fs *funcState, name string) (int, bool) {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			if fs.locals[i].depth == -1 {
				c.errorAtPrevious("Can't read local variable in its own initializer.")
			}
			return i, true
		}
	}
	return -1, false
}

// resolveUpvalue implements spec.md §4.D.5's capture-by-index algorithm:
// walk outward one function at a time, capturing directly over an
// enclosing local the first time, and transitively over an existing
// upvalue every other time.
func resolveUpvalue(c *Compiler, fs *funcState, name string) (int, bool) {
	if fs.enclosing == nil {
		return -1, false
	}
	if idx, ok := resolveLocal(c, fs.enclosing, name); ok {
		fs.enclosing.locals[idx].isCaptured = true
		return addUpvalue(c, fs, uint8(idx), true), true
	}
	if idx, ok := resolveUpvalue(c, fs.enclosing, name); ok {
		return addUpvalue(c, fs, uint8(idx), false), true
	}
	return -1, false
}

// addUpvalue deduplicates against fs's existing upvalue list before
// appending, so two references to the same captured variable share one
// upvalue slot.
func addUpvalue(c *Compiler, fs *funcState, index uint8, isLocal bool) int {
	if i := slices.IndexFunc(fs.upvalues, func(uv upvalueDesc) bool {
		return uv.index == index && uv.isLocal == isLocal
	}); i != -1 {
		return i
	}
	if len(fs.upvalues) >= maxUpvalues {
		c.errorAtPrevious("Too many closure variables in function.")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalueDesc{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}

// namedVariable compiles a read or, when canAssign and an '=' follows, a
// write of the variable called name, resolving it as local,
// upvalue, or global in that order (spec.md §4.D.5).
func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp value.Op
	var arg uint8

	if idx, ok := resolveLocal(c, c.fs, name); ok {
		getOp, setOp, arg = value.OpGetLocal, value.OpSetLocal, uint8(idx)
	} else if idx, ok := resolveUpvalue(c, c.fs, name); ok {
		getOp, setOp, arg = value.OpGetUpvalue, value.OpSetUpvalue, uint8(idx)
	} else {
		arg = c.identifierConstant(name)
		getOp, setOp = value.OpGetGlobal, value.OpSetGlobal
	}

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOpByte(setOp, arg)
	} else {
		c.emitOpByte(getOp, arg)
	}
}
