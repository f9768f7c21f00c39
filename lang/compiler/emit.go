package compiler

import "github.com/mna/glox/lang/value"

func (c *Compiler) emitOp(op value.Op) {
	c.fs.builder.EmitOpcode(op, c.previous.Line)
}

func (c *Compiler) emitByte(b byte) { c.fs.builder.EmitByte(b) }

func (c *Compiler) emitOpByte(op value.Op, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

// emitJump emits op followed by a reserved two-byte operand, returning
// the Patch to resolve once the jump target is known.
func (c *Compiler) emitJump(op value.Op) value.Patch {
	c.emitOp(op)
	return c.fs.builder.ReservePatch()
}

// patchJump resolves p to the current bytecode position. The distance is
// measured from just after the jump instruction's two operand bytes to
// the current position, per spec.md §9's authoritative basis.
func (c *Compiler) patchJump(p value.Patch) {
	dist := c.fs.builder.Len() - (p.Pos() + 2)
	if dist > 0xffff {
		c.errorAtPrevious("Too much code to jump over.")
		dist = 0
	}
	p.Apply(uint16(dist))
}

// emitLoop emits OpLoop with a backward distance computed using the same
// basis as patchJump: from just after this instruction's operand bytes
// back to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(value.OpLoop)
	dist := c.fs.builder.Len() + 2 - loopStart
	if dist > 0xffff {
		c.errorAtPrevious("Loop body too large.")
		dist = 0
	}
	c.fs.builder.EmitShort(uint16(dist))
}

// emitReturn emits the return sequence used both for an explicit bare
// `return;` and for falling off the end of a function body: `this` in an
// initializer (spec.md §4.D.6), nil otherwise.
func (c *Compiler) emitReturn() {
	if c.fs.fnKind == value.KindInitializer {
		c.emitOpByte(value.OpGetLocal, 0)
	} else {
		c.emitOp(value.OpNil)
	}
	c.emitOp(value.OpReturn)
}

// makeConstant adds v to the current function's constant pool, reporting
// "Too many constants in one chunk." instead of overflowing the pool.
func (c *Compiler) makeConstant(v value.Value) uint8 {
	if c.fs.builder.NumConstants() >= value.MaxConstants {
		c.errorAtPrevious("Too many constants in one chunk.")
		return 0
	}
	return uint8(c.fs.builder.AddConstant(v))
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(value.OpConstant, c.makeConstant(v))
}

// identifierConstant interns name and adds it as a String constant,
// returning its pool index. Used for global variable names and
// property/method names, all of which are looked up by Symbol identity at
// runtime (spec.md §9's "global-via-constant-pool" design note).
func (c *Compiler) identifierConstant(name string) uint8 {
	sym := c.interner.Intern(name)
	return c.makeConstant(value.NewString(sym))
}

// endFunction finalizes the current function's chunk and returns the
// immutable Function. It does not pop the function compiler frame: the
// caller still needs c.fs.upvalues to emit the enclosing OpClosure
// trailer before restoring c.fs to c.fs.enclosing.
func (c *Compiler) endFunction() *value.Function {
	c.emitReturn()
	return &value.Function{
		Name:         c.fs.name,
		Arity:        c.fs.arity,
		Chunk:        c.fs.builder.Finish(),
		UpvalueCount: len(c.fs.upvalues),
		FnKind:       c.fs.fnKind,
	}
}
