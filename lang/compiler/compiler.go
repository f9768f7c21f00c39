// Package compiler implements glox's single-pass Pratt-parsing compiler: it
// consumes a token stream from lang/scanner and emits bytecode directly into
// a lang/value.Builder, with no separate AST or resolver pass. Scope, local,
// and upvalue resolution happen inline as each token is parsed, following
// the algorithm of spec.md §4.D.5.
package compiler

import (
	"github.com/mna/glox/lang/intern"
	"github.com/mna/glox/lang/scanner"
	"github.com/mna/glox/lang/token"
	"github.com/mna/glox/lang/value"
)

const maxLocals = 256
const maxUpvalues = 256
const maxArgs = 255

// Compile scans and compiles source into a top-level script Function. It
// always runs to EOF to collect as many diagnostics as possible (spec.md
// §7); if any diagnostic was recorded, the returned Function must not be
// executed and ok is false.
func Compile(source []byte, interner *intern.Table) (fn *value.Function, diags []Diagnostic, ok bool) {
	c := &Compiler{sc: scanner.New(source), interner: interner}
	c.fs = newFuncState(nil, value.KindScript)
	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn = c.endFunction()
	return fn, c.diags, !c.hadError
}

// Compiler holds all state for a single compilation: token cursor, error
// collection, and the stack of function/class compiler frames.
type Compiler struct {
	sc       *scanner.Scanner
	interner *intern.Table

	previous scanner.Token
	current  scanner.Token

	hadError  bool
	panicMode bool
	diags     []Diagnostic

	fs *funcState  // innermost function currently being compiled
	cs *classState // innermost class currently being compiled, nil outside any class
}

// local is a compile-time record of a block-scoped variable: its lexeme,
// its scope depth (−1 while being declared but not yet initialized, the
// sentinel that makes "var a = a;" a compile error), and whether any
// nested function has captured it as an upvalue.
type local struct {
	name       string
	depth      int
	isCaptured bool
}

// upvalueDesc is how a function records that it closes over a variable
// from an enclosing function: either directly over that function's local
// (isLocal true, index = local slot) or transitively over one of that
// function's own upvalues (isLocal false, index = upvalue slot).
type upvalueDesc struct {
	index   uint8
	isLocal bool
}

// funcState is the per-function compiler frame (spec.md's
// "CompilerFrame"). A stack of these, linked through enclosing, supports
// nested function compilation.
type funcState struct {
	enclosing *funcState

	builder *value.Builder
	name    *intern.Symbol
	arity   int
	fnKind  value.FunctionKind

	locals     []local
	upvalues   []upvalueDesc
	scopeDepth int
}

// newFuncState starts a new function compiler frame nested inside
// enclosing (nil for the top-level script). Local slot 0 is reserved for
// the callee in ordinary functions, or for the receiver ("this") in
// methods and initializers. The caller is responsible for setting fs.name
// once it has interned the function's lexeme (or leaving it nil for the
// top-level script).
func newFuncState(enclosing *funcState, kind value.FunctionKind) *funcState {
	fs := &funcState{
		enclosing: enclosing,
		builder:   value.NewBuilder(),
		fnKind:    kind,
	}
	slot0 := ""
	if kind == value.KindMethod || kind == value.KindInitializer {
		slot0 = "this"
	}
	fs.locals = append(fs.locals, local{name: slot0, depth: 0})
	return fs
}

// classState is the per-class compiler frame (spec.md's
// "ClassCompilerFrame"), tracking whether the class being compiled has a
// superclass so `super` expressions can be validated.
type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// --- token stream -----------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.sc.Scan()
		if c.current.Kind != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.current.Lit)
	}
}

func (c *Compiler) check(kind token.Token) bool { return c.current.Kind == kind }

func (c *Compiler) match(kind token.Token) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(kind token.Token, msg string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

// --- declarations & statements (spec.md §4.D.3) ------------------------

func (c *Compiler) declaration() {
	switch {
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after value.")
	c.emitOp(value.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after expression.")
	c.emitOp(value.OpPop)
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

// ifStatement implements spec.md §4.D.4's if/else lowering.
func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.statement()

	elseJump := c.emitJump(value.OpJump)
	c.patchJump(thenJump)
	c.emitOp(value.OpPop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

// whileStatement implements spec.md §4.D.4's while lowering.
func (c *Compiler) whileStatement() {
	loopStart := c.fs.builder.Len()
	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(value.OpPop)
}

// forStatement implements spec.md §4.D.4's for lowering, desugared to the
// same while-shaped bytecode as the reference implementation.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMI):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := c.fs.builder.Len()
	hasExit := false
	var exitJump value.Patch
	if !c.match(token.SEMI) {
		c.expression()
		c.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = c.emitJump(value.OpJumpIfFalse)
		hasExit = true
		c.emitOp(value.OpPop)
	}

	if !c.match(token.RPAREN) {
		bodyJump := c.emitJump(value.OpJump)
		incrStart := c.fs.builder.Len()
		c.expression()
		c.emitOp(value.OpPop)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if hasExit {
		c.patchJump(exitJump)
		c.emitOp(value.OpPop)
	}
	c.endScope()
}

// returnStatement implements the top-level/init return rules of spec.md
// §4.D.6.
func (c *Compiler) returnStatement() {
	if c.fs.fnKind == value.KindScript {
		c.errorAtPrevious("Can't return from top-level code.")
	}
	if c.match(token.SEMI) {
		c.emitReturn()
		return
	}
	if c.fs.fnKind == value.KindInitializer {
		c.errorAtPrevious("Cannot return a value from an initializer.")
	}
	c.expression()
	c.consume(token.SEMI, "Expect ';' after return value.")
	c.emitOp(value.OpReturn)
}

func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.SEMI {
			return
		}
		switch c.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}
