package compiler

import (
	"github.com/mna/glox/lang/token"
	"github.com/mna/glox/lang/value"
)

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emitOp(value.OpNil)
	}
	c.consume(token.SEMI, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

// funDeclaration compiles `fun name(...) { ... }`. The name is defined
// (and marked initialized) before the body compiles, so the function can
// refer to itself recursively.
func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(value.KindFunc)
	c.defineVariable(global)
}

// function compiles a function's parameter list and body into a fresh
// funcState, then emits OpClosure with its upvalue capture trailer in the
// enclosing function, per spec.md §4.D.5's closure-creation algorithm.
func (c *Compiler) function(kind value.FunctionKind) {
	name := c.previous.Lit
	enclosing := c.fs
	c.fs = newFuncState(enclosing, kind)
	c.fs.name = c.interner.Intern(name)
	c.beginScope()

	c.consume(token.LPAREN, "Expect '(' after function name.")
	if !c.check(token.RPAREN) {
		for {
			c.fs.arity++
			if c.fs.arity > maxArgs {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := c.parseVariable("Expect parameter name.")
			c.defineVariable(paramConst)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after parameters.")
	c.consume(token.LBRACE, "Expect '{' before function body.")
	c.block()

	fn := c.endFunction()
	upvalues := c.fs.upvalues
	c.fs = enclosing

	idx := c.makeConstant(fn)
	c.emitOpByte(value.OpClosure, idx)
	for _, uv := range upvalues {
		if uv.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(uv.index)
	}
}

// method compiles a single class method, dispatching it to KindInitializer
// when named "init" so emitReturn and the return-statement rules treat it
// specially (spec.md §4.D.6, §4.D.7).
func (c *Compiler) method() {
	c.consume(token.IDENT, "Expect method name.")
	name := c.previous.Lit
	nameConst := c.identifierConstant(name)

	kind := value.KindMethod
	if name == "init" {
		kind = value.KindInitializer
	}
	c.function(kind)
	c.emitOpByte(value.OpMethod, nameConst)
}

// classDeclaration implements spec.md §4.D.7: a class is declared as a
// global (or local) binding, then the class is loaded back onto the stack
// and mutated via OpInherit/OpMethod before being popped.
func (c *Compiler) classDeclaration() {
	c.consume(token.IDENT, "Expect class name.")
	className := c.previous.Lit
	nameConst := c.identifierConstant(className)
	c.declareVariable()

	c.emitOpByte(value.OpClass, nameConst)
	c.defineVariable(nameConst)

	cs := &classState{enclosing: c.cs}
	c.cs = cs

	if c.match(token.LT) {
		c.consume(token.IDENT, "Expect superclass name.")
		variable(c, false)
		if className == c.previous.Lit {
			c.errorAtPrevious("A class cannot inherit from itself.")
		}

		c.beginScope()
		c.addLocal("super")
		c.markInitialized()

		c.namedVariable(className, false)
		c.emitOp(value.OpInherit)
		cs.hasSuperclass = true
	}

	c.namedVariable(className, false)
	c.consume(token.LBRACE, "Expect '{' before class body.")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, "Expect '}' after class body.")
	c.emitOp(value.OpPop)

	if cs.hasSuperclass {
		c.endScope()
	}
	c.cs = cs.enclosing
}
