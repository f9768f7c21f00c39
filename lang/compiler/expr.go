package compiler

import (
	"strconv"

	"github.com/mna/glox/lang/token"
	"github.com/mna/glox/lang/value"
)

// precedence orders Lox's binary operators from loosest to tightest
// binding, per spec.md §4.D.2.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type rule struct {
	prefix parseFn
	infix  parseFn
	prec   precedence
}

// rules is the Pratt parsing table: for each token kind, the function
// that parses it as a prefix expression, the function that parses it as
// an infix operator continuing a left-hand expression, and the binding
// power of that infix use. A missing entry (the map's zero value) has no
// prefix or infix rule and precNone, which parsePrecedence treats as "not
// an operator".
var rules map[token.Token]rule

func init() {
	rules = map[token.Token]rule{
		token.LPAREN: {prefix: grouping, infix: call, prec: precCall},
		token.DOT:    {infix: dot, prec: precCall},
		token.MINUS:  {prefix: unary, infix: binary, prec: precTerm},
		token.PLUS:   {infix: binary, prec: precTerm},
		token.SLASH:  {infix: binary, prec: precFactor},
		token.STAR:   {infix: binary, prec: precFactor},
		token.BANG:   {prefix: unary},
		token.BANGEQ: {infix: binary, prec: precEquality},
		token.EQEQ:   {infix: binary, prec: precEquality},
		token.GT:     {infix: binary, prec: precComparison},
		token.GE:     {infix: binary, prec: precComparison},
		token.LT:     {infix: binary, prec: precComparison},
		token.LE:     {infix: binary, prec: precComparison},
		token.IDENT:  {prefix: variable},
		token.STRING: {prefix: stringLit},
		token.NUMBER: {prefix: number},
		token.AND:    {infix: and_, prec: precAnd},
		token.OR:     {infix: or_, prec: precOr},
		token.FALSE:  {prefix: literal},
		token.TRUE:   {prefix: literal},
		token.NIL:    {prefix: literal},
		token.THIS:   {prefix: this_},
		token.SUPER:  {prefix: super_},
	}
}

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

// parsePrecedence implements the core Pratt parsing loop: consume one
// prefix expression, then keep folding in infix operators whose
// precedence is at least prec.
func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefixRule := rules[c.previous.Kind].prefix
	if prefixRule == nil {
		c.errorAtPrevious("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	prefixRule(c, canAssign)

	for prec <= rules[c.current.Kind].prec {
		c.advance()
		infixRule := rules[c.previous.Kind].infix
		infixRule(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.errorAtPrevious("Invalid assignment target.")
	}
}

func grouping(c *Compiler, _ bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func unary(c *Compiler, _ bool) {
	opType := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch opType {
	case token.MINUS:
		c.emitOp(value.OpNegate)
	case token.BANG:
		c.emitOp(value.OpNot)
	}
}

// binary parses the right operand at one precedence level higher than
// this operator's own, making the common operators left-associative; `!=`,
// `>=`, and `<=` are fused from their complements, per spec.md §6.
func binary(c *Compiler, _ bool) {
	opType := c.previous.Kind
	c.parsePrecedence(rules[opType].prec + 1)
	switch opType {
	case token.PLUS:
		c.emitOp(value.OpAdd)
	case token.MINUS:
		c.emitOp(value.OpSubtract)
	case token.STAR:
		c.emitOp(value.OpMultiply)
	case token.SLASH:
		c.emitOp(value.OpDivide)
	case token.EQEQ:
		c.emitOp(value.OpEqual)
	case token.BANGEQ:
		c.emitOp(value.OpEqual)
		c.emitOp(value.OpNot)
	case token.GT:
		c.emitOp(value.OpGreater)
	case token.GE:
		c.emitOp(value.OpLess)
		c.emitOp(value.OpNot)
	case token.LT:
		c.emitOp(value.OpLess)
	case token.LE:
		c.emitOp(value.OpGreater)
		c.emitOp(value.OpNot)
	}
}

func number(c *Compiler, _ bool) {
	f, _ := strconv.ParseFloat(c.previous.Lit, 64)
	c.emitConstant(value.Double(f))
}

// stringLit strips the surrounding quotes the scanner kept in the lexeme
// and interns the content.
func stringLit(c *Compiler, _ bool) {
	lit := c.previous.Lit
	sym := c.interner.Intern(lit[1 : len(lit)-1])
	c.emitConstant(value.NewString(sym))
}

func literal(c *Compiler, _ bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(value.OpFalse)
	case token.NIL:
		c.emitOp(value.OpNil)
	case token.TRUE:
		c.emitOp(value.OpTrue)
	}
}

func variable(c *Compiler, canAssign bool) {
	c.namedVariable(c.previous.Lit, canAssign)
}

// and_ short-circuits: if the left operand is falsey, its value is left on
// the stack as the result and the right operand is skipped entirely.
func and_(c *Compiler, _ bool) {
	endJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

// or_ short-circuits the opposite way: a truthy left operand is kept and
// the right operand is skipped.
func or_(c *Compiler, _ bool) {
	elseJump := c.emitJump(value.OpJumpIfFalse)
	endJump := c.emitJump(value.OpJump)
	c.patchJump(elseJump)
	c.emitOp(value.OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func call(c *Compiler, _ bool) {
	argCount := c.argumentList()
	c.emitOpByte(value.OpCall, argCount)
}

// dot compiles both property access/assignment and the OpInvoke fusion of
// "look up a method, then call it" for the common `recv.method(...)` shape
// (spec.md §4.D.8).
func dot(c *Compiler, canAssign bool) {
	c.consume(token.IDENT, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous.Lit)

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitOpByte(value.OpSetProperty, name)
	case c.match(token.LPAREN):
		argCount := c.argumentList()
		c.emitOpByte(value.OpInvoke, name)
		c.emitByte(argCount)
	default:
		c.emitOpByte(value.OpGetProperty, name)
	}
}

func this_(c *Compiler, _ bool) {
	if c.cs == nil {
		c.errorAtPrevious("Can't use 'this' outside of a class.")
		return
	}
	c.namedVariable("this", false)
}

// super_ resolves the method name at compile time and the superclass
// value at runtime, fusing the call case into OpSuperInvoke the same way
// dot fuses OpInvoke (spec.md §4.D.8).
func super_(c *Compiler, _ bool) {
	if c.cs == nil {
		c.errorAtPrevious("Can't use 'super' outside of a class.")
	} else if !c.cs.hasSuperclass {
		c.errorAtPrevious("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENT, "Expect superclass method name.")
	name := c.identifierConstant(c.previous.Lit)

	c.namedVariable("this", false)
	if c.match(token.LPAREN) {
		argCount := c.argumentList()
		c.namedVariable("super", false)
		c.emitOpByte(value.OpSuperInvoke, name)
		c.emitByte(argCount)
	} else {
		c.namedVariable("super", false)
		c.emitOpByte(value.OpGetSuper, name)
	}
}

// argumentList compiles a parenthesized, comma-separated call argument
// list and returns the argument count.
func (c *Compiler) argumentList() byte {
	var argCount int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argCount == maxArgs {
				c.errorAtPrevious("Can't have more than 255 arguments.")
			} else {
				argCount++
			}
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return byte(argCount)
}
