package compiler

import (
	"fmt"

	"github.com/mna/glox/lang/scanner"
	"github.com/mna/glox/lang/token"
)

// A Diagnostic is a single compile error, already formatted the way
// spec.md §7 requires: "[line L] Error [at TOKEN|at end]: MSG".
type Diagnostic struct {
	Line    int
	Where   string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// errorAt records a diagnostic at tok and enters panic mode. Further
// errors are suppressed until synchronize() finds a statement boundary,
// so a single cascading mistake does not flood the diagnostic sink, but
// compilation still runs to EOF to surface unrelated errors elsewhere in
// the program.
func (c *Compiler) errorAt(tok scanner.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	where := " at end"
	if tok.Kind != token.EOF {
		where = fmt.Sprintf(" at '%s'", tok.Lit)
	}
	c.diags = append(c.diags, Diagnostic{Line: tok.Line, Where: where, Message: msg})
}

// errorAtCurrent reports msg at the current (not yet consumed) token.
func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }

// errorAtPrevious reports msg at the most recently consumed token, the
// usual anchor for grammar errors discovered after the fact.
func (c *Compiler) errorAtPrevious(msg string) { c.errorAt(c.previous, msg) }
