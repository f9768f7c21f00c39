package scanner_test

import (
	"testing"

	"github.com/mna/glox/lang/scanner"
	"github.com/mna/glox/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(src string) []scanner.Token {
	s := scanner.New([]byte(src))
	var out []scanner.Token
	for {
		tok := s.Scan()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll("( ) { } , . - + ; / * ! != = == < <= > >=")
	var kinds []token.Token
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	want := []token.Token{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.COMMA,
		token.DOT, token.MINUS, token.PLUS, token.SEMI, token.SLASH, token.STAR,
		token.BANG, token.BANGEQ, token.EQ, token.EQEQ, token.LT, token.LE,
		token.GT, token.GE, token.EOF,
	}
	require.Equal(t, want, kinds)
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll("class foo while")
	require.Equal(t, token.CLASS, toks[0].Kind)
	require.Equal(t, token.IDENT, toks[1].Kind)
	require.Equal(t, "foo", toks[1].Lit)
	require.Equal(t, token.WHILE, toks[2].Kind)
}

func TestScanNumber(t *testing.T) {
	toks := scanAll("123 1.5")
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, "123", toks[0].Lit)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, "1.5", toks[1].Lit)
}

func TestScanString(t *testing.T) {
	toks := scanAll(`"hello world"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, `"hello world"`, toks[0].Lit)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(`"hello`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
	require.Equal(t, "Unterminated string.", toks[0].Lit)
}

func TestScanCommentsAndWhitespace(t *testing.T) {
	toks := scanAll("// a comment\nvar x = 1;")
	require.Equal(t, token.VAR, toks[0].Kind)
	require.Equal(t, 2, toks[0].Line)
}

func TestScanIllegalChar(t *testing.T) {
	toks := scanAll("@")
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}
