package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String(), "token %d missing a string representation", tok)
	}
}

func TestTokenGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "'=='", EQEQ.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
	require.Equal(t, "class", CLASS.GoString())
}

func TestLookup(t *testing.T) {
	require.Equal(t, CLASS, Lookup("class"))
	require.Equal(t, WHILE, Lookup("while"))
	require.Equal(t, IDENT, Lookup("classroom"))
	require.Equal(t, IDENT, Lookup(""))
}
