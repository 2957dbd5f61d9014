package parlex

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenMappingHasWellKnownTokens(t *testing.T) {
	tm := NewTokenMapping()
	require.Equal(t, 3, tm.NumTokens())

	id, ok := tm.TokenID(InvalidToken)
	require.True(t, ok)
	assert.Equal(t, 0, id)
	id, ok = tm.TokenID(StartOfInputToken)
	require.True(t, ok)
	assert.Equal(t, 1, id)
	id, ok = tm.TokenID(EndOfInputToken)
	require.True(t, ok)
	assert.Equal(t, 2, id)
}

func TestInsertAssignsSequentialIDs(t *testing.T) {
	tm := NewTokenMapping()
	a := Token{Type: TokenUserDefined, Name: "a"}
	b := Token{Type: TokenUserDefined, Name: "b"}

	tm.Insert(a)
	tm.Insert(b)
	tm.Insert(a) // second insert is a no-op

	assert.Equal(t, 5, tm.NumTokens())
	id, ok := tm.TokenID(a)
	require.True(t, ok)
	assert.Equal(t, 3, id)
	id, ok = tm.TokenID(b)
	require.True(t, ok)
	assert.Equal(t, 4, id)

	assert.False(t, tm.Contains(Token{Type: TokenUserDefined, Name: "c"}))
	_, ok = tm.TokenID(Token{Type: TokenUserDefined, Name: "c"})
	assert.False(t, ok)
}

func TestBackingTypeBits(t *testing.T) {
	tm := NewTokenMapping() // ids 0..2 fit in 2 bits
	assert.Equal(t, 2, tm.BackingTypeBits())

	tm.Insert(Token{Type: TokenUserDefined, Name: "d"}) // ids 0..3
	assert.Equal(t, 2, tm.BackingTypeBits())

	tm.Insert(Token{Type: TokenUserDefined, Name: "e"}) // ids 0..4
	assert.Equal(t, 3, tm.BackingTypeBits())
}

func TestPrintTokens(t *testing.T) {
	tm := NewTokenMapping()
	tm.Insert(Token{Type: TokenUserDefined, Name: "ident"})

	var buf bytes.Buffer
	tm.PrintTokens(&buf)
	assert.Equal(t, "0: $invalid\n1: $start_of_input\n2: $end_of_input\n3: ident\n", buf.String())
}
