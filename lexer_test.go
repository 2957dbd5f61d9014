package parlex

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePasses(t *testing.T) {
	_, lexer := buildTestLexer(t)
	assert.NoError(t, lexer.Validate(context.Background()))
}

func TestValidateCatchesBrokenIdentity(t *testing.T) {
	_, lexer := buildTestLexer(t)
	identity := lexer.IdentityIndex()
	// sabotage one identity-row cell
	good := lexer.mergeTable.Get(identity, 1)
	lexer.mergeTable.set(identity, 1, Transition{Result: 0})
	defer lexer.mergeTable.set(identity, 1, good)

	assert.Error(t, lexer.Validate(context.Background()))
}

func TestValidateCatchesEscapedResult(t *testing.T) {
	_, lexer := buildTestLexer(t)
	good := lexer.mergeTable.Get(1, 2)
	lexer.mergeTable.set(1, 2, Transition{Result: StateIndex(lexer.NumStates())})
	defer lexer.mergeTable.set(1, 2, good)

	assert.Error(t, lexer.Validate(context.Background()))
}

func TestRecognizeEmptyInput(t *testing.T) {
	_, lexer := buildTestLexer(t)
	assert.Nil(t, lexer.Recognize(nil))
}

func TestDumpSizes(t *testing.T) {
	_, lexer := buildTestLexer(t)
	var buf bytes.Buffer
	lexer.DumpSizes(&buf)

	out := buf.String()
	assert.Contains(t, out, "Initial states table: 256 elements")
	assert.Contains(t, out, "Merge table:")
	assert.Contains(t, out, "Final states table:")
	require.Greater(t, lexer.NumStates(), 0)
}
