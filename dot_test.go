package parlex

import (
	"bytes"
	"testing"

	"github.com/goccy/go-graphviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderGraph(t *testing.T) {
	dfa, _ := compileTestGrammar(t)

	var buf bytes.Buffer
	require.NoError(t, dfa.RenderGraph(&buf, graphviz.XDOT))
	out := buf.String()
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "s0")
}

func TestByteSetLabel(t *testing.T) {
	assert.Equal(t, "a", byteSetLabel([]byte{'a'}))
	assert.Equal(t, "a b", byteSetLabel([]byte{'b', 'a'}))
	assert.Equal(t, "a-d", byteSetLabel([]byte{'a', 'b', 'c', 'd'}))
	assert.Equal(t, "0-9 _", byteSetLabel([]byte{'_', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9'}))
	assert.Equal(t, "0x00", byteSetLabel([]byte{0}))
	assert.Equal(t, "0x1e-0x20", byteSetLabel([]byte{0x1e, 0x1f, 0x20}))
}
