package parlex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternAssignsSequentialIndices(t *testing.T) {
	table := &MergeTable{}
	in := newInterner(table)

	a := newParallelState(2)
	b := newParallelState(2)
	b.transitions[0] = Transition{Result: 1}

	require.Equal(t, StateIndex(0), in.intern(a))
	require.Equal(t, StateIndex(1), in.intern(b))
	assert.Equal(t, 2, in.len())
}

func TestInternDeduplicatesStructurally(t *testing.T) {
	table := &MergeTable{}
	in := newInterner(table)

	a := newParallelState(2)
	a.transitions[1] = Transition{Result: 0, ProducesLexeme: true}
	first := in.intern(a)

	duplicate := a.clone()
	assert.Equal(t, first, in.intern(duplicate))
	assert.Equal(t, 1, in.len())
}

func TestInternGrowsMergeTable(t *testing.T) {
	table := &MergeTable{}
	in := newInterner(table)

	for i := 0; i < 10; i++ {
		ps := newParallelState(1)
		ps.transitions[0] = Transition{Result: StateIndex(i)}
		in.intern(ps)
		assert.Equal(t, i+1, table.States())
	}
}

func TestInternedStateIsRetrievableByIndex(t *testing.T) {
	table := &MergeTable{}
	in := newInterner(table)

	ps := newParallelState(3)
	ps.transitions[2] = Transition{Result: 1, ProducesLexeme: true}
	index := in.intern(ps)
	assert.Same(t, ps, in.states[index])
}
