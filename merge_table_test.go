package parlex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTableStartsEmpty(t *testing.T) {
	mt := &MergeTable{}
	assert.Equal(t, 0, mt.States())
}

func TestMergeTableResizeWithinCapacity(t *testing.T) {
	mt := &MergeTable{}
	mt.resize(3)
	require.Equal(t, 3, mt.States())
	require.Equal(t, minMergeTableSize, mt.capacity)

	mt.set(2, 1, Transition{Result: 5, ProducesLexeme: true})
	mt.resize(8)
	assert.Equal(t, 8, mt.States())
	assert.Equal(t, minMergeTableSize, mt.capacity, "no reallocation while the side fits")
	assert.Equal(t, Transition{Result: 5, ProducesLexeme: true}, mt.Get(2, 1))
}

func TestMergeTableGrowthPreservesCoordinates(t *testing.T) {
	mt := &MergeTable{}
	mt.resize(minMergeTableSize)

	// fill with a value derived from the coordinates, then grow past
	// capacity and verify every cell is still where it logically was
	mark := func(first, second int) Transition {
		return Transition{Result: StateIndex(first*100 + second), ProducesLexeme: (first+second)%2 == 0}
	}
	for second := 0; second < minMergeTableSize; second++ {
		for first := 0; first < minMergeTableSize; first++ {
			mt.set(StateIndex(first), StateIndex(second), mark(first, second))
		}
	}

	mt.resize(minMergeTableSize + 1)
	require.Equal(t, minMergeTableSize*mergeTableGrowFactor, mt.capacity)
	for second := 0; second < minMergeTableSize; second++ {
		for first := 0; first < minMergeTableSize; first++ {
			assert.Equal(t, mark(first, second), mt.Get(StateIndex(first), StateIndex(second)),
				"cell (%d, %d) moved during regrow", first, second)
		}
	}

	// cells the regrow introduced default to reject
	assert.Equal(t, rejectTransition, mt.Get(minMergeTableSize, 0))
	assert.Equal(t, rejectTransition, mt.Get(0, minMergeTableSize))
}

func TestMergeTableGrowthIsGeometric(t *testing.T) {
	mt := &MergeTable{}
	mt.resize(minMergeTableSize*mergeTableGrowFactor + 1)
	assert.Equal(t, minMergeTableSize*mergeTableGrowFactor*mergeTableGrowFactor, mt.capacity)
}

func TestMergeTableBoundsAssert(t *testing.T) {
	mt := &MergeTable{}
	mt.resize(2)
	assert.Panics(t, func() { mt.Get(2, 0) })
	assert.Panics(t, func() { mt.Get(0, 2) })
	assert.NotPanics(t, func() { mt.Get(1, 1) })
}
