package parlex

import "fmt"

const (
	// minMergeTableSize is the smallest capacity the table allocates.
	minMergeTableSize = 8
	// mergeTableGrowFactor is the geometric growth multiplier applied
	// whenever the logical side outgrows the capacity.
	mergeTableGrowFactor = 2
)

// MergeTable is a dense square matrix of Transitions: cell (i, j)
// holds the interned index of parallel state i composed with parallel
// state j, plus the ProducesLexeme flag of the composite at Start.
// During saturation the final side length isn't known, so the table
// grows geometrically; the backing array is laid out row-major with
// stride equal to the allocated capacity, which means a regrow has to
// rehome every cell by its logical coordinates rather than copying
// the flat array.
type MergeTable struct {
	numStates int
	capacity  int
	cells     []Transition
}

// States reports the logical side length of the table, i.e. the
// number of interned parallel states.
func (mt *MergeTable) States() int {
	return mt.numStates
}

// Get returns the composition of parallel states first and second.
func (mt *MergeTable) Get(first, second StateIndex) Transition {
	return mt.cells[mt.offset(first, second)]
}

func (mt *MergeTable) set(first, second StateIndex, t Transition) {
	mt.cells[mt.offset(first, second)] = t
}

func (mt *MergeTable) offset(first, second StateIndex) int {
	if int(first) >= mt.numStates || int(second) >= mt.numStates {
		panic(fmt.Sprintf("merge table access (%d, %d) out of range, side is %d", first, second, mt.numStates))
	}
	return int(first) + int(second)*mt.capacity
}

// resize grows the logical side to newStates. While the new side fits
// the current capacity this just bumps the side length; otherwise the
// capacity is doubled until it fits, a new backing array is allocated,
// and existing cells are copied across at their (first, second)
// coordinates. New cells default to the reject transition.
func (mt *MergeTable) resize(newStates int) {
	if newStates <= mt.capacity {
		mt.numStates = newStates
		return
	}

	newCapacity := mt.capacity
	if newCapacity < minMergeTableSize {
		newCapacity = minMergeTableSize
	}
	for newCapacity < newStates {
		newCapacity *= mergeTableGrowFactor
	}

	cells := make([]Transition, newCapacity*newCapacity)
	for i := range cells {
		cells[i] = rejectTransition
	}
	for second := 0; second < mt.numStates; second++ {
		for first := 0; first < mt.numStates; first++ {
			cells[first+second*newCapacity] = mt.cells[first+second*mt.capacity]
		}
	}

	mt.numStates = newStates
	mt.capacity = newCapacity
	mt.cells = cells
}
