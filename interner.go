package parlex

// interner deduplicates parallel states and hands out dense indices
// in first-seen order. The states live in two containers with the
// invariant "position in the slice == value in the map": the map
// (keyed by the packed structural key) answers "have we seen this?",
// the slice answers "what is state number i?". Interning a new state
// also grows the merge table, so the table's side length always
// tracks the number of interned states.
type interner struct {
	indices map[string]StateIndex
	states  []*parallelState
	table   *MergeTable
}

func newInterner(table *MergeTable) *interner {
	return &interner{
		indices: make(map[string]StateIndex),
		states:  make([]*parallelState, 0, minMergeTableSize),
		table:   table,
	}
}

// intern returns the canonical index for ps, assigning the next
// sequential one if ps hasn't been seen. The interner takes ownership
// of ps; callers must not mutate it afterwards.
func (in *interner) intern(ps *parallelState) StateIndex {
	key := ps.key()
	if index, ok := in.indices[key]; ok {
		return index
	}
	index := StateIndex(len(in.states))
	in.indices[key] = index
	in.states = append(in.states, ps)
	in.table.resize(len(in.states))
	return index
}

func (in *interner) len() int {
	return len(in.states)
}
