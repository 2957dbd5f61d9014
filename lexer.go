package parlex

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ParallelLexer is the immutable artifact Build produces: the
// per-byte initial-state table, the merge table, the identity state's
// index, and the final-states table. It holds no references to the
// DFA it was built from (beyond the shared Lexeme handles) and no
// interior mutability, so any number of goroutines may read it
// without synchronization.
type ParallelLexer struct {
	initialStates []Transition
	mergeTable    *MergeTable
	identityIndex StateIndex
	finalStates   []*Lexeme

	// buildID identifies the encode that produced a decoded artifact.
	// Zero for artifacts built in-process.
	buildID uuid.UUID
}

// InitialState returns, for an input byte, the interned index of its
// parallel state and the ProducesLexeme flag of that state's Start
// slot.
func (pl *ParallelLexer) InitialState(sym byte) Transition {
	return pl.initialStates[sym]
}

// Merge returns the composition of parallel states first and second:
// the interned index of the composite and whether the composite
// crosses a lexeme boundary at Start.
func (pl *ParallelLexer) Merge(first, second StateIndex) Transition {
	return pl.mergeTable.Get(first, second)
}

// IdentityIndex returns the index of the identity parallel state, the
// unit a scan kernel seeds its fold with.
func (pl *ParallelLexer) IdentityIndex() StateIndex {
	return pl.identityIndex
}

// NumStates returns K, the number of interned parallel states and the
// side length of the merge table.
func (pl *ParallelLexer) NumStates() int {
	return pl.mergeTable.States()
}

// FinalLexeme returns the lexeme recognized when the scan's fold ends
// at parallel state i, or nil when that state recognizes nothing.
func (pl *ParallelLexer) FinalLexeme(i StateIndex) *Lexeme {
	return pl.finalStates[i]
}

// BuildID returns the identifier stamped on the encode this artifact
// was decoded from, or the zero UUID for artifacts built in-process.
func (pl *ParallelLexer) BuildID() uuid.UUID {
	return pl.buildID
}

// Recognize folds the input's initial states through the merge table
// and looks the result up in the final-states table, reporting the
// lexeme the sequential DFA would have recognized for the whole
// input. This is the sequential reference for what the data-parallel
// kernel computes with the same tables; the kernel itself lives
// outside this package.
func (pl *ParallelLexer) Recognize(input []byte) *Lexeme {
	current := pl.identityIndex
	for _, sym := range input {
		current = pl.mergeTable.Get(current, pl.initialStates[sym].Result).Result
	}
	return pl.finalStates[current]
}

// DumpSizes writes the cardinalities of the three tables, for
// diagnostics.
func (pl *ParallelLexer) DumpSizes(w io.Writer) {
	states := pl.mergeTable.States()
	fmt.Fprintf(w, "Initial states table: %d elements\n", len(pl.initialStates))
	fmt.Fprintf(w, "Merge table: %d² elements = %d elements\n", states, states*states)
	fmt.Fprintf(w, "Final states table: %d elements\n", len(pl.finalStates))
}

// Validate re-checks the artifact's structural guarantees: every
// composition lands inside the table, the identity state is a
// two-sided unit, and every cell's ProducesLexeme flag agrees with
// its result state's Start slot (read back through the identity row,
// which records exactly that flag). The artifact is immutable, so the
// rows are checked concurrently.
func (pl *ParallelLexer) Validate(ctx context.Context) error {
	k := pl.mergeTable.States()
	if len(pl.finalStates) != k {
		return errors.Errorf("final states table has %d entries, want %d", len(pl.finalStates), k)
	}
	if int(pl.identityIndex) >= k {
		return errors.Errorf("identity index %d outside table of side %d", pl.identityIndex, k)
	}

	g, ctx := errgroup.WithContext(ctx)
	workers := runtime.GOMAXPROCS(0)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < k; i += workers {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				first := StateIndex(i)
				if t := pl.mergeTable.Get(pl.identityIndex, first); t.Result != first {
					return errors.Errorf("identity is not a left unit for state %d: got %d", first, t.Result)
				}
				if t := pl.mergeTable.Get(first, pl.identityIndex); t.Result != first {
					return errors.Errorf("identity is not a right unit for state %d: got %d", first, t.Result)
				}
				for j := 0; j < k; j++ {
					second := StateIndex(j)
					t := pl.mergeTable.Get(first, second)
					if int(t.Result) >= k {
						return errors.Errorf("merge of (%d, %d) escapes the table: %d", first, second, t.Result)
					}
					if first == pl.identityIndex || second == pl.identityIndex {
						continue
					}
					if want := pl.mergeTable.Get(t.Result, pl.identityIndex).ProducesLexeme; t.ProducesLexeme != want {
						return errors.Errorf("merge of (%d, %d) reports produces-lexeme %v, result state says %v", first, second, t.ProducesLexeme, want)
					}
				}
			}
			return nil
		})
	}
	return g.Wait()
}
