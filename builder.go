package parlex

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// progressInterval is how many outer-sweep states pass between
// progress reports during saturation.
const progressInterval = 64

// Option is used in Build to pass in options. By convention, Option
// names have a prefix of "With".
type Option func(b *builder) error

// WithLogger routes the builder's diagnostics to l. Without this
// option the builder is silent.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(b *builder) error {
		if l == nil {
			return errors.New("nil logger")
		}
		b.logger = l
		return nil
	}
}

// WithProgress arranges for f to be called periodically during the
// saturation sweep with the number of parallel states processed so
// far and the number discovered so far. The latter grows while the
// sweep runs, so done/total is not a stable fraction; it is meant for
// spinners, not progress bars.
func WithProgress(f func(done, total int)) Option {
	return func(b *builder) error {
		if f == nil {
			return errors.New("nil progress callback")
		}
		b.progress = f
		return nil
	}
}

type builder struct {
	dfa      *DFA
	logger   *zap.SugaredLogger
	progress func(done, total int)

	table    *MergeTable
	interner *interner
}

// Build constructs the parallel lexer tables for dfa. It seeds one
// parallel state per input byte from the DFA's transition relation,
// adds the identity state the scan's monoid needs, saturates the set
// under pairwise composition, and derives the final-states table.
// Construction is a synchronous batch computation; the returned
// artifact is immutable and safe for concurrent readers.
func Build(dfa *DFA, opts ...Option) (*ParallelLexer, error) {
	if dfa == nil {
		return nil, errors.New("nil DFA")
	}
	b := &builder{
		dfa:    dfa,
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.table = &MergeTable{}
	b.interner = newInterner(b.table)
	return b.build(), nil
}

func (b *builder) build() *ParallelLexer {
	lexer := &ParallelLexer{mergeTable: b.table}
	numStates := b.dfa.NumStates()

	// Seed one parallel state per input byte. Each starts as the
	// all-reject mapping and picks up an entry for every DFA
	// transition on its byte.
	initial := make([]*parallelState, int(MaxSym)+1)
	for sym := range initial {
		initial[sym] = newParallelState(numStates)
	}
	for src := 0; src < numStates; src++ {
		for _, t := range b.dfa.transitionsFrom(StateIndex(src)) {
			initial[t.sym].transitions[src] = Transition{Result: t.dst, ProducesLexeme: t.producesLexeme}
		}
	}
	lexer.initialStates = make([]Transition, len(initial))
	for sym, state := range initial {
		lexer.initialStates[sym] = Transition{
			Result:         b.interner.intern(state),
			ProducesLexeme: state.transitions[Start].ProducesLexeme,
		}
	}
	b.logger.Debugf("interned %d distinct initial states for %d symbols", b.interner.len(), len(initial))

	// The identity mapping is required for the scan operation to have
	// a monoid to fold with.
	identity := newParallelState(numStates)
	for i := range identity.transitions {
		identity.transitions[i] = Transition{Result: StateIndex(i)}
	}
	lexer.identityIndex = b.interner.intern(identity)

	// Saturate under composition. The identity cases are handled
	// separately: composition would ordinarily take ProducesLexeme
	// from the right-hand operand, but the identity state carries
	// false everywhere, which would erase lexeme boundaries. Passing
	// the other operand through keeps the flag, and the uniform
	// "read the flag from the result's Start slot" below then covers
	// both cases.
	merge := func(i, j StateIndex) {
		var result StateIndex
		switch {
		case i == lexer.identityIndex:
			result = j
		case j == lexer.identityIndex:
			result = i
		default:
			ps := b.interner.states[i].clone()
			ps.merge(b.interner.states[j])
			result = b.interner.intern(ps)
		}
		b.table.set(i, j, Transition{
			Result:         result,
			ProducesLexeme: b.interner.states[result].transitions[Start].ProducesLexeme,
		})
	}

	// Composition of new pairs interns new states, which lengthens
	// the sweep; both loops re-read the state count so the sweep
	// covers everything it discovers. When the outer index catches up
	// with the count, every ordered pair over the final set has been
	// merged and the set is closed. Termination is guaranteed because
	// there are finitely many mappings from DFA states to DFA states.
	for i := StateIndex(0); int(i) < b.interner.len(); i++ {
		if int(i)%progressInterval == 0 {
			b.logger.Debugf("merge sweep at state %d of %d", i, b.interner.len())
			if b.progress != nil {
				b.progress(int(i), b.interner.len())
			}
		}
		for j := StateIndex(0); int(j) < b.interner.len(); j++ {
			merge(i, j)
			merge(j, i)
		}
	}
	b.logger.Debugf("saturation closed at %d parallel states", b.interner.len())

	// Entry i of the final-states table is the lexeme recognized when
	// the DFA, started at Start, ends wherever parallel state i takes
	// Start. A rejected Start slot recognizes nothing.
	lexer.finalStates = make([]*Lexeme, b.interner.len())
	for i, ps := range b.interner.states {
		if result := ps.transitions[Start].Result; result != Reject {
			lexer.finalStates[i] = b.dfa.LexemeAt(result)
		}
	}

	return lexer
}
