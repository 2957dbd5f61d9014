package parlex

import "github.com/pkg/errors"

// Lexeme is a named token class attached to the DFA states that
// recognize it. The table builder treats lexemes as opaque handles;
// only identity matters to it. Name is for the grammar layer, the
// token mapping, and diagnostics.
type Lexeme struct {
	Name string
}

type dfaTransition struct {
	sym            byte
	dst            StateIndex
	producesLexeme bool
}

type dfaState struct {
	transitions []dfaTransition
	lexeme      *Lexeme
}

// DFA is a deterministic finite automaton over bytes: at most one
// transition per (state, symbol) pair, every transition on a concrete
// symbol. State Start always exists; NewDFA creates it.
type DFA struct {
	states []dfaState
}

func NewDFA() *DFA {
	return &DFA{states: make([]dfaState, 1)}
}

// AddState appends a fresh state with no transitions and no lexeme.
func (d *DFA) AddState() StateIndex {
	d.states = append(d.states, dfaState{})
	return StateIndex(len(d.states) - 1)
}

// AddTransition installs src --sym--> dst. A second transition from
// src on the same symbol would make the automaton nondeterministic,
// which the parallel-state construction cannot represent, so it is
// refused.
func (d *DFA) AddTransition(src StateIndex, sym byte, dst StateIndex, producesLexeme bool) error {
	if int(src) >= len(d.states) {
		return errors.Errorf("source state %d does not exist", src)
	}
	if int(dst) >= len(d.states) {
		return errors.Errorf("destination state %d does not exist", dst)
	}
	for _, t := range d.states[src].transitions {
		if t.sym == sym {
			return errors.Errorf("state %d already transitions on %#02x, automaton would be nondeterministic", src, sym)
		}
	}
	d.states[src].transitions = append(d.states[src].transitions, dfaTransition{
		sym:            sym,
		dst:            dst,
		producesLexeme: producesLexeme,
	})
	return nil
}

// SetLexeme attaches lx to state s, marking it as recognizing that
// token class.
func (d *DFA) SetLexeme(s StateIndex, lx *Lexeme) {
	d.states[s].lexeme = lx
}

// LexemeAt returns the lexeme attached to state s, or nil.
func (d *DFA) LexemeAt(s StateIndex) *Lexeme {
	return d.states[s].lexeme
}

func (d *DFA) NumStates() int {
	return len(d.states)
}

// step follows the transition from src on sym, reporting Reject when
// there is none. Used by the sequential reference recognizer in tests.
func (d *DFA) step(src StateIndex, sym byte) Transition {
	for _, t := range d.states[src].transitions {
		if t.sym == sym {
			return Transition{Result: t.dst, ProducesLexeme: t.producesLexeme}
		}
	}
	return rejectTransition
}

func (d *DFA) transitionsFrom(src StateIndex) []dfaTransition {
	return d.states[src].transitions
}
