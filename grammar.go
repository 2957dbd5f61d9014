package parlex

import (
	"crypto/sha256"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TokenSpec describes one token class of a lexical grammar. Exactly
// one of Literal and Class must be set: a literal token matches the
// literal byte string, a class token matches any single byte of the
// class, or one-or-more of them when Repeat is set. A class is
// written as space-separated elements, each a single character, a hex
// byte like "0x20", or an inclusive range like "a-z".
type TokenSpec struct {
	Name    string `yaml:"name"`
	Literal string `yaml:"literal,omitempty"`
	Class   string `yaml:"class,omitempty"`
	Repeat  bool   `yaml:"repeat,omitempty"`
}

// Grammar is the YAML description of a lexical grammar.
type Grammar struct {
	Tokens []TokenSpec `yaml:"tokens"`
}

// LoadGrammar reads a YAML grammar description.
func LoadGrammar(r io.Reader) (*Grammar, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "can not read grammar")
	}
	g := &Grammar{}
	if err := yaml.Unmarshal(data, g); err != nil {
		return nil, errors.Wrap(err, "can not parse grammar")
	}
	if len(g.Tokens) == 0 {
		return nil, errors.New("grammar declares no tokens")
	}
	return g, nil
}

// LoadGrammarFile reads a YAML grammar description from a file.
func LoadGrammarFile(path string) (*Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "can not open grammar file")
	}
	defer f.Close()
	return LoadGrammar(f)
}

// Fingerprint returns a stable digest of the grammar, used as the
// artifact cache key. Two grammars with equal token lists fingerprint
// equally.
func (g *Grammar) Fingerprint() ([]byte, error) {
	data, err := yaml.Marshal(g)
	if err != nil {
		return nil, errors.Wrap(err, "can not fingerprint grammar")
	}
	sum := sha256.Sum256(data)
	return sum[:], nil
}

// Compile builds the DFA and the token mapping for the grammar.
// Literal tokens share a trie rooted at Start; class tokens get a
// single accepting state, with a self-loop when repeating. Token
// classes whose byte sets collide would make the automaton
// nondeterministic, and compilation refuses them. The receiver is
// deep-copied before normalization, so the caller's grammar is never
// mutated.
func (g *Grammar) Compile() (*DFA, *TokenMapping, error) {
	gg := deepcopy.Copy(g).(*Grammar)
	if err := gg.normalize(); err != nil {
		return nil, nil, err
	}

	mapping := NewTokenMapping()
	dfa := NewDFA()
	root := &trieNode{}

	for i := range gg.Tokens {
		spec := &gg.Tokens[i]
		mapping.Insert(Token{Type: TokenUserDefined, Name: spec.Name})
		lexeme := &Lexeme{Name: spec.Name}

		if spec.Literal != "" {
			if err := root.insert([]byte(spec.Literal), lexeme); err != nil {
				return nil, nil, errors.Wrapf(err, "token %q", spec.Name)
			}
			continue
		}

		set, err := parseClass(spec.Class)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "token %q", spec.Name)
		}
		accept := dfa.AddState()
		dfa.SetLexeme(accept, lexeme)
		for _, sym := range set {
			if err := dfa.AddTransition(Start, sym, accept, true); err != nil {
				return nil, nil, errors.Wrapf(err, "token %q overlaps another token", spec.Name)
			}
			if spec.Repeat {
				if err := dfa.AddTransition(accept, sym, accept, true); err != nil {
					return nil, nil, errors.Wrapf(err, "token %q", spec.Name)
				}
			}
		}
	}

	if err := root.emit(dfa, Start); err != nil {
		return nil, nil, err
	}
	return dfa, mapping, nil
}

func (g *Grammar) normalize() error {
	seen := make(map[string]bool, len(g.Tokens))
	for i := range g.Tokens {
		spec := &g.Tokens[i]
		spec.Name = strings.TrimSpace(spec.Name)
		if spec.Name == "" {
			return errors.New("token with empty name")
		}
		if seen[spec.Name] {
			return errors.Errorf("token %q declared twice", spec.Name)
		}
		seen[spec.Name] = true
		if (spec.Literal == "") == (spec.Class == "") {
			return errors.Errorf("token %q must set exactly one of literal and class", spec.Name)
		}
		if spec.Repeat && spec.Class == "" {
			return errors.Errorf("token %q sets repeat without a class", spec.Name)
		}
	}
	return nil
}

// parseClass expands a class expression into its byte set.
func parseClass(class string) ([]byte, error) {
	var set []byte
	seen := make(map[byte]bool)
	add := func(b byte) {
		if !seen[b] {
			seen[b] = true
			set = append(set, b)
		}
	}
	for _, elem := range strings.Fields(class) {
		switch {
		case len(elem) == 1:
			add(elem[0])
		case len(elem) == 4 && elem[0] == '0' && elem[1] == 'x':
			v, err := strconv.ParseUint(elem[2:], 16, 8)
			if err != nil {
				return nil, errors.Errorf("can not parse class element %q", elem)
			}
			add(byte(v))
		case len(elem) == 3 && elem[1] == '-':
			lo, hi := elem[0], elem[2]
			if lo > hi {
				return nil, errors.Errorf("class range %q is inverted", elem)
			}
			for b := lo; ; b++ {
				add(b)
				if b == hi {
					break
				}
			}
		default:
			return nil, errors.Errorf("can not parse class element %q", elem)
		}
	}
	if len(set) == 0 {
		return nil, errors.New("empty character class")
	}
	return set, nil
}

// trieNode is the shared prefix tree for the grammar's literal
// tokens; emit materializes it into DFA states and transitions.
type trieNode struct {
	children map[byte]*trieNode
	accepts  *Lexeme
}

func (n *trieNode) insert(literal []byte, lexeme *Lexeme) error {
	if len(literal) == 0 {
		if n.accepts != nil {
			return errors.Errorf("literal already taken by token %q", n.accepts.Name)
		}
		n.accepts = lexeme
		return nil
	}
	if n.children == nil {
		n.children = make(map[byte]*trieNode)
	}
	child, ok := n.children[literal[0]]
	if !ok {
		child = &trieNode{}
		n.children[literal[0]] = child
	}
	return child.insert(literal[1:], lexeme)
}

// emit walks children in byte order so that compiling the same
// grammar twice numbers the DFA states identically.
func (n *trieNode) emit(dfa *DFA, src StateIndex) error {
	syms := make([]byte, 0, len(n.children))
	for sym := range n.children {
		syms = append(syms, sym)
	}
	slices.Sort(syms)
	for _, sym := range syms {
		child := n.children[sym]
		dst := dfa.AddState()
		if child.accepts != nil {
			dfa.SetLexeme(dst, child.accepts)
		}
		if err := dfa.AddTransition(src, sym, dst, child.accepts != nil); err != nil {
			return errors.Wrap(err, "literal overlaps another token")
		}
		if err := child.emit(dfa, dst); err != nil {
			return err
		}
	}
	return nil
}
