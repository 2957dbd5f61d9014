package parlex

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// RenderGraph draws the automaton via graphviz: one node per state,
// accepting states double-circled and labeled with their lexeme, one
// edge per (src, dst) pair labeled with the byte set that takes it.
func (d *DFA) RenderGraph(w io.Writer, format graphviz.Format) error {
	g := graphviz.New()
	graph, err := g.Graph(graphviz.Directed)
	if err != nil {
		return err
	}
	graph.SetRankDir(cgraph.LRRank)

	nodes := make([]*cgraph.Node, d.NumStates())
	for s := 0; s < d.NumStates(); s++ {
		node, err := graph.CreateNode(fmt.Sprintf("s%d", s))
		if err != nil {
			return err
		}
		if lx := d.LexemeAt(StateIndex(s)); lx != nil {
			node.SetShape(cgraph.DoubleCircleShape)
			node.SetLabel(fmt.Sprintf("s%d\\n%s", s, lx.Name))
		} else {
			node.SetShape(cgraph.CircleShape)
		}
		nodes[s] = node
	}

	for src := 0; src < d.NumStates(); src++ {
		// group this state's transitions by destination so parallel
		// byte edges collapse into one labeled edge
		byDst := make(map[StateIndex][]byte)
		for _, t := range d.transitionsFrom(StateIndex(src)) {
			byDst[t.dst] = append(byDst[t.dst], t.sym)
		}
		dsts := make([]StateIndex, 0, len(byDst))
		for dst := range byDst {
			dsts = append(dsts, dst)
		}
		sort.Slice(dsts, func(i, j int) bool { return dsts[i] < dsts[j] })
		for _, dst := range dsts {
			edge, err := graph.CreateEdge(fmt.Sprintf("%d-%d", src, dst), nodes[src], nodes[dst])
			if err != nil {
				return err
			}
			edge.SetLabel(byteSetLabel(byDst[dst]))
		}
	}

	return g.Render(graph, format, w)
}

// byteSetLabel renders a byte set compactly, folding runs into
// ranges: "a-z", "0-9 _", "0x00-0x1f".
func byteSetLabel(set []byte) string {
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	var parts []string
	for i := 0; i < len(set); {
		j := i
		for j+1 < len(set) && set[j+1] == set[j]+1 {
			j++
		}
		switch {
		case i == j:
			parts = append(parts, byteLabel(set[i]))
		case j == i+1:
			parts = append(parts, byteLabel(set[i]), byteLabel(set[j]))
		default:
			parts = append(parts, byteLabel(set[i])+"-"+byteLabel(set[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, " ")
}

func byteLabel(b byte) string {
	if b > 0x20 && b < 0x7f {
		return string(b)
	}
	return fmt.Sprintf("0x%02x", b)
}
