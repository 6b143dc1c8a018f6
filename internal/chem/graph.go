package chem

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ReactionGraph is a derived, non-authoritative directed view of the
// reaction catalog: one node per molecule type, one edge per
// reactant->product relation. Anything the underlying graph library throws
// is caught at this boundary and mapped to a neutral default, so graph
// analysis can never take the simulation down.
type ReactionGraph struct {
	g     *simple.DirectedGraph
	ids   map[string]int64
	next  int64
	edges int
}

// NewReactionGraph creates an empty reaction graph.
func NewReactionGraph() *ReactionGraph {
	return &ReactionGraph{
		g:   simple.NewDirectedGraph(),
		ids: make(map[string]int64),
	}
}

func (rg *ReactionGraph) nodeFor(name string) simple.Node {
	if id, ok := rg.ids[name]; ok {
		return simple.Node(id)
	}
	id := rg.next
	rg.next++
	rg.ids[name] = id
	rg.g.AddNode(simple.Node(id))
	return simple.Node(id)
}

// AddReaction inserts a reactant->product edge for every pair in the
// reaction. Parallel edges collapse (set semantics) and self-edges are
// skipped, which the cycle and connectivity consumers are insensitive to.
func (rg *ReactionGraph) AddReaction(r *Reaction) {
	for _, in := range r.Reactants {
		for _, out := range r.Products {
			if in.Name == out.Name {
				continue
			}
			u := rg.nodeFor(in.Name)
			v := rg.nodeFor(out.Name)
			if rg.g.HasEdgeFromTo(u.ID(), v.ID()) {
				continue
			}
			rg.g.SetEdge(rg.g.NewEdge(u, v))
			rg.edges++
		}
	}
}

// NodeCount returns the number of molecule types in the graph.
func (rg *ReactionGraph) NodeCount() int {
	return len(rg.ids)
}

// EdgeCount returns the number of distinct reactant->product edges.
func (rg *ReactionGraph) EdgeCount() int {
	return rg.edges
}

// AutocatalyticCycles counts directed cycles of length greater than two,
// interpreted as self-sustaining reaction loops. Degrades to 0 if cycle
// enumeration fails.
func (rg *ReactionGraph) AutocatalyticCycles() (count int) {
	defer func() {
		if recover() != nil {
			count = 0
		}
	}()
	for _, cycle := range topo.DirectedCyclesIn(rg.g) {
		// DirectedCyclesIn repeats the first node at the end.
		if len(cycle)-1 > 2 {
			count++
		}
	}
	return count
}

// Connectivity returns the edge density: edges over the maximum possible
// n·(n-1) directed edges. Degrades to 0 for graphs with fewer than two
// nodes.
func (rg *ReactionGraph) Connectivity() float64 {
	n := len(rg.ids)
	if n < 2 {
		return 0
	}
	return float64(rg.edges) / float64(n*(n-1))
}
