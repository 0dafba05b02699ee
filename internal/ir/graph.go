package ir

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Graph is the canonical IR: a node table and the edge set between nodes.
//
// Inputs lists the data nodes fed from outside the graph; they are the only
// data nodes allowed to have no producer. Outputs lists the data nodes the
// graph exposes.
type Graph struct {
	Nodes   map[string]*Node
	Edges   []Edge
	Inputs  []string
	Outputs []string

	in  map[string][]int
	out map[string][]int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
		in:    make(map[string][]int),
		out:   make(map[string][]int),
	}
}

// AddNode inserts n. Node identities are unique.
func (g *Graph) AddNode(n *Node) error {
	if n.ID == "" {
		return errors.New("node has empty id")
	}
	if _, exists := g.Nodes[n.ID]; exists {
		return fmt.Errorf("duplicate node id %q", n.ID)
	}
	g.Nodes[n.ID] = n
	return nil
}

// Node returns the node with the given identity, or nil.
func (g *Graph) Node(id string) *Node {
	return g.Nodes[id]
}

// AddEdge connects two existing nodes of different kinds.
func (g *Graph) AddEdge(e Edge) error {
	from, to := g.Nodes[e.From], g.Nodes[e.To]
	if from == nil {
		return fmt.Errorf("edge source %q not in graph", e.From)
	}
	if to == nil {
		return fmt.Errorf("edge destination %q not in graph", e.To)
	}
	if from.Kind == to.Kind {
		return fmt.Errorf("edge %s -> %s connects two %s nodes", e.From, e.To, from.Kind)
	}
	g.Edges = append(g.Edges, e)
	idx := len(g.Edges) - 1
	g.out[e.From] = append(g.out[e.From], idx)
	g.in[e.To] = append(g.in[e.To], idx)
	return nil
}

// InEdges returns the edges entering id, ordered by input port.
func (g *Graph) InEdges(id string) []Edge {
	edges := g.collect(g.in[id])
	slices.SortStableFunc(edges, func(a, b Edge) int { return a.InPort - b.InPort })
	return edges
}

// OutEdges returns the edges leaving id, ordered by output port then consumer.
func (g *Graph) OutEdges(id string) []Edge {
	edges := g.collect(g.out[id])
	slices.SortStableFunc(edges, func(a, b Edge) int {
		if a.OutPort != b.OutPort {
			return a.OutPort - b.OutPort
		}
		return strings.Compare(a.To, b.To)
	})
	return edges
}

func (g *Graph) collect(idx []int) []Edge {
	edges := make([]Edge, len(idx))
	for i, j := range idx {
		edges[i] = g.Edges[j]
	}
	return edges
}

// Producer returns the operator node writing data node id, or nil.
func (g *Graph) Producer(id string) *Node {
	for _, e := range g.in[id] {
		return g.Nodes[g.Edges[e].From]
	}
	return nil
}

// Consumers returns the operator nodes reading data node id, sorted by ID.
func (g *Graph) Consumers(id string) []*Node {
	seen := make(map[string]bool)
	var nodes []*Node
	for _, e := range g.out[id] {
		to := g.Edges[e].To
		if !seen[to] {
			seen[to] = true
			nodes = append(nodes, g.Nodes[to])
		}
	}
	slices.SortFunc(nodes, func(a, b *Node) int { return strings.Compare(a.ID, b.ID) })
	return nodes
}

// OpNodes returns operator nodes sorted by ID.
func (g *Graph) OpNodes() []*Node {
	return g.byKind(OpKind)
}

// DataNodes returns data nodes sorted by ID.
func (g *Graph) DataNodes() []*Node {
	return g.byKind(DataKind)
}

func (g *Graph) byKind(k Kind) []*Node {
	var nodes []*Node
	for _, n := range g.Nodes {
		if n.Kind == k {
			nodes = append(nodes, n)
		}
	}
	slices.SortFunc(nodes, func(a, b *Node) int { return strings.Compare(a.ID, b.ID) })
	return nodes
}

// IsInput reports whether id is a graph input.
func (g *Graph) IsInput(id string) bool {
	return slices.Contains(g.Inputs, id)
}

// InputCount returns the number of connected inputs of operator id.
func (g *Graph) InputCount(id string) int {
	return len(g.in[id])
}

// CheckArity verifies that operator id has an input count its type accepts.
func (g *Graph) CheckArity(id string) error {
	n := g.Nodes[id]
	if n == nil || !n.IsOp() {
		return fmt.Errorf("%q is not an operator node", id)
	}
	arity, ok := Lookup(n.Type)
	if !ok {
		return fmt.Errorf("operator %s has unknown type %q", id, n.Type)
	}
	if got := g.InputCount(id); !arity.Accepts(got) {
		return fmt.Errorf("operator %s (%s) has %d inputs, expects %s", id, n.Type, got, arity)
	}
	return nil
}

// TopoOrder returns operator nodes so that every producer precedes its
// consumers. Ties are broken by node ID, so the order is deterministic.
func (g *Graph) TopoOrder() ([]*Node, error) {
	ops := g.OpNodes()
	indegree := make(map[string]int, len(ops))
	for _, op := range ops {
		for _, e := range g.InEdges(op.ID) {
			if g.Producer(e.From) != nil {
				indegree[op.ID]++
			}
		}
	}

	var ready []*Node
	for _, op := range ops {
		if indegree[op.ID] == 0 {
			ready = append(ready, op)
		}
	}

	order := make([]*Node, 0, len(ops))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		var next []*Node
		for _, out := range g.OutEdges(n.ID) {
			for _, e := range g.OutEdges(out.To) {
				indegree[e.To]--
				if indegree[e.To] == 0 {
					next = append(next, g.Nodes[e.To])
				}
			}
		}
		slices.SortFunc(next, func(a, b *Node) int { return strings.Compare(a.ID, b.ID) })
		ready = append(ready, next...)
	}

	if len(order) != len(ops) {
		return nil, fmt.Errorf("graph has a cycle: ordered %d of %d operators", len(order), len(ops))
	}
	return order, nil
}

// Validate checks the structural invariants of the graph: edges are
// bipartite, every non-input data node has exactly one producer, input
// ports are unique and every operator has an input count its type accepts.
func (g *Graph) Validate() error {
	var errs []error
	for _, e := range g.Edges {
		from, to := g.Nodes[e.From], g.Nodes[e.To]
		if from == nil || to == nil || from.Kind == to.Kind {
			errs = append(errs, fmt.Errorf("invalid edge %s -> %s", e.From, e.To))
		}
	}

	for _, n := range g.DataNodes() {
		producers := len(g.in[n.ID])
		switch {
		case g.IsInput(n.ID) && producers != 0:
			errs = append(errs, fmt.Errorf("graph input %s has %d producers", n.ID, producers))
		case !g.IsInput(n.ID) && producers != 1:
			errs = append(errs, fmt.Errorf("data node %s has %d producers, expects 1", n.ID, producers))
		}
	}

	for _, n := range g.OpNodes() {
		if err := g.CheckArity(n.ID); err != nil {
			errs = append(errs, err)
		}
		ports := make(map[int]bool)
		for _, e := range g.InEdges(n.ID) {
			if ports[e.InPort] {
				errs = append(errs, fmt.Errorf("operator %s has port %d connected twice", n.ID, e.InPort))
			}
			ports[e.InPort] = true
		}
	}
	return errors.Join(errs...)
}
