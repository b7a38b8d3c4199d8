// SPDX-License-Identifier: MPL-2.0

package callgraph

import (
	"github.com/packmap/packmap/internal/extract"
	"github.com/packmap/packmap/pkg/nsid"
)

const (
	// Plain is an executable function.
	Plain Category = iota
	// Virtual is a tag group or advancement, drawn distinctly.
	Virtual
)

type (
	// Category is the visual class of a node.
	Category int

	// Node is a vertex of the call graph.
	Node struct {
		ID       nsid.ID
		Category Category
	}

	// Edge is one call from From to To. Color is an opaque token used only to
	// tell edges apart visually.
	Edge struct {
		From       nsid.ID
		To         nsid.ID
		Label      string
		Color      string
		Provenance extract.Provenance
		Scheduled  bool
	}

	// Graph is a directed multigraph keyed by namespaced id.
	Graph struct {
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []Node
		// index maps a node id to its position in nodes.
		index map[nsid.ID]int
		// edges holds every edge in insertion order.
		edges []Edge
		// out maps each node to the positions of its outgoing edges.
		out map[nsid.ID][]int
	}
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case Plain:
		return "plain"
	case Virtual:
		return "virtual"
	default:
		return "unknown"
	}
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		index: make(map[nsid.ID]int),
		out:   make(map[nsid.ID][]int),
	}
}

// AddNode adds a node with the given category. If the node already exists it
// is left untouched, including its category, and AddNode reports false.
func (g *Graph) AddNode(id nsid.ID, category Category) bool {
	if _, ok := g.index[id]; ok {
		return false
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: id, Category: category})
	return true
}

// AddEdge appends an edge. Missing endpoints are added as Plain nodes.
func (g *Graph) AddEdge(e Edge) {
	g.AddNode(e.From, Plain)
	g.AddNode(e.To, Plain)
	g.out[e.From] = append(g.out[e.From], len(g.edges))
	g.edges = append(g.edges, e)
}

// Node returns the node with the given id.
func (g *Graph) Node(id nsid.ID) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Nodes returns a copy of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// OutEdges returns the outgoing edges of id in insertion order.
func (g *Graph) OutEdges(id nsid.ID) []Edge {
	idx := g.out[id]
	out := make([]Edge, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.edges[i])
	}
	return out
}

// Successors returns the distinct targets called by id, in first-call order.
func (g *Graph) Successors(id nsid.ID) []nsid.ID {
	seen := make(map[nsid.ID]bool)
	var out []nsid.ID
	for _, i := range g.out[id] {
		to := g.edges[i].To
		if !seen[to] {
			seen[to] = true
			out = append(out, to)
		}
	}
	return out
}

// Order returns the number of nodes.
func (g *Graph) Order() int { return len(g.nodes) }

// Size returns the number of edges.
func (g *Graph) Size() int { return len(g.edges) }
