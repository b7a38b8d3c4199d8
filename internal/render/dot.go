// SPDX-License-Identifier: MPL-2.0

package render

import (
	"fmt"
	"io"

	"github.com/packmap/packmap/internal/callgraph"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
)

type (
	attributes []encoding.Attribute

	// dotGraph adds the global style to a gonum multigraph.
	dotGraph struct {
		*multi.DirectedGraph
		style Style
	}

	dotNode struct {
		uid   int64
		node  callgraph.Node
		shape string
	}

	dotLine struct {
		uid      int64
		from, to dotNode
		edge     callgraph.Edge
		labels   bool
	}
)

func (a attributes) Attributes() []encoding.Attribute { return a }

// DOTAttributers implements dot.Attributers.
func (g dotGraph) DOTAttributers() (graphAttrs, nodeAttrs, edgeAttrs encoding.Attributer) {
	graphAttrs = attributes{
		{Key: "bgcolor", Value: g.style.Background},
		{Key: "overlap", Value: g.style.Overlap()},
		{Key: "splines", Value: "true"},
	}
	nodeAttrs = attributes{
		{Key: "color", Value: g.style.NodeColor},
		{Key: "fontcolor", Value: g.style.FontColor},
	}
	return graphAttrs, nodeAttrs, attributes{}
}

func (n dotNode) ID() int64 { return n.uid }
func (n dotNode) DOTID() string { return n.node.ID.String() }
func (n dotNode) Attributes() []encoding.Attribute {
	if n.node.Category == callgraph.Virtual && n.shape != "" {
		return attributes{{Key: "shape", Value: n.shape}}
	}
	return nil
}

func (l dotLine) From() graph.Node { return l.from }
func (l dotLine) To() graph.Node { return l.to }
func (l dotLine) ID() int64 { return l.uid }

func (l dotLine) ReversedLine() graph.Line {
	l.from, l.to = l.to, l.from
	return l
}

func (l dotLine) Attributes() []encoding.Attribute {
	var attrs attributes
	if l.edge.Color != "" {
		attrs = append(attrs, encoding.Attribute{Key: "color", Value: l.edge.Color})
	}
	if l.edge.Scheduled {
		attrs = append(attrs, encoding.Attribute{Key: "style", Value: "dashed"})
	}
	if l.labels && l.edge.Label != "" {
		attrs = append(attrs, encoding.Attribute{Key: "label", Value: l.edge.Label})
		if l.edge.Color != "" {
			attrs = append(attrs, encoding.Attribute{Key: "fontcolor", Value: l.edge.Color})
		}
	}
	return attrs
}

// Multigraph converts g into a gonum multigraph carrying style. Node and line
// ids follow insertion order so output is stable.
func Multigraph(g *callgraph.Graph, style Style) graph.DirectedMultigraph {
	style = style.withDefaults()
	mg := dotGraph{DirectedGraph: multi.NewDirectedGraph(), style: style}

	nodes := make(map[string]dotNode, g.Order())
	for i, n := range g.Nodes() {
		dn := dotNode{uid: int64(i), node: n, shape: style.VirtualNodeShape}
		nodes[n.ID.String()] = dn
		mg.AddNode(dn)
	}
	for i, e := range g.Edges() {
		mg.SetLine(dotLine{
			uid:    int64(i),
			from:   nodes[e.From.String()],
			to:     nodes[e.To.String()],
			edge:   e,
			labels: style.Labels,
		})
	}
	return mg
}

// WriteDOT writes g as a DOT digraph named name.
func WriteDOT(w io.Writer, name string, g *callgraph.Graph, style Style) error {
	b, err := dot.MarshalMulti(Multigraph(g, style), name, "", "\t")
	if err != nil {
		return fmt.Errorf("marshal dot: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write dot: %w", err)
	}
	return nil
}
