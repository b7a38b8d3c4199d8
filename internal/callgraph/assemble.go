// SPDX-License-Identifier: MPL-2.0

package callgraph

import (
	"github.com/packmap/packmap/internal/extract"
)

type (
	// Stats summarizes an assembly pass.
	Stats struct {
		// Facts is the number of facts processed.
		Facts int
		// Edges is the number of edges added.
		Edges int
		// Nodes is the graph's node count after the pass.
		Nodes int
	}

	// Option configures an Assembler.
	Option func(*Assembler)

	// Assembler merges facts into a graph it owns for the duration of a pass.
	// It is not safe for concurrent use.
	Assembler struct {
		graph  *Graph
		labels bool
		color  ColorFunc
		stats  Stats
	}
)

// WithLabels attaches each fact's label to its edge.
func WithLabels(enabled bool) Option {
	return func(a *Assembler) { a.labels = enabled }
}

// WithColors sets the edge color source. The default is PastelColor.
func WithColors(fn ColorFunc) Option {
	return func(a *Assembler) {
		if fn != nil {
			a.color = fn
		}
	}
}

// NewAssembler creates an Assembler writing into g.
func NewAssembler(g *Graph, opts ...Option) *Assembler {
	a := &Assembler{graph: g, color: PastelColor}
	for _, opt := range opts {
		opt(a)
	}
	a.stats.Nodes = g.Order()
	return a
}

// Add merges one fact. Tag and advancement sources are Virtual, script
// sources Plain; a target is Virtual when it references a tag. A fact without
// a target only declares its source.
func (a *Assembler) Add(f extract.Fact) {
	a.stats.Facts++

	srcCategory := Plain
	if f.SourceIsVirtual() {
		srcCategory = Virtual
	}
	a.graph.AddNode(f.Source, srcCategory)

	if f.HasTarget() {
		dstCategory := Plain
		if f.TargetIsTag {
			dstCategory = Virtual
		}
		a.graph.AddNode(f.Target, dstCategory)

		e := Edge{
			From:       f.Source,
			To:         f.Target,
			Color:      a.color(),
			Provenance: f.Provenance,
			Scheduled:  f.Scheduled,
		}
		if a.labels {
			e.Label = f.Label()
		}
		a.graph.AddEdge(e)
		a.stats.Edges++
	}

	a.stats.Nodes = a.graph.Order()
}

// AddAll merges every batch in order and returns the cumulative stats.
func (a *Assembler) AddAll(batches ...[]extract.Fact) Stats {
	for _, batch := range batches {
		for _, f := range batch {
			a.Add(f)
		}
	}
	return a.stats
}

// Stats returns the cumulative stats of this assembler.
func (a *Assembler) Stats() Stats { return a.stats }

// Graph returns the graph being assembled.
func (a *Assembler) Graph() *Graph { return a.graph }

// Assemble builds a new graph from the three fact streams.
func Assemble(scripts, tags, rewards []extract.Fact, opts ...Option) (*Graph, Stats) {
	a := NewAssembler(New(), opts...)
	stats := a.AddAll(scripts, tags, rewards)
	return a.graph, stats
}
