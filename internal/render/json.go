// SPDX-License-Identifier: MPL-2.0

package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/packmap/packmap/internal/callgraph"
)

type (
	// Document is the JSON form of a call graph.
	Document struct {
		Name  string         `json:"name"`
		Nodes []DocumentNode `json:"nodes"`
		Edges []DocumentEdge `json:"edges"`
	}

	// DocumentNode is one node of a Document.
	DocumentNode struct {
		ID       string `json:"id"`
		Category string `json:"category"`
	}

	// DocumentEdge is one call of a Document.
	DocumentEdge struct {
		From       string `json:"from"`
		To         string `json:"to"`
		Provenance string `json:"provenance"`
		Label      string `json:"label,omitempty"`
		Color      string `json:"color,omitempty"`
		Scheduled  bool   `json:"scheduled,omitempty"`
	}
)

// NewDocument converts g into its JSON form.
func NewDocument(name string, g *callgraph.Graph) Document {
	doc := Document{
		Name:  name,
		Nodes: make([]DocumentNode, 0, g.Order()),
		Edges: make([]DocumentEdge, 0, g.Size()),
	}
	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, DocumentNode{ID: n.ID.String(), Category: n.Category.String()})
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, DocumentEdge{
			From:       e.From.String(),
			To:         e.To.String(),
			Provenance: e.Provenance.String(),
			Label:      e.Label,
			Color:      e.Color,
			Scheduled:  e.Scheduled,
		})
	}
	return doc
}

// WriteJSON writes g as an indented JSON document.
func WriteJSON(w io.Writer, name string, g *callgraph.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(name, g)); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
