// SPDX-License-Identifier: MPL-2.0

// Package render serializes call graphs and hands them to an external layout
// engine.
//
// DOT output is produced with gonum's graph/encoding/dot from a multigraph
// view of a callgraph.Graph, so parallel calls between the same two functions
// stay visible as separate edges. Image formats are delegated to Graphviz.
package render
