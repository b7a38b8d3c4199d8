// SPDX-License-Identifier: MPL-2.0

// Package callgraph assembles extracted call facts into a directed multigraph.
//
// Nodes are created on first reference, in insertion order, and keep the
// category they were created with. Every fact with a target becomes its own
// edge; repeated calls between the same pair are kept as separate edges.
// Cycles are legal.
package callgraph
