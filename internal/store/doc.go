// SPDX-License-Identifier: MPL-2.0

// Package store persists call graphs to a SQLite database so several runs
// can be queried together. Each graph is stored under a name; saving a graph
// replaces any earlier graph with the same name.
package store
