// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of markdown guidance
// for failures a user can fix, such as a mistyped datapack path or a missing
// Graphviz installation.
package issue
