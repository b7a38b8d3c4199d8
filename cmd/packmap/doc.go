// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the packmap command line interface.
//
// The root command wires the map, watch and config subcommands to the
// pipeline, render and store packages. Handlers receive an App holding the
// configuration provider, the image renderer factory and the output writers,
// so tests can run the whole command tree against temporary datapacks.
package cmd
