// SPDX-License-Identifier: MPL-2.0

// Package discovery locates the source artifacts of a datapack.
//
// A datapack root holds data/<namespace>/ directories; each namespace may carry
// command scripts, function tags and advancements. Discover validates the root
// and returns a Package whose artifact sequences walk the filesystem lazily on
// every call, so the same Package can be re-scanned after files change.
//
// File organization:
//   - discovery.go: Package, Artifact, Kind and the glob-driven sequences
//   - diagnostic.go: structured, non-fatal diagnostics shared by the pipeline
package discovery
