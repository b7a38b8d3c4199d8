// SPDX-License-Identifier: MPL-2.0

// Package extract turns datapack artifacts into call facts.
//
// Three independent producers feed the graph assembler:
//   - Functions parses command scripts line by line (ParseLine)
//   - Tags expands function tag groups into one fact per member
//   - Advancements links advancement reward hooks to their function
//
// Every producer returns a Result carrying its facts, the number of files it
// read and the artifact-level diagnostics it collected. A broken artifact never
// stops its siblings.
package extract
