// SPDX-License-Identifier: MPL-2.0

// Package pipeline runs discovery, extraction and assembly for one or more
// datapacks.
//
// In ModeOne every datapack is merged, in order, into a single graph. In
// ModeMultiple each datapack gets its own graph and the datapacks are mapped
// concurrently; outputs and reports keep the input order so callers can print
// them after the pass without attributing one datapack's counts to another.
package pipeline
