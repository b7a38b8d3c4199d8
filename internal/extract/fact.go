// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"strings"

	"github.com/packmap/packmap/pkg/nsid"
)

const (
	// FromScript marks a fact parsed from a command script.
	FromScript Provenance = iota
	// FromTag marks a fact produced by a function tag member.
	FromTag
	// FromAdvancement marks a fact produced by an advancement reward.
	FromAdvancement
)

type (
	// Provenance records which artifact family produced a fact.
	Provenance int

	// Fact is a directed call relationship from Source to Target. Target is
	// empty for a script that calls nothing; such a fact still declares the
	// source function.
	Fact struct {
		Provenance Provenance
		Source     nsid.ID
		Target     nsid.ID
		// TargetIsTag is set when Target references a function tag.
		TargetIsTag bool
		// Scheduled is set for deferred "schedule function" calls.
		Scheduled bool
		// ScheduleDelay is the delay token of a scheduled call (e.g. "5t").
		ScheduleDelay string
		// PrecedingLabel is the command text before the invocation keyword.
		PrecedingLabel string
		// Origin is the host path of the file the fact came from.
		Origin string
	}
)

// String returns a human-readable provenance name.
func (p Provenance) String() string {
	switch p {
	case FromScript:
		return "script"
	case FromTag:
		return "tag"
	case FromAdvancement:
		return "advancement"
	default:
		return "unknown"
	}
}

// HasTarget reports whether the fact describes an edge.
func (f Fact) HasTarget() bool {
	return f.Target != ""
}

// SourceIsVirtual reports whether the source is a tag group or advancement
// rather than an executable function.
func (f Fact) SourceIsVirtual() bool {
	return f.Provenance == FromTag || f.Provenance == FromAdvancement
}

// Label is the edge annotation: the preceding command text followed by the
// schedule delay, if any.
func (f Fact) Label() string {
	return strings.TrimSpace(f.PrecedingLabel + " " + f.ScheduleDelay)
}
