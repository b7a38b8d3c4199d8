// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"strings"

	"github.com/packmap/packmap/pkg/nsid"
)

const (
	functionKeyword = "function"
	scheduleKeyword = "schedule"
	commentPrefix   = "#"
	macroPrefix     = '$'
)

// commandWords are the words after which "function" starts a call: "run"
// (execute/return chains), "if"/"unless" (execute conditions) and "schedule".
var commandWords = map[string]bool{
	"run":           true,
	"if":            true,
	"unless":        true,
	scheduleKeyword: true,
}

// labelNoise are connective tokens removed from the preceding label.
var labelNoise = map[string]bool{
	"execute": true,
	"run":     true,
}

// Invocation is a call parsed from a single script line.
type Invocation struct {
	Target         nsid.ID
	TargetIsTag    bool
	Scheduled      bool
	ScheduleDelay  string
	PrecedingLabel string
}

// ParseLine extracts the first invocation on line. It reports false for blank
// lines, full-line comments and lines without a call.
//
// A "function" keyword counts only in command position (line start, macro
// line start, or after run/if/unless/schedule) and only outside a brace
// block: if a '}' follows before any '{', the word is part of an NBT literal.
func ParseLine(line string) (Invocation, bool) {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, commentPrefix) {
		return Invocation{}, false
	}

	for offset := 0; offset < len(s); {
		i := strings.Index(s[offset:], functionKeyword)
		if i < 0 {
			return Invocation{}, false
		}
		start := offset + i
		offset = start + len(functionKeyword)

		if !inCommandPosition(s, start) || insideBraces(s[offset:]) {
			continue
		}
		rest, ok := strings.CutPrefix(s[offset:], " ")
		if !ok {
			continue
		}
		target, tail := scanTarget(rest)
		if target == "" {
			continue
		}

		inv := Invocation{
			Target:      nsid.Resolve(target),
			TargetIsTag: nsid.IsTagRef(target),
		}
		prefix := s[:start]
		if before, found := strings.CutSuffix(prefix, scheduleKeyword+" "); found && atWordStart(prefix, len(before)) {
			inv.Scheduled = true
			inv.ScheduleDelay = scanDelay(tail)
			prefix = before
		}
		inv.PrecedingLabel = cleanLabel(prefix)
		return inv, true
	}
	return Invocation{}, false
}

// inCommandPosition reports whether the word starting at i begins a command.
func inCommandPosition(s string, i int) bool {
	if !atWordStart(s, i) {
		return false
	}
	before := strings.TrimRight(s[:i], " \t")
	if before == "" || before == string(macroPrefix) {
		return true
	}
	fields := strings.Fields(before)
	last := strings.TrimPrefix(fields[len(fields)-1], string(macroPrefix))
	return commandWords[last]
}

func atWordStart(s string, i int) bool {
	if i == 0 {
		return true
	}
	switch s[i-1] {
	case ' ', '\t', macroPrefix:
		return true
	}
	return false
}

// insideBraces reports whether a closing brace is reached before an opening one.
func insideBraces(rest string) bool {
	i := strings.IndexAny(rest, "{}")
	return i >= 0 && rest[i] == '}'
}

// scanTarget reads an identifier token, optionally prefixed with '#'. A token
// without a path after the namespace separator (e.g. a macro "ns:$(x)") is
// rejected.
func scanTarget(s string) (target, tail string) {
	n := 0
	if strings.HasPrefix(s, commentPrefix) {
		n = 1
	}
	for n < len(s) && isIDChar(s[n]) {
		n++
	}
	target = s[:n]
	if target == commentPrefix || strings.HasSuffix(target, ":") {
		return "", s
	}
	return target, s[n:]
}

func isIDChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '_', '-', '.', '+', ':', '/':
		return true
	}
	return false
}

// scanDelay reads a " <number>[t|s|d]" suffix.
func scanDelay(tail string) string {
	rest, ok := strings.CutPrefix(tail, " ")
	if !ok {
		return ""
	}
	n := 0
	for n < len(rest) && (rest[n] >= '0' && rest[n] <= '9' || rest[n] == '.') {
		n++
	}
	if n == 0 {
		return ""
	}
	if n < len(rest) && strings.IndexByte("tsd", rest[n]) >= 0 {
		n++
	}
	if n < len(rest) && rest[n] != ' ' {
		return ""
	}
	return rest[:n]
}

func cleanLabel(prefix string) string {
	fields := strings.Fields(prefix)
	kept := fields[:0]
	for _, f := range fields {
		if !labelNoise[strings.TrimPrefix(f, string(macroPrefix))] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}
