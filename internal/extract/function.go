// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"bufio"
	"fmt"
	"io"

	"github.com/packmap/packmap/pkg/nsid"
)

// maxLineSize bounds a single script line; long tellraw JSON lines are the
// usual reason to exceed bufio's default.
const maxLineSize = 1 << 20

// ExtractFunction scans a command script and returns one fact per invocation
// line, in line order. A script without any invocation yields a single fact
// with an empty target so the function still appears as a node.
func ExtractFunction(r io.Reader, source nsid.ID, origin string) ([]Fact, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var facts []Fact
	for scanner.Scan() {
		inv, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		facts = append(facts, Fact{
			Provenance:     FromScript,
			Source:         source,
			Target:         inv.Target,
			TargetIsTag:    inv.TargetIsTag,
			Scheduled:      inv.Scheduled,
			ScheduleDelay:  inv.ScheduleDelay,
			PrecedingLabel: inv.PrecedingLabel,
			Origin:         origin,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", origin, err)
	}

	if len(facts) == 0 {
		facts = append(facts, Fact{Provenance: FromScript, Source: source, Origin: origin})
	}
	return facts, nil
}
