// SPDX-License-Identifier: MPL-2.0

package callgraph

import (
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorFunc returns a fresh color token for an edge.
type ColorFunc func() string

// PastelColor returns a random light color as "#rrggbb", readable on the dark
// background the renderer uses.
func PastelColor() string {
	return colorful.Hsv(rand.Float64()*360, 0.25+rand.Float64()*0.25, 0.9+rand.Float64()*0.1).Clamped().Hex()
}

// FixedColor returns a ColorFunc that always yields c.
func FixedColor(c string) ColorFunc {
	return func() string { return c }
}
