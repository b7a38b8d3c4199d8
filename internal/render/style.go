// SPDX-License-Identifier: MPL-2.0

package render

const (
	// DefaultBackground is the canvas color.
	DefaultBackground = "#262626"
	// DefaultNodeColor is the node outline color.
	DefaultNodeColor = "white"
	// DefaultFontColor is the node label color.
	DefaultFontColor = "#bfbfbf"
	// DefaultVirtualShape is the shape used for tag and advancement nodes.
	DefaultVirtualShape = "box"
)

// Style holds the global drawing options of a rendered graph.
type Style struct {
	Background       string
	NodeColor        string
	FontColor        string
	VirtualNodeShape string
	// Labels writes edge labels. Labelled graphs are scaled apart instead of
	// allowed to overlap.
	Labels bool
}

// DefaultStyle returns the dark theme used by default.
func DefaultStyle(labels bool) Style {
	return Style{
		Background:       DefaultBackground,
		NodeColor:        DefaultNodeColor,
		FontColor:        DefaultFontColor,
		VirtualNodeShape: DefaultVirtualShape,
		Labels:           labels,
	}
}

// Overlap returns the Graphviz overlap mode for the style.
func (s Style) Overlap() string {
	if s.Labels {
		return "scale"
	}
	return "false"
}

// withDefaults fills empty fields from DefaultStyle.
func (s Style) withDefaults() Style {
	d := DefaultStyle(s.Labels)
	if s.Background == "" {
		s.Background = d.Background
	}
	if s.NodeColor == "" {
		s.NodeColor = d.NodeColor
	}
	if s.FontColor == "" {
		s.FontColor = d.FontColor
	}
	if s.VirtualNodeShape == "" {
		s.VirtualNodeShape = d.VirtualNodeShape
	}
	return s
}
