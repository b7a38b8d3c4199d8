// SPDX-License-Identifier: MPL-2.0

package render

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// FormatDOT is the DOT source of the graph.
	FormatDOT Format = "dot"
	// FormatJSON is the JSON document of the graph.
	FormatJSON Format = "json"
	// FormatSQLite appends the graph to a SQLite database.
	FormatSQLite Format = "sqlite"
	// FormatJPEG is a Graphviz-rendered JPEG image.
	FormatJPEG Format = "jpeg"
	// FormatPNG is a Graphviz-rendered PNG image.
	FormatPNG Format = "png"
	// FormatSVG is a Graphviz-rendered SVG image.
	FormatSVG Format = "svg"
)

// ErrUnknownFormat is the sentinel error wrapped by UnknownFormatError.
var ErrUnknownFormat = errors.New("unknown output format")

type (
	// Format is an output format name.
	Format string

	// UnknownFormatError is returned when a format name is not recognized.
	UnknownFormatError struct {
		Value string
	}
)

// Error implements the error interface for UnknownFormatError.
func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown output format %q (expected one of %s)", e.Value, strings.Join(FormatNames(), ", "))
}

// Unwrap returns ErrUnknownFormat for errors.Is() compatibility.
func (e *UnknownFormatError) Unwrap() error { return ErrUnknownFormat }

// AllFormats returns every supported format.
func AllFormats() []Format {
	return []Format{FormatDOT, FormatJSON, FormatSQLite, FormatJPEG, FormatPNG, FormatSVG}
}

// FormatNames returns the names of every supported format.
func FormatNames() []string {
	all := AllFormats()
	names := make([]string, len(all))
	for i, f := range all {
		names[i] = string(f)
	}
	return names
}

// ParseFormats parses and deduplicates format names, keeping their order.
func ParseFormats(names []string) ([]Format, error) {
	var out []Format
	for _, name := range names {
		f := Format(strings.ToLower(strings.TrimSpace(name)))
		if f == "" {
			continue
		}
		if !slices.Contains(AllFormats(), f) {
			return nil, &UnknownFormatError{Value: name}
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// IsImage reports whether the format needs an external layout engine.
func (f Format) IsImage() bool {
	switch f {
	case FormatJPEG, FormatPNG, FormatSVG:
		return true
	default:
		return false
	}
}

// Ext returns the file extension for the format, without a dot.
func (f Format) Ext() string {
	if f == FormatSQLite {
		return "db"
	}
	return string(f)
}

// String returns the string representation of the Format.
func (f Format) String() string { return string(f) }
