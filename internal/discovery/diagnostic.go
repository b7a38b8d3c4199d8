// SPDX-License-Identifier: MPL-2.0

package discovery

import "fmt"

const (
	// SeverityWarning indicates a recoverable diagnostic.
	SeverityWarning Severity = "warning"
	// SeverityError indicates an artifact that was skipped.
	SeverityError Severity = "error"
)

// Diagnostic codes emitted by discovery and extraction.
const (
	CodeNoDataDir          = "no_data_dir"
	CodeWalkFailed         = "walk_failed"
	CodeMalformedPath      = "malformed_path"
	CodeReadFailed         = "read_failed"
	CodeInvalidTag         = "invalid_tag"
	CodeInvalidAdvancement = "invalid_advancement"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic represents a structured, non-fatal problem that is returned to
	// callers (rather than written to stderr) so every package's problems can be
	// reported together after its pass completes.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "invalid_tag").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file path associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)

// NewError builds an error-severity diagnostic for an artifact that could not
// be processed.
func NewError(code, path string, cause error) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  cause.Error(),
		Path:     path,
		Cause:    cause,
	}
}

// String renders the diagnostic on one line.
func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Code, d.Path, d.Message)
}
