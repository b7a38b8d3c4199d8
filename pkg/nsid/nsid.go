// SPDX-License-Identifier: MPL-2.0

package nsid

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// NamespaceIndex is the segment index of the namespace in a package-relative
	// path (segment 0 is always "data").
	NamespaceIndex = 1

	// FunctionDepth is the first path segment of data/<ns>/functions/...
	FunctionDepth = 3
	// TagDepth is the first path segment of data/<ns>/tags/functions/...
	TagDepth = 4
	// AdvancementDepth is the first path segment of data/<ns>/advancements/...
	AdvancementDepth = 3

	// FunctionExt is the file extension of command scripts.
	FunctionExt = ".mcfunction"
	// JSONExt is the file extension of tag and advancement files.
	JSONExt = ".json"

	// TagPrefix marks an identifier as a reference to a function tag.
	TagPrefix = "#"

	separator = ":"
)

var (
	// ErrMalformedPath is the sentinel error wrapped by MalformedPathError.
	ErrMalformedPath = errors.New("malformed datapack path")
	// ErrInvalidID is the sentinel error wrapped by InvalidIDError.
	ErrInvalidID = errors.New("invalid namespaced id")
)

type (
	// ID is a namespaced identifier such as "mypack:util/tick".
	// It never carries a file extension and always uses forward slashes.
	ID string

	// MalformedPathError is returned when a path has too few segments for the
	// requested depth, or when the namespace or path part would be empty.
	MalformedPathError struct {
		Path   string
		Depth  int
		Reason string
	}

	// InvalidIDError is returned by ID.Validate.
	InvalidIDError struct {
		Value  ID
		Reason string
	}
)

// Normalize converts a package-relative path into an ID. depth is the index of
// the first segment that belongs to the identifier's path part; see
// FunctionDepth, TagDepth and AdvancementDepth. Both '/' and '\' are accepted as
// separators so Windows-style paths normalize identically.
func Normalize(relPath string, depth int) (ID, error) {
	parts := splitPath(relPath)
	if depth <= NamespaceIndex || len(parts) <= depth {
		return "", &MalformedPathError{
			Path:   relPath,
			Depth:  depth,
			Reason: fmt.Sprintf("expected more than %d segments, got %d", depth, len(parts)),
		}
	}

	namespace := parts[NamespaceIndex]
	if namespace == "" {
		return "", &MalformedPathError{Path: relPath, Depth: depth, Reason: "empty namespace"}
	}

	segments := parts[depth:]
	last := len(segments) - 1
	segments[last] = stripExt(segments[last])
	for _, s := range segments {
		if s == "" {
			return "", &MalformedPathError{Path: relPath, Depth: depth, Reason: "empty path segment"}
		}
	}

	return ID(namespace + separator + strings.Join(segments, "/")), nil
}

// TagRef returns the virtual "#ns:path" form used for tag-group nodes.
func TagRef(id ID) ID {
	if strings.HasPrefix(string(id), TagPrefix) {
		return id
	}
	return ID(TagPrefix + string(id))
}

// IsTagRef reports whether s references a function tag.
func IsTagRef(s string) bool {
	return strings.HasPrefix(s, TagPrefix)
}

// Parse splits an identifier into namespace and path. A leading tag prefix is
// dropped. An identifier without a namespace uses the implicit "minecraft"
// namespace, matching how the game resolves bare names.
func Parse(s string) (namespace, path string) {
	s = strings.TrimPrefix(s, TagPrefix)
	namespace, path, found := strings.Cut(s, separator)
	if !found {
		return "minecraft", s
	}
	return namespace, path
}

// Resolve returns s as a fully qualified ID, adding the implicit "minecraft"
// namespace to bare names. A leading tag prefix is kept.
func Resolve(s string) ID {
	ref := strings.TrimPrefix(s, TagPrefix)
	if ref == "" || strings.Contains(ref, separator) {
		return ID(s)
	}
	namespace, path := Parse(ref)
	id := ID(namespace + separator + path)
	if IsTagRef(s) {
		return TagRef(id)
	}
	return id
}

// String returns the string representation of the ID.
func (id ID) String() string { return string(id) }

// Namespace returns the namespace part of the ID.
func (id ID) Namespace() string {
	ns, _ := Parse(string(id))
	return ns
}

// Path returns the path part of the ID.
func (id ID) Path() string {
	_, p := Parse(string(id))
	return p
}

// Validate checks that the ID has a non-empty namespace and path and that the
// path does not end with a source file extension.
func (id ID) Validate() error {
	s := strings.TrimPrefix(string(id), TagPrefix)
	namespace, path, found := strings.Cut(s, separator)
	switch {
	case !found:
		return &InvalidIDError{Value: id, Reason: "missing namespace separator"}
	case namespace == "":
		return &InvalidIDError{Value: id, Reason: "empty namespace"}
	case path == "":
		return &InvalidIDError{Value: id, Reason: "empty path"}
	case strings.HasSuffix(path, FunctionExt), strings.HasSuffix(path, JSONExt):
		return &InvalidIDError{Value: id, Reason: "path carries a file extension"}
	case strings.Contains(path, `\`):
		return &InvalidIDError{Value: id, Reason: "path uses backslash separators"}
	}
	return nil
}

// Error implements the error interface for MalformedPathError.
func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("malformed datapack path %q (depth %d): %s", e.Path, e.Depth, e.Reason)
}

// Unwrap returns ErrMalformedPath for errors.Is() compatibility.
func (e *MalformedPathError) Unwrap() error { return ErrMalformedPath }

// Error implements the error interface for InvalidIDError.
func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid namespaced id %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidID for errors.Is() compatibility.
func (e *InvalidIDError) Unwrap() error { return ErrInvalidID }

func splitPath(p string) []string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func stripExt(name string) string {
	for _, ext := range []string{FunctionExt, JSONExt} {
		if trimmed, ok := strings.CutSuffix(name, ext); ok {
			return trimmed
		}
	}
	return name
}
