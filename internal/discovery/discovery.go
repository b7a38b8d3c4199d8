// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/packmap/packmap/pkg/nsid"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// KindFunction is a *.mcfunction command script.
	KindFunction Kind = iota
	// KindTag is a function tag JSON file.
	KindTag
	// KindAdvancement is an advancement JSON file.
	KindAdvancement
)

const (
	// DataDir is the directory under the package root holding namespaces.
	DataDir = "data"

	// Both the plural (pre-1.21) and singular directory names are matched.
	functionPattern    = "data/*/{functions,function}/**/*.mcfunction"
	tagPattern         = "data/*/tags/{functions,function}/**/*.json"
	advancementPattern = "data/*/{advancements,advancement}/**/*.json"
)

var (
	// ErrPackageNotFound is the sentinel error wrapped by PackageNotFoundError.
	ErrPackageNotFound = errors.New("datapack not found")

	errStopWalk = errors.New("stop walk")
)

type (
	// Kind identifies the artifact family a file belongs to.
	Kind int

	// PackageNotFoundError is returned when a datapack root does not exist or
	// is not a directory.
	PackageNotFoundError struct {
		Root  string
		Cause error
	}

	// Artifact is a single discovered source file.
	Artifact struct {
		// Kind is the artifact family.
		Kind Kind
		// Path is the absolute host path of the file.
		Path string
		// RelPath is the package-relative path using forward slashes.
		RelPath string
		// Package is the datapack's directory name.
		Package string
	}

	// Package is a validated datapack root.
	Package struct {
		// Root is the absolute path of the datapack directory.
		Root string
		// Name is the datapack's directory name.
		Name string
		// Diagnostics holds warnings produced while validating the root.
		Diagnostics []Diagnostic

		fsys fs.FS
	}
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindTag:
		return "tag"
	case KindAdvancement:
		return "advancement"
	default:
		return "unknown"
	}
}

// Pattern returns the doublestar pattern matching this kind, relative to the
// package root.
func (k Kind) Pattern() string {
	switch k {
	case KindFunction:
		return functionPattern
	case KindTag:
		return tagPattern
	case KindAdvancement:
		return advancementPattern
	default:
		return ""
	}
}

// Depth returns the nsid depth used to normalize paths of this kind.
func (k Kind) Depth() int {
	switch k {
	case KindTag:
		return nsid.TagDepth
	case KindAdvancement:
		return nsid.AdvancementDepth
	default:
		return nsid.FunctionDepth
	}
}

// Error implements the error interface for PackageNotFoundError.
func (e *PackageNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("datapack not found: %s: %v", e.Root, e.Cause)
	}
	return fmt.Sprintf("datapack not found: %s", e.Root)
}

// Unwrap returns ErrPackageNotFound for errors.Is() compatibility.
func (e *PackageNotFoundError) Unwrap() error { return ErrPackageNotFound }

// Discover validates root and returns a Package for it. A root without a data
// directory is a valid, empty package and carries a warning diagnostic.
func Discover(root string) (*Package, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &PackageNotFoundError{Root: root, Cause: err}
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, &PackageNotFoundError{Root: root, Cause: err}
	}
	if !info.IsDir() {
		return nil, &PackageNotFoundError{Root: root, Cause: errors.New("not a directory")}
	}

	p := &Package{
		Root: absRoot,
		Name: filepath.Base(absRoot),
		fsys: os.DirFS(absRoot),
	}

	if dataInfo, statErr := os.Stat(filepath.Join(absRoot, DataDir)); statErr != nil || !dataInfo.IsDir() {
		p.Diagnostics = append(p.Diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeNoDataDir,
			Message:  fmt.Sprintf("no %s directory found; the datapack contributes nothing", DataDir),
			Path:     absRoot,
		})
	}

	return p, nil
}

// CheckPackages verifies that every root exists and is a directory. All
// missing roots are reported together.
func CheckPackages(roots ...string) error {
	var errs []error
	for _, root := range roots {
		if _, err := Discover(root); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FunctionFiles yields every command script in the package.
func (p *Package) FunctionFiles() iter.Seq2[Artifact, error] {
	return p.Artifacts(KindFunction)
}

// TagFiles yields every function tag file in the package.
func (p *Package) TagFiles() iter.Seq2[Artifact, error] {
	return p.Artifacts(KindTag)
}

// AdvancementFiles yields every advancement file in the package.
func (p *Package) AdvancementFiles() iter.Seq2[Artifact, error] {
	return p.Artifacts(KindAdvancement)
}

// Artifacts yields every file of the given kind in lexical order. Each call
// walks the filesystem again. A walk failure is yielded once as an error after
// the artifacts found so far.
func (p *Package) Artifacts(kind Kind) iter.Seq2[Artifact, error] {
	return func(yield func(Artifact, error) bool) {
		err := doublestar.GlobWalk(p.fsys, kind.Pattern(), func(path string, d fs.DirEntry) error {
			if d.IsDir() {
				return nil
			}
			if !yield(p.artifact(kind, path), nil) {
				return errStopWalk
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopWalk) {
			yield(Artifact{Kind: kind}, fmt.Errorf("walk %s files in %s: %w", kind, p.Root, err))
		}
	}
}

func (p *Package) artifact(kind Kind, rel string) Artifact {
	return Artifact{
		Kind:    kind,
		Path:    filepath.Join(p.Root, filepath.FromSlash(rel)),
		RelPath: rel,
		Package: p.Name,
	}
}
