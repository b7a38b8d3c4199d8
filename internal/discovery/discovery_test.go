// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/packmap/packmap/internal/testutil"
)

func collect(t *testing.T, p *Package, kind Kind) []string {
	t.Helper()
	var rels []string
	for a, err := range p.Artifacts(kind) {
		if err != nil {
			t.Fatalf("Artifacts(%s) yielded error: %v", kind, err)
		}
		if a.Kind != kind {
			t.Errorf("artifact %s has kind %s, want %s", a.RelPath, a.Kind, kind)
		}
		if !filepath.IsAbs(a.Path) {
			t.Errorf("artifact path %q is not absolute", a.Path)
		}
		rels = append(rels, a.RelPath)
	}
	return rels
}

func TestDiscover_ArtifactSets(t *testing.T) {
	t.Parallel()

	root := testutil.WriteDatapack(t, "pack", map[string]string{
		"data/ns/functions/a.mcfunction":           "",
		"data/ns/functions/sub/b.mcfunction":       "",
		"data/ns/functions/notes.txt":              "",
		"data/new/function/c.mcfunction":           "",
		"data/ns/tags/functions/t.json":            "{}",
		"data/ns/tags/functions/nested/u.json":     "{}",
		"data/ns/tags/blocks/ignored.json":         "{}",
		"data/new/tags/function/v.json":            "{}",
		"data/ns/advancements/root.json":           "{}",
		"data/ns/advancements/deep/x.json":         "{}",
		"data/new/advancement/y.json":              "{}",
		"data/ns/loot_tables/not_an_artifact.json": "{}",
	})

	p, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if p.Name != "pack" {
		t.Errorf("Name = %q, want pack", p.Name)
	}
	if len(p.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", p.Diagnostics)
	}

	tests := []struct {
		kind Kind
		want []string
	}{
		{KindFunction, []string{"data/new/function/c.mcfunction", "data/ns/functions/a.mcfunction", "data/ns/functions/sub/b.mcfunction"}},
		{KindTag, []string{"data/new/tags/function/v.json", "data/ns/tags/functions/nested/u.json", "data/ns/tags/functions/t.json"}},
		{KindAdvancement, []string{"data/new/advancement/y.json", "data/ns/advancements/deep/x.json", "data/ns/advancements/root.json"}},
	}
	for _, tt := range tests {
		got := collect(t, p, tt.kind)
		slices.Sort(got)
		if !slices.Equal(got, tt.want) {
			t.Errorf("%s artifacts = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestDiscover_Restartable(t *testing.T) {
	t.Parallel()

	root := testutil.WriteDatapack(t, "pack", map[string]string{
		"data/ns/functions/a.mcfunction": "",
	})
	p, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	if got := collect(t, p, KindFunction); len(got) != 1 {
		t.Fatalf("first walk found %d files, want 1", len(got))
	}
	testutil.MustWriteFile(t, filepath.Join(root, "data", "ns", "functions", "b.mcfunction"), "")
	if got := collect(t, p, KindFunction); len(got) != 2 {
		t.Errorf("second walk found %d files, want 2", len(got))
	}
}

func TestDiscover_EarlyStop(t *testing.T) {
	t.Parallel()

	root := testutil.WriteDatapack(t, "pack", map[string]string{
		"data/ns/functions/a.mcfunction": "",
		"data/ns/functions/b.mcfunction": "",
		"data/ns/functions/c.mcfunction": "",
	})
	p, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	n := 0
	for _, err := range p.FunctionFiles() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d artifacts, want 2", n)
	}
}

func TestDiscover_NoDataDir(t *testing.T) {
	t.Parallel()

	root := testutil.WriteDatapack(t, "empty", map[string]string{"pack.mcmeta": "{}"})
	p, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if len(p.Diagnostics) != 1 || p.Diagnostics[0].Code != CodeNoDataDir {
		t.Errorf("Diagnostics = %v, want one %s warning", p.Diagnostics, CodeNoDataDir)
	}
	if got := collect(t, p, KindFunction); len(got) != 0 {
		t.Errorf("found %d functions in empty package", len(got))
	}
}

func TestDiscover_PackageNotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, root := range []string{filepath.Join(dir, "missing"), file} {
		_, err := Discover(root)
		if !errors.Is(err, ErrPackageNotFound) {
			t.Errorf("Discover(%q) error = %v, want ErrPackageNotFound", root, err)
		}
		var nfErr *PackageNotFoundError
		if !errors.As(err, &nfErr) || nfErr.Root != root {
			t.Errorf("Discover(%q) error should be *PackageNotFoundError for the root, got %#v", root, err)
		}
	}
}

func TestCheckPackages(t *testing.T) {
	t.Parallel()

	good := testutil.WriteDatapack(t, "good", testutil.SampleDatapack)
	if err := CheckPackages(good); err != nil {
		t.Errorf("CheckPackages(good) = %v, want nil", err)
	}

	missing := filepath.Join(t.TempDir(), "missing")
	err := CheckPackages(good, missing)
	if !errors.Is(err, ErrPackageNotFound) {
		t.Errorf("CheckPackages() = %v, want ErrPackageNotFound", err)
	}
}

func TestKind(t *testing.T) {
	t.Parallel()

	if KindFunction.String() != "function" || KindTag.String() != "tag" || KindAdvancement.String() != "advancement" {
		t.Error("unexpected kind names")
	}
	if Kind(99).String() != "unknown" || Kind(99).Pattern() != "" {
		t.Error("unknown kind should have no name or pattern")
	}
}

func TestDiagnostic_String(t *testing.T) {
	t.Parallel()

	d := NewError(CodeInvalidTag, "/p/t.json", errors.New("bad"))
	if got, want := d.String(), "error [invalid_tag] /p/t.json: bad"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	w := Diagnostic{Severity: SeverityWarning, Code: CodeNoDataDir, Message: "empty"}
	if got, want := w.String(), "warning [no_data_dir] empty"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
