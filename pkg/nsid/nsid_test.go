// SPDX-License-Identifier: MPL-2.0

package nsid

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  string
		depth int
		want  ID
	}{
		{"top-level function", "data/mypack/functions/tick.mcfunction", FunctionDepth, "mypack:tick"},
		{"nested function", "data/mypack/functions/util/math/abs.mcfunction", FunctionDepth, "mypack:util/math/abs"},
		{"singular function dir", "data/mypack/function/load.mcfunction", FunctionDepth, "mypack:load"},
		{"tag", "data/ns/tags/functions/mytag.json", TagDepth, "ns:mytag"},
		{"nested tag", "data/minecraft/tags/functions/hooks/load.json", TagDepth, "minecraft:hooks/load"},
		{"advancement", "data/ns/advancements/join/first.json", AdvancementDepth, "ns:join/first"},
		{"windows separators", `data\ns\functions\a\b.mcfunction`, FunctionDepth, "ns:a/b"},
		{"leading dot slash", "./data/ns/functions/a.mcfunction", FunctionDepth, "ns:a"},
		{"no extension", "data/ns/functions/a", FunctionDepth, "ns:a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tt.path, tt.depth)
			if err != nil {
				t.Fatalf("Normalize(%q, %d) unexpected error: %v", tt.path, tt.depth, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q, %d) = %q, want %q", tt.path, tt.depth, got, tt.want)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("normalized id %q does not validate: %v", got, err)
			}
		})
	}
}

func TestNormalize_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  string
		depth int
	}{
		{"too shallow", "data/ns/functions", FunctionDepth},
		{"empty path", "", FunctionDepth},
		{"tag at function depth boundary", "data/ns/tags/functions", TagDepth},
		{"empty namespace", "data//functions/a.mcfunction", FunctionDepth},
		{"extension only", "data/ns/functions/.mcfunction", FunctionDepth},
		{"depth at namespace", "data/ns/a.mcfunction", NamespaceIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Normalize(tt.path, tt.depth)
			if err == nil {
				t.Fatalf("Normalize(%q, %d) returned nil, want error", tt.path, tt.depth)
			}
			if !errors.Is(err, ErrMalformedPath) {
				t.Errorf("error should wrap ErrMalformedPath, got: %v", err)
			}
			var mpErr *MalformedPathError
			if !errors.As(err, &mpErr) {
				t.Fatalf("error should be *MalformedPathError, got: %T", err)
			}
			if mpErr.Path != tt.path {
				t.Errorf("MalformedPathError.Path = %q, want %q", mpErr.Path, tt.path)
			}
		})
	}
}

func TestNormalize_RoundTrip(t *testing.T) {
	t.Parallel()

	paths := []string{
		"data/a/functions/b.mcfunction",
		"data/a/functions/b/c/d.mcfunction",
		"data/a.b/functions/x-y_z.mcfunction",
	}
	for _, p := range paths {
		id, err := Normalize(p, FunctionDepth)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", p, err)
		}
		ns, path, ok := strings.Cut(string(id), ":")
		if !ok || ns == "" || path == "" {
			t.Errorf("id %q does not split into namespace and path", id)
		}
		if strings.HasSuffix(path, FunctionExt) {
			t.Errorf("id %q still carries %s", id, FunctionExt)
		}
	}
}

func TestTagRef(t *testing.T) {
	t.Parallel()

	if got := TagRef("ns:mytag"); got != "#ns:mytag" {
		t.Errorf("TagRef() = %q, want %q", got, "#ns:mytag")
	}
	if got := TagRef("#ns:mytag"); got != "#ns:mytag" {
		t.Errorf("TagRef() on tag ref = %q, want unchanged", got)
	}
	if !IsTagRef("#ns:x") || IsTagRef("ns:x") {
		t.Error("IsTagRef() misclassified input")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, ns, path string
	}{
		{"ns:a/b", "ns", "a/b"},
		{"#ns:tag", "ns", "tag"},
		{"bare", "minecraft", "bare"},
	}
	for _, tt := range tests {
		ns, path := Parse(tt.in)
		if ns != tt.ns || path != tt.path {
			t.Errorf("Parse(%q) = (%q, %q), want (%q, %q)", tt.in, ns, path, tt.ns, tt.path)
		}
	}

	id := ID("ns:a/b")
	if id.Namespace() != "ns" || id.Path() != "a/b" {
		t.Errorf("ID accessors = (%q, %q)", id.Namespace(), id.Path())
	}
}

func TestID_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      ID
		wantErr bool
	}{
		{"valid", "ns:a/b", false},
		{"valid tag", "#ns:tag", false},
		{"missing separator", "nsab", true},
		{"empty namespace", ":a", true},
		{"empty path", "ns:", true},
		{"function extension", "ns:a.mcfunction", true},
		{"json extension", "ns:a.json", true},
		{"backslash", `ns:a\b`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ID(%q).Validate() error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidID) {
				t.Errorf("error should wrap ErrInvalidID, got: %v", err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want ID
	}{
		{"ns:a/b", "ns:a/b"},
		{"tick", "minecraft:tick"},
		{"util/greet", "minecraft:util/greet"},
		{"#hooks", "#minecraft:hooks"},
		{"#ns:hooks", "#ns:hooks"},
		{"", ""},
		{"#", "#"},
	}
	for _, tt := range tests {
		if got := Resolve(tt.in); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
