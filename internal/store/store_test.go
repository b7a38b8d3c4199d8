// SPDX-License-Identifier: MPL-2.0

package store

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/packmap/packmap/internal/callgraph"
	"github.com/packmap/packmap/internal/extract"
	"github.com/packmap/packmap/pkg/nsid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", DefaultFileName))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testGraph() *callgraph.Graph {
	g := callgraph.New()
	g.AddNode("#ns:hooks", callgraph.Virtual)
	g.AddEdge(callgraph.Edge{From: "#ns:hooks", To: "ns:main", Provenance: extract.FromTag, Color: "#abcdef"})
	g.AddEdge(callgraph.Edge{From: "ns:main", To: "ns:helper", Provenance: extract.FromScript, Label: "5t", Scheduled: true})
	g.AddEdge(callgraph.Edge{From: "ns:main", To: "ns:helper", Provenance: extract.FromScript})
	g.AddNode("ns:lonely", callgraph.Plain)
	return g
}

func TestStore_SaveAndLoad(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := t.Context()

	want := testGraph()
	if err := s.SaveGraph(ctx, "demo", want); err != nil {
		t.Fatalf("SaveGraph() error = %v", err)
	}

	got, err := s.LoadGraph(ctx, "demo")
	if err != nil {
		t.Fatalf("LoadGraph() error = %v", err)
	}
	if !slices.Equal(got.Nodes(), want.Nodes()) {
		t.Errorf("nodes = %v, want %v", got.Nodes(), want.Nodes())
	}
	if !slices.Equal(got.Edges(), want.Edges()) {
		t.Errorf("edges = %v, want %v", got.Edges(), want.Edges())
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := t.Context()

	if err := s.SaveGraph(ctx, "demo", testGraph()); err != nil {
		t.Fatal(err)
	}
	small := callgraph.New()
	small.AddEdge(callgraph.Edge{From: "ns:a", To: "ns:b"})
	if err := s.SaveGraph(ctx, "demo", small); err != nil {
		t.Fatalf("second SaveGraph() error = %v", err)
	}
	if err := s.SaveGraph(ctx, "other", testGraph()); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadGraph(ctx, "demo")
	if err != nil {
		t.Fatal(err)
	}
	if got.Order() != 2 || got.Size() != 1 {
		t.Errorf("Order/Size = %d/%d, want 2/1", got.Order(), got.Size())
	}

	infos, err := s.Graphs(ctx)
	if err != nil {
		t.Fatalf("Graphs() error = %v", err)
	}
	if len(infos) != 2 || infos[0].Name != "demo" || infos[1].Name != "other" {
		t.Fatalf("Graphs() = %+v", infos)
	}
	if infos[1].Nodes != 4 || infos[1].Edges != 3 {
		t.Errorf("other counts = %d/%d, want 4/3", infos[1].Nodes, infos[1].Edges)
	}
}

func TestStore_Callers(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := t.Context()

	g := testGraph()
	g.AddEdge(callgraph.Edge{From: "ns:lonely", To: "ns:helper"})
	if err := s.SaveGraph(ctx, "demo", g); err != nil {
		t.Fatal(err)
	}

	got, err := s.Callers(ctx, "demo", "ns:helper")
	if err != nil {
		t.Fatalf("Callers() error = %v", err)
	}
	if want := []nsid.ID{"ns:main", "ns:lonely"}; !slices.Equal(got, want) {
		t.Errorf("Callers() = %v, want %v", got, want)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	if _, err := s.LoadGraph(t.Context(), "absent"); !errors.Is(err, ErrGraphNotFound) {
		t.Errorf("LoadGraph() error = %v, want ErrGraphNotFound", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultFileName)

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveGraph(t.Context(), "demo", testGraph()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s2.Close() //nolint:errcheck // test cleanup

	if s2.Path() != path {
		t.Errorf("Path() = %q, want %q", s2.Path(), path)
	}
	if _, err := s2.LoadGraph(t.Context(), "demo"); err != nil {
		t.Errorf("LoadGraph() after reopen error = %v", err)
	}
}
