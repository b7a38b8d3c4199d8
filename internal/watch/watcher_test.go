// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/packmap/packmap/internal/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// startWatcher runs w until the test ends and returns a stop func that
// cancels it and checks the Run result.
func startWatcher(t *testing.T, w *Watcher) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			cancel()
			if err := <-errCh; err != nil {
				t.Errorf("Run() error = %v", err)
			}
		})
	}
	t.Cleanup(stop)
	return stop
}

func waitChange(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func TestWatcher_DebouncesArtifactChanges(t *testing.T) {
	t.Parallel()
	root := testutil.WriteDatapack(t, "demo", testutil.SampleDatapack)

	changes := make(chan Change, 10)
	w, err := New(Config{
		Roots:    []string{root},
		Debounce: 100 * time.Millisecond,
		Logger:   discard,
		OnChange: func(_ context.Context, c Change) error {
			changes <- c
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	fnDir := filepath.Join(root, "data", "demo", "functions")
	for _, name := range []string{"load.mcfunction", "tick.mcfunction", "extra.mcfunction"} {
		testutil.MustWriteFile(t, filepath.Join(fnDir, name), "say changed\n")
		time.Sleep(10 * time.Millisecond)
	}

	c := waitChange(t, changes)
	time.Sleep(200 * time.Millisecond)
	stop()

	if len(changes) != 0 {
		t.Errorf("expected one coalesced callback, got %d extra", len(changes))
	}
	if !slices.Equal(c.Roots, w.Roots()) {
		t.Errorf("Roots = %v, want %v", c.Roots, w.Roots())
	}
	for _, name := range []string{"load.mcfunction", "tick.mcfunction", "extra.mcfunction"} {
		if !slices.Contains(c.Paths, filepath.Join(fnDir, name)) {
			t.Errorf("missing %s in %v", name, c.Paths)
		}
	}
	if !slices.IsSorted(c.Paths) {
		t.Errorf("Paths not sorted: %v", c.Paths)
	}
}

func TestWatcher_IgnoresNonArtifacts(t *testing.T) {
	t.Parallel()
	root := testutil.WriteDatapack(t, "demo", testutil.SampleDatapack)

	changes := make(chan Change, 10)
	w, err := New(Config{
		Roots:    []string{root},
		Debounce: 50 * time.Millisecond,
		Logger:   discard,
		OnChange: func(_ context.Context, c Change) error {
			changes <- c
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	testutil.MustWriteFile(t, filepath.Join(root, "README.md"), "notes")
	testutil.MustWriteFile(t, filepath.Join(root, "data", "demo", "functions", "load.mcfunction.swp"), "x")
	testutil.MustWriteFile(t, filepath.Join(root, "data", "demo", "loot_tables", "a.json"), "{}")

	time.Sleep(300 * time.Millisecond)
	stop()

	if len(changes) != 0 {
		t.Errorf("unexpected callback: %+v", <-changes)
	}
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	t.Parallel()
	root := testutil.WriteDatapack(t, "demo", testutil.SampleDatapack)

	changes := make(chan Change, 10)
	w, err := New(Config{
		Roots:    []string{root},
		Debounce: 100 * time.Millisecond,
		Logger:   discard,
		OnChange: func(_ context.Context, c Change) error {
			changes <- c
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	startWatcher(t, w)

	sub := filepath.Join(root, "data", "demo", "functions", "newdir")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Let the create event register the directory before writing into it.
	time.Sleep(200 * time.Millisecond)
	target := filepath.Join(sub, "fresh.mcfunction")
	testutil.MustWriteFile(t, target, "say new\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changes:
			if slices.Contains(c.Paths, target) {
				return
			}
		case <-deadline:
			t.Fatal("no change reported for file in new directory")
		}
	}
}

func TestWatcher_MultipleRoots(t *testing.T) {
	t.Parallel()
	alpha := testutil.WriteDatapack(t, "alpha", testutil.SampleDatapack)
	beta := testutil.WriteDatapack(t, "beta", testutil.SampleDatapack)

	changes := make(chan Change, 10)
	w, err := New(Config{
		Roots:    []string{alpha, beta},
		Debounce: 100 * time.Millisecond,
		Logger:   discard,
		OnChange: func(_ context.Context, c Change) error {
			changes <- c
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	startWatcher(t, w)

	testutil.MustWriteFile(t, filepath.Join(beta, "data", "demo", "tags", "functions", "hooks.json"), `{"values": []}`)

	c := waitChange(t, changes)
	if len(c.Roots) != 1 || filepath.Base(c.Roots[0]) != "beta" {
		t.Errorf("Roots = %v, want only beta", c.Roots)
	}
}

func TestWatcher_SkipIfBusy(t *testing.T) {
	t.Parallel()
	root := testutil.WriteDatapack(t, "demo", testutil.SampleDatapack)

	var (
		mu      sync.Mutex
		calls   int
		active  int
		overlap bool
	)
	firstDone := make(chan struct{})

	w, err := New(Config{
		Roots:    []string{root},
		Debounce: 50 * time.Millisecond,
		Logger:   discard,
		OnChange: func(_ context.Context, _ Change) error {
			mu.Lock()
			calls++
			n := calls
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()

			if n == 1 {
				time.Sleep(300 * time.Millisecond)
				close(firstDone)
			}

			mu.Lock()
			active--
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	fn := filepath.Join(root, "data", "demo", "functions")
	testutil.MustWriteFile(t, filepath.Join(fn, "one.mcfunction"), "say 1\n")
	time.Sleep(100 * time.Millisecond)
	testutil.MustWriteFile(t, filepath.Join(fn, "two.mcfunction"), "say 2\n")

	select {
	case <-firstDone:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first callback")
	}
	time.Sleep(300 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	if overlap {
		t.Error("callbacks ran concurrently")
	}
	if calls < 2 {
		t.Errorf("deferred batch was lost: %d calls", calls)
	}
}

func TestWatcher_ClearScreen(t *testing.T) {
	t.Parallel()
	root := testutil.WriteDatapack(t, "demo", testutil.SampleDatapack)

	var (
		mu  sync.Mutex
		out bytes.Buffer
	)
	done := make(chan struct{}, 1)
	w, err := New(Config{
		Roots:       []string{root},
		Debounce:    50 * time.Millisecond,
		ClearScreen: true,
		Stdout:      lockedWriter{&mu, &out},
		Logger:      discard,
		OnChange: func(context.Context, Change) error {
			done <- struct{}{}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	startWatcher(t, w)

	testutil.MustWriteFile(t, filepath.Join(root, "data", "demo", "advancements", "new.json"), "{}")
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(out.String(), "\033[2J\033[H") {
		t.Errorf("clear sequence not written, got %q", out.String())
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	if _, err := New(Config{}); !errors.Is(err, ErrNoRoots) {
		t.Errorf("New(no roots) error = %v, want ErrNoRoots", err)
	}
	if _, err := New(Config{Roots: []string{root}, Patterns: []string{"[bad"}, Logger: discard}); err == nil {
		t.Error("New() should reject an invalid watch pattern")
	}
	if _, err := New(Config{Roots: []string{root}, Ignore: []string{"{unclosed"}, Logger: discard}); err == nil {
		t.Error("New() should reject an invalid ignore pattern")
	}
	if _, err := New(Config{Roots: []string{filepath.Join(root, "absent")}, Logger: discard}); err == nil {
		t.Error("New() should fail for a missing root")
	}
}

func TestWatcher_DoubleRun(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Roots: []string{t.TempDir()}, Logger: discard})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	startWatcher(t, w)
	time.Sleep(50 * time.Millisecond)

	if err := w.Run(t.Context()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Run() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestWatcher_Locate(t *testing.T) {
	t.Parallel()
	outer := t.TempDir()
	inner := filepath.Join(outer, "nested")
	if err := os.Mkdir(inner, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(Config{Roots: []string{outer, inner}, Logger: discard})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.fsw.Close() })

	root, rel, ok := w.locate(filepath.Join(inner, "data", "x.json"))
	if !ok || root != w.roots[1] || rel != "data/x.json" {
		t.Errorf("locate() = %q, %q, %v", root, rel, ok)
	}
	if _, _, ok := w.locate(filepath.Join(filepath.Dir(outer), "elsewhere")); ok {
		t.Error("locate() matched a path outside every root")
	}
}

func TestDefaultPatternsAndIgnores(t *testing.T) {
	t.Parallel()

	w := &Watcher{patterns: DefaultPatterns(), ignores: DefaultIgnores()}
	tests := []struct {
		rel     string
		match   bool
		ignored bool
	}{
		{"data/ns/functions/a/b.mcfunction", true, false},
		{"data/ns/function/b.mcfunction", true, false},
		{"data/ns/tags/functions/load.json", true, false},
		{"data/ns/advancement/x.json", true, false},
		{"data/ns/recipes/x.json", false, false},
		{"pack.mcmeta", false, false},
		{".git/HEAD", false, true},
		{"data/ns/functions/a.mcfunction.swp", false, true},
	}
	for _, tt := range tests {
		if got := w.matchesPatterns(tt.rel); got != tt.match {
			t.Errorf("matchesPatterns(%q) = %v, want %v", tt.rel, got, tt.match)
		}
		if got := w.isIgnored(tt.rel); got != tt.ignored {
			t.Errorf("isIgnored(%q) = %v, want %v", tt.rel, got, tt.ignored)
		}
	}

	// DefaultIgnores returns a copy.
	ig := DefaultIgnores()
	ig[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() leaked internal slice")
	}
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
