// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/packmap/packmap/internal/render"
	"github.com/packmap/packmap/internal/testutil"
)

func waitForFile(t *testing.T, path, substr string, done <-chan struct{}) {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		if data, err := os.ReadFile(path); err == nil && strings.Contains(string(data), substr) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %q in %s", substr, path)
		case <-done:
			t.Fatalf("command exited while waiting for %q in %s", substr, path)
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestWatch_RemapsOnChange(t *testing.T) {
	t.Parallel()

	root := testutil.WriteDatapack(t, "demo", testutil.SampleDatapack)
	outDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.cue")
	testutil.MustWriteFile(t, cfgPath, `watch: debounce: "50ms"`)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	done := make(chan struct{})
	var (
		stdout, stderr string
		runErr         error
	)
	go func() {
		defer close(done)
		stdout, stderr, runErr = runCLI(ctx, t, &fakeRenderer{},
			"--config", cfgPath, "watch", root, "--output-dir", outDir, "--format", "json")
	}()

	jsonPath := filepath.Join(outDir, "demo.json")
	waitForFile(t, jsonPath, "demo:util/greet", done)
	// The watcher registers its directories after the first pass.
	time.Sleep(200 * time.Millisecond)

	testutil.MustWriteFile(t, filepath.Join(root, "data", "demo", "functions", "extra.mcfunction"), "function demo:util/setup\n")
	waitForFile(t, jsonPath, "demo:extra", done)

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
	if runErr != nil {
		t.Fatalf("watch error = %v\nstderr: %s", runErr, stderr)
	}
	if !strings.Contains(stdout, "Re-mapping") {
		t.Errorf("stdout missing re-map notice:\n%s", stdout)
	}
}

func TestWatch_MissingDatapack(t *testing.T) {
	t.Parallel()

	_, stderr, err := runCLI(t.Context(), t, render.Graphviz{}, "watch", filepath.Join(t.TempDir(), "nope"))
	requireExitCode(t, err, 1)
	if !strings.Contains(stderr, "failed to read datapacks") {
		t.Errorf("stderr = %s", stderr)
	}
}
