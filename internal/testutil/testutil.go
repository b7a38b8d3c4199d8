// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// SampleDatapack is a small datapack exercising every artifact kind: direct
// and scheduled calls, execute prefixes, a braced data literal, comments, a
// tag group and an advancement reward.
var SampleDatapack = map[string]string{
	"pack.mcmeta": `{"pack": {"pack_format": 15, "description": "sample"}}`,
	"data/demo/functions/load.mcfunction": `# load hook, calls function demo:never
scoreboard objectives add ticks dummy
function demo:util/setup
schedule function demo:tick 5t
`,
	"data/demo/functions/tick.mcfunction": `execute as @a[tag=ready] run function demo:util/greet
data modify storage demo:tmp value set value {function:"demo:fake"}
function #demo:hooks
`,
	"data/demo/functions/util/setup.mcfunction": `tellraw @a "setup"
`,
	"data/demo/functions/util/greet.mcfunction": `say hi
`,
	"data/demo/tags/functions/hooks.json":  `{"values": ["demo:util/greet", "demo:util/setup"]}`,
	"data/minecraft/tags/functions/load.json": `{"values": ["demo:load"]}`,
	"data/demo/advancements/first_join.json": `{"criteria": {}, "rewards": {"function": "demo:util/greet"}}`,
	"data/demo/advancements/plain.json":      `{"criteria": {}}`,
}

// WriteDatapack creates a datapack named name under a fresh temporary
// directory and returns its root. Keys of files are slash-separated paths
// relative to the datapack root.
func WriteDatapack(t testing.TB, name string, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("failed to create datapack root %s: %v", root, err)
	}
	for _, rel := range slices.Sorted(maps.Keys(files)) {
		MustWriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), files[rel])
	}
	return root
}

// MustWriteFile writes content to path, creating parent directories.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustRemove deletes path.
func MustRemove(t testing.TB, path string) {
	t.Helper()
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove %s: %v", path, err)
	}
}
