// SPDX-License-Identifier: MPL-2.0

// Package watch re-maps datapacks when their sources change.
//
// Every datapack root is watched recursively. Events are filtered against
// artifact glob patterns relative to the root they fall under, then coalesced
// over a debounce window so one editor save triggers one callback naming every
// datapack that changed.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/packmap/packmap/internal/discovery"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 500 * time.Millisecond

var (
	// ErrNoRoots is returned by New when no datapack root is given.
	ErrNoRoots = errors.New("watch: no datapack roots")

	// ErrAlreadyStarted is returned when Run is called twice.
	ErrAlreadyStarted = errors.New("watch: Run called more than once")

	// defaultIgnores covers VCS metadata and editor scratch files.
	defaultIgnores = []string{
		"**/.git/**",
		".git/**",
		"**/*.swp",
		"**/*.swo",
		"**/*~",
		"**/.DS_Store",
		"**/*.tmp",
	}
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Roots are the datapack directories to watch.
		Roots []string

		// Patterns select which files, relative to their datapack root,
		// trigger a re-map. Empty means DefaultPatterns.
		Patterns []string

		// Ignore are extra patterns merged with the built-in ignores.
		Ignore []string

		// Debounce is the quiet period after the last event before OnChange
		// fires. Zero or negative means DefaultDebounce.
		Debounce time.Duration

		// ClearScreen writes an ANSI clear sequence to Stdout before each
		// callback.
		ClearScreen bool

		// OnChange receives the coalesced change set. Errors are logged and
		// watching continues.
		OnChange func(ctx context.Context, change Change) error

		// Stdout receives the clear sequence. nil means os.Stdout.
		Stdout io.Writer

		// Logger defaults to slog.Default().
		Logger *slog.Logger
	}

	// Change is one debounced batch of filesystem events.
	Change struct {
		// Roots are the affected datapack roots, in Config.Roots order.
		Roots []string
		// Paths are the changed files, absolute and sorted.
		Paths []string
	}

	// Watcher monitors datapack roots. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		roots    []string
		patterns []string
		ignores  []string
		stdout   io.Writer
		logger   *slog.Logger
		debounce time.Duration
		started  atomic.Bool
	}
)

// DefaultPatterns returns the artifact patterns of every discovery kind.
func DefaultPatterns() []string {
	return []string{
		discovery.KindFunction.Pattern(),
		discovery.KindTag.Pattern(),
		discovery.KindAdvancement.Pattern(),
	}
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

// New resolves the roots, validates the patterns and registers every
// non-ignored directory below each root.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Roots) == 0 {
		return nil, ErrNoRoots
	}

	roots := make([]string, 0, len(cfg.Roots))
	for _, r := range cfg.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve root %q: %w", r, err)
		}
		roots = append(roots, abs)
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	if err := validatePatterns(patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		roots:    roots,
		patterns: patterns,
		ignores:  append(DefaultIgnores(), cfg.Ignore...),
		stdout:   stdout,
		logger:   logger,
		debounce: debounce,
	}

	for _, root := range roots {
		if err := w.addTree(root, root); err != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				logger.Warn("close watcher after init failure", "error", closeErr)
			}
			return nil, err
		}
	}
	return w, nil
}

// Roots returns the absolute datapack roots being watched.
func (w *Watcher) Roots() []string { return slices.Clone(w.roots) }

// Run blocks until ctx is cancelled. It returns nil on cancellation and an
// error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire may run after cancellation via time.AfterFunc; a run still in
	// progress defers the batch by one debounce period.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("previous re-map still running, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		change := w.collect(pending)
		clear(pending)
		mu.Unlock()

		if w.cfg.ClearScreen {
			fmt.Fprint(w.stdout, "\033[2J\033[H")
		}
		w.logger.Debug("datapacks changed", "roots", change.Roots, "files", len(change.Paths))

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, change); err != nil {
				w.logger.Error("re-map failed", "error", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.logger.Warn("close fsnotify watcher", "error", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}

			root, rel, ok := w.locate(evt.Name)
			if !ok || w.isIgnored(rel) {
				continue
			}
			// New directories are registered before pattern filtering, which
			// only ever matches files.
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(root, evt.Name)
			}
			if !w.matchesPatterns(rel) {
				continue
			}

			mu.Lock()
			if pending[root] == nil {
				pending[root] = make(map[string]struct{})
			}
			pending[root][evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalWatchError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// collect builds a Change from pending. Callers hold the lock.
func (w *Watcher) collect(pending map[string]map[string]struct{}) Change {
	var change Change
	for _, root := range w.roots {
		files, ok := pending[root]
		if !ok {
			continue
		}
		change.Roots = append(change.Roots, root)
		change.Paths = append(change.Paths, slices.Collect(maps.Keys(files))...)
	}
	slices.Sort(change.Paths)
	return change
}

// locate returns the innermost root containing path and the slash-separated
// path relative to it.
func (w *Watcher) locate(path string) (root, rel string, ok bool) {
	for _, r := range w.roots {
		candidate, err := filepath.Rel(r, path)
		if err != nil || candidate == ".." || strings.HasPrefix(candidate, ".."+string(filepath.Separator)) {
			continue
		}
		if !ok || len(r) > len(root) {
			root, rel, ok = r, filepath.ToSlash(candidate), true
		}
	}
	return root, rel, ok
}

// addTree registers start and every non-ignored directory below it. Ignore
// patterns are matched relative to root.
func (w *Watcher) addTree(root, start string) error {
	walkErr := filepath.WalkDir(start, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == start {
				return err
			}
			w.logger.Warn("skipping inaccessible path", "path", path, "error", err)
			return nil //nolint:nilerr // inaccessible subtrees are not watched
		}
		if !d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil //nolint:nilerr // cannot happen below root
		}
		if rel != "." && (w.isIgnored(rel) || w.isIgnored(rel+"/")) {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, addErr)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk %s: %w", start, walkErr)
	}
	return nil
}

func (w *Watcher) maybeAddDir(root, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(root, path); err != nil {
		w.logger.Warn("add new directory", "path", path, "error", err)
	}
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, filepath.ToSlash(rel))
}

func (w *Watcher) matchesPatterns(rel string) bool {
	return matchAny(w.patterns, filepath.ToSlash(rel))
}

func matchAny(patterns []string, path string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, path); err == nil && matched {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}
