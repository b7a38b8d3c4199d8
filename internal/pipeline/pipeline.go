// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/packmap/packmap/internal/callgraph"
	"github.com/packmap/packmap/internal/discovery"
	"github.com/packmap/packmap/internal/extract"

	"golang.org/x/sync/errgroup"
)

const (
	// ModeOne merges all datapacks into one graph.
	ModeOne Mode = "one"
	// ModeMultiple produces one graph per datapack.
	ModeMultiple Mode = "multiple"
)

// ErrInvalidMode is the sentinel error wrapped by InvalidModeError.
var ErrInvalidMode = errors.New("invalid mode")

type (
	// Mode selects how datapacks map to graphs.
	Mode string

	// InvalidModeError is returned when a Mode value is not recognized.
	InvalidModeError struct {
		Value Mode
	}

	// Options configures a pipeline run.
	Options struct {
		// Labels attaches command labels to edges.
		Labels bool
		// Colors overrides the edge color source.
		Colors callgraph.ColorFunc
		// Logger receives progress messages. nil means slog.Default().
		Logger *slog.Logger
	}

	// FileCounts is the number of artifacts read per kind.
	FileCounts struct {
		Functions    int
		Tags         int
		Advancements int
	}

	// Report describes one datapack's pass.
	Report struct {
		// Package is the datapack's directory name.
		Package string
		// Root is the path the datapack was requested with.
		Root string
		// Files counts the artifacts visited.
		Files FileCounts
		// Stats are the assembler stats of this datapack's pass. Nodes is the
		// size of the (possibly shared) graph after the pass.
		Stats callgraph.Stats
		// Diagnostics lists skipped artifacts and warnings.
		Diagnostics []discovery.Diagnostic
		// Err is set when the datapack could not be mapped at all.
		Err error
	}

	// Output is one assembled graph and the reports of the datapacks in it.
	Output struct {
		// Name is the graph name: the datapack name, or the last datapack's
		// name when several are merged.
		Name    string
		Graph   *callgraph.Graph
		Reports []Report
	}
)

// Error implements the error interface for InvalidModeError.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid mode %q (expected %q or %q)", e.Value, ModeOne, ModeMultiple)
}

// Unwrap returns ErrInvalidMode for errors.Is() compatibility.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

// Validate returns an error if the mode is not recognized.
func (m Mode) Validate() error {
	switch m {
	case ModeOne, ModeMultiple:
		return nil
	default:
		return &InvalidModeError{Value: m}
	}
}

// String returns the string representation of the Mode.
func (m Mode) String() string { return string(m) }

// Total returns the number of artifacts across kinds.
func (c FileCounts) Total() int { return c.Functions + c.Tags + c.Advancements }

// HasErrors reports whether the pass skipped anything.
func (r Report) HasErrors() bool {
	if r.Err != nil {
		return true
	}
	for _, d := range r.Diagnostics {
		if d.Severity == discovery.SeverityError {
			return true
		}
	}
	return false
}

// Run maps every root according to mode. Only context cancellation and an
// invalid mode are returned as errors; a datapack that cannot be mapped is
// reported through its Report.Err.
func Run(ctx context.Context, roots []string, mode Mode, opts Options) ([]Output, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	if mode == ModeOne {
		out, err := runMerged(ctx, roots, opts)
		if err != nil {
			return nil, err
		}
		return []Output{out}, nil
	}
	return runSeparate(ctx, roots, opts)
}

func runMerged(ctx context.Context, roots []string, opts Options) (Output, error) {
	g := callgraph.New()
	out := Output{Graph: g}
	for _, root := range roots {
		rep, err := MapPackage(ctx, root, g, opts)
		if err != nil {
			return Output{}, err
		}
		out.Reports = append(out.Reports, rep)
		out.Name = rep.Package
	}
	return out, nil
}

func runSeparate(ctx context.Context, roots []string, opts Options) ([]Output, error) {
	outputs := make([]Output, len(roots))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, root := range roots {
		eg.Go(func() error {
			g := callgraph.New()
			rep, err := MapPackage(egCtx, root, g, opts)
			if err != nil {
				return err
			}
			outputs[i] = Output{Name: rep.Package, Graph: g, Reports: []Report{rep}}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// MapPackage discovers, extracts and assembles one datapack into g. Artifact
// failures land in the report's diagnostics; a missing datapack sets
// Report.Err. Only context cancellation is returned as an error.
func MapPackage(ctx context.Context, root string, g *callgraph.Graph, opts Options) (Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rep := Report{Root: root, Package: root}

	pkg, err := discovery.Discover(root)
	if err != nil {
		logger.Warn("skipping datapack", "root", root, "error", err)
		rep.Err = err
		return rep, nil
	}
	rep.Package = pkg.Name
	rep.Diagnostics = append(rep.Diagnostics, pkg.Diagnostics...)
	logger.Debug("reading datapack", "package", pkg.Name, "root", pkg.Root)

	results, err := extract.All(ctx, pkg)
	if err != nil {
		return rep, err
	}

	asm := callgraph.NewAssembler(g, callgraph.WithLabels(opts.Labels), callgraph.WithColors(opts.Colors))
	for _, res := range results {
		switch res.Kind {
		case discovery.KindFunction:
			rep.Files.Functions = res.Files
		case discovery.KindTag:
			rep.Files.Tags = res.Files
		case discovery.KindAdvancement:
			rep.Files.Advancements = res.Files
		}
		rep.Diagnostics = append(rep.Diagnostics, res.Diagnostics...)
		asm.AddAll(res.Facts)
		logger.Debug("extracted artifacts", "package", pkg.Name, "kind", res.Kind.String(),
			"files", res.Files, "facts", len(res.Facts), "skipped", len(res.Diagnostics))
	}
	rep.Stats = asm.Stats()

	logger.Debug("assembled datapack", "package", pkg.Name,
		"facts", rep.Stats.Facts, "edges", rep.Stats.Edges, "nodes", rep.Stats.Nodes)
	return rep, nil
}
