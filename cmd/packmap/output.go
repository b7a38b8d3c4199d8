// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/packmap/packmap/internal/callgraph"
	"github.com/packmap/packmap/internal/issue"
	"github.com/packmap/packmap/internal/pipeline"
	"github.com/packmap/packmap/internal/render"
	"github.com/packmap/packmap/internal/store"
)

// outputName is the base file name of an output. In multiple mode --output
// becomes a prefix so graphs do not overwrite each other.
func outputName(req mapRequest, out pipeline.Output) string {
	switch {
	case req.Output == "":
		return out.Name
	case req.Mode == pipeline.ModeMultiple:
		return req.Output + "-" + out.Name
	default:
		return req.Output
	}
}

// writeOutputs writes out in every requested format. DOT is written first
// because image formats are rendered from it; without a DOT format a
// temporary file is used.
func writeOutputs(ctx context.Context, app *App, req mapRequest, out pipeline.Output, logger *slog.Logger, stdout io.Writer) error {
	if len(req.Formats) == 0 {
		return nil
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return outputFailed(req.OutputDir, err)
	}

	name := outputName(req, out)
	base := filepath.Join(req.OutputDir, name)
	fmt.Fprintf(stdout, "%s Constructing the %s graph\n", VerboseHighlightStyle.Render("→"), CmdStyle.Render(name))

	writeDOT := func(w io.Writer) error { return render.WriteDOT(w, name, out.Graph, req.Style) }

	dotPath := ""
	if slices.Contains(req.Formats, render.FormatDOT) {
		dotPath = base + "." + render.FormatDOT.Ext()
		fmt.Fprintf(stdout, "  Writing to %s\n", dotPath)
		if err := writeFile(dotPath, writeDOT); err != nil {
			return err
		}
	}

	for _, f := range req.Formats {
		switch {
		case f == render.FormatDOT:
			continue

		case f == render.FormatJSON:
			path := base + "." + f.Ext()
			fmt.Fprintf(stdout, "  Writing to %s\n", path)
			if err := writeFile(path, func(w io.Writer) error { return render.WriteJSON(w, name, out.Graph) }); err != nil {
				return err
			}

		case f == render.FormatSQLite:
			path := filepath.Join(req.OutputDir, store.DefaultFileName)
			fmt.Fprintf(stdout, "  Saving to %s\n", path)
			if err := saveGraph(ctx, path, name, out.Graph); err != nil {
				return err
			}

		case f.IsImage():
			if dotPath == "" {
				tmp, cleanup, err := writeTempDOT(name, writeDOT)
				if err != nil {
					return err
				}
				defer cleanup()
				dotPath = tmp
			}
			path := base + "." + f.Ext()
			fmt.Fprintf(stdout, "  Drawing to %s\n", path)
			if err := app.NewRenderer(req.Engine).Render(ctx, dotPath, f, path); err != nil {
				return renderFailed(req.Engine, path, err)
			}
		}
		logger.Debug("wrote output", "graph", name, "format", f.String())
	}
	return nil
}

// writeFile creates path and streams fn into it.
func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return outputFailed(path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = outputFailed(path, closeErr)
		}
	}()
	if err := fn(f); err != nil {
		return outputFailed(path, err)
	}
	return nil
}

func writeTempDOT(name string, fn func(io.Writer) error) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "packmap-"+name+"-*.dot")
	if err != nil {
		return "", nil, outputFailed(os.TempDir(), err)
	}
	path = f.Name()
	cleanup = func() { _ = os.Remove(path) }
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, outputFailed(path, err)
	}
	if err := writeFile(path, fn); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func saveGraph(ctx context.Context, path, name string, g *callgraph.Graph) (err error) {
	s, err := store.Open(path)
	if err != nil {
		return outputFailed(path, err)
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = outputFailed(path, closeErr)
		}
	}()
	if err := s.SaveGraph(ctx, name, g); err != nil {
		return outputFailed(path, err)
	}
	return nil
}

func outputFailed(path string, err error) error {
	return newServiceError(issue.NewErrorContext().
		WithOperation("write output").
		WithResource(path).
		WithSuggestion("Check that the output directory is writable").
		Wrap(err).
		BuildError(), issue.OutputFailedId, "")
}

func renderFailed(engine, path string, err error) error {
	if errors.Is(err, render.ErrGraphvizNotFound) {
		return newServiceError(issue.NewErrorContext().
			WithOperation("render image").
			WithResource(path).
			WithSuggestion("Install Graphviz so that '"+engine+"' is on PATH").
			WithSuggestion("Or skip images with --format dot,json").
			Wrap(err).
			BuildError(), issue.GraphvizNotFoundId, "")
	}
	return outputFailed(path, err)
}
