// SPDX-License-Identifier: MPL-2.0

package render

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultEngine is the Graphviz layout program used when none is configured.
const DefaultEngine = "sfdp"

// ErrGraphvizNotFound is the sentinel error wrapped by GraphvizNotFoundError.
var ErrGraphvizNotFound = errors.New("graphviz engine not found")

type (
	// Renderer turns a DOT file into an image.
	Renderer interface {
		Render(ctx context.Context, dotPath string, format Format, outPath string) error
	}

	// Graphviz renders through a Graphviz layout program on PATH.
	Graphviz struct {
		// Engine is the layout program, e.g. "sfdp" or "dot".
		Engine string
	}

	// GraphvizNotFoundError is returned when the layout program cannot be
	// located.
	GraphvizNotFoundError struct {
		Engine string
		Cause  error
	}

	// RenderError is returned when the layout program fails.
	RenderError struct {
		Engine string
		Output string
		Cause  error
	}
)

// Error implements the error interface for GraphvizNotFoundError.
func (e *GraphvizNotFoundError) Error() string {
	return fmt.Sprintf("graphviz engine %q not found: %v", e.Engine, e.Cause)
}

// Unwrap returns ErrGraphvizNotFound for errors.Is() compatibility.
func (e *GraphvizNotFoundError) Unwrap() error { return ErrGraphvizNotFound }

// Error implements the error interface for RenderError.
func (e *RenderError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s failed: %v", e.Engine, e.Cause)
	}
	return fmt.Sprintf("%s failed: %v: %s", e.Engine, e.Cause, e.Output)
}

// Unwrap returns the underlying process error.
func (e *RenderError) Unwrap() error { return e.Cause }

// Available reports whether the engine can be located.
func (g Graphviz) Available() error {
	_, err := g.lookPath()
	return err
}

// Render runs `<engine> -T<format> -o outPath dotPath`.
func (g Graphviz) Render(ctx context.Context, dotPath string, format Format, outPath string) error {
	if !format.IsImage() {
		return &UnknownFormatError{Value: string(format)}
	}
	bin, err := g.lookPath()
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, bin, "-T"+string(format), "-o", outPath, dotPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &RenderError{Engine: g.engine(), Output: strings.TrimSpace(string(out)), Cause: err}
	}
	return nil
}

func (g Graphviz) engine() string {
	if g.Engine == "" {
		return DefaultEngine
	}
	return g.Engine
}

func (g Graphviz) lookPath() (string, error) {
	bin, err := exec.LookPath(g.engine())
	if err != nil {
		return "", &GraphvizNotFoundError{Engine: g.engine(), Cause: err}
	}
	return bin, nil
}
