// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/packmap/packmap/internal/config"
	"github.com/packmap/packmap/internal/issue"
	"github.com/packmap/packmap/internal/logging"
	"github.com/packmap/packmap/internal/render"

	"github.com/spf13/cobra"
)

type (
	// RendererFactory builds the image renderer for a Graphviz engine.
	RendererFactory func(engine string) render.Renderer

	// App wires CLI services and shared dependencies. Every command handler
	// receives the same App.
	App struct {
		Config      config.Provider
		NewRenderer RendererFactory
		configDir   string
		stdout      io.Writer
		stderr      io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      config.Provider
		NewRenderer RendererFactory
		// ConfigDir replaces the platform config directory when set.
		ConfigDir string
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// settings is the configuration resolved for one command invocation.
	settings struct {
		config  *config.Config
		path    string
		verbose bool
		logger  *slog.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.NewRenderer == nil {
		deps.NewRenderer = func(engine string) render.Renderer {
			return render.Graphviz{Engine: engine}
		}
	}

	return &App{
		Config:      deps.Config,
		NewRenderer: deps.NewRenderer,
		configDir:   deps.ConfigDir,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}
}

// loadSettings loads the configuration honoring --config and merges the
// verbose flag with ui.verbose.
func (a *App) loadSettings(cmd *cobra.Command, rootFlags *rootFlagValues) (*settings, error) {
	loaded, err := a.Config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: rootFlags.configPath,
		ConfigDirPath:  a.configDir,
	})
	if err != nil {
		return nil, newServiceError(err, issue.ConfigLoadFailedId, "")
	}

	verbose := rootFlags.verbose || loaded.Config.UI.Verbose
	return &settings{
		config:  loaded.Config,
		path:    loaded.Path,
		verbose: verbose,
		logger:  logging.New(cmd.ErrOrStderr(), verbose),
	}, nil
}
