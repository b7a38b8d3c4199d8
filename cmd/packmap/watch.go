// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/packmap/packmap/internal/pipeline"
	"github.com/packmap/packmap/internal/watch"

	"github.com/spf13/cobra"
)

func newWatchCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &mapFlagValues{}
	var clearScreen bool

	cmd := &cobra.Command{
		Use:   "watch <datapack>...",
		Short: "Re-map datapacks whenever their functions, tags or advancements change",
		Long: `Map the datapacks once, then watch them and map again after every change.

Changes are debounced (watch.debounce in the config file). In 'multiple' mode
only the datapacks that changed are mapped again. Press Ctrl+C to stop.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSettings(cmd, rootFlags)
			if err != nil {
				return handleCommandError(cmd, rootFlags.verbose, err)
			}
			return handleCommandError(cmd, s.verbose, runWatch(cmd, app, s, flags, clearScreen, args))
		},
	}

	bindMapFlags(cmd, flags)
	cmd.Flags().BoolVar(&clearScreen, "clear", false, "clear the terminal before each re-map")
	return cmd
}

// runWatch maps once, then re-maps on every debounced change until the
// context is cancelled. Failures after the first pass are reported and the
// watcher keeps running.
func runWatch(cmd *cobra.Command, app *App, s *settings, flags *mapFlagValues, clearScreen bool, args []string) error {
	req, err := resolveMapRequest(cmd, s.config, flags, args)
	if err != nil {
		return err
	}
	for i, root := range req.Roots {
		abs, absErr := filepath.Abs(root)
		if absErr != nil {
			return fmt.Errorf("failed to resolve %s: %w", root, absErr)
		}
		req.Roots[i] = abs
	}

	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	fmt.Fprintf(stdout, "%s Watch mode: initial mapping of %d datapack(s)\n", VerboseHighlightStyle.Render("→"), len(req.Roots))
	if err := runMap(ctx, app, req, s.logger, stdout, stderr); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			return err
		}
	}

	w, err := watch.New(watch.Config{
		Roots:       req.Roots,
		Ignore:      s.config.Watch.Ignore,
		Debounce:    s.config.Watch.Debounce,
		ClearScreen: clearScreen,
		OnChange: func(ctx context.Context, change watch.Change) error {
			fmt.Fprintf(stdout, "%s Detected %d change(s). Re-mapping...\n", VerboseHighlightStyle.Render("→"), len(change.Paths))
			next := req
			if req.Mode == pipeline.ModeMultiple {
				next.Roots = change.Roots
			}
			if err := runMap(ctx, app, next, s.logger, stdout, stderr); err != nil {
				var exitErr *ExitError
				if !errors.As(err, &exitErr) {
					reportError(stderr, err, s.verbose)
				}
			}
			fmt.Fprintf(stdout, "\n%s Watching for changes...\n\n", VerboseHighlightStyle.Render("→"))
			return nil
		},
		Stdout: stdout,
		Logger: s.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(stdout, "\n%s Watching for changes (Ctrl+C to stop)...\n\n", VerboseHighlightStyle.Render("→"))
	return w.Run(ctx)
}
