// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/packmap/packmap/internal/config"
	"github.com/packmap/packmap/internal/discovery"
	"github.com/packmap/packmap/internal/issue"
	"github.com/packmap/packmap/internal/pipeline"
	"github.com/packmap/packmap/internal/render"

	"github.com/spf13/cobra"
)

type (
	// mapFlagValues holds the flags shared by map and watch. A flag only
	// overrides the configuration when it was set explicitly.
	mapFlagValues struct {
		mode      string
		label     bool
		output    string
		outputDir string
		formats   []string
		engine    string
	}

	// mapRequest is a fully resolved mapping job.
	mapRequest struct {
		Roots     []string
		Mode      pipeline.Mode
		Labels    bool
		Output    string
		OutputDir string
		Formats   []render.Format
		Engine    string
		Style     render.Style
	}
)

func newMapCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &mapFlagValues{}

	cmd := &cobra.Command{
		Use:   "map <datapack>...",
		Short: "Build the call graph of one or more datapacks",
		Long: `Build the call graph of one or more datapacks.

Every datapack path is checked before anything is read. In 'one' mode all
datapacks are merged into a single graph named after the last one; in
'multiple' mode each datapack gets its own graph.

Image formats are laid out by Graphviz (sfdp by default) from the DOT file.`,
		Example: `  packmap map ./mypack
  packmap map ./core ./addon --mode multiple --format dot,svg
  packmap map ./mypack --label --output-dir graphs`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSettings(cmd, rootFlags)
			if err != nil {
				return handleCommandError(cmd, rootFlags.verbose, err)
			}
			req, err := resolveMapRequest(cmd, s.config, flags, args)
			if err != nil {
				return handleCommandError(cmd, s.verbose, err)
			}
			err = runMap(cmd.Context(), app, req, s.logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return handleCommandError(cmd, s.verbose, err)
		},
	}

	bindMapFlags(cmd, flags)
	return cmd
}

func bindMapFlags(cmd *cobra.Command, flags *mapFlagValues) {
	defaults := config.DefaultConfig()
	fs := cmd.Flags()
	fs.StringVarP(&flags.mode, "mode", "m", string(defaults.Mode), "'one' merges every datapack into one graph, 'multiple' writes one graph each")
	fs.BoolVarP(&flags.label, "label", "l", defaults.Label, "label edges with the invoking command")
	fs.StringVarP(&flags.output, "output", "o", "", "base name of the output files (default: datapack name)")
	fs.StringVar(&flags.outputDir, "output-dir", defaults.OutputDir, "directory receiving the output files")
	fs.StringSliceVarP(&flags.formats, "format", "f", defaults.Formats, "output formats: "+strings.Join(render.FormatNames(), ", "))
	fs.StringVar(&flags.engine, "engine", defaults.Engine, "Graphviz layout program for image formats")
}

// resolveMapRequest layers explicitly set flags over the configuration.
func resolveMapRequest(cmd *cobra.Command, cfg *config.Config, flags *mapFlagValues, args []string) (mapRequest, error) {
	req := mapRequest{
		Roots:     args,
		Mode:      pipeline.Mode(cfg.Mode),
		Labels:    cfg.Label,
		OutputDir: cfg.OutputDir,
		Engine:    cfg.Engine,
	}
	formats := cfg.Formats

	changed := cmd.Flags().Changed
	if changed("mode") {
		req.Mode = pipeline.Mode(flags.mode)
	}
	if changed("label") {
		req.Labels = flags.label
	}
	if changed("output") {
		req.Output = flags.output
	}
	if changed("output-dir") {
		req.OutputDir = flags.outputDir
	}
	if changed("format") {
		formats = flags.formats
	}
	if changed("engine") {
		req.Engine = flags.engine
	}

	if err := req.Mode.Validate(); err != nil {
		return mapRequest{}, issue.NewErrorContext().
			WithOperation("parse --mode").
			WithSuggestion("Use --mode one or --mode multiple").
			Wrap(err).
			BuildError()
	}

	parsed, err := render.ParseFormats(formats)
	if err != nil {
		return mapRequest{}, issue.NewErrorContext().
			WithOperation("parse --format").
			WithSuggestion("Supported formats: " + strings.Join(render.FormatNames(), ", ")).
			Wrap(err).
			BuildError()
	}
	req.Formats = parsed

	if strings.ContainsAny(req.Output, `/\`) {
		return mapRequest{}, issue.NewErrorContext().
			WithOperation("parse --output").
			WithResource(req.Output).
			WithSuggestion("Pass a bare file name and put the directory in --output-dir").
			Wrap(fmt.Errorf("output name must not contain a path separator")).
			BuildError()
	}

	if req.OutputDir == "" {
		req.OutputDir = config.DefaultOutputDir
	}
	if req.Engine == "" {
		req.Engine = render.DefaultEngine
	}
	req.Style = render.Style{
		Background: cfg.Style.Background,
		NodeColor:  cfg.Style.NodeColor,
		FontColor:  cfg.Style.FontColor,
		Labels:     req.Labels,
	}
	return req, nil
}

// runMap checks every root, maps them and writes the requested outputs. A
// datapack that fails after the check turns the result into exit code 1
// once every other output is written.
func runMap(ctx context.Context, app *App, req mapRequest, logger *slog.Logger, stdout, stderr io.Writer) error {
	start := time.Now()

	if err := discovery.CheckPackages(req.Roots...); err != nil {
		return newServiceError(issue.NewErrorContext().
			WithOperation("read datapacks").
			WithResource(strings.Join(req.Roots, ", ")).
			WithSuggestion("Pass the datapack root, the folder that contains data/").
			Wrap(err).
			BuildError(), issue.PackageNotFoundId, "")
	}

	fmt.Fprintln(stdout, TitleStyle.Render("Reading in the datapacks and building the graph"))
	outputs, err := pipeline.Run(ctx, req.Roots, req.Mode, pipeline.Options{
		Labels: req.Labels,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	failed := 0
	for _, out := range outputs {
		failed += printReports(stdout, stderr, out)
		if out.Graph.Order() == 0 {
			renderServiceError(stderr, newServiceError(fmt.Errorf("graph %s is empty", out.Name), issue.EmptyGraphId, ""))
			if allFailed(out) {
				continue
			}
		}
		if err := writeOutputs(ctx, app, req, out, logger, stdout); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "%s Done in %s!\n", SuccessStyle.Render("✓"), formatElapsed(time.Since(start)))
	if failed > 0 {
		fmt.Fprintf(stderr, "%s %d datapack(s) could not be mapped\n", ErrorStyle.Render("✗"), failed)
		return &ExitError{Code: 1}
	}
	return nil
}

// printReports prints the per-datapack summary lines and diagnostics of out
// and returns the number of datapacks that failed entirely.
func printReports(stdout, stderr io.Writer, out pipeline.Output) int {
	failed := 0
	for _, rep := range out.Reports {
		if rep.Err != nil {
			failed++
			fmt.Fprintf(stderr, "  %s %s: %v\n", ErrorStyle.Render("✗"), rep.Root, rep.Err)
			continue
		}
		fmt.Fprintf(stdout, "  %s %s Built with: %d functions and %d connections (%d nodes)!\n",
			SuccessStyle.Render("✓"), CmdStyle.Render(rep.Package),
			rep.Files.Functions, rep.Stats.Edges, rep.Stats.Nodes)
		for _, d := range rep.Diagnostics {
			printDiagnostic(stderr, d)
		}
	}
	return failed
}

func printDiagnostic(w io.Writer, d discovery.Diagnostic) {
	icon := WarningStyle.Render("!")
	if d.Severity == discovery.SeverityError {
		icon = ErrorStyle.Render("✗")
	}
	code := diagnosticCodeStyle.Render("[" + d.Code + "]")
	if d.Path != "" {
		fmt.Fprintf(w, "    %s %s %s: %s\n", icon, code, d.Path, d.Message)
		return
	}
	fmt.Fprintf(w, "    %s %s %s\n", icon, code, d.Message)
}

func allFailed(out pipeline.Output) bool {
	for _, rep := range out.Reports {
		if rep.Err == nil {
			return false
		}
	}
	return true
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}
