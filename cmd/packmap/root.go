// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/packmap/packmap/internal/logging"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	verbose    bool
	configPath string
}

// NewRootCommand builds the packmap command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootFlags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "packmap",
		Short: "Map the function calls of Minecraft datapacks",
		Long: TitleStyle.Render("packmap") + SubtitleStyle.Render(" - Map the function calls of Minecraft datapacks") + `

packmap reads every function, function tag and advancement of one or more
datapacks and draws who calls whom: direct calls, scheduled calls, tag
expansions and advancement rewards.

` + SubtitleStyle.Render("Examples:") + `
  packmap map ./mypack                   Graph one datapack
  packmap map ./a ./b --mode multiple    One graph per datapack
  packmap map ./mypack --label -f svg    Label edges, render SVG
  packmap watch ./mypack                 Re-map on every save
  packmap show graphs/packmap.db mypack  Query an SQLite export
  packmap config init                    Create a default config file`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "config file (default is $HOME/.config/packmap/config.cue)")

	rootCmd.AddCommand(newMapCommand(app, rootFlags))
	rootCmd.AddCommand(newWatchCommand(app, rootFlags))
	rootCmd.AddCommand(newShowCommand(app, rootFlags))
	rootCmd.AddCommand(newConfigCommand(app, rootFlags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs the root command. It is called by main.main.
func Execute() {
	logging.Install(os.Stderr, false)

	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
