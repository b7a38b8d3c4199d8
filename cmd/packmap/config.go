// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/packmap/packmap/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `packmap config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage packmap configuration",
		Long: `Manage packmap configuration.

Configuration is stored in:
  - Linux: ~/.config/packmap/config.cue
  - macOS: ~/Library/Application Support/packmap/config.cue
  - Windows: %APPDATA%\packmap\config.cue

A config.cue in the working directory is used when the file above is
missing. Every field can be overridden with a PACKMAP_ environment variable,
e.g. PACKMAP_MODE=multiple or PACKMAP_STYLE_BACKGROUND=#000000.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSettings(cmd, rootFlags)
			if err != nil {
				return handleCommandError(cmd, rootFlags.verbose, err)
			}
			showConfig(cmd.OutOrStdout(), s)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleCommandError(cmd, rootFlags.verbose, initConfig(cmd.OutOrStdout(), app, rootFlags, force))
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSettings(cmd, rootFlags)
			if err != nil {
				return handleCommandError(cmd, rootFlags.verbose, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(s.config))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, s *settings) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	cfg := s.config

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if s.path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), s.path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("mode"), valueStyle.Render(cfg.Mode.String()))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("label"), valueStyle.Render(fmt.Sprintf("%v", cfg.Label)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("output_dir"), valueStyle.Render(cfg.OutputDir))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("formats"), valueStyle.Render(strings.Join(cfg.Formats, ", ")))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("engine"), valueStyle.Render(cfg.Engine))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("style"))
	fmt.Fprintf(w, "  background: %s\n", valueStyle.Render(cfg.Style.Background))
	fmt.Fprintf(w, "  node_color: %s\n", valueStyle.Render(cfg.Style.NodeColor))
	fmt.Fprintf(w, "  font_color: %s\n", valueStyle.Render(cfg.Style.FontColor))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(w, "  debounce: %s\n", valueStyle.Render(cfg.Watch.Debounce.String()))
	if len(cfg.Watch.Ignore) == 0 {
		fmt.Fprintf(w, "  ignore: %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		fmt.Fprintf(w, "  ignore:\n")
		for _, pattern := range cfg.Watch.Ignore {
			fmt.Fprintf(w, "    - %s\n", valueStyle.Render(pattern))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
}

// initConfig writes the default config to --config, or to the config
// directory. An existing file is only replaced with --force.
func initConfig(w io.Writer, app *App, rootFlags *rootFlagValues, force bool) error {
	target := rootFlags.configPath
	if target == "" {
		var err error
		if target, err = config.ConfigPath(app.configDir); err != nil {
			return err
		}
	}

	path, written, err := config.CreateDefaultConfig(target, force)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !written {
		fmt.Fprintf(w, "%s Configuration already exists at %s (use --force to overwrite)\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(w, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
