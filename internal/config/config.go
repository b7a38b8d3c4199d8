// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/packmap/packmap/internal/issue"
	"github.com/packmap/packmap/pkg/cueutil"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "packmap"
	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. PACKMAP_MODE or
	// PACKMAP_STYLE_BACKGROUND.
	EnvPrefix = "PACKMAP"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the packmap configuration directory: %APPDATA% on
// Windows, ~/Library/Application Support on macOS and $XDG_CONFIG_HOME
// (default ~/.config) elsewhere.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, AppName), nil
}

// ConfigPath returns the default config file path inside dir, or inside
// ConfigDir when dir is empty.
func ConfigPath(dir string) (string, error) {
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// newViper returns a Viper instance with every default and environment
// binding registered.
func newViper() *viper.Viper {
	v := viper.New()

	d := DefaultConfig()
	v.SetDefault("mode", string(d.Mode))
	v.SetDefault("label", d.Label)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("formats", d.Formats)
	v.SetDefault("engine", d.Engine)
	v.SetDefault("style.background", d.Style.Background)
	v.SetDefault("style.node_color", d.Style.NodeColor)
	v.SetDefault("style.font_color", d.Style.FontColor)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.ignore", d.Watch.Ignore)
	v.SetDefault("ui.verbose", d.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadWithOptions resolves and merges the config file, then decodes and
// validates the result.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := newViper()

	path, err := resolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Run 'packmap config show' to see the accepted fields").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check PACKMAP_* environment variables for typos").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, path, nil
}

// resolvePath picks the config file: an explicit path must exist; otherwise
// the config directory is tried, then the working directory. An empty result
// means defaults only.
func resolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the --config path is correct").
				WithSuggestion("Run 'packmap config init' to create a default file").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	dirPath, err := ConfigPath(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if fileExists(dirPath) {
		return dirPath, nil
	}

	local := ConfigFileName + "." + ConfigFileExt
	if fileExists(local) {
		return local, nil
	}
	return "", nil
}

// loadCUEIntoViper validates the file against #Config and merges it over the
// defaults. Fields are optional, so the document need not be concrete.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	m, err := cueutil.DecodeMap(configSchema, data, "#Config", cueutil.WithFilename(path))
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(m); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config to path, or to the default
// location when path is empty. An existing file is kept unless force is set.
// It returns the path and whether a file was written.
func CreateDefaultConfig(path string, force bool) (string, bool, error) {
	if path == "" {
		var err error
		if path, err = ConfigPath(""); err != nil {
			return "", false, err
		}
	}
	if fileExists(path) && !force {
		return path, false, nil
	}
	if err := Save(path, DefaultConfig()); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// Save writes cfg to path as CUE.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg as a config.cue document.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// packmap configuration\n")
	sb.WriteString("// Every field is optional; remove a line to fall back to the default.\n\n")

	fmt.Fprintf(&sb, "mode:       %q\n", cfg.Mode)
	fmt.Fprintf(&sb, "label:      %v\n", cfg.Label)
	fmt.Fprintf(&sb, "output_dir: %q\n", cfg.OutputDir)
	fmt.Fprintf(&sb, "formats:    %s\n", cueList(cfg.Formats))
	fmt.Fprintf(&sb, "engine:     %q\n", cfg.Engine)

	sb.WriteString("\nstyle: {\n")
	fmt.Fprintf(&sb, "\tbackground: %q\n", cfg.Style.Background)
	fmt.Fprintf(&sb, "\tnode_color: %q\n", cfg.Style.NodeColor)
	fmt.Fprintf(&sb, "\tfont_color: %q\n", cfg.Style.FontColor)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	fmt.Fprintf(&sb, "\tignore:   %s\n", cueList(cfg.Watch.Ignore))
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
