// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	// ModeOne merges every datapack into one graph.
	ModeOne Mode = "one"
	// ModeMultiple writes one graph per datapack.
	ModeMultiple Mode = "multiple"

	// DefaultOutputDir is where outputs are written.
	DefaultOutputDir = "."
	// DefaultEngine is the Graphviz layout program.
	DefaultEngine = "sfdp"
	// DefaultDebounce is the watch quiet period.
	DefaultDebounce = 500 * time.Millisecond
)

var (
	// ErrInvalidMode is returned when a Mode value is not recognized.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	// knownFormats mirrors #Format in config_schema.cue.
	knownFormats = []string{"dot", "json", "sqlite", "jpeg", "png", "svg"}
)

type (
	// Mode selects how datapacks map to graphs. Defined locally so config
	// does not depend on the pipeline.
	Mode string

	// InvalidModeError is returned when a Mode value is not recognized.
	InvalidModeError struct {
		Value Mode
	}

	// InvalidConfigError collects every field error of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the complete packmap configuration.
	Config struct {
		// Mode is "one" or "multiple".
		Mode Mode `json:"mode" mapstructure:"mode"`
		// Label attaches command labels to edges.
		Label bool `json:"label" mapstructure:"label"`
		// OutputDir receives every output file.
		OutputDir string `json:"output_dir" mapstructure:"output_dir"`
		// Formats lists the outputs to produce.
		Formats []string `json:"formats" mapstructure:"formats"`
		// Engine is the Graphviz layout program for image formats.
		Engine string `json:"engine" mapstructure:"engine"`
		// Style overrides the graph colors.
		Style StyleConfig `json:"style" mapstructure:"style"`
		// Watch configures `packmap watch`.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// StyleConfig holds graph colors.
	StyleConfig struct {
		Background string `json:"background" mapstructure:"background"`
		NodeColor  string `json:"node_color" mapstructure:"node_color"`
		FontColor  string `json:"font_color" mapstructure:"font_color"`
	}

	// WatchConfig holds watch mode settings.
	WatchConfig struct {
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		Ignore   []string      `json:"ignore" mapstructure:"ignore"`
	}

	// UIConfig holds terminal settings.
	UIConfig struct {
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode:      ModeOne,
		Label:     false,
		OutputDir: DefaultOutputDir,
		Formats:   []string{"dot", "jpeg"},
		Engine:    DefaultEngine,
		Style: StyleConfig{
			Background: "#262626",
			NodeColor:  "white",
			FontColor:  "#bfbfbf",
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
			Ignore:   []string{},
		},
	}
}

// String returns the string representation of the Mode.
func (m Mode) String() string { return string(m) }

// IsValid returns whether the Mode is a recognized value.
func (m Mode) IsValid() (bool, []error) {
	switch m {
	case ModeOne, ModeMultiple:
		return true, nil
	default:
		return false, []error{&InvalidModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidModeError.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid mode %q (valid: one, multiple)", e.Value)
}

// Unwrap returns ErrInvalidMode for errors.Is() compatibility.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

// IsValid checks values the environment can set without passing through the
// CUE schema.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Mode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, f := range c.Formats {
		if !slices.Contains(knownFormats, strings.ToLower(strings.TrimSpace(f))) {
			errs = append(errs, fmt.Errorf("formats: unknown format %q", f))
		}
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("output_dir: must not be empty"))
	}
	if strings.TrimSpace(c.Engine) == "" {
		errs = append(errs, errors.New("engine: must not be empty"))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must not be negative, got %s", c.Watch.Debounce))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and every field error, so errors.Is
// matches both the category and the specific failure.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
