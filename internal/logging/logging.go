// SPDX-License-Identifier: MPL-2.0

// Package logging builds the slog logger used across packmap, backed by a
// charmbracelet/log handler for colored terminal output.
package logging

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// Prefix is printed before every log line.
const Prefix = "packmap"

// New returns a logger writing to w. Verbose enables debug records and
// timestamps.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           level,
		ReportTimestamp: verbose,
	})
	return slog.New(handler)
}

// Install makes New(w, verbose) the slog default and returns it.
func Install(w io.Writer, verbose bool) *slog.Logger {
	logger := New(w, verbose)
	slog.SetDefault(logger)
	return logger
}
