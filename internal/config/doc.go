// SPDX-License-Identifier: MPL-2.0

// Package config loads packmap settings with Viper, using CUE as the file
// format.
//
// The file is read from $XDG_CONFIG_HOME/packmap/config.cue (the platform
// equivalent on macOS and Windows), then ./config.cue, unless a path is given
// explicitly. It is validated against the embedded config_schema.cue before
// being merged over the defaults. PACKMAP_* environment variables override
// file values; command-line flags override both.
package config
