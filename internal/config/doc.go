// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/modkit/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/modkit/config.cue on macOS, %APPDATA%\modkit\config.cue
// on Windows), with MODKIT_* environment variables taking precedence over the file.
// The package covers the mods directory, cache and config locations, development mode
// and logger verbosity.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
