// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// LogLevelDebug enables debug output.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default verbosity.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn only reports warnings and errors.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError only reports errors.
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidDirPath is returned when a directory path value is whitespace-only.
	ErrInvalidDirPath = errors.New("invalid directory path")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel specifies the minimum severity emitted by the logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError is returned when a Config fails validation.
	// It wraps ErrInvalidConfig plus the underlying field error.
	InvalidConfigError struct {
		Field string
		Cause error
	}

	// Config holds the resolver's runtime settings. All fields have sensible
	// defaults; a missing config file is not an error.
	Config struct {
		// ModsDir is the directory scanned for mod packages.
		ModsDir string `mapstructure:"mods_dir"`
		// CacheDir is the root of the content-addressed extraction cache.
		CacheDir string `mapstructure:"cache_dir"`
		// ConfigsDir is where per-mod config payloads are placed.
		ConfigsDir string `mapstructure:"configs_dir"`
		// Development enables loading raw .dll/.pak files without a manifest.
		Development bool `mapstructure:"development"`
		// LogLevel sets logger verbosity: debug, info, warn or error.
		LogLevel LogLevel `mapstructure:"log_level"`
		// ReportPath, when set, is where the load order report is written.
		ReportPath string `mapstructure:"report_path"`
	}
)

func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("%v: %q (expected debug, info, warn or error)", ErrInvalidLogLevel, e.Value)
}

func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrInvalidConfig, e.Field, e.Cause)
}

func (e *InvalidConfigError) Unwrap() error { return e.Cause }

// Validate checks that the level is one of the recognized values.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		ModsDir:     "./mods",
		CacheDir:    "./.modkit/cache",
		ConfigsDir:  "./configs",
		Development: false,
		LogLevel:    LogLevelInfo,
	}
}

// Validate checks constraints the CUE schema cannot express on decoded values,
// mainly that paths are not whitespace-only after env/flag overrides.
func (c *Config) Validate() error {
	if err := c.LogLevel.Validate(); err != nil {
		return &InvalidConfigError{Field: "log_level", Cause: err}
	}
	for _, dir := range []struct {
		field string
		value string
	}{
		{"mods_dir", c.ModsDir},
		{"cache_dir", c.CacheDir},
		{"configs_dir", c.ConfigsDir},
	} {
		if strings.TrimSpace(dir.value) == "" {
			return &InvalidConfigError{Field: dir.field, Cause: ErrInvalidDirPath}
		}
	}
	return nil
}
