// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for modkit.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"modkit/internal/config"
	"modkit/internal/issue"

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

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "modkit",
		Short: "A mod resolution and loading engine",
		Long: TitleStyle.Render("modkit") + SubtitleStyle.Render(" - A mod resolution and loading engine") + `

modkit scans a mods directory for packaged mods, validates their
manifests and dependency constraints, extracts payloads into a
content-addressed cache and computes a deterministic load order.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Drop mod packages (.zip/.smod) into your mods directory
  2. Run: modkit resolve
  3. Inspect the result with: modkit list

` + SubtitleStyle.Render("Examples:") + `
  modkit resolve                 Resolve and load the mods directory
  modkit resolve --dev           Also accept raw .dll/.pak files
  modkit list                    Show the resolved load order
  modkit cache verify --prune    Check the cache and drop corrupt entries
  modkit config show             Show current configuration`,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/modkit/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
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

// loadConfig resolves the effective configuration for a command run.
func loadConfig(ctx context.Context) (*config.Config, error) {
	return config.NewProvider().Load(ctx, config.LoadOptions{
		ConfigFilePath: cfgFile,
	})
}

// formatErrorForDisplay renders errors with actionable context when available.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderIssue prints the user-facing help card for id, falling back to the
// raw markdown when the terminal renderer fails.
func renderIssue(id issue.Id) {
	i := issue.Get(id)
	if i == nil {
		return
	}
	out, err := i.Render("auto")
	if err != nil {
		out = string(i.MarkdownMsg())
	}
	fmt.Fprintln(os.Stderr, out)
}
