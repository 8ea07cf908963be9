// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"modkit/internal/config"

	"github.com/spf13/cobra"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage modkit configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a default config file if none exists",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := config.CreateDefaultConfig(); err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			path := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
			fmt.Println(SuccessStyle.Render("✓ config ready: ") + ModStyle.Render(path))
			return nil
		},
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
