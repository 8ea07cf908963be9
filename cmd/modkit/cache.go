// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"modkit/internal/cache"
	"modkit/internal/config"

	"github.com/spf13/cobra"
)

var (
	pruneFlag bool

	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect the content-addressed extraction cache",
	}

	cacheVerifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify every cache entry against its content digest",
		Long: `Re-hash every entry in the extraction cache and report the ones whose
bytes no longer match their digest. Corrupt entries are rebuilt
automatically on the next resolution run; --prune removes them now.`,
		RunE: runCacheVerify,
	}
)

func init() {
	cacheVerifyCmd.Flags().BoolVar(&pruneFlag, "prune", false, "remove corrupt entries")
	cacheCmd.AddCommand(cacheVerifyCmd)
}

func runCacheVerify(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		cfg = config.DefaultConfig()
	}

	d, err := cache.NewDisk(cfg.CacheDir)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	entries, err := os.ReadDir(d.Root())
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("failed to read cache directory: %w", err)}
	}

	total, corrupt := 0, 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		total++
		digest := e.Name()
		if d.Verify(digest) {
			continue
		}
		corrupt++
		line := ErrorStyle.Render("corrupt: ") + VerboseStyle.Render(digest)
		if pruneFlag {
			if err := os.Remove(filepath.Join(d.Root(), digest)); err != nil {
				return &ExitError{Code: 1, Err: fmt.Errorf("failed to prune %s: %w", digest, err)}
			}
			line += SubtitleStyle.Render(" (removed)")
		}
		fmt.Println(line)
	}

	if corrupt == 0 {
		fmt.Println(SuccessStyle.Render(fmt.Sprintf("✓ %d cache entries verified", total)))
		return nil
	}

	fmt.Println(WarningStyle.Render(fmt.Sprintf("%d of %d cache entries corrupt", corrupt, total)))
	if !pruneFlag {
		return &ExitError{Code: 1}
	}
	return nil
}
