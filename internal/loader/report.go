// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modkit/internal/semver"

	"github.com/pelletier/go-toml/v2"
)

type (
	// Report is the on-disk record of one successful resolution run. It is
	// written in TOML so players and server admins can read and diff it.
	Report struct {
		LoaderVersion string      `toml:"loader_version"`
		Generated     time.Time   `toml:"generated"`
		Mods          []ReportMod `toml:"mods"`
	}

	// ReportMod is one loaded mod, in load order.
	ReportMod struct {
		ModID   string   `toml:"modid"`
		Name    string   `toml:"name"`
		Version string   `toml:"version"`
		Source  string   `toml:"source"`
		Module  bool     `toml:"module"`
		Paks    []string `toml:"paks,omitempty"`
	}
)

// WriteReport writes the load order report for mods (already in load order)
// to path, creating parent directories as needed.
func WriteReport(path string, loaderVersion semver.Version, mods []*ModContainer) error {
	report := Report{
		LoaderVersion: loaderVersion.String(),
		Generated:     time.Now().UTC(),
		Mods:          make([]ReportMod, 0, len(mods)),
	}

	for _, mc := range mods {
		report.Mods = append(report.Mods, ReportMod{
			ModID:   mc.Descriptor.ModID,
			Name:    mc.Descriptor.Name,
			Version: mc.Descriptor.Version.String(),
			Source:  mc.SourcePath,
			Module:  mc.HasModuleRef(),
			Paks:    mc.PakPaths,
		})
	}

	data, err := toml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode load order report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write load order report: %w", err)
	}

	return nil
}

// ReadReport parses a previously written load order report.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read load order report: %w", err)
	}

	var report Report
	if err := toml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse load order report: %w", err)
	}
	return &report, nil
}
