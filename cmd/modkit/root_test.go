// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"modkit/internal/config"
	"modkit/internal/diag"
	"modkit/internal/issue"
	"modkit/internal/loader"
	"modkit/internal/testutil"
)

func TestGetVersionString(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "dev"
	if got := getVersionString(); got != "dev (built from source)" {
		t.Errorf("dev version string = %q", got)
	}

	Version = "3.0.0"
	if got := getVersionString(); got == "dev (built from source)" {
		t.Errorf("release version string = %q", got)
	}
}

func TestLoaderVersionFallsBack(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "3.1.0"
	if got := loaderVersion().String(); got != "3.1.0" {
		t.Errorf("loader version = %q", got)
	}

	Version = "dev"
	if got := loaderVersion().String(); got != "0.0.0" {
		t.Errorf("fallback version = %q", got)
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	bare := &ExitError{Code: 2}
	if bare.Error() != "exit status 2" {
		t.Errorf("bare message = %q", bare.Error())
	}

	cause := errors.New("boom")
	wrapped := &ExitError{Code: 1, Err: cause}
	if wrapped.Error() != "boom" {
		t.Errorf("wrapped message = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestIssueForCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code   diag.Code
		want   issue.Id
		mapped bool
	}{
		{diag.CodeInvalidManifest, issue.ManifestParseErrorId, true},
		{diag.CodeDuplicateModID, issue.DuplicateModId, true},
		{diag.CodeRawModRejected, issue.RawModRejectedId, true},
		{diag.CodeMissingDependency, issue.MissingDependencyId, true},
		{diag.CodeVersionMismatch, issue.VersionMismatchId, true},
		{diag.CodeCycleDetected, issue.DependencyCycleId, true},
		{diag.CodeNotLoaded, 0, false},
	}
	for _, tt := range tests {
		id, ok := issueForCode(tt.code)
		if ok != tt.mapped || (ok && id != tt.want) {
			t.Errorf("issueForCode(%s) = (%d, %v), want (%d, %v)", tt.code, id, ok, tt.want, tt.mapped)
		}
	}
}

// setupWorkspace points the config machinery at temp directories and drops a
// loadable mod into the mods dir.
func setupWorkspace(t *testing.T) (modsDir, reportPath string) {
	t.Helper()

	root := t.TempDir()
	modsDir = filepath.Join(root, "mods")
	testutil.MustMkdirAll(t, modsDir, 0o755)

	cfgDir := filepath.Join(root, "cfg")
	testutil.MustMkdirAll(t, cfgDir, 0o755)
	cfgContent := fmt.Sprintf("cache_dir: %q\nconfigs_dir: %q\nlog_level: %q\n",
		filepath.Join(root, "cache"), filepath.Join(root, "configs"), "error")
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), []byte(cfgContent), 0o644)
	config.SetConfigDirOverride(cfgDir)
	t.Cleanup(config.Reset)

	testutil.WriteModArchive(t, filepath.Join(modsDir, "solo.zip"), map[string][]byte{
		"data.json":  testutil.ManifestJSON("solo", "1.0.0", nil, "pak:solo_p.pak"),
		"solo_p.pak": []byte("assets"),
	})

	return modsDir, filepath.Join(root, "loadorder.toml")
}

func TestResolveCommandWritesReport(t *testing.T) {
	modsDir, reportPath := setupWorkspace(t)

	rootCmd.SetArgs([]string{"resolve", "--mods-dir", modsDir, "--report", reportPath})
	defer func() {
		modsDirFlag, reportFlag = "", ""
		rootCmd.SetArgs(nil)
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	report, err := loader.ReadReport(reportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if len(report.Mods) != 2 { // builtin + solo
		t.Errorf("report mods = %d, want 2", len(report.Mods))
	}
}

func TestResolveCommandFailsOnMissingDependency(t *testing.T) {
	modsDir, _ := setupWorkspace(t)
	testutil.WriteModArchive(t, filepath.Join(modsDir, "needy.zip"), map[string][]byte{
		"data.json": testutil.ManifestJSON("needy", "1.0.0", map[string]string{"ghost": ">=1.0.0"}),
	})

	rootCmd.SetArgs([]string{"resolve", "--mods-dir", modsDir})
	defer func() {
		modsDirFlag = ""
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	var se *loader.StageError
	if !errors.As(err, &se) || se.Stage != loader.StageResolution {
		t.Errorf("expected a resolution stage error, got %v", err)
	}
}

func TestCacheVerifyPrunesCorruptEntries(t *testing.T) {
	root := t.TempDir()
	cacheDir := filepath.Join(root, "cache")
	testutil.MustMkdirAll(t, cacheDir, 0o755)
	// An entry whose name cannot match its content digest.
	bogus := filepath.Join(cacheDir, "deadbeef")
	testutil.MustWriteFile(t, bogus, []byte("not matching"), 0o644)

	cfgDir := filepath.Join(root, "cfg")
	testutil.MustMkdirAll(t, cfgDir, 0o755)
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"),
		[]byte(fmt.Sprintf("cache_dir: %q\n", cacheDir)), 0o644)
	config.SetConfigDirOverride(cfgDir)
	t.Cleanup(config.Reset)

	rootCmd.SetArgs([]string{"cache", "verify", "--prune"})
	defer func() {
		pruneFlag = false
		rootCmd.SetArgs(nil)
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("cache verify failed: %v", err)
	}
	if _, err := os.Stat(bogus); !os.IsNotExist(err) {
		t.Error("corrupt entry was not pruned")
	}
}
