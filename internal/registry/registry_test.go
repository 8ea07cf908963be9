// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modkit/internal/diag"
	"modkit/internal/manifest"
	"modkit/internal/semver"

	"github.com/charmbracelet/log"
)

// fakeLoader maps archive base names to descriptors without touching real zips.
type fakeLoader struct {
	descs map[string]*manifest.Descriptor
}

func (f *fakeLoader) ReadManifest(path string) (*manifest.Descriptor, error) {
	desc, ok := f.descs[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("data.json entry is missing in archive")
	}
	return desc, nil
}

func newTestRegistry() *Registry {
	return New(semver.MustParse("3.0.0"), log.New(io.Discard))
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return path
}

func TestNewRegistersBuiltin(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	entry, ok := r.Get(BuiltinModID)
	if !ok {
		t.Fatal("expected built-in entry")
	}
	if entry.Descriptor.Version.String() != "3.0.0" {
		t.Errorf("builtin version = %q", entry.Descriptor.Version)
	}
	if entries := r.Entries(); len(entries) != 1 || entries[0].ModID() != BuiltinModID {
		t.Errorf("entries = %v", entries)
	}
}

func TestDiscoverClassifiesByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "alpha.zip")
	touch(t, dir, "beta.smod")
	touch(t, dir, "notes.txt") // ignored
	if err := os.Mkdir(filepath.Join(dir, "subdir.zip"), 0o755); err != nil {
		t.Fatal(err)
	}

	ml := &fakeLoader{descs: map[string]*manifest.Descriptor{
		"alpha.zip":  manifest.Dummy("alpha"),
		"beta.smod":  manifest.Dummy("beta"),
		"subdir.zip": manifest.Dummy("never"),
	}}

	r := newTestRegistry()
	c := diag.NewCollector()
	if err := r.Discover(dir, false, ml, c); err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if c.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", c.All())
	}

	entries := r.Entries()
	if len(entries) != 3 { // builtin + alpha + beta
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ModID() != BuiltinModID {
		t.Errorf("builtin must come first, got %s", entries[0].ModID())
	}
}

func TestDiscoverMissingDirFails(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	err := r.Discover(filepath.Join(t.TempDir(), "absent"), false, &fakeLoader{}, diag.NewCollector())
	if err == nil {
		t.Fatal("expected error for a missing mods directory")
	}
}

func TestDiscoverInvalidManifestIsolatesMod(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "good.zip")
	touch(t, dir, "broken.zip")

	ml := &fakeLoader{descs: map[string]*manifest.Descriptor{
		"good.zip": manifest.Dummy("good"),
	}}

	r := newTestRegistry()
	c := diag.NewCollector()
	if err := r.Discover(dir, false, ml, c); err != nil {
		t.Fatalf("discover failed: %v", err)
	}

	fatal := c.Fatal()
	if len(fatal) != 1 || fatal[0].Code != diag.CodeInvalidManifest {
		t.Fatalf("expected one invalid_manifest diagnostic, got %v", fatal)
	}
	if _, ok := r.Get("good"); !ok {
		t.Error("sibling mod must still be registered")
	}
}

func TestCreateEntryDuplicateModID(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	c := diag.NewCollector()

	first := r.CreateEntry(manifest.Dummy("dup"), "/mods/first.zip", c)
	if first == nil {
		t.Fatal("first entry must register")
	}
	second := r.CreateEntry(manifest.Dummy("dup"), "/mods/second.zip", c)
	if second != nil {
		t.Error("second entry must be rejected")
	}

	fatal := c.Fatal()
	if len(fatal) != 1 || fatal[0].Code != diag.CodeDuplicateModID {
		t.Fatalf("expected duplicate_mod_id, got %v", fatal)
	}
	if !strings.Contains(fatal[0].Message, "first.zip") || !strings.Contains(fatal[0].Message, "second.zip") {
		t.Errorf("diagnostic must name both paths: %s", fatal[0].Message)
	}

	// First wins.
	entry, _ := r.Get("dup")
	if entry.SourcePath != "/mods/first.zip" {
		t.Errorf("kept entry = %s", entry.SourcePath)
	}
}

func TestDiscoverRawRejectedOutsideDevMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "loose.dll")

	r := newTestRegistry()
	c := diag.NewCollector()
	if err := r.Discover(dir, false, &fakeLoader{}, c); err != nil {
		t.Fatalf("discover failed: %v", err)
	}

	fatal := c.Fatal()
	if len(fatal) != 1 || fatal[0].Code != diag.CodeRawModRejected {
		t.Fatalf("expected raw_mod_rejected, got %v", fatal)
	}
}

func TestDiscoverRawInDevMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dllPath := touch(t, dir, "FactoryGame-Win64-Shipping.dll")
	pakPath := touch(t, dir, "Overhaul_p.pak")

	r := newTestRegistry()
	c := diag.NewCollector()
	if err := r.Discover(dir, true, &fakeLoader{}, c); err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if c.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", c.All())
	}

	// Dll id: substring before the first '-'.
	dll, ok := r.Get("FactoryGame")
	if !ok {
		t.Fatal("expected FactoryGame entry")
	}
	if !dll.IsRawMod || dll.RawKind != RawModule {
		t.Errorf("unexpected entry: %+v", dll)
	}
	if dll.DynamicModulePath != dllPath {
		t.Errorf("module path = %q", dll.DynamicModulePath)
	}
	if !dll.Descriptor.LoadLast {
		t.Error("raw mods must be tagged load-last")
	}

	// Pak id: one trailing "_p" stripped.
	pak, ok := r.Get("Overhaul")
	if !ok {
		t.Fatal("expected Overhaul entry")
	}
	if pak.RawKind != RawPak || len(pak.PakPaths) != 1 || pak.PakPaths[0] != pakPath {
		t.Errorf("unexpected entry: %+v", pak)
	}
}

func TestModIDFromFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file string
		want string
	}{
		{"FactoryGame-Win64-Shipping.dll", "FactoryGame"},
		{"Simple.dll", "Simple"},
		{"Overhaul_p.pak", "Overhaul"},
		{"Overhaul_p_p.pak", "Overhaul_p"},
		{"plain.pak", "plain"},
		// A '-' in a pak name is not a separator; only the "_p" suffix matters.
		{"night-vision_p.pak", "night-vision"},
	}

	for _, tt := range tests {
		if got := modIDFromFile(filepath.Join("/mods", tt.file)); got != tt.want {
			t.Errorf("modIDFromFile(%s) = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestRawModMergesSameKind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "Pack_p.pak")
	touch(t, dir, "Pack.pak")

	r := newTestRegistry()
	c := diag.NewCollector()
	if err := r.Discover(dir, true, &fakeLoader{}, c); err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if c.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", c.All())
	}

	entry, ok := r.Get("Pack")
	if !ok {
		t.Fatal("expected merged Pack entry")
	}
	if len(entry.PakPaths) != 2 {
		t.Errorf("expected both paks merged, got %v", entry.PakPaths)
	}
}

func TestRawModConflictWithPackaged(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	c := diag.NewCollector()
	r.CreateEntry(manifest.Dummy("clash"), "/mods/clash.zip", c)

	if entry := r.CreateRawEntry("clash", RawModule, "/mods/clash.dll", c); entry != nil {
		t.Error("raw mod must not merge into a packaged mod")
	}
	fatal := c.Fatal()
	if len(fatal) != 1 || fatal[0].Code != diag.CodeRawModConflict {
		t.Fatalf("expected raw_mod_conflict, got %v", fatal)
	}
}

func TestRawModConflictAcrossKinds(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	c := diag.NewCollector()

	if entry := r.CreateRawEntry("mixed", RawModule, "/mods/mixed.dll", c); entry == nil {
		t.Fatal("first raw entry must register")
	}
	if entry := r.CreateRawEntry("mixed", RawPak, "/mods/mixed.pak", c); entry != nil {
		t.Error("raw mod of the other kind must be rejected")
	}
	fatal := c.Fatal()
	if len(fatal) != 1 || fatal[0].Code != diag.CodeRawModConflict {
		t.Fatalf("expected raw_mod_conflict, got %v", fatal)
	}
}

func TestSecondRawModuleForSameID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "Twin-A.dll")
	touch(t, dir, "Twin-B.dll")

	r := newTestRegistry()
	c := diag.NewCollector()
	if err := r.Discover(dir, true, &fakeLoader{}, c); err != nil {
		t.Fatalf("discover failed: %v", err)
	}

	fatal := c.Fatal()
	if len(fatal) != 1 || fatal[0].Code != diag.CodeDuplicateModule {
		t.Fatalf("expected duplicate_module, got %v", fatal)
	}
}

func TestEntriesSkipsInvalid(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	c := diag.NewCollector()
	entry := r.CreateEntry(manifest.Dummy("doomed"), "/mods/doomed.zip", c)
	entry.Valid = false

	for _, e := range r.Entries() {
		if e.ModID() == "doomed" {
			t.Error("invalid entries must not appear in Entries()")
		}
	}
	if all := r.All(); len(all) != 2 {
		t.Errorf("All() must keep invalid entries, got %d", len(all))
	}
}
