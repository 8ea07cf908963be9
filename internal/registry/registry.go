// SPDX-License-Identifier: MPL-2.0

// Package registry discovers candidate mods in the mods directory, enforces
// mod id uniqueness and classifies packaged versus raw mods.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modkit/internal/diag"
	"modkit/internal/manifest"
	"modkit/internal/semver"

	"github.com/charmbracelet/log"
)

// BuiltinModID is the mod id of the loader's own built-in module. It is
// always registered first and is exempt from the duplicate-id check.
const BuiltinModID = "modkit"

// Archive package extensions recognized during discovery.
const (
	extZip  = ".zip"
	extSmod = ".smod"
	extDll  = ".dll"
	extPak  = ".pak"
)

type (
	// ManifestLoader reads the manifest document out of a packaged mod archive.
	// The archive package provides the production implementation; tests may
	// substitute their own.
	ManifestLoader interface {
		ReadManifest(archivePath string) (*manifest.Descriptor, error)
	}

	// Registry holds the loading entries discovered during one resolution run.
	Registry struct {
		entries map[string]*LoadingEntry
		// order records mod ids in registration order; the sorted load order
		// breaks topological ties by this sequence.
		order  []string
		logger *log.Logger
	}
)

// New creates a Registry seeded with the built-in loader entry.
func New(loaderVersion semver.Version, logger *log.Logger) *Registry {
	r := &Registry{
		entries: make(map[string]*LoadingEntry),
		logger:  logger,
	}

	desc := manifest.Dummy(BuiltinModID)
	desc.Name = "modkit mod loader"
	desc.Description = "Mod resolution and loading engine"
	desc.Version = loaderVersion
	r.register(&LoadingEntry{
		Descriptor: desc,
		SourcePath: "<built-in>",
		Valid:      true,
	})

	return r
}

func (r *Registry) register(e *LoadingEntry) {
	id := e.ModID()
	if _, exists := r.entries[id]; !exists {
		r.order = append(r.order, id)
	}
	r.entries[id] = e
}

// Discover scans modsDir (non-recursively) and registers every candidate mod.
// Per-mod failures are recorded on the collector and do not stop the scan.
func (r *Registry) Discover(modsDir string, devMode bool, ml ManifestLoader, c *diag.Collector) error {
	files, err := os.ReadDir(modsDir)
	if err != nil {
		return fmt.Errorf("failed to read mods directory %s: %w", modsDir, err)
	}

	for _, f := range files {
		if !f.Type().IsRegular() {
			continue
		}
		path := filepath.Join(modsDir, f.Name())
		switch strings.ToLower(filepath.Ext(f.Name())) {
		case extZip, extSmod:
			r.discoverPackaged(path, ml, c)
		case extDll:
			r.discoverRaw(path, RawModule, devMode, c)
		case extPak:
			r.discoverRaw(path, RawPak, devMode, c)
		}
	}

	return nil
}

func (r *Registry) discoverPackaged(path string, ml ManifestLoader, c *diag.Collector) {
	desc, err := ml.ReadManifest(path)
	if err != nil {
		c.Fatalf(diag.CodeInvalidManifest, path, nil, "failed to load packaged mod: %v", err)
		return
	}
	r.CreateEntry(desc, path, c)
}

func (r *Registry) discoverRaw(path string, kind RawKind, devMode bool, c *diag.Collector) {
	if !devMode {
		c.Fatalf(diag.CodeRawModRejected, path, nil,
			"raw mods are not supported outside development mode")
		return
	}
	r.logger.Warn("loading development raw mod; dependencies and versioning won't work", "path", path)

	modID := modIDFromFile(path)
	entry := r.CreateRawEntry(modID, kind, path, c)
	if entry == nil {
		return
	}

	switch kind {
	case RawModule:
		if entry.DynamicModulePath != "" {
			c.Fatalf(diag.CodeDuplicateModule, path, []string{modID},
				"mod can only have one dynamic module at a time")
			return
		}
		entry.DynamicModulePath = path
	case RawPak:
		entry.PakPaths = append(entry.PakPaths, path)
	}
}

// CreateEntry registers a packaged mod under its descriptor's mod id.
// A second mod under an already-used id is rejected with DuplicateModId,
// leaving the first entry intact.
func (r *Registry) CreateEntry(desc *manifest.Descriptor, path string, c *diag.Collector) *LoadingEntry {
	if existing, ok := r.entries[desc.ModID]; ok && existing.Valid {
		c.Fatalf(diag.CodeDuplicateModID, path, []string{desc.ModID},
			"found duplicate mods with same mod id %s: %s and %s",
			desc.ModID, path, existing.SourcePath)
		return nil
	}

	entry := &LoadingEntry{
		Descriptor: desc,
		SourcePath: path,
		Valid:      true,
	}
	r.register(entry)
	return entry
}

// CreateRawEntry registers (or merges into) a raw mod entry under the
// inferred mod id. Raw entries carry a synthetic descriptor tagged load-last.
// A raw mod colliding with a packaged mod, or with a raw mod of the other
// kind, is rejected with RawModConflict.
func (r *Registry) CreateRawEntry(modID string, kind RawKind, path string, c *diag.Collector) *LoadingEntry {
	if existing, ok := r.entries[modID]; ok && existing.Valid {
		if !existing.IsRawMod {
			c.Fatalf(diag.CodeRawModConflict, path, []string{modID},
				"raw mod file conflicts with packaged mod %s", existing.SourcePath)
			return nil
		}
		if existing.RawKind != kind {
			c.Fatalf(diag.CodeRawModConflict, path, []string{modID},
				"raw mod file conflicts with raw mod of a different kind: %s", existing.SourcePath)
			return nil
		}
		return existing
	}

	desc := manifest.Dummy(modID)
	desc.LoadLast = true
	entry := &LoadingEntry{
		Descriptor: desc,
		SourcePath: path,
		Valid:      true,
		IsRawMod:   true,
		RawKind:    kind,
	}
	r.register(entry)
	return entry
}

// Get returns the entry registered under modID.
func (r *Registry) Get(modID string) (*LoadingEntry, bool) {
	e, ok := r.entries[modID]
	return e, ok
}

// Entries returns the valid entries in registration order, built-in first.
func (r *Registry) Entries() []*LoadingEntry {
	var out []*LoadingEntry
	for _, id := range r.order {
		if e := r.entries[id]; e.Valid {
			out = append(out, e)
		}
	}
	return out
}

// All returns every registered entry (valid or not) in registration order.
func (r *Registry) All() []*LoadingEntry {
	out := make([]*LoadingEntry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

// modIDFromFile infers a raw mod's id from its file name: for a dynamic
// module the substring before the first '-' (module name of e.g.
// "FactoryGame-Win64-Shipping.dll"), for an asset package the name with one
// exact trailing "_p" priority marker stripped.
func modIDFromFile(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	switch strings.ToLower(filepath.Ext(path)) {
	case extDll:
		if i := strings.Index(name, "-"); i >= 0 {
			return name[:i]
		}
		return name
	case extPak:
		return strings.TrimSuffix(name, "_p")
	}
	return name
}
