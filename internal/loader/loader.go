// SPDX-License-Identifier: MPL-2.0

// Package loader orchestrates the mod resolution pipeline: discovery,
// payload extraction, dependency resolution, load order sorting and the
// final handoff to the host's module loader and asset mounter. Each stage
// collects its full batch of diagnostics before deciding whether to halt.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"modkit/internal/archive"
	"modkit/internal/cache"
	"modkit/internal/diag"
	"modkit/internal/manifest"
	"modkit/internal/registry"
	"modkit/internal/resolve"
	"modkit/internal/semver"

	"github.com/charmbracelet/log"
)

// Pipeline stages, in execution order.
const (
	StageDiscovery  Stage = "discovery"
	StageExtraction Stage = "extraction"
	StageResolution Stage = "dependency resolution"
	StageSorting    Stage = "sorting"
	StageHandoff    Stage = "handoff"
)

type (
	// Stage names one phase of the resolution pipeline.
	Stage string

	// StageError is returned when a stage ends with fatal diagnostics.
	// Diagnostics holds the stage's complete batch, informational entries
	// included, so callers can render everything that was found.
	StageError struct {
		Stage       Stage
		Diagnostics []diag.Diagnostic
	}

	// NotLoadedError is returned by LoadedMod for an unknown or unloaded mod id.
	NotLoadedError struct {
		ModID string
	}

	// ModuleHandle is the host's opaque reference to a loaded dynamic module.
	ModuleHandle any

	// ModuleLoader loads a mod's dynamic module into the host process.
	ModuleLoader interface {
		LoadDynamicModule(ctx context.Context, modID, path string) (ModuleHandle, error)
	}

	// PakMounter mounts a mod's asset package into the host's asset system.
	PakMounter interface {
		MountAssetPackage(ctx context.Context, modID, path string) error
	}

	// ModuleRef says whether a loaded mod carries a dynamic module. It is a
	// sealed two-variant type: HasModule or PakOnly.
	ModuleRef interface {
		isModuleRef()
	}

	// HasModule is the ModuleRef of a mod whose dynamic module was loaded.
	HasModule struct {
		Handle ModuleHandle
	}

	// PakOnly is the ModuleRef of a mod with no dynamic module.
	PakOnly struct{}

	// ModContainer is one successfully loaded mod.
	ModContainer struct {
		Descriptor *manifest.Descriptor
		SourcePath string
		Ref        ModuleRef
		PakPaths   []string
		// ConfigPath is the mod's config slot; empty when no config payload
		// was declared.
		ConfigPath string
	}

	// Options configures a Handler. ModsDir, CacheDir and ConfigsDir are
	// required; everything else has a usable default.
	Options struct {
		ModsDir    string
		CacheDir   string
		ConfigsDir string
		// Development accepts raw .dll/.pak files without a manifest.
		Development bool
		// Version is reported as the built-in loader entry's version.
		Version semver.Version
		// ReportPath, when set, receives the load order report after a
		// successful run.
		ReportPath string

		ModuleLoader ModuleLoader
		PakMounter   PakMounter
		Logger       *log.Logger
		// Cache overrides the disk cache rooted at CacheDir (used by tests).
		Cache cache.Cache
	}

	// Handler runs the pipeline and answers queries about the loaded set.
	Handler struct {
		opts   Options
		logger *log.Logger
		cache  cache.Cache

		loaded map[string]*ModContainer
		order  []*ModContainer
	}
)

func (e *StageError) Error() string {
	fatal := 0
	for _, d := range e.Diagnostics {
		if d.Severity == diag.SeverityFatal {
			fatal++
		}
	}
	return fmt.Sprintf("mod loading failed during %s: %d fatal diagnostic(s)", e.Stage, fatal)
}

func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("mod %s is not loaded", e.ModID)
}

func (HasModule) isModuleRef() {}
func (PakOnly) isModuleRef()   {}

// HasModuleRef reports whether the container carries a loaded dynamic module.
func (m *ModContainer) HasModuleRef() bool {
	_, ok := m.Ref.(HasModule)
	return ok
}

// NopModuleLoader is a ModuleLoader that records nothing and never fails.
// The cached module path doubles as the handle.
type NopModuleLoader struct{}

func (NopModuleLoader) LoadDynamicModule(_ context.Context, _, path string) (ModuleHandle, error) {
	return path, nil
}

// NopPakMounter is a PakMounter that never fails.
type NopPakMounter struct{}

func (NopPakMounter) MountAssetPackage(context.Context, string, string) error {
	return nil
}

// New creates a Handler. A disk cache is created under opts.CacheDir unless
// opts.Cache is set.
func New(opts Options) (*Handler, error) {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "loader"})
	}
	if opts.ModuleLoader == nil {
		opts.ModuleLoader = NopModuleLoader{}
	}
	if opts.PakMounter == nil {
		opts.PakMounter = NopPakMounter{}
	}

	c := opts.Cache
	if c == nil {
		disk, err := cache.NewDisk(opts.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize extraction cache: %w", err)
		}
		c = disk
	}

	return &Handler{
		opts:   opts,
		logger: opts.Logger,
		cache:  c,
		loaded: make(map[string]*ModContainer),
	}, nil
}

// LoadMods runs the full pipeline. On failure it returns a StageError naming
// the stage that halted the run together with that stage's diagnostics; the
// loaded set stays empty.
func (h *Handler) LoadMods(ctx context.Context) error {
	c := diag.NewCollector()

	// Discovery.
	reg := registry.New(h.opts.Version, h.logger)
	if err := reg.Discover(h.opts.ModsDir, h.opts.Development, archive.ManifestReader{}, c); err != nil {
		return err
	}
	if err := h.endStage(StageDiscovery, c); err != nil {
		return err
	}

	// Extraction.
	h.extractAll(reg, c)
	if err := h.endStage(StageExtraction, c); err != nil {
		return err
	}

	// Dependency resolution.
	entries := reg.Entries()
	graph := resolve.BuildGraph(entries, c)
	if err := h.endStage(StageResolution, c); err != nil {
		return err
	}

	// Sorting.
	sorted := graph.Sort(c)
	if err := h.endStage(StageSorting, c); err != nil {
		return err
	}

	// Handoff.
	containers := h.handoff(ctx, sorted, c)
	if err := h.endStage(StageHandoff, c); err != nil {
		return err
	}

	for _, mc := range containers {
		h.loaded[mc.Descriptor.ModID] = mc
		h.order = append(h.order, mc)
	}
	h.logger.Info("mod loading complete", "mods", len(h.order))

	if h.opts.ReportPath != "" {
		if err := WriteReport(h.opts.ReportPath, h.opts.Version, h.order); err != nil {
			return fmt.Errorf("failed to write load order report: %w", err)
		}
	}

	return nil
}

// extractAll materializes every packaged mod's declared payloads. A failure
// invalidates only the offending mod; its siblings continue.
func (h *Handler) extractAll(reg *registry.Registry, c *diag.Collector) {
	extractor := archive.NewExtractor(h.cache, h.opts.ConfigsDir, h.logger)

	for _, entry := range reg.Entries() {
		if entry.IsRawMod || entry.ModID() == registry.BuiltinModID {
			continue
		}

		a, err := archive.OpenZip(entry.SourcePath)
		if err != nil {
			entry.Valid = false
			c.Fatalf(diag.CodeExtractionFailed, entry.SourcePath, []string{entry.ModID()},
				"failed to open mod archive: %v", err)
			continue
		}
		err = extractor.ExtractAll(a, entry)
		a.Close()
		if err != nil {
			entry.Valid = false
			c.Fatalf(extractionCode(err), entry.SourcePath, []string{entry.ModID()},
				"failed to extract mod payloads: %v", err)
		}
	}
}

// extractionCode maps the extractor's sentinel errors onto diagnostic codes.
func extractionCode(err error) diag.Code {
	switch {
	case errors.Is(err, archive.ErrObjectMissing):
		return diag.CodeMissingObject
	case errors.Is(err, archive.ErrDuplicateModule):
		return diag.CodeDuplicateModule
	case errors.Is(err, archive.ErrUnsupportedFeature):
		return diag.CodeUnsupportedFeature
	case errors.Is(err, archive.ErrUnknownObjectType):
		return diag.CodeUnknownObjectType
	default:
		return diag.CodeExtractionFailed
	}
}

// handoff hands every sorted entry to the collaborators, in order. A
// collaborator failure records a fatal diagnostic and skips that mod, but the
// rest of the batch is still attempted so the full damage is visible.
func (h *Handler) handoff(ctx context.Context, sorted []*registry.LoadingEntry, c *diag.Collector) []*ModContainer {
	var containers []*ModContainer

	for _, entry := range sorted {
		mc, ok := h.loadOne(ctx, entry, c)
		if !ok {
			continue
		}
		containers = append(containers, mc)
	}

	return containers
}

func (h *Handler) loadOne(ctx context.Context, entry *registry.LoadingEntry, c *diag.Collector) (*ModContainer, bool) {
	modID := entry.ModID()
	mc := &ModContainer{
		Descriptor: entry.Descriptor,
		SourcePath: entry.SourcePath,
		Ref:        PakOnly{},
		PakPaths:   slices.Clone(entry.PakPaths),
	}

	if entry.DynamicModulePath != "" {
		handle, err := h.opts.ModuleLoader.LoadDynamicModule(ctx, modID, entry.DynamicModulePath)
		if err != nil {
			c.Fatalf(diag.CodeLoadFailed, entry.DynamicModulePath, []string{modID},
				"failed to load dynamic module: %v", err)
			return nil, false
		}
		mc.Ref = HasModule{Handle: handle}
		h.logger.Debug("loaded dynamic module", "mod", modID)
	}

	for _, pak := range entry.PakPaths {
		if err := h.opts.PakMounter.MountAssetPackage(ctx, modID, pak); err != nil {
			c.Fatalf(diag.CodeLoadFailed, pak, []string{modID},
				"failed to mount asset package: %v", err)
			return nil, false
		}
		h.logger.Debug("mounted asset package", "mod", modID, "pak", pak)
	}

	if declaresConfig(entry.Descriptor) {
		mc.ConfigPath = archive.ConfigPath(h.opts.ConfigsDir, modID)
	}

	return mc, true
}

func declaresConfig(desc *manifest.Descriptor) bool {
	for _, obj := range desc.Objects {
		if obj.Type == manifest.ObjectConfig {
			return true
		}
	}
	return false
}

// endStage logs the stage's batch and converts fatal diagnostics into a
// StageError. The collector is reset for the next stage.
func (h *Handler) endStage(stage Stage, c *diag.Collector) error {
	for _, d := range c.All() {
		if d.Severity == diag.SeverityFatal {
			h.logger.Error(d.Message, "stage", stage, "code", d.Code)
		} else {
			h.logger.Info(d.Message, "stage", stage, "code", d.Code)
		}
	}

	if c.HasFatal() {
		return &StageError{
			Stage:       stage,
			Diagnostics: slices.Clone(c.All()),
		}
	}

	c.Reset()
	return nil
}

// LoadedMods returns the loaded mods in load order.
func (h *Handler) LoadedMods() []*ModContainer {
	return slices.Clone(h.order)
}

// IsModLoaded reports whether modID is part of the loaded set.
func (h *Handler) IsModLoaded(modID string) bool {
	_, ok := h.loaded[modID]
	return ok
}

// LoadedMod returns the container for modID, or a NotLoadedError.
func (h *Handler) LoadedMod(modID string) (*ModContainer, error) {
	mc, ok := h.loaded[modID]
	if !ok {
		return nil, &NotLoadedError{ModID: modID}
	}
	return mc, nil
}
