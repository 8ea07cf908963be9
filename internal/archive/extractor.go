// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modkit/internal/cache"
	"modkit/internal/manifest"
	"modkit/internal/registry"

	"github.com/charmbracelet/log"
)

// Sentinel errors for per-object extraction failures. The loader maps them
// onto the diagnostic taxonomy; callers check with errors.Is.
var (
	// ErrDuplicateModule indicates a second dynamic module declared for one mod.
	ErrDuplicateModule = errors.New("mod can only have one dynamic module at a time")
	// ErrUnsupportedFeature indicates a core_mod payload, an explicitly rejected capability.
	ErrUnsupportedFeature = errors.New("core mods are not supported by this loader")
	// ErrUnknownObjectType indicates an unrecognized payload object type.
	ErrUnknownObjectType = errors.New("unknown archive object type")
)

// Extractor routes declared payload objects out of mod archives into the
// content cache, or into the fixed per-mod config slot.
type Extractor struct {
	cache      cache.Cache
	configsDir string
	logger     *log.Logger
}

// NewExtractor creates an Extractor writing config payloads under configsDir
// and everything else through c.
func NewExtractor(c cache.Cache, configsDir string, logger *log.Logger) *Extractor {
	return &Extractor{cache: c, configsDir: configsDir, logger: logger}
}

// ConfigPath returns the fixed config location for modID under configsDir.
func ConfigPath(configsDir, modID string) string {
	return filepath.Join(configsDir, modID+".cfg")
}

// ConfigPath returns the fixed config location for modID.
func (e *Extractor) ConfigPath(modID string) string {
	return ConfigPath(e.configsDir, modID)
}

// ExtractAll applies ExtractObject to every object declared in the entry's
// manifest, in declaration order. The first failure aborts extraction for
// this mod only; sibling mods are unaffected.
func (e *Extractor) ExtractAll(a Archive, entry *registry.LoadingEntry) error {
	for _, obj := range entry.Descriptor.Objects {
		if err := e.ExtractObject(a, obj.Type, obj.Path, entry); err != nil {
			return err
		}
	}
	return nil
}

// ExtractObject materializes one declared payload:
//
//   - "config" payloads bypass the cache and are written once to the mod's
//     fixed config path; an existing config is never overwritten.
//   - "pak" and "sml_mod" payloads are stored content-addressed; identical
//     bytes extracted from different archives share one cache entry.
//   - "core_mod" payloads are rejected, as is any unknown type.
func (e *Extractor) ExtractObject(a Archive, objType, objPath string, entry *registry.LoadingEntry) error {
	data, err := a.Open(objPath)
	if err != nil {
		return err
	}

	switch objType {
	case manifest.ObjectConfig:
		return e.extractConfig(entry.ModID(), data)

	case manifest.ObjectPak:
		digest, path, err := e.cache.Put(data)
		if err != nil {
			return err
		}
		e.logger.Debug("extracted pak payload", "mod", entry.ModID(), "digest", digest)
		entry.PakPaths = append(entry.PakPaths, path)
		return nil

	case manifest.ObjectModule:
		if entry.DynamicModulePath != "" {
			return ErrDuplicateModule
		}
		digest, path, err := e.cache.Put(data)
		if err != nil {
			return err
		}
		e.logger.Debug("extracted dynamic module", "mod", entry.ModID(), "digest", digest)
		entry.DynamicModulePath = path
		return nil

	case manifest.ObjectCoreModule:
		return ErrUnsupportedFeature

	default:
		return fmt.Errorf("%w: %q", ErrUnknownObjectType, objType)
	}
}

// extractConfig writes the config payload to the mod's fixed config path,
// first write wins: a config placed by an earlier run is preserved.
func (e *Extractor) extractConfig(modID string, data []byte) error {
	path := e.ConfigPath(modID)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	if err := os.MkdirAll(e.configsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create configs directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
