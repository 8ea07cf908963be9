// SPDX-License-Identifier: MPL-2.0

package registry

import "modkit/internal/manifest"

const (
	// RawModule is a loose dynamic code module (development artifact).
	RawModule RawKind = "module"
	// RawPak is a loose asset package (development artifact).
	RawPak RawKind = "pak"
)

type (
	// RawKind classifies a raw development mod by its payload.
	RawKind string

	// LoadingEntry is the mutable in-progress record tracking one mod through
	// the pipeline: created during discovery, payload paths appended during
	// extraction, read-only during resolution and sorting.
	LoadingEntry struct {
		// Descriptor is the mod's parsed (or synthetic) metadata.
		Descriptor *manifest.Descriptor
		// SourcePath is the file the mod came from.
		SourcePath string
		// Valid is false once the mod has been excluded by a per-mod error.
		Valid bool
		// IsRawMod marks loose development artifacts.
		IsRawMod bool
		// RawKind is set for raw mods only.
		RawKind RawKind
		// DynamicModulePath is the materialized dynamic module, at most one.
		DynamicModulePath string
		// PakPaths are the materialized asset packages, in declaration order.
		PakPaths []string
	}
)

// ModID returns the entry's mod id.
func (e *LoadingEntry) ModID() string {
	return e.Descriptor.ModID
}
