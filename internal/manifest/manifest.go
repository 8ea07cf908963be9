// SPDX-License-Identifier: MPL-2.0

// Package manifest parses the data.json document found at the root of every
// mod archive into a structured mod descriptor.
package manifest

import (
	_ "embed"
	"fmt"

	"modkit/internal/cueutil"
	"modkit/internal/semver"
)

// FileName is the manifest file name inside every mod archive.
const FileName = "data.json"

// OrderLastTag is the symbolic dependency key that forces a mod to the end of
// the load order instead of declaring a real dependency.
const OrderLastTag = "@ORDER:LAST"

// Payload object types understood by the extractor.
const (
	// ObjectConfig is a mod configuration file, written once to a fixed location.
	ObjectConfig = "config"
	// ObjectPak is an asset package payload routed through the content cache.
	ObjectPak = "pak"
	// ObjectModule is a dynamic code module payload; at most one per mod.
	ObjectModule = "sml_mod"
	// ObjectCoreModule is an explicitly rejected capability.
	ObjectCoreModule = "core_mod"
)

//go:embed manifest_schema.cue
var manifestSchema string

type (
	// Object is one payload declaration from the manifest's objects array.
	Object struct {
		// Type is the declared payload type (see Object* constants).
		Type string `json:"type"`
		// Path is the payload's path inside the archive.
		Path string `json:"path"`
	}

	// Descriptor is the parsed identity/version/dependency metadata for a mod.
	Descriptor struct {
		// ModID is the unique string identity of the mod.
		ModID string
		// Name is the display name (defaults to ModID).
		Name string
		// Version is the mod's semantic version.
		Version semver.Version
		// Description is free-form text.
		Description string
		// Authors is the ordered author list.
		Authors []string
		// Dependencies maps required mod ids to version ranges.
		Dependencies map[string]semver.Range
		// OptionalDependencies maps optional mod ids to version ranges.
		OptionalDependencies map[string]semver.Range
		// Objects is the declared payload list, in manifest order.
		Objects []Object
		// LoadLast marks the mod for placement after all untagged mods.
		LoadLast bool
	}

	// document mirrors the raw manifest layout for CUE decoding.
	document struct {
		ModID                string            `json:"modid"`
		Name                 string            `json:"name"`
		Version              string            `json:"version"`
		Description          string            `json:"description"`
		Authors              []string          `json:"authors"`
		Objects              []Object          `json:"objects"`
		Dependencies         map[string]string `json:"dependencies"`
		OptionalDependencies map[string]string `json:"optionalDependencies"`
	}
)

// Parse parses manifest content into a Descriptor.
// filename is used in error messages only.
func Parse(data []byte, filename string) (*Descriptor, error) {
	doc, err := cueutil.ParseAndDecode[document](
		manifestSchema,
		data,
		"#Manifest",
		cueutil.WithFilename(filename),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return nil, err
	}

	version, err := semver.Parse(doc.Version)
	if err != nil {
		return nil, fmt.Errorf("%s: version: %w", filename, err)
	}

	desc := &Descriptor{
		ModID:       doc.ModID,
		Name:        doc.Name,
		Version:     version,
		Description: doc.Description,
		Authors:     doc.Authors,
		Objects:     doc.Objects,
	}
	if desc.Name == "" {
		desc.Name = desc.ModID
	}

	desc.Dependencies, desc.LoadLast, err = compileRanges(doc.Dependencies, filename, "dependencies")
	if err != nil {
		return nil, err
	}

	optional, taggedOptional, err := compileRanges(doc.OptionalDependencies, filename, "optionalDependencies")
	if err != nil {
		return nil, err
	}
	desc.OptionalDependencies = optional
	desc.LoadLast = desc.LoadLast || taggedOptional

	return desc, nil
}

// compileRanges compiles a modId -> range-expression map. The OrderLastTag
// pseudo-dependency is stripped and reported through the second return value.
func compileRanges(raw map[string]string, filename, field string) (map[string]semver.Range, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}

	loadLast := false
	out := make(map[string]semver.Range, len(raw))
	for modID, expr := range raw {
		if modID == OrderLastTag {
			loadLast = true
			continue
		}
		r, err := semver.ParseRange(expr)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %s.%s: %w", filename, field, modID, err)
		}
		out[modID] = r
	}
	return out, loadLast, nil
}

// Dummy builds a synthetic descriptor for entries that carry no manifest of
// their own (raw development mods and the built-in loader module).
func Dummy(modID string) *Descriptor {
	return &Descriptor{
		ModID:   modID,
		Name:    modID,
		Version: semver.MustParse("1.0.0"),
	}
}
