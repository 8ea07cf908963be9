// SPDX-License-Identifier: MPL-2.0

// Package diag defines the structured diagnostics produced by the mod
// resolution pipeline. Diagnostics are collected per stage and returned to
// callers (rather than written to stderr) for consistent rendering policy;
// a non-empty fatal set at stage end halts the pipeline.
package diag

import (
	"fmt"
	"strings"
)

const (
	// SeverityInfo indicates an informational diagnostic that does not stop the run.
	SeverityInfo Severity = "info"
	// SeverityFatal indicates a diagnostic that is fatal to its stage.
	SeverityFatal Severity = "fatal"
)

// Machine-readable diagnostic codes.
const (
	// CodeInvalidManifest indicates a manifest that could not be parsed or validated.
	CodeInvalidManifest Code = "invalid_manifest"
	// CodeMissingObject indicates a declared payload object absent from its archive.
	CodeMissingObject Code = "missing_object"
	// CodeUnknownObjectType indicates an unrecognized payload object type.
	CodeUnknownObjectType Code = "unknown_object_type"
	// CodeUnsupportedFeature indicates an explicitly rejected capability (core mods).
	CodeUnsupportedFeature Code = "unsupported_feature"
	// CodeDuplicateModule indicates a second dynamic module declared for one mod.
	CodeDuplicateModule Code = "duplicate_module"
	// CodeDuplicateModID indicates two mods registered under the same mod id.
	CodeDuplicateModID Code = "duplicate_mod_id"
	// CodeRawModConflict indicates a raw mod colliding with an incompatible entry.
	CodeRawModConflict Code = "raw_mod_conflict"
	// CodeRawModRejected indicates a raw mod found outside development mode.
	CodeRawModRejected Code = "raw_mod_rejected"
	// CodeExtractionFailed indicates an IO failure while materializing payloads.
	CodeExtractionFailed Code = "extraction_failed"
	// CodeMissingDependency indicates a required dependency that is not installed.
	CodeMissingDependency Code = "missing_dependency"
	// CodeVersionMismatch indicates a dependency present at an unsupported version.
	CodeVersionMismatch Code = "version_mismatch"
	// CodeCycleDetected indicates a dependency cycle in the mod graph.
	CodeCycleDetected Code = "cycle_detected"
	// CodeNotLoaded indicates a query for a mod that is not loaded.
	CodeNotLoaded Code = "not_loaded"
	// CodeLoadFailed indicates a collaborator failure while loading a module.
	CodeLoadFailed Code = "load_failed"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Code is a machine-readable diagnostic identifier.
	Code string

	// Diagnostic represents a structured pipeline diagnostic.
	Diagnostic struct {
		// Severity is the diagnostic level (info or fatal).
		Severity Severity
		// Code is the machine-readable identifier (e.g. "duplicate_mod_id").
		Code Code
		// Message is the human-readable description.
		Message string
		// ModIDs names the offending mod id(s) (optional).
		ModIDs []string
		// Path is the file path associated with this diagnostic (optional).
		Path string
	}

	// Collector accumulates diagnostics for one pipeline stage.
	// All entries are checked before any fatal decision is made: callers add
	// freely and consult HasFatal at stage end.
	Collector struct {
		diagnostics []Diagnostic
	}
)

// String renders the diagnostic for logs and CLI output.
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", d.Code, d.Message)
	if len(d.ModIDs) > 0 {
		fmt.Fprintf(&b, " (mod: %s)", strings.Join(d.ModIDs, ", "))
	}
	if d.Path != "" {
		fmt.Fprintf(&b, " (%s)", d.Path)
	}
	return b.String()
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends a diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.diagnostics = append(c.diagnostics, d)
}

// Fatalf records a fatal diagnostic with a formatted message.
func (c *Collector) Fatalf(code Code, path string, modIDs []string, format string, args ...any) {
	c.Add(Diagnostic{
		Severity: SeverityFatal,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		ModIDs:   modIDs,
		Path:     path,
	})
}

// Infof records an informational diagnostic with a formatted message.
func (c *Collector) Infof(code Code, path string, modIDs []string, format string, args ...any) {
	c.Add(Diagnostic{
		Severity: SeverityInfo,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		ModIDs:   modIDs,
		Path:     path,
	})
}

// All returns every collected diagnostic in insertion order.
func (c *Collector) All() []Diagnostic {
	return c.diagnostics
}

// Fatal returns the fatal subset in insertion order.
func (c *Collector) Fatal() []Diagnostic {
	var fatal []Diagnostic
	for _, d := range c.diagnostics {
		if d.Severity == SeverityFatal {
			fatal = append(fatal, d)
		}
	}
	return fatal
}

// HasFatal reports whether any fatal diagnostic has been collected.
func (c *Collector) HasFatal() bool {
	for _, d := range c.diagnostics {
		if d.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// Reset clears the collector for the next stage.
func (c *Collector) Reset() {
	c.diagnostics = nil
}
