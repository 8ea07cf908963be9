// SPDX-License-Identifier: MPL-2.0

// Package resolve builds the dependency graph over the discovered mod
// entries, validates version constraints and produces the final
// deterministic load order.
package resolve

import (
	"errors"
	"maps"
	"slices"

	"modkit/internal/dag"
	"modkit/internal/diag"
	"modkit/internal/registry"
	"modkit/internal/semver"
)

// Graph is the dependency graph over one run's valid loading entries.
// Nodes are dense integer indices 1..N assigned in registration order.
type Graph struct {
	g       *dag.Graph
	entries []*registry.LoadingEntry
	index   map[string]int
}

// BuildGraph assigns node indices, validates every declared dependency and
// adds a "must load before" edge for each satisfied one. Every entry is
// checked before any fatal decision is made: unmet required dependencies are
// recorded as fatal diagnostics, unmet optional ones as informational, and
// in both cases no edge is added.
func BuildGraph(entries []*registry.LoadingEntry, c *diag.Collector) *Graph {
	gr := &Graph{
		g:       dag.New(),
		entries: entries,
		index:   make(map[string]int, len(entries)),
	}

	byID := make(map[string]*registry.LoadingEntry, len(entries))
	for i, e := range entries {
		idx := i + 1
		gr.index[e.ModID()] = idx
		byID[e.ModID()] = e
		gr.g.AddNode(idx)
	}

	for _, e := range entries {
		gr.checkDependencies(e, e.Descriptor.Dependencies, byID, false, c)
		gr.checkDependencies(e, e.Descriptor.OptionalDependencies, byID, true, c)
	}

	return gr
}

// checkDependencies walks one entry's dependency map in sorted order so that
// diagnostics come out deterministically.
func (gr *Graph) checkDependencies(e *registry.LoadingEntry, deps map[string]semver.Range,
	byID map[string]*registry.LoadingEntry, optional bool, c *diag.Collector) {

	selfID := e.ModID()
	for _, depID := range slices.Sorted(maps.Keys(deps)) {
		depRange := deps[depID]
		dep, installed := byID[depID]

		if !installed {
			record(c, diag.CodeMissingDependency, optional, selfID, depID,
				"%s requires %s (%s): not installed", selfID, depID, depRange)
			continue
		}
		if !depRange.Matches(dep.Descriptor.Version) {
			record(c, diag.CodeVersionMismatch, optional, selfID, depID,
				"%s requires %s (%s): unsupported version: %s",
				selfID, depID, depRange, dep.Descriptor.Version)
			continue
		}

		// The dependency must be placed before its dependent.
		gr.g.AddEdge(gr.index[depID], gr.index[selfID])
	}
}

func record(c *diag.Collector, code diag.Code, optional bool, selfID, depID, format string, args ...any) {
	if optional {
		c.Infof(code, "", []string{selfID, depID}, format, args...)
	} else {
		c.Fatalf(code, "", []string{selfID, depID}, format, args...)
	}
}

// Sort produces the final load order: a deterministic topological sort with
// ties broken by registration order, followed by a finalization pass that
// moves every load-last entry to the end. Both the mutual order of load-last
// entries and the mutual order of all other entries are preserved.
// A cycle is fatal: a CycleDetected diagnostic names the implicated mods and
// no ordering is returned.
func (gr *Graph) Sort(c *diag.Collector) []*registry.LoadingEntry {
	order, err := gr.g.TopologicalSort()
	if err != nil {
		var cycleErr *dag.CycleError
		if errors.As(err, &cycleErr) {
			ids := make([]string, len(cycleErr.Cycle))
			for i, idx := range cycleErr.Cycle {
				ids[i] = gr.entries[idx-1].ModID()
			}
			c.Fatalf(diag.CodeCycleDetected, "", ids,
				"dependency cycle found in sorting graph at mod: %s", ids[0])
			return nil
		}
		c.Fatalf(diag.CodeCycleDetected, "", nil, "sorting failed: %v", err)
		return nil
	}

	sorted := make([]*registry.LoadingEntry, 0, len(order))
	var loadLast []*registry.LoadingEntry
	for _, idx := range order {
		e := gr.entries[idx-1]
		if e.Descriptor.LoadLast {
			loadLast = append(loadLast, e)
			continue
		}
		sorted = append(sorted, e)
	}

	return append(sorted, loadLast...)
}
