// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed acyclic graph operations for topological
// sorting and cycle detection. Mod entries are represented as dense integer
// indices so that iteration order (and therefore the produced load order) is
// deterministic for a given registration sequence.
package dag

import (
	"fmt"
	"strconv"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle contains the node indices that sit on a cycle, in insertion
		// order. Nodes that merely depend on a cycle are not included.
		Cycle []int
	}

	// Graph is a directed graph over integer node indices.
	// Edges represent "must load before" relationships: an edge from A to B
	// means A must be placed before B in the sorted output.
	Graph struct {
		// adjacency maps each node to its outgoing neighbors.
		adjacency map[int][]int
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []int
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[int]bool
	}
)

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, n := range e.Cycle {
		parts[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(parts, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[int][]int),
		nodeSet:   make(map[int]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(index int) {
	if g.nodeSet[index] {
		return
	}
	g.nodeSet[index] = true
	g.nodes = append(g.nodes, index)
}

// AddEdge adds a directed edge from -> to, meaning "from" must load before "to".
// Both nodes are implicitly added if they don't exist.
func (g *Graph) AddEdge(from, to int) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// TopologicalSort returns a valid load order using Kahn's algorithm.
// Returns CycleError if the graph contains a cycle; no partial order is
// produced in that case. The returned order is deterministic: nodes at the
// same topological level appear in the order they were first added.
func (g *Graph) TopologicalSort() ([]int, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	// Compute in-degrees.
	inDegree := make(map[int]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	// Seed the queue with nodes that have no incoming edges, in insertion order.
	queue := make([]int, 0)
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []int
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, &CycleError{Cycle: g.cycleMembers(inDegree)}
	}

	return result, nil
}

// cycleMembers narrows the nodes Kahn's algorithm left unsorted down to the
// ones that actually sit on a cycle. The leftover set also contains nodes
// that are merely downstream of a cycle; those have no edge back into the
// set, so they are peeled off until a fixpoint is reached. The result keeps
// insertion order.
func (g *Graph) cycleMembers(inDegree map[int]int) []int {
	leftover := make(map[int]bool, len(g.nodes))
	for _, node := range g.nodes {
		if inDegree[node] > 0 {
			leftover[node] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for node := range leftover {
			keep := false
			for _, neighbor := range g.adjacency[node] {
				if leftover[neighbor] {
					keep = true
					break
				}
			}
			if !keep {
				delete(leftover, node)
				changed = true
			}
		}
	}

	members := make([]int, 0, len(leftover))
	for _, node := range g.nodes {
		if leftover[node] {
			members = append(members, node)
		}
	}
	return members
}
