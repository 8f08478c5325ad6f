// Package graph tracks dependency edges between bean names and detects
// cycles before instantiation begins.
package graph

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DependencyGraph is an adjacency-list graph over bean names.
type DependencyGraph struct {
	mu    sync.RWMutex
	edges map[string][]string
}

// New creates an empty dependency graph.
func New() *DependencyGraph {
	return &DependencyGraph{edges: make(map[string][]string)}
}

// AddEdges records that bean name depends on each of deps. Duplicate edges
// are collapsed.
func (g *DependencyGraph) AddEdges(name string, deps ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	existing := g.edges[name]
	for _, dep := range deps {
		found := false
		for _, e := range existing {
			if e == dep {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, dep)
		}
	}
	g.edges[name] = existing
}

// Remove drops a bean and all edges into or out of it.
func (g *DependencyGraph) Remove(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.edges, name)
	for n, deps := range g.edges {
		filtered := deps[:0]
		for _, d := range deps {
			if d != name {
				filtered = append(filtered, d)
			}
		}
		g.edges[n] = filtered
	}
}

// Clear drops every node and edge.
func (g *DependencyGraph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges = make(map[string][]string)
}

// DetectCycles reports the first dependency cycle found, or nil if the
// graph is acyclic. Node order is deterministic so error messages are
// stable.
func (g *DependencyGraph) DetectCycles() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := make([]string, 0, len(g.edges))
	for name := range g.edges {
		names = append(names, name)
	}
	sort.Strings(names)

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(names))

	var stack []string
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			// Trim the stack to the cycle itself.
			start := 0
			for i, n := range stack {
				if n == name {
					start = i
					break
				}
			}
			return &CircularDependencyError{Path: append([]string(nil), stack[start:]...)}
		}

		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range g.edges[name] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// CircularDependencyError reports a dependency cycle between bean names.
type CircularDependencyError struct {
	Path []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Path) == 0 {
		return "circular bean dependency detected"
	}
	cycle := append(append([]string(nil), e.Path...), e.Path[0])
	return fmt.Sprintf("circular bean dependency: %s", strings.Join(cycle, " -> "))
}
