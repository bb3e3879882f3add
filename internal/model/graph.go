package model

import (
	"fmt"
	"sort"
	"strings"
)

// EmbedGraph is the inlining graph between models. An edge A -> B means the
// schema of A inlines the schema of B (B is embedded in A or is A's base).
type EmbedGraph struct {
	nodes map[string]*DocumentModel
	edges map[string][]string
}

// NewEmbedGraph builds the graph for a set of models
func NewEmbedGraph(models map[string]*DocumentModel) *EmbedGraph {
	graph := &EmbedGraph{
		nodes: models,
		edges: make(map[string][]string),
	}

	for name, m := range models {
		// Overrides are returned verbatim and never recurse
		if m.Override != nil {
			continue
		}
		graph.edges[name] = m.Targets()
	}

	return graph
}

// sortedNodes returns node names in ascending order so traversal is stable
func (g *EmbedGraph) sortedNodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectCycles returns every cycle found by a depth-first walk. Each cycle
// lists its members in traversal order without repeating the first one.
func (g *EmbedGraph) DetectCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var dfs func(node string, path []string)
	dfs = func(node string, path []string) {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for _, neighbor := range g.edges[node] {
			if _, known := g.nodes[neighbor]; !known {
				continue
			}
			if !visited[neighbor] {
				dfs(neighbor, path)
			} else if onStack[neighbor] {
				for i, n := range path {
					if n == neighbor {
						cycle := make([]string, len(path)-i)
						copy(cycle, path[i:])
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}

		onStack[node] = false
	}

	for _, node := range g.sortedNodes() {
		if !visited[node] {
			dfs(node, nil)
		}
	}

	return cycles
}

// TopologicalSort returns models with inlined dependencies first
func (g *EmbedGraph) TopologicalSort() ([]string, error) {
	outDegree := make(map[string]int, len(g.nodes))
	reverse := make(map[string][]string)
	for _, node := range g.sortedNodes() {
		for _, target := range g.edges[node] {
			if _, known := g.nodes[target]; !known {
				continue
			}
			outDegree[node]++
			reverse[target] = append(reverse[target], node)
		}
	}

	queue := []string{}
	for _, node := range g.sortedNodes() {
		if outDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dependent := range reverse[node] {
			outDegree[dependent]--
			if outDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(g.nodes) {
		if cycles := g.DetectCycles(); len(cycles) > 0 {
			return nil, fmt.Errorf("circular embedding detected:\n%s", FormatCycles(cycles))
		}
		return nil, fmt.Errorf("circular embedding detected")
	}

	return result, nil
}

// Dependents returns the models that inline the given model
func (g *EmbedGraph) Dependents(name string) []string {
	dependents := []string{}
	for _, node := range g.sortedNodes() {
		for _, dep := range g.edges[node] {
			if dep == name {
				dependents = append(dependents, node)
				break
			}
		}
	}
	return dependents
}

// FormatCycles renders cycles for error messages
func FormatCycles(cycles [][]string) string {
	var b strings.Builder
	for i, cycle := range cycles {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  Cycle %d: %s -> %s", i+1, strings.Join(cycle, " -> "), cycle[0])
	}
	return b.String()
}
