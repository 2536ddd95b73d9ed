// Package graph builds and analyzes the dependency graph among a
// service template's node templates, derived from their requirement
// assignments. It backs the CLI's graph command, which renders the
// topology of a translated TOSCA document for inspection.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/edelwud/tf2tosca/internal/tosca/model"
)

// DependencyGraph represents the dependency relationships between node
// templates (from -> to means "from requires to").
type DependencyGraph struct {
	nodes        map[string]*Node
	edges        map[string][]string
	reverseEdges map[string][]string
}

// Node represents a node template in the dependency graph.
type Node struct {
	Name string
	Type string
	// InDegree is the number of requirements this node has.
	InDegree int
	// OutDegree is the number of nodes that require this one.
	OutDegree int
}

// NewDependencyGraph creates a new empty dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes:        make(map[string]*Node),
		edges:        make(map[string][]string),
		reverseEdges: make(map[string][]string),
	}
}

// BuildFromServiceTemplate builds a graph from a service template's
// node templates, reading each requirement's node target. Requirements
// whose target is a list-form [name, index] pair resolve to the name
// element; requirements left unresolved (nil Node) are skipped.
func BuildFromServiceTemplate(svc *model.ServiceTemplate) *DependencyGraph {
	g := NewDependencyGraph()

	if svc == nil || svc.NodeTemplates == nil {
		return g
	}

	for _, name := range svc.NodeTemplates.Keys() {
		tmpl, _ := svc.NodeTemplates.Get(name)
		g.AddNode(name, tmpl.Type)
	}

	for _, name := range svc.NodeTemplates.Keys() {
		tmpl, _ := svc.NodeTemplates.Get(name)
		for _, req := range tmpl.Requirements {
			target := requirementTargetName(req.Assignment.Node)
			if target == "" {
				continue
			}
			g.AddEdge(name, target)
		}
	}

	return g
}

// requirementTargetName extracts the node-template name from a
// requirement's Node value, which is either a bare string address or a
// [name, index] pair.
func requirementTargetName(node model.Value) string {
	switch v := node.(type) {
	case string:
		return v
	case []any:
		if len(v) == 2 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// AddNode adds a node template to the graph.
func (g *DependencyGraph) AddNode(name, typ string) {
	if _, exists := g.nodes[name]; !exists {
		g.nodes[name] = &Node{Name: name, Type: typ}
	}
}

// AddEdge adds a dependency edge (from requires to). Edges to or from
// unknown nodes are ignored, mirroring a requirement target that
// resolution left unmapped.
func (g *DependencyGraph) AddEdge(from, to string) {
	if _, exists := g.nodes[from]; !exists {
		return
	}
	if _, exists := g.nodes[to]; !exists {
		return
	}

	for _, existing := range g.edges[from] {
		if existing == to {
			return
		}
	}

	g.edges[from] = append(g.edges[from], to)
	g.reverseEdges[to] = append(g.reverseEdges[to], from)

	g.nodes[from].InDegree++
	g.nodes[to].OutDegree++
}

// GetDependencies returns the direct requirements of a node.
func (g *DependencyGraph) GetDependencies(name string) []string {
	return g.edges[name]
}

// GetDependents returns nodes that require the given node.
func (g *DependencyGraph) GetDependents(name string) []string {
	return g.reverseEdges[name]
}

// GetAllDependencies returns all requirements (transitive) of a node.
func (g *DependencyGraph) GetAllDependencies(name string) []string {
	visited := make(map[string]bool)
	var result []string

	var visit func(id string)
	visit = func(id string) {
		for _, dep := range g.edges[id] {
			if !visited[dep] {
				visited[dep] = true
				result = append(result, dep)
				visit(dep)
			}
		}
	}

	visit(name)
	return result
}

// GetAllDependents returns all nodes that require the given node (transitive).
func (g *DependencyGraph) GetAllDependents(name string) []string {
	visited := make(map[string]bool)
	var result []string

	var visit func(id string)
	visit = func(id string) {
		for _, dep := range g.reverseEdges[id] {
			if !visited[dep] {
				visited[dep] = true
				result = append(result, dep)
				visit(dep)
			}
		}
	}

	visit(name)
	return result
}

// TopologicalSort returns node names in dependency order (requirements
// first). Returns an error if the graph has a cycle.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int)
	for id := range g.nodes {
		inDegree[id] = len(g.edges[id])
	}

	var queue []string
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dep := range g.reverseEdges[node] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, fmt.Errorf("cycle detected in node dependency graph")
	}

	return result, nil
}

// ExecutionLevels returns node names grouped by level, where nodes at
// the same level share no dependency relationship with each other.
func (g *DependencyGraph) ExecutionLevels() ([][]string, error) {
	levels := make(map[string]int)

	sorted, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	for _, nodeID := range sorted {
		maxDepLevel := -1
		for _, dep := range g.edges[nodeID] {
			if levels[dep] > maxDepLevel {
				maxDepLevel = levels[dep]
			}
		}
		levels[nodeID] = maxDepLevel + 1
	}

	maxLevel := 0
	for _, level := range levels {
		if level > maxLevel {
			maxLevel = level
		}
	}

	result := make([][]string, maxLevel+1)
	for nodeID, level := range levels {
		result[level] = append(result[level], nodeID)
	}

	for i := range result {
		sort.Strings(result[i])
	}

	return result, nil
}

// DetectCycles returns all cycles in the graph.
func (g *DependencyGraph) DetectCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make([]string, 0)

	var dfs func(node string) bool
	dfs = func(node string) bool {
		visited[node] = true
		recStack[node] = true
		path = append(path, node)

		for _, neighbor := range g.edges[node] {
			if !visited[neighbor] {
				if dfs(neighbor) {
					return true
				}
			} else if recStack[neighbor] {
				cycleStart := -1
				for i, n := range path {
					if n == neighbor {
						cycleStart = i
						break
					}
				}
				if cycleStart >= 0 {
					cycle := make([]string, len(path)-cycleStart)
					copy(cycle, path[cycleStart:])
					cycles = append(cycles, cycle)
				}
			}
		}

		path = path[:len(path)-1]
		recStack[node] = false
		return false
	}

	for node := range g.nodes {
		if !visited[node] {
			dfs(node)
		}
	}

	return cycles
}

// ToDOT exports the graph in DOT format for visualization.
func (g *DependencyGraph) ToDOT() string {
	var sb strings.Builder

	sb.WriteString("digraph tosca_nodes {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n\n")

	names := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		names = append(names, id)
	}
	sort.Strings(names)

	for _, id := range names {
		label := fmt.Sprintf("%s\\n%s", id, g.nodes[id].Type)
		sb.WriteString(fmt.Sprintf("  \"%s\" [label=\"%s\"];\n", id, label))
	}

	sb.WriteString("\n")

	for _, from := range names {
		for _, to := range g.edges[from] {
			sb.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\";\n", from, to))
		}
	}

	sb.WriteString("}\n")

	return sb.String()
}

// GraphStats summarizes the shape of a dependency graph.
type GraphStats struct {
	TotalNodes   int
	TotalEdges   int
	RootNodes    int // nodes with no requirements
	LeafNodes    int // nodes with no dependents
	MaxDepth     int
	AverageDepth float64
	HasCycles    bool
	CycleCount   int
}

// GetStats returns statistics about the dependency graph.
func (g *DependencyGraph) GetStats() GraphStats {
	stats := GraphStats{
		TotalNodes: len(g.nodes),
	}

	for _, edges := range g.edges {
		stats.TotalEdges += len(edges)
	}

	for id := range g.nodes {
		if len(g.edges[id]) == 0 {
			stats.RootNodes++
		}
		if len(g.reverseEdges[id]) == 0 {
			stats.LeafNodes++
		}
	}

	levels, err := g.ExecutionLevels()
	if err == nil {
		stats.MaxDepth = len(levels) - 1
		if len(levels) > 0 {
			totalDepth := 0
			for level, nodes := range levels {
				totalDepth += level * len(nodes)
			}
			stats.AverageDepth = float64(totalDepth) / float64(len(g.nodes))
		}
	}

	cycles := g.DetectCycles()
	stats.HasCycles = len(cycles) > 0
	stats.CycleCount = len(cycles)

	return stats
}

// Nodes returns all nodes in the graph.
func (g *DependencyGraph) Nodes() map[string]*Node {
	return g.nodes
}

// GetNode returns a specific node by name.
func (g *DependencyGraph) GetNode(name string) *Node {
	return g.nodes[name]
}
