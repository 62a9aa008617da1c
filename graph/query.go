package graph

import (
	"fmt"
	"slices"
)

// Get returns the node for name, or nil if not found.
func (g *Graph) Get(name string) *Node {
	return g.Nodes[name]
}

// Contains returns true if the graph has a package called name.
func (g *Graph) Contains(name string) bool {
	_, ok := g.Nodes[name]
	return ok
}

// DirectDeps returns the direct dependencies of name.
func (g *Graph) DirectDeps(name string) []string {
	if node := g.Nodes[name]; node != nil {
		return slices.Clone(node.Dependencies)
	}
	return nil
}

// DirectDependents returns the packages that directly depend on name.
func (g *Graph) DirectDependents(name string) []string {
	if node := g.Nodes[name]; node != nil {
		return slices.Clone(node.Dependents)
	}
	return nil
}

// TransitiveDeps returns all transitive dependencies of name in
// breadth-first order.
func (g *Graph) TransitiveDeps(name string) []string {
	return g.walk(name, func(n *Node) []string { return n.Dependencies })
}

// TransitiveDependents returns all packages that transitively depend on
// name, closest first.
func (g *Graph) TransitiveDependents(name string) []string {
	return g.walk(name, func(n *Node) []string { return n.Dependents })
}

func (g *Graph) walk(start string, next func(*Node) []string) []string {
	result := make([]string, 0)
	visited := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, n := range next(node) {
			if !visited[n] {
				visited[n] = true
				result = append(result, n)
				queue = append(queue, n)
			}
		}
	}
	return result
}

// Path finds the shortest dependency path from one package to another.
// Returns nil if no path exists.
func (g *Graph) Path(from, to string) []string {
	if g.Nodes[from] == nil || g.Nodes[to] == nil {
		return nil
	}
	if from == to {
		return []string{from}
	}

	type queueItem struct {
		name string
		path []string
	}
	visited := map[string]bool{from: true}
	queue := []queueItem{{name: from, path: []string{from}}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dep := range g.Nodes[current.name].Dependencies {
			if visited[dep] {
				continue
			}
			path := append(slices.Clone(current.path), dep)
			if dep == to {
				return path
			}
			visited[dep] = true
			queue = append(queue, queueItem{name: dep, path: path})
		}
	}
	return nil
}

// AllPaths finds every cycle-free dependency path from one package to
// another. This can be expensive for large graphs with many paths.
func (g *Graph) AllPaths(from, to string) [][]string {
	var result [][]string
	g.findAllPaths(from, to, []string{from}, make(map[string]bool), &result)
	return result
}

func (g *Graph) findAllPaths(current, target string, path []string, visited map[string]bool, result *[][]string) {
	if current == target {
		*result = append(*result, slices.Clone(path))
		return
	}

	visited[current] = true
	defer func() { visited[current] = false }()

	node := g.Nodes[current]
	if node == nil {
		return
	}
	for _, dep := range node.Dependencies {
		if !visited[dep] {
			g.findAllPaths(dep, target, append(path, dep), visited, result)
		}
	}
}

// WhyIncluded returns every chain from a root package down to name. A root
// package yields a single chain holding only itself.
func (g *Graph) WhyIncluded(name string) ([]DependencyChain, error) {
	if g.Nodes[name] == nil {
		return nil, fmt.Errorf("package %q not found in graph", name)
	}

	var chains []DependencyChain
	for _, root := range g.Roots() {
		for _, path := range g.AllPaths(root, name) {
			chains = append(chains, DependencyChain{Path: path})
		}
	}
	return chains, nil
}

// Roots returns the packages nothing depends on, sorted.
func (g *Graph) Roots() []string {
	var roots []string
	for _, name := range g.names() {
		if len(g.Nodes[name].Dependents) == 0 {
			roots = append(roots, name)
		}
	}
	return roots
}

// Leaves returns the packages without dependencies, sorted.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, name := range g.names() {
		if len(g.Nodes[name].Dependencies) == 0 {
			leaves = append(leaves, name)
		}
	}
	return leaves
}

// LinkOrder returns every package name with dependencies before their
// dependents, breaking ties by name. Packages on a cycle follow all others,
// by name.
func (g *Graph) LinkOrder() []string {
	remaining := make(map[string]int, len(g.Nodes))
	for name, node := range g.Nodes {
		remaining[name] = len(node.Dependencies)
	}

	order := make([]string, 0, len(g.Nodes))
	ready := g.Leaves()
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)
		delete(remaining, name)

		var unblocked []string
		for _, dependent := range g.Nodes[name].Dependents {
			if _, ok := remaining[dependent]; !ok {
				continue
			}
			remaining[dependent]--
			if remaining[dependent] == 0 {
				unblocked = append(unblocked, dependent)
			}
		}
		ready = append(ready, unblocked...)
		slices.Sort(ready)
	}

	var cyclic []string
	for name := range remaining {
		cyclic = append(cyclic, name)
	}
	slices.Sort(cyclic)
	return append(order, cyclic...)
}

// HasCycles returns true if the graph contains cycles.
func (g *Graph) HasCycles() bool {
	return len(g.FindCycles()) > 0
}

// FindCycles returns the cycles of the graph, each starting from the node
// where the search first entered it.
func (g *Graph) FindCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	path := make([]string, 0)

	var visit func(name string)
	visit = func(name string) {
		visited[name] = true
		onStack[name] = true
		path = append(path, name)

		for _, dep := range g.Nodes[name].Dependencies {
			if !visited[dep] {
				visit(dep)
			} else if onStack[dep] {
				start := slices.Index(path, dep)
				cycles = append(cycles, slices.Clone(path[start:]))
			}
		}

		path = path[:len(path)-1]
		onStack[name] = false
	}

	for _, name := range g.names() {
		if !visited[name] {
			visit(name)
		}
	}
	return cycles
}

// Stats returns statistics about the graph.
func (g *Graph) Stats() Stats {
	stats := Stats{Packages: len(g.Nodes)}
	for _, node := range g.Nodes {
		stats.Edges += len(node.Dependencies)
		stats.Unsatisfied += len(node.Unsatisfied)
	}
	roots := g.Roots()
	stats.Roots = len(roots)

	depths := make(map[string]int)
	onPath := make(map[string]bool)
	var dfs func(name string, depth int)
	dfs = func(name string, depth int) {
		if onPath[name] {
			return
		}
		if d, ok := depths[name]; ok && d >= depth {
			return
		}
		depths[name] = depth
		stats.MaxDepth = max(stats.MaxDepth, depth)

		onPath[name] = true
		for _, dep := range g.Nodes[name].Dependencies {
			dfs(dep, depth+1)
		}
		delete(onPath, name)
	}
	for _, root := range roots {
		dfs(root, 0)
	}
	return stats
}
