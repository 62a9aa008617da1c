package graph

import (
	"slices"
	"strings"

	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// Graph is the dependency graph of a package set.
type Graph struct {
	// Nodes holds one node per package name.
	Nodes map[string]*Node
}

// Node is one package in the graph.
type Node struct {
	// Package is the record the node stands for.
	Package *record.Package

	// Dependencies are the names of the packages satisfying this
	// package's dependency specs, sorted.
	Dependencies []string

	// Dependents are the names of the packages depending on this one,
	// sorted.
	Dependents []string

	// Unsatisfied are dependency specs no package in the set satisfies.
	Unsatisfied []spec.Spec
}

// Name returns the package name of the node.
func (n *Node) Name() string {
	return n.Package.Name
}

// DependencyChain is a path of packages, each depending on the next.
type DependencyChain struct {
	Path []string
}

// String renders the chain as "a -> b -> c".
func (c DependencyChain) String() string {
	return strings.Join(c.Path, " -> ")
}

// Stats summarizes a graph.
type Stats struct {
	// Packages is the number of nodes.
	Packages int

	// Edges is the number of dependency edges.
	Edges int

	// Roots is the number of packages nothing depends on.
	Roots int

	// MaxDepth is the longest dependency chain from a root, in edges.
	MaxDepth int

	// Unsatisfied is the number of dependency specs left unsatisfied.
	Unsatisfied int
}

// Build constructs the graph of pkgs. When pkgs holds several builds of one
// name, the newest wins.
func Build(pkgs record.Set) *Graph {
	g := &Graph{Nodes: make(map[string]*Node)}
	for _, p := range record.Newest(pkgs) {
		g.Nodes[p.Name] = &Node{Package: p}
	}

	for _, node := range g.Nodes {
		for _, d := range node.Package.Depends {
			dep, ok := g.Nodes[d.Name]
			if !ok || !dep.Package.Satisfies(d) {
				node.Unsatisfied = append(node.Unsatisfied, d)
				continue
			}
			if dep == node || slices.Contains(node.Dependencies, d.Name) {
				continue
			}
			node.Dependencies = append(node.Dependencies, d.Name)
			dep.Dependents = append(dep.Dependents, node.Name())
		}
	}
	for _, node := range g.Nodes {
		slices.Sort(node.Dependencies)
		slices.Sort(node.Dependents)
	}
	return g
}

// names returns the sorted node names.
func (g *Graph) names() []string {
	out := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
