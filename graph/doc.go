// Package graph provides a dependency graph over a set of package records.
//
// Nodes are keyed by package name, since an environment links at most one
// build of each name. An edge a -> b exists when a declares a dependency
// that the linked b satisfies; dependencies nothing in the set satisfies
// are kept on the node as unsatisfied specs.
//
// # Building a Graph
//
//	env, _ := environment.Load("/opt/envs/py27")
//	g := graph.Build(env.Linked())
//
// # Querying the Graph
//
//	// Why is numpy linked?
//	chains, _ := g.WhyIncluded("numpy")
//
//	// Dependencies first, as packages must be linked
//	order := g.LinkOrder()
//
// # Output Formats
//
//	dot := g.ToDOT()
//	text := g.ToText()
package graph
