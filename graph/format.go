package graph

import (
	"bytes"
	"fmt"
	"strings"
)

const separatorWidth = 60

// ToDOT outputs the graph in Graphviz DOT format. Packages with unsatisfied
// dependencies are drawn in red.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer

	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box];\n\n")

	for _, name := range g.names() {
		node := g.Nodes[name]
		label := fmt.Sprintf("%s\\n%s", name, node.Package.Version)
		attrs := fmt.Sprintf(`label="%s"`, label)
		if len(node.Unsatisfied) > 0 {
			attrs += ", color=red"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", name, attrs)
	}

	buf.WriteString("\n")

	for _, name := range g.names() {
		for _, dep := range g.Nodes[name].Dependencies {
			fmt.Fprintf(&buf, "  %q -> %q;\n", name, dep)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ToText outputs a dependency tree below every root package, followed by
// any unsatisfied dependencies.
func (g *Graph) ToText() string {
	var buf bytes.Buffer

	stats := g.Stats()
	buf.WriteString("Dependency Graph\n")
	buf.WriteString(strings.Repeat("=", separatorWidth) + "\n\n")
	fmt.Fprintf(&buf, "Packages: %d\n", stats.Packages)
	fmt.Fprintf(&buf, "Dependencies: %d\n", stats.Edges)
	fmt.Fprintf(&buf, "Max depth: %d\n", stats.MaxDepth)
	buf.WriteString("\n")

	roots := g.Roots()
	if len(roots) == 0 {
		// Every package sits on a cycle.
		roots = g.names()
	}
	for _, root := range roots {
		g.printTree(&buf, root, "", true, make(map[string]bool))
	}

	var missing []string
	for _, name := range g.names() {
		for _, d := range g.Nodes[name].Unsatisfied {
			missing = append(missing, fmt.Sprintf("  %s needs %s", name, d))
		}
	}
	if len(missing) > 0 {
		buf.WriteString("\nUnsatisfied:\n")
		buf.WriteString(strings.Join(missing, "\n"))
		buf.WriteString("\n")
	}
	return buf.String()
}

func (g *Graph) printTree(buf *bytes.Buffer, name, prefix string, isLast bool, onPath map[string]bool) {
	node := g.Nodes[name]
	label := name + " " + node.Package.Version

	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if prefix == "" && len(onPath) == 0 {
		buf.WriteString(label)
	} else {
		buf.WriteString(prefix + connector + label)
	}

	if onPath[name] {
		buf.WriteString(" (circular)\n")
		return
	}
	buf.WriteString("\n")

	onPath[name] = true
	defer delete(onPath, name)

	childPrefix := prefix
	if len(onPath) > 1 {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}
	for i, dep := range node.Dependencies {
		g.printTree(buf, dep, childPrefix, i == len(node.Dependencies)-1, onPath)
	}
}
