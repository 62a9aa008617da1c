package graph

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

func pkg(name, ver, build string, deps ...string) *record.Package {
	p := &record.Package{Name: name, Version: ver, Build: build, Channel: "defaults"}
	for _, d := range deps {
		p.Depends = append(p.Depends, spec.MustParse(d))
	}
	return p
}

// createTestGraph builds:
//
//	scipy 0.18.1
//	├── numpy 1.11.0
//	│   └── python 2.7.11
//	└── python 2.7.11
//	pyyaml 3.12
//	└── python 2.7.11
func createTestGraph() *Graph {
	return Build(record.NewSet(
		pkg("python", "2.7.11", "0"),
		pkg("numpy", "1.11.0", "py27_0", "python 2.7*"),
		pkg("scipy", "0.18.1", "np111py27_0", "numpy 1.11*", "python 2.7*"),
		pkg("pyyaml", "3.12", "py27_0", "python 2.7*", "yaml 0.1*"),
	))
}

func TestBuild(t *testing.T) {
	g := createTestGraph()
	if len(g.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(g.Nodes))
	}
	if got := g.DirectDeps("scipy"); !slices.Equal(got, []string{"numpy", "python"}) {
		t.Errorf("DirectDeps(scipy) = %v", got)
	}
	if got := g.DirectDependents("python"); !slices.Equal(got, []string{"numpy", "pyyaml", "scipy"}) {
		t.Errorf("DirectDependents(python) = %v", got)
	}
	unsat := g.Get("pyyaml").Unsatisfied
	if len(unsat) != 1 || unsat[0].Name != "yaml" {
		t.Errorf("pyyaml Unsatisfied = %v", unsat)
	}
	if !g.Contains("numpy") || g.Contains("yaml") {
		t.Error("Contains() gave the wrong answer")
	}
	if g.DirectDeps("missing") != nil {
		t.Error("DirectDeps() of an unknown package should be nil")
	}
}

func TestBuildMismatchAndDuplicates(t *testing.T) {
	g := Build(record.NewSet(
		pkg("python", "3.6.0", "0"),
		pkg("python", "2.7.11", "0"),
		pkg("numpy", "1.11.0", "py27_0", "python 2.7*"),
	))
	if got := g.Get("python").Package.Version; got != "3.6.0" {
		t.Errorf("python = %s, want the newest build", got)
	}
	if len(g.DirectDeps("numpy")) != 0 || len(g.Get("numpy").Unsatisfied) != 1 {
		t.Error("numpy's python 2.7 dependency should be unsatisfied by python 3.6")
	}
}

func TestTransitive(t *testing.T) {
	g := createTestGraph()
	if got := g.TransitiveDeps("scipy"); !slices.Equal(got, []string{"numpy", "python"}) {
		t.Errorf("TransitiveDeps(scipy) = %v", got)
	}
	if got := g.TransitiveDependents("python"); !slices.Equal(got, []string{"numpy", "pyyaml", "scipy"}) {
		t.Errorf("TransitiveDependents(python) = %v", got)
	}
	if got := g.TransitiveDependents("scipy"); len(got) != 0 {
		t.Errorf("TransitiveDependents(scipy) = %v", got)
	}
}

func TestPath(t *testing.T) {
	g := createTestGraph()
	tests := []struct {
		from, to string
		want     []string
	}{
		{"scipy", "python", []string{"scipy", "python"}},
		{"scipy", "numpy", []string{"scipy", "numpy"}},
		{"numpy", "numpy", []string{"numpy"}},
		{"python", "scipy", nil},
		{"scipy", "missing", nil},
	}
	for _, tt := range tests {
		if got := g.Path(tt.from, tt.to); !slices.Equal(got, tt.want) {
			t.Errorf("Path(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
	if got := g.AllPaths("scipy", "python"); len(got) != 2 {
		t.Errorf("AllPaths(scipy, python) = %v, want 2 paths", got)
	}
}

func TestWhyIncluded(t *testing.T) {
	g := createTestGraph()
	chains, err := g.WhyIncluded("python")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, c := range chains {
		got = append(got, c.String())
	}
	want := []string{"pyyaml -> python", "scipy -> numpy -> python", "scipy -> python"}
	slices.Sort(got)
	if !slices.Equal(got, want) {
		t.Errorf("WhyIncluded(python) = %v, want %v", got, want)
	}

	chains, err = g.WhyIncluded("scipy")
	if err != nil || len(chains) != 1 || chains[0].String() != "scipy" {
		t.Errorf("WhyIncluded(scipy) = %v, %v", chains, err)
	}
	if _, err := g.WhyIncluded("missing"); err == nil {
		t.Error("WhyIncluded(missing) should fail")
	}
}

func TestRootsLeavesAndOrder(t *testing.T) {
	g := createTestGraph()
	if got := g.Roots(); !slices.Equal(got, []string{"pyyaml", "scipy"}) {
		t.Errorf("Roots() = %v", got)
	}
	if got := g.Leaves(); !slices.Equal(got, []string{"python"}) {
		t.Errorf("Leaves() = %v", got)
	}
	if got := g.LinkOrder(); !slices.Equal(got, []string{"python", "numpy", "pyyaml", "scipy"}) {
		t.Errorf("LinkOrder() = %v", got)
	}
}

func TestCycles(t *testing.T) {
	g := createTestGraph()
	if g.HasCycles() {
		t.Error("test graph has no cycles")
	}

	cyclic := Build(record.NewSet(
		pkg("a", "1.0", "0", "b"),
		pkg("b", "1.0", "0", "a"),
		pkg("c", "1.0", "0"),
		pkg("d", "1.0", "0", "a"),
	))
	if !cyclic.HasCycles() {
		t.Fatal("expected a cycle")
	}
	if got := cyclic.FindCycles(); !reflect.DeepEqual(got, [][]string{{"a", "b"}}) {
		t.Errorf("FindCycles() = %v", got)
	}
	if got := cyclic.LinkOrder(); !slices.Equal(got, []string{"c", "a", "b", "d"}) {
		t.Errorf("LinkOrder() = %v", got)
	}
}

func TestStats(t *testing.T) {
	got := createTestGraph().Stats()
	want := Stats{Packages: 4, Edges: 4, Roots: 2, MaxDepth: 2, Unsatisfied: 1}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestToText(t *testing.T) {
	text := createTestGraph().ToText()
	want := `pyyaml 3.12
└── python 2.7.11
scipy 0.18.1
├── numpy 1.11.0
│   └── python 2.7.11
└── python 2.7.11
`
	if !strings.Contains(text, want) {
		t.Errorf("ToText() missing tree:\n%s", text)
	}
	if !strings.Contains(text, "Packages: 4") || !strings.Contains(text, "pyyaml needs yaml 0.1*") {
		t.Errorf("ToText() missing stats or unsatisfied deps:\n%s", text)
	}
}

func TestToDOT(t *testing.T) {
	dot := createTestGraph().ToDOT()
	for _, want := range []string{
		"digraph dependencies {",
		`"scipy" -> "numpy";`,
		`"numpy" -> "python";`,
		`"pyyaml" [label="pyyaml\n3.12", color=red];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
}
