package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/go-condaplan"
	"github.com/albertocavalcante/go-condaplan/graph"
	"github.com/albertocavalcante/go-condaplan/lockfile"
	"github.com/albertocavalcante/go-condaplan/record"
)

var (
	headerColor  = color.New(color.FgBlue, color.Bold)
	linkColor    = color.New(color.FgGreen)
	unlinkColor  = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// planView is the serialized form of a plan.
type planView struct {
	Op        string              `json:"op" yaml:"op"`
	Prefix    string              `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Download  []string            `json:"download" yaml:"download"`
	Unlink    []string            `json:"unlink" yaml:"unlink"`
	Link      []string            `json:"link" yaml:"link"`
	Missing   []string            `json:"missing,omitempty" yaml:"missing,omitempty"`
	Broken    []string            `json:"broken,omitempty" yaml:"broken,omitempty"`
	Skipped   []condaplan.Skip    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Summary   *condaplan.PlanDiff `json:"summary,omitempty" yaml:"summary,omitempty"`
	NoChanges bool                `json:"no_changes" yaml:"no_changes"`
}

func newPlanView(p *condaplan.PackagePlan) planView {
	var summary *condaplan.PlanDiff
	if d := condaplan.DiffPlan(p); !d.IsEmpty() {
		summary = d
	}
	return planView{
		Op:        p.Op,
		Prefix:    p.Prefix,
		Download:  p.Downloads.Dists(),
		Unlink:    p.Deactivations.Dists(),
		Link:      p.Activations.Dists(),
		Missing:   p.Missing.Dists(),
		Broken:    p.Broken.Dists(),
		Skipped:   p.Skipped,
		Summary:   summary,
		NoChanges: p.IsEmpty(),
	}
}

// packageView is the serialized form of one index entry.
type packageView struct {
	Name     string   `json:"name" yaml:"name"`
	Version  string   `json:"version" yaml:"version"`
	Build    string   `json:"build" yaml:"build"`
	Channel  string   `json:"channel" yaml:"channel"`
	Depends  []string `json:"depends,omitempty" yaml:"depends,omitempty"`
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`
	Meta     bool     `json:"meta,omitempty" yaml:"meta,omitempty"`
}

func renderPlan(w io.Writer, format string, p *condaplan.PackagePlan) error {
	switch format {
	case formatJSON:
		return writeJSON(w, newPlanView(p))
	case formatYAML:
		return writeYAML(w, newPlanView(p))
	}

	if p.Prefix != "" {
		_, _ = headerColor.Fprintf(w, "%s plan for %s\n", p.Op, p.Prefix)
	} else {
		_, _ = headerColor.Fprintf(w, "%s plan\n", p.Op)
	}
	section := func(title string, pkgs record.Set, c *color.Color) {
		if len(pkgs) == 0 {
			return
		}
		fmt.Fprintf(w, "\n  %s:\n", title)
		for _, d := range pkgs.Dists() {
			_, _ = c.Fprintf(w, "    %s\n", d)
		}
	}
	section("download", p.Downloads, dimColor)
	section("unlink", p.Deactivations, unlinkColor)
	section("link", p.Activations, linkColor)
	section("missing dependencies", p.Missing, warningColor)
	section("broken dependents", p.Broken, warningColor)
	for _, s := range p.Skipped {
		_, _ = warningColor.Fprintf(w, "\n  skipped %s: %s\n", s.Name, s.Reason)
	}
	if p.IsEmpty() {
		_, _ = dimColor.Fprintln(w, "\n  nothing to do")
	} else if d := condaplan.DiffPlan(p); !d.IsEmpty() {
		fmt.Fprintf(w, "\n  %s\n", summaryLine(d))
	}
	return nil
}

// summaryLine renders counts such as "2 new, 1 upgraded".
func summaryLine(d *condaplan.PlanDiff) string {
	var parts []string
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	add(len(d.Added), "new")
	add(len(d.Upgraded), "upgraded")
	add(len(d.Downgraded), "downgraded")
	add(len(d.Changed), "changed")
	add(len(d.Removed), "removed")
	return strings.Join(parts, ", ")
}

// graphView is the serialized form of a dependency graph.
type graphView struct {
	Packages  []graphNodeView `json:"packages" yaml:"packages"`
	Roots     []string        `json:"roots" yaml:"roots"`
	LinkOrder []string        `json:"link_order" yaml:"link_order"`
}

type graphNodeView struct {
	Name         string   `json:"name" yaml:"name"`
	Dist         string   `json:"dist" yaml:"dist"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Dependents   []string `json:"dependents,omitempty" yaml:"dependents,omitempty"`
	Unsatisfied  []string `json:"unsatisfied,omitempty" yaml:"unsatisfied,omitempty"`
}

func renderGraph(w io.Writer, format string, g *graph.Graph) error {
	if format == formatText {
		_, err := fmt.Fprint(w, g.ToText())
		return err
	}

	view := graphView{Roots: g.Roots(), LinkOrder: g.LinkOrder()}
	for _, name := range view.LinkOrder {
		node := g.Get(name)
		nv := graphNodeView{
			Name:         name,
			Dist:         node.Package.Dist(),
			Dependencies: node.Dependencies,
			Dependents:   node.Dependents,
		}
		for _, d := range node.Unsatisfied {
			nv.Unsatisfied = append(nv.Unsatisfied, d.String())
		}
		view.Packages = append(view.Packages, nv)
	}
	if format == formatJSON {
		return writeJSON(w, view)
	}
	return writeYAML(w, view)
}

func renderLockDiff(w io.Writer, d *lockfile.Diff) {
	for _, dist := range d.Added {
		_, _ = linkColor.Fprintf(w, "  + %s\n", dist)
	}
	for _, dist := range d.Removed {
		_, _ = unlinkColor.Fprintf(w, "  - %s\n", dist)
	}
	for _, c := range d.Changed {
		_, _ = warningColor.Fprintf(w, "  ~ %s -> %s\n", c.Old, c.New)
	}
	if d.PinsChanged {
		_, _ = warningColor.Fprintln(w, "  ~ pinned specs differ")
	}
}

func renderPackages(w io.Writer, format string, pkgs []*record.Package) error {
	views := make([]packageView, len(pkgs))
	for i, p := range pkgs {
		deps := make([]string, len(p.Depends))
		for j, d := range p.Depends {
			deps[j] = d.String()
		}
		views[i] = packageView{
			Name: p.Name, Version: p.Version, Build: p.Build, Channel: p.Channel,
			Depends: deps, Features: p.Features, Meta: p.Meta,
		}
	}
	switch format {
	case formatJSON:
		return writeJSON(w, views)
	case formatYAML:
		return writeYAML(w, views)
	}
	for _, v := range views {
		fmt.Fprintf(w, "%-24s %-12s %-16s ", v.Name, v.Version, v.Build)
		_, _ = dimColor.Fprintln(w, v.Channel)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
