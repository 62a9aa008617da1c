package condaplan

import (
	"fmt"
	"slices"
	"strings"

	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/record"
)

// Skip records a requested update that produced no change.
type Skip struct {
	// Name is the package name that was requested.
	Name string `json:"name"`

	// Reason explains why no update was planned.
	Reason string `json:"reason"`
}

// PackagePlan is the result of one planner call: what to download, link and
// unlink, plus informational sets. A plan is a disposable value; the planner
// that built it never touches it again.
type PackagePlan struct {
	// Op is the operation that produced the plan, e.g. "install".
	Op string

	// Prefix is the target environment prefix. Empty for download plans.
	Prefix string

	// Downloads are packages to fetch into the local cache.
	Downloads record.Set

	// Activations are packages to link into the prefix.
	Activations record.Set

	// Deactivations are packages to unlink from the prefix.
	Deactivations record.Set

	// Missing are dependencies of activated packages that are neither
	// linked nor activated. Activation does not resolve them.
	Missing record.Set

	// Broken are linked packages whose dependencies the plan leaves
	// unsatisfied.
	Broken record.Set

	// Skipped lists requested updates that were not planned.
	Skipped []Skip
}

func newPlan(op, prefix string) *PackagePlan {
	return &PackagePlan{
		Op:            op,
		Prefix:        prefix,
		Downloads:     make(record.Set),
		Activations:   make(record.Set),
		Deactivations: make(record.Set),
		Missing:       make(record.Set),
		Broken:        make(record.Set),
	}
}

// IsEmpty reports whether the plan changes nothing: no downloads,
// activations or deactivations.
func (p *PackagePlan) IsEmpty() bool {
	return len(p.Downloads) == 0 && len(p.Activations) == 0 && len(p.Deactivations) == 0
}

// Validate checks the plan against env: nothing is both activated and
// deactivated, and the resulting environment holds at most one package of
// each name. A nil env skips the second check.
func (p *PackagePlan) Validate(env *environment.Environment) error {
	if both := p.Activations.Intersect(p.Deactivations); len(both) > 0 {
		return fmt.Errorf("%w: packages both activated and deactivated: %s",
			ErrInconsistentPlan, strings.Join(both.Dists(), ", "))
	}
	if env == nil {
		return nil
	}
	if dups := duplicateNames(p.Result(env)); len(dups) > 0 {
		return fmt.Errorf("%w: %s", ErrInconsistentPlan, strings.Join(dups, "; "))
	}
	return nil
}

// Result returns the linked set env would hold after applying the plan:
// activations plus the linked packages not deactivated.
func (p *PackagePlan) Result(env *environment.Environment) record.Set {
	return env.Linked().Difference(p.Deactivations).Union(p.Activations)
}

// duplicateNames lists "name: v1, v2" for every name held more than once.
func duplicateNames(s record.Set) []string {
	var out []string
	for name, pkgs := range s.ByName() {
		if len(pkgs) < 2 {
			continue
		}
		versions := make([]string, len(pkgs))
		for i, pkg := range pkgs {
			versions[i] = pkg.Version + "=" + pkg.Build
		}
		out = append(out, name+": "+strings.Join(versions, ", "))
	}
	slices.Sort(out)
	return out
}

// String renders a short, deterministic summary of the plan.
func (p *PackagePlan) String() string {
	var b strings.Builder
	section := func(title string, s record.Set) {
		if len(s) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s:\n", title)
		for _, pkg := range s.Sorted() {
			fmt.Fprintf(&b, "    %s\n", pkg.Dist())
		}
	}
	section("download", p.Downloads)
	section("unlink", p.Deactivations)
	section("link", p.Activations)
	section("missing", p.Missing)
	section("broken", p.Broken)
	for _, s := range p.Skipped {
		fmt.Fprintf(&b, "skipped %s: %s\n", s.Name, s.Reason)
	}
	if b.Len() == 0 {
		return "nothing to do\n"
	}
	return b.String()
}
