package condaplan

import (
	"sort"

	"github.com/albertocavalcante/go-condaplan/record"
)

// PackageChange is a package that joins or leaves the environment.
type PackageChange struct {
	// Name is the package name.
	Name string `json:"name" yaml:"name"`

	// Dist is the channel-qualified package identity.
	Dist string `json:"dist" yaml:"dist"`
}

// PackageReplacement is a linked package swapped for another build of the
// same name.
type PackageReplacement struct {
	// Name is the package name.
	Name string `json:"name" yaml:"name"`

	// Old is the Dist of the package being unlinked.
	Old string `json:"old" yaml:"old"`

	// New is the Dist of the package being linked.
	New string `json:"new" yaml:"new"`
}

// PlanDiff groups the link and unlink sets of a plan by package name.
//
// Example usage:
//
//	plan, _ := planner.Install(env, []string{"numpy=1.11"})
//	diff := DiffPlan(plan)
//	fmt.Printf("%d new, %d removed, %d upgraded\n",
//	    len(diff.Added), len(diff.Removed), len(diff.Upgraded))
type PlanDiff struct {
	// Added are activations with no deactivation of the same name.
	Added []PackageChange `json:"added,omitempty" yaml:"added,omitempty"`

	// Removed are deactivations with no activation of the same name.
	Removed []PackageChange `json:"removed,omitempty" yaml:"removed,omitempty"`

	// Upgraded are replacements by a newer version.
	Upgraded []PackageReplacement `json:"upgraded,omitempty" yaml:"upgraded,omitempty"`

	// Downgraded are replacements by an older version.
	Downgraded []PackageReplacement `json:"downgraded,omitempty" yaml:"downgraded,omitempty"`

	// Changed are replacements with an equal version: another build
	// number, build string or channel, as feature swaps produce.
	Changed []PackageReplacement `json:"changed,omitempty" yaml:"changed,omitempty"`
}

// IsEmpty reports whether the diff holds no entries.
func (d *PlanDiff) IsEmpty() bool {
	return d.TotalChanges() == 0
}

// TotalChanges returns the number of entries across all groups.
func (d *PlanDiff) TotalChanges() int {
	return len(d.Added) + len(d.Removed) + len(d.Upgraded) + len(d.Downgraded) + len(d.Changed)
}

// DiffPlan pairs a plan's activations and deactivations by name. Download
// plans, which link nothing, give an empty diff. A nil plan is treated as
// empty.
func DiffPlan(p *PackagePlan) *PlanDiff {
	diff := &PlanDiff{}
	if p == nil {
		return diff
	}

	unlinked := make(map[string]*record.Package, len(p.Deactivations))
	for _, pkg := range p.Deactivations {
		unlinked[pkg.Name] = pkg
	}
	linked := make(map[string]bool, len(p.Activations))

	for _, pkg := range p.Activations {
		linked[pkg.Name] = true
		old, replaced := unlinked[pkg.Name]
		if !replaced {
			diff.Added = append(diff.Added, PackageChange{Name: pkg.Name, Dist: pkg.Dist()})
			continue
		}
		r := PackageReplacement{Name: pkg.Name, Old: old.Dist(), New: pkg.Dist()}
		switch c := record.Compare(pkg, old); {
		case c > 0 && pkg.Version != old.Version:
			diff.Upgraded = append(diff.Upgraded, r)
		case c < 0 && pkg.Version != old.Version:
			diff.Downgraded = append(diff.Downgraded, r)
		default:
			diff.Changed = append(diff.Changed, r)
		}
	}

	for name, pkg := range unlinked {
		if !linked[name] {
			diff.Removed = append(diff.Removed, PackageChange{Name: name, Dist: pkg.Dist()})
		}
	}

	sortChanges(diff.Added)
	sortChanges(diff.Removed)
	sortReplacements(diff.Upgraded)
	sortReplacements(diff.Downgraded)
	sortReplacements(diff.Changed)
	return diff
}

func sortChanges(changes []PackageChange) {
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Name < changes[j].Name
	})
}

func sortReplacements(rs []PackageReplacement) {
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].Name < rs[j].Name
	})
}
