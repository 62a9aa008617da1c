package lockfile

import "sort"

// Diff lists the differences between two lockfiles, by package name.
type Diff struct {
	// Added are Dists locked only in the new lockfile.
	Added []string

	// Removed are Dists locked only in the old lockfile.
	Removed []string

	// Changed are names locked to a different build.
	Changed []EntryChange

	// PinsChanged reports whether the pinned specs differ.
	PinsChanged bool
}

// EntryChange is a package locked to different builds.
type EntryChange struct {
	Name string
	Old  string
	New  string
}

// IsEmpty returns true if there are no differences.
func (d *Diff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0 && !d.PinsChanged
}

// Compare compares two lockfiles and returns the differences. Channel order
// is not compared.
func Compare(old, new *Lockfile) *Diff {
	diff := &Diff{}

	oldByName := make(map[string]Entry)
	for _, e := range old.Packages {
		oldByName[e.Name] = e
	}

	for _, e := range new.Packages {
		prev, exists := oldByName[e.Name]
		if !exists {
			diff.Added = append(diff.Added, e.Dist())
			continue
		}
		if prev.Dist() != e.Dist() {
			diff.Changed = append(diff.Changed, EntryChange{Name: e.Name, Old: prev.Dist(), New: e.Dist()})
		}
		delete(oldByName, e.Name)
	}
	for _, e := range oldByName {
		diff.Removed = append(diff.Removed, e.Dist())
	}

	diff.PinsChanged = !samePins(old.Pinned, new.Pinned)

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Slice(diff.Changed, func(i, j int) bool {
		return diff.Changed[i].Name < diff.Changed[j].Name
	})
	return diff
}

func samePins(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		if seen[s] == 0 {
			return false
		}
		seen[s]--
	}
	return true
}
