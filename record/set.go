package record

import (
	"cmp"
	"slices"
	"strings"
)

// Set is a set of packages keyed by Dist. The zero value is not usable;
// create sets with NewSet.
type Set map[string]*Package

// NewSet returns a set containing pkgs.
func NewSet(pkgs ...*Package) Set {
	s := make(Set, len(pkgs))
	for _, p := range pkgs {
		s.Add(p)
	}
	return s
}

// Add inserts p into the set.
func (s Set) Add(p *Package) {
	s[p.Dist()] = p
}

// AddAll inserts every package of o into the set.
func (s Set) AddAll(o Set) {
	for k, p := range o {
		s[k] = p
	}
}

// Remove deletes p from the set.
func (s Set) Remove(p *Package) {
	delete(s, p.Dist())
}

// Has reports whether p is in the set.
func (s Set) Has(p *Package) bool {
	_, ok := s[p.Dist()]
	return ok
}

// HasArtifact reports whether the set holds a package with p's canonical
// name from any channel.
func (s Set) HasArtifact(p *Package) bool {
	for _, q := range s {
		if SameArtifact(p, q) {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, p := range s {
		out[k] = p
	}
	return out
}

// Union returns a new set with the packages of s and o.
func (s Set) Union(o Set) Set {
	out := s.Clone()
	out.AddAll(o)
	return out
}

// Difference returns the packages of s not in o.
func (s Set) Difference(o Set) Set {
	out := make(Set)
	for k, p := range s {
		if _, ok := o[k]; !ok {
			out[k] = p
		}
	}
	return out
}

// Intersect returns the packages present in both s and o.
func (s Set) Intersect(o Set) Set {
	out := make(Set)
	for k, p := range s {
		if _, ok := o[k]; ok {
			out[k] = p
		}
	}
	return out
}

// Filter returns the packages for which keep returns true.
func (s Set) Filter(keep func(*Package) bool) Set {
	out := make(Set)
	for k, p := range s {
		if keep(p) {
			out[k] = p
		}
	}
	return out
}

// WithName returns the packages called name.
func (s Set) WithName(name string) Set {
	return s.Filter(func(p *Package) bool { return p.Name == name })
}

// WithoutNames returns the packages whose name is not in names.
func (s Set) WithoutNames(names ...string) Set {
	return s.Filter(func(p *Package) bool { return !slices.Contains(names, p.Name) })
}

// ByName groups packages by name, each group sorted oldest first.
func (s Set) ByName() map[string][]*Package {
	out := make(map[string][]*Package)
	for _, p := range s.Sorted() {
		out[p.Name] = append(out[p.Name], p)
	}
	return out
}

// Names returns the sorted distinct package names in the set.
func (s Set) Names() []string {
	seen := make(map[string]struct{}, len(s))
	names := make([]string, 0, len(s))
	for _, p := range s {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		names = append(names, p.Name)
	}
	slices.Sort(names)
	return names
}

// Sorted returns the packages sorted by name, then oldest first, then Dist.
func (s Set) Sorted() []*Package {
	pkgs := make([]*Package, 0, len(s))
	for _, p := range s {
		pkgs = append(pkgs, p)
	}
	slices.SortFunc(pkgs, func(a, b *Package) int {
		return cmp.Or(
			strings.Compare(a.Name, b.Name),
			Compare(a, b),
			strings.Compare(a.Dist(), b.Dist()),
		)
	})
	return pkgs
}

// Dists returns the sorted Dist strings of the set.
func (s Set) Dists() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Newest keeps only the newest package of every name. Ties between equal
// packages from different channels go to the lexically smallest Dist, so
// callers that care about channel priority should run ChannelSelect first.
func Newest(s Set) Set {
	best := make(map[string]*Package)
	for _, p := range s.Sorted() {
		cur, ok := best[p.Name]
		if !ok || Compare(p, cur) > 0 {
			best[p.Name] = p
		}
	}
	out := make(Set, len(best))
	for _, p := range best {
		out.Add(p)
	}
	return out
}
