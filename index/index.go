package index

import (
	"fmt"
	"slices"

	"github.com/albertocavalcante/go-condaplan/constraint"
	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// NotFoundError reports a lookup that matched no package.
type NotFoundError struct {
	// Query is the name or canonical name that was looked up.
	Query string

	// Suggestions are similar known package names.
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("package %q not found (did you mean: %v)", e.Query, e.Suggestions)
	}
	return fmt.Sprintf("package %q not found", e.Query)
}

// Index is an immutable collection of packages with a channel priority order.
type Index struct {
	channels []string
	pkgs     record.Set
	byName   map[string][]*record.Package
	byCanon  map[string][]*record.Package
	names    []string
}

// New creates an index. channels lists channel names from highest to lowest
// priority; channels of packages missing from the list rank after all listed
// channels, in name order.
func New(channels []string, pkgs ...*record.Package) *Index {
	ix := &Index{
		pkgs:    record.NewSet(pkgs...),
		byName:  make(map[string][]*record.Package),
		byCanon: make(map[string][]*record.Package),
	}

	ix.channels = slices.Clone(channels)
	var extra []string
	for _, p := range ix.pkgs {
		if p.Channel != "" && !slices.Contains(ix.channels, p.Channel) && !slices.Contains(extra, p.Channel) {
			extra = append(extra, p.Channel)
		}
	}
	slices.Sort(extra)
	ix.channels = append(ix.channels, extra...)

	for _, p := range ix.pkgs.Sorted() {
		ix.byName[p.Name] = append(ix.byName[p.Name], p)
		ix.byCanon[p.CanonicalName()] = append(ix.byCanon[p.CanonicalName()], p)
	}
	for name := range ix.byName {
		ix.names = append(ix.names, name)
	}
	slices.Sort(ix.names)
	return ix
}

// Channels returns the channel priority order, highest first.
func (ix *Index) Channels() []string {
	return slices.Clone(ix.channels)
}

// Len returns the number of packages in the index.
func (ix *Index) Len() int {
	return len(ix.pkgs)
}

// All returns every package in the index.
func (ix *Index) All() record.Set {
	return ix.pkgs.Clone()
}

// PackageNames returns all known package names, sorted.
func (ix *Index) PackageNames() []string {
	return slices.Clone(ix.names)
}

// HasName reports whether any package called name is known.
func (ix *Index) HasName(name string) bool {
	_, ok := ix.byName[name]
	return ok
}

// FindCompatiblePackages returns the packages that satisfy at least one of
// the specs naming them. A spec for name X only filters candidates named X.
func (ix *Index) FindCompatiblePackages(specs []spec.Spec) record.Set {
	out := make(record.Set)
	for _, s := range specs {
		for _, p := range ix.byName[s.Name] {
			if p.Satisfies(s) {
				out.Add(p)
			}
		}
	}
	return out
}

// FindMatches returns the subset of pkgs for which c evaluates true.
func (ix *Index) FindMatches(c constraint.Constraint, pkgs record.Set) record.Set {
	return pkgs.Filter(c.Evaluate)
}

// GetDeps returns every package satisfying a dependency spec of any package
// in pkgs. It follows one level of the dependency graph.
func (ix *Index) GetDeps(pkgs record.Set) record.Set {
	var specs []spec.Spec
	for _, p := range pkgs {
		specs = append(specs, p.Depends...)
	}
	return ix.FindCompatiblePackages(specs)
}

// GetReverseDeps returns the packages in scope that declare a dependency
// satisfied by some package in pkgs. A nil scope means the whole index.
// Packages in pkgs are never part of the result.
func (ix *Index) GetReverseDeps(pkgs record.Set, scope record.Set) record.Set {
	if scope == nil {
		scope = ix.pkgs
	}
	out := make(record.Set)
	for _, q := range scope {
		if pkgs.Has(q) {
			continue
		}
		if dependsOnAny(q, pkgs) {
			out.Add(q)
		}
	}
	return out
}

func dependsOnAny(q *record.Package, pkgs record.Set) bool {
	for _, d := range q.Depends {
		for _, p := range pkgs {
			if p.Satisfies(d) {
				return true
			}
		}
	}
	return false
}

// FindCompatibleRequirements returns the exact spec of every package, which
// re-queries precisely those packages.
func (ix *Index) FindCompatibleRequirements(pkgs record.Set) []spec.Spec {
	sorted := pkgs.Sorted()
	out := make([]spec.Spec, 0, len(sorted))
	for _, p := range sorted {
		out = append(out, p.ExactSpec())
	}
	return out
}

// LookupFromCanonicalName resolves "name-version-build", optionally with a
// "channel::" prefix or the archive suffix. Without a channel the package
// from the highest-priority channel is returned.
func (ix *Index) LookupFromCanonicalName(canonical string) (*record.Package, error) {
	channel, name := splitChannel(canonical)
	key := trimArchive(name)

	candidates := ix.byCanon[key]
	if len(candidates) == 0 {
		return nil, &NotFoundError{Query: canonical}
	}
	if channel != "" {
		for _, p := range candidates {
			if p.Channel == channel {
				return p, nil
			}
		}
		return nil, &NotFoundError{Query: canonical}
	}

	best := candidates[0]
	for _, p := range candidates[1:] {
		if ix.ChannelRank(p.Channel) < ix.ChannelRank(best.Channel) {
			best = p
		}
	}
	return best, nil
}

// LookupFromName returns every package called name, oldest first. It fails
// with a NotFoundError carrying suggestions when the name is unknown.
func (ix *Index) LookupFromName(name string) ([]*record.Package, error) {
	pkgs, ok := ix.byName[name]
	if !ok {
		return nil, &NotFoundError{Query: name, Suggestions: ix.Suggest(name, defaultSuggestions)}
	}
	return slices.Clone(pkgs), nil
}
