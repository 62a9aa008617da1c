// Package environment models one installed prefix.
//
// An Environment is a read-only snapshot: the packages linked into the
// prefix, the pins declared for it, the constraint those impose on any
// package that joins the prefix, and the features its packages track.
// The planner never mutates an Environment; whoever applies a plan loads a
// fresh snapshot afterwards.
package environment

import (
	"slices"

	"github.com/albertocavalcante/go-condaplan/constraint"
	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// Environment is a snapshot of a prefix.
type Environment struct {
	prefix       string
	root         bool
	linked       record.Set
	byName       map[string]*record.Package
	pinned       []spec.Spec
	requirements constraint.Constraint
	features     map[string][]string
}

// Option configures an Environment.
type Option func(*Environment)

// AsRoot marks the environment as the root (base) environment.
func AsRoot() Option {
	return func(e *Environment) { e.root = true }
}

// WithPinned adds pinned specs that every future package must respect.
func WithPinned(pins ...spec.Spec) Option {
	return func(e *Environment) { e.pinned = append(e.pinned, pins...) }
}

// New creates a snapshot of prefix with the given linked packages.
// A prefix never has two linked packages of the same name; if linked holds
// several, the last one wins.
func New(prefix string, linked []*record.Package, opts ...Option) *Environment {
	e := &Environment{
		prefix: prefix,
		linked: make(record.Set, len(linked)),
		byName: make(map[string]*record.Package, len(linked)),
	}
	for _, p := range linked {
		if old, ok := e.byName[p.Name]; ok {
			e.linked.Remove(old)
		}
		e.linked.Add(p)
		e.byName[p.Name] = p
	}
	for _, opt := range opts {
		opt(e)
	}
	e.requirements = Requirements(e.linked, e.pinned)
	e.features = FeatureMap(e.linked)
	return e
}

// Prefix returns the filesystem prefix of the environment.
func (e *Environment) Prefix() string {
	return e.prefix
}

// IsRoot reports whether this is the root environment.
func (e *Environment) IsRoot() bool {
	return e.root
}

// Linked returns a copy of the linked package set.
func (e *Environment) Linked() record.Set {
	return e.linked.Clone()
}

// LinkedByName returns the linked package called name.
func (e *Environment) LinkedByName(name string) (*record.Package, bool) {
	p, ok := e.byName[name]
	return p, ok
}

// IsLinked reports whether a package with p's canonical name is linked,
// whatever channel it came from.
func (e *Environment) IsLinked(p *record.Package) bool {
	q, ok := e.byName[p.Name]
	return ok && record.SameArtifact(p, q)
}

// Pinned returns the environment's pinned specs.
func (e *Environment) Pinned() []spec.Spec {
	return slices.Clone(e.pinned)
}

// Requirements returns the constraint every package joining the
// environment must satisfy.
func (e *Environment) Requirements() constraint.Constraint {
	return e.requirements
}

// RequirementsExcluding returns the requirements imposed by every linked
// package except those called one of names. Pins always apply. It is used
// when the excluded packages are about to be replaced.
func (e *Environment) RequirementsExcluding(names ...string) constraint.Constraint {
	return Requirements(e.linked.WithoutNames(names...), e.pinned)
}

// Features maps every tracked feature to the sorted names of the linked
// packages tracking it.
func (e *Environment) Features() map[string][]string {
	out := make(map[string][]string, len(e.features))
	for f, names := range e.features {
		out[f] = slices.Clone(names)
	}
	return out
}

// TrackedFeatures returns the set of features tracked by linked packages.
func (e *Environment) TrackedFeatures() map[string]bool {
	return TrackedFeatures(e.linked)
}

// Requirements derives the constraint imposed by pkgs and pins: every
// dependency spec of every package, and every pin, must be respected.
func Requirements(pkgs record.Set, pins []spec.Spec) constraint.Constraint {
	var all constraint.AllOf
	seen := make(map[string]bool)
	add := func(s spec.Spec) {
		key := s.String()
		if seen[key] {
			return
		}
		seen[key] = true
		all = append(all, constraint.Requires{Spec: s})
	}
	for _, p := range pkgs.Sorted() {
		for _, d := range p.Depends {
			add(d)
		}
	}
	for _, pin := range pins {
		add(pin)
	}
	return all
}

// FeatureMap maps every feature tracked by pkgs to the sorted names of the
// packages tracking it.
func FeatureMap(pkgs record.Set) map[string][]string {
	out := make(map[string][]string)
	for _, p := range pkgs.Sorted() {
		for _, f := range p.TrackFeatures {
			if !slices.Contains(out[f], p.Name) {
				out[f] = append(out[f], p.Name)
			}
		}
	}
	return out
}

// TrackedFeatures returns the union of the track_features of pkgs.
func TrackedFeatures(pkgs record.Set) map[string]bool {
	out := make(map[string]bool)
	for _, p := range pkgs {
		for _, f := range p.TrackFeatures {
			out[f] = true
		}
	}
	return out
}
