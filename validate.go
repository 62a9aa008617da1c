package condaplan

import (
	"errors"
	"slices"
	"strings"

	"github.com/albertocavalcante/go-condaplan/constraint"
	"github.com/albertocavalcante/go-condaplan/index"
	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
	"github.com/albertocavalcante/go-condaplan/version"
)

// parseSpecs parses every input, failing on the first invalid one.
func parseSpecs(op string, inputs []string) ([]spec.Spec, error) {
	out := make([]spec.Spec, 0, len(inputs))
	for _, in := range inputs {
		s, err := spec.Parse(in)
		if err != nil {
			pe := planErr(op, ErrInvalidSpec, in, "invalid spec %q", in)
			pe.Err = err
			return nil, pe
		}
		out = append(out, s)
	}
	return out, nil
}

// splitAnchors separates python and numpy specs from the rest.
func splitAnchors(specs []spec.Spec) ([]spec.Spec, anchorSet) {
	var general []spec.Spec
	anchors := make(anchorSet)
	for _, s := range specs {
		switch s.Name {
		case pythonName, numpyName:
			anchors[s.Name] = append(anchors[s.Name], s)
		default:
			general = append(general, s)
		}
	}
	return general, anchors
}

func checkConsistent(op string, specs []spec.Spec) error {
	err := spec.CheckConsistent(specs)
	if err == nil {
		return nil
	}
	subject := ""
	var ie *spec.InconsistencyError
	if errors.As(err, &ie) {
		subject = ie.Name
	}
	pe := planErr(op, ErrSpecInconsistency, subject, "conflicting specs for %s", subject)
	pe.Err = err
	return pe
}

// checkUnknownSpec fails when no package in the index carries the spec's
// name, suggesting similar names.
func (p *Planner) checkUnknownSpec(op string, s spec.Spec) error {
	if p.index.HasName(s.Name) {
		return nil
	}
	return p.unknownName(op, s.Name, s.String())
}

func (p *Planner) unknownName(op, name, subject string) error {
	pe := planErr(op, ErrUnknownPackage, subject, "no package named %s in channels %s",
		name, strings.Join(p.index.Channels(), ", "))
	if p.cfg.maxSuggestions > 0 {
		pe.Suggestions = p.index.Suggest(name, p.cfg.maxSuggestions)
	}
	return pe
}

// requireCandidates fails for the first spec none of pkgs satisfies. The
// format receives the spec.
func requireCandidates(op string, specs []spec.Spec, pkgs record.Set, format string) error {
	for _, s := range specs {
		if !satisfiedBy(pkgs, s) {
			return planErr(op, ErrUnsatisfiable, s.String(), format, s.String())
		}
	}
	return nil
}

// checkSatisfied fails when the final package set misses a user spec.
func checkSatisfied(op string, specs []spec.Spec, all record.Set) error {
	return requireCandidates(op, specs, all, "%s is not satisfiable together with the other requested packages")
}

func satisfiedBy(pkgs record.Set, s spec.Spec) bool {
	for _, pkg := range pkgs {
		if pkg.Satisfies(s) {
			return true
		}
	}
	return false
}

// defaultConstraint accepts packages compatible with the major.minor line
// of s, or packages satisfying s outright.
func defaultConstraint(s spec.Spec) constraint.Constraint {
	return constraint.AnyOf{
		constraint.Requires{Spec: majorMinorPin(s)},
		constraint.Satisfies{Spec: s},
	}
}

// majorMinorPin derives "python 2.7*" from "python 2.7.11". Specs without a
// leading version are returned unchanged.
func majorMinorPin(s spec.Spec) spec.Spec {
	v, ok := s.LeadingVersion()
	if !ok {
		return s
	}
	pin, err := version.Parse(v.Truncate(2))
	if err != nil {
		return s
	}
	return s.WithPrefixVersion(pin)
}

// lookupCanonical resolves a canonical name, diagnosing inputs that are
// specs or bare names rather than exact builds.
func (p *Planner) lookupCanonical(op, canonical string) (*record.Package, error) {
	pkg, err := p.index.LookupFromCanonicalName(canonical)
	if err == nil {
		return pkg, nil
	}
	var nf *index.NotFoundError
	if !errors.As(err, &nf) {
		return nil, err
	}

	if looksLikeSpec(canonical) {
		return nil, planErr(op, ErrAmbiguousInput, canonical,
			"%q looks like a spec; expected a canonical name such as numpy-1.9.2-py27_0", canonical)
	}
	bare := canonical
	if _, rest, ok := strings.Cut(bare, "::"); ok {
		bare = rest
	}
	bare = strings.TrimSuffix(bare, spec.ArchiveSuffix)
	if name, _, _, serr := spec.SplitCanonicalName(bare); serr == nil && p.index.HasName(name) {
		return nil, planErr(op, ErrUnknownPackage, canonical, "no build %s of %s in the index", bare, name)
	}
	if p.index.HasName(bare) {
		return nil, planErr(op, ErrAmbiguousInput, canonical,
			"%q is a package name; expected a canonical name such as %s", canonical, p.exampleCanonical(bare))
	}
	return nil, p.unknownName(op, bare, canonical)
}

func looksLikeSpec(s string) bool {
	return strings.ContainsAny(s, " =<>*|,")
}

func (p *Planner) exampleCanonical(name string) string {
	pkgs, err := p.index.LookupFromName(name)
	if err != nil || len(pkgs) == 0 {
		return name + "-<version>-<build>"
	}
	return slices.MaxFunc(pkgs, record.Compare).CanonicalName()
}

func requiresOf(pkgs record.Set) constraint.Constraint {
	var all constraint.AllOf
	for _, pkg := range pkgs.Sorted() {
		for _, d := range pkg.Depends {
			all = append(all, constraint.Requires{Spec: d})
		}
	}
	return all
}
