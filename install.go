package condaplan

import (
	"github.com/albertocavalcante/go-condaplan/constraint"
	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// Install builds the plan that makes env satisfy specStrings. Specs already
// satisfied by a linked package are left alone, so installing the same
// specs twice yields an empty plan.
func (p *Planner) Install(env *environment.Environment, specStrings []string) (*PackagePlan, error) {
	const op = "install"
	log := p.cfg.log().With("op", op, "prefix", env.Prefix())

	specs, err := parseSpecs(op, specStrings)
	if err != nil {
		return nil, err
	}
	if err := checkConsistent(op, specs); err != nil {
		return nil, err
	}
	for _, s := range specs {
		if err := p.checkUnknownSpec(op, s); err != nil {
			return nil, err
		}
		if err := checkLinkedSpec(op, env, s); err != nil {
			return nil, err
		}
	}

	linked := env.Linked()
	var pending []spec.Spec
	var replaced []string
	for _, s := range specs {
		if satisfiedBy(linked, s) {
			continue
		}
		pending = append(pending, s)
		if _, ok := env.LinkedByName(s.Name); ok {
			replaced = append(replaced, s.Name)
		}
	}
	plan := newPlan(op, env.Prefix())
	if len(pending) == 0 {
		log.Debug("all specs already satisfied")
		return plan, nil
	}

	general, anchors := splitAnchors(pending)
	if len(general) == 0 {
		general = anchors.all()
	}
	pkgs := p.index.FindCompatiblePackages(general)
	if err := requireCandidates(op, general, pkgs, "no package matches %s"); err != nil {
		return nil, err
	}
	envC := constraint.And(
		env.RequirementsExcluding(replaced...),
		p.installAnchorConstraint(env, anchors, p.closure(p.index.FindCompatiblePackages(pending))),
	)
	log.Debug("environment constraint", "constraint", envC.String())

	pkgs = p.narrow(envC, pkgs)
	if err := requireCandidates(op, general, pkgs, "%s is incompatible with the packages linked in the environment"); err != nil {
		return nil, err
	}

	all, isMeta, err := p.expandMeta(op, pkgs)
	if err != nil {
		return nil, err
	}
	if !isMeta {
		if all, err = p.resolveDeps(op, pkgs, linked, envC); err != nil {
			return nil, err
		}
		if all, err = p.resolveAnchors(op, anchors, all, linked, envC); err != nil {
			return nil, err
		}
	}
	if err := checkSatisfied(op, pending, all); err != nil {
		return nil, err
	}
	for _, pkg := range all {
		if err := checkAnchorChange(op, env, pkg); err != nil {
			return nil, err
		}
	}

	all = stripConda(env, all)
	if !isMeta {
		if all, err = p.applyFeatures(op, all, linked, envC, env.TrackedFeatures()); err != nil {
			return nil, err
		}
	}

	p.diffInto(plan, env, all)
	return p.finish(plan, env)
}

// checkLinkedSpec rejects specs that would silently ask for a different
// version of a linked package: bare names, and any change of a linked
// python or numpy.
func checkLinkedSpec(op string, env *environment.Environment, s spec.Spec) error {
	pkg, ok := env.LinkedByName(s.Name)
	if !ok {
		return nil
	}
	if s.IsBare() {
		return planErr(op, ErrAmbiguousInput, s.Name,
			"%s is already installed as %s; supply a version or use update", s.Name, pkg)
	}
	if isAnchor(s.Name) && !pkg.Satisfies(s) {
		return planErr(op, ErrForbidden, s.String(),
			"changing %s from %s to %s in an existing environment is not allowed", s.Name, pkg.Version, s)
	}
	return nil
}

// checkAnchorChange rejects plans that would replace a linked python or
// numpy with another version as a side effect.
func checkAnchorChange(op string, env *environment.Environment, pkg *record.Package) error {
	if !isAnchor(pkg.Name) {
		return nil
	}
	old, ok := env.LinkedByName(pkg.Name)
	if !ok || old.Version == pkg.Version {
		return nil
	}
	return planErr(op, ErrForbidden, pkg.CanonicalName(),
		"plan would change %s from %s to %s", pkg.Name, old.Version, pkg.Version)
}

func isAnchor(name string) bool {
	return name == pythonName || name == numpyName
}

// installAnchorConstraint pins linked anchors to their exact build and
// otherwise behaves like anchorConstraint.
func (p *Planner) installAnchorConstraint(env *environment.Environment, anchors anchorSet, reachable record.Set) constraint.Constraint {
	var parts []constraint.Constraint
	free := make(anchorSet)
	for _, name := range []string{pythonName, numpyName} {
		if pkg, ok := env.LinkedByName(name); ok {
			parts = append(parts, constraint.Requires{Spec: pkg.ExactSpec()})
			continue
		}
		if user := anchors[name]; len(user) > 0 {
			free[name] = user
		}
	}
	reachable = reachable.Filter(func(pkg *record.Package) bool {
		_, linked := env.LinkedByName(pkg.Name)
		return !linked
	})
	parts = append(parts, p.anchorConstraint(free, reachable))
	return constraint.And(parts...)
}
