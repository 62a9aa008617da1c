package condaplan

import (
	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// Activate builds the plan that links the exact builds named by canonical
// names into env. It does not link dependencies: the transitive ones no
// linked or activated package satisfies are reported in Missing. A linked package of
// the same name is deactivated.
func (p *Planner) Activate(env *environment.Environment, canonicalNames []string) (*PackagePlan, error) {
	const op = "activate"
	plan := newPlan(op, env.Prefix())

	for _, canonical := range canonicalNames {
		pkg, err := p.lookupCanonical(op, canonical)
		if err != nil {
			return nil, err
		}
		if _, ok := linkedArtifact(env, pkg); ok {
			return nil, planErr(op, ErrAlreadyLinked, canonical, "%s is already linked in %s", pkg, env.Prefix())
		}
		if pkg.Name == condaName && !env.IsRoot() {
			return nil, planErr(op, ErrForbidden, canonical, "conda may only be activated in the root environment")
		}
		if old, ok := env.LinkedByName(pkg.Name); ok {
			plan.Deactivations.Add(old)
		}
		plan.Activations.Add(pkg)
	}

	// Missing grows to the dependency closure of the activations, narrowed
	// by the environment's requirements.
	view := plan.Result(env)
	reqs := env.RequirementsExcluding(plan.Activations.Names()...)
	frontier := plan.Activations
	for len(frontier) > 0 {
		next := record.NewSet()
		for _, pkg := range frontier.Sorted() {
			for _, d := range pkg.Depends {
				if satisfiedBy(view, d) {
					continue
				}
				found := p.narrow(reqs, p.index.FindCompatiblePackages([]spec.Spec{d}))
				if len(found) == 0 {
					p.cfg.log().Warn("dependency has no compatible candidate", "op", op, "package", pkg.Dist(), "depends", d.String())
				}
				for _, m := range found.Sorted() {
					view.Add(m)
					next.Add(m)
				}
			}
		}
		plan.Missing.AddAll(next)
		frontier = next
	}
	return p.finish(plan, env)
}

// Deactivate builds the plan that unlinks the exact builds named by
// canonical names from env. Linked packages depending on them are reported
// in Broken and stay linked.
func (p *Planner) Deactivate(env *environment.Environment, canonicalNames []string) (*PackagePlan, error) {
	const op = "deactivate"
	plan := newPlan(op, env.Prefix())

	for _, canonical := range canonicalNames {
		pkg, err := p.lookupCanonical(op, canonical)
		if err != nil {
			return nil, err
		}
		linked, ok := linkedArtifact(env, pkg)
		if !ok {
			return nil, planErr(op, ErrNotInstalled, canonical, "%s is not linked in %s", pkg, env.Prefix())
		}
		if pkg.Name == condaName && env.IsRoot() {
			return nil, planErr(op, ErrForbidden, canonical, "conda cannot be deactivated in the root environment")
		}
		plan.Deactivations.Add(linked)
	}
	plan.Broken.AddAll(p.index.GetReverseDeps(plan.Deactivations, env.Linked()))
	return p.finish(plan, env)
}

// Download builds a plan that only fetches the named builds into the
// cache: builds already cached are skipped unless force is set.
func (p *Planner) Download(canonicalNames []string, force bool) (*PackagePlan, error) {
	const op = "download"
	plan := newPlan(op, "")
	for _, canonical := range canonicalNames {
		pkg, err := p.lookupCanonical(op, canonical)
		if err != nil {
			return nil, err
		}
		if force || !p.cfg.cache.IsCached(pkg) {
			plan.Downloads.Add(pkg)
		}
	}
	return p.finish(plan, nil)
}

// linkedArtifact returns the linked package with the same name, version
// and build as pkg, whatever its channel.
func linkedArtifact(env *environment.Environment, pkg *record.Package) (*record.Package, bool) {
	linked, ok := env.LinkedByName(pkg.Name)
	if !ok || !record.SameArtifact(linked, pkg) {
		return nil, false
	}
	return linked, true
}
