package condaplan

import (
	"slices"
	"strings"

	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// Remove builds the plan that unlinks the named packages from env. Names
// that are not linked are skipped. With followDeps every linked package
// depending on a removed one is removed as well; without it they are
// reported in Broken and left linked.
func (p *Planner) Remove(env *environment.Environment, names []string, followDeps bool) (*PackagePlan, error) {
	const op = "remove"
	log := p.cfg.log().With("op", op, "prefix", env.Prefix())

	targets := make(record.Set)
	for _, name := range names {
		if err := checkBareName(op, name); err != nil {
			return nil, err
		}
		if err := p.checkRemovable(op, env, name); err != nil {
			return nil, err
		}
		pkg, ok := env.LinkedByName(name)
		if !ok {
			log.Debug("not linked, skipping", "name", name)
			continue
		}
		targets.Add(pkg)
	}

	plan := newPlan(op, env.Prefix())
	if len(targets) == 0 {
		return plan, nil
	}

	linked := env.Linked()
	dependents := p.index.GetReverseDeps(targets, linked)
	if followDeps {
		for len(dependents) > 0 {
			for _, pkg := range dependents.Sorted() {
				if err := p.checkRemovable(op, env, pkg.Name); err != nil {
					return nil, err
				}
			}
			targets.AddAll(dependents)
			dependents = p.index.GetReverseDeps(targets, linked)
		}
	} else {
		plan.Broken.AddAll(dependents)
	}

	survivors := linked.Difference(targets)
	toAdd, toRemove := p.replaceWithoutFeatures(targets, survivors,
		environment.Requirements(survivors, env.Pinned()))

	plan.Deactivations.AddAll(targets)
	plan.Deactivations.AddAll(toRemove)
	plan.Activations.AddAll(toAdd)
	plan.Broken = plan.Broken.Difference(plan.Deactivations)
	p.addDownloads(plan, toAdd)
	return p.finish(plan, env)
}

// checkBareName rejects anything but a plain package name.
func checkBareName(op, name string) error {
	s, err := spec.Parse(name)
	if err != nil || !s.IsBare() || strings.HasSuffix(name, spec.ArchiveSuffix) {
		return planErr(op, ErrAmbiguousInput, name,
			"%s takes package names, not specs or filenames: %q", op, name)
	}
	return nil
}

func (p *Planner) checkRemovable(op string, env *environment.Environment, name string) error {
	if env.IsRoot() && slices.Contains(p.cfg.basePackages, name) {
		return planErr(op, ErrForbidden, name,
			"%s is required by the root environment and cannot be removed", name)
	}
	return nil
}
