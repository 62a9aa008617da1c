package condaplan

import (
	"slices"
	"strings"

	"github.com/albertocavalcante/go-condaplan/constraint"
	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/record"
)

// Update builds the plan that moves the named linked packages to their
// newest version compatible with the rest of env. A package with no newer
// compatible candidate is reported in Skipped instead of failing the call,
// naming the linked dependents when they are what blocks a newer version.
func (p *Planner) Update(env *environment.Environment, names []string) (*PackagePlan, error) {
	const op = "update"
	log := p.cfg.log().With("op", op, "prefix", env.Prefix())

	linked := env.Linked()
	plan := newPlan(op, env.Prefix())
	updates := make(record.Set)
	var updated []string

	for _, name := range names {
		if err := checkBareName(op, name); err != nil {
			return nil, err
		}
		current, ok := env.LinkedByName(name)
		if !ok {
			if p.index.HasName(name) {
				return nil, planErr(op, ErrNotInstalled, name, "%s is not installed in %s", name, env.Prefix())
			}
			return nil, p.unknownName(op, name, name)
		}

		offered := p.updateCandidates(name)
		cands := p.index.FindMatches(env.RequirementsExcluding(name), offered)
		dependents := p.index.GetReverseDeps(record.NewSet(current), linked)
		if len(dependents) > 0 {
			cands = cands.Intersect(p.index.GetDeps(dependents))
		}
		newest := record.Newest(cands).WithName(name).Sorted()
		var blockers []string
		if len(newest) == 0 || record.Compare(newest[0], current) <= 0 {
			blockers = blockingDependents(dependents, name, offered.Filter(func(c *record.Package) bool {
				return record.Compare(c, current) > 0
			}))
		}
		switch {
		case len(blockers) > 0:
			log.Debug("update held back by dependents", "name", name, "dependents", blockers)
			plan.Skipped = append(plan.Skipped, Skip{Name: name, Reason: "held back by dependents: " + strings.Join(blockers, ", ")})
		case len(newest) == 0:
			plan.Skipped = append(plan.Skipped, Skip{Name: name, Reason: "no candidate is compatible with the linked packages"})
		case record.Compare(newest[0], current) <= 0:
			plan.Skipped = append(plan.Skipped, Skip{Name: name, Reason: "already at the newest compatible version " + current.Version})
		default:
			log.Debug("update candidate", "name", name, "from", current.Dist(), "to", newest[0].Dist())
			updates.Add(newest[0])
			updated = append(updated, name)
		}
	}
	if len(updates) == 0 {
		return plan, nil
	}

	envC := env.RequirementsExcluding(updated...)
	all, isMeta, err := p.expandMeta(op, updates)
	if err != nil {
		return nil, err
	}
	if !isMeta {
		if all, err = p.resolveDeps(op, updates, linked, envC); err != nil {
			return nil, err
		}
		if all, err = p.applyFeatures(op, all, linked, envC, env.TrackedFeatures()); err != nil {
			return nil, err
		}
	}
	if dups := duplicateNames(all); len(dups) > 0 {
		return nil, planErr(op, ErrInconsistentPlan, dups[0], "update would hold several versions of: %v", dups)
	}

	p.diffInto(plan, env, stripConda(env, all))
	return p.finish(plan, env)
}

// blockingDependents returns the sorted names of dependents whose
// dependency on name rejects at least one of the newer candidates.
func blockingDependents(dependents record.Set, name string, newer record.Set) []string {
	var out []string
	for _, dep := range dependents.Sorted() {
		blocks := false
		for _, d := range dep.Depends {
			if d.Name != name {
				continue
			}
			for _, c := range newer {
				if !c.Satisfies(d) {
					blocks = true
					break
				}
			}
		}
		if blocks && !slices.Contains(out, dep.Name) {
			out = append(out, dep.Name)
		}
	}
	return out
}

// updateCandidates returns every package called name from the first
// channel, in priority order, that offers it at all.
func (p *Planner) updateCandidates(name string) record.Set {
	pkgs, err := p.index.LookupFromName(name)
	if err != nil {
		return nil
	}
	all := record.NewSet(pkgs...)
	for _, ch := range p.index.Channels() {
		if found := p.index.FindMatches(constraint.Channel{Name: ch}, all); len(found) > 0 {
			return found
		}
	}
	return all
}
