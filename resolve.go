package condaplan

import (
	"github.com/albertocavalcante/go-condaplan/constraint"
	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/index"
	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// narrow keeps the packages passing c, then for every name the newest
// candidate from the highest-priority channel offering it.
func (p *Planner) narrow(c constraint.Constraint, pkgs record.Set) record.Set {
	return record.Newest(index.ChannelSelect(p.index.FindMatches(c, pkgs), p.index.Channels()))
}

// closure returns pkgs plus every package transitively reachable through
// dependency specs, without any narrowing.
func (p *Planner) closure(pkgs record.Set) record.Set {
	all := pkgs.Clone()
	frontier := pkgs
	for len(frontier) > 0 {
		next := p.index.GetDeps(frontier).Difference(all)
		all.AddAll(next)
		frontier = next
	}
	return all
}

// resolveDeps grows seed until every dependency of a selected package is
// satisfied by the selection or by base. Packages in base named like a
// selected package are shadowed by it. Each round resolves the unmet
// dependency specs with narrow under c and the selection's own
// requirements; resolution never backtracks.
func (p *Planner) resolveDeps(op string, seed, base record.Set, c constraint.Constraint) (record.Set, error) {
	selected := seed.Clone()
	for {
		view := base.WithoutNames(selected.Names()...).Union(selected)
		taken := selected.ByName()

		var unmet []spec.Spec
		requirer := make(map[string]*record.Package)
		for _, pkg := range selected.Sorted() {
			for _, d := range pkg.Depends {
				if satisfiedBy(view, d) {
					continue
				}
				if held, ok := taken[d.Name]; ok {
					return nil, planErr(op, ErrUnsatisfiable, d.String(),
						"%s requires %s, which conflicts with %s", pkg, d, held[0])
				}
				key := d.String()
				if _, seen := requirer[key]; !seen {
					requirer[key] = pkg
					unmet = append(unmet, d)
				}
			}
		}
		if len(unmet) == 0 {
			return selected, nil
		}

		chosen := p.narrow(constraint.And(c, requiresOf(selected)), p.index.FindCompatiblePackages(unmet))
		for _, d := range unmet {
			if !satisfiedBy(chosen, d) {
				if !p.index.HasName(d.Name) {
					return nil, p.unknownName(op, d.Name, d.String())
				}
				return nil, planErr(op, ErrUnsatisfiable, d.String(),
					"no package satisfies %s (required by %s) under the environment's requirements", d, requirer[d.String()])
			}
		}
		p.cfg.log().Debug("resolved dependencies", "op", op, "unmet", len(unmet), "chosen", chosen.Dists())
		selected.AddAll(chosen)
	}
}

// diffInto records in plan how env must change to hold all: packages
// already linked are untouched, a linked package of the same name is
// deactivated, and everything else is activated.
func (p *Planner) diffInto(plan *PackagePlan, env *environment.Environment, all record.Set) {
	for _, pkg := range all.Sorted() {
		if env.IsLinked(pkg) {
			continue
		}
		if old, ok := env.LinkedByName(pkg.Name); ok {
			plan.Deactivations.Add(old)
		}
		plan.Activations.Add(pkg)
	}
	p.addDownloads(plan, plan.Activations)
}

// addDownloads schedules every package of pkgs missing from the cache.
func (p *Planner) addDownloads(plan *PackagePlan, pkgs record.Set) {
	for _, pkg := range pkgs {
		if !p.cfg.cache.IsCached(pkg) {
			plan.Downloads.Add(pkg)
		}
	}
}

// stripConda drops conda from plans for non-root environments.
func stripConda(env *environment.Environment, all record.Set) record.Set {
	if env.IsRoot() {
		return all
	}
	return all.WithoutNames(condaName)
}
