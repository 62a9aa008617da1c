package condaplan

import (
	"maps"

	"github.com/albertocavalcante/go-condaplan/constraint"
	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/index"
	"github.com/albertocavalcante/go-condaplan/record"
)

// applyFeatures substitutes builds in all to match the features tracked by
// all and by extra, then completes dependencies the new builds introduce.
func (p *Planner) applyFeatures(op string, all, base record.Set, c constraint.Constraint, extra map[string]bool) (record.Set, error) {
	tracked := environment.TrackedFeatures(all)
	maps.Copy(tracked, extra)

	out := p.replaceWithFeatures(all, tracked, c)
	if len(out.Difference(all)) == 0 {
		return out, nil
	}
	return p.resolveDeps(op, out, base, c)
}

// replaceWithFeatures swaps every package for the build of the same name and
// version whose features best match tracked: no untracked features first,
// then as many tracked ones as possible, then newest. The scan works on a
// snapshot; substitutions are applied afterwards.
func (p *Planner) replaceWithFeatures(all record.Set, tracked map[string]bool, c constraint.Constraint) record.Set {
	var toRemove, toAdd []*record.Package
	for _, pkg := range all.Sorted() {
		best := p.bestFeatureBuild(pkg, tracked, c)
		if best.Dist() == pkg.Dist() {
			continue
		}
		toRemove = append(toRemove, pkg)
		toAdd = append(toAdd, best)
	}

	out := all.Clone()
	for _, pkg := range toRemove {
		out.Remove(pkg)
	}
	for _, pkg := range toAdd {
		out.Add(pkg)
	}
	for _, pkg := range out {
		if untracked(pkg, tracked) > 0 {
			p.cfg.log().Warn("no build without untracked features", "package", pkg.Dist(), "features", pkg.Features)
		}
	}
	return out
}

// replaceWithoutFeatures finds survivors whose features were tracked only
// by removals and returns the builds replacing them.
func (p *Planner) replaceWithoutFeatures(removals, survivors record.Set, c constraint.Constraint) (toAdd, toRemove record.Set) {
	toAdd, toRemove = make(record.Set), make(record.Set)
	dropped := environment.TrackedFeatures(removals)
	still := environment.TrackedFeatures(survivors)

	for _, pkg := range survivors.Sorted() {
		orphaned := false
		for _, f := range pkg.Features {
			if dropped[f] && !still[f] {
				orphaned = true
			}
		}
		if !orphaned {
			continue
		}
		best := p.bestFeatureBuild(pkg, still, c)
		if best.Dist() == pkg.Dist() || variantNeeded(pkg, best, survivors) {
			continue
		}
		toRemove.Add(pkg)
		toAdd.Add(best)
	}
	return toAdd, toRemove
}

// variantNeeded reports whether a survivor depends on pkg through a spec
// that repl does not satisfy.
func variantNeeded(pkg, repl *record.Package, survivors record.Set) bool {
	for _, q := range survivors {
		for _, d := range q.DependencyOn(pkg.Name) {
			if pkg.Satisfies(d) && !repl.Satisfies(d) {
				return true
			}
		}
	}
	return false
}

// bestFeatureBuild returns the preferred build among pkg and the builds of
// the same name and version that pass c. pkg wins ties.
func (p *Planner) bestFeatureBuild(pkg *record.Package, tracked map[string]bool, c constraint.Constraint) *record.Package {
	variants, err := p.index.LookupFromName(pkg.Name)
	if err != nil {
		return pkg
	}
	cands := make(record.Set)
	for _, v := range variants {
		if v.Version == pkg.Version {
			cands.Add(v)
		}
	}
	cands = index.ChannelSelect(p.index.FindMatches(c, cands), p.index.Channels())

	best := pkg
	for _, cand := range cands.Sorted() {
		if betterFeatures(cand, best, tracked) {
			best = cand
		}
	}
	return best
}

func betterFeatures(a, b *record.Package, tracked map[string]bool) bool {
	if ua, ub := untracked(a, tracked), untracked(b, tracked); ua != ub {
		return ua < ub
	}
	if ma, mb := matched(a, tracked), matched(b, tracked); ma != mb {
		return ma > mb
	}
	return record.Compare(a, b) > 0
}

func untracked(pkg *record.Package, tracked map[string]bool) int {
	n := 0
	for _, f := range pkg.Features {
		if !tracked[f] {
			n++
		}
	}
	return n
}

func matched(pkg *record.Package, tracked map[string]bool) int {
	return len(pkg.Features) - untracked(pkg, tracked)
}
