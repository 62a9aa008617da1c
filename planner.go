// Package condaplan computes package plans for conda-style environments.
//
// Given an index of known packages and a snapshot of an environment, a
// Planner decides which packages must be downloaded, linked (activated) and
// unlinked (deactivated) so that the environment satisfies a request while
// staying consistent: one version per package name, dependencies satisfied,
// features tracked coherently.
//
// # Entry Points
//
//   - Create: a new environment from specs
//   - Install: add or change packages in an existing environment
//   - Remove: unlink packages, optionally with their dependents
//   - Update: move linked packages to their newest compatible version
//   - Activate / Deactivate: link or unlink one exact build, no resolution
//   - Download: populate the package cache only
//
// # Algorithm
//
// Resolution is deterministic and never backtracks. Every entry point
// parses and validates its input, narrows candidates with the environment
// constraint, expands meta-packages, resolves dependencies to a fixed point
// choosing the newest candidate from the highest-priority channel, adjusts
// builds for tracked features and finally diffs the result against the
// environment.
//
// python and numpy are pinned by default: when a plan pulls either in
// without the user naming it, candidates are restricted to the configured
// default major.minor line (see WithDefaultPythonSpec).
//
// # Thread Safety
//
// A Planner only reads its Index and the Environments passed to it, so it is
// safe for concurrent use as long as neither is mutated during a call.
package condaplan

import (
	"github.com/albertocavalcante/go-condaplan/constraint"
	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/index"
	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

const (
	pythonName = "python"
	numpyName  = "numpy"
	condaName  = "conda"
)

// Planner builds PackagePlans against one index.
type Planner struct {
	index *index.Index
	cfg   *plannerConfig
}

// New creates a planner over idx.
func New(idx *index.Index, opts ...Option) (*Planner, error) {
	cfg, err := newPlannerConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Planner{index: idx, cfg: cfg}, nil
}

// Index returns the planner's index.
func (p *Planner) Index() *index.Index {
	return p.index
}

// Create builds the plan for a brand-new environment at prefix.
func (p *Planner) Create(prefix string, specStrings []string) (*PackagePlan, error) {
	const op = "create"
	log := p.cfg.log().With("op", op, "prefix", prefix)

	specs, err := parseSpecs(op, specStrings)
	if err != nil {
		return nil, err
	}
	general, anchors := splitAnchors(specs)
	if len(general) == 0 {
		general = anchors.all()
	}
	if err := checkConsistent(op, specs); err != nil {
		return nil, err
	}
	for _, s := range specs {
		if err := p.checkUnknownSpec(op, s); err != nil {
			return nil, err
		}
	}

	pkgs := p.index.FindCompatiblePackages(general)
	if err := requireCandidates(op, general, pkgs, "no package matches %s"); err != nil {
		return nil, err
	}
	reachable := p.closure(p.index.FindCompatiblePackages(specs))
	envC := p.anchorConstraint(anchors, reachable)
	log.Debug("environment constraint", "constraint", envC.String(), "candidates", len(pkgs))

	pkgs = p.narrow(envC, pkgs)
	if err := requireCandidates(op, general, pkgs, "%s is incompatible with the python/numpy pins of the new environment"); err != nil {
		return nil, err
	}

	all, isMeta, err := p.expandMeta(op, pkgs)
	if err != nil {
		return nil, err
	}
	if !isMeta {
		if all, err = p.resolveDeps(op, pkgs, nil, envC); err != nil {
			return nil, err
		}
		if all, err = p.resolveAnchors(op, anchors, all, nil, envC); err != nil {
			return nil, err
		}
	}
	if err := checkSatisfied(op, specs, all); err != nil {
		return nil, err
	}

	all = all.WithoutNames(condaName)
	if !isMeta {
		if all, err = p.applyFeatures(op, all, nil, envC, nil); err != nil {
			return nil, err
		}
	}

	plan := newPlan(op, prefix)
	plan.Activations.AddAll(all)
	p.addDownloads(plan, all)
	return p.finish(plan, nil)
}

// anchorSet holds user specs for the python and numpy anchors.
type anchorSet map[string][]spec.Spec

func (a anchorSet) all() []spec.Spec {
	var out []spec.Spec
	for _, name := range []string{pythonName, numpyName} {
		out = append(out, a[name]...)
	}
	return out
}

// anchorConstraint pins python and numpy: to the user's specs when given,
// else to the configured defaults when reachable packages pull them in.
func (p *Planner) anchorConstraint(anchors anchorSet, reachable record.Set) constraint.Constraint {
	var parts []constraint.Constraint
	for _, name := range []string{pythonName, numpyName} {
		if user := anchors[name]; len(user) > 0 {
			for _, s := range user {
				parts = append(parts, defaultConstraint(s))
			}
			continue
		}
		if len(reachable.WithName(name)) > 0 {
			parts = append(parts, defaultConstraint(p.defaultAnchor(name)))
		}
	}
	return constraint.And(parts...)
}

func (p *Planner) defaultAnchor(name string) spec.Spec {
	if name == numpyName {
		return p.cfg.defaultNumpy
	}
	return p.cfg.defaultPython
}

// resolveAnchors resolves explicitly requested anchors that no dependency
// pulled in, so that "create zlib python=2.7" still yields a python.
func (p *Planner) resolveAnchors(op string, anchors anchorSet, all, base record.Set, c constraint.Constraint) (record.Set, error) {
	var extra []spec.Spec
	for _, s := range anchors.all() {
		if len(all.WithName(s.Name)) == 0 && !satisfiedBy(base, s) {
			extra = append(extra, s)
		}
	}
	if len(extra) == 0 {
		return all, nil
	}
	found := p.narrow(constraint.And(c, requiresOf(all)), p.index.FindCompatiblePackages(extra))
	if err := requireCandidates(op, extra, found, "%s is incompatible with the other requested packages"); err != nil {
		return nil, err
	}
	return p.resolveDeps(op, all.Union(found), base, c)
}

// finish validates plan against env before it is returned. A nil env
// checks only that activations and deactivations are disjoint.
func (p *Planner) finish(plan *PackagePlan, env *environment.Environment) (*PackagePlan, error) {
	if err := plan.Validate(env); err != nil {
		pe := planErr(plan.Op, ErrInconsistentPlan, plan.Prefix, "computed plan is inconsistent")
		pe.Err = err
		return nil, pe
	}
	p.cfg.log().Debug("plan built", "op", plan.Op, "prefix", plan.Prefix,
		"activations", len(plan.Activations), "deactivations", len(plan.Deactivations),
		"downloads", len(plan.Downloads))
	return plan, nil
}
