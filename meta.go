package condaplan

import (
	"strings"

	"github.com/albertocavalcante/go-condaplan/record"
)

// expandMeta replaces a lone meta-package by itself plus its pinned
// manifest. ok is false when pkgs holds no meta-package, in which case the
// caller resolves dependencies as usual. A meta-package next to any other
// package is an error.
func (p *Planner) expandMeta(op string, pkgs record.Set) (all record.Set, ok bool, err error) {
	var metas []*record.Package
	for _, pkg := range pkgs.Sorted() {
		if pkg.Meta {
			metas = append(metas, pkg)
		}
	}
	switch {
	case len(metas) == 0:
		return nil, false, nil
	case len(metas) > 1:
		names := make([]string, len(metas))
		for i, m := range metas {
			names[i] = m.CanonicalName()
		}
		return nil, false, planErr(op, ErrMixedMetaPackage, names[0],
			"meta-packages cannot be combined: %s", strings.Join(names, ", "))
	case len(pkgs) > 1:
		others := pkgs.WithoutNames(metas[0].Name)
		return nil, false, planErr(op, ErrMixedMetaPackage, metas[0].CanonicalName(),
			"meta-package %s cannot be combined with other packages: %s",
			metas[0], strings.Join(others.Dists(), ", "))
	}

	meta := metas[0]
	all = record.NewSet(meta)
	for _, d := range meta.Depends {
		v, exact := d.LeadingVersion()
		if !exact || !d.IsExact() {
			return nil, false, planErr(op, ErrInvalidSpec, d.String(),
				"meta-package %s lists %s, which is not an exact name version build triple", meta, d)
		}
		canonical := d.Name + "-" + v.String() + "-" + d.Build
		pkg, lerr := p.index.LookupFromCanonicalName(meta.Channel + "::" + canonical)
		if lerr != nil {
			pkg, lerr = p.index.LookupFromCanonicalName(canonical)
		}
		if lerr != nil {
			pe := planErr(op, ErrUnknownPackage, canonical, "meta-package %s lists %s, which is not in the index", meta, canonical)
			pe.Err = lerr
			return nil, false, pe
		}
		all.Add(pkg)
	}
	p.cfg.log().Debug("expanded meta-package", "op", op, "meta", meta.Dist(), "packages", len(all))
	return all, true, nil
}
