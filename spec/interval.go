package spec

import "github.com/albertocavalcante/go-condaplan/version"

// bound is one end of a version interval. An unbounded end extends to
// infinity in its direction.
type bound struct {
	v         version.Version
	inclusive bool
	unbounded bool
}

func closed(v version.Version) bound { return bound{v: v, inclusive: true} }
func open(v version.Version) bound   { return bound{v: v} }
func unbounded() bound               { return bound{unbounded: true} }

// interval is a contiguous range of versions. Matchers map to a union of
// intervals that is a superset of the versions they match, which is enough
// to prove two specs can never be satisfied together.
type interval struct {
	lo, hi bound
}

func (iv interval) empty() bool {
	if iv.lo.unbounded || iv.hi.unbounded {
		return false
	}
	c := iv.lo.v.Compare(iv.hi.v)
	return c > 0 || (c == 0 && !(iv.lo.inclusive && iv.hi.inclusive))
}

func intersect(a, b interval) interval {
	return interval{lo: maxLower(a.lo, b.lo), hi: minUpper(a.hi, b.hi)}
}

func maxLower(a, b bound) bound {
	switch {
	case a.unbounded:
		return b
	case b.unbounded:
		return a
	}
	switch c := a.v.Compare(b.v); {
	case c > 0:
		return a
	case c < 0:
		return b
	}
	return bound{v: a.v, inclusive: a.inclusive && b.inclusive}
}

func minUpper(a, b bound) bound {
	switch {
	case a.unbounded:
		return b
	case b.unbounded:
		return a
	}
	switch c := a.v.Compare(b.v); {
	case c < 0:
		return a
	case c > 0:
		return b
	}
	return bound{v: a.v, inclusive: a.inclusive && b.inclusive}
}

// intersectAll intersects two interval unions, dropping empty results.
func intersectAll(a, b []interval) []interval {
	var out []interval
	for _, x := range a {
		for _, y := range b {
			if iv := intersect(x, y); !iv.empty() {
				out = append(out, iv)
			}
		}
	}
	return out
}
