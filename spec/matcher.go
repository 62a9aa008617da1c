package spec

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-condaplan/version"
)

// Matcher matches package versions. The set of implementations is closed.
type Matcher interface {
	Match(v version.Version) bool
	String() string
	intervals() []interval
}

type exactMatcher struct{ v version.Version }

func (m exactMatcher) Match(v version.Version) bool { return v.Equal(m.v) }
func (m exactMatcher) String() string              { return "==" + m.v.String() }
func (m exactMatcher) intervals() []interval {
	return []interval{{lo: closed(m.v), hi: closed(m.v)}}
}

type prefixMatcher struct{ p version.Version }

func (m prefixMatcher) Match(v version.Version) bool { return v.HasPrefix(m.p) }
func (m prefixMatcher) String() string              { return m.p.String() + "*" }
func (m prefixMatcher) intervals() []interval {
	iv := interval{lo: closed(m.p.PrefixLowerBound()), hi: unbounded()}
	if upper, ok := m.p.PrefixUpperBound(); ok {
		iv.hi = open(upper)
	}
	return []interval{iv}
}

type opMatcher struct {
	op string
	v  version.Version
}

func (m opMatcher) Match(v version.Version) bool {
	c := v.Compare(m.v)
	switch m.op {
	case ">=":
		return c >= 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	case "<":
		return c < 0
	case "!=":
		return c != 0
	}
	return false
}

func (m opMatcher) String() string { return m.op + m.v.String() }

func (m opMatcher) intervals() []interval {
	switch m.op {
	case ">=":
		return []interval{{lo: closed(m.v), hi: unbounded()}}
	case ">":
		return []interval{{lo: open(m.v), hi: unbounded()}}
	case "<=":
		return []interval{{lo: unbounded(), hi: closed(m.v)}}
	case "<":
		return []interval{{lo: unbounded(), hi: open(m.v)}}
	case "!=":
		return []interval{{lo: unbounded(), hi: open(m.v)}, {lo: open(m.v), hi: unbounded()}}
	}
	return nil
}

type allMatcher []Matcher

func (m allMatcher) Match(v version.Version) bool {
	for _, sub := range m {
		if !sub.Match(v) {
			return false
		}
	}
	return true
}

func (m allMatcher) String() string { return joinMatchers(m, ",") }

func (m allMatcher) intervals() []interval {
	ivs := []interval{{lo: unbounded(), hi: unbounded()}}
	for _, sub := range m {
		ivs = intersectAll(ivs, sub.intervals())
	}
	return ivs
}

type anyMatcher []Matcher

func (m anyMatcher) Match(v version.Version) bool {
	for _, sub := range m {
		if sub.Match(v) {
			return true
		}
	}
	return false
}

func (m anyMatcher) String() string { return joinMatchers(m, "|") }

func (m anyMatcher) intervals() []interval {
	var ivs []interval
	for _, sub := range m {
		ivs = append(ivs, sub.intervals()...)
	}
	return ivs
}

func joinMatchers(ms []Matcher, sep string) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return strings.Join(parts, sep)
}

// operators is ordered so that two-character operators are tried first.
var operators = []string{">=", "<=", "==", "!=", "~=", ">", "<", "="}

// ParseVersion parses a version expression such as "1.9*", ">=1.10,<2" or
// "1.9|1.10". It returns a nil Matcher for "" and "*", which match any version.
func ParseVersion(expr string) (Matcher, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "*" {
		return nil, nil
	}

	alts := strings.Split(expr, "|")
	anyOf := make(anyMatcher, 0, len(alts))
	for _, alt := range alts {
		terms := strings.Split(alt, ",")
		allOf := make(allMatcher, 0, len(terms))
		for _, term := range terms {
			m, err := parseTerm(term)
			if err != nil {
				return nil, fmt.Errorf("version %q: %w", expr, err)
			}
			allOf = append(allOf, m)
		}
		if len(allOf) == 1 {
			anyOf = append(anyOf, allOf[0])
		} else {
			anyOf = append(anyOf, allOf)
		}
	}
	if len(anyOf) == 1 {
		return anyOf[0], nil
	}
	return anyOf, nil
}

func parseTerm(term string) (Matcher, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("empty version term")
	}

	op := ""
	for _, candidate := range operators {
		if strings.HasPrefix(term, candidate) {
			op = candidate
			break
		}
	}
	body := strings.TrimSpace(term[len(op):])

	if strings.HasSuffix(body, "*") {
		if op != "" && op != "=" && op != "==" {
			return nil, fmt.Errorf("wildcard not allowed with %q", op)
		}
		body = strings.TrimSuffix(strings.TrimSuffix(body, "*"), ".")
		p, err := version.Parse(body)
		if err != nil {
			return nil, err
		}
		return prefixMatcher{p: p}, nil
	}

	v, err := version.Parse(body)
	if err != nil {
		return nil, err
	}

	switch op {
	case "", "==":
		return exactMatcher{v: v}, nil
	case "=":
		return prefixMatcher{p: v}, nil
	case "~=":
		// ~=1.4.2 means >=1.4.2 and 1.4.*
		n := strings.Count(v.Truncate(64), ".")
		if n == 0 {
			return nil, fmt.Errorf("~= requires at least two version components")
		}
		p, err := version.Parse(v.Truncate(n))
		if err != nil {
			return nil, err
		}
		return allMatcher{opMatcher{op: ">=", v: v}, prefixMatcher{p: p}}, nil
	}
	return opMatcher{op: op, v: v}, nil
}
