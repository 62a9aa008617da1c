// Package version implements conda's package version ordering.
//
// Version format: [EPOCH!]RELEASE[+LOCAL]
//   - EPOCH: optional non-negative integer, compared first
//   - RELEASE: components separated by "." or "_" ("-" is treated as "_")
//   - LOCAL: optional components compared only when releases are equal
//
// Each component is split into runs of digits and non-digits. A component that
// starts with letters gets an implicit leading 0, so "1.0.dev1" compares like
// "1.0.0dev1". Within a component the ordering is:
//
//	"dev" < other strings < numbers < "post"
//
// Strings are compared case-insensitively. Missing components compare as 0,
// which makes "1.1" equal to "1.1.0".
package version

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

type kind int

const (
	kindDev kind = iota
	kindString
	kindNumber
	kindPost
)

// element is one run inside a version component.
type element struct {
	kind kind
	num  uint64
	str  string
}

var zero = element{kind: kindNumber}

func compareElements(a, b element) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case kindNumber:
		return cmp.Compare(a.num, b.num)
	case kindString:
		return strings.Compare(a.str, b.str)
	}
	return 0
}

type component []element

// Version is a parsed conda version. The zero value is not a valid version.
type Version struct {
	raw     string
	epoch   uint64
	release []component
	local   []component
}

// ParseError reports a malformed version string.
type ParseError struct {
	Version string
	Message string
}

func (e *ParseError) Error() string {
	return "invalid version " + strconv.Quote(e.Version) + ": " + e.Message
}

// Parse parses a conda version string.
func Parse(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Version{}, &ParseError{Version: s, Message: "empty version"}
	}
	v := strings.ToLower(raw)

	var epoch uint64
	if i := strings.IndexByte(v, '!'); i >= 0 {
		n, err := strconv.ParseUint(v[:i], 10, 64)
		if err != nil {
			return Version{}, &ParseError{Version: s, Message: "epoch must be an integer"}
		}
		epoch = n
		v = v[i+1:]
	}

	release, local, _ := strings.Cut(v, "+")
	rel, err := parseComponents(s, release)
	if err != nil {
		return Version{}, err
	}
	var loc []component
	if strings.Contains(v, "+") {
		if loc, err = parseComponents(s, local); err != nil {
			return Version{}, err
		}
	}

	return Version{raw: raw, epoch: epoch, release: rel, local: loc}, nil
}

// MustParse parses a version or panics. Use only for constants/tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseComponents(orig, s string) ([]component, error) {
	if s == "" {
		return nil, &ParseError{Version: orig, Message: "empty release"}
	}
	s = strings.ReplaceAll(s, "-", "_")
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '_' })
	if len(parts) == 0 || strings.Contains(s, "..") || strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return nil, &ParseError{Version: orig, Message: "empty version component"}
	}

	comps := make([]component, 0, len(parts))
	for _, p := range parts {
		c, err := parseComponent(orig, p)
		if err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	return comps, nil
}

func parseComponent(orig, s string) (component, error) {
	var c component
	for len(s) > 0 {
		isDigit := s[0] >= '0' && s[0] <= '9'
		end := 1
		for end < len(s) && (s[end] >= '0' && s[end] <= '9') == isDigit {
			end++
		}
		run := s[:end]
		s = s[end:]

		if isDigit {
			n, err := strconv.ParseUint(run, 10, 64)
			if err != nil {
				return nil, &ParseError{Version: orig, Message: "numeric component out of range"}
			}
			c = append(c, element{kind: kindNumber, num: n})
			continue
		}
		for _, r := range run {
			if r < 'a' || r > 'z' {
				return nil, &ParseError{Version: orig, Message: "invalid character " + strconv.QuoteRune(r)}
			}
		}
		if len(c) == 0 {
			c = append(c, zero)
		}
		switch run {
		case "dev":
			c = append(c, element{kind: kindDev})
		case "post":
			c = append(c, element{kind: kindPost})
		default:
			c = append(c, element{kind: kindString, str: run})
		}
	}
	return c, nil
}

// String returns the version as originally written (trimmed).
func (v Version) String() string {
	return v.raw
}

// IsZero reports whether v is the zero value.
func (v Version) IsZero() bool {
	return v.raw == "" && v.release == nil
}

// Compare returns -1, 0 or 1 as v is less than, equal to or greater than o.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.epoch, o.epoch); c != 0 {
		return c
	}
	if c := compareComponents(v.release, o.release); c != 0 {
		return c
	}
	return compareComponents(v.local, o.local)
}

// Equal reports whether v and o compare equal ("1.1" equals "1.1.0").
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

func compareComponents(a, b []component) int {
	for i := range max(len(a), len(b)) {
		ca, cb := componentAt(a, i), componentAt(b, i)
		for j := range max(len(ca), len(cb)) {
			if c := compareElements(elementAt(ca, j), elementAt(cb, j)); c != 0 {
				return c
			}
		}
	}
	return 0
}

func componentAt(cs []component, i int) component {
	if i < len(cs) {
		return cs[i]
	}
	return component{zero}
}

func elementAt(c component, i int) element {
	if i < len(c) {
		return c[i]
	}
	return zero
}

// HasPrefix reports whether v starts with prefix component-wise, so that
// "1.9.2" has prefix "1.9" but "1.10" does not have prefix "1.1".
// The last prefix component only needs to match the leading elements of
// the corresponding component, so "1.9a1" has prefix "1.9".
func (v Version) HasPrefix(prefix Version) bool {
	if v.epoch != prefix.epoch {
		return false
	}
	last := len(prefix.release) - 1
	for i, pc := range prefix.release {
		vc := componentAt(v.release, i)
		if i < last {
			if compareComponents([]component{vc}, []component{pc}) != 0 {
				return false
			}
			continue
		}
		for j, pe := range pc {
			if compareElements(elementAt(vc, j), pe) != 0 {
				return false
			}
		}
	}
	return true
}

// PrefixLowerBound returns a version that is less than or equal to every
// version having v as a prefix.
func (v Version) PrefixLowerBound() Version {
	lower := v.clone()
	last := len(lower.release) - 1
	lower.release[last] = append(lower.release[last], element{kind: kindDev})
	lower.local = nil
	lower.raw = v.raw + "dev"
	return lower
}

// PrefixUpperBound returns the smallest version that is greater than every
// version having v as a prefix. It returns false when the last component
// does not begin with a number, in which case no finite bound is known.
func (v Version) PrefixUpperBound() (Version, bool) {
	last := len(v.release) - 1
	if last < 0 || v.release[last][0].kind != kindNumber || len(v.release[last]) > 1 {
		return Version{}, false
	}
	upper := v.clone()
	upper.release[last] = component{{kind: kindNumber, num: v.release[last][0].num + 1}}
	upper.local = nil
	upper.raw = "<" + v.raw + "*"
	return upper, true
}

func (v Version) clone() Version {
	out := Version{raw: v.raw, epoch: v.epoch}
	out.release = make([]component, len(v.release))
	for i, c := range v.release {
		out.release[i] = slices.Clone(c)
	}
	return out
}

// Truncate returns the first n dot-separated parts of the release as
// written, e.g. Truncate(2) of "3.6.1" is "3.6". The epoch is kept.
func (v Version) Truncate(n int) string {
	s := v.raw
	prefix := ""
	if i := strings.IndexByte(s, '!'); i >= 0 {
		prefix, s = s[:i+1], s[i+1:]
	}
	s, _, _ = strings.Cut(s, "+")
	parts := strings.Split(s, ".")
	if len(parts) > n {
		parts = parts[:n]
	}
	return prefix + strings.Join(parts, ".")
}

// Compare compares two version strings.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
// Unparseable versions sort before parseable ones and are compared
// lexicographically among themselves.
func Compare(a, b string) int {
	va, errA := Parse(a)
	vb, errB := Parse(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}

// Sort sorts a slice of version strings in ascending order.
func Sort(versions []string) {
	slices.SortFunc(versions, Compare)
}
