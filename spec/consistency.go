package spec

import (
	"fmt"
	"strings"
)

// InconsistencyError reports specs for the same package that can never be
// satisfied together.
type InconsistencyError struct {
	Name  string
	Specs []string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("conflicting specs for %s: %s", e.Name, strings.Join(e.Specs, ", "))
}

// CheckConsistent verifies that, for every package name, the specs naming
// it can be satisfied simultaneously. It inspects only the specs, never an
// index. The check is conservative: it reports a conflict only when one is
// certain.
func CheckConsistent(specs []Spec) error {
	var order []string
	groups := make(map[string][]Spec)
	for _, s := range specs {
		if _, seen := groups[s.Name]; !seen {
			order = append(order, s.Name)
		}
		groups[s.Name] = append(groups[s.Name], s)
	}

	for _, name := range order {
		group := groups[name]
		if len(group) < 2 {
			continue
		}
		if !groupConsistent(group) {
			strs := make([]string, len(group))
			for i, s := range group {
				strs[i] = s.String()
			}
			return &InconsistencyError{Name: name, Specs: strs}
		}
	}
	return nil
}

// Compatible reports whether a and b can be satisfied by one package.
// Specs for different names are always compatible.
func Compatible(a, b Spec) bool {
	if a.Name != b.Name {
		return true
	}
	return groupConsistent([]Spec{a, b})
}

func groupConsistent(group []Spec) bool {
	ivs := []interval{{lo: unbounded(), hi: unbounded()}}
	channel := ""
	var builds []string

	for _, s := range group {
		if s.Channel != "" {
			if channel != "" && channel != s.Channel {
				return false
			}
			channel = s.Channel
		}
		if s.Build != "" {
			builds = append(builds, s.Build)
		}
		if s.Version != nil {
			ivs = intersectAll(ivs, s.Version.intervals())
			if len(ivs) == 0 {
				return false
			}
		}
	}

	for i, a := range builds {
		for _, b := range builds[i+1:] {
			if !buildsOverlap(a, b) {
				return false
			}
		}
	}
	return true
}

func buildsOverlap(a, b string) bool {
	aGlob, bGlob := strings.Contains(a, "*"), strings.Contains(b, "*")
	switch {
	case !aGlob && !bGlob:
		return a == b
	case !aGlob:
		return matchBuild(b, a)
	case !bGlob:
		return matchBuild(a, b)
	}
	// Two wildcards may always share a build.
	return true
}
