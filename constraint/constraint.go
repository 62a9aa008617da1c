// Package constraint implements a small boolean algebra over packages.
//
// A Constraint is an immutable expression tree. Leaves are Satisfies,
// Requires and Channel; AllOf and AnyOf combine them. Evaluation is pure and
// total for any non-nil package.
package constraint

import (
	"strings"

	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// Constraint is a predicate over packages. The set of implementations is
// closed to this package.
type Constraint interface {
	Evaluate(p *record.Package) bool
	String() string
	isConstraint()
}

// Satisfies holds for packages named Spec.Name that match Spec.
type Satisfies struct {
	Spec spec.Spec
}

func (Satisfies) isConstraint() {}

// Evaluate reports whether p is named like the spec and matches it.
func (c Satisfies) Evaluate(p *record.Package) bool {
	return p.Satisfies(c.Spec)
}

// String returns "Satisfies(spec)".
func (c Satisfies) String() string {
	return "Satisfies(" + c.Spec.String() + ")"
}

// Requires holds for packages compatible with the line described by Spec:
// a package named Spec.Name must match Spec, a package depending on
// Spec.Name must declare dependency specs consistent with Spec, and any
// other package passes.
type Requires struct {
	Spec spec.Spec
}

func (Requires) isConstraint() {}

// Evaluate reports whether p is compatible with the spec's line.
func (c Requires) Evaluate(p *record.Package) bool {
	if p.Name == c.Spec.Name {
		return p.Satisfies(c.Spec)
	}
	for _, d := range p.DependencyOn(c.Spec.Name) {
		if !spec.Compatible(d, c.Spec) {
			return false
		}
	}
	return true
}

// String returns "Requires(spec)".
func (c Requires) String() string {
	return "Requires(" + c.Spec.String() + ")"
}

// Channel holds for packages published to Name.
type Channel struct {
	Name string
}

func (Channel) isConstraint() {}

// Evaluate reports whether p comes from the channel.
func (c Channel) Evaluate(p *record.Package) bool {
	return p.Channel == c.Name
}

// String returns "Channel(name)".
func (c Channel) String() string {
	return "Channel(" + c.Name + ")"
}

// AllOf holds when every operand holds. An empty AllOf always holds.
type AllOf []Constraint

func (AllOf) isConstraint() {}

// Evaluate reports whether every member accepts p. An empty AllOf accepts everything.
func (c AllOf) Evaluate(p *record.Package) bool {
	for _, sub := range c {
		if !sub.Evaluate(p) {
			return false
		}
	}
	return true
}

// String returns "AllOf(a, b, ...)".
func (c AllOf) String() string {
	return "AllOf(" + join(c) + ")"
}

// AnyOf holds when at least one operand holds. An empty AnyOf never holds.
type AnyOf []Constraint

func (AnyOf) isConstraint() {}

// Evaluate reports whether some member accepts p. An empty AnyOf accepts nothing.
func (c AnyOf) Evaluate(p *record.Package) bool {
	for _, sub := range c {
		if sub.Evaluate(p) {
			return true
		}
	}
	return false
}

// String returns "AnyOf(a, b, ...)".
func (c AnyOf) String() string {
	return "AnyOf(" + join(c) + ")"
}

// None is the constraint every package satisfies.
var None Constraint = AllOf{}

// And combines constraints, flattening nested AllOf operands and dropping
// nils.
func And(cs ...Constraint) Constraint {
	var out AllOf
	for _, c := range cs {
		switch v := c.(type) {
		case nil:
		case AllOf:
			out = append(out, v...)
		default:
			out = append(out, v)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func join(cs []Constraint) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
