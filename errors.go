package condaplan

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for every class of planning failure. Errors returned by
// the planner wrap exactly one of these; test with errors.Is.
var (
	// ErrInvalidSpec indicates a spec string that could not be parsed.
	ErrInvalidSpec = errors.New("invalid spec")

	// ErrSpecInconsistency indicates user specs for one name that can never
	// be satisfied together.
	ErrSpecInconsistency = errors.New("inconsistent specs")

	// ErrUnknownPackage indicates a name or build absent from the index.
	ErrUnknownPackage = errors.New("unknown package")

	// ErrUnsatisfiable indicates known packages that cannot satisfy a spec
	// together with the other requirements.
	ErrUnsatisfiable = errors.New("unsatisfiable spec")

	// ErrForbidden indicates an operation that would damage an environment.
	ErrForbidden = errors.New("forbidden operation")

	// ErrAmbiguousInput indicates input of the wrong shape for the operation,
	// such as a spec where a canonical name is expected.
	ErrAmbiguousInput = errors.New("ambiguous input")

	// ErrMixedMetaPackage indicates a meta-package combined with other
	// packages or with another meta-package.
	ErrMixedMetaPackage = errors.New("mixed meta-package request")

	// ErrNotInstalled indicates a package that is not linked in the prefix.
	ErrNotInstalled = errors.New("package not installed")

	// ErrAlreadyLinked indicates a package that is already linked.
	ErrAlreadyLinked = errors.New("package already linked")

	// ErrInconsistentPlan indicates a computed plan that would leave two
	// versions of one package in the environment.
	ErrInconsistentPlan = errors.New("inconsistent plan")
)

// PlanError describes why a plan could not be built.
type PlanError struct {
	// Op is the planner operation, e.g. "install".
	Op string

	// Kind is the sentinel error classifying the failure.
	Kind error

	// Subject is the spec, name or canonical name at fault.
	Subject string

	// Message is a human-readable explanation.
	Message string

	// Suggestions lists similar package names for unknown packages.
	Suggestions []string

	// Err is an underlying error, if any.
	Err error
}

func (e *PlanError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, " (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the classifying sentinel and the underlying error.
func (e *PlanError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func planErr(op string, kind error, subject, format string, args ...any) *PlanError {
	return &PlanError{Op: op, Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
}
