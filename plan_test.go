package condaplan

import (
	"errors"
	"strings"
	"testing"

	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/record"
)

func TestPlanValidate(t *testing.T) {
	foo1, foo2, bar := pkg("foo-1.0-0"), pkg("foo-2.0-0"), pkg("bar-2.0-0", "foo 1.0*")
	e := environment.New("/envs/test", []*record.Package{foo1, bar})

	tests := []struct {
		name    string
		build   func(p *PackagePlan)
		wantErr bool
	}{
		{name: "empty"},
		{
			name: "replacement",
			build: func(p *PackagePlan) {
				p.Deactivations.Add(foo1)
				p.Activations.Add(foo2)
			},
		},
		{
			name:    "activation duplicates linked name",
			build:   func(p *PackagePlan) { p.Activations.Add(foo2) },
			wantErr: true,
		},
		{
			name: "activated and deactivated",
			build: func(p *PackagePlan) {
				p.Activations.Add(bar)
				p.Deactivations.Add(bar)
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := newPlan("test", e.Prefix())
			if tt.build != nil {
				tt.build(plan)
			}
			err := plan.Validate(e)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInconsistentPlan) {
				t.Errorf("Validate() error = %v, want ErrInconsistentPlan", err)
			}
		})
	}
}

func TestPlanResultAndString(t *testing.T) {
	foo1, foo2 := pkg("foo-1.0-0"), pkg("foo-2.0-0")
	e := environment.New("/envs/test", []*record.Package{foo1})

	plan := newPlan("install", e.Prefix())
	if got := plan.String(); got != "nothing to do\n" {
		t.Errorf("empty String() = %q", got)
	}

	plan.Deactivations.Add(foo1)
	plan.Activations.Add(foo2)
	plan.Downloads.Add(foo2)
	plan.Skipped = append(plan.Skipped, Skip{Name: "bar", Reason: "pinned"})

	assertSet(t, "result", plan.Result(e), "defaults::foo-2.0-0")

	want := "download:\n    defaults::foo-2.0-0\nunlink:\n    defaults::foo-1.0-0\nlink:\n    defaults::foo-2.0-0\nskipped bar: pinned\n"
	if got := plan.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPlanErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &PlanError{Op: "install", Kind: ErrUnknownPackage, Subject: "nosuch", Message: "no package named nosuch", Suggestions: []string{"numpy"}, Err: cause}

	if !errors.Is(err, ErrUnknownPackage) {
		t.Error("errors.Is(err, ErrUnknownPackage) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if errors.Is(err, ErrForbidden) {
		t.Error("errors.Is(err, ErrForbidden) = true")
	}
	msg := err.Error()
	for _, part := range []string{"install:", "no package named nosuch", "did you mean: numpy", "boom"} {
		if !strings.Contains(msg, part) {
			t.Errorf("Error() = %q, missing %q", msg, part)
		}
	}
}
