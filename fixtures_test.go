package condaplan

import (
	"errors"
	"slices"
	"testing"

	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/index"
	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// pkg builds a package from "name-version-build" in the defaults channel.
func pkg(canonical string, depends ...string) *record.Package {
	name, ver, build, err := spec.SplitCanonicalName(canonical)
	if err != nil {
		panic(err)
	}
	deps, err := spec.ParseAll(depends)
	if err != nil {
		panic(err)
	}
	return &record.Package{Name: name, Version: ver, Build: build, Channel: "defaults", Depends: deps}
}

func withBuildNumber(p *record.Package, n int) *record.Package {
	p.BuildNumber = n
	return p
}

func withFeatures(p *record.Package, features ...string) *record.Package {
	p.Features = features
	return p
}

func tracking(p *record.Package, features ...string) *record.Package {
	p.TrackFeatures = features
	return p
}

func asMeta(p *record.Package) *record.Package {
	p.Meta = true
	return p
}

func inChannel(p *record.Package, channel string) *record.Package {
	p.Channel = channel
	return p
}

// testIndex is a small index covering anchors, channels, meta-packages and
// feature variants.
func testIndex() *index.Index {
	return index.New([]string{"defaults", "extra"},
		pkg("python-2.7.11-0"),
		pkg("python-2.7.12-0"),
		pkg("python-3.6.0-0"),
		pkg("numpy-1.9.3-py27_0", "python 2.7*"),
		pkg("numpy-1.11.0-py27_0", "python 2.7*"),
		pkg("numpy-1.11.0-py36_0", "python 3.6*"),
		pkg("numpy-1.16.0-py36_0", "python 3.6*"),
		pkg("scipy-0.18.0-np19py27_0", "python 2.7*", "numpy 1.9*"),
		pkg("zlib-1.2.8-3"),
		pkg("foo-1.0-0"),
		pkg("foo-2.0-0"),
		pkg("bar-2.0-0", "foo 1.0*"),
		pkg("conda-4.3.0-py27_0", "python 2.7*"),
		pkg("pyyaml-3.12-py27_0", "python 2.7*"),
		asMeta(pkg("anaconda-4.0-np111py27_0", "python 2.7.11 0", "numpy 1.11.0 py27_0", "zlib 1.2.8 3")),
		asMeta(pkg("miniconda-4.0-0", "python 2.7.11 0")),
		asMeta(pkg("broken-meta-1.0-0", "python 2.7*")),
		tracking(pkg("mkl-11.3-0"), "mkl"),
		withBuildNumber(withFeatures(pkg("fftw-3.0-mkl_1"), "mkl"), 1),
		pkg("fftw-3.0-0"),
		withBuildNumber(pkg("fastmath-1.0-nomkl_1"), 1),
		withFeatures(pkg("fastmath-1.0-mkl_0", "mkl"), "mkl"),
		inChannel(pkg("zlib-1.2.8-3"), "extra"),
		inChannel(pkg("zlib-1.2.11-0"), "extra"),
		inChannel(pkg("extrapkg-1.0-0"), "extra"),
	)
}

func newTestPlanner(t *testing.T, opts ...Option) *Planner {
	t.Helper()
	p, err := New(testIndex(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

// py27 configures the anchors for python 2.7 environments.
func py27() []Option {
	return []Option{WithDefaultPythonSpec("python 2.7*"), WithDefaultNumpySpec("numpy 1.9*")}
}

// env builds an environment whose linked packages are looked up in p's
// index by canonical name.
func env(t *testing.T, p *Planner, canonical []string, opts ...environment.Option) *environment.Environment {
	t.Helper()
	linked := make([]*record.Package, 0, len(canonical))
	for _, c := range canonical {
		linked = append(linked, lookup(t, p, c))
	}
	return environment.New("/envs/test", linked, opts...)
}

func lookup(t *testing.T, p *Planner, canonical string) *record.Package {
	t.Helper()
	pkg, err := p.Index().LookupFromCanonicalName(canonical)
	if err != nil {
		t.Fatalf("LookupFromCanonicalName(%q) error = %v", canonical, err)
	}
	return pkg
}

// dists returns the sorted Dist strings of s, or nil when s is empty.
func dists(s record.Set) []string {
	if len(s) == 0 {
		return nil
	}
	return s.Dists()
}

func assertSet(t *testing.T, what string, got record.Set, want ...string) {
	t.Helper()
	slices.Sort(want)
	if len(want) == 0 {
		want = nil
	}
	if g := dists(got); !slices.Equal(g, want) {
		t.Errorf("%s = %v, want %v", what, g, want)
	}
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %v, got nil", target)
	}
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want errors.Is %v", err, target)
	}
}

func mustSpec(t *testing.T, s string) spec.Spec {
	t.Helper()
	sp, err := spec.Parse(s)
	if err != nil {
		t.Fatalf("spec.Parse(%q) error = %v", s, err)
	}
	return sp
}
