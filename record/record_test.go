package record

import (
	"slices"
	"testing"

	"github.com/albertocavalcante/go-condaplan/spec"
)

func newPkg(channel, name, ver, build string, bn int, deps ...string) *Package {
	p := &Package{Name: name, Version: ver, Build: build, BuildNumber: bn, Channel: channel}
	for _, d := range deps {
		p.Depends = append(p.Depends, spec.MustParse(d))
	}
	return p
}

func TestPackageNames(t *testing.T) {
	p := newPkg("defaults", "numpy", "1.9.2", "py27_0", 0)
	if got := p.CanonicalName(); got != "numpy-1.9.2-py27_0" {
		t.Errorf("CanonicalName() = %q", got)
	}
	if got := p.Dist(); got != "defaults::numpy-1.9.2-py27_0" {
		t.Errorf("Dist() = %q", got)
	}
	if got := p.Filename(); got != "numpy-1.9.2-py27_0.tar.bz2" {
		t.Errorf("Filename() = %q", got)
	}
	if got := newPkg("", "zlib", "1.2.8", "3", 3).Dist(); got != "zlib-1.2.8-3" {
		t.Errorf("Dist() without channel = %q", got)
	}
}

func TestSatisfies(t *testing.T) {
	p := newPkg("defaults", "numpy", "1.9.2", "py27_0", 0)
	tests := []struct {
		spec string
		want bool
	}{
		{"numpy", true},
		{"numpy 1.9*", true},
		{"defaults::numpy", true},
		{"extra::numpy", false},
		{"numpy 1.10*", false},
		{"numpy * py34*", false},
		{"scipy", false},
	}
	for _, tt := range tests {
		if got := p.Satisfies(spec.MustParse(tt.spec)); got != tt.want {
			t.Errorf("Satisfies(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
	if !p.Satisfies(p.ExactSpec()) {
		t.Error("package should satisfy its own exact spec")
	}
}

func TestDependencyOn(t *testing.T) {
	p := newPkg("defaults", "scipy", "0.18.1", "np111py27_0", 0, "numpy 1.11*", "python 2.7*", "numpy >=1.11.1")
	got := p.DependencyOn("numpy")
	if len(got) != 2 {
		t.Fatalf("DependencyOn(numpy) = %v, want 2 specs", got)
	}
	if len(p.DependencyOn("zlib")) != 0 {
		t.Error("DependencyOn(zlib) should be empty")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b *Package
		want int
	}{
		{"version", newPkg("", "numpy", "1.9.2", "0", 0), newPkg("", "numpy", "1.10.0", "0", 0), -1},
		{"build number", newPkg("", "numpy", "1.9.2", "py27_1", 1), newPkg("", "numpy", "1.9.2", "py27_0", 0), 1},
		{"build string", newPkg("", "numpy", "1.9.2", "py27_0", 0), newPkg("", "numpy", "1.9.2", "py34_0", 0), -1},
		{"equal across channels", newPkg("a", "numpy", "1.9.2", "0", 0), newPkg("b", "numpy", "1.9.2", "0", 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSetOperations(t *testing.T) {
	a := newPkg("defaults", "numpy", "1.9.2", "py27_0", 0)
	b := newPkg("defaults", "numpy", "1.11.0", "py27_0", 0)
	c := newPkg("defaults", "python", "2.7.11", "0", 0)
	mirror := newPkg("extra", "python", "2.7.11", "0", 0)

	s := NewSet(a, b, c)
	o := NewSet(b, mirror)

	if got := s.Union(o).Dists(); len(got) != 4 {
		t.Errorf("Union() = %v", got)
	}
	if got := s.Intersect(o).Dists(); !slices.Equal(got, []string{b.Dist()}) {
		t.Errorf("Intersect() = %v", got)
	}
	if got := s.Difference(o).Dists(); !slices.Equal(got, []string{a.Dist(), c.Dist()}) {
		t.Errorf("Difference() = %v", got)
	}
	if !s.HasArtifact(mirror) || s.Has(mirror) {
		t.Error("mirror should share the artifact but not the dist")
	}
	if got := s.Names(); !slices.Equal(got, []string{"numpy", "python"}) {
		t.Errorf("Names() = %v", got)
	}
	if got := s.WithoutNames("numpy").Dists(); !slices.Equal(got, []string{c.Dist()}) {
		t.Errorf("WithoutNames() = %v", got)
	}
	if got := s.WithName("numpy"); len(got) != 2 {
		t.Errorf("WithName() = %v", got.Dists())
	}

	sorted := s.Sorted()
	if sorted[0] != a || sorted[1] != b || sorted[2] != c {
		t.Errorf("Sorted() = %v", sorted)
	}
	groups := s.ByName()
	if len(groups["numpy"]) != 2 || groups["numpy"][1] != b {
		t.Errorf("ByName() = %v", groups)
	}

	clone := s.Clone()
	clone.Remove(a)
	if !s.Has(a) || clone.Has(a) {
		t.Error("Clone() should not share storage")
	}
}

func TestNewest(t *testing.T) {
	old := newPkg("defaults", "numpy", "1.9.2", "py27_0", 0)
	rebuilt := newPkg("defaults", "numpy", "1.11.0", "py27_1", 1)
	first := newPkg("defaults", "numpy", "1.11.0", "py27_0", 0)
	py := newPkg("defaults", "python", "2.7.11", "0", 0)

	got := Newest(NewSet(old, rebuilt, first, py))
	want := []string{rebuilt.Dist(), py.Dist()}
	if !slices.Equal(got.Dists(), want) {
		t.Errorf("Newest() = %v, want %v", got.Dists(), want)
	}
	if len(Newest(NewSet())) != 0 {
		t.Error("Newest(empty) should be empty")
	}
}
