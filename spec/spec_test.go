package spec

import (
	"errors"
	"testing"

	"github.com/albertocavalcante/go-condaplan/version"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "numpy", want: "numpy"},
		{input: "NumPy", want: "numpy"},
		{input: "numpy 1.9*", want: "numpy 1.9*"},
		{input: "numpy 1.9* py27_0", want: "numpy 1.9* py27_0"},
		{input: "numpy * py27_0", want: "numpy * py27_0"},
		{input: "numpy=1.9", want: "numpy 1.9*"},
		{input: "numpy=1.9*", want: "numpy 1.9*"},
		{input: "numpy=1.9.2=py27_0", want: "numpy ==1.9.2 py27_0"},
		{input: "numpy==1.9.2", want: "numpy ==1.9.2"},
		{input: "numpy>=1.10,<2", want: "numpy >=1.10,<2"},
		{input: "numpy 1.9|1.10", want: "numpy ==1.9|==1.10"},
		{input: "numpy ~=1.4.2", want: "numpy >=1.4.2,1.4*"},
		{input: "defaults::numpy", want: "defaults::numpy"},
		{input: "defaults::numpy=1.9", want: "defaults::numpy 1.9*"},
		{input: "numpy-1.9.2-py27_0.tar.bz2", want: "numpy ==1.9.2 py27_0"},
		{input: "/pkgs/numpy-1.9.2-py27_0.tar.bz2", want: "numpy ==1.9.2 py27_0"},
		{input: "  zlib  ", want: "zlib"},

		{input: "", wantErr: true},
		{input: "::numpy", wantErr: true},
		{input: "numpy 1 py27_0 extra", wantErr: true},
		{input: "numpy=", wantErr: true},
		{input: "numpy==", wantErr: true},
		{input: "numpy ~=1", wantErr: true},
		{input: "numpy >=1.*", wantErr: true},
		{input: "foo-1.0.tar.bz2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Errorf("Parse(%q) error type = %T, want *ParseError", tt.input, err)
				}
				return
			}
			if got := s.String(); got != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		spec, name, ver, build string
		want                   bool
	}{
		{"numpy", "numpy", "1.9.2", "py27_0", true},
		{"numpy", "scipy", "1.9.2", "py27_0", false},
		{"numpy 1.9*", "numpy", "1.9.2", "py27_0", true},
		{"numpy 1.9*", "numpy", "1.10.0", "py27_0", false},
		{"numpy 1.9", "numpy", "1.9.0", "py27_0", true},
		{"numpy 1.9", "numpy", "1.9.2", "py27_0", false},
		{"numpy * py27*", "numpy", "1.9.2", "py27_0", true},
		{"numpy * py27*", "numpy", "1.9.2", "py36_0", false},
		{"numpy=1.9.2=py27_0", "numpy", "1.9.2", "py27_1", false},
		{"numpy >=1.10,<2", "numpy", "1.11.0", "0", true},
		{"numpy >=1.10,<2", "numpy", "2.0", "0", false},
		{"numpy 1.9|1.11*", "numpy", "1.11.3", "0", true},
		{"numpy !=1.9", "numpy", "1.9.0", "0", false},
		{"numpy 1.9*", "numpy", "bad$", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.spec+"/"+tt.name+"-"+tt.ver+"-"+tt.build, func(t *testing.T) {
			if got := MustParse(tt.spec).Match(tt.name, tt.ver, tt.build); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		spec                          string
		bare, hasVersion, exact, lead bool
	}{
		{"numpy", true, false, false, false},
		{"defaults::numpy", false, false, false, false},
		{"numpy * py27_0", false, false, false, false},
		{"numpy 1.9*", false, true, false, true},
		{"numpy 1.9.2", false, true, false, true},
		{"numpy=1.9.2=py27_0", false, true, true, true},
		{"numpy=1.9.2=py27*", false, true, false, true},
		{"numpy >=1.9", false, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			s := MustParse(tt.spec)
			if got := s.IsBare(); got != tt.bare {
				t.Errorf("IsBare() = %v, want %v", got, tt.bare)
			}
			if got := s.HasVersion(); got != tt.hasVersion {
				t.Errorf("HasVersion() = %v, want %v", got, tt.hasVersion)
			}
			if got := s.IsExact(); got != tt.exact {
				t.Errorf("IsExact() = %v, want %v", got, tt.exact)
			}
			if _, got := s.LeadingVersion(); got != tt.lead {
				t.Errorf("LeadingVersion() ok = %v, want %v", got, tt.lead)
			}
		})
	}
}

func TestWithPrefixVersion(t *testing.T) {
	s := MustParse("defaults::python 3.6.1 0")
	v, ok := s.LeadingVersion()
	if !ok || v.String() != "3.6.1" {
		t.Fatalf("LeadingVersion() = %v, %v", v, ok)
	}
	pin := s.WithPrefixVersion(version.MustParse(v.Truncate(2)))
	if got := pin.String(); got != "defaults::python 3.6*" {
		t.Errorf("WithPrefixVersion() = %q", got)
	}
}

func TestEqualAndExact(t *testing.T) {
	if !MustParse("numpy=1.9").Equal(MustParse("numpy 1.9*")) {
		t.Error("numpy=1.9 should equal numpy 1.9*")
	}
	s, err := Exact("numpy", "1.9.2", "py27_0")
	if err != nil {
		t.Fatal(err)
	}
	if !s.Equal(MustParse("numpy-1.9.2-py27_0.tar.bz2")) {
		t.Errorf("Exact() = %s", s)
	}
	if _, err := Exact("numpy", "bad$", "0"); err == nil {
		t.Error("Exact() with a bad version should fail")
	}
}

func TestSplitCanonicalName(t *testing.T) {
	tests := []struct {
		input            string
		name, ver, build string
		wantErr          bool
	}{
		{input: "numpy-1.9.2-py27_0", name: "numpy", ver: "1.9.2", build: "py27_0"},
		{input: "ca-certificates-2017.1-0.tar.bz2", name: "ca-certificates", ver: "2017.1", build: "0"},
		{input: "numpy", wantErr: true},
		{input: "numpy-1.9", wantErr: true},
		{input: "numpy--0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, ver, build, err := SplitCanonicalName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitCanonicalName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && (name != tt.name || ver != tt.ver || build != tt.build) {
				t.Errorf("SplitCanonicalName(%q) = %q, %q, %q", tt.input, name, ver, build)
			}
		})
	}
}

func TestCheckConsistent(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		wantErr bool
	}{
		{name: "different names", specs: []string{"numpy 1.9*", "scipy 0.18*"}},
		{name: "overlapping ranges", specs: []string{"numpy >=1.9", "numpy <1.11"}},
		{name: "exact inside prefix", specs: []string{"numpy ==1.9", "numpy 1.9*"}},
		{name: "alternatives", specs: []string{"numpy 1.9|1.11", "numpy 1.11*"}},
		{name: "build glob", specs: []string{"numpy * py27*", "numpy 1.9 py27_0"}},
		{name: "disjoint prefixes", specs: []string{"numpy 1.9*", "numpy 1.11*"}, wantErr: true},
		{name: "excluded version", specs: []string{"numpy !=1.9", "numpy ==1.9"}, wantErr: true},
		{name: "different builds", specs: []string{"numpy 1.9.2 py27_0", "numpy 1.9.2 py34_0"}, wantErr: true},
		{name: "different channels", specs: []string{"defaults::numpy", "extra::numpy"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs := make([]Spec, len(tt.specs))
			for i, s := range tt.specs {
				specs[i] = MustParse(s)
			}
			err := CheckConsistent(specs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckConsistent(%v) error = %v, wantErr %v", tt.specs, err, tt.wantErr)
			}
			var ie *InconsistencyError
			if err != nil && (!errors.As(err, &ie) || ie.Name != "numpy") {
				t.Errorf("error = %v, want InconsistencyError for numpy", err)
			}
		})
	}
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"python 2.7*", "python ==2.7.11", true},
		{"python 2.7*", "python 3.6*", false},
		{"python >=3", "python 3.6*", true},
		{"python 2.7*", "numpy 1.9*", true},
	}
	for _, tt := range tests {
		if got := Compatible(MustParse(tt.a), MustParse(tt.b)); got != tt.want {
			t.Errorf("Compatible(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
