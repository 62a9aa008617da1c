package version

import (
	"slices"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"1.0", false},
		{"1.9.2", false},
		{"2.7.11", false},
		{"1.0.dev1", false},
		{"1.1rc1", false},
		{"1!2.0", false},
		{"1.0+local.1", false},
		{"1.0_1", false},
		{" 3.6 ", false},

		{"", true},
		{"1..2", true},
		{"1.", true},
		{".1", true},
		{"1.0$", true},
		{"x!1.0", true},
		{"1.0+", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0.0", 0},
		{"1.0_1", "1.0.1", 0},
		{"1.0-1", "1.0.1", 0},
		{"1.9", "1.10", -1},
		{"1.10", "1.9.9", 1},
		{"2.7.11", "2.7.12", -1},
		{"1.1dev1", "1.1a1", -1},
		{"1.1a1", "1.1b1", -1},
		{"1.1b1", "1.1rc1", -1},
		{"1.1rc1", "1.1", -1},
		{"1.1", "1.1.post1", -1},
		{"1.1RC1", "1.1rc1", 0},
		{"1!0.1", "2.0", 1},
		{"bad$", "1.0", -1},
		{"1.0", "bad$", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSort(t *testing.T) {
	versions := []string{"1.10", "1.1.post1", "1.1", "1.1rc1", "1.9", "1.1dev1"}
	Sort(versions)
	want := []string{"1.1dev1", "1.1rc1", "1.1", "1.1.post1", "1.9", "1.10"}
	if !slices.Equal(versions, want) {
		t.Errorf("Sort() = %v, want %v", versions, want)
	}
}

func TestHasPrefix(t *testing.T) {
	tests := []struct {
		v, prefix string
		want      bool
	}{
		{"1.9.2", "1.9", true},
		{"1.9", "1.9", true},
		{"1.9a1", "1.9", true},
		{"1.10", "1.1", false},
		{"2.0", "1", false},
		{"1.9", "1.9.2", false},
		{"1!1.9", "1.9", false},
	}
	for _, tt := range tests {
		t.Run(tt.v+"/"+tt.prefix, func(t *testing.T) {
			if got := MustParse(tt.v).HasPrefix(MustParse(tt.prefix)); got != tt.want {
				t.Errorf("%q.HasPrefix(%q) = %v, want %v", tt.v, tt.prefix, got, tt.want)
			}
		})
	}
}

func TestPrefixBounds(t *testing.T) {
	p := MustParse("1.9")
	lower := p.PrefixLowerBound()
	upper, ok := p.PrefixUpperBound()
	if !ok {
		t.Fatal("PrefixUpperBound(1.9) not found")
	}
	if !upper.Equal(MustParse("1.10")) {
		t.Errorf("upper bound = %s, want equal to 1.10", upper)
	}
	for _, v := range []string{"1.9", "1.9.0", "1.9a1", "1.9.99"} {
		pv := MustParse(v)
		if lower.Compare(pv) > 0 || pv.Compare(upper) >= 0 {
			t.Errorf("%s outside [%s, %s)", v, lower, upper)
		}
	}
	if _, ok := MustParse("1.9a").PrefixUpperBound(); ok {
		t.Error("PrefixUpperBound(1.9a) should be unknown")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		v    string
		n    int
		want string
	}{
		{"3.6.1", 2, "3.6"},
		{"3", 2, "3"},
		{"2.7.11+local", 3, "2.7.11"},
		{"1!2.3.4", 1, "1!2"},
	}
	for _, tt := range tests {
		if got := MustParse(tt.v).Truncate(tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.v, tt.n, got, tt.want)
		}
	}
}

func TestStringAndZero(t *testing.T) {
	if got := MustParse(" 1.9.2 ").String(); got != "1.9.2" {
		t.Errorf("String() = %q", got)
	}
	var v Version
	if !v.IsZero() || MustParse("1").IsZero() {
		t.Error("IsZero() mismatch")
	}
}
