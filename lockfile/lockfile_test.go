package lockfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

func pkg(channel, name, ver, build string) *record.Package {
	return &record.Package{Name: name, Version: ver, Build: build, Channel: channel}
}

func sample() *Lockfile {
	numpy := pkg("defaults", "numpy", "1.11.0", "py27_0")
	numpy.Features = []string{"mkl"}
	return FromSet(
		[]string{"defaults", "extra"},
		record.NewSet(pkg("defaults", "python", "2.7.11", "0"), numpy, pkg("extra", "zlib", "1.2.8", "3")),
		[]spec.Spec{spec.MustParse("python 2.7*")},
	)
}

func TestNew(t *testing.T) {
	lf := New()
	if lf.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", lf.Version, CurrentVersion)
	}
	if lf.Packages == nil {
		t.Error("Packages is nil")
	}
	if !lf.IsCompatible() {
		t.Error("a new lockfile should be compatible")
	}
}

func TestFromSet(t *testing.T) {
	lf := sample()
	var dists []string
	for _, e := range lf.Entries() {
		dists = append(dists, e.Dist())
	}
	want := []string{"defaults::numpy-1.11.0-py27_0", "defaults::python-2.7.11-0", "extra::zlib-1.2.8-3"}
	if !slices.Equal(dists, want) {
		t.Errorf("Entries() = %v, want %v", dists, want)
	}
	if got := lf.Packages["defaults::numpy-1.11.0-py27_0"].Features; !slices.Equal(got, []string{"mkl"}) {
		t.Errorf("numpy features = %v", got)
	}
	if !slices.Equal(lf.Pinned, []string{"python 2.7*"}) {
		t.Errorf("Pinned = %v", lf.Pinned)
	}
}

func TestFromEnvironment(t *testing.T) {
	env := environment.New("/envs/test",
		[]*record.Package{pkg("defaults", "zlib", "1.2.8", "3")},
		environment.WithPinned(spec.MustParse("zlib 1.2*")))
	lf := FromEnvironment(env, []string{"defaults"})
	if len(lf.Packages) != 1 || !slices.Equal(lf.Pinned, []string{"zlib 1.2*"}) {
		t.Errorf("FromEnvironment() = %+v", lf)
	}
}

func TestSpecs(t *testing.T) {
	specs := sample().Specs()
	want := []string{"defaults::numpy ==1.11.0 py27_0", "defaults::python ==2.7.11 0", "extra::zlib ==1.2.8 3"}
	if !slices.Equal(specs, want) {
		t.Fatalf("Specs() = %v, want %v", specs, want)
	}
	for _, s := range specs {
		parsed, err := spec.Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", s, err)
		}
		if !parsed.IsExact() || parsed.Channel == "" {
			t.Errorf("%q should be an exact channel-qualified spec", s)
		}
	}
}

func TestWriteRead(t *testing.T) {
	path := DefaultPath(t.TempDir())
	if Exists(path) {
		t.Fatal("lockfile should not exist yet")
	}
	original := sample()
	if err := original.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	if !Exists(path) {
		t.Fatal("lockfile should exist after WriteFile")
	}
	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, original) {
		t.Errorf("ReadFile() = %+v, want %+v", loaded, original)
	}
	if d := Compare(original, loaded); !d.IsEmpty() {
		t.Errorf("Compare() = %+v, want empty", d)
	}
}

func TestWriteFileReplaces(t *testing.T) {
	dir := t.TempDir()
	path := DefaultPath(dir)
	if err := New().WriteFile(path); err != nil {
		t.Fatal(err)
	}
	if err := sample().WriteFile(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Packages) != len(sample().Packages) {
		t.Errorf("Packages = %d, want %d", len(loaded.Packages), len(sample().Packages))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d files, want only the lockfile", len(entries))
	}
	if Exists(dir) {
		t.Error("Exists() should be false for a directory")
	}
	if err := sample().WriteFile(filepath.Join(dir, "missing", Filename)); err == nil {
		t.Error("WriteFile() into a missing directory should fail")
	}
}

func TestMarshalDeterministic(t *testing.T) {
	a, err := sample().Marshal()
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		b, err := sample().Marshal()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Fatal("Marshal() output is not deterministic")
		}
	}

	var buf bytes.Buffer
	if _, err := New().WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"lockFileVersion\": 1,\n  \"channels\": [],\n  \"packages\": {}\n}\n"
	if buf.String() != want {
		t.Errorf("WriteTo() = %q, want %q", buf.String(), want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "not json", data: `{`},
		{name: "old version", data: `{"lockFileVersion": 0}`, wantErr: ErrUnsupportedVersion},
		{name: "future version", data: `{"lockFileVersion": 2}`, wantErr: ErrUnsupportedVersion},
		{name: "missing build", data: `{"lockFileVersion": 1, "packages": {"zlib-1.2.8-": {"name": "zlib", "version": "1.2.8"}}}`},
		{name: "key mismatch", data: `{"lockFileVersion": 1, "packages": {"zlib": {"name": "zlib", "version": "1.2.8", "build": "3"}}}`},
		{name: "bad pin", data: `{"lockFileVersion": 1, "pinned": ["zlib 1 2 3"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.lock")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v", err)
	}
}

func TestCompare(t *testing.T) {
	old := sample()
	updated := sample()
	delete(updated.Packages, "extra::zlib-1.2.8-3")
	delete(updated.Packages, "defaults::python-2.7.11-0")
	updated.Add(pkg("defaults", "python", "2.7.12", "0"))
	updated.Add(pkg("defaults", "pyyaml", "3.12", "py27_0"))
	updated.Pinned = nil

	d := Compare(old, updated)
	want := &Diff{
		Added:       []string{"defaults::pyyaml-3.12-py27_0"},
		Removed:     []string{"extra::zlib-1.2.8-3"},
		Changed:     []EntryChange{{Name: "python", Old: "defaults::python-2.7.11-0", New: "defaults::python-2.7.12-0"}},
		PinsChanged: true,
	}
	if !reflect.DeepEqual(d, want) {
		t.Errorf("Compare() = %+v, want %+v", d, want)
	}
}

func TestDefaultPath(t *testing.T) {
	if got := DefaultPath(""); got != Filename {
		t.Errorf("DefaultPath(\"\") = %q", got)
	}
	if got := DefaultPath("/envs/test"); got != filepath.Join("/envs/test", Filename) {
		t.Errorf("DefaultPath() = %q", got)
	}
}
