package lockfile

import (
	"errors"
	"fmt"
	"slices"

	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// CurrentVersion is the lockfile format written by this package.
const CurrentVersion = 1

// ErrUnsupportedVersion is returned for lockfiles of another format version.
var ErrUnsupportedVersion = errors.New("unsupported lockfile version")

// Lockfile is the locked state of one environment.
type Lockfile struct {
	// Version is the lockfile format version.
	Version int `json:"lockFileVersion"`

	// Channels is the channel priority order the packages were resolved
	// with, highest first.
	Channels []string `json:"channels"`

	// Packages maps each package's Dist to its locked entry.
	Packages map[string]Entry `json:"packages"`

	// Pinned holds the prefix's pinned specs.
	Pinned []string `json:"pinned,omitempty"`
}

// Entry is one locked package build.
type Entry struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Build       string   `json:"build"`
	BuildNumber int      `json:"build_number"`
	Channel     string   `json:"channel,omitempty"`
	Features    []string `json:"features,omitempty"`
}

// Dist returns "channel::name-version-build", or the canonical name when the
// entry has no channel.
func (e Entry) Dist() string {
	canonical := e.Name + "-" + e.Version + "-" + e.Build
	if e.Channel == "" {
		return canonical
	}
	return e.Channel + "::" + canonical
}

// New creates an empty lockfile of the current version.
func New() *Lockfile {
	return &Lockfile{
		Version:  CurrentVersion,
		Packages: make(map[string]Entry),
	}
}

// FromSet locks pkgs, resolved against channels, with the given pins.
func FromSet(channels []string, pkgs record.Set, pins []spec.Spec) *Lockfile {
	lf := New()
	lf.Channels = slices.Clone(channels)
	for _, p := range pkgs {
		lf.Add(p)
	}
	for _, pin := range pins {
		lf.Pinned = append(lf.Pinned, pin.String())
	}
	return lf
}

// FromEnvironment locks the packages linked into env.
func FromEnvironment(env *environment.Environment, channels []string) *Lockfile {
	return FromSet(channels, env.Linked(), env.Pinned())
}

// Add records p, replacing any entry with the same Dist.
func (l *Lockfile) Add(p *record.Package) {
	if l.Packages == nil {
		l.Packages = make(map[string]Entry)
	}
	l.Packages[p.Dist()] = Entry{
		Name:        p.Name,
		Version:     p.Version,
		Build:       p.Build,
		BuildNumber: p.BuildNumber,
		Channel:     p.Channel,
		Features:    slices.Clone(p.Features),
	}
}

// Entries returns the locked entries sorted by Dist.
func (l *Lockfile) Entries() []Entry {
	keys := make([]string, 0, len(l.Packages))
	for k := range l.Packages {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = l.Packages[k]
	}
	return out
}

// Specs returns one exact, channel-qualified spec string per locked package,
// sorted by Dist. Planning them reproduces the locked set.
func (l *Lockfile) Specs() []string {
	entries := l.Entries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		s, err := spec.Exact(e.Name, e.Version, e.Build)
		if err != nil {
			// Parse already rejected such entries.
			continue
		}
		s.Channel = e.Channel
		out = append(out, s.String())
	}
	return out
}

// PinnedSpecs parses the recorded pins.
func (l *Lockfile) PinnedSpecs() ([]spec.Spec, error) {
	return spec.ParseAll(l.Pinned)
}

// IsCompatible reports whether this package can read the lockfile.
func (l *Lockfile) IsCompatible() bool {
	return l.Version == CurrentVersion
}

// Validate checks the format version and every entry.
func (l *Lockfile) Validate() error {
	if !l.IsCompatible() {
		return fmt.Errorf("%w: %d (want %d)", ErrUnsupportedVersion, l.Version, CurrentVersion)
	}
	for key, e := range l.Packages {
		if e.Name == "" || e.Version == "" || e.Build == "" {
			return fmt.Errorf("package %q: name, version and build are required", key)
		}
		if _, err := spec.Exact(e.Name, e.Version, e.Build); err != nil {
			return fmt.Errorf("package %q: %w", key, err)
		}
		if key != e.Dist() {
			return fmt.Errorf("package key %q does not match entry %s", key, e.Dist())
		}
	}
	if _, err := l.PinnedSpecs(); err != nil {
		return fmt.Errorf("pinned: %w", err)
	}
	return nil
}
