// Package record holds fully resolved package records and sets of them.
package record

import (
	"cmp"
	"slices"
	"strings"

	"github.com/albertocavalcante/go-condaplan/spec"
	"github.com/albertocavalcante/go-condaplan/version"
)

// Package is one exact package artifact from a channel.
type Package struct {
	// Name is the package name, e.g. "numpy".
	Name string `json:"name"`

	// Version is the package version as published, e.g. "1.9.2".
	Version string `json:"version"`

	// Build is the build string, e.g. "py27_0".
	Build string `json:"build"`

	// BuildNumber orders builds of the same version.
	BuildNumber int `json:"build_number"`

	// Channel is the channel the package was published to.
	Channel string `json:"channel,omitempty"`

	// Depends lists the package's dependency specs.
	Depends []spec.Spec `json:"-"`

	// Features are the optional variant tags this build provides.
	Features []string `json:"features,omitempty"`

	// TrackFeatures are the features this package switches on for an
	// environment it is linked into.
	TrackFeatures []string `json:"track_features,omitempty"`

	// Meta marks a meta-package whose depends form an exact manifest.
	Meta bool `json:"is_meta,omitempty"`
}

// CanonicalName returns "name-version-build".
func (p *Package) CanonicalName() string {
	return p.Name + "-" + p.Version + "-" + p.Build
}

// Dist returns the channel-qualified identity "channel::name-version-build".
// Packages without a channel use the canonical name alone.
func (p *Package) Dist() string {
	if p.Channel == "" {
		return p.CanonicalName()
	}
	return p.Channel + "::" + p.CanonicalName()
}

// Filename returns the archive filename of the package.
func (p *Package) Filename() string {
	return p.CanonicalName() + spec.ArchiveSuffix
}

// String returns the canonical name.
func (p *Package) String() string {
	return p.CanonicalName()
}

// Satisfies reports whether the package matches s, including its channel.
func (p *Package) Satisfies(s spec.Spec) bool {
	if s.Channel != "" && s.Channel != p.Channel {
		return false
	}
	return s.Match(p.Name, p.Version, p.Build)
}

// DependencyOn returns the package's dependency specs naming name.
func (p *Package) DependencyOn(name string) []spec.Spec {
	var out []spec.Spec
	for _, d := range p.Depends {
		if d.Name == name {
			out = append(out, d)
		}
	}
	return out
}

// HasFeature reports whether the build provides feature f.
func (p *Package) HasFeature(f string) bool {
	return slices.Contains(p.Features, f)
}

// ExactSpec returns the spec matching exactly this package.
func (p *Package) ExactSpec() spec.Spec {
	s, err := spec.Exact(p.Name, p.Version, p.Build)
	if err != nil {
		// Unparseable versions still need a usable identity.
		return spec.Spec{Name: p.Name, Build: p.Build}
	}
	return s
}

// Compare orders packages of the same name by version, then build number,
// then build string. Packages that compare equal may still differ by channel.
func Compare(a, b *Package) int {
	if c := version.Compare(a.Version, b.Version); c != 0 {
		return c
	}
	if c := cmp.Compare(a.BuildNumber, b.BuildNumber); c != 0 {
		return c
	}
	return strings.Compare(a.Build, b.Build)
}

// SameArtifact reports whether a and b are the same name, version and build,
// regardless of channel.
func SameArtifact(a, b *Package) bool {
	return a.CanonicalName() == b.CanonicalName()
}
