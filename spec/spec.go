package spec

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/albertocavalcante/go-condaplan/version"
)

// ArchiveSuffix is the filename suffix of conda package archives.
const ArchiveSuffix = ".tar.bz2"

var nameRegex = regexp.MustCompile(`^[a-z0-9_][a-z0-9_.+-]*$`)

// Spec is a package specification: a name plus optional channel, version
// and build constraints.
type Spec struct {
	// Name is the lower-cased package name.
	Name string

	// Channel restricts matches to one channel. Empty means any channel.
	Channel string

	// Version matches package versions. Nil matches any version.
	Version Matcher

	// Build matches build strings, with '*' wildcards. Empty matches any build.
	Build string
}

// ParseError reports a spec string that could not be parsed.
type ParseError struct {
	Input   string
	Message string
	Wrapped error
}

func (e *ParseError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("invalid spec %q: %s: %v", e.Input, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("invalid spec %q: %s", e.Input, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

// Parse parses a spec string in any of the forms described in the package
// documentation.
func Parse(input string) (Spec, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Spec{}, &ParseError{Input: input, Message: "empty spec"}
	}

	if strings.HasSuffix(s, ArchiveSuffix) {
		name, ver, build, err := SplitCanonicalName(path.Base(s))
		if err != nil {
			return Spec{}, &ParseError{Input: input, Message: "bad package filename", Wrapped: err}
		}
		return exact(input, name, ver, build)
	}

	var sp Spec
	if ch, rest, ok := strings.Cut(s, "::"); ok {
		sp.Channel = strings.TrimSpace(ch)
		s = strings.TrimSpace(rest)
		if sp.Channel == "" {
			return Spec{}, &ParseError{Input: input, Message: "empty channel"}
		}
	}

	name, verExpr, build, err := splitSpec(s)
	if err != nil {
		return Spec{}, &ParseError{Input: input, Message: err.Error()}
	}

	sp.Name = strings.ToLower(name)
	if !nameRegex.MatchString(sp.Name) {
		return Spec{}, &ParseError{Input: input, Message: fmt.Sprintf("invalid package name %q", name)}
	}
	if build == "*" {
		build = ""
	}
	sp.Build = build

	m, err := ParseVersion(verExpr)
	if err != nil {
		return Spec{}, &ParseError{Input: input, Message: "bad version", Wrapped: err}
	}
	sp.Version = m
	return sp, nil
}

// MustParse parses a spec or panics. Use only for constants/tests.
func MustParse(s string) Spec {
	sp, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return sp
}

// ParseAll parses every string, stopping at the first error.
func ParseAll(inputs []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(inputs))
	for _, in := range inputs {
		sp, err := Parse(in)
		if err != nil {
			return nil, err
		}
		specs = append(specs, sp)
	}
	return specs, nil
}

// splitSpec splits the channel-less part of a spec into name, version
// expression and build.
func splitSpec(s string) (name, ver, build string, err error) {
	if strings.ContainsAny(s, " \t") {
		fields := strings.Fields(s)
		if len(fields) > 3 {
			return "", "", "", fmt.Errorf("too many fields")
		}
		name = fields[0]
		if len(fields) > 1 {
			ver = fields[1]
		}
		if len(fields) > 2 {
			build = fields[2]
		}
		return name, ver, build, nil
	}

	i := strings.IndexAny(s, "=<>!~")
	if i < 0 {
		return s, "", "", nil
	}
	name, rest := s[:i], s[i:]

	switch {
	case strings.HasPrefix(rest, "=="):
		body := rest[2:]
		ver, build, _ = strings.Cut(body, "=")
		build = strings.TrimPrefix(build, "=")
		if strings.ContainsAny(ver, "<>!~,|") {
			return "", "", "", fmt.Errorf("operators not allowed after ==")
		}
		if ver == "" {
			return "", "", "", fmt.Errorf("missing version after ==")
		}
		return name, "==" + ver, build, nil
	case rest[0] == '=':
		body := rest[1:]
		if v, b, ok := strings.Cut(body, "="); ok {
			if v == "" {
				return "", "", "", fmt.Errorf("missing version")
			}
			return name, v, b, nil
		}
		if body == "" {
			return "", "", "", fmt.Errorf("missing version")
		}
		if !strings.HasSuffix(body, "*") {
			body += "*"
		}
		return name, body, "", nil
	}
	return name, rest, "", nil
}

func exact(input, name, ver, build string) (Spec, error) {
	v, err := version.Parse(ver)
	if err != nil {
		return Spec{}, &ParseError{Input: input, Message: "bad version", Wrapped: err}
	}
	name = strings.ToLower(name)
	if !nameRegex.MatchString(name) {
		return Spec{}, &ParseError{Input: input, Message: fmt.Sprintf("invalid package name %q", name)}
	}
	return Spec{Name: name, Version: exactMatcher{v: v}, Build: build}, nil
}

// Exact returns the spec matching exactly one name, version and build.
func Exact(name, ver, build string) (Spec, error) {
	return exact(name+"-"+ver+"-"+build, name, ver, build)
}

// ForName returns a spec matching any package called name.
func ForName(name string) Spec {
	return Spec{Name: strings.ToLower(name)}
}

// SplitCanonicalName splits "name-version-build" (optionally with the
// archive suffix) into its parts. Package names may contain dashes; version
// and build may not.
func SplitCanonicalName(s string) (name, ver, build string, err error) {
	s = strings.TrimSuffix(s, ArchiveSuffix)
	i := strings.LastIndexByte(s, '-')
	if i <= 0 {
		return "", "", "", fmt.Errorf("%q is not of the form name-version-build", s)
	}
	build = s[i+1:]
	j := strings.LastIndexByte(s[:i], '-')
	if j <= 0 {
		return "", "", "", fmt.Errorf("%q is not of the form name-version-build", s)
	}
	name, ver = s[:j], s[j+1:i]
	if ver == "" || build == "" {
		return "", "", "", fmt.Errorf("%q is not of the form name-version-build", s)
	}
	return name, ver, build, nil
}

// Match reports whether a package with the given name, version and build
// satisfies the spec. The channel is not checked.
func (s Spec) Match(name, ver, build string) bool {
	if name != s.Name {
		return false
	}
	if s.Build != "" && !matchBuild(s.Build, build) {
		return false
	}
	if s.Version == nil {
		return true
	}
	v, err := version.Parse(ver)
	if err != nil {
		return false
	}
	return s.Version.Match(v)
}

func matchBuild(pattern, build string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == build
	}
	ok, err := path.Match(pattern, build)
	return err == nil && ok
}

// IsBare reports whether the spec is only a name.
func (s Spec) IsBare() bool {
	return s.Version == nil && s.Build == "" && s.Channel == ""
}

// HasVersion reports whether the spec constrains the version.
func (s Spec) HasVersion() bool {
	return s.Version != nil
}

// IsExact reports whether the spec pins an exact version and build.
func (s Spec) IsExact() bool {
	_, ok := s.Version.(exactMatcher)
	return ok && s.Build != "" && !strings.Contains(s.Build, "*")
}

// LeadingVersion returns the version an exact or prefix spec is anchored
// on, e.g. 3.6 for "python=3.6" or 3.6.1 for "python 3.6.1".
func (s Spec) LeadingVersion() (version.Version, bool) {
	switch m := s.Version.(type) {
	case exactMatcher:
		return m.v, true
	case prefixMatcher:
		return m.p, true
	}
	return version.Version{}, false
}

// WithPrefixVersion returns a copy of s matching versions with prefix v and
// any build.
func (s Spec) WithPrefixVersion(v version.Version) Spec {
	return Spec{Name: s.Name, Channel: s.Channel, Version: prefixMatcher{p: v}}
}

// String returns the normalized spec string, for example
// "defaults::numpy 1.9* py27_0".
func (s Spec) String() string {
	var b strings.Builder
	if s.Channel != "" {
		b.WriteString(s.Channel)
		b.WriteString("::")
	}
	b.WriteString(s.Name)
	if s.Version != nil || s.Build != "" {
		b.WriteByte(' ')
		if s.Version != nil {
			b.WriteString(s.Version.String())
		} else {
			b.WriteByte('*')
		}
	}
	if s.Build != "" {
		b.WriteByte(' ')
		b.WriteString(s.Build)
	}
	return b.String()
}

// Equal reports whether two specs have the same normalized form.
func (s Spec) Equal(o Spec) bool {
	return s.String() == o.String()
}
