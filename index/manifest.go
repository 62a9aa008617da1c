package index

import (
	"fmt"
	"os"
	"strings"

	"github.com/bazelbuild/buildtools/build"

	"github.com/albertocavalcante/go-condaplan/internal/buildutil"
	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// ManifestError is a problem at a specific position of a channel manifest.
type ManifestError struct {
	Filename string
	Line     int
	Column   int
	Message  string
	Wrapped  error
}

func (e *ManifestError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Filename, e.Message)
}

func (e *ManifestError) Unwrap() error {
	return e.Wrapped
}

// Manifest is the result of parsing a channel manifest.
type Manifest struct {
	// Channels lists the channel() declarations in file order.
	Channels []string

	// Packages holds the declared packages.
	Packages []*record.Package
}

// ParseManifestFile reads and parses a Starlark channel manifest.
func ParseManifestFile(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", filename, err)
	}
	return ParseManifest(filename, data)
}

// ParseManifest parses a Starlark channel manifest. A channel() call sets the
// channel of every package() call after it. Unknown calls are errors so that
// typos are not silently ignored.
func ParseManifest(filename string, content []byte) (*Manifest, error) {
	f, err := build.ParseDefault(filename, content)
	if err != nil {
		return nil, &ManifestError{Filename: filename, Message: fmt.Sprintf("syntax error: %v", err), Wrapped: err}
	}

	m := &Manifest{}
	current := ""
	for _, stmt := range f.Stmt {
		if _, ok := stmt.(*build.CommentBlock); ok {
			continue
		}
		call, ok := stmt.(*build.CallExpr)
		if !ok {
			return nil, errorAt(filename, stmt, "expected a channel() or package() call")
		}
		fn := buildutil.FuncName(call)
		if fn == "" {
			return nil, errorAt(filename, call, "expected a channel() or package() call")
		}

		switch fn {
		case "channel":
			name := buildutil.String(call, "name")
			if name == "" {
				name = buildutil.String(call, "")
			}
			if name == "" {
				return nil, errorAt(filename, call, "channel: missing name")
			}
			current = name
			m.Channels = append(m.Channels, name)
		case "package":
			p, err := manifestPackage(filename, call, current)
			if err != nil {
				return nil, err
			}
			m.Packages = append(m.Packages, p)
		default:
			return nil, errorAt(filename, call, fmt.Sprintf("unknown function %s()", fn))
		}
	}
	return m, nil
}

var packageKeywords = []string{
	"name", "version", "build", "build_number", "channel",
	"depends", "features", "track_features", "meta",
}

func manifestPackage(filename string, call *build.CallExpr, channel string) (*record.Package, error) {
	if unknown := buildutil.UnknownKeywords(call, packageKeywords...); len(unknown) > 0 {
		return nil, errorAt(filename, call, fmt.Sprintf("package: unknown argument %q", unknown[0]))
	}
	p := &record.Package{
		Name:          strings.ToLower(buildutil.String(call, "name")),
		Version:       buildutil.String(call, "version"),
		Build:         buildutil.String(call, "build"),
		BuildNumber:   buildutil.Int(call, "build_number"),
		Channel:       channel,
		Features:      buildutil.StringList(call, "features"),
		TrackFeatures: buildutil.StringList(call, "track_features"),
		Meta:          buildutil.Bool(call, "meta"),
	}
	if ch := buildutil.String(call, "channel"); ch != "" {
		p.Channel = ch
	}
	if p.Name == "" || p.Version == "" || p.Build == "" {
		return nil, errorAt(filename, call, "package: name, version and build are required")
	}

	deps, err := spec.ParseAll(buildutil.StringList(call, "depends"))
	if err != nil {
		e := errorAt(filename, call, fmt.Sprintf("package %s: %v", p.CanonicalName(), err))
		e.Wrapped = err
		return nil, e
	}
	p.Depends = deps
	return p, nil
}

func errorAt(filename string, expr build.Expr, msg string) *ManifestError {
	start, _ := expr.Span()
	return &ManifestError{Filename: filename, Line: start.Line, Column: start.LineRune, Message: msg}
}
