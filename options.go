package condaplan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/albertocavalcante/go-condaplan/spec"
)

// Defaults used to pin the ecosystem anchors when the user does not.
const (
	DefaultPythonSpec = "python 3.6*"
	DefaultNumpySpec  = "numpy 1.11*"
)

// DefaultBasePackages may never be removed from the root environment.
var DefaultBasePackages = []string{"python", "pyyaml", "yaml", "conda"}

// Option configures a Planner.
type Option func(*plannerConfig) error

// plannerConfig holds all planner configuration.
type plannerConfig struct {
	defaultPython  spec.Spec
	defaultNumpy   spec.Spec
	cache          PackageCache
	maxSuggestions int
	basePackages   []string

	// logger is the structured logger for debug/info output.
	// If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// WithDefaultPythonSpec sets the spec python is pinned to when a plan pulls
// python in without the user naming it.
func WithDefaultPythonSpec(s string) Option {
	return func(c *plannerConfig) error {
		sp, err := anchorSpec(s, pythonName)
		if err != nil {
			return err
		}
		c.defaultPython = sp
		return nil
	}
}

// WithDefaultNumpySpec sets the spec numpy is pinned to when a plan pulls
// numpy in without the user naming it.
func WithDefaultNumpySpec(s string) Option {
	return func(c *plannerConfig) error {
		sp, err := anchorSpec(s, numpyName)
		if err != nil {
			return err
		}
		c.defaultNumpy = sp
		return nil
	}
}

func anchorSpec(s, name string) (spec.Spec, error) {
	sp, err := spec.Parse(s)
	if err != nil {
		return spec.Spec{}, err
	}
	if sp.Name != name {
		return spec.Spec{}, fmt.Errorf("default %s spec names %q", name, sp.Name)
	}
	return sp, nil
}

// WithCache sets the local package cache used to decide what to download.
// Without one every package is considered missing from the cache.
func WithCache(cache PackageCache) Option {
	return func(c *plannerConfig) error {
		if cache == nil {
			return errors.New("cache must not be nil")
		}
		c.cache = cache
		return nil
	}
}

// WithMaxSuggestions limits "did you mean" suggestions for unknown packages.
// Zero disables suggestions.
func WithMaxSuggestions(n int) Option {
	return func(c *plannerConfig) error {
		if n < 0 {
			return errors.New("max suggestions must not be negative")
		}
		c.maxSuggestions = n
		return nil
	}
}

// WithBasePackages replaces the packages protected from removal in the
// root environment.
func WithBasePackages(names ...string) Option {
	return func(c *plannerConfig) error {
		c.basePackages = append([]string(nil), names...)
		return nil
	}
}

// WithLogger sets a structured logger for planning diagnostics.
// If not set, logging is disabled (silent mode).
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "planner")
//	planner, err := condaplan.New(idx, condaplan.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *plannerConfig) error {
		c.logger = l
		return nil
	}
}

// log returns the configured logger, or a no-op logger if none was set.
func (c *plannerConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newPlannerConfig applies opts over the defaults.
func newPlannerConfig(opts ...Option) (*plannerConfig, error) {
	c := &plannerConfig{
		defaultPython:  spec.MustParse(DefaultPythonSpec),
		defaultNumpy:   spec.MustParse(DefaultNumpySpec),
		cache:          NoopCache{},
		maxSuggestions: 5,
		basePackages:   DefaultBasePackages,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
