// Package config loads planner settings from YAML or TOML files.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/go-condaplan"
	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/index"
	"github.com/albertocavalcante/go-condaplan/remote"
)

// Config is the on-disk planner configuration.
type Config struct {
	// Channels lists channel names in priority order, highest first.
	Channels []string `yaml:"channels" toml:"channels" json:"channels"`

	// RootPrefix is the prefix of the root environment.
	RootPrefix string `yaml:"root_prefix" toml:"root_prefix" json:"root_prefix"`

	// PkgsDirs are package cache directories.
	PkgsDirs []string `yaml:"pkgs_dirs" toml:"pkgs_dirs" json:"pkgs_dirs"`

	DefaultPython string `yaml:"default_python" toml:"default_python" json:"default_python"`
	DefaultNumpy  string `yaml:"default_numpy" toml:"default_numpy" json:"default_numpy"`

	// IndexFiles are "channel=path" or bare paths of repodata.json files and
	// channel manifests, or repodata URLs. Relative paths resolve against
	// the config file.
	IndexFiles []string `yaml:"index_files" toml:"index_files" json:"index_files"`

	// RemoteTimeout bounds each repodata download, e.g. "45s".
	RemoteTimeout string `yaml:"remote_timeout" toml:"remote_timeout" json:"remote_timeout"`

	dir string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Channels:      []string{"defaults"},
		DefaultPython: condaplan.DefaultPythonSpec,
		DefaultNumpy:  condaplan.DefaultNumpySpec,
	}
}

// Load reads the file at path over the defaults. The format follows the
// extension: .yaml and .yml for YAML, .toml for TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q: use .yaml, .yml or .toml", ext)
	}
	cfg.dir = filepath.Dir(path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration can build a planner.
func (c *Config) Validate() error {
	if len(c.Channels) == 0 {
		return errors.New("at least one channel is required")
	}
	for _, ch := range c.Channels {
		if strings.TrimSpace(ch) == "" {
			return errors.New("channel names must not be empty")
		}
	}
	if _, err := c.remoteTimeout(); err != nil {
		return err
	}
	_, err := c.PlannerOptions()
	return err
}

func (c *Config) remoteTimeout() (time.Duration, error) {
	if c.RemoteTimeout == "" {
		return remote.DefaultRequestTimeout, nil
	}
	d, err := time.ParseDuration(c.RemoteTimeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid remote_timeout %q: want a positive duration such as 30s", c.RemoteTimeout)
	}
	return d, nil
}

// Fetcher returns a repodata client using the configured timeout.
func (c *Config) Fetcher(opts ...remote.ClientOption) (*remote.Client, error) {
	d, err := c.remoteTimeout()
	if err != nil {
		return nil, err
	}
	return remote.NewClient(append([]remote.ClientOption{remote.WithTimeout(d)}, opts...)...), nil
}

// PlannerOptions converts the configuration to planner options.
func (c *Config) PlannerOptions() ([]condaplan.Option, error) {
	var opts []condaplan.Option
	if c.DefaultPython != "" {
		opts = append(opts, condaplan.WithDefaultPythonSpec(c.DefaultPython))
	}
	if c.DefaultNumpy != "" {
		opts = append(opts, condaplan.WithDefaultNumpySpec(c.DefaultNumpy))
	}
	if len(c.PkgsDirs) > 0 {
		opts = append(opts, condaplan.WithCache(condaplan.DirCache{Dirs: c.resolveAll(c.PkgsDirs)}))
	}

	// Surface option errors here rather than at planner construction.
	if _, err := condaplan.New(index.New(c.Channels), opts...); err != nil {
		return nil, err
	}
	return opts, nil
}

// Sources returns the index sources named by IndexFiles.
func (c *Config) Sources() []index.Source {
	out := make([]index.Source, 0, len(c.IndexFiles))
	for _, f := range c.IndexFiles {
		src := index.ParseSource(f)
		src.Path = c.resolve(src.Path)
		out = append(out, src)
	}
	return out
}

// LoadIndex loads every index source with the configured channel priority.
// A nil fetcher uses Fetcher() for URL sources.
func (c *Config) LoadIndex(ctx context.Context, fetcher index.Fetcher, extra ...index.Source) (*index.Index, error) {
	if fetcher == nil {
		client, err := c.Fetcher()
		if err != nil {
			return nil, err
		}
		fetcher = client
	}
	return index.LoadContext(ctx, fetcher, c.Channels, append(c.Sources(), extra...)...)
}

// LoadEnvironment reads the environment at prefix, marking it as root when
// it is the configured root prefix.
func (c *Config) LoadEnvironment(prefix string) (*environment.Environment, error) {
	var opts []environment.Option
	if c.RootPrefix != "" && filepath.Clean(c.resolve(c.RootPrefix)) == filepath.Clean(prefix) {
		opts = append(opts, environment.AsRoot())
	}
	return environment.Load(prefix, opts...)
}

func (c *Config) resolve(path string) string {
	if c.dir == "" || filepath.IsAbs(path) || remote.IsURL(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

func (c *Config) resolveAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = c.resolve(p)
	}
	return out
}
