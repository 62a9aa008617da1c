// Package cli implements the condaplan command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-condaplan"
	"github.com/albertocavalcante/go-condaplan/config"
	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/index"
	"github.com/albertocavalcante/go-condaplan/remote"
)

// Output formats accepted by --output.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// rootOptions holds the global flags shared by every command.
type rootOptions struct {
	configPath string
	indexFiles []string
	channels   []string
	prefix     string
	root       bool
	verbose    bool
	output     string
	color      string
}

// NewRootCommand builds the condaplan command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:     "condaplan",
		Version: version,
		Short:   "Compute conda environment package plans",
		Long: `condaplan computes the packages to download, link and unlink for conda
environment operations, without touching the environment.

The package index is read from repodata.json files and Starlark channel
manifests given with --index or listed in the config file. Without --config
the file named by $CONDAPLAN_CONFIG is used, then condaplan/config.yaml,
config.yml or config.toml under the XDG config directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configureColor(opts.color, cmd.OutOrStdout()); err != nil {
				return err
			}
			switch opts.output {
			case formatText, formatJSON, formatYAML:
				return nil
			}
			return fmt.Errorf("unknown output format %q: use text, json or yaml", opts.output)
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml, .yml or .toml)")
	flags.StringArrayVarP(&opts.indexFiles, "index", "i", nil, "Index file or repodata URL as channel=path or path (repeatable)")
	flags.StringSliceVar(&opts.channels, "channel", nil, "Channel priority order, highest first")
	flags.StringVarP(&opts.prefix, "prefix", "p", "", "Target environment prefix")
	flags.BoolVar(&opts.root, "root", false, "Treat the prefix as the root environment")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log planning diagnostics to stderr")
	flags.StringVarP(&opts.output, "output", "o", formatText, "Output format: text, json or yaml")
	flags.StringVar(&opts.color, "color", "auto", "Colour text output: auto, always or never")

	cmd.AddCommand(
		newCreateCommand(opts),
		newInstallCommand(opts),
		newRemoveCommand(opts),
		newUpdateCommand(opts),
		newActivateCommand(opts),
		newDeactivateCommand(opts),
		newDownloadCommand(opts),
		newSearchCommand(opts),
		newLockCommand(opts),
		newGraphCommand(opts),
	)
	return cmd
}

// configureColor applies --color. In auto mode colour is used only when w
// is a terminal.
func configureColor(mode string, w io.Writer) error {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto":
		f, ok := w.(*os.File)
		color.NoColor = !ok || (!isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()))
	default:
		return fmt.Errorf("unknown color mode %q: use auto, always or never", mode)
	}
	return nil
}

// loadConfig reads --config, or a discovered config file, or the defaults,
// and applies --channel.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	path := o.configPath
	if path == "" {
		path, _ = config.Discover()
	}
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if len(o.channels) > 0 {
		cfg.Channels = o.channels
	}
	return cfg, nil
}

// planner loads the config and index and builds a planner over them.
func (o *rootOptions) planner(cmd *cobra.Command) (*condaplan.Planner, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	extra := make([]index.Source, 0, len(o.indexFiles))
	for _, f := range o.indexFiles {
		extra = append(extra, index.ParseSource(f))
	}
	if len(cfg.IndexFiles) == 0 && len(extra) == 0 {
		return nil, nil, fmt.Errorf("no index files: pass --index or set index_files in the config")
	}
	var logger *slog.Logger
	if o.verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	fetcher, err := cfg.Fetcher(remote.WithLogger(componentLogger(logger, "remote")))
	if err != nil {
		return nil, nil, err
	}
	idx, err := cfg.LoadIndex(cmd.Context(), fetcher, extra...)
	if err != nil {
		return nil, nil, err
	}

	popts, err := cfg.PlannerOptions()
	if err != nil {
		return nil, nil, err
	}
	if logger != nil {
		popts = append(popts, condaplan.WithLogger(componentLogger(logger, "planner")))
	}
	p, err := condaplan.New(idx, popts...)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}

// componentLogger tags logger with a component, or returns nil.
func componentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With("component", component)
}

// environment loads the prefix named by --prefix.
func (o *rootOptions) environment(cfg *config.Config) (*environment.Environment, error) {
	if strings.TrimSpace(o.prefix) == "" {
		return nil, fmt.Errorf("--prefix is required")
	}
	if o.root {
		return environment.Load(o.prefix, environment.AsRoot())
	}
	return cfg.LoadEnvironment(o.prefix)
}
