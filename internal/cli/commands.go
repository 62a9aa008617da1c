package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-condaplan"
	"github.com/albertocavalcante/go-condaplan/environment"
	"github.com/albertocavalcante/go-condaplan/graph"
	"github.com/albertocavalcante/go-condaplan/lockfile"
)

// envPlanFunc builds a plan against a loaded environment.
type envPlanFunc func(p *condaplan.Planner, env *environment.Environment, args []string) (*condaplan.PackagePlan, error)

// envCommand wires a command that plans against --prefix.
func envCommand(opts *rootOptions, use, short string, plan envPlanFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, cfg, err := opts.planner(cmd)
			if err != nil {
				return err
			}
			env, err := opts.environment(cfg)
			if err != nil {
				return err
			}
			result, err := plan(p, env, args)
			if err != nil {
				return err
			}
			return renderPlan(cmd.OutOrStdout(), opts.output, result)
		},
	}
}

func newCreateCommand(opts *rootOptions) *cobra.Command {
	var fromLock string
	cmd := &cobra.Command{
		Use:   "create SPEC...",
		Short: "Plan a new environment at --prefix",
		Example: `  condaplan create -p /opt/envs/py27 -i defaults=repodata.json "python=2.7" numpy
  condaplan create -p ./env -c condaplan.yaml "scipy>=0.17"
  condaplan create -p ./copy -i repodata.json --from-lock ./env/condaplan.lock`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.prefix == "" {
				return fmt.Errorf("--prefix is required")
			}
			if fromLock != "" {
				lf, err := lockfile.ReadFile(fromLock)
				if err != nil {
					return err
				}
				args = append(args, lf.Specs()...)
			}
			if len(args) == 0 {
				return fmt.Errorf("create needs at least one spec or --from-lock")
			}
			p, _, err := opts.planner(cmd)
			if err != nil {
				return err
			}
			result, err := p.Create(opts.prefix, args)
			if err != nil {
				return err
			}
			return renderPlan(cmd.OutOrStdout(), opts.output, result)
		},
	}
	cmd.Flags().StringVar(&fromLock, "from-lock", "", "Add the exact builds recorded in a lockfile")
	return cmd
}

func newInstallCommand(opts *rootOptions) *cobra.Command {
	return envCommand(opts, "install SPEC...", "Plan installing packages into --prefix",
		func(p *condaplan.Planner, env *environment.Environment, args []string) (*condaplan.PackagePlan, error) {
			return p.Install(env, args)
		})
}

func newRemoveCommand(opts *rootOptions) *cobra.Command {
	var noDeps bool
	cmd := envCommand(opts, "remove NAME...", "Plan removing packages from --prefix",
		func(p *condaplan.Planner, env *environment.Environment, args []string) (*condaplan.PackagePlan, error) {
			return p.Remove(env, args, !noDeps)
		})
	cmd.Flags().BoolVar(&noDeps, "no-deps", false, "Keep dependent packages linked and report them as broken")
	return cmd
}

func newUpdateCommand(opts *rootOptions) *cobra.Command {
	return envCommand(opts, "update NAME...", "Plan updating linked packages in --prefix",
		func(p *condaplan.Planner, env *environment.Environment, args []string) (*condaplan.PackagePlan, error) {
			return p.Update(env, args)
		})
}

func newActivateCommand(opts *rootOptions) *cobra.Command {
	return envCommand(opts, "activate CANONICAL...", "Plan linking exact builds without resolving dependencies",
		func(p *condaplan.Planner, env *environment.Environment, args []string) (*condaplan.PackagePlan, error) {
			return p.Activate(env, args)
		})
}

func newDeactivateCommand(opts *rootOptions) *cobra.Command {
	return envCommand(opts, "deactivate CANONICAL...", "Plan unlinking exact builds without cascading",
		func(p *condaplan.Planner, env *environment.Environment, args []string) (*condaplan.PackagePlan, error) {
			return p.Deactivate(env, args)
		})
}

func newDownloadCommand(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "download CANONICAL...",
		Short: "Plan fetching exact builds into the package cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := opts.planner(cmd)
			if err != nil {
				return err
			}
			result, err := p.Download(args, force)
			if err != nil {
				return err
			}
			return renderPlan(cmd.OutOrStdout(), opts.output, result)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Download even when the package is cached")
	return cmd
}

func newSearchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search NAME",
		Short: "List the builds of a package in the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := opts.planner(cmd)
			if err != nil {
				return err
			}
			pkgs, err := p.Index().LookupFromName(args[0])
			if err != nil {
				return err
			}
			return renderPackages(cmd.OutOrStdout(), opts.output, pkgs)
		},
	}
}

func newLockCommand(opts *rootOptions) *cobra.Command {
	var (
		file  string
		check bool
	)
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Record the builds linked into --prefix in a lockfile",
		Example: `  condaplan lock -p /opt/envs/py27
  condaplan lock -p /opt/envs/py27 --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			env, err := opts.environment(cfg)
			if err != nil {
				return err
			}
			current := lockfile.FromEnvironment(env, cfg.Channels)

			path := file
			if path == "" {
				path = lockfile.DefaultPath(env.Prefix())
			}
			if check {
				locked, err := lockfile.ReadFile(path)
				if err != nil {
					return err
				}
				diff := lockfile.Compare(locked, current)
				if diff.IsEmpty() {
					_, _ = linkColor.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", path)
					return nil
				}
				renderLockDiff(cmd.OutOrStdout(), diff)
				return fmt.Errorf("%s is out of date", path)
			}
			if path == "-" {
				_, err := current.WriteTo(cmd.OutOrStdout())
				return err
			}
			if err := current.WriteFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d packages)\n", path, len(current.Packages))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Lockfile path, or - for stdout (default <prefix>/condaplan.lock)")
	cmd.Flags().BoolVar(&check, "check", false, "Fail when the lockfile differs from the prefix")
	return cmd
}

func newGraphCommand(opts *rootOptions) *cobra.Command {
	var (
		dot bool
		why string
	)
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the dependency graph of the packages linked into --prefix",
		Example: `  condaplan graph -p /opt/envs/py27
  condaplan graph -p /opt/envs/py27 --why python
  condaplan graph -p /opt/envs/py27 --dot | dot -Tsvg > env.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			env, err := opts.environment(cfg)
			if err != nil {
				return err
			}
			g := graph.Build(env.Linked())

			w := cmd.OutOrStdout()
			switch {
			case why != "":
				chains, err := g.WhyIncluded(why)
				if err != nil {
					return err
				}
				for _, c := range chains {
					fmt.Fprintln(w, c.String())
				}
				return nil
			case dot:
				_, err := fmt.Fprint(w, g.ToDOT())
				return err
			}
			return renderGraph(w, opts.output, g)
		},
	}
	cmd.Flags().BoolVar(&dot, "dot", false, "Print the graph in Graphviz DOT format")
	cmd.Flags().StringVar(&why, "why", "", "Print the dependency chains that pull in a package")
	return cmd
}
