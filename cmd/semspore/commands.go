package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360studio/semspore/config"
	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/process"
	"github.com/c360studio/semspore/rdfio"
	"github.com/c360studio/semspore/spore"
	"github.com/spf13/cobra"
)

// errChecksFailed is returned after a report has listed the failures.
var errChecksFailed = errors.New("one or more checks failed")

// withApp loads documents into a fresh app and runs fn against it.
func withApp(cmd *cobra.Command, patterns []string, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	cfg := configFrom(ctx)
	if cfg.Integration.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Integration.Timeout)
		defer cancel()
	}

	a, err := newApp(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("Failed to close store", "error", err)
		}
	}()

	if len(patterns) > 0 {
		if _, err := a.load(ctx, patterns); err != nil {
			return err
		}
	}
	return fn(ctx, a)
}

// report prints one line per subject and returns errChecksFailed if any failed.
func report(cmd *cobra.Command, subjects []string, check func(string) error) error {
	failed := 0
	for _, s := range subjects {
		if err := check(s); err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %s\n", s, joinErrors(err))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", s)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errChecksFailed, failed, len(subjects))
	}
	return nil
}

// sporeTargets returns the named spores, or every spore in the store.
func sporeTargets(ctx context.Context, a *app, named []string) ([]string, error) {
	if len(named) > 0 {
		return named, nil
	}
	all, err := a.spores(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no gov:TransformationPattern found")
	}
	return all, nil
}

func validateCmd() *cobra.Command {
	var spores []string
	cmd := &cobra.Command{
		Use:   "validate [documents...]",
		Short: "Check spore structure",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args, func(ctx context.Context, a *app) error {
				targets, err := sporeTargets(ctx, a, spores)
				if err != nil {
					return err
				}
				v := a.integrator.Validator()
				return report(cmd, targets, func(s string) error { return v.ValidateSpore(ctx, s) })
			})
		},
	}
	cmd.Flags().StringSliceVar(&spores, "spore", nil, "Spore IRI (default: every spore in the documents)")
	return cmd
}

func shaclCmd() *cobra.Command {
	var spores []string
	cmd := &cobra.Command{
		Use:   "shacl [documents...]",
		Short: "Check spores against SHACL node shapes targeting gov:TransformationPattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args, func(ctx context.Context, a *app) error {
				targets, err := sporeTargets(ctx, a, spores)
				if err != nil {
					return err
				}
				v := a.integrator.Validator()
				return report(cmd, targets, func(s string) error { return v.ValidateSHACL(ctx, s) })
			})
		},
	}
	cmd.Flags().StringSliceVar(&spores, "spore", nil, "Spore IRI (default: every spore in the documents)")
	return cmd
}

func conformanceCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "conformance [documents...]",
		Short: "Check a target model against the conformance level",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args, func(ctx context.Context, a *app) error {
				err := a.gate.ValidateConformance(ctx, model)
				for _, w := range a.gate.Warnings() {
					fmt.Fprintf(cmd.OutOrStdout(), "warn %s\n", w)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%s)\n", model, a.gate.Level())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "Target model IRI")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func integrateCmd() *cobra.Command {
	var (
		model  string
		spores []string
		atomic bool
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "integrate [documents...]",
		Short: "Integrate one spore or a batch of spores into a target model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args, func(ctx context.Context, a *app) error {
				var snap *graph.Snapshot
				if atomic {
					s, err := graph.TakeSnapshot(ctx, a.store)
					if err != nil {
						return fmt.Errorf("snapshot before integration: %w", err)
					}
					snap = s
				}

				var err error
				if len(spores) == 1 {
					err = a.integrator.IntegrateSpore(ctx, spores[0], model)
				} else {
					err = a.integrator.IntegrateConcurrent(ctx, spores, model)
				}
				if err != nil {
					if snap != nil {
						if rerr := snap.Restore(ctx, a.store); rerr != nil {
							return errors.Join(err, fmt.Errorf("restore snapshot: %w", rerr))
						}
						slog.Info("Restored store after failed integration", "triples", len(snap.Triples))
					}
					return err
				}

				fmt.Fprintf(cmd.OutOrStderr(), "integrated %d spore(s) into %s\n", len(spores), model)
				if out != "" {
					return a.write(ctx, out, format, cmd.OutOrStdout())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "Target model IRI")
	cmd.Flags().StringSliceVar(&spores, "spore", nil, "Spore IRI, repeat for a batch")
	cmd.Flags().BoolVar(&atomic, "atomic", false, "Restore the store if integration fails")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the resulting graph to this file (- for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "Output format (turtle, ntriples, jsonld)")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("spore")
	return cmd
}

func migrateCmd() *cobra.Command {
	var (
		sporeIRI string
		version  string
		out      string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "migrate [documents...]",
		Short: "Rewrite the version of a spore",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args, func(ctx context.Context, a *app) error {
				if err := a.integrator.MigrateVersion(ctx, sporeIRI, version); err != nil {
					return err
				}
				if out != "" {
					return a.write(ctx, out, format, cmd.OutOrStdout())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sporeIRI, "spore", "", "Spore IRI")
	cmd.Flags().StringVar(&version, "to", "", "New version")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the resulting graph to this file (- for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "Output format (turtle, ntriples, jsonld)")
	_ = cmd.MarkFlagRequired("spore")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func depsCmd() *cobra.Command {
	var spores []string
	cmd := &cobra.Command{
		Use:   "deps [documents...]",
		Short: "Check that every owl:imports of a spore resolves to a spore",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args, func(ctx context.Context, a *app) error {
				targets, err := sporeTargets(ctx, a, spores)
				if err != nil {
					return err
				}
				return report(cmd, targets, func(s string) error { return a.integrator.ResolveDependencies(ctx, s) })
			})
		},
	}
	cmd.Flags().StringSliceVar(&spores, "spore", nil, "Spore IRI (default: every spore in the documents)")
	return cmd
}

func conflictsCmd() *cobra.Command {
	var (
		sporeDocs []string
		modelDocs []string
	)
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List declarations present in both a spore graph and a model graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sporeGraph, modelGraph := graph.NewMemoryStore(), graph.NewMemoryStore()
			if err := loadInto(ctx, sporeGraph, sporeDocs); err != nil {
				return err
			}
			if err := loadInto(ctx, modelGraph, modelDocs); err != nil {
				return err
			}

			conflicts, err := spore.FindConflicts(ctx, sporeGraph, modelGraph)
			if err != nil {
				return err
			}
			for _, c := range conflicts {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d conflict(s)\n", len(conflicts))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&sporeDocs, "spore-doc", nil, "Spore documents")
	cmd.Flags().StringSliceVar(&modelDocs, "model-doc", nil, "Target model documents")
	_ = cmd.MarkFlagRequired("spore-doc")
	_ = cmd.MarkFlagRequired("model-doc")
	return cmd
}

func loadInto(ctx context.Context, st graph.Store, patterns []string) error {
	files, err := expandPatterns(patterns)
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := rdfio.LoadFile(ctx, st, f); err != nil {
			return err
		}
	}
	return nil
}

func stepsCmd() *cobra.Command {
	var (
		processes []string
		dryRun    bool
		out       string
		format    string
	)
	cmd := &cobra.Command{
		Use:   "steps [documents...]",
		Short: "Validate and execute integration processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args, func(ctx context.Context, a *app) error {
				targets := processes
				if len(targets) == 0 {
					all, err := process.Processes(ctx, a.store)
					if err != nil {
						return err
					}
					if len(all) == 0 {
						return fmt.Errorf("no gov:IntegrationProcess found")
					}
					targets = all
				}

				err := report(cmd, targets, func(iri string) error {
					p, err := process.Load(ctx, a.store, iri)
					if err != nil {
						return err
					}
					if dryRun {
						err = a.engine.Validate(p)
					} else {
						err = a.engine.Execute(ctx, p)
					}
					slog.Debug("Process finished", "process", iri, "state", p.State())
					return err
				})
				if err != nil || out == "" {
					return err
				}
				return a.write(ctx, out, format, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringSliceVar(&processes, "process", nil, "Process IRI (default: every process in the documents)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only validate step ordering")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the resulting graph to this file (- for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "Output format (turtle, ntriples, jsonld)")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "export [documents...]",
		Short: "Write the graph store as Turtle, N-Triples or JSON-LD",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args, func(ctx context.Context, a *app) error {
				return a.write(ctx, out, format, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file (- for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "Output format (turtle, ntriples, jsonld)")
	return cmd
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.NewLoader(slog.Default()).EnsureUserConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// joinErrors renders errs.Join output on one line.
func joinErrors(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}
