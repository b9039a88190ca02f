package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"capconf/internal/artifact"
	"capconf/internal/baseline"
	"capconf/internal/diagnostic"
	"capconf/internal/drift"
	"capconf/internal/injector"
	"capconf/internal/query"
	"capconf/internal/schema"
	"capconf/internal/watch"

	"github.com/spf13/cobra"
)

func (a *app) resolveCommand() *cobra.Command {
	var out string
	var valuesOnly bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the resolved configuration artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.resolve()
			if err != nil {
				return err
			}
			a.report(a.stderr, r)
			// No artifact is produced when strict mode fails.
			if err := a.enforce(r); err != nil {
				return err
			}

			art, err := artifact.Generate(r.result.Config)
			if err != nil {
				return fmt.Errorf("cannot generate artifact: %w", err)
			}
			a.log.Info().Str("configVersion", art.ConfigVersion).Msg("artifact generated")

			if out != "" {
				path := out
				if !filepath.IsAbs(path) {
					path = filepath.Join(a.dir, path)
				}
				if err := art.WriteToFile(a.fs, path); err != nil {
					return fmt.Errorf("cannot write artifact: %s: %w", out, err)
				}
				fmt.Fprintf(a.stderr, "configVersion: %s\n", art.ConfigVersion)
				return nil
			}

			var data []byte
			if valuesOnly {
				data, err = art.ToJSONValues()
			} else {
				data, err = art.ToJSON()
				data = append(data, '\n')
			}
			if err != nil {
				return fmt.Errorf("cannot serialize artifact: %w", err)
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the artifact to a file instead of stdout")
	cmd.Flags().BoolVar(&valuesOnly, "values", false, "print only the resolved values")
	return cmd
}

func (a *app) checkCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report diagnostics for the configuration document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.resolve()
			if err != nil {
				return err
			}
			ds := r.result.Diagnostics

			if jsonOutput {
				out, err := diagnostic.FormatJSON(ds)
				if err != nil {
					return fmt.Errorf("cannot format diagnostics: %w", err)
				}
				fmt.Fprintln(a.stdout, out)
			} else {
				a.report(a.stdout, r)
				if len(ds) == 0 {
					fmt.Fprintln(a.stdout, "✓ Config valid")
				} else {
					fmt.Fprintf(a.stdout, "%s: %s\n", r.path, diagnostic.Summary(ds))
				}
			}

			if err := a.enforce(r); err != nil {
				// Diagnostics are already printed.
				return withCode(exitProblems, nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print diagnostics as JSON")
	return cmd
}

func (a *app) getCommand() *cobra.Command {
	var showOrigin bool

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Print one resolved value, such as ios.minVersion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.resolve()
			if err != nil {
				return err
			}

			art, err := artifact.Generate(r.result.Config)
			if err != nil {
				return fmt.Errorf("cannot generate artifact: %w", err)
			}
			values, err := json.Marshal(art.Values)
			if err != nil {
				return fmt.Errorf("cannot serialize values: %w", err)
			}

			path := args[0]
			origin, known := r.result.Origins[path]

			v, err := query.Get(values, path)
			if errors.Is(err, query.ErrPathNotFound) && known {
				// Known fields without a value are unset, not missing.
				v, err = query.Value{Path: path, Raw: "null"}, nil
			}
			if err != nil {
				return err
			}

			if showOrigin && known {
				fmt.Fprintf(a.stdout, "%s (%s)\n", v.String(), origin)
				return nil
			}
			fmt.Fprintln(a.stdout, v.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&showOrigin, "origin", false, "also print where a known field's value came from")
	return cmd
}

func (a *app) schemaCommand() *cobra.Command {
	var scopeName string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the known fields, their types and defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields := schema.Fields()
			if scopeName != "" {
				scope, err := schema.ParseScope(scopeName)
				if err != nil {
					return err
				}
				fields = schema.ScopeFields(scope)
			}

			data, err := schema.ToYAML(fields)
			if err != nil {
				return fmt.Errorf("cannot render schema: %w", err)
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&scopeName, "scope", "", "only print fields of one scope: global, android, ios, server or cordova")
	return cmd
}

func (a *app) store() *baseline.Store {
	return baseline.NewStore(a.fs, a.settings.BaselineDir)
}

func (a *app) baselineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage named baselines of the resolved configuration",
	}

	save := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current resolved configuration as a baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := baseline.ValidateName(args[0]); err != nil {
				return err
			}

			r, err := a.resolve()
			if err != nil {
				return err
			}
			a.report(a.stderr, r)
			if err := a.enforce(r); err != nil {
				return err
			}

			art, err := artifact.Generate(r.result.Config)
			if err != nil {
				return fmt.Errorf("cannot generate artifact: %w", err)
			}

			b := baseline.New(args[0], r.path, art, time.Now())
			if err := a.store().Save(b); err != nil {
				return fmt.Errorf("cannot save baseline: %w", err)
			}
			fmt.Fprintf(a.stdout, "Saved baseline '%s' (%s)\n", b.Name, b.ConfigVersion)
			return nil
		},
	}

	var listJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved baselines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summaries, err := a.store().List()
			if err != nil {
				return fmt.Errorf("cannot list baselines: %w", err)
			}

			if listJSON {
				data, err := json.MarshalIndent(summaries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, string(data))
				return nil
			}

			if len(summaries) == 0 {
				fmt.Fprintln(a.stdout, "No baselines saved.")
				return nil
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCONFIG VERSION\tCREATED\tSOURCE")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, shortVersion(s.ConfigVersion), s.Timestamp.Format(time.RFC3339), s.Source)
			}
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&listJSON, "json", false, "print baselines as JSON")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store().Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Deleted baseline '%s'\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(save, list, del)
	return cmd
}

// shortVersion abbreviates a sha256: config version for display.
func shortVersion(v string) string {
	const n = len("sha256:") + 12
	if len(v) > n {
		return v[:n]
	}
	return v
}

func (a *app) driftCommand() *cobra.Command {
	var jsonOutput, failOnDrift bool

	cmd := &cobra.Command{
		Use:   "drift <baseline>",
		Short: "Compare the resolved configuration against a baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.store().Load(args[0])
			if err != nil {
				return err
			}

			r, err := a.resolve()
			if err != nil {
				return err
			}
			a.report(a.stderr, r)

			art, err := artifact.Generate(r.result.Config)
			if err != nil {
				return fmt.Errorf("cannot generate artifact: %w", err)
			}

			report := drift.Detect(b, art)
			a.log.Info().Bool("drift", report.HasDrift).Int("changes", len(report.Changes)).Msg("drift detected")

			switch {
			case jsonOutput:
				out, err := drift.FormatJSON(report)
				if err != nil {
					return fmt.Errorf("cannot format drift report: %w", err)
				}
				fmt.Fprintln(a.stdout, out)
			case a.settings.CI:
				fmt.Fprint(a.stdout, drift.FormatCI(report, r.path))
			default:
				fmt.Fprint(a.stdout, drift.FormatCLI(report))
			}

			if report.HasDrift && failOnDrift {
				return withCode(exitDrift, nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the drift report as JSON")
	cmd.Flags().BoolVar(&failOnDrift, "fail-on-drift", false, "exit with status 2 when drift is detected")
	return cmd
}

func (a *app) syncCommand() *cobra.Command {
	var platformNames []string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy the resolved configuration into the native projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			platforms := injector.Platforms()
			explicit := len(platformNames) > 0
			if explicit {
				platforms = platforms[:0]
				for _, name := range platformNames {
					p, err := injector.ParsePlatform(name)
					if err != nil {
						return err
					}
					platforms = append(platforms, p)
				}
			}

			r, err := a.resolve()
			if err != nil {
				return err
			}
			a.report(a.stderr, r)
			if err := a.enforce(r); err != nil {
				return err
			}

			art, err := artifact.Generate(r.result.Config)
			if err != nil {
				return fmt.Errorf("cannot generate artifact: %w", err)
			}

			root := filepath.Dir(r.path)
			for _, p := range platforms {
				path, err := injector.InjectFile(a.fs, root, r.result.Config, art, p)
				if errors.Is(err, injector.ErrNoNativeProject) && !explicit {
					a.log.Info().Str("platform", string(p)).Msg("no native project, skipped")
					continue
				}
				if err != nil {
					return fmt.Errorf("cannot write %s config: %w", p, err)
				}
				fmt.Fprintf(a.stdout, "Wrote %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&platformNames, "platform", "p", nil, "platforms to sync: android, ios (default: every existing native project)")
	return cmd
}

func (a *app) watchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-resolve the configuration whenever the document changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			check := func() {
				r, err := a.resolve()
				if err != nil {
					fmt.Fprintln(a.stderr, "Error:", err)
					return
				}
				a.report(a.stderr, r)

				art, err := artifact.Generate(r.result.Config)
				if err != nil {
					fmt.Fprintln(a.stderr, "Error:", err)
					return
				}
				fmt.Fprintf(a.stdout, "%s %s (%s)\n", time.Now().Format(time.TimeOnly), art.ConfigVersion, diagnostic.Summary(r.result.Diagnostics))
			}

			path, err := a.documentPath()
			if err != nil {
				return withCode(exitNoDoc, err)
			}
			w, err := watch.New(path, debounce, a.log)
			if err != nil {
				return fmt.Errorf("cannot watch %s: %w", path, err)
			}
			defer w.Close()

			check()
			return w.Run(cmd.Context(), check)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-resolving")
	return cmd
}
