package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"capconf/internal/diagnostic"
	"capconf/internal/document"
	"capconf/internal/logging"
	"capconf/internal/resolver"
	"capconf/internal/settings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitOK        = 0
	exitProblems  = 1 // strict-mode diagnostics, usage and other errors
	exitDrift     = 2
	exitNoDoc     = 3 // document missing, unreadable or undecodable
	exitMalformed = 4
)

func main() {
	exitCode := run(os.Args[1:], os.Environ(), os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// run executes the command line against the working directory.
// It returns an exit code and is separated from main() to enable testing.
func run(args []string, environ []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newApp(afero.NewOsFs(), ".", environ, stdout, stderr).execute(ctx, args)
}

// exitError carries a specific exit code. A nil err means the failure has
// already been reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, diagnostic.ErrMalformedDocument) {
		return exitMalformed
	}
	if errors.Is(err, document.ErrDocumentNotFound) {
		return exitNoDoc
	}
	return exitProblems
}

type app struct {
	fs      afero.Fs
	dir     string
	environ []string
	stdout  io.Writer
	stderr  io.Writer

	flags    settings.Settings
	sets     []string
	settings settings.Settings
	log      zerolog.Logger
}

func newApp(fs afero.Fs, dir string, environ []string, stdout, stderr io.Writer) *app {
	return &app{
		fs:      fs,
		dir:     dir,
		environ: environ,
		stdout:  stdout,
		stderr:  stderr,
		log:     zerolog.Nop(),
	}
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		var ee *exitError
		if !errors.As(err, &ee) || ee.err != nil {
			fmt.Fprintln(a.stderr, "Error:", err)
		}
	}
	return exitCode(err)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "capconf",
		Short: "Resolve, check and track hybrid app configuration",
		Long: `capconf resolves a capacitor.config document (JSON, JSONC, YAML, TOML or CUE)
into the effective per-platform configuration: defaults are applied, android
and ios inherit global values they do not set, and unknown or mistyped keys
are reported without aborting.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.ConfigPath, "config", "c", "", "configuration document (default: discover capacitor.config.* in the working directory)")
	pf.StringArrayVar(&a.sets, "set", nil, "override a value before resolving, as key.path=value (repeatable)")
	pf.BoolVar(&a.flags.Strict, "strict", false, "fail when unknown keys or type mismatches are reported")
	pf.BoolVar(&a.flags.CI, "ci", false, "report diagnostics as GitHub Actions annotations")
	pf.BoolVar(&a.flags.NoColor, "no-color", false, "disable colored output")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level: debug, info, warn, error or disabled")
	pf.StringVar(&a.flags.LogFormat, "log-format", "", "log format: console or json")
	pf.StringVar(&a.flags.BaselineDir, "baseline-dir", "", "directory holding baselines")

	root.AddCommand(
		a.resolveCommand(),
		a.checkCommand(),
		a.getCommand(),
		a.schemaCommand(),
		a.baselineCommand(),
		a.driftCommand(),
		a.syncCommand(),
		a.watchCommand(),
	)
	return root
}

// setup loads settings and configures logging and colors.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	s, err := settings.Load(a.fs, a.dir, a.environ, a.flags)
	if err != nil {
		return err
	}
	a.settings = s

	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	a.log = logging.New(logging.Config{
		Level:   level,
		Output:  a.stderr,
		Pretty:  s.LogFormat == settings.LogConsole,
		NoColor: s.NoColor,
	})

	if s.NoColor {
		color.NoColor = true
	}

	a.log.Debug().
		Str("command", cmd.Name()).
		Bool("strict", s.Strict).
		Bool("ci", s.CI).
		Str("baselineDir", s.BaselineDir).
		Msg("settings loaded")
	return nil
}

// documentPath returns the configured document path or discovers one.
func (a *app) documentPath() (string, error) {
	if a.settings.ConfigPath == "" {
		return document.Discover(a.fs, a.dir)
	}
	if filepath.IsAbs(a.settings.ConfigPath) {
		return a.settings.ConfigPath, nil
	}
	return filepath.Join(a.dir, a.settings.ConfigPath), nil
}

// resolution is the outcome of loading and resolving the document.
type resolution struct {
	path   string
	result *resolver.Result
}

// resolve loads, overrides and resolves the document.
func (a *app) resolve() (*resolution, error) {
	path, err := a.documentPath()
	if err != nil {
		return nil, withCode(exitNoDoc, err)
	}

	doc, err := document.Load(a.fs, path)
	if err != nil {
		return nil, withCode(exitNoDoc, err)
	}
	a.log.Debug().Str("path", doc.Path).Str("format", string(doc.Format)).Msg("document loaded")

	raw, err := document.ApplyOverrides(doc.Raw, a.sets)
	if err != nil {
		return nil, err
	}

	res, err := resolver.Resolve(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	counts := diagnostic.Counts(res.Diagnostics)
	a.log.Info().
		Str("path", path).
		Int("unknownKeys", counts[diagnostic.KindUnknownKey]).
		Int("typeMismatches", counts[diagnostic.KindTypeMismatch]).
		Int("overridden", counts[diagnostic.KindOverridden]).
		Msg("configuration resolved")

	return &resolution{path: path, result: res}, nil
}

// report writes diagnostics to w in the configured style.
func (a *app) report(w io.Writer, r *resolution) {
	for _, d := range r.result.Diagnostics {
		if a.settings.CI {
			fmt.Fprintln(w, diagnostic.FormatCI(d, r.path))
		} else {
			fmt.Fprintln(w, diagnostic.FormatTerminal(d))
		}
	}
}

// enforce fails in strict mode when problems were reported.
func (a *app) enforce(r *resolution) error {
	if !a.settings.Strict || !diagnostic.HasProblems(r.result.Diagnostics) {
		return nil
	}
	return withCode(exitProblems, fmt.Errorf("strict mode: %s", diagnostic.Summary(r.result.Diagnostics)))
}
