// Package settings builds the tool's own settings from layered sources:
// defaults, a .env file, CAPCONF_* environment variables and command-line
// flags, each overriding the one before.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"capconf/internal/baseline"
	"capconf/internal/logging"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// EnvPrefix is the prefix of environment variables read into Settings.
const EnvPrefix = "CAPCONF_"

// Log output formats.
const (
	LogConsole = "console"
	LogJSON    = "json"
)

// Settings configures the command-line tool. Boolean settings can only be
// switched on by a later layer.
type Settings struct {
	ConfigPath  string `env:"CONFIG"`
	BaselineDir string `env:"BASELINE_DIR"`
	LogLevel    string `env:"LOG_LEVEL"`
	LogFormat   string `env:"LOG_FORMAT"`
	Strict      bool   `env:"STRICT"`
	CI          bool   `env:"CI_ANNOTATIONS"`
	NoColor     bool   `env:"NO_COLOR"`
}

// Defaults returns the lowest settings layer.
func Defaults() Settings {
	return Settings{
		BaselineDir: baseline.DefaultDir(),
		LogLevel:    "warn",
		LogFormat:   LogConsole,
	}
}

type builder struct {
	layers []Settings
	err    error
}

// Load merges defaults, the .env file in dir, the environment and flags.
// environ is in os.Environ form and is never written to.
func Load(fs afero.Fs, dir string, environ []string, flags Settings) (Settings, error) {
	vars := env.ToMap(environ)

	return newBuilder().
		withDotEnv(fs, filepath.Join(dir, ".env")).
		withEnv(vars).
		withConventions(vars).
		with(flags).
		build()
}

func newBuilder() *builder {
	return &builder{layers: []Settings{Defaults()}}
}

func (b *builder) with(s Settings) *builder {
	b.layers = append(b.layers, s)
	return b
}

func (b *builder) withDotEnv(fs afero.Fs, path string) *builder {
	f, err := fs.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			b.err = errors.Join(b.err, fmt.Errorf("error opening %s: %w", path, err))
		}
		return b
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("error parsing %s: %w", path, err))
		return b
	}
	return b.withEnv(vars)
}

func (b *builder) withEnv(vars map[string]string) *builder {
	var s Settings
	err := env.ParseWithOptions(&s, env.Options{
		Environment: vars,
		Prefix:      EnvPrefix,
	})
	if err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("error getting env settings: %w", err))
		return b
	}
	return b.with(s)
}

// withConventions honors the widely used CI and NO_COLOR variables.
func (b *builder) withConventions(vars map[string]string) *builder {
	var s Settings
	if ci, err := strconv.ParseBool(vars["CI"]); err == nil && ci {
		s.CI = true
	}
	if vars["NO_COLOR"] != "" {
		s.NoColor = true
	}
	return b.with(s)
}

func (b *builder) build() (Settings, error) {
	if b.err != nil {
		return Settings{}, fmt.Errorf("error occurred during loading settings: %w", b.err)
	}

	var s Settings
	for _, layer := range b.layers {
		if err := mergo.Merge(&s, layer, mergo.WithOverride); err != nil {
			return Settings{}, fmt.Errorf("error merging settings: %w", err)
		}
	}

	return s, s.validate()
}

func (s Settings) validate() error {
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return err
	}
	if s.LogFormat != LogConsole && s.LogFormat != LogJSON {
		return fmt.Errorf("unknown log format '%s' (expected %s or %s)", s.LogFormat, LogConsole, LogJSON)
	}
	return nil
}
