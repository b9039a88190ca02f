package settings

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(afero.NewMemMapFs(), "/app", nil, Settings{})
	require.NoError(t, err)

	assert.Equal(t, Defaults(), s)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, LogConsole, s.LogFormat)
	assert.False(t, s.Strict)
}

func TestLoad_Layering(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/app/.env", []byte(`
# project settings
CAPCONF_LOG_LEVEL=info
CAPCONF_BASELINE_DIR=/app/.baselines
CAPCONF_CONFIG="config/capacitor.config.yaml"
UNRELATED=1
`), 0o644))

	environ := []string{
		"CAPCONF_LOG_LEVEL=debug",
		"CAPCONF_STRICT=true",
		"HOME=/home/user",
	}
	flags := Settings{ConfigPath: "other.json"}

	s, err := Load(fs, "/app", environ, flags)
	require.NoError(t, err)

	assert.Equal(t, "debug", s.LogLevel, "environment overrides .env")
	assert.Equal(t, "/app/.baselines", s.BaselineDir, ".env overrides defaults")
	assert.Equal(t, "other.json", s.ConfigPath, "flags override .env")
	assert.True(t, s.Strict)
	assert.Equal(t, LogConsole, s.LogFormat)
}

func TestLoad_Conventions(t *testing.T) {
	s, err := Load(afero.NewMemMapFs(), "/app", []string{"CI=true", "NO_COLOR=1"}, Settings{})
	require.NoError(t, err)
	assert.True(t, s.CI)
	assert.True(t, s.NoColor)

	s, err = Load(afero.NewMemMapFs(), "/app", []string{"CI=false", "NO_COLOR="}, Settings{})
	require.NoError(t, err)
	assert.False(t, s.CI)
	assert.False(t, s.NoColor)
}

func TestLoad_FlagsSwitchOn(t *testing.T) {
	s, err := Load(afero.NewMemMapFs(), "/app", nil, Settings{Strict: true, CI: true, LogFormat: LogJSON})
	require.NoError(t, err)

	assert.True(t, s.Strict)
	assert.True(t, s.CI)
	assert.Equal(t, LogJSON, s.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string][]string{
		"bad bool":   {"CAPCONF_STRICT=maybe"},
		"bad level":  {"CAPCONF_LOG_LEVEL=loud"},
		"bad format": {"CAPCONF_LOG_FORMAT=xml"},
	}
	for name, environ := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(afero.NewMemMapFs(), "/app", environ, Settings{})
			assert.Error(t, err)
		})
	}
}
