package baseline

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capconf/internal/artifact"
	"capconf/internal/resolver"
)

const testDir = "/home/user/.capconf/baselines"

// genValues generates random raw config values as decoded from JSON
func genValues() gopter.Gen {
	return gen.MapOf(gen.Identifier(), gen.AlphaString()).Map(func(m map[string]string) map[string]any {
		values := map[string]any{"android": map[string]any{"path": "android"}}
		for k, v := range m {
			values[k] = v
		}
		return values
	})
}

// genBaseline generates random baselines
func genBaseline() gopter.Gen {
	return gopter.CombineGens(
		gen.Identifier(),  // name
		gen.Identifier(),  // configVersion
		genValues(),       // values
		gen.AlphaString(), // source
	).Map(func(vals []interface{}) Baseline {
		return Baseline{
			Name:          vals[0].(string),
			ConfigVersion: "sha256:" + vals[1].(string),
			Values:        vals[2].(map[string]any),
			Source:        vals[3].(string),
			Timestamp:     time.Now().UTC().Truncate(time.Second),
		}
	})
}

// For any valid baseline, saving and loading should preserve all fields.
func TestBaselineRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("save then load preserves baseline", prop.ForAll(
		func(b Baseline) bool {
			store := NewStore(afero.NewMemMapFs(), testDir)

			if err := store.Save(b); err != nil {
				return false
			}

			loaded, err := store.Load(b.Name)
			if err != nil {
				return false
			}

			return loaded.Name == b.Name &&
				loaded.ConfigVersion == b.ConfigVersion &&
				loaded.Source == b.Source &&
				loaded.Timestamp.Equal(b.Timestamp) &&
				reflect.DeepEqual(loaded.Values, b.Values)
		},
		genBaseline(),
	))

	properties.TestingRun(t)
}

// For any set of baselines with distinct names, they should be stored separately.
func TestMultipleNamedBaselines(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("multiple baselines with different names are stored separately", prop.ForAll(
		func(name1, name2 string) bool {
			if name1 == name2 {
				return true
			}

			store := NewStore(afero.NewMemMapFs(), testDir)

			b1 := Baseline{Name: name1, ConfigVersion: "sha256:hash1", Values: map[string]any{}}
			b2 := Baseline{Name: name2, ConfigVersion: "sha256:hash2", Values: map[string]any{}}

			if err := store.Save(b1); err != nil {
				return false
			}
			if err := store.Save(b2); err != nil {
				return false
			}

			loaded1, err := store.Load(name1)
			if err != nil {
				return false
			}
			loaded2, err := store.Load(name2)
			if err != nil {
				return false
			}

			return loaded1.ConfigVersion == "sha256:hash1" && loaded2.ConfigVersion == "sha256:hash2"
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

// For any saved baseline, list returns it and delete removes it.
func TestBaselineListAndDelete(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("list returns all saved baselines, delete removes specific one", prop.ForAll(
		func(name string) bool {
			store := NewStore(afero.NewMemMapFs(), testDir)

			b := Baseline{Name: name, ConfigVersion: "sha256:hash", Values: map[string]any{}}
			if err := store.Save(b); err != nil {
				return false
			}

			summaries, err := store.List()
			if err != nil || len(summaries) != 1 || summaries[0].Name != name {
				return false
			}

			if err := store.Delete(name); err != nil {
				return false
			}
			if store.Exists(name) {
				return false
			}

			summaries, err = store.List()
			return err == nil && len(summaries) == 0
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestNew_FromArtifact(t *testing.T) {
	res, err := resolver.Resolve(map[string]any{"appId": "com.example.app"})
	require.NoError(t, err)
	a, err := artifact.Generate(res.Config)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 30, 15, 999, time.FixedZone("CET", 3600))
	b := New("release", "capacitor.config.json", a, now)

	assert.Equal(t, "release", b.Name)
	assert.Equal(t, a.ConfigVersion, b.ConfigVersion)
	assert.Equal(t, time.Date(2026, 3, 1, 11, 30, 15, 0, time.UTC), b.Timestamp)
	assert.Equal(t, a, b.Artifact())
}

func TestList_SortedAndSkipsJunk(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, testDir)

	for _, name := range []string{"staging", "alpha", "prod"} {
		require.NoError(t, store.Save(Baseline{Name: name, Values: map[string]any{}}))
	}
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testDir, "broken.json"), []byte("{"), 0o644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testDir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, fs.MkdirAll(filepath.Join(testDir, "dir.json"), 0o755))

	summaries, err := store.List()
	require.NoError(t, err)

	var names []string
	for _, s := range summaries {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"alpha", "prod", "staging"}, names)
}

func TestList_MissingDir(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), "/nowhere")

	summaries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestInvalidNames(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), testDir)

	for _, name := range []string{"", "../escape", "a/b", "with space", "dot.json"} {
		assert.ErrorIs(t, store.Save(Baseline{Name: name}), ErrInvalidName, name)
		_, err := store.Load(name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
		assert.ErrorIs(t, store.Delete(name), ErrInvalidName, name)
		assert.False(t, store.Exists(name), name)
	}
}

func TestDefaultDir(t *testing.T) {
	dir := DefaultDir()
	assert.NotEmpty(t, dir)
	assert.Equal(t, "baselines", filepath.Base(dir))
}

func TestLoadNotFound(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), testDir)

	_, err := store.Load("nonexistent")
	assert.ErrorIs(t, err, ErrBaselineNotFound)
}

func TestDeleteNotFound(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), testDir)

	assert.ErrorIs(t, store.Delete("nonexistent"), ErrBaselineNotFound)
}
