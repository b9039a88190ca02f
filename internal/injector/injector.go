// Package injector copies a resolved configuration into native projects,
// where the runtime reads it at startup.
package injector

import (
	"errors"
	"fmt"
	"path/filepath"

	"capconf/internal/artifact"
	"capconf/internal/resolver"

	"github.com/spf13/afero"
)

// ErrNoNativeProject is returned when a platform's project directory does
// not exist.
var ErrNoNativeProject = errors.New("native project not found")

// Platform is a native target.
type Platform string

const (
	Android Platform = "android"
	IOS     Platform = "ios"
)

// Platforms lists every supported platform.
func Platforms() []Platform {
	return []Platform{Android, IOS}
}

// ParsePlatform converts a name into a Platform.
func ParsePlatform(name string) (Platform, error) {
	for _, p := range Platforms() {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform '%s' (expected android or ios)", name)
}

// ConfigPath returns where the runtime of platform p expects the config
// file, relative to the project root. The native project directory comes
// from the resolved config.
func ConfigPath(cfg resolver.Config, p Platform) string {
	switch p {
	case Android:
		return filepath.Join(cfg.Android.Path, "app", "src", "main", "assets", "capacitor.config.json")
	case IOS:
		return filepath.Join(cfg.IOS.Path, "App", "App", "capacitor.config.json")
	}
	return ""
}

// InjectFile writes the artifact values into platform p's project under
// root and returns the written path. The platform's project directory must
// already exist; directories below it are created.
func InjectFile(fs afero.Fs, root string, cfg resolver.Config, art artifact.ConfigArtifact, p Platform) (string, error) {
	rel := ConfigPath(cfg, p)
	if rel == "" {
		return "", fmt.Errorf("unknown platform '%s'", p)
	}

	projectDir := filepath.Join(root, projectPath(cfg, p))
	ok, err := afero.DirExists(fs, projectDir)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoNativeProject, projectDir)
	}

	path := filepath.Join(root, rel)
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	jsonBytes, err := art.ToJSONValues()
	if err != nil {
		return "", err
	}

	if err := afero.WriteFile(fs, path, jsonBytes, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func projectPath(cfg resolver.Config, p Platform) string {
	if p == IOS {
		return cfg.IOS.Path
	}
	return cfg.Android.Path
}
