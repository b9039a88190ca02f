package artifact

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteToFile writes the artifact to the specified path, creating parent directories if needed.
func (a ConfigArtifact) WriteToFile(fs afero.Fs, path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	jsonBytes, err := a.ToJSON()
	if err != nil {
		return err
	}

	return afero.WriteFile(fs, path, append(jsonBytes, '\n'), 0o644)
}

// ReadFile reads an artifact previously written with WriteToFile.
func ReadFile(fs afero.Fs, path string) (ConfigArtifact, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return ConfigArtifact{}, err
	}

	var a ConfigArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return ConfigArtifact{}, fmt.Errorf("invalid artifact %s: %w", path, err)
	}
	return a, nil
}
