package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// ErrBaselineNotFound is returned when a baseline doesn't exist.
var ErrBaselineNotFound = errors.New("baseline not found")

// ErrInvalidName is returned for baseline names that are not safe file names.
var ErrInvalidName = errors.New("invalid baseline name")

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Store manages baseline persistence.
type Store struct {
	Fs  afero.Fs
	Dir string // Base directory for baselines
}

// NewStore creates a store with the given directory.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{Fs: fs, Dir: dir}
}

// DefaultDir returns the default baseline directory (~/.capconf/baselines).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".capconf", "baselines")
	}
	return filepath.Join(home, ".capconf", "baselines")
}

// ValidateName checks that name may be used as a baseline name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: '%s' (use letters, digits, '-' and '_')", ErrInvalidName, name)
	}
	return nil
}

// Save stores a baseline, replacing any baseline with the same name. The
// file is written under a temporary name and renamed into place.
func (s *Store) Save(b Baseline) error {
	if err := ValidateName(b.Name); err != nil {
		return err
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode baseline '%s': %w", b.Name, err)
	}

	if err := s.Fs.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create baseline directory: %w", err)
	}

	tmp := s.path(b.Name) + ".tmp"
	if err := afero.WriteFile(s.Fs, tmp, data, 0o644); err != nil {
		return err
	}
	if err := s.Fs.Rename(tmp, s.path(b.Name)); err != nil {
		_ = s.Fs.Remove(tmp)
		return err
	}
	return nil
}

// Load retrieves a baseline by name.
func (s *Store) Load(name string) (Baseline, error) {
	if err := ValidateName(name); err != nil {
		return Baseline{}, err
	}

	b, err := s.read(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return Baseline{}, fmt.Errorf("%w: '%s'", ErrBaselineNotFound, name)
	}
	return b, err
}

func (s *Store) read(path string) (Baseline, error) {
	data, err := afero.ReadFile(s.Fs, path)
	if err != nil {
		return Baseline{}, err
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return Baseline{}, fmt.Errorf("corrupt baseline %s: %w", filepath.Base(path), err)
	}
	return b, nil
}

// List returns all stored baselines as summaries, sorted by name.
func (s *Store) List() ([]BaselineSummary, error) {
	entries, err := afero.ReadDir(s.Fs, s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []BaselineSummary{}, nil
		}
		return nil, err
	}

	summaries := []BaselineSummary{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		// Unreadable and corrupt files are not baselines.
		b, err := s.read(filepath.Join(s.Dir, entry.Name()))
		if err != nil {
			continue
		}
		summaries = append(summaries, b.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries, nil
}

// Delete removes a baseline by name.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	err := s.Fs.Remove(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: '%s'", ErrBaselineNotFound, name)
		}
		return err
	}

	return nil
}

// Exists checks if a baseline exists.
func (s *Store) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	ok, err := afero.Exists(s.Fs, s.path(name))
	return err == nil && ok
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}
