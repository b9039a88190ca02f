package baseline

import (
	"time"

	"capconf/internal/artifact"
)

// Baseline is a named, known-good resolved config kept for drift comparison.
type Baseline struct {
	Name          string         `json:"name"`          // Baseline identifier
	ConfigVersion string         `json:"configVersion"` // Artifact hash
	Values        map[string]any `json:"values"`        // Resolved config in raw document form
	Source        string         `json:"source"`        // Document the config was resolved from
	Timestamp     time.Time      `json:"timestamp"`     // When baseline was created
}

// BaselineSummary is a lightweight view for listing baselines.
type BaselineSummary struct {
	Name          string    `json:"name"`
	ConfigVersion string    `json:"configVersion"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
}

// New creates a baseline from a generated artifact.
func New(name, source string, a artifact.ConfigArtifact, now time.Time) Baseline {
	return Baseline{
		Name:          name,
		ConfigVersion: a.ConfigVersion,
		Values:        a.Values,
		Source:        source,
		Timestamp:     now.UTC().Truncate(time.Second),
	}
}

// Artifact returns the baseline's config as an artifact.
func (b Baseline) Artifact() artifact.ConfigArtifact {
	return artifact.ConfigArtifact{ConfigVersion: b.ConfigVersion, Values: b.Values}
}

// Summary returns the listing view of the baseline.
func (b Baseline) Summary() BaselineSummary {
	return BaselineSummary{
		Name:          b.Name,
		ConfigVersion: b.ConfigVersion,
		Source:        b.Source,
		Timestamp:     b.Timestamp,
	}
}
