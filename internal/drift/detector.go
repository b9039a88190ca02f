package drift

import (
	"encoding/json"
	"sort"
	"time"

	"capconf/internal/artifact"
	"capconf/internal/baseline"
	"capconf/internal/query"
)

// DriftType represents the type of configuration change.
type DriftType string

const (
	DriftAdded   DriftType = "added"   // Key in current but not baseline
	DriftRemoved DriftType = "removed" // Key in baseline but not current
	DriftChanged DriftType = "changed" // Key in both with different values
)

// KeyDrift represents a single key's drift. Values are JSON encoded.
type KeyDrift struct {
	Key           string    `json:"key"`
	Type          DriftType `json:"type"`
	BaselineValue string    `json:"baselineValue,omitempty"`
	CurrentValue  string    `json:"currentValue,omitempty"`
}

// DriftReport contains the full drift analysis.
type DriftReport struct {
	HasDrift        bool       `json:"hasDrift"`
	BaselineName    string     `json:"baselineName"`
	BaselineVersion string     `json:"baselineVersion"`
	CurrentVersion  string     `json:"currentVersion"`
	BaselineTime    time.Time  `json:"baselineTime"`
	Changes         []KeyDrift `json:"changes"`
}

// Detect compares the current config artifact against a baseline.
func Detect(b baseline.Baseline, current artifact.ConfigArtifact) DriftReport {
	report := DriftReport{
		BaselineName:    b.Name,
		BaselineVersion: b.ConfigVersion,
		CurrentVersion:  current.ConfigVersion,
		BaselineTime:    b.Timestamp,
		Changes:         []KeyDrift{},
	}

	// Quick check: if versions match, no drift
	if b.ConfigVersion == current.ConfigVersion {
		return report
	}

	baselineValues := Flatten(b.Values)
	currentValues := Flatten(current.Values)

	allKeys := make(map[string]bool)
	for k := range baselineValues {
		allKeys[k] = true
	}
	for k := range currentValues {
		allKeys[k] = true
	}

	// Sort keys for deterministic output
	keys := make([]string, 0, len(allKeys))
	for k := range allKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		baselineVal, inBaseline := baselineValues[key]
		currentVal, inCurrent := currentValues[key]

		if inBaseline && !inCurrent {
			report.Changes = append(report.Changes, KeyDrift{
				Key:           key,
				Type:          DriftRemoved,
				BaselineValue: baselineVal,
			})
		} else if !inBaseline && inCurrent {
			report.Changes = append(report.Changes, KeyDrift{
				Key:          key,
				Type:         DriftAdded,
				CurrentValue: currentVal,
			})
		} else if baselineVal != currentVal {
			report.Changes = append(report.Changes, KeyDrift{
				Key:           key,
				Type:          DriftChanged,
				BaselineValue: baselineVal,
				CurrentValue:  currentVal,
			})
		}
	}

	report.HasDrift = len(report.Changes) > 0
	return report
}

// Flatten maps every leaf of a value tree to its dot path, with keys escaped
// as for query.Get. Scalars, arrays and empty mappings are leaves, encoded as
// JSON.
func Flatten(values map[string]any) map[string]string {
	out := make(map[string]string)
	flatten(values, "", out)
	return out
}

func flatten(v any, prefix string, out map[string]string) {
	if m, ok := v.(map[string]any); ok && len(m) > 0 {
		for k, item := range m {
			key := query.EscapeKey(k)
			if prefix != "" {
				key = prefix + "." + key
			}
			flatten(item, key, out)
		}
		return
	}
	if prefix == "" {
		return
	}

	// encoding/json sorts map keys, so nested values encode deterministically.
	data, err := json.Marshal(v)
	if err != nil {
		out[prefix] = "<unencodable>"
		return
	}
	out[prefix] = string(data)
}
