package artifact

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"capconf/internal/resolver"
)

// ConfigArtifact is the immutable, content-addressed form of a resolved config.
type ConfigArtifact struct {
	ConfigVersion string         `json:"configVersion"` // sha256:hex
	Values        map[string]any `json:"values"`
}

// Generate creates a config artifact from a resolved config. Values hold the
// raw document form of the config, so inherited values appear explicitly and
// unset optional fields are absent.
func Generate(cfg resolver.Config) (ConfigArtifact, error) {
	values := resolver.ToRaw(cfg)

	version, err := ComputeConfigVersion(values)
	if err != nil {
		return ConfigArtifact{}, err
	}

	return ConfigArtifact{
		ConfigVersion: version,
		Values:        values,
	}, nil
}

// ComputeConfigVersion computes the SHA-256 hash of the values in canonical form.
// Returns the hash prefixed with "sha256:".
func ComputeConfigVersion(values map[string]any) (string, error) {
	canonical, err := canonicalJSON(values)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(hash[:]), nil
}

// ToCanonicalJSON serializes the artifact to canonical JSON (sorted keys, no whitespace).
func (a ConfigArtifact) ToCanonicalJSON() ([]byte, error) {
	return canonicalJSON(map[string]any{
		"configVersion": a.ConfigVersion,
		"values":        a.Values,
	})
}

// ToJSON serializes the artifact to pretty-printed JSON for human readability.
func (a ConfigArtifact) ToJSON() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// canonicalJSON writes v with object keys sorted at every depth, no
// whitespace and no HTML escaping. Numbers of any Go type render as JSON
// numbers, so the same document hashes alike whatever format it came from.
func canonicalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeScalar(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return writeScalar(buf, v)
	}
	return nil
}

func writeScalar(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %T: %w", v, err)
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// ToJSONValues serializes only the config values, indented, in the shape of
// a configuration document.
func (a ConfigArtifact) ToJSONValues() ([]byte, error) {
	data, err := json.MarshalIndent(a.Values, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
