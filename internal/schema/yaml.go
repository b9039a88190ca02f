package schema

import (
	"gopkg.in/yaml.v3"
)

// catalogFile represents the YAML rendering of the catalog
type catalogFile struct {
	Fields []fieldEntry `yaml:"fields"`
}

// fieldEntry represents a single field in YAML
type fieldEntry struct {
	Path        string   `yaml:"path"`
	Type        string   `yaml:"type"`
	Default     any      `yaml:"default,omitempty"`
	Values      []string `yaml:"values,omitempty,flow"`
	Inherits    string   `yaml:"inherits,omitempty"`
	Since       string   `yaml:"since,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

// ToYAML serializes the given fields to YAML bytes. Fields without a default
// omit the default key; container defaults render as empty collections.
func ToYAML(fields []FieldSpec) ([]byte, error) {
	cf := catalogFile{Fields: make([]fieldEntry, 0, len(fields))}

	for _, f := range fields {
		entry := fieldEntry{
			Path:        f.Path,
			Type:        string(f.Type),
			Values:      f.Values,
			Inherits:    f.Inherits,
			Since:       f.Since,
			Description: f.Description,
		}
		if def, ok := f.DefaultValue(); ok {
			entry.Default = yamlDefault(def)
		}
		cf.Fields = append(cf.Fields, entry)
	}

	return yaml.Marshal(&cf)
}

// yamlDefault keeps false and empty collections visible under omitempty by
// rendering them as their YAML literal text.
func yamlDefault(v any) any {
	switch d := v.(type) {
	case bool:
		if !d {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"}
		}
	case []string:
		if len(d) == 0 {
			return &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		}
	case map[string]string, map[string]any:
		return &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	}
	return v
}
