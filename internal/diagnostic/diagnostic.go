package diagnostic

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Kind classifies a diagnostic
type Kind string

const (
	KindUnknownKey   Kind = "UnknownKey"
	KindTypeMismatch Kind = "TypeMismatch"
	KindOverridden   Kind = "Overridden"
)

// Informational reports whether diagnostics of this kind describe expected
// behavior rather than a problem in the document.
func (k Kind) Informational() bool {
	return k == KindOverridden
}

// Diagnostic is a non-fatal finding produced while resolving a document.
type Diagnostic struct {
	Kind     Kind     `json:"kind"`
	Path     string   `json:"path"`               // Dotted key path (e.g., "ios.contentInset")
	Message  string   `json:"message"`            // Human-readable description
	Value    any      `json:"value,omitempty"`    // The offending value, for type mismatches
	Expected string   `json:"expected,omitempty"` // Declared type, for type mismatches
	Allowed  []string `json:"allowed,omitempty"`  // For enum mismatches, the allowed values
}

// UnknownKey records a key that matches no known field.
func UnknownKey(path string) Diagnostic {
	return Diagnostic{
		Kind:    KindUnknownKey,
		Path:    path,
		Message: "unknown key, preserved as-is",
	}
}

// TypeMismatch records a recognized key whose value does not match the
// declared type. The resolver substitutes the field default.
func TypeMismatch(path string, value any, expected string, allowed []string) Diagnostic {
	msg := fmt.Sprintf("expected %s, got %s; using default", expected, DescribeType(value))
	if len(allowed) > 0 {
		if _, isString := value.(string); isString {
			msg = "value is not one of the allowed values; using default"
		}
	}
	return Diagnostic{
		Kind:     KindTypeMismatch,
		Path:     path,
		Message:  msg,
		Value:    value,
		Expected: expected,
		Allowed:  allowed,
	}
}

// Overridden records a value that was set but disregarded because another
// field takes precedence.
func Overridden(path, by string) Diagnostic {
	return Diagnostic{
		Kind:    KindOverridden,
		Path:    path,
		Message: fmt.Sprintf("disregarded because %s is set", by),
	}
}

// Counts returns the number of diagnostics per kind.
func Counts(ds []Diagnostic) map[Kind]int {
	counts := make(map[Kind]int)
	for _, d := range ds {
		counts[d.Kind]++
	}
	return counts
}

// HasProblems reports whether any diagnostic is not informational. Strict
// callers treat this as failure.
func HasProblems(ds []Diagnostic) bool {
	for _, d := range ds {
		if !d.Kind.Informational() {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by path, then kind, for stable output.
func Sort(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Path != ds[j].Path {
			return ds[i].Path < ds[j].Path
		}
		return ds[i].Kind < ds[j].Kind
	})
}

// ErrMalformedDocument is returned when the document is not a mapping.
var ErrMalformedDocument = errors.New("malformed document")

// MalformedDocumentError describes a document that cannot be resolved at all.
type MalformedDocumentError struct {
	Got string // Description of what was found instead of a mapping
}

// Malformed builds the error for a top-level value that is not a mapping.
func Malformed(v any) error {
	return &MalformedDocumentError{Got: DescribeType(v)}
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("%s: expected a mapping at the top level, got %s", ErrMalformedDocument, e.Got)
}

func (e *MalformedDocumentError) Unwrap() error {
	return ErrMalformedDocument
}

// DescribeType names the document-level type of a decoded value.
func DescribeType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any, map[string]string:
		return "mapping"
	}
	return fmt.Sprintf("%T", v)
}
