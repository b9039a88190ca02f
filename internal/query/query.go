// Package query looks up single values in a resolved configuration.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrPathNotFound is returned when a path does not exist in the values.
var ErrPathNotFound = errors.New("path not found")

// Value is the result of a query.
type Value struct {
	Path string
	Raw  string // JSON encoding of the value
	Type gjson.Type
	// Scalar values also carry their plain string form.
	Text string
}

// IsScalar reports whether the value is a string, number, boolean or null.
func (v Value) IsScalar() bool {
	return v.Type != gjson.JSON
}

// String renders strings without quotes and everything else as JSON.
func (v Value) String() string {
	if v.Type == gjson.String {
		return v.Text
	}
	return v.Raw
}

// Get looks up a dot-separated path, such as ios.minVersion, in the JSON
// encoding of resolved values. Literal dots in keys can be escaped with a
// backslash.
func Get(valuesJSON []byte, path string) (Value, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Value{}, fmt.Errorf("%w: empty path", ErrPathNotFound)
	}
	if !gjson.ValidBytes(valuesJSON) {
		return Value{}, errors.New("values are not valid JSON")
	}

	result := gjson.GetBytes(valuesJSON, path)
	if !result.Exists() {
		return Value{}, fmt.Errorf("%w: '%s'", ErrPathNotFound, path)
	}

	return Value{
		Path: path,
		Raw:  result.Raw,
		Type: result.Type,
		Text: result.String(),
	}, nil
}

// Paths lists every leaf path under the JSON object in encoding order.
// Arrays are leaves.
func Paths(valuesJSON []byte) []string {
	var paths []string
	collectPaths(gjson.ParseBytes(valuesJSON), "", &paths)
	return paths
}

func collectPaths(node gjson.Result, prefix string, paths *[]string) {
	if !node.IsObject() {
		if prefix != "" {
			*paths = append(*paths, prefix)
		}
		return
	}
	node.ForEach(func(key, value gjson.Result) bool {
		name := EscapeKey(key.String())
		if prefix != "" {
			name = prefix + "." + name
		}
		collectPaths(value, name, paths)
		return true
	})
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`)

// EscapeKey escapes a single object key for use as one segment of a path,
// so distinct key sequences never produce the same path.
func EscapeKey(k string) string {
	return keyEscaper.Replace(k)
}
