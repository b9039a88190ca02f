// Package document loads raw configuration documents for the resolver.
//
// A document is discovered in a project directory, read through an
// afero.Fs and decoded according to its extension. Decoding produces the
// generic shape the resolver expects: map[string]any at the top level with
// []any and map[string]any below it. Whether the top-level value is actually
// a mapping is left to the resolver to judge.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// BaseName is the file name, without extension, of a configuration document.
const BaseName = "capacitor.config"

// Format identifies the encoding of a document.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
	FormatCUE   Format = "cue"
)

// candidates lists discoverable file extensions in lookup order.
var candidates = []struct {
	ext    string
	format Format
}{
	{".json", FormatJSON},
	{".jsonc", FormatJSONC},
	{".yaml", FormatYAML},
	{".yml", FormatYAML},
	{".toml", FormatTOML},
	{".cue", FormatCUE},
}

// ErrDocumentNotFound is returned when no document exists at the given
// location.
var ErrDocumentNotFound = errors.New("configuration document not found")

// ErrUnsupportedFormat is returned for file extensions with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Document is a decoded, not yet resolved, configuration document.
type Document struct {
	Path   string
	Format Format
	Raw    any
}

// Discover returns the path of the first configuration document found in
// dir.
func Discover(fs afero.Fs, dir string) (string, error) {
	for _, c := range candidates {
		path := filepath.Join(dir, BaseName+c.ext)
		ok, err := afero.Exists(fs, path)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s.{json,jsonc,yaml,yml,toml,cue})", ErrDocumentNotFound, dir, BaseName)
}

// FormatOf returns the format implied by a file name.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, c := range candidates {
		if c.ext == ext {
			return c.format, nil
		}
	}
	return "", fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, ext)
}

// Load reads and decodes the document at path.
func Load(fs afero.Fs, path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	raw, err := Parse(data, format, path)
	if err != nil {
		return nil, err
	}

	return &Document{Path: path, Format: format, Raw: raw}, nil
}

// Parse decodes document content. An empty document decodes to an empty
// mapping.
func Parse(data []byte, format Format, name string) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var (
		raw any
		err error
	)
	switch format {
	case FormatJSON, FormatJSONC:
		raw, err = decodeJSON(jsonc.ToJSON(data))
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
		raw = normalize(raw)
	case FormatTOML:
		var table map[string]any
		err = toml.Unmarshal(data, &table)
		raw = table
	case FormatCUE:
		raw, err = parseCUE(data, name)
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s in %s: %w", strings.ToUpper(string(format)), name, err)
	}

	return raw, nil
}

// parseCUE evaluates a CUE document. All fields must be concrete.
func parseCUE(data []byte, name string) (any, error) {
	ctx := cuecontext.New()

	value := ctx.CompileBytes(data, cue.Filename(name))
	if value.Err() != nil {
		return nil, value.Err()
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}

	var raw any
	if err := value.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// normalize converts YAML mappings with non-string keys into string-keyed
// mappings so every decoder yields the same shape.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	}
	return v
}

// decodeJSON decodes a single JSON value, keeping numbers as json.Number so
// integers beyond float64 precision survive unchanged.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if err := dec.Decode(new(json.RawMessage)); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}
