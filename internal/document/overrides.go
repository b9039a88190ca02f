package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"capconf/internal/diagnostic"
	"capconf/internal/schema"

	"github.com/tidwall/sjson"
)

// ErrInvalidOverride is returned for an assignment not of the form
// key.path=value.
var ErrInvalidOverride = errors.New("invalid override")

// ApplyOverrides returns a copy of raw with each "key.path=value" assignment
// applied. Values are taken as JSON when they parse as JSON, except for known
// string fields, which always receive the literal text. raw itself is not
// modified.
func ApplyOverrides(raw any, sets []string) (any, error) {
	if len(sets) == 0 {
		return raw, nil
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, diagnostic.Malformed(raw)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	for _, set := range sets {
		key, value, found := strings.Cut(set, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("%w: '%s' (expected key.path=value)", ErrInvalidOverride, set)
		}

		if isStringField(key) || !json.Valid([]byte(value)) {
			data, err = sjson.SetBytes(data, key, value)
		} else {
			data, err = sjson.SetRawBytes(data, key, []byte(value))
		}
		if err != nil {
			return nil, fmt.Errorf("%w: '%s': %v", ErrInvalidOverride, set, err)
		}
	}

	out, err := decodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return out, nil
}

func isStringField(key string) bool {
	f, ok := schema.Lookup(key)
	return ok && (f.Type == schema.TypeString || f.Type == schema.TypeEnum)
}
