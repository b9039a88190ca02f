package schema

// Scope names the subtree of the configuration document a field belongs to.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeAndroid Scope = "android"
	ScopeIOS     Scope = "ios"
	ScopeServer  Scope = "server"
	ScopeCordova Scope = "cordova"
)

// NestedScopes returns the scopes that live under their own top-level key, in
// resolution order.
func NestedScopes() []Scope {
	return []Scope{ScopeAndroid, ScopeIOS, ScopeServer, ScopeCordova}
}

// ValueType represents the declared type of a config value
type ValueType string

const (
	TypeString     ValueType = "string"
	TypeBool       ValueType = "bool"
	TypeEnum       ValueType = "enum"
	TypeStringList ValueType = "string[]"
	TypeStringMap  ValueType = "map<string,string>"
	TypeOpaqueMap  ValueType = "map<string,any>"
)

// FieldSpec describes a single recognized configuration field.
type FieldSpec struct {
	Path  string    // e.g., "ios.minVersion"
	Scope Scope     // owning scope
	Name  string    // key inside the scope, e.g., "minVersion"
	Type  ValueType // declared value type

	// HasDefault is false for fields that stay unset when the document
	// omits them (appId, overrideUserAgent, ...).
	HasDefault bool
	Default    any

	Values []string // For enum type only

	// Inherits names the global field consulted when the scope leaves this
	// field unset. Empty for scope-only fields.
	Inherits string

	Since       string
	Description string
}

// DefaultValue returns a fresh copy of the field's default. Container
// defaults are always non-nil and empty.
func (f FieldSpec) DefaultValue() (any, bool) {
	if !f.HasDefault {
		return nil, false
	}
	switch f.Type {
	case TypeStringList:
		return []string{}, true
	case TypeStringMap:
		return map[string]string{}, true
	case TypeOpaqueMap:
		return map[string]any{}, true
	}
	return f.Default, true
}

// Check validates a raw value against the field's declared type and returns
// the normalized value. Map types are not handled here: their entries are
// checked one by one by the resolver.
func (f FieldSpec) Check(v any) (any, bool) {
	switch f.Type {
	case TypeString:
		s, ok := v.(string)
		return s, ok
	case TypeBool:
		b, ok := v.(bool)
		return b, ok
	case TypeEnum:
		s, ok := v.(string)
		if !ok || !isAllowed(s, f.Values) {
			return nil, false
		}
		return s, true
	case TypeStringList:
		return stringList(v)
	}
	return nil, false
}

// stringList accepts []string or []any holding only strings. Order is
// preserved and duplicates are kept.
func stringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// isAllowed checks if a value is in the allowed list
func isAllowed(value string, allowed []string) bool {
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}
