package resolver

import (
	"sort"

	"capconf/internal/diagnostic"
	"capconf/internal/schema"
)

// Origin records where a resolved value came from.
type Origin string

const (
	OriginExplicit    Origin = "explicit"    // Set by the document
	OriginDefault     Origin = "default"     // Field default applied
	OriginGlobal      Origin = "global"      // Inherited from the global level
	OriginUnset       Origin = "unset"       // No value and no default
	OriginDisregarded Origin = "disregarded" // Dropped because overrideUserAgent applies
)

// Result is the outcome of resolving one document.
type Result struct {
	Config      Config
	Diagnostics []diagnostic.Diagnostic // Sorted by path, then kind
	Origins     map[string]Origin       // Keyed by field path
}

// Resolve turns a raw document into a resolved Config.
//
// The document must be a map[string]any; anything else is a malformed
// document and the only error Resolve returns. Unknown keys and mistyped
// values are reported as diagnostics and never abort resolution. The input
// is never modified and the result shares no maps or slices with it.
func Resolve(raw any) (*Result, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, diagnostic.Malformed(raw)
	}

	r := newResolution()

	// Global fields first: scopes inherit from the resolved global values.
	r.resolveScope(schema.ScopeGlobal, doc)

	for _, scope := range schema.NestedScopes() {
		v, present := doc[string(scope)]
		var m map[string]any
		if present && v != nil {
			var isMap bool
			if m, isMap = v.(map[string]any); !isMap {
				r.report(diagnostic.TypeMismatch(string(scope), deepCopy(v), "mapping", nil))
			}
		}
		r.resolveScope(scope, m)
	}

	diagnostic.Sort(r.diags)

	return &Result{
		Config:      r.build(),
		Diagnostics: r.diags,
		Origins:     r.origins,
	}, nil
}

// resolution is the working state of a single Resolve call.
type resolution struct {
	values  map[string]any
	origins map[string]Origin
	extra   map[schema.Scope]map[string]any
	diags   []diagnostic.Diagnostic
}

func newResolution() *resolution {
	r := &resolution{
		values:  make(map[string]any),
		origins: make(map[string]Origin),
		extra:   make(map[schema.Scope]map[string]any),
	}
	r.extra[schema.ScopeGlobal] = make(map[string]any)
	for _, scope := range schema.NestedScopes() {
		r.extra[scope] = make(map[string]any)
	}
	return r
}

func (r *resolution) report(d diagnostic.Diagnostic) {
	r.diags = append(r.diags, d)
}

func (r *resolution) set(path string, v any, origin Origin) {
	r.values[path] = v
	r.origins[path] = origin
}

// resolveScope resolves every field of a scope from m, which may be nil,
// and preserves unrecognized keys.
func (r *resolution) resolveScope(scope schema.Scope, m map[string]any) {
	fields := schema.ScopeFields(scope)
	known := make(map[string]bool, len(fields))

	for _, f := range fields {
		known[f.Name] = true
		switch f.Type {
		case schema.TypeStringMap:
			r.resolveStringMap(f, m)
		case schema.TypeOpaqueMap:
			r.resolveOpaqueMap(f, m)
		default:
			r.resolveField(f, m)
		}
	}

	r.disregardAppend(scope)

	for _, k := range sortedKeys(m) {
		if known[k] || (scope == schema.ScopeGlobal && schema.IsNestedScope(k)) {
			continue
		}
		r.extra[scope][k] = deepCopy(m[k])
		r.report(diagnostic.UnknownKey(scopedPath(scope, k)))
	}
}

// resolveField applies the precedence chain for a scalar or list field:
// scope-local value, then the resolved global value for inheriting fields,
// then the field default.
func (r *resolution) resolveField(f schema.FieldSpec, m map[string]any) {
	if v, present := m[f.Name]; present && v != nil {
		if norm, ok := f.Check(v); ok {
			r.set(f.Path, norm, OriginExplicit)
			return
		}
		r.report(diagnostic.TypeMismatch(f.Path, deepCopy(v), string(f.Type), f.Values))
		r.applyDefault(f)
		return
	}

	if f.Inherits != "" {
		if gv, ok := r.values[f.Inherits]; ok {
			r.set(f.Path, deepCopy(gv), OriginGlobal)
			return
		}
	}

	r.applyDefault(f)
}

func (r *resolution) applyDefault(f schema.FieldSpec) {
	if def, ok := f.DefaultValue(); ok {
		r.set(f.Path, def, OriginDefault)
		return
	}
	delete(r.values, f.Path)
	r.origins[f.Path] = OriginUnset
}

// disregardAppend drops appendUserAgent at a level where overrideUserAgent
// is in effect. Only an explicitly configured append value is reported.
func (r *resolution) disregardAppend(scope schema.Scope) {
	overridePath := scopedPath(scope, "overrideUserAgent")
	appendPath := scopedPath(scope, "appendUserAgent")

	if _, ok := schema.Lookup(appendPath); !ok {
		return
	}
	if _, ok := r.values[overridePath]; !ok {
		return
	}
	if _, ok := r.values[appendPath]; !ok {
		return
	}

	if r.origins[appendPath] == OriginExplicit {
		r.report(diagnostic.Overridden(appendPath, overridePath))
	}
	delete(r.values, appendPath)
	r.origins[appendPath] = OriginDisregarded
}

// resolveStringMap handles cordova.preferences: a flat name to string
// mapping. Undefined (null) entries are dropped; mistyped entries are
// reported and dropped.
func (r *resolution) resolveStringMap(f schema.FieldSpec, m map[string]any) {
	v, present := m[f.Name]
	if !present || v == nil {
		r.applyDefault(f)
		return
	}

	out := make(map[string]string)
	switch entries := v.(type) {
	case map[string]string:
		for k, s := range entries {
			out[k] = s
		}
	case map[string]any:
		for _, k := range sortedKeys(entries) {
			switch s := entries[k].(type) {
			case nil:
			case string:
				out[k] = s
			default:
				r.report(diagnostic.TypeMismatch(f.Path+"."+k, deepCopy(s), string(schema.TypeString), nil))
			}
		}
	default:
		r.report(diagnostic.TypeMismatch(f.Path, deepCopy(v), string(f.Type), nil))
		r.applyDefault(f)
		return
	}

	r.set(f.Path, out, OriginExplicit)
}

// resolveOpaqueMap handles plugins: entries are copied structurally and
// never inspected.
func (r *resolution) resolveOpaqueMap(f schema.FieldSpec, m map[string]any) {
	v, present := m[f.Name]
	if !present || v == nil {
		r.applyDefault(f)
		return
	}

	entries, ok := v.(map[string]any)
	if !ok {
		r.report(diagnostic.TypeMismatch(f.Path, deepCopy(v), string(f.Type), nil))
		r.applyDefault(f)
		return
	}

	r.set(f.Path, deepCopy(entries), OriginExplicit)
}

func (r *resolution) build() Config {
	return Config{
		AppID:             r.optional("appId"),
		AppName:           r.optional("appName"),
		WebDir:            r.optional("webDir"),
		BundledWebRuntime: r.flag("bundledWebRuntime"),
		HideLogs:          r.flag("hideLogs"),
		OverrideUserAgent: r.optional("overrideUserAgent"),
		AppendUserAgent:   r.optional("appendUserAgent"),
		BackgroundColor:   r.optional("backgroundColor"),

		Android: AndroidConfig{
			Path:                        r.str("android.path"),
			WebView:                     r.webView(schema.ScopeAndroid),
			AllowMixedContent:           r.flag("android.allowMixedContent"),
			CaptureInput:                r.flag("android.captureInput"),
			WebContentsDebuggingEnabled: r.flag("android.webContentsDebuggingEnabled"),
			Extra:                       r.extra[schema.ScopeAndroid],
		},
		IOS: IOSConfig{
			Path:                r.str("ios.path"),
			WebView:             r.webView(schema.ScopeIOS),
			ContentInset:        ContentInset(r.str("ios.contentInset")),
			CordovaSwiftVersion: r.str("ios.cordovaSwiftVersion"),
			MinVersion:          r.str("ios.minVersion"),
			CordovaLinkerFlags:  r.list("ios.cordovaLinkerFlags"),
			AllowsLinkPreview:   r.flag("ios.allowsLinkPreview"),
			Extra:               r.extra[schema.ScopeIOS],
		},
		Server: ServerConfig{
			Hostname:        r.str("server.hostname"),
			IOSScheme:       r.str("server.iosScheme"),
			AndroidScheme:   r.str("server.androidScheme"),
			URL:             r.optional("server.url"),
			Cleartext:       r.flag("server.cleartext"),
			AllowNavigation: r.list("server.allowNavigation"),
			Extra:           r.extra[schema.ScopeServer],
		},
		Cordova: CordovaConfig{
			Preferences: r.stringMap("cordova.preferences"),
			Extra:       r.extra[schema.ScopeCordova],
		},

		Plugins: r.opaqueMap("plugins"),
		Extra:   r.extra[schema.ScopeGlobal],
	}
}

func (r *resolution) webView(scope schema.Scope) WebView {
	return WebView{
		OverrideUserAgent: r.optional(scopedPath(scope, "overrideUserAgent")),
		AppendUserAgent:   r.optional(scopedPath(scope, "appendUserAgent")),
		BackgroundColor:   r.optional(scopedPath(scope, "backgroundColor")),
		HideLogs:          r.flag(scopedPath(scope, "hideLogs")),
	}
}

func (r *resolution) optional(path string) Optional[string] {
	if s, ok := r.values[path].(string); ok {
		return Some(s)
	}
	return None[string]()
}

func (r *resolution) str(path string) string {
	s, _ := r.values[path].(string)
	return s
}

func (r *resolution) flag(path string) bool {
	b, _ := r.values[path].(bool)
	return b
}

func (r *resolution) list(path string) []string {
	if l, ok := r.values[path].([]string); ok {
		return l
	}
	return []string{}
}

func (r *resolution) stringMap(path string) map[string]string {
	if m, ok := r.values[path].(map[string]string); ok {
		return m
	}
	return map[string]string{}
}

func (r *resolution) opaqueMap(path string) map[string]any {
	if m, ok := r.values[path].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func scopedPath(scope schema.Scope, key string) string {
	if scope == schema.ScopeGlobal {
		return key
	}
	return string(scope) + "." + key
}

// sortedKeys returns the keys of m in sorted order so diagnostics and
// overflow handling are deterministic. A nil map yields no keys.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
