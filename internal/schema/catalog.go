package schema

import (
	"fmt"
	"strings"
)

// ContentInset values accepted by ios.contentInset.
var contentInsetValues = []string{"automatic", "scrollableAxes", "never", "always"}

// catalog is the process-wide field table. It is built once at init and only
// handed out by copy.
var (
	catalog []FieldSpec
	byPath  map[string]int
)

func init() {
	catalog = buildCatalog()
	if err := validateCatalog(catalog); err != nil {
		panic("schema: " + err.Error())
	}
	byPath = make(map[string]int, len(catalog))
	for i, f := range catalog {
		byPath[f.Path] = i
	}
}

func buildCatalog() []FieldSpec {
	hideLogs := boolean(ScopeGlobal, "hideLogs", "1.0.0", "Hide or show the native logs for iOS and Android.")
	overrideUA := str(ScopeGlobal, "overrideUserAgent", "", "1.0.0", "User agent of the web view.")
	appendUA := str(ScopeGlobal, "appendUserAgent", "", "1.0.0", "String appended to the web view user agent. Disregarded when overrideUserAgent is set.")
	background := str(ScopeGlobal, "backgroundColor", "", "1.0.0", "Background color of the web view.")

	return []FieldSpec{
		str(ScopeGlobal, "appId", "", "1.0.0", "The package ID of the app in reverse domain name notation."),
		str(ScopeGlobal, "appName", "", "1.0.0", "The human-friendly name of the app."),
		str(ScopeGlobal, "webDir", "", "1.0.0", "The directory of the compiled web assets."),
		boolean(ScopeGlobal, "bundledWebRuntime", "1.0.0", "Whether to copy the runtime bundle into the web assets."),
		hideLogs,
		overrideUA,
		appendUA,
		background,
		{
			Path: "plugins", Scope: ScopeGlobal, Name: "plugins", Type: TypeOpaqueMap, HasDefault: true,
			Since: "1.0.0", Description: "Plugin configuration keyed by plugin name. Passed through unvalidated.",
		},

		str(ScopeAndroid, "path", "android", "3.0.0", "Custom path to the native Android project."),
		inherited(ScopeAndroid, overrideUA, "1.0.0", "User agent of the web view on Android."),
		inherited(ScopeAndroid, appendUA, "1.0.0", "String appended to the Android web view user agent."),
		inherited(ScopeAndroid, background, "1.0.0", "Background color of the web view on Android."),
		boolean(ScopeAndroid, "allowMixedContent", "1.0.0", "Enable mixed content in the Android web view."),
		boolean(ScopeAndroid, "captureInput", "1.0.0", "Use the simpler keyboard that captures JS keys."),
		boolean(ScopeAndroid, "webContentsDebuggingEnabled", "1.0.0", "Always enable debuggable web content."),
		inherited(ScopeAndroid, hideLogs, "1.0.0", "Hide or show the native logs for Android."),

		str(ScopeIOS, "path", "ios", "3.0.0", "Custom path to the native iOS project."),
		inherited(ScopeIOS, overrideUA, "1.0.0", "User agent of the web view on iOS."),
		inherited(ScopeIOS, appendUA, "1.0.0", "String appended to the iOS web view user agent."),
		inherited(ScopeIOS, background, "1.0.0", "Background color of the web view on iOS."),
		{
			Path: "ios.contentInset", Scope: ScopeIOS, Name: "contentInset", Type: TypeEnum,
			HasDefault: true, Default: "never", Values: contentInsetValues,
			Since: "1.0.0", Description: "Content inset adjustment behavior of the web view's scroll view.",
		},
		str(ScopeIOS, "cordovaSwiftVersion", "5.1", "1.0.0", "Swift version used by Cordova plugins."),
		str(ScopeIOS, "minVersion", "11.0", "1.0.0", "Minimum supported iOS version."),
		list(ScopeIOS, "cordovaLinkerFlags", "1.0.0", "Custom linker flags for compiling Cordova plugins."),
		boolean(ScopeIOS, "allowsLinkPreview", "1.0.0", "Allow destination previews when pressing on links."),
		inherited(ScopeIOS, hideLogs, "1.0.0", "Hide or show the native logs for iOS."),

		str(ScopeServer, "hostname", "localhost", "1.0.0", "Local hostname of the device."),
		str(ScopeServer, "iosScheme", "capacitor", "1.0.0", "Local scheme on iOS."),
		str(ScopeServer, "androidScheme", "http", "1.0.0", "Local scheme on Android."),
		str(ScopeServer, "url", "", "1.0.0", "External URL to load in the web view, for live-reload servers."),
		boolean(ScopeServer, "cleartext", "1.0.0", "Allow cleartext traffic in the web view."),
		list(ScopeServer, "allowNavigation", "1.0.0", "Additional URLs the web view can navigate to."),

		{
			Path: "cordova.preferences", Scope: ScopeCordova, Name: "preferences", Type: TypeStringMap,
			HasDefault: true, Since: "1.0.0", Description: "Cordova preferences.",
		},
	}
}

func joinPath(scope Scope, name string) string {
	if scope == ScopeGlobal {
		return name
	}
	return string(scope) + "." + name
}

// str declares a string field. An empty def means the field has no default.
func str(scope Scope, name, def, since, desc string) FieldSpec {
	f := FieldSpec{Path: joinPath(scope, name), Scope: scope, Name: name, Type: TypeString, Since: since, Description: desc}
	if def != "" {
		f.HasDefault = true
		f.Default = def
	}
	return f
}

func boolean(scope Scope, name, since, desc string) FieldSpec {
	return FieldSpec{
		Path: joinPath(scope, name), Scope: scope, Name: name, Type: TypeBool,
		HasDefault: true, Default: false, Since: since, Description: desc,
	}
}

func list(scope Scope, name, since, desc string) FieldSpec {
	return FieldSpec{
		Path: joinPath(scope, name), Scope: scope, Name: name, Type: TypeStringList,
		HasDefault: true, Since: since, Description: desc,
	}
}

// inherited declares a scope field that falls back to a global field of
// the same name, sharing its type and default.
func inherited(scope Scope, global FieldSpec, since, desc string) FieldSpec {
	return FieldSpec{
		Path: joinPath(scope, global.Name), Scope: scope, Name: global.Name, Type: global.Type,
		HasDefault: global.HasDefault, Default: global.Default, Inherits: global.Path,
		Since: since, Description: desc,
	}
}

// validateCatalog checks the table for mistakes that would otherwise only
// surface as wrong resolution results.
func validateCatalog(fields []FieldSpec) error {
	seen := make(map[string]bool)
	globals := make(map[string]FieldSpec)
	for _, f := range fields {
		if f.Scope == ScopeGlobal {
			globals[f.Name] = f
		}
	}

	for _, f := range fields {
		if seen[f.Path] {
			return fmt.Errorf("duplicate field path '%s'", f.Path)
		}
		seen[f.Path] = true

		if f.Path != joinPath(f.Scope, f.Name) {
			return fmt.Errorf("field '%s' does not match scope '%s' and name '%s'", f.Path, f.Scope, f.Name)
		}

		if f.Type == TypeEnum {
			if len(f.Values) == 0 {
				return fmt.Errorf("enum type requires values for field '%s'", f.Path)
			}
			if def, ok := f.Default.(string); f.HasDefault && (!ok || !isAllowed(def, f.Values)) {
				return fmt.Errorf("default of enum field '%s' is not an allowed value", f.Path)
			}
		}

		if f.Inherits != "" {
			g, ok := globals[f.Inherits]
			if !ok {
				return fmt.Errorf("field '%s' inherits unknown global field '%s'", f.Path, f.Inherits)
			}
			if g.Type != f.Type {
				return fmt.Errorf("field '%s' type %s does not match inherited '%s' type %s", f.Path, f.Type, g.Path, g.Type)
			}
		}
	}
	return nil
}

// Fields returns a copy of the catalog in declaration order.
func Fields() []FieldSpec {
	out := make([]FieldSpec, len(catalog))
	for i, f := range catalog {
		out[i] = f.clone()
	}
	return out
}

// ScopeFields returns the fields declared in the given scope.
func ScopeFields(scope Scope) []FieldSpec {
	var out []FieldSpec
	for _, f := range catalog {
		if f.Scope == scope {
			out = append(out, f.clone())
		}
	}
	return out
}

// Lookup returns the field with the given dotted path.
func Lookup(p string) (FieldSpec, bool) {
	i, ok := byPath[p]
	if !ok {
		return FieldSpec{}, false
	}
	return catalog[i].clone(), true
}

// IsNestedScope reports whether a top-level key names a nested scope.
func IsNestedScope(key string) bool {
	for _, s := range NestedScopes() {
		if string(s) == key {
			return true
		}
	}
	return false
}

// ParseScope converts a scope name into a Scope.
func ParseScope(name string) (Scope, error) {
	s := Scope(strings.TrimSpace(name))
	if s == ScopeGlobal || IsNestedScope(string(s)) {
		return s, nil
	}
	return "", fmt.Errorf("unknown scope '%s'", name)
}

func (f FieldSpec) clone() FieldSpec {
	if f.Values != nil {
		f.Values = append([]string(nil), f.Values...)
	}
	return f
}
