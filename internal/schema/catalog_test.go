package schema

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCatalog_Defaults(t *testing.T) {
	tests := []struct {
		path string
		want any
	}{
		{"bundledWebRuntime", false},
		{"hideLogs", false},
		{"android.path", "android"},
		{"android.allowMixedContent", false},
		{"ios.path", "ios"},
		{"ios.contentInset", "never"},
		{"ios.cordovaSwiftVersion", "5.1"},
		{"ios.minVersion", "11.0"},
		{"ios.cordovaLinkerFlags", []string{}},
		{"server.hostname", "localhost"},
		{"server.iosScheme", "capacitor"},
		{"server.androidScheme", "http"},
		{"server.cleartext", false},
		{"server.allowNavigation", []string{}},
		{"cordova.preferences", map[string]string{}},
		{"plugins", map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, ok := Lookup(tt.path)
			require.True(t, ok)
			def, ok := f.DefaultValue()
			require.True(t, ok)
			assert.Equal(t, tt.want, def)
		})
	}
}

func TestCatalog_NoDefault(t *testing.T) {
	for _, p := range []string{
		"appId", "appName", "webDir", "overrideUserAgent", "appendUserAgent", "backgroundColor",
		"android.overrideUserAgent", "ios.backgroundColor", "server.url",
	} {
		f, ok := Lookup(p)
		require.True(t, ok, p)
		_, has := f.DefaultValue()
		assert.False(t, has, p)
	}
}

func TestCatalog_Inheritance(t *testing.T) {
	for _, scope := range []Scope{ScopeAndroid, ScopeIOS} {
		for _, name := range []string{"overrideUserAgent", "appendUserAgent", "backgroundColor", "hideLogs"} {
			f, ok := Lookup(string(scope) + "." + name)
			require.True(t, ok)
			assert.Equal(t, name, f.Inherits)
		}
	}

	f, ok := Lookup("ios.minVersion")
	require.True(t, ok)
	assert.Empty(t, f.Inherits)

	f, ok = Lookup("server.hostname")
	require.True(t, ok)
	assert.Empty(t, f.Inherits)
}

func TestCatalog_CopiesAreIndependent(t *testing.T) {
	f, ok := Lookup("ios.contentInset")
	require.True(t, ok)
	f.Values[0] = "mutated"

	again, _ := Lookup("ios.contentInset")
	assert.Equal(t, "automatic", again.Values[0])

	fields := Fields()
	fields[0].Path = "mutated"
	assert.Equal(t, "appId", Fields()[0].Path)
}

func TestCatalog_ScopeFields(t *testing.T) {
	server := ScopeFields(ScopeServer)
	names := make([]string, 0, len(server))
	for _, f := range server {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"hostname", "iosScheme", "androidScheme", "url", "cleartext", "allowNavigation"}, names)

	assert.Len(t, ScopeFields(ScopeCordova), 1)
}

func TestValidateCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		fields []FieldSpec
	}{
		{"duplicate", []FieldSpec{str(ScopeGlobal, "a", "", "", ""), str(ScopeGlobal, "a", "", "", "")}},
		{"enum without values", []FieldSpec{{Path: "ios.x", Scope: ScopeIOS, Name: "x", Type: TypeEnum}}},
		{"enum default not allowed", []FieldSpec{{
			Path: "ios.x", Scope: ScopeIOS, Name: "x", Type: TypeEnum,
			HasDefault: true, Default: "nope", Values: []string{"a"},
		}}},
		{"unknown inherit", []FieldSpec{{Path: "ios.x", Scope: ScopeIOS, Name: "x", Type: TypeString, Inherits: "x"}}},
		{"path mismatch", []FieldSpec{{Path: "ios.y", Scope: ScopeIOS, Name: "x", Type: TypeString}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, validateCatalog(tt.fields))
		})
	}
}

func TestCheck(t *testing.T) {
	inset, _ := Lookup("ios.contentInset")
	flags, _ := Lookup("ios.cordovaLinkerFlags")
	name, _ := Lookup("appName")
	hide, _ := Lookup("hideLogs")

	tests := []struct {
		name  string
		field FieldSpec
		in    any
		want  any
		ok    bool
	}{
		{"string", name, "App", "App", true},
		{"string wrong type", name, 3.0, nil, false},
		{"bool", hide, true, true, true},
		{"bool as string", hide, "yes", nil, false},
		{"enum allowed", inset, "always", "always", true},
		{"enum not allowed", inset, "sometimes", nil, false},
		{"enum wrong type", inset, 1, nil, false},
		{"list of any", flags, []any{"-ObjC", "-ObjC"}, []string{"-ObjC", "-ObjC"}, true},
		{"list of strings", flags, []string{"a"}, []string{"a"}, true},
		{"list with number", flags, []any{"a", 1}, nil, false},
		{"list not a list", flags, "a", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.field.Check(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// For any enum value outside the allowed set, Check SHALL reject it.
func TestCheck_EnumRejection_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	inset, _ := Lookup("ios.contentInset")

	properties.Property("values outside the enumeration are rejected", prop.ForAll(
		func(v string) bool {
			if isAllowed(v, inset.Values) {
				return true
			}
			_, ok := inset.Check(v)
			return !ok
		},
		gen.AnyString(),
	))

	properties.Property("string lists keep order and duplicates", prop.ForAll(
		func(items []string) bool {
			raw := make([]any, len(items))
			for i, s := range items {
				raw[i] = s
			}
			flags, _ := Lookup("ios.cordovaLinkerFlags")
			got, ok := flags.Check(raw)
			if !ok {
				return false
			}
			list := got.([]string)
			if len(list) != len(items) {
				return false
			}
			for i := range items {
				if list[i] != items[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.OneConstOf("a", "b", "-ObjC")),
	))

	properties.TestingRun(t)
}

func TestToYAML(t *testing.T) {
	out, err := ToYAML(ScopeFields(ScopeIOS))
	require.NoError(t, err)

	var parsed catalogFile
	require.NoError(t, yaml.Unmarshal(out, &parsed))
	require.Len(t, parsed.Fields, len(ScopeFields(ScopeIOS)))

	byPath := make(map[string]fieldEntry)
	for _, f := range parsed.Fields {
		byPath[f.Path] = f
	}

	assert.Equal(t, "never", byPath["ios.contentInset"].Default)
	assert.Equal(t, []string{"automatic", "scrollableAxes", "never", "always"}, byPath["ios.contentInset"].Values)
	assert.Equal(t, false, byPath["ios.allowsLinkPreview"].Default)
	assert.Equal(t, "hideLogs", byPath["ios.hideLogs"].Inherits)
	assert.Nil(t, byPath["ios.overrideUserAgent"].Default)
	assert.Equal(t, []any{}, byPath["ios.cordovaLinkerFlags"].Default)
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("android")
	require.NoError(t, err)
	assert.Equal(t, ScopeAndroid, s)

	s, err = ParseScope("global")
	require.NoError(t, err)
	assert.Equal(t, ScopeGlobal, s)

	_, err = ParseScope("plugins")
	assert.Error(t, err)
}
