package resolver

// ToRaw expresses a resolved Config as a raw document. Resolving the result
// again yields an equal Config: scope values that were inherited become
// explicit, unset optional fields are omitted, and preserved unknown keys
// are written back where they were found.
func ToRaw(c Config) map[string]any {
	raw := make(map[string]any)

	putOptional(raw, "appId", c.AppID)
	putOptional(raw, "appName", c.AppName)
	putOptional(raw, "webDir", c.WebDir)
	raw["bundledWebRuntime"] = c.BundledWebRuntime
	raw["hideLogs"] = c.HideLogs
	putOptional(raw, "overrideUserAgent", c.OverrideUserAgent)
	putOptional(raw, "appendUserAgent", c.AppendUserAgent)
	putOptional(raw, "backgroundColor", c.BackgroundColor)

	android := map[string]any{
		"path":                        c.Android.Path,
		"allowMixedContent":           c.Android.AllowMixedContent,
		"captureInput":                c.Android.CaptureInput,
		"webContentsDebuggingEnabled": c.Android.WebContentsDebuggingEnabled,
	}
	putWebView(android, c.Android.WebView)
	putExtra(android, c.Android.Extra)
	raw["android"] = android

	ios := map[string]any{
		"path":                c.IOS.Path,
		"contentInset":        string(c.IOS.ContentInset),
		"cordovaSwiftVersion": c.IOS.CordovaSwiftVersion,
		"minVersion":          c.IOS.MinVersion,
		"cordovaLinkerFlags":  stringsToAny(c.IOS.CordovaLinkerFlags),
		"allowsLinkPreview":   c.IOS.AllowsLinkPreview,
	}
	putWebView(ios, c.IOS.WebView)
	putExtra(ios, c.IOS.Extra)
	raw["ios"] = ios

	server := map[string]any{
		"hostname":        c.Server.Hostname,
		"iosScheme":       c.Server.IOSScheme,
		"androidScheme":   c.Server.AndroidScheme,
		"cleartext":       c.Server.Cleartext,
		"allowNavigation": stringsToAny(c.Server.AllowNavigation),
	}
	putOptional(server, "url", c.Server.URL)
	putExtra(server, c.Server.Extra)
	raw["server"] = server

	prefs := make(map[string]any, len(c.Cordova.Preferences))
	for k, v := range c.Cordova.Preferences {
		prefs[k] = v
	}
	cordova := map[string]any{"preferences": prefs}
	putExtra(cordova, c.Cordova.Extra)
	raw["cordova"] = cordova

	plugins := make(map[string]any, len(c.Plugins))
	putExtra(plugins, c.Plugins)
	raw["plugins"] = plugins
	putExtra(raw, c.Extra)

	return raw
}

func putOptional(m map[string]any, key string, o Optional[string]) {
	if v, ok := o.Get(); ok {
		m[key] = v
	}
}

func putWebView(m map[string]any, w WebView) {
	putOptional(m, "overrideUserAgent", w.OverrideUserAgent)
	putOptional(m, "appendUserAgent", w.AppendUserAgent)
	putOptional(m, "backgroundColor", w.BackgroundColor)
	m["hideLogs"] = w.HideLogs
}

func putExtra(m map[string]any, extra map[string]any) {
	for k, v := range extra {
		m[k] = deepCopy(v)
	}
}

func stringsToAny(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}

// deepCopy copies the container types produced by document decoders so the
// result never aliases the input. Other values are returned as-is.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopy(item)
		}
		return out
	case map[string]string:
		if t == nil {
			return t
		}
		out := make(map[string]string, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out
	case []string:
		if t == nil {
			return t
		}
		out := make([]string, len(t))
		copy(out, t)
		return out
	}
	return v
}
