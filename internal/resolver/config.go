package resolver

// ContentInset is the iOS scroll view content inset adjustment behavior.
type ContentInset string

const (
	ContentInsetAutomatic      ContentInset = "automatic"
	ContentInsetScrollableAxes ContentInset = "scrollableAxes"
	ContentInsetNever          ContentInset = "never"
	ContentInsetAlways         ContentInset = "always"
)

// Config is the fully resolved configuration. Every field carries either the
// configured value or its documented default; fields without a default are
// Optional. Config never shares maps or slices with the input document and
// must be treated as read-only by consumers.
type Config struct {
	AppID             Optional[string]
	AppName           Optional[string]
	WebDir            Optional[string]
	BundledWebRuntime bool
	HideLogs          bool
	OverrideUserAgent Optional[string]
	AppendUserAgent   Optional[string] // Unset whenever OverrideUserAgent is set
	BackgroundColor   Optional[string]

	Android AndroidConfig
	IOS     IOSConfig
	Server  ServerConfig
	Cordova CordovaConfig

	// Plugins maps plugin names to their configuration, copied through
	// without validation.
	Plugins map[string]any

	// Extra holds unrecognized top-level keys.
	Extra map[string]any
}

// WebView groups the settings a platform scope inherits from the global
// level when it does not set them itself.
type WebView struct {
	OverrideUserAgent Optional[string]
	AppendUserAgent   Optional[string] // Unset whenever OverrideUserAgent is set
	BackgroundColor   Optional[string]
	HideLogs          bool
}

// AndroidConfig is the resolved android scope.
type AndroidConfig struct {
	Path string
	WebView
	AllowMixedContent           bool
	CaptureInput                bool
	WebContentsDebuggingEnabled bool
	Extra                       map[string]any
}

// IOSConfig is the resolved ios scope.
type IOSConfig struct {
	Path string
	WebView
	ContentInset        ContentInset
	CordovaSwiftVersion string
	MinVersion          string
	CordovaLinkerFlags  []string
	AllowsLinkPreview   bool
	Extra               map[string]any
}

// ServerConfig is the resolved server scope.
type ServerConfig struct {
	Hostname        string
	IOSScheme       string
	AndroidScheme   string
	URL             Optional[string]
	Cleartext       bool
	AllowNavigation []string
	Extra           map[string]any
}

// CordovaConfig is the resolved cordova scope.
type CordovaConfig struct {
	Preferences map[string]string
	Extra       map[string]any
}
