package diagnostic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Format formats a Diagnostic into a human-readable message.
func Format(d Diagnostic) string {
	// Invalid enum value: "{path}: '{value}' is not valid, must be one of: {allowed}"
	if s, ok := d.Value.(string); ok && d.Kind == KindTypeMismatch && len(d.Allowed) > 0 {
		return fmt.Sprintf("%s: '%s' is not valid, must be one of: %s; using default",
			d.Path, s, strings.Join(d.Allowed, ", "))
	}

	return fmt.Sprintf("%s: %s", d.Path, d.Message)
}

// FormatAll formats all diagnostics into a slice of human-readable messages.
func FormatAll(ds []Diagnostic) []string {
	messages := make([]string, len(ds))
	for i, d := range ds {
		messages[i] = Format(d)
	}
	return messages
}

var (
	warnLabel   = color.New(color.FgYellow, color.Bold)
	noticeLabel = color.New(color.FgCyan)
)

// FormatTerminal prefixes the message with a colored kind label. Color is
// disabled automatically when stdout is not a terminal.
func FormatTerminal(d Diagnostic) string {
	label := warnLabel
	if d.Kind.Informational() {
		label = noticeLabel
	}
	return label.Sprintf("[%s]", d.Kind) + " " + Format(d)
}

// FormatCI formats a diagnostic as a GitHub Actions annotation.
func FormatCI(d Diagnostic, file string) string {
	level := "warning"
	if d.Kind.Informational() {
		level = "notice"
	}
	return fmt.Sprintf("::%s file=%s::%s", level, EscapeProperty(file), EscapeData(string(d.Kind)+" "+Format(d)))
}

var (
	dataEscaper     = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
)

// EscapeData escapes the message part of a workflow command.
func EscapeData(s string) string {
	return dataEscaper.Replace(s)
}

// EscapeProperty escapes a workflow command property value such as file.
func EscapeProperty(s string) string {
	return propertyEscaper.Replace(s)
}

// FormatJSON formats diagnostics as a JSON array.
func FormatJSON(ds []Diagnostic) (string, error) {
	if ds == nil {
		ds = []Diagnostic{}
	}
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Summary returns a one-line count of diagnostics per kind.
func Summary(ds []Diagnostic) string {
	if len(ds) == 0 {
		return "no diagnostics"
	}
	counts := Counts(ds)
	var parts []string
	for _, k := range []Kind{KindUnknownKey, KindTypeMismatch, KindOverridden} {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	return fmt.Sprintf("%d diagnostic(s): %s", len(ds), strings.Join(parts, ", "))
}
