package drift

import (
	"encoding/json"
	"fmt"
	"strings"

	"capconf/internal/diagnostic"

	"github.com/fatih/color"
)

var markerColors = map[DriftType]*color.Color{
	DriftAdded:   color.New(color.FgGreen),
	DriftRemoved: color.New(color.FgRed),
	DriftChanged: color.New(color.FgYellow),
}

// Marker is the one-character diff marker for the change.
func (d KeyDrift) Marker() string {
	switch d.Type {
	case DriftAdded:
		return "+"
	case DriftRemoved:
		return "-"
	default:
		return "~"
	}
}

// Transition renders the value change as "old → new".
func (d KeyDrift) Transition() string {
	from, to := d.BaselineValue, d.CurrentValue
	if d.Type == DriftAdded {
		from = "(new)"
	}
	if d.Type == DriftRemoved {
		to = "(removed)"
	}
	return from + " → " + to
}

// Counts tallies the changes of each type.
func (r DriftReport) Counts() map[DriftType]int {
	counts := make(map[DriftType]int, 3)
	for _, c := range r.Changes {
		counts[c.Type]++
	}
	return counts
}

// FormatCLI renders the report for a terminal, one line per changed key.
func FormatCLI(report DriftReport) string {
	if !report.HasDrift {
		return fmt.Sprintf("No drift from baseline '%s'.\n", report.BaselineName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Configuration drift detected since baseline '%s':\n", report.BaselineName)
	for _, c := range report.Changes {
		marker := markerColors[c.Type].Sprint(c.Marker())
		fmt.Fprintf(&b, "  %s %s: %s\n", marker, c.Key, c.Transition())
	}

	counts := report.Counts()
	fmt.Fprintf(&b, "%d added, %d removed, %d changed\n",
		counts[DriftAdded], counts[DriftRemoved], counts[DriftChanged])
	return b.String()
}

// FormatCI renders one GitHub Actions warning per change, annotated against
// file, followed by a summary line. A report without drift renders empty.
func FormatCI(report DriftReport, file string) string {
	if !report.HasDrift {
		return ""
	}

	var b strings.Builder
	file = diagnostic.EscapeProperty(file)
	for _, c := range report.Changes {
		msg := diagnostic.EscapeData(fmt.Sprintf("%s %s (%s)", c.Key, c.Type, c.Transition()))
		fmt.Fprintf(&b, "::warning file=%s,title=Config drift::%s\n", file, msg)
	}
	fmt.Fprintf(&b, "\nConfiguration drift detected: %d change(s) since baseline '%s'\n", len(report.Changes), report.BaselineName)
	return b.String()
}

// FormatJSON renders the report as indented JSON.
func FormatJSON(report DriftReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode drift report: %w", err)
	}
	return string(data), nil
}
