package drift

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func reportWith(changes ...KeyDrift) DriftReport {
	return DriftReport{
		HasDrift:        len(changes) > 0,
		BaselineName:    "test",
		BaselineVersion: "sha256:old",
		CurrentVersion:  "sha256:new",
		BaselineTime:    time.Now().UTC(),
		Changes:         changes,
	}
}

// For any drift report with changes, all formats should contain the key information.
func TestDriftReportFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("CLI format contains key names and values", prop.ForAll(
		func(key, oldVal, newVal string) bool {
			output := FormatCLI(reportWith(KeyDrift{Key: key, Type: DriftChanged, BaselineValue: oldVal, CurrentValue: newVal}))

			return strings.Contains(output, key) &&
				strings.Contains(output, oldVal) &&
				strings.Contains(output, newVal) &&
				strings.Contains(output, "drift")
		},
		gen.Identifier(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("CI format contains warning annotations", prop.ForAll(
		func(key, value string) bool {
			output := FormatCI(reportWith(KeyDrift{Key: key, Type: DriftAdded, CurrentValue: value}), "capacitor.config.json")

			return strings.Contains(output, "::warning file=capacitor.config.json,title=Config drift::") &&
				strings.Contains(output, key)
		},
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.Property("JSON format is valid JSON with all fields", prop.ForAll(
		func(key, oldVal, newVal string) bool {
			output, err := FormatJSON(reportWith(KeyDrift{Key: key, Type: DriftChanged, BaselineValue: oldVal, CurrentValue: newVal}))
			if err != nil {
				return false
			}

			var parsed DriftReport
			if err := json.Unmarshal([]byte(output), &parsed); err != nil {
				return false
			}

			return parsed.HasDrift &&
				parsed.BaselineName == "test" &&
				len(parsed.Changes) == 1 &&
				parsed.Changes[0].Key == key
		},
		gen.Identifier(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestFormatCLINoDrift(t *testing.T) {
	output := FormatCLI(reportWith())
	assert.Equal(t, "No drift from baseline 'test'.\n", output)
}

func TestFormatCIEmpty(t *testing.T) {
	assert.Empty(t, FormatCI(reportWith(), "capacitor.config.json"))
}

func TestFormatCLIDriftTypes(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	output := FormatCLI(reportWith(
		KeyDrift{Key: "added.key", Type: DriftAdded, CurrentValue: `"newval"`},
		KeyDrift{Key: "removed.key", Type: DriftRemoved, BaselineValue: `"oldval"`},
		KeyDrift{Key: "changed.key", Type: DriftChanged, BaselineValue: `"old"`, CurrentValue: `"new"`},
	))

	assert.Contains(t, output, `+ added.key: (new) → "newval"`)
	assert.Contains(t, output, `- removed.key: "oldval" → (removed)`)
	assert.Contains(t, output, `~ changed.key: "old" → "new"`)
	assert.Contains(t, output, "1 added, 1 removed, 1 changed\n")
}

func TestFormatCIChange(t *testing.T) {
	output := FormatCI(reportWith(
		KeyDrift{Key: "ios.scheme", Type: DriftChanged, BaselineValue: `"App"`, CurrentValue: `"Beta"`},
	), "capacitor.config.yaml")

	lines := strings.Split(strings.TrimSpace(output), "\n")
	assert.Equal(t, `::warning file=capacitor.config.yaml,title=Config drift::ios.scheme changed ("App" → "Beta")`, lines[0])
	assert.Equal(t, "Configuration drift detected: 1 change(s) since baseline 'test'", lines[len(lines)-1])
}

func TestReportCounts(t *testing.T) {
	counts := reportWith(
		KeyDrift{Key: "a", Type: DriftAdded},
		KeyDrift{Key: "b", Type: DriftAdded},
		KeyDrift{Key: "c", Type: DriftChanged},
	).Counts()

	assert.Equal(t, 2, counts[DriftAdded])
	assert.Equal(t, 0, counts[DriftRemoved])
	assert.Equal(t, 1, counts[DriftChanged])
}

func TestFormatCI_EscapesKeysAndFile(t *testing.T) {
	output := FormatCI(reportWith(
		KeyDrift{Key: "plugins.x\ny", Type: DriftAdded, CurrentValue: `"50%"`},
	), "a,b:c.json")

	lines := strings.Split(output, "\n")
	assert.Equal(t, `::warning file=a%2Cb%3Ac.json,title=Config drift::plugins.x%0Ay added ((new) → "50%25")`, lines[0])
}
