package drift

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatCLI formats drift report for terminal output.
func FormatCLI(report DriftReport) string {
	if !report.HasDrift {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⚠️  Plan drift detected since baseline '%s':\n", report.BaselineName))

	for _, change := range report.Changes {
		switch change.Type {
		case DriftAdded:
			sb.WriteString(fmt.Sprintf("  + %s: (new) → %s\n", change.ID, change.CurrentState))
		case DriftRemoved:
			sb.WriteString(fmt.Sprintf("  - %s: %s → (removed)\n", change.ID, change.BaselineState))
		case DriftChanged:
			if change.Secret {
				sb.WriteString(fmt.Sprintf("  ~ %s: secret value changed\n", change.ID))
				continue
			}
			sb.WriteString(fmt.Sprintf("  ~ %s: %s → %s\n", change.ID, change.BaselineState, change.CurrentState))
		}
	}

	return sb.String()
}

// FormatCI formats drift report as GitHub Actions warning annotations.
func FormatCI(report DriftReport) string {
	if !report.HasDrift {
		return ""
	}

	var sb strings.Builder

	for _, change := range report.Changes {
		var msg string
		switch change.Type {
		case DriftAdded:
			msg = fmt.Sprintf("Plan drift: %s added (%s)", change.ID, change.CurrentState)
		case DriftRemoved:
			msg = fmt.Sprintf("Plan drift: %s removed (was: %s)", change.ID, change.BaselineState)
		case DriftChanged:
			if change.Secret {
				msg = fmt.Sprintf("Plan drift: %s secret value changed", change.ID)
			} else {
				msg = fmt.Sprintf("Plan drift: %s changed from '%s' to '%s'", change.ID, change.BaselineState, change.CurrentState)
			}
		}
		sb.WriteString(fmt.Sprintf("::warning title=cinderapi drift::%s\n", msg))
	}

	sb.WriteString(fmt.Sprintf("\n⚠️  Plan drift detected: %d change(s) since baseline '%s'\n", len(report.Changes), report.BaselineName))
	return sb.String()
}

// FormatJSON formats drift report as JSON.
func FormatJSON(report DriftReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
