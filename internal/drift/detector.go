package drift

import (
	"sort"
	"time"

	"cinderapi/internal/baseline"
)

// DriftType represents the type of plan change.
type DriftType string

const (
	DriftAdded   DriftType = "added"   // Directive in current but not baseline
	DriftRemoved DriftType = "removed" // Directive in baseline but not current
	DriftChanged DriftType = "changed" // Directive in both with different states
)

// DirectiveDrift represents a single directive's drift. States are the
// redacted display states, so a changed secret shows identical values and
// is flagged by Secret instead.
type DirectiveDrift struct {
	ID            string    `json:"id"`
	Type          DriftType `json:"type"`
	BaselineState string    `json:"baselineState,omitempty"`
	CurrentState  string    `json:"currentState,omitempty"`
	Secret        bool      `json:"secret,omitempty"`
}

// DriftReport contains the full drift analysis.
type DriftReport struct {
	HasDrift        bool             `json:"hasDrift"`
	BaselineName    string           `json:"baselineName"`
	BaselineVersion string           `json:"baselineVersion"`
	CurrentVersion  string           `json:"currentVersion"`
	BaselineTime    time.Time        `json:"baselineTime"`
	Changes         []DirectiveDrift `json:"changes"`
}

// Detect compares the current plan snapshot against a baseline.
func Detect(b baseline.Baseline, current baseline.Snapshot) DriftReport {
	report := DriftReport{
		BaselineName:    b.Name,
		BaselineVersion: b.PlanVersion,
		CurrentVersion:  current.PlanVersion,
		BaselineTime:    b.Timestamp,
		Changes:         []DirectiveDrift{},
	}

	// Equal versions mean equal plans
	if b.PlanVersion == current.PlanVersion {
		return report
	}

	ids := make(map[string]bool)
	for id := range b.States {
		ids[id] = true
	}
	for id := range current.States {
		ids[id] = true
	}

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	for _, id := range sorted {
		baselineState, inBaseline := b.States[id]
		currentState, inCurrent := current.States[id]

		switch {
		case inBaseline && !inCurrent:
			report.Changes = append(report.Changes, DirectiveDrift{
				ID:            id,
				Type:          DriftRemoved,
				BaselineState: baselineState,
			})
		case !inBaseline && inCurrent:
			report.Changes = append(report.Changes, DirectiveDrift{
				ID:           id,
				Type:         DriftAdded,
				CurrentState: currentState,
			})
		case baselineState != currentState:
			report.Changes = append(report.Changes, DirectiveDrift{
				ID:            id,
				Type:          DriftChanged,
				BaselineState: baselineState,
				CurrentState:  currentState,
			})
		case b.SecretDigests[id] != current.SecretDigests[id]:
			report.Changes = append(report.Changes, DirectiveDrift{
				ID:            id,
				Type:          DriftChanged,
				BaselineState: baselineState,
				CurrentState:  currentState,
				Secret:        true,
			})
		}
	}

	report.HasDrift = len(report.Changes) > 0
	return report
}
