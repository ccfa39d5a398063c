package drift

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func reportWith(changes ...DirectiveDrift) DriftReport {
	return DriftReport{
		HasDrift:        len(changes) > 0,
		BaselineName:    "prod",
		BaselineVersion: "sha256:old",
		CurrentVersion:  "sha256:new",
		BaselineTime:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Changes:         changes,
	}
}

func TestDriftReportFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("CLI and CI formats contain ID and both states", prop.ForAll(
		func(id, oldState, newState string) bool {
			report := reportWith(DirectiveDrift{ID: id, Type: DriftChanged, BaselineState: oldState, CurrentState: newState})
			for _, out := range []string{FormatCLI(report), FormatCI(report)} {
				if !strings.Contains(out, id) || !strings.Contains(out, oldState) || !strings.Contains(out, newState) {
					return false
				}
				if !strings.Contains(out, "drift") {
					return false
				}
			}
			return true
		},
		gen.Identifier(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("JSON format round-trips", prop.ForAll(
		func(id, state string) bool {
			report := reportWith(DirectiveDrift{ID: id, Type: DriftAdded, CurrentState: state})
			out, err := FormatJSON(report)
			if err != nil {
				return false
			}
			var decoded DriftReport
			if err := json.Unmarshal([]byte(out), &decoded); err != nil {
				return false
			}
			return decoded.HasDrift && len(decoded.Changes) == 1 &&
				decoded.Changes[0].ID == id && decoded.Changes[0].CurrentState == state
		},
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestFormatCLIEmpty(t *testing.T) {
	if out := FormatCLI(reportWith()); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestFormatCIEmpty(t *testing.T) {
	if out := FormatCI(reportWith()); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestFormatCLIDriftTypes(t *testing.T) {
	report := reportWith(
		DirectiveDrift{ID: "main:DEFAULT/os_region_name", Type: DriftAdded, CurrentState: "present=MyRegion"},
		DirectiveDrift{ID: "exec:cinder-manage db_sync", Type: DriftRemoved, BaselineState: "refresh_only"},
		DirectiveDrift{ID: "service:cinder-api", Type: DriftChanged, BaselineState: "running", CurrentState: "stopped"},
		DirectiveDrift{ID: "auth-filter:filter:authtoken/admin_password", Type: DriftChanged,
			BaselineState: "present=********", CurrentState: "present=********", Secret: true},
	)

	out := FormatCLI(report)
	for _, want := range []string{
		"+ main:DEFAULT/os_region_name: (new) → present=MyRegion",
		"- exec:cinder-manage db_sync: refresh_only → (removed)",
		"~ service:cinder-api: running → stopped",
		"~ auth-filter:filter:authtoken/admin_password: secret value changed",
		"baseline 'prod'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatCI_Annotations(t *testing.T) {
	report := reportWith(
		DirectiveDrift{ID: "service:cinder-api", Type: DriftChanged, BaselineState: "running", CurrentState: "stopped"},
		DirectiveDrift{ID: "auth-filter:filter:authtoken/admin_password", Type: DriftChanged, Secret: true},
	)

	out := FormatCI(report)
	if got := strings.Count(out, "::warning "); got != 2 {
		t.Errorf("expected 2 annotations, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "2 change(s) since baseline 'prod'") {
		t.Errorf("missing summary line:\n%s", out)
	}
	if !strings.Contains(out, "admin_password secret value changed") {
		t.Errorf("missing secret annotation:\n%s", out)
	}
}
