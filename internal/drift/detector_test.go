package drift

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"cinderapi/internal/baseline"
)

// genStates generates random directive state maps
func genStates() gopter.Gen {
	return gen.MapOf(gen.Identifier(), gen.AlphaString()).Map(func(m map[string]string) map[string]string {
		if m == nil {
			return map[string]string{}
		}
		return m
	})
}

func base(version string, states map[string]string) baseline.Baseline {
	return baseline.Baseline{
		Name:      "prod",
		Snapshot:  baseline.Snapshot{PlanVersion: version, States: states},
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNoDriftWhenVersionsMatch(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("no drift when plan versions match", prop.ForAll(
		func(states map[string]string) bool {
			b := base("sha256:same", states)
			report := Detect(b, baseline.Snapshot{PlanVersion: "sha256:same", States: states})
			return !report.HasDrift && len(report.Changes) == 0
		},
		genStates(),
	))

	properties.TestingRun(t)
}

func TestDetect_Changes(t *testing.T) {
	b := base("sha256:old", map[string]string{
		"main:DEFAULT/osapi_volume_listen":      "present=0.0.0.0",
		"main:DEFAULT/default_volume_type":      "absent",
		"auth-filter:filter:ratelimit/limits":   "present=x",
		"service:cinder-api":                    "running",
		"exec:cinder-manage db_sync":            "refresh_only",
		"auth-filter:filter:authtoken/auth_uri": "present=http://localhost:5000/",
	})
	current := baseline.Snapshot{
		PlanVersion: "sha256:new",
		States: map[string]string{
			"main:DEFAULT/osapi_volume_listen":      "present=192.168.1.3",
			"main:DEFAULT/default_volume_type":      "absent",
			"main:DEFAULT/os_region_name":           "present=MyRegion",
			"service:cinder-api":                    "stopped",
			"auth-filter:filter:authtoken/auth_uri": "present=http://localhost:5000/",
		},
	}

	report := Detect(b, current)
	if !report.HasDrift {
		t.Fatal("expected drift")
	}

	want := []DirectiveDrift{
		{ID: "auth-filter:filter:ratelimit/limits", Type: DriftRemoved, BaselineState: "present=x"},
		{ID: "exec:cinder-manage db_sync", Type: DriftRemoved, BaselineState: "refresh_only"},
		{ID: "main:DEFAULT/os_region_name", Type: DriftAdded, CurrentState: "present=MyRegion"},
		{ID: "main:DEFAULT/osapi_volume_listen", Type: DriftChanged, BaselineState: "present=0.0.0.0", CurrentState: "present=192.168.1.3"},
		{ID: "service:cinder-api", Type: DriftChanged, BaselineState: "running", CurrentState: "stopped"},
	}
	if diff := cmp.Diff(want, report.Changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestDetect_SecretChange(t *testing.T) {
	id := "auth-filter:filter:authtoken/admin_password"
	states := map[string]string{id: "present=********"}

	b := base("sha256:old", states)
	b.SecretDigests = map[string]string{id: "aaaa"}
	current := baseline.Snapshot{
		PlanVersion:   "sha256:new",
		States:        states,
		SecretDigests: map[string]string{id: "bbbb"},
	}

	report := Detect(b, current)
	want := []DirectiveDrift{
		{ID: id, Type: DriftChanged, BaselineState: "present=********", CurrentState: "present=********", Secret: true},
	}
	if diff := cmp.Diff(want, report.Changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestDriftReportMetadata(t *testing.T) {
	b := base("sha256:old", map[string]string{})
	report := Detect(b, baseline.Snapshot{PlanVersion: "sha256:new"})

	if report.BaselineName != "prod" {
		t.Errorf("expected baseline name prod, got %s", report.BaselineName)
	}
	if report.BaselineVersion != "sha256:old" || report.CurrentVersion != "sha256:new" {
		t.Errorf("unexpected versions %s / %s", report.BaselineVersion, report.CurrentVersion)
	}
	if !report.BaselineTime.Equal(b.Timestamp) {
		t.Errorf("unexpected baseline time %v", report.BaselineTime)
	}
	if report.HasDrift {
		t.Error("differing versions with no state differences is not drift")
	}
}

func TestDetect_Symmetric_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("swapping sides swaps added and removed", prop.ForAll(
		func(left, right map[string]string) bool {
			forward := Detect(base("sha256:l", left), baseline.Snapshot{PlanVersion: "sha256:r", States: right})
			backward := Detect(base("sha256:r", right), baseline.Snapshot{PlanVersion: "sha256:l", States: left})
			if len(forward.Changes) != len(backward.Changes) {
				return false
			}
			for i, f := range forward.Changes {
				bk := backward.Changes[i]
				if f.ID != bk.ID {
					return false
				}
				switch f.Type {
				case DriftAdded:
					if bk.Type != DriftRemoved {
						return false
					}
				case DriftRemoved:
					if bk.Type != DriftAdded {
						return false
					}
				case DriftChanged:
					if bk.Type != DriftChanged || bk.BaselineState != f.CurrentState {
						return false
					}
				}
			}
			return true
		},
		genStates(),
		genStates(),
	))

	properties.TestingRun(t)
}
