package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"cinderapi/internal/directive"
)

// PlanArtifact is a compiled plan tagged with the hash of its content
type PlanArtifact struct {
	PlanVersion string         `json:"planVersion" yaml:"planVersion"` // sha256:hex
	Plan        directive.Plan `json:"plan" yaml:"plan"`
}

// GenerateArtifact wraps a compiled plan with its version.
func GenerateArtifact(plan directive.Plan) (PlanArtifact, error) {
	version, err := ComputePlanVersion(plan)
	if err != nil {
		return PlanArtifact{}, err
	}
	return PlanArtifact{PlanVersion: version, Plan: plan}, nil
}

// ComputePlanVersion computes the SHA-256 hash of the plan in canonical form.
// Returns the hash prefixed with "sha256:".
func ComputePlanVersion(plan directive.Plan) (string, error) {
	canonical, err := canonicalPlanJSON(plan)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(hash[:]), nil
}

// Verify recomputes the version and reports a mismatch, e.g. after the plan
// file was edited by hand.
func (a PlanArtifact) Verify() error {
	version, err := ComputePlanVersion(a.Plan)
	if err != nil {
		return err
	}
	if version != a.PlanVersion {
		return fmt.Errorf("plan version mismatch: recorded %s, computed %s", a.PlanVersion, version)
	}
	return nil
}

// ToCanonicalJSON serializes the artifact without whitespace. Field order
// is fixed by the struct definitions and a plan holds no maps, so equal
// plans always serialize to equal bytes.
func (a PlanArtifact) ToCanonicalJSON() ([]byte, error) {
	return json.Marshal(a)
}

// ToJSON serializes the artifact to pretty-printed JSON for human readability.
func (a PlanArtifact) ToJSON() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// ToYAML serializes the artifact to YAML.
func (a PlanArtifact) ToYAML() ([]byte, error) {
	return yaml.Marshal(a)
}

func canonicalPlanJSON(plan directive.Plan) ([]byte, error) {
	return json.Marshal(plan)
}
