package baseline

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"cinderapi/internal/artifact"
)

// keySize is the length in bytes of the per-baseline digest key
const keySize = 32

// Snapshot is the comparable view of a compiled plan. States are redacted,
// so secrets are tracked through HMAC digests keyed by DigestKey. Digests
// are only comparable between snapshots sharing a key.
type Snapshot struct {
	PlanVersion   string            `json:"planVersion"`             // sha256:hex of the plan
	States        map[string]string `json:"states"`                  // directive ID -> display state
	DigestKey     string            `json:"digestKey,omitempty"`     // hex HMAC key
	SecretDigests map[string]string `json:"secretDigests,omitempty"` // directive ID -> HMAC-SHA256 of the secret
}

// Baseline represents a known-good plan for drift comparison.
type Baseline struct {
	Name string `json:"name"` // Baseline identifier
	Snapshot
	Source    string    `json:"source,omitempty"` // Parameter file the plan was compiled from
	Timestamp time.Time `json:"timestamp"`        // When baseline was created
}

// BaselineSummary is a lightweight view for listing baselines.
type BaselineSummary struct {
	Name        string    `json:"name"`
	PlanVersion string    `json:"planVersion"`
	Directives  int       `json:"directives"`
	Source      string    `json:"source,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Summary returns the listing view of b.
func (b Baseline) Summary() BaselineSummary {
	return BaselineSummary{
		Name:        b.Name,
		PlanVersion: b.PlanVersion,
		Directives:  len(b.States),
		Source:      b.Source,
		Timestamp:   b.Timestamp,
	}
}

// newDigestKey returns a random key for secret digests.
func newDigestKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("cannot generate digest key: %w", err)
	}
	return key, nil
}

// capture takes a snapshot of a plan artifact, digesting secrets with key.
func capture(a artifact.PlanArtifact, key []byte) Snapshot {
	s := Snapshot{
		PlanVersion: a.PlanVersion,
		States:      a.Plan.States(),
		DigestKey:   hex.EncodeToString(key),
	}

	for _, d := range a.Plan.Directives {
		if d.Sensitive {
			s.addDigest(key, d.ID(), d.Value)
		}
	}
	if v := a.Plan.Validation; v != nil && v.Sensitive {
		s.addDigest(key, v.ID(), v.Command)
	}
	return s
}

// New builds a named baseline from a plan artifact under a fresh digest key.
func New(name string, a artifact.PlanArtifact, source string, now time.Time) (Baseline, error) {
	key, err := newDigestKey()
	if err != nil {
		return Baseline{}, err
	}
	return Baseline{
		Name:      name,
		Snapshot:  capture(a, key),
		Source:    source,
		Timestamp: now.UTC(),
	}, nil
}

// Recapture snapshots a plan with the baseline's digest key, so secret
// digests of both sides can be compared.
func (b Baseline) Recapture(a artifact.PlanArtifact) (Snapshot, error) {
	key, err := hex.DecodeString(b.DigestKey)
	if err != nil {
		return Snapshot{}, fmt.Errorf("baseline %s: invalid digest key: %w", b.Name, err)
	}
	return capture(a, key), nil
}

func (s *Snapshot) addDigest(key []byte, id, secret string) {
	if s.SecretDigests == nil {
		s.SecretDigests = make(map[string]string)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(secret))
	s.SecretDigests[id] = hex.EncodeToString(mac.Sum(nil))
}
