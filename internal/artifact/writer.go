package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// WriteToFile writes the artifact to the specified path, creating parent
// directories if needed. A .yaml or .yml extension selects YAML, anything
// else JSON. The plan may carry secrets, so the file is private to the
// owner.
func (a PlanArtifact) WriteToFile(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = a.ToYAML()
	} else {
		data, err = a.ToJSON()
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// LoadFromFile reads an artifact written by WriteToFile and verifies its
// version.
func LoadFromFile(path string) (PlanArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlanArtifact{}, fmt.Errorf("failed to read plan: %w", err)
	}

	var a PlanArtifact
	if isYAML(path) {
		err = yaml.Unmarshal(data, &a)
	} else {
		err = json.Unmarshal(data, &a)
	}
	if err != nil {
		return PlanArtifact{}, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}

	if err := a.Verify(); err != nil {
		return PlanArtifact{}, err
	}
	return a, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
