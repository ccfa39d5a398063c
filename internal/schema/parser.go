package schema

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// paramEntry represents a single parameter in the YAML dump
type paramEntry struct {
	Name        string        `yaml:"name"`
	Type        string        `yaml:"type"`
	Required    bool          `yaml:"required,omitempty"`
	Sensitive   bool          `yaml:"sensitive,omitempty"`
	Default     *defaultValue `yaml:"default,omitempty"`
	Constraint  string        `yaml:"constraint"`
	Pattern     string        `yaml:"pattern,omitempty"`
	Values      []string      `yaml:"values,omitempty"`
	Min         *int          `yaml:"min,omitempty"`
	Max         *int          `yaml:"max,omitempty"`
	Description string        `yaml:"description,omitempty"`
}

// defaultValue wraps a default so that false, 0 and "" are still dumped; only a
// nil *defaultValue is omitted.
type defaultValue struct {
	v any
}

func (d defaultValue) MarshalYAML() (any, error) {
	return d.v, nil
}

func (d *defaultValue) UnmarshalYAML(n *yaml.Node) error {
	return n.Decode(&d.v)
}

// schemaFile represents the YAML document structure
type schemaFile struct {
	Parameters []paramEntry `yaml:"parameters"`
}

// ToYAML serializes the catalog to YAML in declaration order.
func (s Schema) ToYAML() ([]byte, error) {
	sf := schemaFile{Parameters: make([]paramEntry, 0, len(s.Order))}

	for _, name := range s.Order {
		p := s.Params[name]
		entry := paramEntry{
			Name:        p.Name,
			Type:        string(p.Type),
			Required:    p.Required,
			Sensitive:   p.Sensitive,
			Constraint:  string(p.Constraint.Kind),
			Pattern:     p.Constraint.Pattern,
			Values:      p.Constraint.Values,
			Description: p.Description,
		}
		if p.Constraint.Kind == ConstraintRange {
			lo, hi := p.Constraint.Min, p.Constraint.Max
			entry.Min, entry.Max = &lo, &hi
		}
		if p.Default != nil && !p.Sensitive {
			entry.Default = &defaultValue{v: p.Default}
		}
		sf.Parameters = append(sf.Parameters, entry)
	}

	return yaml.Marshal(&sf)
}

// Check verifies the catalog is internally consistent: every name in Order
// is declared, regex patterns compile, enums carry values and ranges are
// ordered.
func (s Schema) Check() error {
	if len(s.Order) != len(s.Params) {
		return fmt.Errorf("schema declares %d parameters but orders %d", len(s.Params), len(s.Order))
	}

	for _, name := range s.Order {
		p, ok := s.Params[name]
		if !ok {
			return fmt.Errorf("parameter '%s' is ordered but not declared", name)
		}

		switch p.Type {
		case TypeString, TypeBool, TypeInt, TypeEnum, TypeMap:
		default:
			return fmt.Errorf("unknown type '%s' for parameter '%s'", p.Type, name)
		}

		switch p.Constraint.Kind {
		case ConstraintRegex:
			if _, err := regexp.Compile(p.Constraint.Pattern); err != nil {
				return fmt.Errorf("parameter '%s': invalid pattern: %w", name, err)
			}
		case ConstraintEnum:
			if len(p.Constraint.Values) == 0 {
				return fmt.Errorf("enum constraint requires values for parameter '%s'", name)
			}
		case ConstraintRange:
			if p.Constraint.Min > p.Constraint.Max {
				return fmt.Errorf("parameter '%s': range min %d exceeds max %d", name, p.Constraint.Min, p.Constraint.Max)
			}
		}

		if p.Type == TypeEnum && p.Constraint.Kind != ConstraintEnum {
			return fmt.Errorf("enum type requires an enum constraint for parameter '%s'", name)
		}
	}

	return nil
}
