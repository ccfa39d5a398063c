package validator

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"cinderapi/internal/resolver"
	"cinderapi/internal/schema"
)

// Params is the validated view of a ParameterSet: typed values, with
// defaults substituted for anything left unset.
type Params struct {
	values map[string]any
	set    map[string]bool
}

// IsSet reports whether name was explicitly supplied. A parameter left to
// its default is not set, even when the default is non-empty.
func (p Params) IsSet(name string) bool {
	return p.set[name]
}

// String returns the effective string value of name, or "".
func (p Params) String(name string) string {
	s, _ := p.values[name].(string)
	return s
}

// Bool returns the effective bool value of name, or false.
func (p Params) Bool(name string) bool {
	b, _ := p.values[name].(bool)
	return b
}

// Int returns the effective int value of name, or 0.
func (p Params) Int(name string) int {
	i, _ := p.values[name].(int)
	return i
}

// Map returns the effective map value of name, or nil.
func (p Params) Map(name string) map[string]any {
	m, _ := p.values[name].(map[string]any)
	return m
}

// Validate checks every declared parameter against its type and constraint,
// in declaration order, and stops at the first violation. The input is not
// modified. On success the returned Params holds a typed value for every
// supplied parameter and the default for every other one.
func Validate(s schema.Schema, ps resolver.ParameterSet) (Params, error) {
	params := Params{
		values: make(map[string]any, len(s.Order)),
		set:    make(map[string]bool, len(s.Order)),
	}

	for _, name := range s.Order {
		decl := s.Params[name]
		rv, _ := ps.Get(name)

		if !rv.Present {
			if decl.Required {
				return Params{}, &ValidationError{
					Kind:   KindMissingRequired,
					Field:  name,
					EnvVar: resolver.EnvVarFor(name),
				}
			}
			params.values[name] = copyDefault(decl.Default)
			continue
		}

		value, err := coerce(decl, rv.Value)
		if err != nil {
			return Params{}, err
		}

		if err := checkConstraint(decl, value); err != nil {
			return Params{}, err
		}

		params.values[name] = value
		params.set[name] = true
	}

	return params, nil
}

// coerce converts a raw value to the declared type. Strings are accepted for
// bool and int so values can come from the environment.
func coerce(decl schema.Param, raw any) (any, error) {
	mismatch := &ValidationError{
		Kind:    KindTypeMismatch,
		Field:   decl.Name,
		EnvVar:  resolver.EnvVarFor(decl.Name),
		Value:   display(decl, raw),
		Pattern: string(decl.Type),
	}

	switch decl.Type {
	case schema.TypeString, schema.TypeEnum:
		if s, ok := raw.(string); ok {
			return s, nil
		}

	case schema.TypeBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b, nil
			}
		}

	case schema.TypeInt:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			if v >= math.MinInt && v <= math.MaxInt {
				return int(v), nil
			}
		case uint64:
			if v <= math.MaxInt {
				return int(v), nil
			}
		case float64:
			if v == math.Trunc(v) && v >= math.MinInt && v < math.MaxInt {
				return int(v), nil
			}
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return i, nil
			}
		}

	case schema.TypeMap:
		switch v := raw.(type) {
		case map[string]any:
			return v, nil
		case map[any]any:
			return stringKeys(v), nil
		case string:
			if m, ok := decodeMap(v); ok {
				return m, nil
			}
		}
	}

	return nil, mismatch
}

// checkConstraint applies the declared constraint to a typed value
func checkConstraint(decl schema.Param, value any) error {
	c := decl.Constraint
	fail := func(pattern string) error {
		return &ValidationError{
			Kind:    KindPatternMismatch,
			Field:   decl.Name,
			EnvVar:  resolver.EnvVarFor(decl.Name),
			Value:   display(decl, value),
			Pattern: pattern,
		}
	}

	switch c.Kind {
	case schema.ConstraintRegex:
		s, _ := value.(string)
		if !matchAnchored(c.Pattern, s) {
			return fail(c.Pattern)
		}

	case schema.ConstraintEnum:
		s, _ := value.(string)
		if !isValidEnumValue(s, c.Values) {
			return fail("one of: " + strings.Join(c.Values, ", "))
		}

	case schema.ConstraintRange:
		i, _ := value.(int)
		if i < c.Min || i > c.Max {
			return fail(fmt.Sprintf("range [%d, %d]", c.Min, c.Max))
		}

	case schema.ConstraintNonEmptyIfPresent:
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return fail("a non-empty string")
		}
	}

	return nil
}

// matchAnchored matches the whole value against pattern. The pattern is
// wrapped so that a partial match never passes, whether or not the declared
// pattern carries its own anchors.
func matchAnchored(pattern, value string) bool {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return false
	}
	return re.MatchString(value)
}

// isValidEnumValue checks if a value is in the allowed list
func isValidEnumValue(value string, allowed []string) bool {
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}

// display renders a value for an error message
func display(decl schema.Param, value any) string {
	if decl.Sensitive {
		return redacted
	}
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "map[" + strings.Join(keys, " ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

// copyDefault returns a default that callers may not alias. Only map
// defaults are mutable.
func copyDefault(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = val
	}
	return out
}

// decodeMap reads a map given inline, in YAML flow or JSON syntax, as
// environment variables supply it. A blank string is the empty map.
func decodeMap(s string) (map[string]any, bool) {
	if strings.TrimSpace(s) == "" {
		return map[string]any{}, true
	}
	var m map[string]any
	if err := yaml.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// stringKeys converts a generic map, as produced by some decoders, to one
// keyed by strings.
func stringKeys(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[fmt.Sprint(k)] = v
	}
	return out
}
