package resolver

import (
	"sort"
	"strings"

	"cinderapi/internal/schema"
)

// Source records where a resolved value came from
type Source string

const (
	SourceNone Source = ""
	SourceFile Source = "file"
	SourceEnv  Source = "env"
)

// ResolvedValue represents a resolved parameter value
type ResolvedValue struct {
	Key     string // The parameter name (e.g., "bind_host")
	EnvVar  string // The environment variable name (e.g., "CINDER_BIND_HOST")
	Value   any    // The raw value; strings when read from the environment
	Present bool   // Whether the parameter was supplied at all
	Source  Source
}

// ParameterSet is the raw input of one compilation. It is built once per run
// and treated as read-only afterwards.
type ParameterSet struct {
	Values  map[string]ResolvedValue
	Unknown []string // input keys with no declaration, sorted
}

// Get returns the resolved value for name.
func (ps ParameterSet) Get(name string) (ResolvedValue, bool) {
	rv, ok := ps.Values[name]
	return rv, ok
}

// Resolve looks up every declared parameter, first in the environment and
// then in the parameter file values. An environment variable that is set,
// even to an empty string, wins over the file. A nil file value counts as
// unset, so "key: ~" is the same as leaving the key out.
func Resolve(s schema.Schema, fileValues map[string]any, environ []string) ParameterSet {
	envMap := parseEnviron(environ)

	ps := ParameterSet{Values: make(map[string]ResolvedValue, len(s.Order))}
	for _, name := range s.Order {
		envVar := EnvVarFor(name)
		rv := ResolvedValue{Key: name, EnvVar: envVar}

		if value, ok := envMap[envVar]; ok {
			rv.Value, rv.Present, rv.Source = value, true, SourceEnv
		} else if value, ok := fileValues[name]; ok && value != nil {
			rv.Value, rv.Present, rv.Source = value, true, SourceFile
		}

		ps.Values[name] = rv
	}

	for key := range fileValues {
		if _, declared := s.Params[key]; !declared {
			ps.Unknown = append(ps.Unknown, key)
		}
	}
	sort.Strings(ps.Unknown)

	return ps
}

// parseEnviron converts an environ slice (["KEY=VALUE", ...]) into a map.
// Handles edge cases like empty values ("KEY=") and values containing "=" ("KEY=a=b").
func parseEnviron(environ []string) map[string]string {
	result := make(map[string]string)
	for _, entry := range environ {
		// Split on first "=" only - values can contain "="
		idx := strings.Index(entry, "=")
		if idx == -1 {
			continue
		}
		result[entry[:idx]] = entry[idx+1:]
	}
	return result
}
