package validator

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a ValidationError
type ErrorKind string

const (
	// KindPatternMismatch: a value failed its regex, enum, range or
	// non-empty constraint.
	KindPatternMismatch ErrorKind = "pattern_mismatch"
	// KindTypeMismatch: a value could not be read as the declared type.
	KindTypeMismatch ErrorKind = "type_mismatch"
	// KindMissingRequired: a required parameter was not supplied.
	KindMissingRequired ErrorKind = "missing_required"
	// KindConflictingDirective: two compiler rules targeted the same
	// (section, key). This is a compiler bug, never an input problem.
	KindConflictingDirective ErrorKind = "conflicting_directive"
)

// redacted replaces the value of sensitive parameters in errors
const redacted = "********"

// ValidationError represents the failure that aborted a compilation
type ValidationError struct {
	Kind    ErrorKind
	Field   string // The parameter name, or the namespace for conflicts
	EnvVar  string // The environment variable that can supply Field
	Value   string // The rejected value, redacted for sensitive parameters
	Pattern string // Description of the violated constraint
	Section string // Conflicts only
	Key     string // Conflicts only
}

func (e *ValidationError) Error() string {
	return FormatError(*e)
}

// FormatError formats a ValidationError into a human-readable error message.
func FormatError(err ValidationError) string {
	switch err.Kind {
	case KindMissingRequired:
		// Format: "{field}: required but {ENV_VAR} is not set"
		return fmt.Sprintf("%s: required but %s is not set", err.Field, err.EnvVar)
	case KindPatternMismatch:
		// Format: "{field}: "{value}" does not match {pattern}"
		return fmt.Sprintf("%s: %q does not match %s", err.Field, err.Value, err.Pattern)
	case KindTypeMismatch:
		return fmt.Sprintf("%s: %q is not a valid %s", err.Field, err.Value, err.Pattern)
	case KindConflictingDirective:
		return fmt.Sprintf("%s: conflicting directives for %s/%s", err.Field, err.Section, err.Key)
	}

	return fmt.Sprintf("%s: invalid value %q", err.Field, err.Value)
}

// IsKind reports whether err is a ValidationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind == kind
	}
	return false
}

// Conflict builds the error for two directives targeting the same key.
func Conflict(namespace, section, key string) *ValidationError {
	return &ValidationError{
		Kind:    KindConflictingDirective,
		Field:   namespace,
		Section: section,
		Key:     key,
	}
}
