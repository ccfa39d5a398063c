package schema

// ParamType represents the type of a parameter value
type ParamType string

const (
	TypeString ParamType = "string"
	TypeBool   ParamType = "bool"
	TypeInt    ParamType = "int"
	TypeEnum   ParamType = "enum"
	TypeMap    ParamType = "map"
)

// ConstraintKind selects how a present value is checked
type ConstraintKind string

const (
	Unconstrained               ConstraintKind = "unconstrained"
	ConstraintRegex             ConstraintKind = "regex"
	ConstraintEnum              ConstraintKind = "enum"
	ConstraintRange             ConstraintKind = "range"
	ConstraintNonEmptyIfPresent ConstraintKind = "non_empty_if_present"
)

// Constraint describes the domain of a parameter.
// Only the fields relevant to Kind are set.
type Constraint struct {
	Kind    ConstraintKind
	Pattern string   // Regex, anchored at both ends when evaluated
	Values  []string // Enum
	Min     int      // Range, inclusive
	Max     int      // Range, inclusive
}

// Param represents a single declared input parameter
type Param struct {
	Name        string    // e.g., "bind_host"
	Type        ParamType // string, bool, int, enum or map
	Default     any       // nil means the parameter is unset unless supplied
	Required    bool
	Sensitive   bool // value must never be echoed back in clear text
	Constraint  Constraint
	Description string
}

// Schema represents the full parameter catalog.
// Order holds parameter names in declaration order; validation walks it
// so the first violation reported is stable across runs.
type Schema struct {
	Params map[string]Param
	Order  []string
}
