// Package directive defines the declarative output of a compilation: config
// directives for the two settings stores, the service lifecycle directive,
// the migration gate and the validation command, each tagged with the IDs it
// depends on.
package directive

import (
	"log/slog"
	"strings"
)

// Namespace identifies one of the two configuration stores
type Namespace string

const (
	// NamespaceMain is the primary settings file.
	NamespaceMain Namespace = "main"
	// NamespaceAuthFilter is the authentication filter settings file.
	NamespaceAuthFilter Namespace = "auth-filter"
)

// Ensure is the desired state of a single key
type Ensure string

const (
	// EnsurePresent: the key must exist with Value.
	EnsurePresent Ensure = "present"
	// EnsureAbsent: the key must be removed if it exists. This is not the
	// same as leaving the key untouched, which is expressed by emitting no
	// directive at all.
	EnsureAbsent Ensure = "absent"
)

// Redacted replaces sensitive values wherever a directive is displayed
const Redacted = "********"

// ConfigDirective is the desired state of one (section, key) in a namespace
type ConfigDirective struct {
	Namespace Namespace `json:"namespace" yaml:"namespace"`
	Section   string    `json:"section" yaml:"section"`
	Key       string    `json:"key" yaml:"key"`
	Ensure    Ensure    `json:"ensure" yaml:"ensure"`
	Value     string    `json:"value,omitempty" yaml:"value,omitempty"`
	Sensitive bool      `json:"sensitive,omitempty" yaml:"sensitive,omitempty"`
	DependsOn []string  `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// Present builds a directive that sets section/key to value.
func Present(ns Namespace, section, key, value string) ConfigDirective {
	return ConfigDirective{Namespace: ns, Section: section, Key: key, Ensure: EnsurePresent, Value: value}
}

// Absent builds a directive that removes section/key.
func Absent(ns Namespace, section, key string) ConfigDirective {
	return ConfigDirective{Namespace: ns, Section: section, Key: key, Ensure: EnsureAbsent}
}

// Secret marks the directive's value as sensitive.
func (d ConfigDirective) Secret() ConfigDirective {
	d.Sensitive = true
	return d
}

// Path returns the "section/key" address used by the settings stores.
func (d ConfigDirective) Path() string {
	return d.Section + "/" + d.Key
}

// ID uniquely identifies the directive within a plan,
// e.g. "main:DEFAULT/osapi_volume_listen".
func (d ConfigDirective) ID() string {
	return ConfigID(d.Namespace, d.Section, d.Key)
}

// ConfigID builds the ID of the directive addressing ns/section/key.
func ConfigID(ns Namespace, section, key string) string {
	return string(ns) + ":" + section + "/" + key
}

// State renders the desired state for display, e.g. "present=0.0.0.0" or
// "absent". Sensitive values are redacted.
func (d ConfigDirective) State() string {
	if d.Ensure == EnsureAbsent {
		return string(EnsureAbsent)
	}
	return string(EnsurePresent) + "=" + d.displayValue()
}

func (d ConfigDirective) displayValue() string {
	if d.Sensitive {
		return Redacted
	}
	return d.Value
}

// String implements fmt.Stringer with sensitive values redacted.
func (d ConfigDirective) String() string {
	return d.ID() + " " + d.State()
}

// LogValue implements slog.LogValuer so a directive never logs a secret.
func (d ConfigDirective) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("namespace", string(d.Namespace)),
		slog.String("path", d.Path()),
		slog.String("ensure", string(d.Ensure)),
	}
	if d.Ensure == EnsurePresent {
		attrs = append(attrs, slog.String("value", d.displayValue()))
	}
	return slog.GroupValue(attrs...)
}

// ServiceState is the desired lifecycle of the managed service.
// It is only ever emitted for a managed service.
type ServiceState struct {
	Name      string   `json:"name" yaml:"name"`
	Enabled   bool     `json:"enabled" yaml:"enabled"`
	Managed   bool     `json:"managed" yaml:"managed"`
	HasStatus bool     `json:"has_status" yaml:"has_status"`
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// ID returns "service:<name>".
func (s ServiceState) ID() string {
	return "service:" + s.Name
}

// Ensure returns "running" or "stopped".
func (s ServiceState) Ensure() string {
	if s.Enabled {
		return "running"
	}
	return "stopped"
}

// Migration is the one-time schema migration owned by an external
// collaborator. It is only emitted while the service is enabled.
type Migration struct {
	Command     string   `json:"command" yaml:"command"`
	RefreshOnly bool     `json:"refresh_only" yaml:"refresh_only"`
	DependsOn   []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// ID returns "exec:<command>".
func (m Migration) ID() string {
	return "exec:" + m.Command
}

// Validation is the post-convergence check and the retry policy the
// consumer must apply to it.
type Validation struct {
	Name                 string   `json:"name" yaml:"name"`
	Command              string   `json:"command" yaml:"command"`
	Retries              int      `json:"retries" yaml:"retries"`
	RetryIntervalSeconds int      `json:"retry_interval_seconds" yaml:"retry_interval_seconds"`
	SearchPath           []string `json:"search_path" yaml:"search_path"`
	Sensitive            bool     `json:"sensitive,omitempty" yaml:"sensitive,omitempty"`
	DependsOn            []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// ID returns "exec:<name>".
func (v Validation) ID() string {
	return "exec:" + v.Name
}

// DisplayCommand returns the command, or only its program name when the
// command embeds secrets.
func (v Validation) DisplayCommand() string {
	if !v.Sensitive {
		return v.Command
	}
	program := v.Command
	if i := strings.IndexAny(program, " \t"); i >= 0 {
		program = program[:i]
	}
	return program + " " + Redacted
}

// LogValue implements slog.LogValuer.
func (v Validation) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", v.Name),
		slog.String("command", v.DisplayCommand()),
		slog.Int("retries", v.Retries),
		slog.Int("retry_interval_seconds", v.RetryIntervalSeconds),
	)
}
