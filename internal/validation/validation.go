// Package validation builds the post-convergence check of the volume API.
package validation

import (
	"github.com/kballard/go-shellquote"

	"cinderapi/internal/directive"
	"cinderapi/internal/service"
)

// Name identifies the validation step in a plan.
const Name = "execute " + service.Name + " validation"

// Fixed retry policy.
const (
	Retries              = 10
	RetryIntervalSeconds = 2
)

// SearchPath is used to resolve the command's executable.
var SearchPath = []string{"/usr/bin", "/bin", "/usr/sbin", "/sbin"}

// Credentials are substituted into the default command.
type Credentials struct {
	AuthURL  string
	Tenant   string
	User     string
	Password string
}

// DefaultCommand lists volumes through the service's own client. Each value
// is shell-quoted so it reaches the client as a single argument.
func DefaultCommand(c Credentials) string {
	return shellquote.Join(
		"cinder",
		"--os-auth-url", c.AuthURL,
		"--os-tenant-name", c.Tenant,
		"--os-username", c.User,
		"--os-password", c.Password,
		"list",
	)
}

// OverrideCommand returns the command supplied under
// overrides[<service>]["command"], if any.
func OverrideCommand(overrides map[string]any) (string, bool) {
	entry, ok := overrides[service.Name]
	if !ok {
		return "", false
	}

	var command any
	switch e := entry.(type) {
	case map[string]any:
		command = e["command"]
	case map[any]any:
		command = e["command"]
	default:
		return "", false
	}

	s, ok := command.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Build returns the validation directive, or nil when validation is off or
// there is no running service to check: svc is nil when the service is not
// managed. An override command replaces the default verbatim; the retry
// policy is the same either way. The directive depends on every ID in after.
func Build(validate bool, svc *directive.ServiceState, overrides map[string]any, creds Credentials, after []string) *directive.Validation {
	if !validate || svc == nil || !svc.Enabled {
		return nil
	}

	v := &directive.Validation{
		Name:                 Name,
		Retries:              Retries,
		RetryIntervalSeconds: RetryIntervalSeconds,
		SearchPath:           append([]string(nil), SearchPath...),
	}
	if len(after) > 0 {
		v.DependsOn = append([]string(nil), after...)
	}

	if cmd, ok := OverrideCommand(overrides); ok {
		v.Command = cmd
		return v
	}

	v.Command = DefaultCommand(creds)
	v.Sensitive = true
	return v
}
