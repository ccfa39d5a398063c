package resolver

import "strings"

// EnvPrefix is prepended to every parameter's environment variable name.
const EnvPrefix = "CINDER_"

// EnvVarFor converts a parameter name to its environment variable name.
// e.g., "bind_host" -> "CINDER_BIND_HOST", "auth.uri" -> "CINDER_AUTH_URI"
func EnvVarFor(name string) string {
	if name == "" {
		return ""
	}
	r := strings.NewReplacer(".", "_", "-", "_")
	return EnvPrefix + strings.ToUpper(r.Replace(name))
}
