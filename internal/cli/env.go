package cli

import "strings"

// lookupEnv returns the value of name in environ. The last assignment wins,
// as with os.Getenv.
func lookupEnv(environ []string, name string) (string, bool) {
	prefix := name + "="
	value, found := "", false
	for _, env := range environ {
		if strings.HasPrefix(env, prefix) {
			value, found = strings.TrimPrefix(env, prefix), true
		}
	}
	return value, found
}

func getEnvBool(environ []string, name string) bool {
	val, ok := lookupEnv(environ, name)
	if !ok {
		return false
	}
	val = strings.ToLower(val)
	return val == "true" || val == "1" || val == "yes"
}
