package cli

import (
	"errors"
	"fmt"

	"cinderapi/internal/resolver"
	"cinderapi/internal/validator"
)

// loadParameters resolves parameters from the file (flag, then
// CINDERAPI_PARAMS) and the environment. It returns the file path used.
func (a *app) loadParameters(path string) (resolver.ParameterSet, string, error) {
	if path == "" {
		path, _ = lookupEnv(a.environ, EnvParams)
	}

	var fileValues map[string]any
	if path != "" {
		values, err := resolver.LoadFile(path)
		if err != nil {
			return resolver.ParameterSet{}, path, &exitError{
				code: ExitParamsUnreadable,
				err:  fmt.Errorf("cannot read parameters: %w", err),
			}
		}
		fileValues = values
	}

	ps := resolver.Resolve(a.schema, fileValues, a.environ)
	for _, name := range ps.Unknown {
		a.logger.Warn("ignoring unknown parameter", "name", name, "file", path)
	}

	fromEnv := 0
	for _, rv := range ps.Values {
		if rv.Source == resolver.SourceEnv {
			fromEnv++
		}
	}
	a.logger.Debug("resolved parameters", "file", path, "from_env", fromEnv)

	return ps, path, nil
}

// reportValidation prints a validation failure and converts it to the
// validation exit code. Other errors pass through.
func (a *app) reportValidation(err error) error {
	var verr *validator.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	if a.ci {
		fmt.Fprintf(a.stderr, "::error title=cinderapi::%s\n", verr.Error())
		fmt.Fprintln(a.stderr, "\n❌ Validation failed")
	} else {
		fmt.Fprintln(a.stderr, verr.Error())
	}
	a.logger.Debug("validation failed", "kind", string(verr.Kind), "field", verr.Field)
	return &exitError{code: ExitValidation, err: verr, reported: true}
}
