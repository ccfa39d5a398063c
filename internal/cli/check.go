package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cinderapi/internal/validator"
)

type checkResult struct {
	Valid       bool   `json:"valid"`
	PlanVersion string `json:"planVersion,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Field       string `json:"field,omitempty"`
	Message     string `json:"message,omitempty"`
}

func (a *app) checkCommand() *cobra.Command {
	var (
		params         string
		processorCount int
		jsonOutput     bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate parameters without printing the plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonOutput {
				return a.runCheckJSON(params, processorCount)
			}
			if _, _, err := a.compilePlan(params, processorCount); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "✓ Parameters valid")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&params, "params", "p", "", "parameter file, YAML or TOML (env "+EnvParams+")")
	flags.IntVar(&processorCount, "processor-count", a.facts.ProcessorCount, "processor count used when service_workers is unset")
	flags.BoolVar(&jsonOutput, "json", false, "print the result as JSON")

	return cmd
}

// runCheckJSON reports the result on stdout instead of stderr, so only the
// exit code distinguishes failure.
func (a *app) runCheckJSON(params string, processorCount int) error {
	quiet := *a
	quiet.stderr = io.Discard

	art, _, err := quiet.compilePlan(params, processorCount)

	var verr *validator.ValidationError
	if err != nil && !errors.As(err, &verr) {
		return err
	}

	result := checkResult{Valid: err == nil, PlanVersion: art.PlanVersion}
	if verr != nil {
		result.Kind, result.Field, result.Message = string(verr.Kind), verr.Field, verr.Error()
	}

	data, jerr := json.Marshal(result)
	if jerr != nil {
		return jerr
	}
	fmt.Fprintln(a.stdout, string(data))
	return err
}
