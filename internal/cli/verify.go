package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cinderapi/internal/artifact"
	"cinderapi/internal/runner"
)

func (a *app) verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <plan-file>",
		Short: "Run the validation command of a compiled plan",
		Long: `verify loads a plan written by "compile --output" and runs its validation
command through /bin/sh with the plan's retry policy. It is meant to be
run after the plan has been applied.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVerify(cmd, args[0], a.newRunner(a.logger))
		},
	}
}

func (a *app) runVerify(cmd *cobra.Command, path string, r *runner.Runner) error {
	art, err := artifact.LoadFromFile(path)
	if err != nil {
		return err
	}

	if art.Plan.Validation == nil {
		fmt.Fprintln(a.stdout, "No validation command in plan")
		return nil
	}
	if _, err := art.Plan.Ordered(); err != nil {
		return fmt.Errorf("plan cannot be ordered: %w", err)
	}

	v := *art.Plan.Validation
	a.logger.Info("running validation", "validation", v)

	err = r.Run(cmd.Context(), v)
	var failure *runner.ExternalCommandFailure
	if errors.As(err, &failure) {
		fmt.Fprintln(a.stderr, failure.Error())
		if failure.Output != "" {
			fmt.Fprintln(a.stderr, failure.Output)
		}
		switch {
		case runner.IsNotFound(failure.Err):
			fmt.Fprintf(a.stderr, "hint: command not found in %v\n", v.SearchPath)
		case runner.IsPermissionDenied(failure.Err):
			fmt.Fprintln(a.stderr, "hint: command is not executable")
		}
		return &exitError{code: ExitValidationCommand, err: failure, reported: true}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "✓ %s passed\n", v.Name)
	return nil
}
