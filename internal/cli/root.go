// Package cli implements the cinderapi command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"cinderapi/internal/compiler"
	"cinderapi/internal/logging"
	"cinderapi/internal/runner"
	"cinderapi/internal/schema"
)

// Exit codes
const (
	ExitOK                = 0
	ExitError             = 1
	ExitValidation        = 2
	ExitParamsUnreadable  = 3
	ExitBaselineNotFound  = 4
	ExitValidationCommand = 5
)

// Environment variables read by the CLI. Parameters themselves are read
// from CINDER_<NAME>.
const (
	EnvParams    = "CINDERAPI_PARAMS"
	EnvLogLevel  = "CINDERAPI_LOG_LEVEL"
	EnvLogFormat = "CINDERAPI_LOG_FORMAT"
	EnvCI        = "CINDERAPI_CI"
	envGenericCI = "CI"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// exitError carries an exit code through cobra. Reported errors were
// already printed by the command.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// app is the state shared by all subcommands of one invocation
type app struct {
	environ []string
	facts   compiler.Facts
	schema  schema.Schema
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger

	logLevel  string
	logFormat string
	ci        bool

	newRunner func(*slog.Logger) *runner.Runner
}

// Execute runs the CLI with the given arguments (excluding the program
// name) and returns the process exit code. facts supplies the defaults of
// host-derived inputs such as the processor count.
func Execute(args, environ []string, facts compiler.Facts, stdout, stderr io.Writer) int {
	return newApp(environ, facts, stdout, stderr).execute(args)
}

func newApp(environ []string, facts compiler.Facts, stdout, stderr io.Writer) *app {
	return &app{
		environ:   environ,
		facts:     facts,
		schema:    schema.Default(),
		stdout:    stdout,
		stderr:    stderr,
		logger:    logging.Discard(),
		newRunner: runner.New,
	}
}

func (a *app) execute(args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil && !ee.reported {
			fmt.Fprintln(a.stderr, "Error:", ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(a.stderr, "Error:", err)
	return ExitError
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cinderapi",
		Short: "Compile volume API parameters into convergence directives",
		Long: `cinderapi validates the parameters of the volume API service and compiles
them into a plan for an external convergence applier:

  - settings for the main and auth-filter configuration stores
  - the service lifecycle and the migration gate
  - an optional post-convergence validation command

Parameters come from a YAML or TOML file and from CINDER_<NAME>
environment variables, which take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", defaultLogLevel, "log level: debug, info, warn or error (env "+EnvLogLevel+")")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", defaultLogFormat, "log format: text or json (env "+EnvLogFormat+")")
	root.PersistentFlags().BoolVar(&a.ci, "ci", false, "emit GitHub Actions annotations (env "+EnvCI+" or CI)")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		a.compileCommand(),
		a.checkCommand(),
		a.schemaCommand(),
		a.verifyCommand(),
		a.baselineCommand(),
	)
	return root
}

// setup applies environment fallbacks for flags left unset, builds the
// logger and checks the parameter catalog.
func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if !flags.Changed("log-level") {
		if v, ok := lookupEnv(a.environ, EnvLogLevel); ok {
			a.logLevel = v
		}
	}
	if !flags.Changed("log-format") {
		if v, ok := lookupEnv(a.environ, EnvLogFormat); ok {
			a.logFormat = v
		}
	}
	if !flags.Changed("ci") {
		a.ci = getEnvBool(a.environ, EnvCI) || getEnvBool(a.environ, envGenericCI)
	}

	logger, err := logging.New(a.logLevel, a.logFormat, a.stderr)
	if err != nil {
		return err
	}
	a.logger = logger

	if err := a.schema.Check(); err != nil {
		return fmt.Errorf("parameter catalog is inconsistent: %w", err)
	}
	return nil
}
