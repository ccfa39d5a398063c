package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"cinderapi/internal/directive"
)

// ExternalCommandFailure is returned once every attempt of a validation
// command has failed.
type ExternalCommandFailure struct {
	Name     string // Validation step name
	Command  string // Display form, redacted when the command embeds secrets
	Attempts int
	Err      error  // Error of the last attempt
	Output   string // Output of the last attempt
}

func (e *ExternalCommandFailure) Error() string {
	return fmt.Sprintf("%s: %s failed after %d attempt(s): %v", e.Name, e.Command, e.Attempts, e.Err)
}

func (e *ExternalCommandFailure) Unwrap() error {
	return e.Err
}

// Runner applies a validation directive's retry policy.
type Runner struct {
	Exec   Executor
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
}

// New returns a runner using the shell executor and a real clock.
func New(logger *slog.Logger) *Runner {
	return &Runner{Exec: ShellExecutor{}, Sleep: sleep, Logger: logger}
}

// Run executes v until it succeeds or its attempts are exhausted, waiting
// the retry interval between attempts. Cancelling ctx stops immediately.
func (r *Runner) Run(ctx context.Context, v directive.Validation) error {
	attempts := v.Retries
	if attempts < 1 {
		attempts = 1
	}
	interval := time.Duration(v.RetryIntervalSeconds) * time.Second
	logger := r.Logger.With("validation", v.Name, "program", program(v.Command))

	var (
		lastErr error
		lastOut []byte
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := r.Exec.Run(ctx, v.Command, v.SearchPath)
		if err == nil {
			logger.Info("validation passed", "attempt", attempt)
			return nil
		}
		lastErr, lastOut = err, out

		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", v.Name, ctx.Err())
		}

		logger.Warn("validation attempt failed", "attempt", attempt, "of", attempts, "error", err)

		if attempt < attempts {
			if err := r.Sleep(ctx, interval); err != nil {
				return fmt.Errorf("%s: %w", v.Name, err)
			}
		}
	}

	return &ExternalCommandFailure{
		Name:     v.Name,
		Command:  v.DisplayCommand(),
		Attempts: attempts,
		Err:      lastErr,
		Output:   strings.TrimSpace(string(lastOut)),
	}
}

// program returns the executable of a shell command for logging, so the
// arguments (which may hold credentials) never reach the log.
func program(command string) string {
	args, err := shellquote.Split(command)
	if err != nil || len(args) == 0 {
		return ""
	}
	return args[0]
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
