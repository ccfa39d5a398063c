// Package runner executes a plan's validation command with the retry policy
// the plan declares. It is the consumer side of the validation directive and
// is never called by the compiler.
package runner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"strings"
)

// Executor runs one attempt of a command.
type Executor interface {
	// Run executes command with PATH set to searchPath and returns its
	// combined output.
	Run(ctx context.Context, command string, searchPath []string) ([]byte, error)
}

// ShellExecutor runs commands through /bin/sh -c, inheriting the current
// environment except PATH.
type ShellExecutor struct {
	Shell   string   // defaults to /bin/sh
	Environ []string // defaults to os.Environ()
}

func (e ShellExecutor) Run(ctx context.Context, command string, searchPath []string) ([]byte, error) {
	shell := e.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	environ := e.Environ
	if environ == nil {
		environ = os.Environ()
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Env = withPath(environ, searchPath)
	return cmd.CombinedOutput()
}

// withPath replaces PATH in environ with the joined search path.
func withPath(environ, searchPath []string) []string {
	env := make([]string, 0, len(environ)+1)
	for _, kv := range environ {
		if strings.HasPrefix(kv, "PATH=") {
			continue
		}
		env = append(env, kv)
	}
	if len(searchPath) > 0 {
		env = append(env, "PATH="+strings.Join(searchPath, ":"))
	}
	return env
}

// IsNotFound checks if the error indicates the command was not found.
// The shell reports this with exit status 127.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode() == 127
	}
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, exec.ErrNotFound)
}

// IsPermissionDenied checks if the error indicates permission was denied.
// The shell reports this with exit status 126.
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode() == 126
	}
	return errors.Is(err, fs.ErrPermission)
}
