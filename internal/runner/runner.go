// Package runner executes external processes and captures their output in full.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result is the captured outcome of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner starts a process and waits for it. A non-zero exit is reported through
// Result.ExitCode; the error is reserved for processes that could not run at all.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec in Dir (the current directory when empty).
type ExecRunner struct {
	Dir string
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("run %s: %w", name, err)
}
