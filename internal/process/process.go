// Package process answers whether the game process is currently running.
package process

import (
	"context"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/hotbuild/internal/logfields"
	"git.home.luguber.info/inful/hotbuild/internal/runner"
)

// Checker reports whether a process with the given image name is active.
// Implementations never fail: an unanswerable query means "not running".
type Checker interface {
	IsRunning(ctx context.Context, name string) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, name string) bool

// IsRunning implements Checker.
func (f CheckerFunc) IsRunning(ctx context.Context, name string) bool { return f(ctx, name) }

// TasklistChecker queries the Windows tasklist utility.
type TasklistChecker struct {
	Runner runner.Runner
}

// NewTasklistChecker returns a checker backed by the real tasklist binary.
func NewTasklistChecker() *TasklistChecker {
	return &TasklistChecker{Runner: runner.ExecRunner{}}
}

// IsRunning implements Checker. The image name is matched case-insensitively
// anywhere in the tasklist output.
func (c *TasklistChecker) IsRunning(ctx context.Context, name string) bool {
	res, err := c.Runner.Run(ctx, "tasklist", "/NH", "/FI", "IMAGENAME eq "+name)
	if err != nil {
		slog.Debug("Process query failed, assuming not running", logfields.Process(name), logfields.Error(err))
		return false
	}
	if res.ExitCode != 0 {
		slog.Debug("Process query exited non-zero, assuming not running",
			logfields.Process(name), logfields.ExitCode(res.ExitCode))
		return false
	}
	return strings.Contains(strings.ToLower(string(res.Stdout)), strings.ToLower(name))
}
