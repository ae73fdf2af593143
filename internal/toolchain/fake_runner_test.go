package toolchain

import (
	"context"
	"strings"

	"git.home.luguber.info/inful/hotbuild/internal/runner"
)

type call struct {
	name string
	args []string
}

// scriptedRunner returns canned results keyed by the first argument.
type scriptedRunner struct {
	results map[string]runner.Result
	err     error
	calls   []call
}

func (s *scriptedRunner) Run(_ context.Context, name string, args ...string) (runner.Result, error) {
	s.calls = append(s.calls, call{name: name, args: args})
	if s.err != nil {
		return runner.Result{}, s.err
	}
	key := ""
	if len(args) > 0 {
		key = args[0]
	}
	return s.results[key], nil
}

func (c call) String() string {
	return c.name + " " + strings.Join(c.args, " ")
}
