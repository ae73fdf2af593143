package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/hotbuild/internal/logfields"
	"git.home.luguber.info/inful/hotbuild/internal/runner"
)

// BuildRequest describes one `build` invocation.
type BuildRequest struct {
	Package string
	Out     string
	// Optional; omitted from the command line when empty.
	SymbolPath string
	BuildMode  string
	Defines    []string
}

// ExitError reports a compiler invocation that finished with a non-zero status.
type ExitError struct {
	Argv     []string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", strings.Join(e.Argv, " "), e.ExitCode)
}

// Compiler wraps the compiler CLI.
type Compiler struct {
	name   string
	flags  []string
	runner runner.Runner
}

// NewCompiler returns a Compiler invoking name with the shared validation flags.
func NewCompiler(name string, flags []string, r runner.Runner) *Compiler {
	if r == nil {
		r = runner.ExecRunner{}
	}
	return &Compiler{name: name, flags: flags, runner: r}
}

// Name returns the compiler executable.
func (c *Compiler) Name() string { return c.name }

// Args renders the argument list for a build request.
func (c *Compiler) Args(req BuildRequest) []string {
	args := make([]string, 0, 4+len(c.flags)+len(req.Defines))
	args = append(args, "build", req.Package)
	args = append(args, c.flags...)
	for _, d := range req.Defines {
		args = append(args, "-define:"+d)
	}
	if req.BuildMode != "" {
		args = append(args, "-build-mode:"+req.BuildMode)
	}
	args = append(args, "-out:"+filepath.ToSlash(req.Out))
	if req.SymbolPath != "" {
		args = append(args, "-pdb-name:"+filepath.ToSlash(req.SymbolPath))
	}
	return args
}

// Build runs the compiler and returns its captured output. A non-zero exit
// yields an *ExitError carrying the compiler's stderr.
func (c *Compiler) Build(ctx context.Context, req BuildRequest) (runner.Result, error) {
	args := c.Args(req)
	argv := append([]string{c.name}, args...)
	slog.Debug("Invoking compiler", logfields.Command(argv))

	res, err := c.runner.Run(ctx, c.name, args...)
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, &ExitError{Argv: argv, ExitCode: res.ExitCode, Stderr: string(res.Stderr)}
	}
	return res, nil
}

// Root asks the compiler for its installation root. The second return value is
// false when the compiler cannot be run, exits non-zero or prints nothing.
func (c *Compiler) Root(ctx context.Context) (string, bool) {
	res, err := c.runner.Run(ctx, c.name, "root")
	if err != nil {
		slog.Debug("Toolchain root query failed", logfields.Error(err))
		return "", false
	}
	if res.ExitCode != 0 {
		slog.Debug("Toolchain root query exited non-zero", logfields.ExitCode(res.ExitCode))
		return "", false
	}
	root := strings.TrimSpace(string(res.Stdout))
	return root, root != ""
}
