package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hotbuild/internal/config"
	"git.home.luguber.info/inful/hotbuild/internal/history"
	"git.home.luguber.info/inful/hotbuild/internal/notify"
	"git.home.luguber.info/inful/hotbuild/internal/runner"
)

// compilerRunner fakes the compiler CLI. Builds succeed and write their -out
// file unless a package is listed in failures; "root" answers with root.
type compilerRunner struct {
	mu       sync.Mutex
	calls    [][]string
	root     string
	rootFail bool
	failures map[string]runner.Result
}

func (r *compilerRunner) Run(_ context.Context, name string, args ...string) (runner.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{name}, args...))

	switch {
	case len(args) == 1 && args[0] == "root":
		if r.rootFail {
			return runner.Result{ExitCode: 1, Stderr: []byte("unknown command")}, nil
		}
		return runner.Result{Stdout: []byte(r.root + "\n")}, nil
	case len(args) >= 2 && args[0] == "build":
		if res, ok := r.failures[args[1]]; ok {
			return res, nil
		}
		for _, a := range args {
			if out, ok := strings.CutPrefix(a, "-out:"); ok {
				if err := os.WriteFile(filepath.FromSlash(out), []byte("binary"), 0o600); err != nil {
					return runner.Result{}, err
				}
			}
		}
		return runner.Result{}, nil
	}
	return runner.Result{}, errors.New("unexpected command")
}

func (r *compilerRunner) commands() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

// builtPackages lists the packages passed to "build" in call order.
func (r *compilerRunner) builtPackages() []string {
	var pkgs []string
	for _, c := range r.commands() {
		if len(c) > 2 && c[1] == "build" {
			pkgs = append(pkgs, c[2])
		}
	}
	return pkgs
}

func (r *compilerRunner) rootQueries() int {
	n := 0
	for _, c := range r.commands() {
		if len(c) == 2 && c[1] == "root" {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	events []notify.BuildEvent
	err    error
}

func (f *fakeNotifier) Publish(_ context.Context, e notify.BuildEvent) error {
	f.events = append(f.events, e)
	return f.err
}

func (f *fakeNotifier) Close() error { return nil }

type failingJournal struct{ history.NopJournal }

func (failingJournal) Record(context.Context, history.Entry) error {
	return errors.New("disk full")
}

// project is a throwaway checkout with absolute bin/ and pdbs/ directories.
type project struct {
	dir string
	cfg *config.Config
}

func newProject(t *testing.T) *project {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Output.Directory = filepath.Join(dir, "bin")
	cfg.Symbols.Directory = filepath.Join(dir, "pdbs")
	return &project{dir: dir, cfg: cfg}
}

func (p *project) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(p.dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (p *project) path(rel string) string {
	return filepath.Join(p.dir, filepath.FromSlash(rel))
}

// toolchainRoot creates a fake compiler installation with the vendored dll.
func toolchainRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	vendored := filepath.Join(root, "vendor", "raylib", "windows", "raylib.dll")
	require.NoError(t, os.MkdirAll(filepath.Dir(vendored), 0o750))
	require.NoError(t, os.WriteFile(vendored, []byte("raylib"), 0o600))
	return root
}

func readCounter(t *testing.T, p *project) string {
	t.Helper()
	data, err := os.ReadFile(p.cfg.CounterPath())
	require.NoError(t, err)
	return strings.TrimSpace(string(data))
}
