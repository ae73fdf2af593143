package toolchain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hotbuild/internal/runner"
)

var odinFlags = []string{"-strict-style", "-vet", "-debug"}

func TestArgsLibrary(t *testing.T) {
	c := NewCompiler("odin", odinFlags, &scriptedRunner{})
	args := c.Args(BuildRequest{
		Package:    "./src/game",
		Out:        "bin/game.dll",
		SymbolPath: "pdbs/game_4.pdb",
		BuildMode:  "dll",
		Defines:    []string{"RAYLIB_SHARED=true"},
	})
	assert.Equal(t, []string{
		"build", "./src/game",
		"-strict-style", "-vet", "-debug",
		"-define:RAYLIB_SHARED=true",
		"-build-mode:dll",
		"-out:bin/game.dll",
		"-pdb-name:pdbs/game_4.pdb",
	}, args)
}

func TestArgsExecutable(t *testing.T) {
	c := NewCompiler("odin", odinFlags, &scriptedRunner{})
	args := c.Args(BuildRequest{Package: "./src/hot_reload", Out: "bin/game_hot_reload.exe"})
	assert.Equal(t, []string{
		"build", "./src/hot_reload",
		"-strict-style", "-vet", "-debug",
		"-out:bin/game_hot_reload.exe",
	}, args)
}

func TestBuildSuccess(t *testing.T) {
	r := &scriptedRunner{results: map[string]runner.Result{"build": {Stdout: []byte("ok")}}}
	c := NewCompiler("odin", odinFlags, r)

	res, err := c.Build(context.Background(), BuildRequest{Package: "./src/game", Out: "bin/game.dll"})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(res.Stdout))
	require.Len(t, r.calls, 1)
	assert.Equal(t, "odin build ./src/game -strict-style -vet -debug -out:bin/game.dll", r.calls[0].String())
}

func TestBuildNonZeroExit(t *testing.T) {
	r := &scriptedRunner{results: map[string]runner.Result{"build": {ExitCode: 1, Stderr: []byte("game.odin(3:1) Error: x")}}}
	c := NewCompiler("odin", odinFlags, r)

	_, err := c.Build(context.Background(), BuildRequest{Package: "./src/game", Out: "bin/game.dll"})
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode)
	assert.Equal(t, "game.odin(3:1) Error: x", exitErr.Stderr)
	assert.Equal(t, "odin", exitErr.Argv[0])
}

func TestBuildStartFailure(t *testing.T) {
	c := NewCompiler("odin", odinFlags, &scriptedRunner{err: errors.New("executable file not found")})
	_, err := c.Build(context.Background(), BuildRequest{Package: "./src/game", Out: "bin/game.dll"})
	require.Error(t, err)
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestRoot(t *testing.T) {
	tests := []struct {
		name   string
		runner *scriptedRunner
		want   string
		ok     bool
	}{
		{"trimmed", &scriptedRunner{results: map[string]runner.Result{"root": {Stdout: []byte("  C:/odin/\r\n")}}}, "C:/odin/", true},
		{"non-zero", &scriptedRunner{results: map[string]runner.Result{"root": {ExitCode: 2, Stdout: []byte("C:/odin")}}}, "", false},
		{"start failure", &scriptedRunner{err: errors.New("not found")}, "", false},
		{"empty output", &scriptedRunner{results: map[string]runner.Result{"root": {}}}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, ok := NewCompiler("odin", nil, tt.runner).Root(context.Background())
			assert.Equal(t, tt.want, root)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
