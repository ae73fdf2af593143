package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/hotbuild/internal/config"
	"git.home.luguber.info/inful/hotbuild/internal/console"
	"git.home.luguber.info/inful/hotbuild/internal/process"
	"git.home.luguber.info/inful/hotbuild/internal/runner"
)

// Global carries process-wide dependencies into subcommands. Runner and
// Checker are nil in production and replaced in tests.
type Global struct {
	Out     io.Writer
	ErrOut  io.Writer
	Runner  runner.Runner
	Checker process.Checker
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"hotbuild.yaml" env:"HOTBUILD_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	NoColor bool             `name:"no-color" help:"Disable colored console output"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" default:"1" help:"Build the game library (and on cold start the host executable)"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild whenever game sources change"`
	History HistoryCmd `cmd:"" help:"Show recent builds from the journal"`
	Init    InitCmd    `cmd:"" help:"Write a starter configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel honours -v first, then HOTBUILD_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("HOTBUILD_LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (g *Global) console(root *CLI) *console.Console {
	colored := !root.NoColor
	if f, ok := g.Out.(*os.File); !ok || f != os.Stdout {
		colored = false
	}
	if colored {
		return console.Stdio(true)
	}
	return console.New(g.Out, g.ErrOut, false)
}

func loadConfig(root *CLI) (*config.Config, error) {
	return config.Load(root.Config)
}
