package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/hotbuild/cmd/hotbuild/commands"
	ferrors "git.home.luguber.info/inful/hotbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbuild/internal/version"
)

func main() {
	var cli commands.CLI
	parser := kong.Parse(&cli,
		kong.Name("hotbuild"),
		kong.Description("Build a game library for hot reloading, with versioned debug symbols."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Out: os.Stdout, ErrOut: os.Stderr}
	if err := parser.Run(global, &cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
