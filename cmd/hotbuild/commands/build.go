package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/hotbuild/internal/logfields"
)

// BuildCmd implements the 'build' command, the default when no command is given.
type BuildCmd struct{}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	orch, closeAll := newOrchestrator(cfg, g, root)
	defer func() {
		if err := closeAll(); err != nil {
			slog.Warn("Failed to release build resources", logfields.Error(err))
		}
	}()

	_, err = orch.Run(context.Background())
	return err
}
