package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/hotbuild/internal/logfields"
	"git.home.luguber.info/inful/hotbuild/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Poll      time.Duration `help:"Poll for changes at this interval instead of using file notifications"`
	NoInitial bool          `name:"no-initial" help:"Do not build before the first change"`

	// ctx overrides the signal context in tests.
	ctx context.Context
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
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

	poll := cfg.Watch.Poll
	if w.Poll > 0 {
		poll = w.Poll
	}
	watcher, err := watch.New(watch.Options{
		Root:        cfg.Library.Package,
		Extensions:  cfg.Watch.Extensions,
		Debounce:    cfg.Watch.Debounce,
		Poll:        poll,
		SkipInitial: w.NoInitial,
	}, func(ctx context.Context) error {
		_, err := orch.Run(ctx)
		return err
	})
	if err != nil {
		return err
	}

	ctx := w.ctx
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
	}
	return watcher.Run(ctx)
}
