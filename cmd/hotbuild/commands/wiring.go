package commands

import (
	"errors"
	"log/slog"

	"git.home.luguber.info/inful/hotbuild/internal/config"
	"git.home.luguber.info/inful/hotbuild/internal/history"
	"git.home.luguber.info/inful/hotbuild/internal/logfields"
	"git.home.luguber.info/inful/hotbuild/internal/metrics"
	"git.home.luguber.info/inful/hotbuild/internal/notify"
	"git.home.luguber.info/inful/hotbuild/internal/orchestrator"
	"git.home.luguber.info/inful/hotbuild/internal/process"
	"git.home.luguber.info/inful/hotbuild/internal/toolchain"
	"git.home.luguber.info/inful/hotbuild/internal/vcs"
)

// newOrchestrator wires an orchestrator from configuration. The returned
// close function releases the journal and notifier.
func newOrchestrator(cfg *config.Config, g *Global, root *CLI) (*orchestrator.Orchestrator, func() error) {
	orch := orchestrator.New(cfg).
		WithConsole(g.console(root)).
		WithRevision(func() string { return vcs.Stamp(".") })

	if g.Runner != nil {
		orch.WithCompiler(toolchain.NewCompiler(cfg.Compiler, cfg.Flags, g.Runner))
		if g.Checker == nil {
			orch.WithChecker(&process.TasklistChecker{Runner: g.Runner})
		}
	}
	if g.Checker != nil {
		orch.WithChecker(g.Checker)
	}

	if cfg.Metrics.Textfile != "" {
		orch.WithRecorder(metrics.NewPrometheusRecorder(nil))
	}

	var closers []func() error
	if cfg.History.Path != "" {
		journal, err := history.Open(cfg.History.Path)
		if err != nil {
			slog.Warn("Build journal unavailable", logfields.Path(cfg.History.Path), logfields.Error(err))
		} else {
			orch.WithJournal(journal)
			closers = append(closers, journal.Close)
		}
	}

	notifier, err := notify.FromConfig(cfg.Notify)
	if err != nil {
		slog.Warn("Build notifications unavailable", logfields.URL(cfg.Notify.NATSURL), logfields.Error(err))
	} else {
		orch.WithNotifier(notifier)
		closers = append(closers, notifier.Close)
	}

	return orch, func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}
}
