package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	ferrors "git.home.luguber.info/inful/hotbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbuild/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of builds to show" default:"10"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return ferrors.ConfigError("build journal is not enabled (set history.path)").Build()
	}

	journal, err := history.Open(cfg.History.Path)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to open build journal").
			Fatal().
			WithContext("path", cfg.History.Path).
			Build()
	}
	defer func() { _ = journal.Close() }()

	entries, err := journal.Recent(context.Background(), h.Limit)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to read build journal").Fatal().Build()
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(g.Out, "No builds recorded")
		return nil
	}

	tw := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "FINISHED\tMODE\tCOUNTER\tOUTCOME\tDURATION\tREVISION\tERROR")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			e.FinishedAt.Local().Format(time.DateTime),
			e.Mode,
			e.Counter,
			e.Outcome,
			e.Duration.Round(time.Millisecond),
			dash(e.Revision),
			dash(e.Error))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
