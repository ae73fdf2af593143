package workspace

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/hotbuild/internal/config"
	"git.home.luguber.info/inful/hotbuild/internal/counter"
	ferrors "git.home.luguber.info/inful/hotbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbuild/internal/logfields"
)

// Layout describes the output and debug-symbol directories.
type Layout struct {
	OutputDir     string
	StalePattern  string
	SymbolsDir    string
	SymbolPattern string
}

// NewLayout derives the layout from configuration.
func NewLayout(cfg *config.Config) Layout {
	return Layout{
		OutputDir:     cfg.Output.Directory,
		StalePattern:  cfg.Output.StalePattern,
		SymbolsDir:    cfg.Symbols.Directory,
		SymbolPattern: cfg.Symbols.Pattern,
	}
}

// RemoveFailure records a file that could not be deleted during cleanup.
type RemoveFailure struct {
	Path string
	Err  error
}

// CleanReport summarizes a cleanup pass.
type CleanReport struct {
	Removed           []string
	Failed            []RemoveFailure
	CreatedSymbolsDir bool
}

// EnsureOutputDir creates the output directory if it does not exist yet.
func (l Layout) EnsureOutputDir() error {
	if err := os.MkdirAll(l.OutputDir, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output directory").
			Fatal().
			WithContext("path", l.OutputDir).
			Build()
	}
	return nil
}

// Clean resets the layout for a fresh session and writes 0 to the counter.
// Files that cannot be removed are logged and reported; only directory
// creation and the counter write are fatal.
func (l Layout) Clean(store counter.Store) (CleanReport, error) {
	var report CleanReport

	if err := l.EnsureOutputDir(); err != nil {
		return report, err
	}
	l.removeMatching(l.OutputDir, l.StalePattern, &report)

	info, err := os.Stat(l.SymbolsDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(l.SymbolsDir, 0o750); err != nil {
			return report, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create symbols directory").
				Fatal().
				WithContext("path", l.SymbolsDir).
				Build()
		}
		report.CreatedSymbolsDir = true
		slog.Debug("Created symbols directory", logfields.Path(l.SymbolsDir))
		return report, store.Write(0)
	case err != nil:
		return report, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to inspect symbols directory").
			Fatal().
			WithContext("path", l.SymbolsDir).
			Build()
	case !info.IsDir():
		return report, ferrors.FileSystemError("symbols path is not a directory").
			WithContext("path", l.SymbolsDir).
			Build()
	}

	l.removeMatching(l.SymbolsDir, l.SymbolPattern, &report)
	return report, store.Write(0)
}

func (l Layout) removeMatching(dir, pattern string, report *CleanReport) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		// Patterns are validated with the configuration; treat as nothing matched.
		slog.Warn("Invalid cleanup pattern", logfields.Path(dir), slog.String("pattern", pattern), logfields.Error(err))
		return
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			slog.Warn("Failed to remove file", logfields.Path(path), logfields.Error(err))
			report.Failed = append(report.Failed, RemoveFailure{Path: path, Err: err})
			continue
		}
		slog.Debug("Removed file", logfields.Path(path))
		report.Removed = append(report.Removed, path)
	}
}
