package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/hotbuild/internal/foundation/errors"
)

// Validate checks a configuration after defaults have been applied.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Compiler) == "" {
		return invalid("compiler must not be empty")
	}
	if strings.ContainsAny(cfg.Process.Name, `/\`) {
		return invalid("process.name must be an image name, not a path")
	}
	if !strings.Contains(cfg.Library.SymbolName, CounterPlaceholder) {
		return invalid(fmt.Sprintf("library.symbol_name must contain %s", CounterPlaceholder))
	}
	for name, pattern := range map[string]string{
		"output.stale_pattern": cfg.Output.StalePattern,
		"symbols.pattern":      cfg.Symbols.Pattern,
	} {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return invalid(fmt.Sprintf("%s is not a valid glob: %v", name, err))
		}
		if strings.ContainsAny(pattern, `/\`) {
			return invalid(fmt.Sprintf("%s must match file names only", name))
		}
	}
	if filepath.Clean(cfg.Output.Directory) == filepath.Clean(cfg.Symbols.Directory) {
		return invalid("output.directory and symbols.directory must differ")
	}
	if strings.ContainsAny(cfg.Symbols.CounterFile, `/\`) {
		return invalid("symbols.counter_file must be a file name")
	}
	if ok, _ := filepath.Match(cfg.Symbols.Pattern, cfg.Symbols.CounterFile); ok {
		return invalid("symbols.pattern must not match the counter file")
	}
	if cfg.Watch.Poll < 0 {
		return invalid("watch.poll must not be negative")
	}
	return nil
}

func invalid(msg string) error {
	return ferrors.ConfigError(msg).Build()
}
