package config

import (
	"path/filepath"
	"strconv"
	"strings"
)

// CounterPath is the persisted build counter file.
func (c *Config) CounterPath() string {
	return filepath.Join(c.Symbols.Directory, c.Symbols.CounterFile)
}

// LibraryPath is the compiled game library.
func (c *Config) LibraryPath() string {
	return filepath.Join(c.Output.Directory, c.Library.Output)
}

// SymbolPath is the debug-symbol file for a given build counter.
func (c *Config) SymbolPath(counter int) string {
	name := strings.ReplaceAll(c.Library.SymbolName, CounterPlaceholder, strconv.Itoa(counter))
	return filepath.Join(c.Symbols.Directory, name)
}

// ExecutablePath is the host executable.
func (c *Config) ExecutablePath() string {
	return filepath.Join(c.Output.Directory, c.Executable.Output)
}

// DependencyPath is the staged runtime dependency.
func (c *Config) DependencyPath() string {
	return filepath.Join(c.Output.Directory, c.Dependency.Name)
}
