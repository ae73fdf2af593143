package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/hotbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbuild/internal/logfields"
)

// DefaultConfigFile is the configuration file looked up in the working directory.
const DefaultConfigFile = "hotbuild.yaml"

// CounterPlaceholder is replaced with the build counter in symbol file names.
const CounterPlaceholder = "{counter}"

// Config represents the application configuration
type Config struct {
	Compiler   string           `yaml:"compiler"`
	Flags      []string         `yaml:"flags"`
	Process    ProcessConfig    `yaml:"process"`
	Output     OutputConfig     `yaml:"output"`
	Symbols    SymbolsConfig    `yaml:"symbols"`
	Library    LibraryConfig    `yaml:"library"`
	Executable ExecutableConfig `yaml:"executable"`
	Dependency DependencyConfig `yaml:"dependency"`
	Metrics    MetricsConfig    `yaml:"metrics,omitempty"`
	History    HistoryConfig    `yaml:"history,omitempty"`
	Notify     NotifyConfig     `yaml:"notify,omitempty"`
	Watch      WatchConfig      `yaml:"watch,omitempty"`
}

// ProcessConfig names the game process whose liveness selects the build mode.
type ProcessConfig struct {
	Name string `yaml:"name"`
}

// OutputConfig represents the staging directory for build artifacts.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	// StalePattern selects libraries removed on a cold start (glob, relative to Directory).
	StalePattern string `yaml:"stale_pattern"`
}

// SymbolsConfig represents the versioned debug-symbol directory.
type SymbolsConfig struct {
	Directory   string `yaml:"directory"`
	CounterFile string `yaml:"counter_file"`
	Pattern     string `yaml:"pattern"` // files wiped on a cold start
}

// LibraryConfig describes the hot-reloadable game library build.
type LibraryConfig struct {
	Package    string   `yaml:"package"`
	Output     string   `yaml:"output"`
	SymbolName string   `yaml:"symbol_name"` // must contain {counter}
	BuildMode  string   `yaml:"build_mode"`
	Defines    []string `yaml:"defines,omitempty"`
}

// ExecutableConfig describes the host executable build. Output defaults to the process name.
type ExecutableConfig struct {
	Package string `yaml:"package"`
	Output  string `yaml:"output,omitempty"`
}

// DependencyConfig describes the runtime library staged next to the executable.
type DependencyConfig struct {
	Name       string `yaml:"name"`
	VendorPath string `yaml:"vendor_path"` // relative to the toolchain root
	Skip       bool   `yaml:"skip,omitempty"`
}

// MetricsConfig enables the Prometheus textfile output.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// HistoryConfig enables the SQLite build journal.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// NotifyConfig enables build notifications over NATS.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Extensions []string      `yaml:"extensions,omitempty"`
	Debounce   time.Duration `yaml:"debounce,omitempty"`
	Poll       time.Duration `yaml:"poll,omitempty"`
}

// Load loads configuration from the specified file.
// A missing file is only an error when it is not the default file name; without
// a file the defaults reproduce the stock odin + raylib hot reload layout.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	cfg := &Config{}
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse configuration").
				Fatal().
				WithContext("path", configPath).
				Build()
		}
		slog.Debug("Loaded configuration", logfields.Path(configPath))
	case errors.Is(err, os.ErrNotExist) && filepath.Clean(configPath) == DefaultConfigFile:
		slog.Debug("No configuration file, using defaults", logfields.Path(configPath))
	case errors.Is(err, os.ErrNotExist):
		return nil, ferrors.ConfigError("configuration file not found").WithContext("path", configPath).Build()
	default:
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read configuration").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func decode(data []byte, cfg *Config) error {
	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnvOverrides applies HOTBUILD_* variables on top of the file values.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("HOTBUILD_COMPILER"); v != "" {
		cfg.Compiler = v
	}
	if v := os.Getenv("HOTBUILD_PROCESS_NAME"); v != "" {
		cfg.Process.Name = v
	}
	if v := os.Getenv("HOTBUILD_BIN_DIR"); v != "" {
		cfg.Output.Directory = v
	}
	if v := os.Getenv("HOTBUILD_PDB_DIR"); v != "" {
		cfg.Symbols.Directory = v
	}
	if v := os.Getenv("HOTBUILD_SKIP_DEPENDENCY"); v != "" {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid HOTBUILD_SKIP_DEPENDENCY").Fatal().Build()
		}
		cfg.Dependency.Skip = skip
	}
	return nil
}

// Init creates a new configuration file with the default content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# hotbuild configuration\n")
	buf.WriteString("# symbol_name must contain " + CounterPlaceholder + "; it is replaced with the build counter.\n")
	buf.Write(data)

	if err := os.WriteFile(configPath, []byte(buf.String()), 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	return nil
}
