package config

import "time"

const (
	defaultCompiler      = "odin"
	defaultProcessName   = "game_hot_reload.exe"
	defaultOutputDir     = "bin"
	defaultStalePattern  = "game_*.dll"
	defaultSymbolsDir    = "pdbs"
	defaultCounterFile   = "pdb_number"
	defaultSymbolPattern = "*.pdb"
	defaultLibraryPkg    = "./src/game"
	defaultLibraryOut    = "game.dll"
	defaultSymbolName    = "game_" + CounterPlaceholder + ".pdb"
	defaultBuildMode     = "dll"
	defaultExecutablePkg = "./src/hot_reload"
	defaultDependency    = "raylib.dll"
	defaultVendorPath    = "vendor/raylib/windows/raylib.dll"
	defaultSubject       = "hotbuild.builds"
	defaultDebounce      = 300 * time.Millisecond
)

var (
	defaultFlags      = []string{"-strict-style", "-vet", "-debug"}
	defaultDefines    = []string{"RAYLIB_SHARED=true"}
	defaultExtensions = []string{".odin"}
)

// applyDefaults fills every unset field. Slices are copied so callers can mutate them.
func applyDefaults(cfg *Config) {
	if cfg.Compiler == "" {
		cfg.Compiler = defaultCompiler
	}
	if cfg.Flags == nil {
		cfg.Flags = append([]string(nil), defaultFlags...)
	}
	if cfg.Process.Name == "" {
		cfg.Process.Name = defaultProcessName
	}

	if cfg.Output.Directory == "" {
		cfg.Output.Directory = defaultOutputDir
	}
	if cfg.Output.StalePattern == "" {
		cfg.Output.StalePattern = defaultStalePattern
	}

	if cfg.Symbols.Directory == "" {
		cfg.Symbols.Directory = defaultSymbolsDir
	}
	if cfg.Symbols.CounterFile == "" {
		cfg.Symbols.CounterFile = defaultCounterFile
	}
	if cfg.Symbols.Pattern == "" {
		cfg.Symbols.Pattern = defaultSymbolPattern
	}

	if cfg.Library.Package == "" {
		cfg.Library.Package = defaultLibraryPkg
	}
	if cfg.Library.Output == "" {
		cfg.Library.Output = defaultLibraryOut
	}
	if cfg.Library.SymbolName == "" {
		cfg.Library.SymbolName = defaultSymbolName
	}
	if cfg.Library.BuildMode == "" {
		cfg.Library.BuildMode = defaultBuildMode
	}
	if cfg.Library.Defines == nil {
		cfg.Library.Defines = append([]string(nil), defaultDefines...)
	}

	if cfg.Executable.Package == "" {
		cfg.Executable.Package = defaultExecutablePkg
	}
	if cfg.Executable.Output == "" {
		cfg.Executable.Output = cfg.Process.Name
	}

	if cfg.Dependency.Name == "" {
		cfg.Dependency.Name = defaultDependency
	}
	if cfg.Dependency.VendorPath == "" {
		cfg.Dependency.VendorPath = defaultVendorPath
	}

	if cfg.Notify.NATSURL != "" && cfg.Notify.Subject == "" {
		cfg.Notify.Subject = defaultSubject
	}

	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = append([]string(nil), defaultExtensions...)
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = defaultDebounce
	}
}
