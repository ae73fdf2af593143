// Package errors provides the classified error primitives used across hotbuild.
//
// Every fatal condition of a build run is reported as a ClassifiedError so the
// CLI layer can pick an exit code from its category without string matching.
//
// Key features:
//   - ErrorCategory: broad classification (config, toolchain, build, dependency, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - ClassifiedError: structured error with category, severity and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit code and message selection for the command line
//
// Example usage:
//
//	err := errors.BuildError("library build failed").
//		WithContext("package", "./src/game").
//		WithContext("stderr", stderr).
//		Build()
package errors
