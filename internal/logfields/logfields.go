package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyMode       = "mode"
	KeyCounter    = "counter"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyPackage    = "package"
	KeyProcess    = "process"
	KeyCommand    = "command"
	KeyExitCode   = "exit_code"
	KeyRevision   = "revision"
	KeyOutcome    = "outcome"
	KeyName       = "name"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Mode(m string) slog.Attr          { return slog.String(KeyMode, m) }
func Counter(n int) slog.Attr          { return slog.Int(KeyCounter, n) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Package(p string) slog.Attr       { return slog.String(KeyPackage, p) }
func Process(name string) slog.Attr    { return slog.String(KeyProcess, name) }
func Command(argv []string) slog.Attr  { return slog.Any(KeyCommand, argv) }
func ExitCode(code int) slog.Attr      { return slog.Int(KeyExitCode, code) }
func Revision(rev string) slog.Attr    { return slog.String(KeyRevision, rev) }
func Outcome(o string) slog.Attr       { return slog.String(KeyOutcome, o) }
func Name(n string) slog.Attr          { return slog.String(KeyName, n) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
