package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/hotbuild/internal/config"
	"git.home.luguber.info/inful/hotbuild/internal/console"
	"git.home.luguber.info/inful/hotbuild/internal/counter"
	"git.home.luguber.info/inful/hotbuild/internal/deps"
	ferrors "git.home.luguber.info/inful/hotbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbuild/internal/history"
	"git.home.luguber.info/inful/hotbuild/internal/logfields"
	"git.home.luguber.info/inful/hotbuild/internal/metrics"
	"git.home.luguber.info/inful/hotbuild/internal/notify"
	"git.home.luguber.info/inful/hotbuild/internal/observability"
	"git.home.luguber.info/inful/hotbuild/internal/process"
	"git.home.luguber.info/inful/hotbuild/internal/runner"
	"git.home.luguber.info/inful/hotbuild/internal/toolchain"
	"git.home.luguber.info/inful/hotbuild/internal/workspace"
)

// Mode is decided once per run from the liveness probe.
type Mode string

const (
	ModeColdStart Mode = "cold_start"
	ModeHotReload Mode = "hot_reload"
)

// Stage names used for logging and metrics.
const (
	StageCleanup    = "cleanup"
	StageCounter    = "counter"
	StageLibrary    = "library"
	StageExecutable = "executable"
	StageDependency = "dependency"
)

// Compiler builds packages and locates the toolchain root.
type Compiler interface {
	Build(ctx context.Context, req toolchain.BuildRequest) (runner.Result, error)
	Root(ctx context.Context) (string, bool)
}

// Report describes a finished (or aborted) run.
type Report struct {
	BuildID    string
	Mode       Mode
	Counter    int
	Library    string
	Symbols    string
	Executable string
	Cleanup    workspace.CleanReport
	Dependency deps.Outcome
	Revision   string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

type textfileWriter interface {
	WriteTextfile(path string) error
}

// Orchestrator sequences the build steps.
type Orchestrator struct {
	cfg      *config.Config
	checker  process.Checker
	store    counter.Store
	compiler Compiler
	stager   *deps.Stager
	layout   workspace.Layout
	recorder metrics.Recorder
	journal  history.Journal
	notifier notify.Notifier
	console  *console.Console
	revision func() string
	newID    func() string
	now      func() time.Time
}

// New creates an Orchestrator wired to the real tasklist probe, counter file
// and compiler. Side channels default to no-ops.
func New(cfg *config.Config) *Orchestrator {
	compiler := toolchain.NewCompiler(cfg.Compiler, cfg.Flags, runner.ExecRunner{})
	return &Orchestrator{
		cfg:      cfg,
		checker:  process.NewTasklistChecker(),
		store:    counter.NewFileStore(cfg.CounterPath()),
		compiler: compiler,
		stager:   deps.NewStager(cfg, compiler),
		layout:   workspace.NewLayout(cfg),
		recorder: metrics.NoopRecorder{},
		journal:  history.NopJournal{},
		notifier: notify.Nop{},
		console:  console.Discard(),
		revision: func() string { return "" },
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// WithChecker replaces the liveness probe.
func (o *Orchestrator) WithChecker(c process.Checker) *Orchestrator {
	o.checker = c
	return o
}

// WithCounterStore replaces the counter persistence.
func (o *Orchestrator) WithCounterStore(s counter.Store) *Orchestrator {
	o.store = s
	return o
}

// WithCompiler replaces the compiler. It also becomes the root resolver used
// for dependency staging.
func (o *Orchestrator) WithCompiler(c Compiler) *Orchestrator {
	o.compiler = c
	o.stager.Resolver = c
	return o
}

// WithRecorder sets the metrics recorder. A recorder able to write a
// textfile is flushed to metrics.textfile after every run.
func (o *Orchestrator) WithRecorder(r metrics.Recorder) *Orchestrator {
	o.recorder = r
	return o
}

// WithJournal sets the build journal.
func (o *Orchestrator) WithJournal(j history.Journal) *Orchestrator {
	o.journal = j
	return o
}

// WithNotifier sets the build event publisher.
func (o *Orchestrator) WithNotifier(n notify.Notifier) *Orchestrator {
	o.notifier = n
	return o
}

// WithConsole sets where operator-facing lines are printed.
func (o *Orchestrator) WithConsole(c *console.Console) *Orchestrator {
	o.console = c
	return o
}

// WithRevision sets the function stamping each run with a source revision.
func (o *Orchestrator) WithRevision(f func() string) *Orchestrator {
	o.revision = f
	return o
}

// WithIDGenerator replaces uuid-based build IDs.
func (o *Orchestrator) WithIDGenerator(f func() string) *Orchestrator {
	o.newID = f
	return o
}

// Run executes one build cycle. The returned report is never nil, even on
// failure, so callers can inspect how far the run got.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		BuildID:   o.newID(),
		StartTime: o.now(),
		Library:   o.cfg.LibraryPath(),
	}
	ctx = observability.WithBuildID(ctx, report.BuildID)
	report.Revision = o.revision()

	err := o.run(ctx, report)

	report.EndTime = o.now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	o.finish(ctx, report, err)
	return report, err
}

func (o *Orchestrator) run(ctx context.Context, report *Report) error {
	if err := o.layout.EnsureOutputDir(); err != nil {
		return err
	}

	report.Mode = ModeColdStart
	if o.checker.IsRunning(ctx, o.cfg.Process.Name) {
		report.Mode = ModeHotReload
	}
	ctx = observability.WithMode(ctx, string(report.Mode))
	observability.InfoContext(ctx, "Starting build",
		logfields.Process(o.cfg.Process.Name),
		logfields.Revision(report.Revision))

	if report.Mode == ModeColdStart {
		if err := o.stage(ctx, StageCleanup, func(ctx context.Context) error {
			return o.clean(ctx, report)
		}); err != nil {
			return err
		}
	}

	if err := o.stage(ctx, StageCounter, func(ctx context.Context) error {
		n, err := counter.Increment(o.store)
		if err != nil {
			return err
		}
		report.Counter = n
		report.Symbols = o.cfg.SymbolPath(n)
		o.recorder.SetBuildCounter(n)
		observability.DebugContext(ctx, "Counter incremented", logfields.Counter(n))
		return nil
	}); err != nil {
		return err
	}

	if err := o.stage(ctx, StageLibrary, func(ctx context.Context) error {
		return o.compile(ctx, toolchain.BuildRequest{
			Package:    o.cfg.Library.Package,
			Out:        report.Library,
			SymbolPath: report.Symbols,
			BuildMode:  o.cfg.Library.BuildMode,
			Defines:    o.cfg.Library.Defines,
		})
	}); err != nil {
		return err
	}

	if report.Mode == ModeHotReload {
		o.console.Success("Game running, hot reloading...")
		return nil
	}

	report.Executable = o.cfg.ExecutablePath()
	if err := o.stage(ctx, StageExecutable, func(ctx context.Context) error {
		return o.compile(ctx, toolchain.BuildRequest{
			Package: o.cfg.Executable.Package,
			Out:     report.Executable,
		})
	}); err != nil {
		return err
	}

	if o.cfg.Dependency.Skip {
		o.recorder.IncStageResult(StageDependency, metrics.ResultSkipped)
		return nil
	}
	return o.stage(ctx, StageDependency, func(ctx context.Context) error {
		outcome, err := o.stageDependency(ctx)
		report.Dependency = outcome
		return err
	})
}

// stage times fn and records its result.
func (o *Orchestrator) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx = observability.WithStage(ctx, name)
	start := time.Now()
	err := fn(ctx)
	o.recorder.ObserveStageDuration(name, time.Since(start))
	if err != nil {
		o.recorder.IncStageResult(name, metrics.ResultFailed)
		observability.ErrorContext(ctx, "Stage failed", logfields.Error(err))
		return err
	}
	o.recorder.IncStageResult(name, metrics.ResultSuccess)
	observability.DebugContext(ctx, "Stage complete", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}

func (o *Orchestrator) clean(ctx context.Context, report *Report) error {
	cleanup, err := o.layout.Clean(o.store)
	report.Cleanup = cleanup
	for _, f := range cleanup.Failed {
		o.console.Failure("Error removing %s: %v", f.Path, f.Err)
	}
	if err != nil {
		return err
	}
	observability.DebugContext(ctx, "Cleanup complete",
		slog.Int("removed", len(cleanup.Removed)),
		slog.Int("failed", len(cleanup.Failed)),
		slog.Bool("created_symbols_dir", cleanup.CreatedSymbolsDir))
	return nil
}

func (o *Orchestrator) compile(ctx context.Context, req toolchain.BuildRequest) error {
	name := filepath.Base(req.Out)
	o.console.Step("Building %s", name)

	_, err := o.compiler.Build(ctx, req)
	if err == nil {
		return nil
	}

	var exitErr *toolchain.ExitError
	if errors.As(err, &exitErr) {
		o.console.Failure("Error building %s:", name)
		o.console.Detail(exitErr.Stderr)
		return ferrors.WrapError(err, ferrors.CategoryBuild, fmt.Sprintf("failed to build %s", name)).
			Fatal().
			WithContext("package", req.Package).
			WithContext("exit_code", exitErr.ExitCode).
			WithContext("stderr", exitErr.Stderr).
			Build()
	}
	o.console.Failure("Error building %s: %v", name, err)
	return ferrors.WrapError(err, ferrors.CategoryToolchain, fmt.Sprintf("failed to run %s", o.cfg.Compiler)).
		Fatal().
		WithContext("package", req.Package).
		Build()
}

func (o *Orchestrator) stageDependency(ctx context.Context) (deps.Outcome, error) {
	o.stager.BeforeCopy = func(source string) {
		o.console.Info("%s not found in %s directory. Copying from %s", o.stager.Name, o.stager.OutputDir, source)
	}
	outcome, err := o.stager.Stage(ctx)
	if err != nil {
		if ce, ok := ferrors.AsClassified(err); ok {
			if hint, ok := ce.Context().GetString(deps.HintKey); ok {
				o.console.Notice("%s", hint)
			} else {
				o.console.Failure("%s", ce.Message())
			}
		}
		return outcome, err
	}
	return outcome, nil
}

// finish publishes the run to metrics, the journal and subscribers. Failures
// here are logged only.
func (o *Orchestrator) finish(ctx context.Context, report *Report, runErr error) {
	mode := string(report.Mode)
	outcome := metrics.ResultSuccess
	if runErr != nil {
		outcome = metrics.ResultFailed
	}
	o.recorder.ObserveBuildDuration(mode, report.Duration)
	o.recorder.IncBuildOutcome(mode, outcome)

	if w, ok := o.recorder.(textfileWriter); ok && o.cfg.Metrics.Textfile != "" {
		if err := w.WriteTextfile(o.cfg.Metrics.Textfile); err != nil {
			observability.WarnContext(ctx, "Failed to write metrics textfile",
				logfields.Path(o.cfg.Metrics.Textfile), logfields.Error(err))
		}
	}

	entry := history.Entry{
		BuildID:    report.BuildID,
		Mode:       mode,
		Counter:    report.Counter,
		Outcome:    string(outcome),
		Revision:   report.Revision,
		Duration:   report.Duration,
		FinishedAt: report.EndTime,
	}
	if runErr != nil {
		entry.Error = runErr.Error()
		if ce, ok := ferrors.AsClassified(runErr); ok {
			entry.Error = ce.Message()
		}
	}
	if err := o.journal.Record(ctx, entry); err != nil {
		observability.WarnContext(ctx, "Failed to record build in journal", logfields.Error(err))
	}

	if runErr == nil {
		event := notify.BuildEvent{
			BuildID:  report.BuildID,
			Mode:     mode,
			Counter:  report.Counter,
			Library:  filepath.ToSlash(report.Library),
			Symbols:  filepath.ToSlash(report.Symbols),
			Revision: report.Revision,
			Time:     report.EndTime,
		}
		if err := o.notifier.Publish(ctx, event); err != nil {
			observability.WarnContext(ctx, "Failed to publish build event", logfields.Error(err))
		}
	}

	observability.InfoContext(ctx, "Build finished",
		logfields.Mode(mode),
		logfields.Counter(report.Counter),
		logfields.Outcome(string(outcome)),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
}
