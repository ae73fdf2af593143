package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/hotbuild/internal/logfields"
)

// RunFunc performs one build.
type RunFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Root is the directory tree to watch.
	Root string
	// Extensions limits which files trigger a run. Empty means all files.
	Extensions []string
	// Debounce delays a run until events have been quiet for this long.
	Debounce time.Duration
	// Poll switches to fingerprint polling at this interval when > 0.
	Poll time.Duration
	// SkipInitial disables the run performed before watching starts.
	SkipInitial bool
}

// Watcher drives RunFunc from file changes.
type Watcher struct {
	opts    Options
	run     RunFunc
	pending chan struct{}

	mu          sync.Mutex
	fingerprint string
	runs        int
}

// New creates a Watcher.
func New(opts Options, run RunFunc) (*Watcher, error) {
	if run == nil {
		return nil, errors.New("watch: run function is required")
	}
	if opts.Root == "" {
		return nil, errors.New("watch: root directory is required")
	}
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("watch: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", opts.Root)
	}
	exts := make([]string, 0, len(opts.Extensions))
	for _, e := range opts.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	opts.Extensions = exts

	return &Watcher{
		opts:    opts,
		run:     run,
		pending: make(chan struct{}, 1),
	}, nil
}

// Runs reports how many runs have completed.
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Run blocks until ctx is cancelled. Run errors are logged and do not stop
// the loop.
func (w *Watcher) Run(ctx context.Context) error {
	var stop func() error
	var err error
	if w.opts.Poll > 0 {
		stop, err = w.startPolling()
	} else {
		stop, err = w.startNotify(ctx)
	}
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := stop(); stopErr != nil {
			slog.Warn("Error stopping watcher", logfields.Error(stopErr))
		}
	}()

	if !w.opts.SkipInitial {
		w.trigger()
	}

	slog.Info("Watching for changes",
		logfields.Path(w.opts.Root),
		slog.Duration("poll", w.opts.Poll),
		slog.Any("extensions", w.opts.Extensions))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watch")
			return nil
		case <-w.pending:
			w.runOnce(ctx)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	start := time.Now()
	err := w.run(ctx)

	w.mu.Lock()
	w.runs++
	w.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("Build failed, still watching",
			logfields.Error(err),
			logfields.DurationMS(float64(time.Since(start).Milliseconds())))
		return
	}
	slog.Debug("Build finished", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}

// trigger schedules a run unless one is already pending.
func (w *Watcher) trigger() {
	select {
	case w.pending <- struct{}{}:
	default:
	}
}

func (w *Watcher) matches(name string) bool {
	return hasExtension(name, w.opts.Extensions)
}

func (w *Watcher) startNotify(ctx context.Context) (func() error, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := addTree(fw, w.opts.Root); err != nil {
		_ = fw.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.notifyLoop(ctx, fw)
	}()

	return func() error {
		err := fw.Close()
		<-done
		return err
	}, nil
}

func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) notifyLoop(ctx context.Context, fw *fsnotify.Watcher) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(fw, event.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
					continue
				}
			}
			if event.Op == fsnotify.Chmod || !w.matches(event.Name) {
				continue
			}
			slog.Debug("Source change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.opts.Debounce, w.trigger)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) startPolling() (func() error, error) {
	fp, err := Fingerprint(w.opts.Root, w.opts.Extensions)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.fingerprint = fp
	w.mu.Unlock()

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Poll),
		gocron.NewTask(w.poll),
		gocron.WithName("hotbuild-poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create poll job: %w", err)
	}
	s.Start()
	return s.Shutdown, nil
}

func (w *Watcher) poll() {
	fp, err := Fingerprint(w.opts.Root, w.opts.Extensions)
	if err != nil {
		slog.Warn("Fingerprint failed", logfields.Path(w.opts.Root), logfields.Error(err))
		return
	}

	w.mu.Lock()
	changed := fp != w.fingerprint
	w.fingerprint = fp
	w.mu.Unlock()

	if changed {
		slog.Debug("Source change detected by poll", logfields.Path(w.opts.Root))
		w.trigger()
	}
}
