package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runRecorder struct {
	calls   atomic.Int32
	active  atomic.Int32
	maxSeen atomic.Int32
	ran     chan struct{}
	fail    atomic.Bool
	hold    time.Duration
}

func newRunRecorder() *runRecorder {
	return &runRecorder{ran: make(chan struct{}, 64)}
}

func (r *runRecorder) run(ctx context.Context) error {
	n := r.active.Add(1)
	for {
		m := r.maxSeen.Load()
		if n <= m || r.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if r.hold > 0 {
		time.Sleep(r.hold)
	}
	r.active.Add(-1)
	r.calls.Add(1)
	r.ran <- struct{}{}
	if r.fail.Load() {
		return errors.New("compile error")
	}
	return nil
}

func (r *runRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a run")
	}
}

func (r *runRecorder) expectNone(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case <-r.ran:
		t.Fatal("unexpected run")
	case <-time.After(d):
	}
}

func startWatcher(t *testing.T, opts Options, rec *runRecorder) *Watcher {
	t.Helper()
	w, err := New(opts, rec.run)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{Root: t.TempDir()}, nil)
	require.Error(t, err)

	_, err = New(Options{}, func(context.Context) error { return nil })
	require.Error(t, err)

	_, err = New(Options{Root: filepath.Join(t.TempDir(), "missing")}, func(context.Context) error { return nil })
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "f.odin")
	writeFile(t, file, "x")
	_, err = New(Options{Root: file}, func(context.Context) error { return nil })
	require.Error(t, err)
}

func TestNewNormalizesExtensions(t *testing.T) {
	w, err := New(Options{Root: t.TempDir(), Extensions: []string{"odin", " .ODIN ", ""}}, func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, []string{".odin", ".odin"}, w.opts.Extensions)
	assert.True(t, w.matches("src/game/Game.ODIN"))
	assert.False(t, w.matches("notes.txt"))
}

func TestNotifyTriggersOnMatchingChange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "game.odin"), "package game")

	rec := newRunRecorder()
	startWatcher(t, Options{Root: root, Extensions: []string{".odin"}, Debounce: 20 * time.Millisecond}, rec)
	rec.wait(t) // initial run

	writeFile(t, filepath.Join(root, "notes.txt"), "ignored")
	rec.expectNone(t, 200*time.Millisecond)

	writeFile(t, filepath.Join(root, "game.odin"), "package game // edit")
	rec.wait(t)
}

func TestNotifyWatchesNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	rec := newRunRecorder()
	startWatcher(t, Options{Root: root, Extensions: []string{".odin"}, Debounce: 20 * time.Millisecond}, rec)
	rec.wait(t)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "entities"), 0o750))
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(root, "entities", "player.odin"), "package game")
	rec.wait(t)
}

func TestSkipInitial(t *testing.T) {
	rec := newRunRecorder()
	startWatcher(t, Options{Root: t.TempDir(), Debounce: 20 * time.Millisecond, SkipInitial: true}, rec)
	rec.expectNone(t, 150*time.Millisecond)
}

func TestFailedRunKeepsWatching(t *testing.T) {
	root := t.TempDir()
	rec := newRunRecorder()
	rec.fail.Store(true)
	w := startWatcher(t, Options{Root: root, Debounce: 20 * time.Millisecond}, rec)
	rec.wait(t)

	writeFile(t, filepath.Join(root, "game.odin"), "broken")
	rec.wait(t)
	assert.GreaterOrEqual(t, w.Runs(), 1)
}

func TestRunsNeverOverlap(t *testing.T) {
	root := t.TempDir()
	rec := newRunRecorder()
	rec.hold = 100 * time.Millisecond
	startWatcher(t, Options{Root: root, Debounce: time.Millisecond}, rec)

	for i := range 5 {
		writeFile(t, filepath.Join(root, "game.odin"), string(rune('a'+i)))
		time.Sleep(30 * time.Millisecond)
	}
	rec.wait(t)
	rec.wait(t)
	assert.Equal(t, int32(1), rec.maxSeen.Load())
}

func TestPollTriggersOnFingerprintChange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "game.odin"), "package game")

	rec := newRunRecorder()
	startWatcher(t, Options{Root: root, Extensions: []string{".odin"}, Poll: 50 * time.Millisecond}, rec)
	rec.wait(t)
	rec.expectNone(t, 200*time.Millisecond)

	writeFile(t, filepath.Join(root, "sub", "player.odin"), "package game")
	rec.wait(t)
}
