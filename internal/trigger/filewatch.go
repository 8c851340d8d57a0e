package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"scribe/internal/logging"
)

// DefaultDebounce is the quiet period FileWatch waits for after the last
// write before firing.
const DefaultDebounce = 250 * time.Millisecond

// ErrWatcherClosed is returned by Next after Close.
var ErrWatcherClosed = errors.New("file watcher closed")

// FileWatch fires when the capture file at Path is written or created. The
// parent directory is watched so editors that replace the file are seen.
type FileWatch struct {
	Path     string
	Debounce time.Duration
	Logger   *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	target  string
}

// Start begins watching. Next calls it on first use.
func (t *FileWatch) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.watcher != nil {
		return nil
	}
	target, err := filepath.Abs(t.Path)
	if err != nil {
		return fmt.Errorf("resolve watch path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	t.watcher = watcher
	t.target = target
	return nil
}

// Close stops watching.
func (t *FileWatch) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.watcher == nil {
		return nil
	}
	err := t.watcher.Close()
	t.watcher = nil
	return err
}

// Next blocks until the capture file changes and then stays quiet for
// Debounce.
func (t *FileWatch) Next(ctx context.Context) error {
	if err := t.Start(); err != nil {
		return err
	}
	t.mu.Lock()
	watcher := t.watcher
	t.mu.Unlock()
	if watcher == nil {
		return ErrWatcherClosed
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return ErrWatcherClosed
			}
			if t.matches(event) {
				return t.settle(ctx, watcher)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			t.logger().Debug("file watcher error", logging.Error(err))
		}
	}
}

func (t *FileWatch) settle(ctx context.Context, watcher *fsnotify.Watcher) error {
	debounce := t.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if t.matches(event) {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			t.logger().Debug("file watcher error", logging.Error(err))
		}
	}
}

func (t *FileWatch) matches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == t.target
}

func (t *FileWatch) logger() *slog.Logger {
	if t.Logger == nil {
		return logging.NewNop()
	}
	return t.Logger
}
