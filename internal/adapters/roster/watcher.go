package roster

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"verlof/internal/domain/employee"
)

// DefaultDebounce batches the burst of events editors emit on save.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reloads a Directory whenever its roster file changes on disk.
// It watches the parent directory so atomic rename-on-save is picked up.
type Watcher struct {
	path     string
	dir      *employee.Directory
	debounce time.Duration
	watcher  *fsnotify.Watcher
	onReload func(n int, err error)
}

// NewWatcher prepares a watcher for path feeding dir.
// PRE: path is non-empty
func NewWatcher(path string, dir *employee.Directory) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create roster watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{path: abs, dir: dir, debounce: DefaultDebounce, watcher: fw}, nil
}

// OnReload registers a callback invoked after every reload attempt.
func (w *Watcher) OnReload(fn func(n int, err error)) {
	w.onReload = fn
}

// SetDebounce overrides the debounce delay.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run processes events until ctx is cancelled, then closes the watcher.
// A roster that fails to parse leaves the directory unchanged.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("roster_event", "event", "watch_error", "error", err)

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	list, err := Load(w.path)
	if err == nil {
		err = w.dir.Replace(list)
	}
	if err != nil {
		slog.Error("roster_event", "event", "reload_failed", "path", w.path, "error", err)
	} else {
		slog.Info("roster_event", "event", "roster_reloaded", "path", w.path, "employees", w.dir.Len())
	}
	if w.onReload != nil {
		w.onReload(w.dir.Len(), err)
	}
}
