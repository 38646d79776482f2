package recommender

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 2 * time.Second

// Watcher reloads the engine's index when the catalog file changes on disk.
// Reloads are debounced; a failed reload keeps the previous snapshot.
type Watcher struct {
	engine  *Engine
	watcher *fsnotify.Watcher
	path    string
	log     *slog.Logger
}

// NewWatcher watches the directory containing path. Watching the directory
// instead of the file survives atomic rename-based rewrites.
func NewWatcher(engine *Engine, path string, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("recommender: watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("recommender: watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{engine: engine, watcher: fsw, path: path, log: log}, nil
}

// Run blocks until ctx is done, reloading on writes to the catalog file.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	reload := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return
		case <-reload:
			if err := w.engine.Reload(ctx); err != nil {
				w.log.Error("catalog reload failed, keeping previous index", "error", err)
			}
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("catalog watcher error", "error", err)
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
