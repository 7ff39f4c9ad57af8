// Package watch re-runs a report whenever the snapshot file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SnapshotWatcher watches a single snapshot file using fsnotify. Editors
// often replace the file on save, so the parent directory is watched and
// events are filtered by name.
type SnapshotWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
}

// NewSnapshotWatcher creates a watcher for the given file. onChange fires
// after the debounce window passes with no further writes.
func NewSnapshotWatcher(path string, debounce time.Duration, onChange func()) *SnapshotWatcher {
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	return &SnapshotWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
	}
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *SnapshotWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	debouncer := newDebouncer(w.debounce, w.onChange)
	defer debouncer.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename) {
				debouncer.trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// debouncer coalesces rapid save events into a single callback.
type debouncer struct {
	window   time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
}

func newDebouncer(window time.Duration, callback func()) *debouncer {
	return &debouncer{window: window, callback: callback}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.callback)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
}
