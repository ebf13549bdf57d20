// Package watcher wraps fsnotify into a debounced, per-directory change
// notifier driven by whichever directory a tab currently has open.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kiorg/kiorg/internal/debug"
)

// DefaultDebounce is short enough that a burst of writes from an
// in-progress copy collapses into one refresh without feeling laggy to
// the user watching the directory update live.
const DefaultDebounce = 30 * time.Millisecond

// Watcher watches a set of directories and emits one debounced
// notification per directory once its event traffic goes quiet.
type Watcher struct {
	fs       *fsnotify.Watcher
	mu       sync.Mutex
	watching map[string]bool
	notify   chan string
	done     chan struct{}
	debounce time.Duration
}

// New creates a Watcher. debounce <= 0 selects DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		fs:       fsw,
		watching: make(map[string]bool),
		notify:   make(chan string, 16),
		done:     make(chan struct{}),
		debounce: debounce,
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	lastEvent := make(map[string]time.Time)
	pending := make(map[string]bool)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}
			changed := event.Name
			parent := filepath.Dir(changed)

			w.mu.Lock()
			switch {
			case w.watching[parent]:
				lastEvent[parent] = time.Now()
				pending[parent] = true
			case w.watching[changed]:
				lastEvent[changed] = time.Now()
				pending[changed] = true
			}
			w.mu.Unlock()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			debug.Log(debug.FS, "watcher error: %v", err)

		case now := <-ticker.C:
			for dir := range pending {
				if now.Sub(lastEvent[dir]) < w.debounce {
					continue
				}
				select {
				case w.notify <- dir:
				default:
				}
				delete(pending, dir)
				delete(lastEvent, dir)
			}
		}
	}
}

// Watch begins watching path. No-op if already watched.
func (w *Watcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watching[path] {
		return nil
	}
	if err := w.fs.Add(path); err != nil {
		return err
	}
	w.watching[path] = true
	return nil
}

// Unwatch stops watching path. No-op if not watched.
func (w *Watcher) Unwatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watching[path] {
		return nil
	}
	_ = w.fs.Remove(path)
	delete(w.watching, path)
	return nil
}

// Retarget swaps a tab off oldPath and onto newPath, the common case
// when navigation changes the directory a tab displays. It unwatches
// oldPath before watching newPath; if the second step fails, oldPath
// stays unwatched.
func (w *Watcher) Retarget(oldPath, newPath string) error {
	if oldPath == newPath {
		return nil
	}
	if oldPath != "" {
		if err := w.Unwatch(oldPath); err != nil {
			return err
		}
	}
	return w.Watch(newPath)
}

// Events returns the channel of directories that changed and should be
// refreshed.
func (w *Watcher) Events() <-chan string { return w.notify }

// Close shuts the watcher down.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
