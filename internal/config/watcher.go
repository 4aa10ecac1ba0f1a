package config

import (
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/fresh-editor/fresh/internal/debug"
)

// Watcher holds the live Config behind an atomic pointer so a reload
// swaps the whole struct in one step: readers via Current() never
// observe a torn read of a config file mid-parse, the same guarantee
// gastrolog's cert.Manager gives its TLS certificate swap.
type Watcher struct {
	path string
	cur  atomic.Pointer[Config]

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	stop    chan struct{}
}

// NewWatcher loads path (or falls back to Default()) and returns a
// Watcher holding it. Call Start to begin watching for on-disk changes.
func NewWatcher(path string) *Watcher {
	w := &Watcher{path: path}
	cfg := LoadOrDefault(path)
	w.cur.Store(&cfg)
	return w
}

// Current returns the presently active configuration.
func (w *Watcher) Current() Config {
	return *w.cur.Load()
}

// Reload re-reads the config file and swaps it in, regardless of
// whether a file-system watch is active; used both by the watcher
// goroutine and by an explicit "reload config" command.
func (w *Watcher) Reload() {
	cfg := LoadOrDefault(w.path)
	w.cur.Store(&cfg)
	debug.Log("config: reloaded %s", w.path)
}

// Start begins watching the config file itself for changes. A
// failure to start the watcher (e.g. unsupported platform) is logged and
// otherwise ignored - the editor still runs, it just won't pick up
// edits automatically.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		debug.Log("config: fsnotify start failed: %v", err)
		return
	}
	if err := watcher.Add(w.path); err != nil {
		debug.Log("config: failed to watch %s: %v", w.path, err)
		watcher.Close()
		return
	}

	w.watcher = watcher
	w.stop = make(chan struct{})
	go w.watchLoop(watcher, w.stop)
}

func (w *Watcher) watchLoop(watcher *fsnotify.Watcher, stop chan struct{}) {
	defer watcher.Close()
	for {
		select {
		case <-stop:
			return
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			debug.Log("config: watcher error: %v", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.Reload()
		}
	}
}

// Stop halts the file-system watch; Current keeps returning the
// last-loaded configuration.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		close(w.stop)
		w.stop = nil
	}
	w.watcher = nil
}
