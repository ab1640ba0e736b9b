package assuan

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sammck/gpg-bridge/bridge/logging"
)

// Watcher caches the last successfully parsed descriptor for a path and
// invalidates the cache on any filesystem event affecting it, so a burst
// of connections doesn't re-read the descriptor file on every accept when
// the agent hasn't rotated its port. It watches the containing directory,
// not the file itself, because the agent rewrites the descriptor via an
// atomic rename which a direct file watch can miss.
//
// A watcher hiccup (a missed event or a failed watch) never serves a
// stale cache past the read that discovers the problem: Read always
// falls back to a fresh read when no cached value exists, and callers
// that hit a connect failure against a cached port must call Invalidate
// before retrying, per the per-connection re-read requirement.
type Watcher struct {
	path string
	log  *logging.Logger

	mu     sync.Mutex
	cached *Descriptor

	watcher *fsnotify.Watcher
}

// NewWatcher starts watching the directory containing path. If the
// underlying fsnotify watch cannot be established, the Watcher still
// works correctly (every Read is simply a fresh read; no error is
// returned, since caching is an optimization, not a correctness
// requirement).
func NewWatcher(path string, log *logging.Logger) *Watcher {
	w := &Watcher{path: path, log: log}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warnf("assuan watcher: fsnotify unavailable, disabling descriptor cache: %v", err)
		return w
	}
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		log.Warnf("assuan watcher: watching %s failed, disabling descriptor cache: %v", dir, err)
		fw.Close()
		return w
	}
	w.watcher = fw
	go w.loop()
	return w
}

func (w *Watcher) loop() {
	base := filepath.Base(w.path)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) == base {
				w.Invalidate()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnf("assuan watcher error, invalidating cache: %v", err)
			w.Invalidate()
		}
	}
}

// Invalidate drops the cached descriptor, forcing the next Read to hit
// the filesystem.
func (w *Watcher) Invalidate() {
	w.mu.Lock()
	w.cached = nil
	w.mu.Unlock()
}

// Read returns the cached descriptor if present, else performs a fresh
// read and caches the result (only while the fsnotify watch is active).
func (w *Watcher) Read() (*Descriptor, error) {
	w.mu.Lock()
	if w.cached != nil {
		d := w.cached
		w.mu.Unlock()
		return d, nil
	}
	w.mu.Unlock()

	d, err := ReadDescriptor(w.path)
	if err != nil {
		return nil, err
	}
	if w.watcher == nil {
		return d, nil
	}
	w.mu.Lock()
	w.cached = d
	w.mu.Unlock()
	return d, nil
}

// Close stops the underlying fsnotify watch, if any.
func (w *Watcher) Close() error {
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
