// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It recursively watches a project directory, skips dependency and build output
// directories, and coalesces bursts of events per file (editors often write
// several times per save) into one callback after a quiet period.
package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event for a path before
// onChange fires.
const DefaultDebounce = 50 * time.Millisecond

// defaultIgnoreDirs lists directories skipped when no WithIgnoreDir option is given.
var defaultIgnoreDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".jstree":      true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	".next":        true,
	".idea":        true,
	".vscode":      true,
}

// Editor droppings that never trigger onChange.
var ignoreSuffixes = []string{".swp", ".swx", "~", ".DS_Store", ".tmp"}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the per-path quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithIgnoreDir replaces the directory filter. It receives a base name.
func WithIgnoreDir(fn func(name string) bool) Option {
	return func(w *Watcher) { w.ignoreDir = fn }
}

// WithErrorHandler receives errors reported by fsnotify.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw        *fsnotify.Watcher
	done      chan struct{}
	debounce  time.Duration
	ignoreDir func(string) bool
	onError   func(error)

	mu       sync.Mutex
	stopped  bool
	pending  map[string]*time.Timer
	inflight sync.WaitGroup
}

// NewWatcher creates a new file system watcher.
func NewWatcher(opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fw:        fw,
		done:      make(chan struct{}),
		debounce:  DefaultDebounce,
		ignoreDir: func(name string) bool { return defaultIgnoreDirs[name] },
		pending:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch starts monitoring projectPath recursively.
// onChange is called with the absolute path of each changed file.
func (w *Watcher) Watch(projectPath string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absPath); err != nil {
		return err
	}
	if err := w.addTree(absPath, true); err != nil {
		return err
	}

	go w.loop(absPath, onChange)
	return nil
}

// addTree adds dir and every non-ignored subdirectory to the watch list.
func (w *Watcher) addTree(dir string, isRoot bool) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if isRoot && path == dir {
				return err
			}
			return nil // skip inaccessible paths
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.ignoreDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
}

func (w *Watcher) loop(root string, onChange func(string)) {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			path := event.Name

			// New directories (mkdir -p, mv, git checkout) join the watch list, and
			// files that arrived with them are reported.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					if !w.ignoreDir(info.Name()) && !w.shouldIgnorePath(root, path) {
						_ = w.addTree(path, false)
						w.scheduleTree(root, path, onChange)
					}
					continue
				}
			}

			// A directory moved or deleted away leaves a stale watch behind.
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				_ = w.fw.Remove(path)
			}

			if w.shouldIgnorePath(root, path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.schedule(path, onChange)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}

		case <-w.done:
			return
		}
	}
}

// scheduleTree reports every non-ignored file below dir.
func (w *Watcher) scheduleTree(root, dir string, onChange func(string)) {
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && w.ignoreDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.shouldIgnorePath(root, path) {
			w.schedule(path, onChange)
		}
		return nil
	})
}

// schedule (re)arms the per-path timer so onChange fires once per burst.
func (w *Watcher) schedule(path string, onChange func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.stopped {
			w.mu.Unlock()
			return
		}
		delete(w.pending, path)
		w.inflight.Add(1)
		w.mu.Unlock()

		defer w.inflight.Done()
		onChange(path)
	})
}

// Stop ends monitoring and releases all resources. It waits for callbacks
// already running, so it must not be called from inside onChange.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	close(w.done)
	w.mu.Unlock()

	w.inflight.Wait()
	return w.fw.Close()
}

// shouldIgnorePath returns true if the file path should not trigger onChange.
func (w *Watcher) shouldIgnorePath(root, path string) bool {
	base := filepath.Base(path)
	for _, suffix := range ignoreSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}

	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if w.ignoreDir(part) {
			return true
		}
	}
	return false
}
