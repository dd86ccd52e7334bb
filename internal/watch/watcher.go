// Package watch re-ingests documents as they change on disk.
//
// A Watcher registers an fsnotify watch on the ingest root and every
// subdirectory beneath it, debounces the event bursts editors produce,
// and maps the surviving events onto the ingest service: creates and
// writes re-ingest the file, removes and renames delete its document.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quarry-labs/quarry-cli/internal/core/ports/driving"
	"github.com/quarry-labs/quarry-cli/internal/logger"
)

// defaultDebounce is how long a path must stay quiet before its last
// event is acted on. Editors emit several writes per save.
const defaultDebounce = 500 * time.Millisecond

// Watcher watches a directory tree and keeps the index in sync.
type Watcher struct {
	root     string
	ingest   driving.IngestService
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the per-path quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New creates a watcher for root. The root must exist; subdirectories
// are discovered and watched recursively when Run starts.
func New(root string, ingest driving.IngestService, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", root)
	}

	w := &Watcher{
		root:     abs,
		ingest:   ingest,
		debounce: defaultDebounce,
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches until ctx is cancelled. Event handling errors are logged
// and never stop the loop; only a failed watcher setup returns early.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.watchTree(fsw, w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}

	logger.Info("Watching %s", w.root)

	for {
		select {
		case <-ctx.Done():
			w.drainPending()
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// handleEvent routes one fsnotify event. Directory creates extend the
// watch; file creates and writes are debounced into re-ingests;
// removes and renames delete immediately (the path is already gone,
// there is nothing to coalesce).
func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if isHidden(filepath.Base(path)) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.watchTree(fsw, path); err != nil {
				logger.Warn("Failed to watch new directory %s: %v", path, err)
			}
			return
		}
		w.scheduleIngest(ctx, path)
	case event.Op.Has(fsnotify.Write):
		w.scheduleIngest(ctx, path)
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.cancelPending(path)
		w.remove(ctx, path)
	}
}

// scheduleIngest (re)arms the debounce timer for path. The ingest runs
// once the path has been quiet for the full debounce window.
func (w *Watcher) scheduleIngest(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			return
		}

		logger.Debug("Change detected: %s", path)
		if err := w.ingest.IngestFile(ctx, w.root, path); err != nil {
			logger.Warn("Failed to ingest %s: %v", path, err)
		}
	})
}

// cancelPending drops any scheduled ingest for path.
func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
}

// drainPending stops every outstanding timer on shutdown.
func (w *Watcher) drainPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// remove deletes the document indexed for path. Paths that were never
// ingested are a no-op; directories cannot be told apart from files
// once removed, so the URI lookup decides.
func (w *Watcher) remove(ctx context.Context, path string) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		logger.Debug("Ignoring remove outside root: %s", path)
		return
	}
	uri := filepath.ToSlash(rel)

	logger.Debug("Removal detected: %s", uri)
	if err := w.ingest.Remove(ctx, uri); err != nil {
		logger.Warn("Failed to remove %s: %v", uri, err)
	}
}

// watchTree registers dir and every non-hidden subdirectory.
func (w *Watcher) watchTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("Walk error at %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return fs.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("add watch %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether a file or directory name is dot-prefixed.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
