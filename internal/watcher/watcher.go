// # internal/watcher/watcher.go
//
// Watch mode: recursive fsnotify watch over the source roots, glob-based
// exclusion, debounced change batches, and a token-bucket limiter so editor
// save storms cannot trigger a rebuild per keystroke.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"golang.org/x/time/rate"

	"jounce/internal/shared/observability"
)

// SourceExt is the extension of compilable source files.
const SourceExt = ".jnc"

type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	debounce     time.Duration
	limiter      *rate.Limiter
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	onChange     func([]string)
	callbackMu   sync.Mutex

	pending   map[string]struct{}
	pendingMu sync.Mutex
	timer     *time.Timer
}

type Options struct {
	Debounce          time.Duration
	RebuildsPerSecond float64
	RebuildBurst      int
	ExcludeDirs       []string
	ExcludeFiles      []string
}

// New creates a watcher that calls onChange with batches of changed source
// paths. Batches are debounced and rate limited; onChange never runs
// concurrently with itself.
func New(opts Options, onChange func([]string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	burst := opts.RebuildBurst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(opts.RebuildsPerSecond)
	if limit <= 0 {
		limit = rate.Inf
	}

	w := &Watcher{
		fsWatcher: fsw,
		debounce:  opts.Debounce,
		limiter:   rate.NewLimiter(limit, burst),
		onChange:  onChange,
		pending:   make(map[string]struct{}),
	}

	for _, pattern := range opts.ExcludeDirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		w.excludeDirs = append(w.excludeDirs, g)
	}
	for _, pattern := range opts.ExcludeFiles {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		w.excludeFiles = append(w.excludeFiles, g)
	}
	return w, nil
}

// Watch starts watching the roots recursively and runs the event loop until
// ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, roots []string) error {
	for _, root := range roots {
		if err := w.watchRecursive(root); err != nil {
			return err
		}
	}
	go w.run(ctx)
	return nil
}

func (w *Watcher) Close() error { return w.fsWatcher.Close() }

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if w.excludedDir(path) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.excludedDir(event.Name) {
						if err := w.watchRecursive(event.Name); err != nil {
							slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
						}
					}
					continue
				}
			}

			if !w.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// relevant filters to compilable sources that are not excluded.
func (w *Watcher) relevant(path string) bool {
	if !strings.HasSuffix(path, SourceExt) {
		return false
	}
	for _, g := range w.excludeFiles {
		if g.Match(path) || g.Match(filepath.Base(path)) {
			return false
		}
	}
	return !w.excludedDir(filepath.Dir(path))
}

func (w *Watcher) excludedDir(path string) bool {
	for _, g := range w.excludeDirs {
		if g.Match(path) || g.Match(filepath.Base(path)) {
			return true
		}
	}
	return false
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}

	// Rebuild storms wait their turn rather than being dropped: every saved
	// change eventually compiles.
	if !w.limiter.Allow() {
		observability.RebuildsThrottledTotal.Inc()
		r := w.limiter.Reserve()
		time.Sleep(r.Delay())
	}

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}
