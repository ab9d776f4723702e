// # cmd/jounce/app.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gobwas/glob"

	"jounce/internal/compiler"
	"jounce/internal/config"
	"jounce/internal/diag"
	"jounce/internal/watcher"
)

// App ties the pipeline to the filesystem: source discovery, per-file
// compilation, artifact output, watch-mode invalidation, and the optional
// TUI.
type App struct {
	cfg      *config.Config
	compiler *compiler.Compiler
	watcher  *watcher.Watcher

	mu           sync.Mutex
	fingerprints map[string]string // source path → last compiled fingerprint
	results      map[string]fileResult
	program      *tea.Program
}

type fileResult struct {
	Path      string
	Diags     []diag.Diagnostic
	Succeeded bool
	When      time.Time
}

func NewApp(cfg *config.Config) *App {
	return &App{
		cfg:          cfg,
		compiler:     compiler.New(cfg),
		fingerprints: map[string]string{},
		results:      map[string]fileResult{},
	}
}

func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	a.compiler.Close()
}

// Health feeds the observability server's /health endpoint.
func (a *App) Health(context.Context) map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	failing := 0
	for _, r := range a.results {
		if !r.Succeeded {
			failing++
		}
	}
	status := "up"
	stats := a.compiler.Stats()
	return map[string]any{
		"status":         status,
		"files":          len(a.results),
		"failing":        failing,
		"cache_hit_rate": stats.HitRate(),
	}
}

// DiscoverSources walks the configured roots for compilable files, honoring
// the exclude globs.
func (a *App) DiscoverSources() ([]string, error) {
	var dirGlobs, fileGlobs []glob.Glob
	for _, p := range a.cfg.Exclude.Dirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("bad exclude dir pattern %q: %w", p, err)
		}
		dirGlobs = append(dirGlobs, g)
	}
	for _, p := range a.cfg.Exclude.Files {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("bad exclude file pattern %q: %w", p, err)
		}
		fileGlobs = append(fileGlobs, g)
	}

	var sources []string
	for _, root := range a.cfg.SourceRoots {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				for _, g := range dirGlobs {
					if g.Match(path) || g.Match(filepath.Base(path)) {
						return filepath.SkipDir
					}
				}
				return nil
			}
			if !strings.HasSuffix(path, watcher.SourceExt) {
				return nil
			}
			for _, g := range fileGlobs {
				if g.Match(path) || g.Match(filepath.Base(path)) {
					return nil
				}
			}
			sources = append(sources, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(sources)
	return sources, nil
}

// CompileAll compiles every discovered source. Returns true when any file
// failed.
func (a *App) CompileAll(ctx context.Context) bool {
	sources, err := a.DiscoverSources()
	if err != nil {
		slog.Error("source discovery failed", "error", err)
		return true
	}
	if len(sources) == 0 {
		slog.Warn("no source files found", "roots", a.cfg.SourceRoots)
		return false
	}

	failed := false
	for _, path := range sources {
		if !a.compileFile(ctx, path) {
			failed = true
		}
	}
	return failed
}

// compileFile compiles one source file and writes its artifacts. Reports
// success.
func (a *App) compileFile(ctx context.Context, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("read source failed", "path", path, "error", err)
		return false
	}
	source := string(data)
	start := time.Now()

	art, err := a.compiler.Compile(ctx, source)

	result := fileResult{Path: path, Succeeded: err == nil, When: time.Now()}
	var derr *compiler.DiagnosticsError
	if errors.As(err, &derr) {
		result.Diags = derr.Diags
	}

	if err == nil {
		a.mu.Lock()
		a.fingerprints[path] = art.Fingerprint
		a.mu.Unlock()

		outDir := filepath.Join(a.cfg.OutputDir, baseName(path))
		if werr := compiler.WriteArtifacts(art, outDir); werr != nil {
			slog.Error("write artifacts failed", "path", path, "error", werr)
			result.Succeeded = false
		} else {
			slog.Info("compiled", "path", path, "build", art.BuildID,
				"out", outDir, "elapsed", time.Since(start))
		}
	} else if result.Diags == nil {
		slog.Error("compile failed", "path", path, "error", err)
	}

	if len(result.Diags) > 0 {
		a.printDiagnostics(path, source, result.Diags)
	}

	a.mu.Lock()
	a.results[path] = result
	a.mu.Unlock()
	a.notifyUI()
	return result.Succeeded
}

func (a *App) printDiagnostics(path, source string, diags []diag.Diagnostic) {
	a.mu.Lock()
	tui := a.program != nil
	a.mu.Unlock()
	if tui {
		return // the TUI renders diagnostics itself
	}
	var list diag.List
	list.Extend(diags)
	fmt.Fprintf(os.Stderr, "%s:\n%s", path, diag.RenderAll(&list, source))
}

// StartWatcher begins watch mode: changed files are invalidated by their
// previous fingerprint and recompiled.
func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.New(watcher.Options{
		Debounce:          a.cfg.Watch.Debounce,
		RebuildsPerSecond: a.cfg.Watch.RebuildsPerSecond,
		RebuildBurst:      a.cfg.Watch.RebuildBurst,
		ExcludeDirs:       a.cfg.Exclude.Dirs,
		ExcludeFiles:      a.cfg.Exclude.Files,
	}, func(paths []string) {
		a.onChanged(ctx, paths)
	})
	if err != nil {
		return err
	}
	a.watcher = w
	return w.Watch(ctx, a.cfg.SourceRoots)
}

func (a *App) onChanged(ctx context.Context, paths []string) {
	for _, path := range paths {
		a.mu.Lock()
		prev, had := a.fingerprints[path]
		a.mu.Unlock()
		if had {
			a.compiler.Invalidate(prev)
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.mu.Lock()
			delete(a.fingerprints, path)
			delete(a.results, path)
			a.mu.Unlock()
			slog.Info("source removed", "path", path)
			a.notifyUI()
			continue
		}
		a.compileFile(ctx, path)
	}
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), watcher.SourceExt)
}
