// # internal/compiler/compiler.go
//
// Pipeline orchestration: source text in, Artifact out. Stages run in fixed
// order — lex, parse, analyze, transform, generate — with diagnostics
// accumulating across all of them. Artifacts are produced only when zero
// error-severity diagnostics were recorded; warnings never block. Results
// are cached by source fingerprint, optionally backed by the sqlite store.
package compiler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"jounce/internal/cache"
	"jounce/internal/codegen"
	"jounce/internal/config"
	"jounce/internal/diag"
	"jounce/internal/lexer"
	"jounce/internal/parser"
	"jounce/internal/reactive"
	"jounce/internal/sema"
	"jounce/internal/shared/observability"
)

// Artifact is one successful compilation: both target scripts, the
// stylesheet, and identity for caching and tracing.
type Artifact struct {
	ClientJS    string
	ServerJS    string
	CSS         string
	Fingerprint string
	BuildID     string
	GeneratedAt time.Time
}

// DiagnosticsError carries the diagnostics of a failed compilation through
// the cache layer, which never stores failures.
type DiagnosticsError struct {
	Diags []diag.Diagnostic
}

func (e *DiagnosticsError) Error() string {
	n := 0
	for _, d := range e.Diags {
		if d.Severity == diag.Error {
			n++
		}
	}
	return fmt.Sprintf("compilation failed with %d error(s)", n)
}

type Compiler struct {
	cfg   *config.Config
	cache *cache.Cache[Artifact]
	store *cache.Store
}

// New builds a compiler from configuration. The persistent store is opened
// lazily tolerant: a broken cache file degrades to in-memory caching.
func New(cfg *config.Config) *Compiler {
	c := &Compiler{
		cfg:   cfg,
		cache: cache.New[Artifact](cfg.Cache.MaxEntries),
	}
	if cfg.Cache.Path != "" {
		store, err := cache.OpenStore(cfg.Cache.Path)
		if err != nil {
			slog.Warn("persistent cache unavailable", "path", cfg.Cache.Path, "error", err)
		} else {
			c.store = store
		}
	}
	return c
}

func (c *Compiler) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

// Fingerprint is the cache key for a source text.
func Fingerprint(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Compile runs the pipeline for one source text, consulting the cache first.
// On failure the returned error is a *DiagnosticsError and the artifact is
// zero; diagnostics for successful builds (warnings) are not returned here —
// use CompileUncached when they are needed.
func (c *Compiler) Compile(ctx context.Context, source string) (Artifact, error) {
	fp := Fingerprint(source)
	before := c.cache.Stats()
	art, err := c.cache.GetOrCompile(fp, func() (Artifact, error) {
		if c.store != nil {
			if rec, err := c.store.Load(fp); err == nil {
				slog.Debug("artifact loaded from persistent cache", "fingerprint", fp[:12])
				return recordArtifact(rec), nil
			} else if !errors.Is(err, cache.ErrNotFound) {
				slog.Warn("persistent cache read failed", "error", err)
			}
		}
		art, diags := c.run(ctx, source, fp)
		if art == nil {
			return Artifact{}, &DiagnosticsError{Diags: diags}
		}
		if c.store != nil {
			if err := c.store.Save(artifactRecord(*art)); err != nil {
				slog.Warn("persistent cache write failed", "error", err)
			}
		}
		return *art, nil
	})
	after := c.cache.Stats()
	observability.CacheHitsTotal.Add(float64(after.Hits - before.Hits))
	observability.CacheMissesTotal.Add(float64(after.Misses - before.Misses))
	c.syncCacheMetrics()
	return art, err
}

// CompileUncached runs the full pipeline bypassing the cache and returns all
// diagnostics, including warnings on success.
func (c *Compiler) CompileUncached(ctx context.Context, source string) (*Artifact, []diag.Diagnostic) {
	return c.run(ctx, source, Fingerprint(source))
}

// Invalidate drops the cached artifact for a source fingerprint, in memory
// and in the persistent store.
func (c *Compiler) Invalidate(fingerprint string) {
	c.cache.Invalidate(fingerprint)
	observability.CacheInvalidationsTotal.Inc()
	if c.store != nil {
		if err := c.store.Delete(fingerprint); err != nil {
			slog.Warn("persistent cache delete failed", "error", err)
		}
	}
	c.syncCacheMetrics()
}

// Stats returns the in-memory cache counters.
func (c *Compiler) Stats() cache.Stats { return c.cache.Stats() }

// run is the uncached pipeline. It returns a nil artifact when any
// error-severity diagnostic was recorded.
func (c *Compiler) run(ctx context.Context, source, fp string) (*Artifact, []diag.Diagnostic) {
	ctx, span := observability.Tracer.Start(ctx, "compiler.run")
	defer span.End()

	var list diag.List

	lStart := time.Now()
	tokens, ld := lexer.Lex(source)
	observeStage(ctx, "lex", lStart)
	list.Extend(ld)

	pStart := time.Now()
	mod, pd := parser.Parse(tokens)
	observeStage(ctx, "parse", pStart)
	list.Extend(pd)

	sStart := time.Now()
	info, sd := sema.Analyze(mod, sema.Options{
		SuggestionThreshold: c.cfg.Diagnostics.SuggestionDistance,
	})
	observeStage(ctx, "analyze", sStart)
	list.Extend(sd)

	if list.HasErrors() {
		return c.finish(nil, &list)
	}

	tStart := time.Now()
	res, td := reactive.Transform(mod, info)
	observeStage(ctx, "transform", tStart)
	list.Extend(td)
	if list.HasErrors() {
		return c.finish(nil, &list)
	}

	gStart := time.Now()
	styles, cd := codegen.BuildStyles(mod)
	list.Extend(cd)
	if list.HasErrors() {
		observeStage(ctx, "generate", gStart)
		return c.finish(nil, &list)
	}
	clientJS := codegen.Generate(mod, info, res, styles, codegen.TargetClient)
	serverJS := codegen.Generate(mod, info, res, styles, codegen.TargetServer)
	css := styles.CSS()
	observeStage(ctx, "generate", gStart)

	art := &Artifact{
		ClientJS:    clientJS,
		ServerJS:    serverJS,
		CSS:         css,
		Fingerprint: fp,
		BuildID:     uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}
	observability.ArtifactBytes.WithLabelValues("client").Set(float64(len(clientJS)))
	observability.ArtifactBytes.WithLabelValues("server").Set(float64(len(serverJS)))
	observability.ArtifactBytes.WithLabelValues("css").Set(float64(len(css)))
	return c.finish(art, &list)
}

func (c *Compiler) finish(art *Artifact, list *diag.List) (*Artifact, []diag.Diagnostic) {
	observability.DiagnosticsTotal.WithLabelValues("error").Add(float64(list.ErrorCount()))
	observability.DiagnosticsTotal.WithLabelValues("warning").Add(float64(list.WarnCount()))
	if art == nil {
		observability.CompilesTotal.WithLabelValues("failed").Inc()
	} else {
		observability.CompilesTotal.WithLabelValues("ok").Inc()
	}
	return art, list.All()
}

func (c *Compiler) syncCacheMetrics() {
	observability.CacheEntries.Set(float64(c.cache.Len()))
}

func observeStage(ctx context.Context, stage string, start time.Time) {
	_, span := observability.Tracer.Start(ctx, "compiler."+stage)
	span.End()
	observability.CompileDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func recordArtifact(rec cache.Record) Artifact {
	return Artifact{
		ClientJS:    rec.ClientJS,
		ServerJS:    rec.ServerJS,
		CSS:         rec.CSS,
		Fingerprint: rec.Fingerprint,
		BuildID:     rec.BuildID,
		GeneratedAt: rec.GeneratedAt,
	}
}

func artifactRecord(art Artifact) cache.Record {
	return cache.Record{
		Fingerprint: art.Fingerprint,
		ClientJS:    art.ClientJS,
		ServerJS:    art.ServerJS,
		CSS:         art.CSS,
		BuildID:     art.BuildID,
		GeneratedAt: art.GeneratedAt,
	}
}

// WriteArtifacts writes the artifact files plus the HTML entry document into
// dir.
func WriteArtifacts(art Artifact, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %q: %w", dir, err)
	}
	files := map[string]string{
		"client.js":  art.ClientJS,
		"server.js":  art.ServerJS,
		"app.css":    art.CSS,
		"index.html": EntryHTML(art),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %q: %w", path, err)
		}
	}
	return nil
}

// EntryHTML assembles the HTML entry document referencing the artifact's
// stylesheet and client script.
func EntryHTML(art Artifact) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Jounce App</title>
  <link rel="stylesheet" href="app.css">
  <meta name="jounce-build" content="%s">
</head>
<body>
  <script src="client.js"></script>
</body>
</html>
`, art.BuildID)
}
