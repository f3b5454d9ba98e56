// # internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"docref/internal/config"
	"docref/internal/docstring"
	"docref/internal/history"
	"docref/internal/model"
	"docref/internal/parser"
	"docref/internal/render"
	"docref/internal/resolver"
	"docref/internal/scope"
	"docref/internal/shared/observability"
	"docref/internal/shared/util"
	"docref/internal/watcher"
)

// Update summarizes the last build for listeners such as the watch TUI.
type Update struct {
	BuildID     string
	Modules     int
	Entities    int
	Unresolved  uint64
	Diagnostics []model.Diagnostic
	Duration    time.Duration
}

// App wires the build pipeline: parse sources into the model, index
// scopes, resolve references, render pages, and record history.
type App struct {
	Config  *config.Config
	Parser  *parser.Parser
	builder *model.Builder

	mu     sync.Mutex
	m      *model.Model
	scopes *scope.Index
	res    *resolver.Resolver

	store     *history.Store
	limiter   *util.Limiter
	watcher   *watcher.Watcher
	obsServer *observability.Server

	shutdownTracing func(context.Context) error
	lastBuild       time.Time

	// OnUpdate, when set, receives a summary after every build.
	OnUpdate func(Update)
}

func New(cfg *config.Config) (*App, error) {
	p := parser.NewParser(parser.NewGrammarLoader())
	p.RegisterExtractor("python", &parser.PythonExtractor{})

	builder, err := model.NewBuilder(p, cfg.Roots, model.BuilderOptions{
		ExcludePatterns: cfg.Exclude.Patterns,
		ExcludeDirs:     cfg.Exclude.Dirs,
		ExcludeFiles:    cfg.Exclude.Files,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Parser:  p,
		builder: builder,
		limiter: util.NewLimiter(cfg.Watch.RebuildsPerSecond, 1),
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open build history: %w", err)
		}
		a.store = store
	}
	return a, nil
}

// Start brings up tracing and the observability endpoint when
// configured.
func (a *App) Start(ctx context.Context) error {
	shutdown, err := observability.SetupTracing(ctx, a.Config.Observability.OTLPEndpoint)
	if err != nil {
		return err
	}
	a.shutdownTracing = shutdown

	if a.Config.Observability.Listen != "" {
		a.obsServer = observability.NewServer(a.Config.Observability.Listen, a.Health)
		if err := a.obsServer.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// InitialBuild parses every source root, resolves references and writes
// the full documentation site.
func (a *App) InitialBuild(ctx context.Context) error {
	ctx, span := observability.Tracer.Start(ctx, "initial_build")
	defer span.End()

	start := time.Now()

	buildStart := time.Now()
	m, err := a.builder.Build(ctx)
	if err != nil {
		return err
	}
	observability.BuildPhaseDuration.WithLabelValues("build").Observe(time.Since(buildStart).Seconds())

	a.mu.Lock()
	a.m = m
	a.scopes = scope.NewIndex(m)
	a.res = resolver.New(a.scopes)
	a.mu.Unlock()

	if err := a.renderSite(ctx); err != nil {
		return err
	}

	a.finishBuild(m, time.Since(start))
	return nil
}

// ProcessChanged re-parses the changed files, replaces their modules in
// the model and rewrites the site. Bursts are throttled by the rebuild
// limiter.
func (a *App) ProcessChanged(ctx context.Context, paths []string) {
	if err := a.limiter.Wait(ctx, 1); err != nil {
		return
	}

	ctx, span := observability.Tracer.Start(ctx, "incremental_build")
	defer span.End()

	start := time.Now()
	slog.Info("detected changes", "count", len(paths))

	a.mu.Lock()
	m := a.m
	for _, path := range paths {
		if err := a.builder.Rebuild(m, path); err != nil {
			slog.Warn("failed to rebuild module", "path", path, "error", err)
		}
	}
	// Cross-module state (imports, inheritance, links) may shift with
	// any edit, so cached scopes are dropped wholesale.
	a.scopes.Reset(m)
	a.mu.Unlock()

	if err := a.renderSite(ctx); err != nil {
		slog.Error("failed to render site", "error", err)
	}

	a.finishBuild(m, time.Since(start))
}

func (a *App) renderSite(ctx context.Context) error {
	_, span := observability.Tracer.Start(ctx, "render")
	defer span.End()

	resolveStart := time.Now()
	a.res.ResetStats()
	a.res.ResolveAnnotations()
	observability.BuildPhaseDuration.WithLabelValues("resolve").Observe(time.Since(resolveStart).Seconds())

	renderStart := time.Now()
	renderer := render.NewRenderer(a.m, a.res, docstring.Style(a.Config.Docstring.Style))
	site := render.NewSite(renderer, a.Config.OutputDir)
	if err := site.WriteAll(); err != nil {
		return err
	}
	observability.BuildPhaseDuration.WithLabelValues("render").Observe(time.Since(renderStart).Seconds())
	return nil
}

func (a *App) finishBuild(m *model.Model, duration time.Duration) {
	a.lastBuild = time.Now().UTC()

	resolved, external, unresolved := a.res.Stats()

	if a.store != nil {
		snap := history.Snapshot{
			BuildID:         m.BuildID,
			Timestamp:       a.lastBuild,
			ModuleCount:     m.ModuleCount(),
			EntityCount:     m.EntityCount(),
			ResolvedCount:   int(resolved),
			ExternalCount:   int(external),
			UnresolvedCount: int(unresolved),
			DiagnosticCount: len(m.Diagnostics),
			DurationMS:      duration.Milliseconds(),
		}
		if err := a.store.SaveSnapshot(snap); err != nil {
			slog.Warn("failed to save build snapshot", "error", err)
		}
	}

	slog.Info("build complete",
		"modules", m.ModuleCount(),
		"entities", m.EntityCount(),
		"unresolved", unresolved,
		"diagnostics", len(m.Diagnostics),
		"duration", duration)

	if a.OnUpdate != nil {
		a.OnUpdate(Update{
			BuildID:     m.BuildID,
			Modules:     m.ModuleCount(),
			Entities:    m.EntityCount(),
			Unresolved:  unresolved,
			Diagnostics: m.Diagnostics,
			Duration:    duration,
		})
	}
}

// Model returns the current source model.
func (a *App) Model() *model.Model {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.m
}

// Health serves the /health endpoint.
func (a *App) Health(ctx context.Context) observability.HealthStatus {
	a.mu.Lock()
	m := a.m
	a.mu.Unlock()

	status := observability.HealthStatus{Status: "up"}
	if m == nil {
		status.Status = "starting"
		return status
	}
	status.Entities = m.EntityCount()
	status.Modules = m.ModuleCount()
	if !a.lastBuild.IsZero() {
		status.LastBuild = a.lastBuild.Format(time.RFC3339)
	}
	return status
}

// StartWatcher begins watching the source roots; changes flow into
// ProcessChanged.
func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		func(paths []string) { a.ProcessChanged(ctx, paths) },
	)
	if err != nil {
		return err
	}
	a.watcher = w
	return w.Watch(a.Config.Roots)
}

func (a *App) Stop(ctx context.Context) error {
	var firstErr error
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.obsServer != nil {
		if err := a.obsServer.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
