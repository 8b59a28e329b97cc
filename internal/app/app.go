package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vk/initr/internal/config"
	"github.com/vk/initr/internal/ctxlog"
	"github.com/vk/initr/internal/dataconf"
	"github.com/vk/initr/internal/fetch"
	"github.com/vk/initr/internal/hcl"
	"github.com/vk/initr/internal/registry"
	"github.com/vk/initr/internal/scriptcache"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	runID      string
	config     *Config
	registry   *registry.Registry
	model      *config.Model
	metricsReg *prometheus.Registry
	metrics    *scriptcache.Metrics
	journal    *fetch.Journal
	fetcher    scriptcache.Fetcher
	httpServer *http.Server
	status     *status
}

// Option customizes an App.
type Option func(*App)

// WithFetcher replaces the disk and HTTP script fetcher.
func WithFetcher(f scriptcache.Fetcher) Option {
	return func(a *App) { a.fetcher = f }
}

// Loaders returns the manifest loaders for every supported format.
func Loaders() config.Loaders {
	yaml := dataconf.NewYAMLLoader()
	return config.Loaders{
		".hcl":  hcl.NewLoader(),
		".yaml": yaml,
		".yml":  yaml,
		".toml": dataconf.NewTOMLLoader(),
	}
}

// NewApp is the constructor for the main application. It loads the manifest
// and returns an App with its own isolated logger, registry and metrics. When
// no modules are given the core modules are registered.
func NewApp(outW io.Writer, cfg *Config, modules []registry.Module, opts ...Option) (*App, error) {
	runID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW).With("run_id", runID)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := Loaders().Load(ctx, cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	logger.Debug("Manifest loaded and translated into unified model.", "dependencies", len(model.Dependencies))

	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	reg := registry.New(modules...)
	plugins, globals, mods := reg.Names()
	logger.Debug("All Go modules registered.", "count", len(modules), "plugins", plugins, "globals", globals, "app_modules", mods)

	metricsReg := prometheus.NewRegistry()
	metricsReg.MustRegister(collectors.NewGoCollector())

	a := &App{
		ctx:        ctx,
		outW:       outW,
		logger:     logger,
		runID:      runID,
		config:     cfg,
		registry:   reg,
		model:      model,
		metricsReg: metricsReg,
		metrics:    scriptcache.NewMetrics(metricsReg),
		journal:    &fetch.Journal{},
		status:     &status{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.fetcher == nil {
		a.fetcher = fetch.New(nil, a.scriptRoot(), a.journal)
	}
	return a, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// RunID identifies this App in logs and notifications.
func (a *App) RunID() string {
	return a.runID
}

// settings merges the manifest settings with the configured overrides.
func (a *App) settings() config.Settings {
	s := a.model.Settings
	if a.config.BasePath != nil {
		s.BasePath = *a.config.BasePath
	}
	if a.config.Dev != nil {
		s.Dev = *a.config.Dev
	}
	if a.config.DisableScriptCache != nil {
		s.DisableScriptCache = *a.config.DisableScriptCache
	}
	if a.config.Timeout != nil {
		s.Timeout = *a.config.Timeout
	}
	return s
}

func (a *App) scriptRoot() string {
	if a.config.ScriptRoot != "" {
		return a.config.ScriptRoot
	}
	if a.config.PagePath != "" {
		return filepath.Dir(a.config.PagePath)
	}
	return filepath.Dir(a.config.ManifestPath)
}
