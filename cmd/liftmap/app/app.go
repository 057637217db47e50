// Package app provides the application context and dependency management
// for the liftmap CLI: configuration, logging, the lazily opened store and
// the pipeline client, and their shutdown.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/liftmap"
	"github.com/agentstation/liftmap/cmd/application"
	"github.com/agentstation/liftmap/internal/cache"
	"github.com/agentstation/liftmap/internal/cmd/output"
	"github.com/agentstation/liftmap/internal/config"
	"github.com/agentstation/liftmap/internal/embedded"
	"github.com/agentstation/liftmap/internal/metrics"
	"github.com/agentstation/liftmap/internal/store/sqlite"
	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/constants"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/sources"
	"github.com/agentstation/liftmap/pkg/store"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// Flags holds the global command-line flags.
type Flags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
	Format     string
	LogLevel   string
	DBPath     string
}

// App represents the liftmap application with all its dependencies.
type App struct {
	build application.BuildInfo

	config  *config.Config
	flags   Flags
	logger  *zerolog.Logger
	metrics *metrics.Recorder

	// Client and store (lazy-initialized, singleton)
	mu     sync.RWMutex
	client liftmap.Client
	store  store.Store
}

// New loads the configuration and builds the logger. The store is not
// opened until a command asks for the client.
func New(build application.BuildInfo, opts ...Option) (*App, error) {
	app := &App{
		build:   build,
		metrics: metrics.New(),
	}

	cfg, err := config.Load("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = cfg

	logger := NewLogger(cfg, app.flags)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Build returns the version information the binary was linked with.
func (a *App) Build() application.BuildInfo {
	return a.build
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Metrics returns the run metrics recorder.
func (a *App) Metrics() *metrics.Recorder {
	return a.metrics
}

// OutputFormat returns the --format flag, or table on a terminal and JSON otherwise.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.flags.Format))
}

// Client returns the pipeline client, opening the store on first use.
func (a *App) Client() (liftmap.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	if a.store == nil {
		st, err := a.openStore()
		if err != nil {
			return nil, err
		}
		a.store = st
	}

	c, err := liftmap.New(a.clientOptions(a.store)...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	a.registerHooks(c)

	a.client = c
	return c, nil
}

// Shutdown writes the metrics textfile when one is configured and closes the store.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if path := a.config.MetricsFile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.logger.Error().Err(err).Str("path", path).Msg("Failed to write metrics")
		}
	}

	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	a.client = nil
	if err != nil {
		return errors.WrapPersistence("close", err)
	}
	return nil
}

// openStore opens the configured database, creating its directory if needed.
func (a *App) openStore() (store.Store, error) {
	path, err := a.config.ResolvedDBPath()
	if err != nil {
		return nil, err
	}
	st, err := sqlite.Open(context.Background(), path, sqlite.WithBusyTimeout(constants.SQLiteBusyTimeout))
	if err != nil {
		return nil, errors.WrapResource("open", "store", path, err)
	}
	a.logger.Debug().Str("path", path).Msg("Store opened")
	return st, nil
}

// clientOptions constructs client options from the app configuration.
func (a *App) clientOptions(st store.Store) []liftmap.Option {
	cfg := a.config

	httpOpts := []sources.HTTPOption{
		sources.WithTimeout(cfg.HTTPTimeout),
		sources.WithCache(cache.New(cfg.CacheTTL, constants.CacheCleanupInterval)),
	}
	chain := []sources.Source{
		sources.NewHTTPSource(sources.PrimaryID, cfg.PrimaryURL, httpOpts...),
		sources.NewHTTPSource(sources.FallbackID, cfg.FallbackURL, httpOpts...),
		sources.NewEmbeddedSource(sources.EmbeddedID, embedded.Payload()),
	}

	return []liftmap.Option{
		liftmap.WithStore(st),
		liftmap.WithSources(chain...),
		liftmap.WithRetryPolicy(sources.Policy{
			Attempts:   cfg.RetryAttempts,
			Backoff:    cfg.RetryBackoff,
			MaxBackoff: constants.MaxRetryBackoff,
		}),
		liftmap.WithMinCount(cfg.MinCount),
		liftmap.WithBatchSize(cfg.BatchSize),
		liftmap.WithCatalogVersion(cfg.CatalogVersion),
		liftmap.WithMetrics(a.metrics),
		liftmap.WithLogger(a.logger),
	}
}

// registerHooks logs individual writes at debug level.
func (a *App) registerHooks(c liftmap.Client) {
	logger := a.logger
	c.OnExerciseInserted(func(ex catalogs.Exercise) {
		logger.Debug().Str("stable_id", ex.StableID).Str("name", ex.Name).Msg("Exercise inserted")
	})
	c.OnExerciseUpdated(func(_, updated catalogs.Exercise) {
		logger.Debug().Str("stable_id", updated.StableID).Str("name", updated.Name).Msg("Exercise updated")
	})
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithStore uses st instead of opening the configured database (useful for testing).
func WithStore(st store.Store) Option {
	return func(a *App) error {
		a.store = st
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(c liftmap.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
