package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/platinummonkey/langmgr/pkg/config"
	"github.com/platinummonkey/langmgr/pkg/g2p"
	"github.com/platinummonkey/langmgr/pkg/g2p/cache"
	"github.com/platinummonkey/langmgr/pkg/g2p/engines"
	"github.com/platinummonkey/langmgr/pkg/g2p/loader"
	"github.com/platinummonkey/langmgr/pkg/language"
	"github.com/platinummonkey/langmgr/pkg/language/store"
	"github.com/platinummonkey/langmgr/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// App wires the registry, engine loader, cache and language descriptors
// from a Config. Every command builds one and closes it when done.
type App struct {
	Config    *config.Config
	Log       *logrus.Logger
	Registry  *prometheus.Registry
	Metrics   *observability.Metrics
	Loader    *loader.Loader
	Manager   *g2p.Manager
	Processor *language.Processor

	// Descriptors loaded at startup, in file or store order
	Descriptors []*language.Descriptor

	backend cache.Backend
	store   *store.Store
}

// NewApp builds and initializes an App. logOut receives log output; nil
// means stderr.
func NewApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	if logOut == nil {
		logOut = os.Stderr
	}

	app := &App{
		Config: cfg,
		Log:    observability.NewLogger(cfg.Observability.LogLevel, logOut),
	}

	if cfg.Observability.MetricsEnabled {
		app.Registry = prometheus.NewRegistry()
		app.Metrics = observability.NewMetrics(app.Registry)
	}

	dirs := cfg.Engines.Dirs
	if len(dirs) == 0 {
		dirs = loader.DefaultEngineDirectories()
	}
	app.Loader = loader.NewLoader(dirs, app.Log)

	if cfg.Cache.Enabled {
		backend, err := newBackend(cfg.Cache)
		if err != nil {
			return nil, err
		}
		app.backend = backend
		app.Loader.SetWrapper(func(f g2p.Factory) g2p.Factory {
			return cache.Wrap(f, backend,
				cache.WithTTL(cfg.Cache.TTL),
				cache.WithLogger(app.Log),
				cache.WithMetrics(app.Metrics),
			)
		})
		app.Log.Infof("Conversion cache enabled (%s backend)", backend.Name())
	}

	app.Manager = g2p.NewManager(
		g2p.WithLogger(app.Log),
		g2p.WithMetrics(app.Metrics),
		g2p.WithSetup(engines.Builtins(), app.Loader.Setup()),
	)
	if err := app.Manager.Initialize(); err != nil {
		app.Close()
		return nil, err
	}

	descriptors, err := app.loadDescriptors(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Descriptors = descriptors

	app.Processor = language.NewProcessor(app.Manager,
		language.WithProcessorLogger(app.Log),
		language.WithProcessorMetrics(app.Metrics),
		language.WithMaxWorkers(cfg.Languages.MaxWorkers),
	)

	return app, nil
}

func newBackend(cfg config.CacheConfig) (cache.Backend, error) {
	switch cfg.Backend {
	case "redis":
		backend, err := cache.NewRedisBackend(cache.RedisConfig{URL: cfg.RedisURL})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		return backend, nil
	default:
		return cache.NewMemoryBackend(&cache.Config{MaxEntries: cfg.Size, TTL: cfg.TTL}), nil
	}
}

// loadDescriptors reads the languages file, or the database when no file is
// configured. Neither configured yields no languages.
func (a *App) loadDescriptors(ctx context.Context) ([]*language.Descriptor, error) {
	cfg := a.Config.Languages

	if cfg.File != "" {
		descriptors, err := language.LoadDescriptors(cfg.File)
		if err != nil {
			return nil, err
		}
		a.Log.Infof("Loaded %d languages from %s", len(descriptors), cfg.File)
		return descriptors, nil
	}

	if cfg.DBDriver != "" {
		s, err := store.Open(cfg.DBDriver, cfg.DBDSN, a.Log)
		if err != nil {
			return nil, err
		}
		a.store = s
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		descriptors, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		a.Log.Infof("Loaded %d languages from %s database", len(descriptors), cfg.DBDriver)
		return descriptors, nil
	}

	a.Log.Warn("No languages file or database configured")
	return nil, nil
}

// Language returns the loaded descriptor with id
func (a *App) Language(id string) (*language.Descriptor, bool) {
	return language.Find(a.Descriptors, id)
}

// Close releases every engine, the cache backend and the store
func (a *App) Close() {
	if a.Manager != nil {
		a.Manager.ClearFactories()
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.Log.Warnf("Failed to close cache: %v", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warnf("Failed to close store: %v", err)
		}
	}
}
