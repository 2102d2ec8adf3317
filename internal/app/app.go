// Package app wires configuration into running components.
package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkellner/newsdesk/internal/adapt"
	"github.com/mkellner/newsdesk/internal/aggregator"
	"github.com/mkellner/newsdesk/internal/cache"
	"github.com/mkellner/newsdesk/internal/config"
	"github.com/mkellner/newsdesk/internal/httpapi"
	"github.com/mkellner/newsdesk/internal/logging"
	"github.com/mkellner/newsdesk/internal/metrics"
	"github.com/mkellner/newsdesk/internal/prefs"
	"github.com/mkellner/newsdesk/internal/sanitize"
	"github.com/mkellner/newsdesk/internal/scheduler"
	"github.com/mkellner/newsdesk/internal/sources"
)

// App holds all application dependencies
type App struct {
	Config     *config.Config
	Logger     *logging.Logger
	Cache      cache.Cache
	Aggregator *aggregator.Aggregator
	PrefsStore prefs.Store
	HTTPServer *httpapi.Server
	Scheduler  *scheduler.Scheduler
}

// New creates and initializes a new App instance
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	app.Logger = app.initLogger()
	app.Cache = app.initCache()
	app.PrefsStore = app.initPrefsStore()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	fetchers := app.initFetchers()
	app.Aggregator = aggregator.New(fetchers, app.Cache, collector, app.Logger)

	if cfg.Refresh.Enabled {
		sched, err := scheduler.New(cfg.Refresh.CronSpec, app.Aggregator, app.PrefsStore, app.Logger)
		if err != nil {
			return nil, err
		}
		app.Scheduler = sched
	}

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	app.HTTPServer = httpapi.New(app.Aggregator, app.PrefsStore, metricsHandler, app.Logger)

	return app, nil
}

// Run starts the background refresh and serves HTTP until the server stops.
func (a *App) Run(ctx context.Context) error {
	if a.Scheduler != nil {
		a.Scheduler.Start()
	}

	a.Logger.Info("Starting HTTP server", logging.WithField("addr", a.Config.Server.HTTPAddr))
	return a.HTTPServer.Start(a.Config.Server.HTTPAddr)
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error("HTTP server shutdown error", logging.WithField("error", err.Error()))
		}
	}

	if redisCache, ok := a.Cache.(*cache.RedisCache); ok {
		if err := redisCache.Close(); err != nil {
			a.Logger.Error("Redis close error", logging.WithField("error", err.Error()))
		}
	}

	return nil
}

func (a *App) initLogger() *logging.Logger {
	return logging.New(logging.ParseLevel(a.Config.Logging.Level))
}

func (a *App) initCache() cache.Cache {
	switch a.Config.Cache.Backend {
	case "redis":
		a.Logger.Info("Using Redis cache backend", logging.WithField("addr", a.Config.Cache.RedisAddr))
		redisCache, err := cache.NewRedis(cache.RedisConfig{
			Addr:   a.Config.Cache.RedisAddr,
			Prefix: "newsdesk:",
		}, a.Config.Cache.TTL)
		if err != nil {
			a.Logger.Error("Failed to connect to Redis, falling back to memory cache", logging.WithField("error", err.Error()))
			return cache.NewMemory(a.Config.Cache.TTL)
		}
		return redisCache
	default:
		a.Logger.Info("Using in-memory cache backend")
		return cache.NewMemory(a.Config.Cache.TTL)
	}
}

func (a *App) initPrefsStore() prefs.Store {
	switch a.Config.Prefs.Backend {
	case "redis":
		a.Logger.Info("Using Redis preference store", logging.WithField("addr", a.Config.Prefs.RedisAddr))
		store, err := prefs.NewRedisStore(prefs.RedisConfig{
			Addr:   a.Config.Prefs.RedisAddr,
			Prefix: "newsdesk:",
		}, a.Logger)
		if err != nil {
			a.Logger.Error("Failed to connect to Redis, falling back to file store", logging.WithField("error", err.Error()))
			return prefs.NewFileStore(a.Config.Prefs.Dir, a.Logger)
		}
		return store
	default:
		a.Logger.Info("Using file preference store", logging.WithField("dir", a.Config.Prefs.Dir))
		return prefs.NewFileStore(a.Config.Prefs.Dir, a.Logger)
	}
}

func (a *App) initFetchers() []sources.Fetcher {
	fetcherConfig := sources.DefaultConfig()
	fetcherConfig.Timeout = a.Config.Fetch.Timeout
	fetcherConfig.PageSize = a.Config.Fetch.PageSize
	fetcherConfig.MaxRetries = a.Config.Fetch.MaxRetries

	adapter := adapt.New(sanitize.New())
	providers := a.Config.Providers

	newsapi := sources.NewNewsAPIFetcher(providers.NewsAPIKey, adapter, fetcherConfig)
	newsapi.SetBaseURL(providers.NewsAPIBaseURL)

	guardian := sources.NewGuardianFetcher(providers.GuardianKey, adapter, fetcherConfig)
	guardian.SetBaseURL(providers.GuardianBaseURL)

	nytimes := sources.NewNYTimesFetcher(providers.NYTimesKey, adapter, fetcherConfig)
	nytimes.SetBaseURL(providers.NYTimesBaseURL)

	for _, key := range []struct {
		name  string
		value string
	}{
		{"NEWSAPI_KEY", providers.NewsAPIKey},
		{"GUARDIAN_KEY", providers.GuardianKey},
		{"NYTIMES_KEY", providers.NYTimesKey},
	} {
		if key.value == "" {
			a.Logger.Warn("Provider API key not set, requests to it will fail",
				logging.WithField("env", key.name))
		}
	}

	return []sources.Fetcher{newsapi, guardian, nytimes}
}
