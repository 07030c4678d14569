// Package bootstrap turns a config.Config into a running directory: logger, Sentry, contact store and server.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"github.com/prior-it/directory/cache"
	"github.com/prior-it/directory/config"
	"github.com/prior-it/directory/core"
	"github.com/prior-it/directory/directory"
	"github.com/prior-it/directory/memory"
	"github.com/prior-it/directory/postgres"
	"github.com/prior-it/directory/server"
	"github.com/prior-it/directory/sqlite"
)

// Full creates a new server and initializes all default systems.
//
// This will initialise the logger, Sentry (if enabled in config), the configured contact store and
// the optional Redis cache in front of it. The store is closed when the server shuts down.
//
// Routes are registered before returning, so no additional middleware can be added afterwards.
func Full(ctx context.Context, cfg *config.Config) (*server.Server, error) {
	if cfg == nil {
		panic("You need to supply a config.Config value to bootstrap a new server")
	}

	logger := CreateLogger(cfg)

	if cfg.Sentry.Enabled {
		initSentry(logger, cfg)
	}

	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	s := server.New(directory.NewService(store), cfg).
		WithLogger(logger).
		OnShutdown(closeStore)

	s.AttachDefaultMiddleware()

	// Enable sentry middleware
	if cfg.Sentry.Enabled {
		sentryHandler := sentryhttp.New(sentryhttp.Options{
			Repanic:         true,
			WaitForDelivery: true,
			Timeout:         5 * time.Second, //nolint:mnd
		})
		s.UseStd(sentryHandler.Handle)
	}

	// Fully disable caching in debug mode
	if cfg.App.Debug {
		s.UseStd(middleware.NoCache)
		if cfg.Log.Verbose {
			s.UseStd(server.Debug(false))
		}
	}

	return s.RegisterRoutes(), nil
}

// OpenStore connects to the contact store selected by cfg.Database.Driver and migrates it.
// The returned function releases the store and must be called once it is no longer used.
func OpenStore(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (core.ContactStore, func(context.Context), error) {
	var (
		store   core.ContactStore
		release func(context.Context)
	)

	switch cfg.Database.Driver {
	case config.DatabaseDriverMemory:
		logger.Warn("Using the in-memory contact store, contacts are lost on exit")
		store, release = &memory.ContactStore{}, func(context.Context) {}

	case config.DatabaseDriverPostgres:
		db, err := postgres.NewDB(ctx, cfg.Database.URL, cfg.Database.Schema)
		if err != nil {
			return nil, nil, fmt.Errorf("could not initialize database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		store, release = postgres.NewContactStore(db), func(context.Context) { db.Close() }

	case config.DatabaseDriverSqlite:
		db, err := sqlite.NewDB(cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("could not initialize database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		store = sqlite.NewContactStore(db)
		release = func(context.Context) {
			if err := db.Close(); err != nil {
				logger.Error("Could not close the sqlite database", "error", err)
			}
		}

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	if !cfg.Cache.Enabled {
		return store, release, nil
	}

	client, err := cache.Connect(ctx, cfg.Cache.URL)
	if err != nil {
		release(ctx)
		return nil, nil, err
	}
	logger.Info("Caching contacts in redis", "ttl", cfg.CacheTTL())
	cached := cache.NewContactStore(store, client, cfg.CacheTTL()).WithLogger(logger)
	return cached, func(ctx context.Context) {
		if err := client.Close(); err != nil {
			logger.Warn("Could not close the redis client", "error", err)
		}
		release(ctx)
	}, nil
}

// Migrate applies the embedded migrations of the configured SQL store, or rolls back a single step if down is set.
func Migrate(ctx context.Context, cfg *config.Config, down bool) error {
	type migrator interface {
		Migrate(ctx context.Context) error
		MigrateDown(ctx context.Context) error
	}

	var db migrator
	switch cfg.Database.Driver {
	case config.DatabaseDriverPostgres:
		pg, err := postgres.NewDB(ctx, cfg.Database.URL, cfg.Database.Schema)
		if err != nil {
			return fmt.Errorf("could not initialize database: %w", err)
		}
		defer pg.Close()
		db = pg
	case config.DatabaseDriverSqlite:
		lite, err := sqlite.NewDB(cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("could not initialize database: %w", err)
		}
		defer lite.Close()
		db = lite
	default:
		return fmt.Errorf("the %s driver has no migrations", cfg.Database.Driver)
	}

	if down {
		return db.MigrateDown(ctx)
	}
	return db.Migrate(ctx)
}

// CreateLogger builds the logger described by cfg.Log and installs it as the slog default.
func CreateLogger(cfg *config.Config) *slog.Logger {
	var logger *slog.Logger
	loggerOptions := &slog.HandlerOptions{
		Level:     cfg.Log.Level.ToSlog(),
		AddSource: cfg.Log.Verbose && cfg.App.Debug,
	}
	switch cfg.Log.Format {
	case config.LogFormatPlaintext:
		if cfg.App.Debug {
			logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{
				Level:      loggerOptions.Level,
				AddSource:  loggerOptions.AddSource,
				TimeFormat: time.TimeOnly,
			}))
		} else {
			logger = slog.New(slog.NewTextHandler(os.Stdout, loggerOptions))
		}
	default:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, loggerOptions))
	}
	slog.SetDefault(logger)
	return logger
}

func initSentry(logger *slog.Logger, cfg *config.Config) {
	logger.Debug("Trying to initialise Sentry")
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Debug:            cfg.App.Debug,
		AttachStacktrace: true,
		SampleRate:       cfg.Sentry.SampleRate,
		EnableTracing:    true,
		TracesSampleRate: cfg.Sentry.TracesRate,
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			switch ctx.Span.Name {
			case "GET /ping", "GET /readiness", "GET /metrics":
				return 0.0
			}
			return cfg.Sentry.TracesRate
		}),
		ProfilesSampleRate: cfg.Sentry.ProfilesRate,
		ServerName:         cfg.App.Name,
		Release:            cfg.App.Version,
		Environment:        string(cfg.App.Env),
	}); err != nil {
		logger.Error("Sentry initialization failed", "error", err)
	} else {
		logger.Debug("Sentry initialised")
	}
}
