// Package app wires the stores, the router and the Telegram runtime into
// the kinobot process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	corebootstrap "github.com/m3rciful/kinobot/core/bootstrap"
	corecmd "github.com/m3rciful/kinobot/core/cmd"
	coreconfig "github.com/m3rciful/kinobot/core/config"
	"github.com/m3rciful/kinobot/core/logger"
	"github.com/m3rciful/kinobot/core/metrics"
	"github.com/m3rciful/kinobot/core/ops"
	coretelegram "github.com/m3rciful/kinobot/core/telegram"
	"github.com/m3rciful/kinobot/internal/catalog"
	"github.com/m3rciful/kinobot/internal/events"
	"github.com/m3rciful/kinobot/internal/favourites"
	"github.com/m3rciful/kinobot/internal/locale"
	"github.com/m3rciful/kinobot/internal/router"
	"github.com/m3rciful/kinobot/internal/storage/memory"
	"github.com/m3rciful/kinobot/internal/storage/postgres"
)

// Deps are the collaborators an App is built from.
type Deps struct {
	Config    *coreconfig.Config
	Catalog   catalog.Store
	Counter   catalog.Counter
	Users     favourites.Store
	Publisher favourites.Publisher
	Locales   *locale.Bundle

	// Pingers are reported on /healthz.
	Pingers map[string]ops.Pinger
	// Closers run in reverse order on Close.
	Closers []func() error
}

// App is the assembled bot.
type App struct {
	cfg      *coreconfig.Config
	router   *router.Router
	locales  *locale.Bundle
	counter  catalog.Counter
	registry *coretelegram.Registry
	pingers  map[string]ops.Pinger
	closers  []func() error
	log      *slog.Logger
}

// New assembles an App from deps and registers its commands.
func New(d Deps) (*App, error) {
	if d.Config == nil || d.Catalog == nil || d.Users == nil || d.Locales == nil {
		return nil, errors.New("app: config, catalog, users and locales are required")
	}
	a := &App{
		cfg:      d.Config,
		router:   router.New(d.Catalog, favourites.NewEngine(d.Users, d.Publisher), d.Locales),
		locales:  d.Locales,
		counter:  d.Counter,
		registry: coretelegram.NewRegistry(),
		pingers:  d.Pingers,
		closers:  d.Closers,
		log:      logger.Component("app"),
	}
	a.registerCommands()
	if err := checkEntityPrefixes(a.registry); err != nil {
		return nil, err
	}
	return a, nil
}

// Bootstrap builds the App from configuration: logger, storage, seed,
// optional Redis cache and RabbitMQ publisher.
func Bootstrap(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg := carrier.CoreConfig()
	res, err := corebootstrap.Run(corebootstrap.Options{
		Config:        cfg,
		Migrations:    postgres.Migrations,
		MigrationsDir: postgres.MigrationsDir,
	})
	if err != nil {
		return nil, err
	}
	metrics.Init()

	locales, err := locale.New(cfg.Locale.Default)
	if err != nil {
		return nil, err
	}

	d := Deps{Config: cfg, Locales: locales, Pingers: map[string]ops.Pinger{}}
	var writer catalog.Writer
	if res.DB != nil {
		pc := postgres.NewCatalog(res.DB)
		d.Catalog, d.Counter, writer = pc, pc, pc
		d.Users = postgres.NewUsers(res.DB)
		d.Pingers["postgres"] = res.DB
		d.Closers = append(d.Closers, res.DB.Close)
	} else {
		mc, mu := memory.NewCatalog(nil, nil), memory.NewUsers()
		d.Catalog, writer, d.Users = mc, mc, mu
		d.Counter = memory.Stats{Catalog: mc, Users: mu}
	}

	if err := corebootstrap.RunSeeders(ctx, catalog.Seeder{Writer: writer, Path: cfg.Storage.SeedFile}); err != nil {
		closeAll(d.Closers)
		return nil, err
	}

	if rdb := connectRedis(ctx, cfg.Redis); rdb != nil {
		cached := catalog.NewCachedStore(d.Catalog, rdb, cfg.Redis.TTL, cfg.Redis.Prefix)
		if _, err := cached.Purge(ctx); err != nil {
			logger.Component("app").Warn("cache purge failed",
				slog.String("event", "redis.purge"),
				slog.String("err", err.Error()),
			)
		}
		d.Catalog = cached
		d.Pingers["redis"] = ops.PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		d.Closers = append(d.Closers, rdb.Close)
	}

	if cfg.Events.URL != "" {
		pub, err := events.Dial(cfg.Events.URL, cfg.Events.Queue)
		if err != nil {
			logger.Component("app").Warn("events disabled",
				slog.String("event", "events.dial"),
				slog.String("err", err.Error()),
			)
		} else {
			d.Publisher = pub
			d.Closers = append(d.Closers, pub.Close)
		}
	}

	a, err := New(d)
	if err != nil {
		closeAll(d.Closers)
		return nil, err
	}
	return a, nil
}

// connectRedis returns nil when the cache is not configured or unreachable;
// the bot then reads the store directly.
func connectRedis(ctx context.Context, cfg coreconfig.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Component("app").Warn("redis cache disabled",
			slog.String("event", "redis.ping"),
			slog.String("addr", cfg.Addr),
			slog.String("err", err.Error()),
		)
		_ = rdb.Close()
		return nil
	}
	logger.Component("app").Info("redis cache enabled",
		slog.String("event", "redis.connect"),
		slog.String("addr", cfg.Addr),
		slog.Duration("ttl", cfg.TTL),
	)
	return rdb
}

// RunBackground serves /healthz and /metrics until ctx is done. It returns
// immediately when no listen address is configured.
func (a *App) RunBackground(ctx context.Context) error {
	if a.cfg.Metrics.Listen == "" {
		return nil
	}
	return ops.NewServer(a.cfg.Metrics.Listen, a.pingers).Start(ctx)
}

// Close releases connections opened by Bootstrap.
func (a *App) Close() error {
	return closeAll(a.closers)
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("app: close: %w", err)
	}
	return nil
}
