package server

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-admin/modules"
	"github.com/iota-uz/iota-admin/pkg/application"
	"github.com/iota-uz/iota-admin/pkg/composables"
	"github.com/iota-uz/iota-admin/pkg/configuration"
	"github.com/iota-uz/iota-admin/pkg/eventbus"
	"github.com/iota-uz/iota-admin/pkg/memstore"
	"github.com/iota-uz/iota-admin/pkg/repo"
	"github.com/iota-uz/iota-admin/pkg/viewcache"
)

// Runtime is a loaded application together with the resources backing it.
type Runtime struct {
	App  application.Application
	Pool *pgxpool.Pool
	// Close releases the pool and the redis client.
	Close func()
}

// Context returns ctx prepared for service calls made outside an HTTP
// request: the pool is attached when the postgres backend is selected.
func (rt *Runtime) Context(ctx context.Context) context.Context {
	if rt.Pool != nil {
		ctx = composables.WithPool(ctx, rt.Pool)
	}
	return ctx
}

// Bootstrap connects the configured storage and view cache backends and
// registers the built-in modules.
func Bootstrap(ctx context.Context, conf *configuration.Configuration, logger *logrus.Logger) (*Runtime, error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var (
		pool       *pgxpool.Pool
		stores     modules.Stores
		transactor repo.Transactor
	)
	switch conf.Storage {
	case configuration.StorageMemory:
		db := memstore.New()
		stores = modules.NewMemoryStores(db)
		transactor = db
		logger.Warn("using the in-memory storage backend, data is lost on restart")
	default:
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		var err error
		pool, err = pgxpool.New(connectCtx, conf.Database.Opts)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create database pool")
		}
		closers = append(closers, pool.Close)
		stores = modules.NewPgStores()
		transactor = composables.NewPoolTransactor()
	}

	var cache viewcache.Cache
	switch conf.ViewCache.Backend {
	case configuration.CacheRedis:
		opts, err := configuration.RedisOptions(conf.RedisURL)
		if err != nil {
			closeAll()
			return nil, errors.Wrap(err, "invalid REDIS_URL")
		}
		client := redis.NewClient(opts)
		closers = append(closers, func() {
			if err := client.Close(); err != nil {
				logger.WithError(err).Warn("failed to close redis client")
			}
		})
		cache = viewcache.NewRedis(client, conf.ViewCache.TTL)
	default:
		cache = viewcache.NewMemory(conf.ViewCache.TTL)
	}

	bus := eventbus.NewEventPublisher(logger)
	viewcache.Subscribe(bus, cache, logger)

	app := application.New(&application.ApplicationOptions{
		Pool:       pool,
		Transactor: transactor,
		EventBus:   bus,
		ViewCache:  cache,
		Logger:     logger,
	})
	builtIn := modules.BuiltInModules(stores, modules.Options{
		PageSize:      conf.PageSize,
		MaxPageSize:   conf.MaxPageSize,
		InvitationTTL: conf.InvitationTTL,
	})
	if err := modules.Load(app, builtIn...); err != nil {
		closeAll()
		return nil, errors.Wrap(err, "failed to load modules")
	}

	return &Runtime{App: app, Pool: pool, Close: closeAll}, nil
}
