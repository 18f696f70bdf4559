package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/conform"
	"github.com/aretw0/conform/internal/config"
	"github.com/aretw0/conform/internal/metrics"
	"github.com/aretw0/conform/pkg/adapters/amqp"
	"github.com/aretw0/conform/pkg/adapters/file"
	"github.com/aretw0/conform/pkg/adapters/memory"
	"github.com/aretw0/conform/pkg/adapters/redis"
	"github.com/aretw0/conform/pkg/adapters/sqlite"
	"github.com/aretw0/conform/pkg/domain"
	"github.com/aretw0/conform/pkg/persistence/middleware"
	"github.com/aretw0/conform/pkg/ports"
)

// Runtime is an engine together with the resources opened for it.
type Runtime struct {
	Engine  *conform.Engine
	Metrics *metrics.Collector

	closers []func() error
}

// Close releases the repository and the event publisher, if any.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenRepository builds the definition repository selected by cfg, wrapped
// read-only when cfg.ReadOnly is set. The returned function closes it.
func OpenRepository(ctx context.Context, cfg config.StoreConfig) (ports.DefinitionRepository, func() error, error) {
	repo, closeFn, err := openDriver(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	var mws []middleware.Middleware
	if cfg.ReadOnly {
		mws = append(mws, middleware.NewReadOnlyMiddleware())
	}
	return middleware.Chain(repo, mws...), closeFn, nil
}

func openDriver(ctx context.Context, cfg config.StoreConfig) (ports.DefinitionRepository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory, "":
		return memory.NewRepository(), noop, nil

	case config.DriverFile:
		return file.New(cfg.Dir), noop, nil

	case config.DriverRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		repo := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := repo.Ping(ctx); err != nil {
			repo.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return repo, repo.Close, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database %s: %w", cfg.SQLite.Path, err)
		}
		return sqlite.NewRepository(db), db.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// NewRuntime initializes an engine with standard CLI conventions: the
// configured repository, prometheus metrics, debug hooks when logging at
// debug level, AMQP events when a broker URL is set, and the definitions of
// cfg.SchemasDir registered up front.
func NewRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	repo, closeRepo, err := OpenRepository(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{
		Metrics: metrics.New(),
		closers: []func() error{closeRepo},
	}

	var hooks []domain.LifecycleHooks
	if logger.Enabled(ctx, slog.LevelDebug) {
		hooks = append(hooks, createDebugHooks(logger))
		repo = middleware.Chain(repo, middleware.NewLoggingMiddleware(logger))
	}
	if cfg.AMQP.URL != "" {
		pub, err := amqp.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, amqp.WithLogger(logger))
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, pub.Close)
		hooks = append(hooks, pub.Hooks())
		logger.Info("publishing events", "exchange", cfg.AMQP.Exchange)
	}

	rt.Engine = conform.New(repo,
		conform.WithLogger(logger),
		conform.WithMetrics(rt.Metrics),
		conform.WithLifecycleHooks(chainHooks(hooks...)),
		conform.WithExtraProperties(cfg.AllowExtra),
	)

	// A file store rooted at schemas_dir already serves those files.
	sameDir := cfg.Store.Driver == config.DriverFile && filepath.Clean(cfg.Store.Dir) == filepath.Clean(cfg.SchemasDir)
	switch {
	case cfg.SchemasDir == "" || sameDir:
	case cfg.Store.ReadOnly:
		logger.Warn("schemas_dir ignored for a read-only store", "dir", cfg.SchemasDir)
	default:
		n, err := LoadDir(ctx, rt.Engine, cfg.SchemasDir)
		if err != nil {
			rt.Close()
			return nil, err
		}
		logger.Info("definitions loaded", "dir", cfg.SchemasDir, "count", n)
	}

	return rt, nil
}
