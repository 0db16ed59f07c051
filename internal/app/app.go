// Package app wires the chemidr components from a Config. The CLI, the API
// server and the queue worker all start from New.
package app

import (
	"context"
	"os"
	"time"

	"github.com/turtacn/chemidr/internal/application/resolver"
	"github.com/turtacn/chemidr/internal/application/synonym"
	"github.com/turtacn/chemidr/internal/config"
	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/internal/infrastructure/database/postgres"
	"github.com/turtacn/chemidr/internal/infrastructure/database/postgres/repositories"
	redisinfra "github.com/turtacn/chemidr/internal/infrastructure/database/redis"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/chemidr/internal/infrastructure/pubchem"
	minioinfra "github.com/turtacn/chemidr/internal/infrastructure/storage/minio"
	"github.com/turtacn/chemidr/internal/interfaces/http/handlers"
	"github.com/turtacn/chemidr/pkg/errors"
)

// indexLockTTL bounds how long one process may hold the index build lock.
const indexLockTTL = 10 * time.Minute

// Options selects which parts of the graph New builds.
type Options struct {
	// SkipIndex leaves the synonym index unloaded. Commands that only talk
	// to PubChem use it to avoid reading the bulk tables.
	SkipIndex bool
	// Rebuild ignores synonyms.load_cache and rebuilds from the bulk files.
	Rebuild bool
	// SkipDatabase leaves Postgres closed even when enabled.
	SkipDatabase bool
}

// App holds the initialized infrastructure and the resolver built on it.
type App struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	PubChem  *pubchem.Client
	Index    *synonym.Index
	Store    synonym.Store
	Redis    *redisinfra.Client
	MinIO    *minioinfra.Client
	DB       *postgres.Connection
	Repo     chemical.Repository
	Resolver resolver.Service

	checkers []handlers.HealthChecker
	closers  []func() error
}

// New initializes every enabled backend. On failure anything already opened
// is closed before the error is returned.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, opts Options) (a *App, err error) {
	if cfg == nil {
		return nil, errors.InvalidParam("config is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	a = &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	if err = a.initMetrics(); err != nil {
		return a, err
	}
	a.PubChem = pubchem.NewClient(pubchem.ConfigFrom(cfg.PubChem, cfg.Retry), logger, pubchem.WithMetrics(a.Metrics))

	if err = a.initRedis(); err != nil {
		return a, err
	}
	if err = a.initStore(ctx); err != nil {
		return a, err
	}
	if !opts.SkipIndex {
		if a.Index, err = a.OpenIndex(ctx, opts.Rebuild); err != nil {
			return a, err
		}
	}
	if cfg.Database.Enabled && !opts.SkipDatabase {
		if err = a.initDatabase(ctx); err != nil {
			return a, err
		}
	}
	if err = a.initResolver(); err != nil {
		return a, err
	}
	return a, nil
}

func (a *App) initMetrics() error {
	ns := a.Config.Metrics.Namespace
	if ns == "" {
		ns = config.DefaultMetricsNamespace
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            ns,
		EnableProcessMetrics: a.Config.Metrics.Enabled,
		EnableGoMetrics:      a.Config.Metrics.Enabled,
	}, a.Logger)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create metrics collector")
	}
	a.Collector = collector
	a.Metrics = prometheus.NewAppMetrics(collector)
	return nil
}

func (a *App) initRedis() error {
	if !a.Config.Redis.Enabled {
		return nil
	}
	client, err := redisinfra.NewClient(a.Config.Redis, a.Logger.Named("redis"))
	if err != nil {
		return err
	}
	a.Redis = client
	a.closers = append(a.closers, client.Close)
	a.checkers = append(a.checkers, handlers.CheckFunc{ComponentName: "redis", Fn: client.Ping})
	return nil
}

// initStore opens the backend selected by synonyms.store.
func (a *App) initStore(ctx context.Context) error {
	switch a.Config.Synonyms.Store {
	case config.StoreRedis:
		if a.Redis == nil {
			return errors.New(errors.ErrCodeValidation, "synonyms.store=redis requires redis.enabled")
		}
		a.Store = redisinfra.NewSynonymStore(a.Redis)
	case config.StoreMinIO:
		client, err := minioinfra.NewClient(ctx, a.Config.MinIO, a.Logger.Named("minio"))
		if err != nil {
			return err
		}
		a.MinIO = client
		a.Store = minioinfra.NewSnapshotStore(client)
		a.closers = append(a.closers, client.Close)
		a.checkers = append(a.checkers, handlers.CheckFunc{ComponentName: "minio", Fn: client.HealthCheck})
	default:
		a.Store = synonym.NewFileStore(a.Config.Synonyms.CacheDir)
	}
	return nil
}

// OpenIndex loads or builds the synonym index. Builds against a shared redis
// store hold a distributed lock so concurrent processes do not rebuild the
// same tables at once.
func (a *App) OpenIndex(ctx context.Context, rebuild bool) (*synonym.Index, error) {
	cfg := a.Config.Synonyms
	opts := synonym.OpenOptions{
		Data:      os.DirFS(cfg.DataDir),
		Sources:   synonym.DefaultSources(cfg),
		Store:     a.Store,
		LoadCache: cfg.LoadCache && !rebuild,
		Logger:    a.Logger,
		Metrics:   a.Metrics,
	}

	if opts.LoadCache || a.Redis == nil || cfg.Store != config.StoreRedis {
		return synonym.Open(ctx, opts)
	}

	mu := redisinfra.NewMutex(a.Redis, "synonym-index", indexLockTTL, a.Logger.Named("lock"))
	if err := mu.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := mu.Unlock(context.Background()); err != nil {
			a.Logger.Warn("failed to release index lock", logging.Err(err))
		}
	}()
	return synonym.Open(ctx, opts)
}

func (a *App) initDatabase(ctx context.Context) error {
	conn, err := postgres.NewConnection(ctx, a.Config.Database, a.Logger.Named("postgres"))
	if err != nil {
		return err
	}
	a.DB = conn
	a.closers = append(a.closers, func() error { conn.Close(); return nil })
	a.checkers = append(a.checkers, handlers.CheckFunc{ComponentName: "postgres", Fn: conn.HealthCheck})

	if a.Config.Database.AutoMigrate {
		if err := a.Migrate(func(m *postgres.Migrator) error { return m.Up() }); err != nil {
			return err
		}
	}
	a.Repo = repositories.NewResolutionRepository(conn.Pool(), a.Logger)
	return nil
}

// Migrate runs fn against a migrator over the open database.
func (a *App) Migrate(fn func(*postgres.Migrator) error) error {
	if a.DB == nil {
		return errors.New(errors.ErrCodeDatabaseError, "database is not enabled")
	}
	m, err := postgres.NewMigrator(a.DB.Pool(), a.Logger.Named("migrate"))
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func (a *App) initResolver() error {
	assigner, err := chemical.NewCompositeKeyAssigner(a.Config.Resolver.MaxPubChemIndex)
	if err != nil {
		return err
	}
	opts := []resolver.Option{
		resolver.WithRemote(a.PubChem),
		resolver.WithMetrics(a.Metrics),
	}
	if a.Index != nil {
		opts = append(opts, resolver.WithLocal(a.Index))
	}
	if a.Redis != nil && a.Config.Resolver.CacheTTL > 0 {
		cache := redisinfra.NewResultCache(a.Redis, a.Config.Resolver.CacheTTL, a.Logger,
			redisinfra.WithCacheMetrics(a.Metrics))
		opts = append(opts, resolver.WithCache(cache))
	}
	if a.Repo != nil {
		opts = append(opts, resolver.WithRepository(a.Repo))
	}

	a.Resolver, err = resolver.NewService(resolver.Config{
		Concurrency: a.Config.Resolver.Concurrency,
	}, assigner, a.Logger, opts...)
	return err
}

// HealthCheckers returns readiness checks for every opened backend.
func (a *App) HealthCheckers() []handlers.HealthChecker {
	return append([]handlers.HealthChecker(nil), a.checkers...)
}

// Close releases backends in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close failed", logging.Err(err))
		}
	}
	a.closers = nil
	_ = a.Logger.Sync()
}

//Personal.AI order the ending
