package reportdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbRedis "github.com/kailas-cloud/reportdex/internal/db/redis"
	dbSqlite "github.com/kailas-cloud/reportdex/internal/db/sqlite"
	"github.com/kailas-cloud/reportdex/internal/domain"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
	facetrepo "github.com/kailas-cloud/reportdex/internal/repository/facet"
	reportrepo "github.com/kailas-cloud/reportdex/internal/repository/report"
	"github.com/kailas-cloud/reportdex/internal/repository/resultcache"
	facetuc "github.com/kailas-cloud/reportdex/internal/usecase/facet"
	healthuc "github.com/kailas-cloud/reportdex/internal/usecase/health"
	revalidateuc "github.com/kailas-cloud/reportdex/internal/usecase/revalidate"
	searchuc "github.com/kailas-cloud/reportdex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, p request.Params) ([]byte, bool, error)
}

type facetUseCase interface {
	Options(ctx context.Context) ([]byte, bool, error)
}

type revalidateUseCase interface {
	Revalidate(ctx context.Context, tag string) (domain.Topic, error)
}

// Client is the reportdex SDK entry point. Safe for concurrent use.
type Client struct {
	store     *dbSqlite.Store
	kv        *dbRedis.Store
	searchSvc searchUseCase
	facetSvc  facetUseCase
	revalSvc  revalidateUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New opens the document store (and the redis tier, when configured) and
// wires the search services. The provided context bounds the connection setup.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dsn == "" {
		return nil, errors.New("reportdex: document store required (use WithSQLite)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbSqlite.Open(ctx, dbSqlite.Config{
		DSN:          cfg.dsn,
		MaxOpenConns: cfg.maxOpenConns,
		AutoMigrate:  cfg.autoMigrate,
	})
	if err != nil {
		return nil, fmt.Errorf("reportdex: open store: %w", err)
	}

	var kv *dbRedis.Store
	if len(cfg.redisAddrs) > 0 {
		kv, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("reportdex: create redis store: %w", err)
		}
		if err := kv.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			kv.Close()
			_ = store.Close()
			return nil, fmt.Errorf("reportdex: redis not ready: %w", err)
		}
	}

	c, err := wireClient(store, kv, cfg)
	if err != nil {
		if kv != nil {
			kv.Close()
		}
		_ = store.Close()
		return nil, err
	}
	c.obs = obs
	return c, nil
}

func wireClient(store *dbSqlite.Store, kv *dbRedis.Store, cfg *clientConfig) (*Client, error) {
	// Internal layers log through the caller's slog handler, if any.
	logger := zapLogger(cfg.logger)

	var loader *resultcache.Loader
	if !cfg.cacheDisabled {
		var edgeWindow time.Duration
		if kv != nil {
			edgeWindow = cfg.edgeWindow
		}
		edge, err := resultcache.NewMemory(cfg.edgeSize, edgeWindow, nil)
		if err != nil {
			return nil, fmt.Errorf("reportdex: edge cache: %w", err)
		}
		var c resultcache.Cache = edge
		if kv != nil {
			c = resultcache.NewTiered(edge, resultcache.NewRedis(kv, nil))
		}
		loader = resultcache.NewLoader(c, logger)
	}

	// Pass nil interfaces (not typed nil pointers!) when caching is off.
	var (
		searchCache searchuc.Cache
		facetCache  facetuc.Cache
		invalidator revalidateuc.Invalidator
		cachePinger healthuc.Pinger
	)
	if loader != nil {
		searchCache, facetCache, invalidator = loader, loader, loader
	}
	if kv != nil {
		cachePinger = kv
	}

	reportRepo := reportrepo.New(store, cfg.queryTimeout, nil, logger)
	facetRepo := facetrepo.New(store, cfg.queryTimeout, logger)

	return &Client{
		store: store,
		kv:    kv,
		searchSvc: searchuc.New(reportRepo, searchCache, request.Limits{
			DefaultPageSize: cfg.defaultPageSize,
			MaxPageSize:     cfg.maxPageSize,
		}, cfg.documentsWindow),
		facetSvc: facetuc.New(facetRepo, facetCache, facetuc.Static{
			Industries: cfg.industries,
			Columns:    cfg.columns,
		}, cfg.facetsWindow),
		revalSvc:  revalidateuc.New(invalidator, nil, logger),
		healthSvc: healthuc.New(store, cachePinger),
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.kv != nil {
		c.kv.Close()
	}
	if c.store != nil {
		_ = c.store.Close()
	}
}

// Ping checks document store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, false, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
