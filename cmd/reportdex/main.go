package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/config"
	dbRedis "github.com/kailas-cloud/reportdex/internal/db/redis"
	dbSqlite "github.com/kailas-cloud/reportdex/internal/db/sqlite"
	domfacet "github.com/kailas-cloud/reportdex/internal/domain/facet"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/reportdex/internal/logger"
	"github.com/kailas-cloud/reportdex/internal/metrics"
	facetrepo "github.com/kailas-cloud/reportdex/internal/repository/facet"
	reportrepo "github.com/kailas-cloud/reportdex/internal/repository/report"
	"github.com/kailas-cloud/reportdex/internal/repository/resultcache"
	chiTransport "github.com/kailas-cloud/reportdex/internal/transport/chi"
	facetuc "github.com/kailas-cloud/reportdex/internal/usecase/facet"
	healthuc "github.com/kailas-cloud/reportdex/internal/usecase/health"
	revalidateuc "github.com/kailas-cloud/reportdex/internal/usecase/revalidate"
	searchuc "github.com/kailas-cloud/reportdex/internal/usecase/search"
	"github.com/kailas-cloud/reportdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting reportdex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("cache", !cfg.Cache.Disabled),
	)

	ctx := context.Background()

	store, err := dbSqlite.Open(ctx, dbSqlite.Config{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		AutoMigrate:  cfg.Database.AutoMigrate,
	})
	if err != nil {
		logger.Fatal("Failed to open document store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()
	logger.Info("Opened document store")

	// Register cache metrics explicitly (no init())
	metrics.RegisterCacheMetrics()

	var kv *dbRedis.Store
	if cfg.Redis.Enabled {
		kv, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Redis.Addrs,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer kv.Close()

		if err := kv.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis")
	}

	// Pass nil interfaces (not typed nil pointers!) when caching is off.
	// (*resultcache.Loader)(nil) wrapped in searchuc.Cache != nil.
	var (
		searchCache searchuc.Cache
		facetCache  facetuc.Cache
		invalidator revalidateuc.Invalidator
		cachePinger healthuc.Pinger
	)
	if !cfg.Cache.Disabled {
		loader := buildCache(cfg, kv, logger)
		searchCache, facetCache, invalidator = loader, loader, loader
	}
	if kv != nil {
		cachePinger = kv
	}

	// Repositories
	timeout := cfg.Database.QueryTimeout()
	reportRepo := reportrepo.New(store, timeout, metrics.StoreQueryDuration, logger)
	facetRepo := facetrepo.New(store, timeout, logger)

	// Use case services
	searchSvc := searchuc.New(reportRepo, searchCache, request.Limits{
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	}, cfg.Cache.DocumentsWindow())
	facetSvc := facetuc.New(facetRepo, facetCache, facetuc.Static{
		Industries: toOptions(cfg.Facets.Industries),
		Columns:    toOptions(cfg.Facets.Columns),
	}, cfg.Cache.FacetsWindow())
	revalidateSvc := revalidateuc.New(invalidator, metrics.CacheInvalidationsTotal, logger)
	healthSvc := healthuc.New(store, cachePinger)

	server := chiTransport.NewServer(searchSvc, facetSvc, revalidateSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildCache assembles the result cache: edge LRU, optionally backed by the
// shared redis tier, behind a deduplicating loader.
func buildCache(cfg config.Config, kv *dbRedis.Store, logger *zap.Logger) *resultcache.Loader {
	// Edge-only deployments keep entries for their full window.
	var edgeWindow time.Duration
	if kv != nil {
		edgeWindow = cfg.Cache.EdgeWindow()
	}

	edge, err := resultcache.NewMemory(cfg.Cache.EdgeSize, edgeWindow, metrics.CacheTotal)
	if err != nil {
		logger.Fatal("Failed to create edge cache", zap.Error(err))
	}

	var c resultcache.Cache = edge
	if kv != nil {
		c = resultcache.NewTiered(edge, resultcache.NewRedis(kv, metrics.CacheTotal))
	}
	return resultcache.NewLoader(c, logger)
}

func toOptions(in []config.OptionConfig) []domfacet.Option {
	out := make([]domfacet.Option, 0, len(in))
	for _, o := range in {
		out = append(out, domfacet.Option{Value: o.Value, Label: o.Label})
	}
	return out
}
