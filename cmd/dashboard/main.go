// Command dashboard serves the HPAI case map, its JSON API, and the
// health, readiness, and metrics endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/birdflu-tracker/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/birdflu-tracker/internal/adapter/kafka"
	"github.com/couchcryptid/birdflu-tracker/internal/adapter/mapbox"
	redisadapter "github.com/couchcryptid/birdflu-tracker/internal/adapter/redis"
	"github.com/couchcryptid/birdflu-tracker/internal/adapter/storage"
	"github.com/couchcryptid/birdflu-tracker/internal/cache"
	"github.com/couchcryptid/birdflu-tracker/internal/config"
	"github.com/couchcryptid/birdflu-tracker/internal/dataset"
	"github.com/couchcryptid/birdflu-tracker/internal/domain"
	"github.com/couchcryptid/birdflu-tracker/internal/observability"
	"github.com/couchcryptid/birdflu-tracker/internal/pipeline"
	"github.com/couchcryptid/birdflu-tracker/internal/present"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := storage.FromConfig(cfg)
	if err != nil {
		logger.Error("failed to open data store", "error", err)
		os.Exit(1)
	}
	loader := dataset.NewLoader(store, cfg.CasesFile, cfg.CentroidsFile)
	logger.Info("data source configured", "store", fmt.Sprint(store), "cases", cfg.CasesFile, "centroids", cfg.CentroidsFile)

	var closers []io.Closer

	tiers := []cache.Tier{{Name: "memory", Cache: cache.NewMemory(cfg.CacheSize)}}
	if client := redisadapter.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); client != nil {
		tiers = append(tiers, cache.Tier{Name: "redis", Cache: redisadapter.NewResultCache(client, cfg.RedisTTL)})
		closers = append(closers, client)
		logger.Info("redis result cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.RedisTTL)
	}

	opts := pipeline.Options{Cache: cache.NewTiered(logger, metrics, tiers...)}

	// Centroid suggestions are feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		opts.Geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, metrics, logger)
		opts.Publisher = writer
		closers = append(closers, writer)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(loader, domain.NewNormalizer(domain.USStateCodes()), logger, metrics, opts)

	renderer, err := present.NewRenderer()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, renderer, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A failed first run is not fatal: the dashboard shows the error until a refresh succeeds.
	if _, err := p.Run(ctx); err != nil {
		logger.Warn("initial pipeline run failed", "error", err)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	go p.RunPeriodically(ctx, cfg.RefreshInterval)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
