package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/foodmap/internal/config"
	"github.com/kailas-cloud/foodmap/internal/db"
	dbRedis "github.com/kailas-cloud/foodmap/internal/db/redis"
	logpkg "github.com/kailas-cloud/foodmap/internal/logger"
	"github.com/kailas-cloud/foodmap/internal/metrics"
	"github.com/kailas-cloud/foodmap/internal/repository/feed"
	"github.com/kailas-cloud/foodmap/internal/repository/feedcache"
	chiTransport "github.com/kailas-cloud/foodmap/internal/transport/chi"
	catalogpkg "github.com/kailas-cloud/foodmap/internal/usecase/catalog"
	"github.com/kailas-cloud/foodmap/internal/usecase/dashboard"
	healthuc "github.com/kailas-cloud/foodmap/internal/usecase/health"
	"github.com/kailas-cloud/foodmap/internal/version"
)

func main() {
	// Optional .env for local runs; real env vars win.
	_ = godotenv.Load()

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

	logger.Info("Starting foodmap server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("dataset", cfg.Dataset.URL),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	token, err := config.ReadToken(cfg.Mapbox.TokenFile)
	if err != nil {
		logger.Fatal("Map access token unavailable", zap.Error(err))
	}

	metrics.RegisterDatasetMetrics()

	ctx := context.Background()

	src, err := buildSource(ctx, cfg)
	if err != nil {
		logger.Fatal("Invalid dataset source", zap.Error(err))
	}

	format, err := feed.ParseFormat(cfg.Dataset.Format)
	if err != nil {
		logger.Fatal("Invalid dataset format", zap.Error(err))
	}
	if format == "" {
		format = feed.FormatFromLocation(cfg.Dataset.URL)
	}

	// Pass a nil interface, not a typed nil *Store, to health when the cache is off.
	var cachePinger healthuc.CachePinger
	if cfg.Cache.Enabled {
		store, err := openCache(ctx, cfg.Cache)
		if err != nil {
			logger.Fatal("Dataset cache not ready", zap.Error(err))
		}
		defer store.Close()
		logger.Info("Connected to dataset cache", zap.Strings("addrs", cfg.Cache.Addrs))

		src = feedcache.New(src, store, time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.DatasetCacheTotal, logger).WithValidator(decodes(format))
		cachePinger = store
	}

	loadCtx, cancelLoad := context.WithTimeout(ctx, time.Duration(cfg.Dataset.FetchTimeoutSec)*time.Second)
	cat, err := catalogpkg.Build(loadCtx, src, format, logger)
	cancelLoad()
	if err != nil {
		logger.Fatal("Failed to load dataset", zap.Error(err))
	}

	dash, err := dashboard.New(cat, dashboard.Options{
		Map: dashboard.MapOptions{
			Token: token,
			Style: cfg.Mapbox.Style,
			Zoom:  cfg.Mapbox.Zoom,
		},
		PreviewTitle: cfg.Page.Heading,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to render dashboard", zap.Error(err))
	}

	page, err := chiTransport.RenderPage(chiTransport.PageConfig{
		Title:   cfg.Page.Title,
		Heading: cfg.Page.Heading,
	})
	if err != nil {
		logger.Fatal("Failed to render page", zap.Error(err))
	}

	healthSvc := healthuc.New(cat, cachePinger)
	server := chiTransport.NewServer(dash, cat, healthSvc, page, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr), zap.Int("records", cat.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// buildSource picks the S3 or HTTP reader for the configured dataset URL.
func buildSource(ctx context.Context, cfg config.Config) (catalogpkg.Source, error) {
	if feed.IsS3(cfg.Dataset.URL) {
		client, err := feed.NewS3Client(ctx, feed.S3Config{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return feed.NewS3Source(client, cfg.Dataset.URL)
	}

	timeout := time.Duration(cfg.Dataset.FetchTimeoutSec) * time.Second
	return feed.NewHTTPSource(cfg.Dataset.URL, timeout).WithMaxBytes(cfg.Dataset.MaxBytes), nil
}

// decodes accepts bytes only if they parse as a dataset in format.
func decodes(format feed.Format) func([]byte) error {
	return func(data []byte) error {
		_, err := feed.Decode(format, data)
		return err
	}
}

// openCache connects to Valkey/Redis and waits until it answers PING.
func openCache(ctx context.Context, cfg config.CacheConfig) (db.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
