package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"iftarspot/backend/internal/cache"
	"iftarspot/backend/internal/config"
	"iftarspot/backend/internal/db"
	"iftarspot/backend/internal/logging"
	"iftarspot/backend/internal/mapexport"
	"iftarspot/backend/internal/repository"
	"iftarspot/backend/internal/spotmap"
	"iftarspot/backend/internal/spotstore"
	"iftarspot/backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.Logging, "worker")
	if err != nil {
		log.Fatalf("log error: %v", err)
	}
	defer func() {
		_ = cleanup()
	}()

	if !cfg.S3Enabled() {
		logger.Error("S3_ENDPOINT and S3_BUCKET are required for map exports")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db error", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var listingCache spotstore.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.Open(ctx, cfg.RedisURL, "iftarspot")
		if err != nil {
			logger.Warn("redis unavailable, reading from database", "error", err)
		} else {
			defer redisCache.Close()
			listingCache = redisCache
		}
	}

	s3Client, err := storage.NewS3(cfg.S3)
	if err != nil {
		logger.Error("s3 error", "error", err)
		os.Exit(1)
	}

	store := spotstore.New(repository.New(pool), listingCache, logger)
	w := &worker{
		store:    store,
		view:     spotmap.NewView(store),
		exporter: mapexport.NewExporter(s3Client, logger),
		zone:     cfg.TodayZone,
		interval: cfg.ExportInterval,
		logger:   logger,
	}

	logger.Info("worker_started", "interval", cfg.ExportInterval.String())
	w.run(ctx)
	logger.Info("shutdown")
}
