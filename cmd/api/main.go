package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iftarspot/backend/internal/cache"
	"iftarspot/backend/internal/config"
	"iftarspot/backend/internal/db"
	"iftarspot/backend/internal/geocode"
	"iftarspot/backend/internal/http/handlers"
	"iftarspot/backend/internal/http/middleware"
	"iftarspot/backend/internal/locate"
	"iftarspot/backend/internal/logging"
	"iftarspot/backend/internal/repository"
	"iftarspot/backend/internal/spotmap"
	"iftarspot/backend/internal/spotstore"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.Logging, "api")
	if err != nil {
		log.Fatalf("log error: %v", err)
	}
	defer func() {
		_ = cleanup()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db error", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		logger.Error("migrate error", "error", err)
		os.Exit(1)
	}

	repo := repository.New(pool)

	var redisCache *cache.JSON
	if cfg.RedisURL != "" {
		redisCache, err = cache.Open(ctx, cfg.RedisURL, "iftarspot")
		if err != nil {
			logger.Warn("redis unavailable, continuing without shared cache", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	var store *spotstore.Store
	if redisCache != nil {
		store = spotstore.New(repo, redisCache, logger).WithNotifier(redisCache)
	} else {
		store = spotstore.New(repo, nil, logger)
	}
	if err := store.Refresh(ctx); err != nil {
		logger.Error("initial listing load failed", "error", err)
		os.Exit(1)
	}
	if err := store.Watch(ctx); err != nil {
		logger.Warn("listing change feed unavailable, relying on periodic refresh", "error", err)
	}
	go store.RefreshEvery(ctx, cfg.ListingsRefresh)
	view := spotmap.NewView(store)
	go view.Run(ctx)

	locator := locate.NewIPLocator(locate.IPConfig{
		Endpoint: cfg.Locate.Endpoint,
		Timeout:  cfg.Locate.Timeout,
		RPS:      cfg.Locate.RPS,
	})

	var geocoder handlers.Geocoder
	if client := geocode.NewClient(geocode.Config{Endpoint: cfg.GeocodeURL}); client != nil {
		geocoder = client
	}

	h := handlers.New(repo, store, view, locator, geocoder, cfg, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(15 * time.Second))
	r.Use(corsMiddleware)

	r.Handle("/metrics", promhttp.Handler())
	h.Mount(r)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
