// Package main is the entry point for the ELD API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/tripline/eld-backend/internal/cache"
	"github.com/tripline/eld-backend/internal/config"
	"github.com/tripline/eld-backend/internal/handler"
	"github.com/tripline/eld-backend/internal/middleware"
	"github.com/tripline/eld-backend/internal/repo"
	"github.com/tripline/eld-backend/internal/routing"
	"github.com/tripline/eld-backend/internal/service"
	"github.com/tripline/eld-backend/migrations"
	"github.com/tripline/eld-backend/spec"
)

// maxBodyBytes caps request bodies; the largest legitimate payload is a
// trip-creation body, far under this.
const maxBodyBytes = 1 << 20 // 1 MiB

func main() {
	// --- Config -----------------------------------------------------------
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// Apply pending migrations from the embedded FS. goose needs a *sql.DB;
	// stdlib.OpenDBFromPool borrows from the pgx pool rather than opening a
	// second connection set.
	if err := runMigrations(pool); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations up to date")

	// --- Providers --------------------------------------------------------
	// Redis-backed caching of provider responses is optional. A nil *TTL is
	// a no-op cache, so every adapter works identically without Redis.
	var providerCache *cache.TTL
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		providerCache = cache.New(client, 5*time.Minute)
		slog.Info("provider cache enabled")
	}

	directions := routing.NewDirections(cfg.ORSDirectionsURL, cfg.ORSAPIKey, cfg.GeocodeUserAgent, cfg.ORSSnapRadiusMeters, providerCache)
	geocoder := routing.NewGeocoder(cfg.GeocodeBaseURL, cfg.GeocodeUserAgent, providerCache)

	defaultZone := service.ResolveZone(cfg.DefaultTimezone, time.UTC)

	// --- Services ---------------------------------------------------------
	trips := repo.NewTripRepo(pool)
	events := repo.NewEventRepo(pool)
	transitions := repo.NewTransitionRepo(pool)

	tripService := service.NewTripService(trips, events, transitions, directions, service.SystemClock{})
	logService := service.NewLogService(trips, events, service.SystemClock{})
	geocodeService := service.NewGeocodeService(geocoder)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	srv := handler.NewServer(tripService, logService, geocodeService, defaultZone)
	r.Get("/healthz", srv.GetHealth)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})
	srv.Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// runMigrations applies all pending embedded migrations.
func runMigrations(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(context.Background())
	return err
}
