package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/PetoAdam/homenavi/household-service/internal/config"
	"github.com/PetoAdam/homenavi/household-service/internal/household"
	"github.com/PetoAdam/homenavi/household-service/internal/httpapi"
	"github.com/PetoAdam/homenavi/household-service/internal/mqtt"
	"github.com/PetoAdam/homenavi/household-service/internal/observability"
	"github.com/PetoAdam/homenavi/household-service/internal/ratelimit"
	"github.com/PetoAdam/homenavi/household-service/internal/realtime"
	"github.com/PetoAdam/homenavi/household-service/internal/store"
	"github.com/PetoAdam/homenavi/household-service/internal/tenancy"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "household-service"

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := openDB(cfg)
	if err != nil {
		slog.Error("db connect failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	repo, err := store.New(db)
	if err != nil {
		slog.Error("db migrate failed", "error", err)
		os.Exit(1)
	}

	shutdownTelemetry, promHandler, tracer, err := observability.SetupObservability(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("observability setup failed", "error", err)
		os.Exit(1)
	}

	identity := tenancy.NewHeaderIdentifier(cfg.FamilyHeader)
	hub := realtime.NewHub(identity)
	notifiers := []household.Notifier{hub}

	if cfg.MQTTBrokerURL != "" {
		mq, err := mqtt.Connect(cfg.MQTTBrokerURL, cfg.MQTTClientID)
		if err != nil {
			slog.Error("mqtt connect failed", "error", err)
			os.Exit(1)
		}
		defer mq.Close()
		notifiers = append(notifiers, mqtt.NewPublisher(mq, cfg.MQTTPrefix))
		slog.Info("household events published to mqtt", "prefix", cfg.MQTTPrefix)
	}

	var limiter *ratelimit.RateLimiter
	if cfg.Redis.Addr != "" {
		rdb := setupRedisClient(ctx, cfg.Redis)
		defer rdb.Close()
		limiter = ratelimit.New(rdb, "household:rl", ratelimit.LimiterConfig{RPS: cfg.Redis.RateRPS, Burst: cfg.Redis.RateBurst})
	}

	svc := household.NewService(repo, household.Options{Notifiers: notifiers})
	api := httpapi.NewServer(svc, identity)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", cfg.FamilyHeader},
		ExposedHeaders:   []string{"Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(observability.MetricsAndTracingMiddleware(tracer, serviceName))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promHandler)
	r.Get("/ws/household", hub.ServeHTTP)

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware(ratelimit.KeyByFamilyOrIP(identity)))
		}
		api.Register(r)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found","code":404}`))
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("household-service started", "port", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
		slog.Info("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown failed", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown failed", "error", err)
	}

	slog.Info("household-service stopped")
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		return store.OpenPostgres(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.SSLMode)
	default:
		return store.OpenSQLite(cfg.SQLitePath)
	}
}

func setupRedisClient(ctx context.Context, rc config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       0,
	})
	if pong, err := client.Ping(ctx).Result(); err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	} else {
		slog.Info("connected to redis", "pong", pong)
	}
	return client
}

func setupLogging(level string) {
	lvl := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}
