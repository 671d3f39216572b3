package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/biokuam/portal/internal/events"
	"github.com/biokuam/portal/internal/handler"
	"github.com/biokuam/portal/internal/infrastructure/logger"
	"github.com/biokuam/portal/internal/infrastructure/redis"
	"github.com/biokuam/portal/internal/observability/metrics"
	"github.com/biokuam/portal/internal/observability/tracing"
	"github.com/biokuam/portal/internal/repository"
	"github.com/biokuam/portal/internal/security/audit"
	"github.com/biokuam/portal/internal/security/auth"
	"github.com/biokuam/portal/internal/security/middleware"
	"github.com/biokuam/portal/internal/security/ratelimit"
	"github.com/biokuam/portal/internal/service"
	"github.com/biokuam/portal/internal/storage"
	"github.com/biokuam/portal/internal/upstream/gemini"
	"github.com/biokuam/portal/internal/upstream/weather"
	"github.com/biokuam/portal/pkg/cache"
	"github.com/biokuam/portal/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	log.Info("starting Biokuam server", slog.String("environment", cfg.Environment))

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, "biokuam-portal", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize storage
	var store storage.CollectionStore
	switch {
	case cfg.StorageDriver == "postgres" && cfg.DatabaseURL != "":
		pgStore, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error("failed to connect to Postgres", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pgStore.Close()
		store = pgStore
	default:
		fileStore, err := storage.NewFileStore(cfg.DataDir, log)
		if err != nil {
			log.Error("failed to initialize file storage", slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = fileStore
	}

	// 5. Initialize weather cache: Redis when configured, in-process otherwise
	var weatherCache cache.Store = cache.New()
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL, log)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		weatherCache = redisClient
	}

	// 6. Initialize repositories
	userRepo := repository.NewUserRepository(store, log)
	farmRepo := repository.NewFarmRepository(store, log)
	vesselRepo := repository.NewVesselRepository(store, log)

	// 7. Initialize security components and the registration event hub
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "biokuam", cfg.TokenTTL)
	rateLimiter := ratelimit.NewLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	auditLogger := audit.NewLogger(log)
	hub := events.NewHub()

	// 8. Initialize services and upstream clients
	authService := service.NewAuthService(userRepo, tokenManager, hub, auditLogger, log)
	farmService := service.NewFarmService(farmRepo, hub, auditLogger, log)
	vesselService := service.NewVesselService(vesselRepo, hub, auditLogger, log)

	geminiClient := gemini.NewClient(gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.UpstreamTimeout,
	}, log)
	weatherClient := weather.NewClient(weather.Config{
		APIKey:  cfg.WeatherAPIKey,
		Timeout: cfg.UpstreamTimeout,
	}, log)

	// 9. Initialize handlers
	staticHandler, err := handler.NewStaticHandler(cfg.PublicDir, log)
	if err != nil {
		log.Error("failed to initialize static handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cachePinger handler.Pinger
	if redisClient != nil {
		cachePinger = redisClient
	}
	healthHandler := handler.NewHealthHandler(store, cachePinger, log)

	// 10. Setup HTTP routes. Unmatched requests, including API paths hit
	// with the wrong method, fall through to the static handler.
	mux := http.NewServeMux()
	mux.Handle("POST /api/login", handler.NewLoginHandler(authService, log))
	mux.Handle("POST /api/registro", handler.NewRegisterHandler(authService, log))
	mux.Handle("POST /api/registro-finca", handler.NewFarmRegisterHandler(farmService, log))
	mux.Handle("POST /api/registro-barco", handler.NewVesselRegisterHandler(vesselService, log))
	mux.Handle("GET /api/usuarios", handler.NewUserListHandler(authService, log))
	mux.Handle("GET /api/fincas", handler.NewFarmListHandler(farmService, log))
	mux.Handle("GET /api/barcos", handler.NewVesselListHandler(vesselService, log))
	mux.Handle("POST /api/gemini", handler.NewChatHandler(geminiClient, log))
	mux.Handle("GET /api/clima", handler.NewWeatherHandler(weatherClient, weatherCache, cfg.WeatherCacheTTL, log))
	mux.Handle("GET /ws/eventos", handler.NewEventsHandler(hub, log))
	mux.HandleFunc("GET /healthz", healthHandler.Liveness)
	mux.HandleFunc("GET /readyz", healthHandler.Readiness)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", staticHandler)

	// Chain middleware: request ID -> tracing -> metrics -> CORS -> rate limit -> auth
	rootHandler := withRequestID(
		otelhttp.NewHandler(
			metrics.HTTPMetricsMiddleware(
				middleware.CORS(
					middleware.RateLimit(rateLimiter, log)(
						middleware.Auth(tokenManager, auditLogger, log)(mux),
					),
				),
			),
			"biokuam.http",
		),
		log,
	)

	// 11. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage", cfg.StorageDriver),
		slog.String("auth", "jwt"),
		slog.Int("auth_rate_limit", cfg.AuthRateLimit),
		slog.Duration("auth_rate_window", cfg.AuthRateWindow),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	rateLimiter.Stop()
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
