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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/eshift/customer-core/internal/handler"
	"github.com/eshift/customer-core/internal/infrastructure/logger"
	"github.com/eshift/customer-core/internal/infrastructure/redis"
	"github.com/eshift/customer-core/internal/notification"
	"github.com/eshift/customer-core/internal/observability/metrics"
	"github.com/eshift/customer-core/internal/observability/tracing"
	"github.com/eshift/customer-core/internal/realtime"
	"github.com/eshift/customer-core/internal/repository"
	"github.com/eshift/customer-core/internal/security/audit"
	"github.com/eshift/customer-core/internal/security/auth"
	"github.com/eshift/customer-core/internal/security/middleware"
	"github.com/eshift/customer-core/internal/security/ratelimit"
	"github.com/eshift/customer-core/internal/service"
	"github.com/eshift/customer-core/internal/worker"
	"github.com/eshift/customer-core/pkg/config"
	"github.com/eshift/customer-core/pkg/database"
)

func main() {
	// 1. Load configuration (.env is optional, real env wins)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting customer-core server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing
	shutdownTracing, err := tracing.Init(ctx, log, "customer-core", cfg.Environment)
	if err != nil {
		log.Warn("tracing disabled", slog.String("error", err.Error()))
		shutdownTracing = func(context.Context) error { return nil }
	}

	// 4. Initialize Redis client. The listing cache is an optimization; the
	// server runs without it.
	var redisClient *redis.Client
	if rc, err := redis.NewClient(cfg.RedisURL); err != nil {
		log.Warn("redis unavailable, listing cache disabled", slog.String("error", err.Error()))
	} else {
		redisClient = rc
		defer redisClient.Close()
	}

	// 5. Initialize database pool and schema
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.EnsureSchema(ctx); err != nil {
		log.Error("failed to ensure schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Initialize repository, event hub, notification pipeline
	customerRepo := repository.NewPostgresCustomerRepository(pool.GetDB(), log)
	hub := realtime.NewHub(log)

	emailSink := notification.NewEmailSink(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPassword,
		cfg.SenderEmail,
		cfg.SenderDisplayName,
		log,
	)
	notifyWorker := worker.NewNotifyWorker(emailSink, log)
	go notifyWorker.Start(ctx)

	// 7. Initialize service
	customerService := service.NewCustomerService(customerRepo, notifyWorker, hub, log)

	// 8. Initialize security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "eshift")
	adminStore := auth.NewAdminStore()
	if cfg.AdminPassword != "" {
		if err := adminStore.AddAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Error("failed to bootstrap admin account", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		log.Warn("ADMIN_PASSWORD not set, admin endpoints are unreachable")
	}
	rateLimiter := ratelimit.NewLimiter(100, time.Minute) // 100 requests per minute per client
	auditLogger := audit.NewLogger(log)

	// 9. Initialize handlers
	registerHandler := handler.NewRegisterHandler(customerService, redisClient, log)
	loginHandler := handler.NewLoginHandler(tokenManager, adminStore, customerService, cfg.TokenLifetime, log)
	customersHandler := handler.NewCustomersHandler(customerService, redisClient, cfg.ListingCacheTTL, log)
	canDeleteHandler := handler.NewCanDeleteHandler(customerService, log)
	deleteHandler := handler.NewDeleteHandler(customerService, redisClient, auditLogger, log)
	eventsHandler := handler.NewEventsHandler(hub, tokenManager, cfg.CORSAllowedOrigins, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient, log)

	// 10. Setup HTTP routes
	mux := http.NewServeMux()
	mux.Handle("POST /api/customers", registerHandler)
	mux.Handle("GET /api/customers", customersHandler)
	mux.Handle("GET /api/customers/{id}/can-delete", canDeleteHandler)
	mux.Handle("DELETE /api/customers/{id}", deleteHandler)
	mux.Handle("POST /api/login", loginHandler)
	mux.Handle("GET /ws/events", eventsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> JWT -> rate limit -> audit
	// -> CORS. JWT runs first so the limiter and audit log can key on the
	// authenticated identity.
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.JWTMiddleware(tokenManager, log)(
				middleware.RateLimitMiddleware(rateLimiter, log)(
					middleware.AuditMiddleware(auditLogger)(handlerWithCORS),
				),
			),
		),
		log,
	)

	// 11. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "customer-core"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", 100),
		slog.String("rate_limit_window", "1m"),
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

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop the notification worker
	rateLimiter.Stop()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

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

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
