package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/benvon/problem-dashboard/internal/catalog"
	"github.com/benvon/problem-dashboard/internal/completion"
	"github.com/benvon/problem-dashboard/internal/config"
	"github.com/benvon/problem-dashboard/internal/dashboard"
	"github.com/benvon/problem-dashboard/internal/handlers"
	"github.com/benvon/problem-dashboard/internal/logger"
	"github.com/benvon/problem-dashboard/internal/metrics"
	"github.com/benvon/problem-dashboard/internal/middleware"
	"github.com/benvon/problem-dashboard/internal/problems"
	"github.com/benvon/problem-dashboard/internal/settings"
	"github.com/benvon/problem-dashboard/internal/storage"
	"github.com/benvon/problem-dashboard/internal/telemetry"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(cfg.LogFormat, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.String("version", Version),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.Bool("sample_fallback_enabled", cfg.SampleFallbackEnabled),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), telemetry.Config{
				ServiceName:    telemetry.ServiceName,
				ServiceVersion: Version,
				Endpoint:       cfg.OTELEndpoint,
			})
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	kv, limiterClient, err := openStorage(cfg)
	if err != nil {
		zapLogger.Fatal("failed_to_open_storage", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer func() {
		if err := kv.Close(); err != nil {
			zapLogger.Warn("failed_to_close_storage", zap.Error(err))
		}
		if limiterClient != nil && cfg.StorageBackend != storage.BackendRedis {
			if err := limiterClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}
	}()
	zapLogger.Info("storage_opened",
		zap.String("backend", cfg.StorageBackend),
		zap.String("namespace", cfg.StorageNamespace),
	)

	cat, err := catalog.Load(cfg.CompaniesFile)
	if err != nil {
		zapLogger.Fatal("failed_to_load_company_catalog", zap.Error(err))
	}

	recorder := metrics.New()
	loader := problems.NewLoader(cfg.ProblemSource(),
		problems.WithFallback(cfg.SampleFallbackEnabled),
		problems.WithLogger(zapLogger),
		problems.WithObserver(recorder),
	)

	svc := dashboard.NewService(cat, loader,
		completion.NewStore(kv, zapLogger),
		settings.NewStore(kv, zapLogger),
	)
	session := dashboard.NewSession(svc, zapLogger, dashboard.WithLoadTimeout(cfg.ProblemsFetchTimeout))
	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), cfg.ProblemsFetchTimeout)
	if err := session.Restore(restoreCtx); err != nil {
		zapLogger.Warn("session_restore_failed", zap.Error(err))
	}
	restoreCancel()

	rateLimitMW, err := middleware.RateLimit(cfg.RateLimit, limiterClient, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, first registered is outermost
	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware(telemetry.ServiceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS, middleware.APIContentSecurityPolicy))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.CORS(cfg.FrontendOrigins()))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes, no rate limiting
	handlers.NewHealthChecker(kv, Version).RegisterRoutes(r)
	r.Handle("/metrics", recorder.Handler()).Methods("GET")
	handlers.NewOpenAPIHandler().RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.ContentType)
	apiRouter.Use(rateLimitMW)
	handlers.NewAPIHandler(svc, zapLogger).RegisterRoutes(apiRouter)

	if cfg.ProblemsBaseURL == "" {
		r.PathPrefix("/" + problems.DefaultRoot + "/").Handler(
			http.StripPrefix("/"+problems.DefaultRoot+"/", http.FileServer(http.Dir(cfg.ProblemsDir))),
		).Methods("GET")
	}

	// The page needs its stylesheet and form posts, so it overrides the API policy
	pageRouter := r.PathPrefix("/").Subrouter()
	pageRouter.Use(middleware.SecurityHeaders(cfg.EnableHSTS, middleware.PageContentSecurityPolicy))
	pageRouter.Use(rateLimitMW)
	handlers.NewPageHandler(session, svc, zapLogger).RegisterRoutes(pageRouter)

	// Preflight requests are answered by the CORS middleware; this keeps mux from returning 405
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      middleware.DefaultRequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
			zap.String("base_url", cfg.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
		return
	}

	zapLogger.Info("server_exited")
}

// openStorage opens the configured backend. The returned Redis client, when
// REDIS_URL is set, backs the rate limiter and is the storage connection itself
// for the redis backend.
func openStorage(cfg *config.Config) (storage.Store, *redis.Client, error) {
	if cfg.StorageBackend == storage.BackendRedis {
		rdb, err := storage.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return storage.WithNamespace(rdb, cfg.StorageNamespace), rdb.Client(), nil
	}

	kv, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return nil, nil, err
	}
	if cfg.RedisURL == "" {
		return kv, nil, nil
	}
	rdb, err := storage.NewRedis(cfg.RedisURL)
	if err != nil {
		_ = kv.Close()
		return nil, nil, err
	}
	return kv, rdb.Client(), nil
}
