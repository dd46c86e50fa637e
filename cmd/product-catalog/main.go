package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/aaravmahajanofficial/product-catalog/docs"
	"github.com/aaravmahajanofficial/product-catalog/internal/api/handlers"
	"github.com/aaravmahajanofficial/product-catalog/internal/api/middleware"
	"github.com/aaravmahajanofficial/product-catalog/internal/cache"
	"github.com/aaravmahajanofficial/product-catalog/internal/config"
	"github.com/aaravmahajanofficial/product-catalog/internal/health"
	"github.com/aaravmahajanofficial/product-catalog/internal/ingest"
	"github.com/aaravmahajanofficial/product-catalog/internal/metrics"
	repository "github.com/aaravmahajanofficial/product-catalog/internal/repositories"
	service "github.com/aaravmahajanofficial/product-catalog/internal/services"
	"github.com/aaravmahajanofficial/product-catalog/internal/tracing"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//	@title			Product Catalog API
//	@version		1.0
//	@description	Ingests product CSV files and serves paginated listing and search over the stored catalog.
//	@host			localhost:8081
//	@BasePath		/api
//	@schemes		http

func main() {

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to read .env file", slog.String("error", err.Error()))
	}

	// Load config
	cfg := config.MustLoad()

	// Logger setup
	slog.SetDefault(newLogger(cfg))

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, &cfg.Otel, health.Version)
	if err != nil {
		slog.Error("❌ Error setting up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(ctx, cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup, optional
	var productCache cache.Cache
	var uploadLimiter repository.RateLimitRepository
	if cfg.RedisConnect.Enabled {
		client, err := cache.NewRedisClient(ctx, &cfg.RedisConnect)
		if err != nil {
			slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
			os.Exit(1)
		}
		productCache = cache.NewRedisCache(client, &cfg.Cache)
		if cfg.RateLimit.Enabled {
			uploadLimiter = repository.NewRateLimitRepo(client, cfg.RateLimit)
		}

		defer func() {
			if err := productCache.Close(); err != nil {
				slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
			}
		}()
	}

	pipeline := ingest.NewPipeline(repos.Product, ingest.NewNormalizer(cfg.Upload.SanitizeHTML))
	productService := service.NewProductService(repos.Product, pipeline, productCache, cfg)
	productHandler := handlers.NewProductHandler(productService, cfg.Upload)

	healthChecker, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error setting up health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("storage initialized",
		slog.String("env", cfg.Env),
		slog.String("version", health.Version),
		slog.Bool("cache", productCache != nil),
	)

	// Setup router
	routerMux := http.NewServeMux()
	var uploadHandler http.Handler = productHandler.UploadProducts()
	if uploadLimiter != nil {
		uploadHandler = middleware.RateLimit(uploadLimiter)(uploadHandler)
	}
	routerMux.Handle("POST /api/product/upload", uploadHandler)
	routerMux.HandleFunc("GET /api/product", productHandler.ListProducts())
	routerMux.HandleFunc("GET /api/product/{$}", productHandler.ListProducts())
	routerMux.HandleFunc("GET /api/product/search", productHandler.SearchProducts())
	routerMux.Handle("GET /health", healthChecker.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	routerMux.HandleFunc("/", handlers.NotFound())

	// Middleware chaining, innermost first; metrics must sit right above the mux
	var handler http.Handler = routerMux
	handler = middleware.Recover(handler)
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, cfg.Otel.ServiceName)

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
	}
}

// newLogger writes text when running locally and JSON everywhere else.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Env == "local" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
