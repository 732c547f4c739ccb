package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"email-triage/internal/config"
	"email-triage/internal/handler"
	"email-triage/internal/middleware"
	"email-triage/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "1.0.0"

func main() {
	configPath := flag.String("config", envOr("TRIAGE_CONFIG", "configs/config.yml"), "path to YAML config")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := pipeline.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Email Triage Service...", zap.String("version", version))

	// Initialize classification and reply chains
	p, err := pipeline.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", zap.Error(err))
	}
	defer p.Close()

	opts := handler.Options{
		Version:        version,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		IndexPath:      cfg.Web.IndexPath,
		StaticDir:      cfg.Web.StaticDir,
	}
	if cfg.Server.RequestsPerMinute > 0 {
		opts.RateLimiter = middleware.NewRateLimiter(cfg.Server.RequestsPerMinute)
		logger.Info("Rate limiting enabled", zap.Int("requests_per_minute", cfg.Server.RequestsPerMinute))
	}

	// Initialize HTTP handler
	apiHandler := handler.NewHandler(p.Analyzer, opts, logger)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.Server.AllowOrigins),
	)

	// Register routes
	apiHandler.RegisterRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("Server starting", zap.String("address", serverAddr))

	// Graceful shutdown
	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           gzhttp.GzipHandler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Email Triage Service is running",
		zap.String("port", cfg.Server.Port),
		zap.Bool("breaker", cfg.Breaker.Enabled))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
