package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wolfman30/sshrobotics-web/cmd/mainconfig"
	"github.com/wolfman30/sshrobotics-web/internal/api/router"
	"github.com/wolfman30/sshrobotics-web/internal/app/bootstrap"
	appconfig "github.com/wolfman30/sshrobotics-web/internal/config"
	"github.com/wolfman30/sshrobotics-web/internal/contact"
	"github.com/wolfman30/sshrobotics-web/internal/observability/metrics"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting sshrobotics-web API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"database_type", cfg.DatabaseType,
	)

	ctx := context.Background()

	var awsCfg *aws.Config
	if bootstrap.NeedsAWS(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		awsCfg = &loaded
	}

	metricsHandler, formMetrics := setupFormMetrics()

	selector := bootstrap.BuildSelector(cfg, awsCfg, formMetrics, logger)
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	limiter, stopLimiter := bootstrap.BuildRateLimiter(cfg, redisClient, logger)
	defer stopLimiter()

	var notifier contact.Notifier
	if svc := bootstrap.BuildNotifier(cfg, bootstrap.BuildEmailSender(cfg, awsCfg, logger), logger); svc != nil {
		notifier = svc
	}

	// Initialize handlers
	contactService := contact.NewService(selector, logger)
	contactHandler := contact.NewHandler(contactService, notifier, logger)

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		ContactHandler:     contactHandler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
		Metrics:            formMetrics,
	})

	// Create HTTP server
	srv := newServer(cfg, r)

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := selector.Close(shutdownCtx); err != nil {
		logger.Warn("failed to close database provider", "error", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupFormMetrics registers the form metrics on a private registry and
// returns the handler that exposes it.
func setupFormMetrics() (http.Handler, *metrics.FormMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	formMetrics := metrics.NewFormMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), formMetrics
}

func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
