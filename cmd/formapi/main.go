package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	appconfig "github.com/wolfman30/sshrobotics-web/internal/config"
	"github.com/wolfman30/sshrobotics-web/internal/database/sqlitestore"
	"github.com/wolfman30/sshrobotics-web/internal/formapi"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	store := sqlitestore.New(sqlitestore.Config{Path: cfg.DBPath, Logger: logger})
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	err := store.Initialize(initCtx)
	cancelInit()
	if err != nil {
		logger.Error("failed to initialize SQLite database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	logger.Info("SQLite database initialized", "path", cfg.DBPath)

	srv := &http.Server{
		Addr: ":" + cfg.FormAPIPort,
		Handler: formapi.New(formapi.Config{
			Store:       store,
			Logger:      logger,
			CORSOrigins: cfg.FormAPICORSOrigin,
		}).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("form API server listening", "addr", srv.Addr, "health", "http://localhost:"+cfg.FormAPIPort+"/api/health")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down form API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := store.Close(); err != nil {
		logger.Warn("failed to close SQLite database", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
