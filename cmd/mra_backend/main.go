package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/SscSPs/money_records_app/internal/app"
	"github.com/SscSPs/money_records_app/internal/core/services"
	"github.com/SscSPs/money_records_app/internal/handlers"
	"github.com/SscSPs/money_records_app/internal/middleware"
	"github.com/SscSPs/money_records_app/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// @title Money Records API
// @version 1.0
// @description Personal finance record keeper: CSV import with base-currency conversion and transaction CRUD.

// @host localhost:8080
// @BasePath /api
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := app.OpenStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Store ready", slog.String("store", string(store.Kind)))

	serviceContainer := services.NewServiceContainer(cfg, store.Repos)

	uploadLimiter, err := middleware.NewMemoryLimiter(cfg.UploadRateLimit)
	if err != nil {
		logger.Error("Failed to create upload rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, uploadLimiter)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
