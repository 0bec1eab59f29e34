// BARO Legal API - Server Entry Point
//
// This is the main entry point for the BARO legal classification API.
// It initializes all dependencies and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/baro-ai/legal-api/internal/config"
	"github.com/baro-ai/legal-api/internal/handler"
	"github.com/baro-ai/legal-api/internal/logger"
	"github.com/baro-ai/legal-api/internal/model"
	"github.com/baro-ai/legal-api/internal/observability"
	"github.com/baro-ai/legal-api/internal/service"
	"github.com/baro-ai/legal-api/pkg/sanitizer"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.Setup(logger.Options{
		Name:        cfg.Logging.Name,
		FilePath:    cfg.Logging.File,
		Level:       cfg.Logging.Level,
		Development: cfg.App.Debug,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting "+cfg.App.Name,
		zap.String("version", cfg.App.Version),
		zap.Bool("debug", cfg.App.Debug),
		zap.String("port", cfg.Server.Port),
		zap.Int("api_keys", len(cfg.Auth.APIKeys)),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, cfg.App.Version)
	if err != nil {
		zapLogger.Fatal("failed to initialize tracing", zap.Error(err))
	}

	// Load the model once; a disabled or failed load leaves prediction
	// routes answering 503.
	var legalModel model.Model
	if cfg.Model.Enabled {
		m, err := model.Load(ctx, model.Options{
			Version: cfg.Model.Version,
			WarmUp:  cfg.Model.WarmUp,
		}, zapLogger)
		if err != nil {
			zapLogger.Error("model failed to load", zap.Error(err))
		} else {
			legalModel = m
		}
	} else {
		zapLogger.Warn("model disabled - prediction routes will answer 503")
	}

	classifier := service.NewClassifier(
		legalModel,
		model.NewDefaultValidator(),
		sanitizer.New(120),
		service.ClassifierConfig{Workers: cfg.Model.Workers},
		zapLogger,
	)

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Setup Gin router
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.Dependencies{
		Config:     cfg,
		Classifier: classifier,
		Registry:   registry,
		Logger:     zapLogger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		zapLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	stop()

	zapLogger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLogger.Warn("tracing shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped")
}
