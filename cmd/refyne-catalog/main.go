// Package main is the entry point for the refyne-catalog server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmylchreest/refyne-catalog/internal/config"
	"github.com/jmylchreest/refyne-catalog/internal/http/handlers"
	"github.com/jmylchreest/refyne-catalog/internal/http/routes"
	"github.com/jmylchreest/refyne-catalog/internal/logging"
	"github.com/jmylchreest/refyne-catalog/internal/service"
	"github.com/jmylchreest/refyne-catalog/internal/shutdown"
	"github.com/jmylchreest/refyne-catalog/internal/version"
)

func main() {
	logger := logging.SetDefault()

	v := version.Get()
	logger.Info("starting refyne-catalog",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	services, err := service.NewServices(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	h := &routes.Handlers{
		HealthCheck: handlers.HealthCheck,
		Livez:       handlers.Livez,
		Catalog: handlers.NewCatalogHandler(
			services.Conversion,
			services.Pipeline.Defaults(),
			cfg.MaxUploadBytes,
			logger,
		),
	}
	router, _ := routes.NewRouter(routes.RouterConfig{
		BaseURL:          cfg.BaseURL,
		CORSOrigins:      cfg.CORSOrigins,
		MaxUploadBytes:   cfg.MaxUploadBytes,
		RequestTimeout:   cfg.RequestTimeout,
		ConvertTimeout:   cfg.ConvertTimeout,
		UploadsPerMinute: cfg.UploadsPerMinute,
	}, h)

	idle := shutdown.NewIdleMonitor(shutdown.IdleMonitorConfig{
		Timeout:      cfg.IdleTimeout,
		ExcludePaths: []string{"/healthz"},
		Logger:       logger,
	})

	// WriteTimeout covers ordinary requests; conversions extend their own
	// write deadline up to the convert timeout.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      idle.Middleware(router),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-sigChan:
			logger.Info("shutting down server")
		case <-idle.ShutdownChan():
			logger.Info("shutting down idle server")
		}
		idle.Stop()

		// In-flight conversions get the same budget they had when they started.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ConvertTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	idle.Start()

	logger.Info("starting server",
		"port", cfg.Port,
		"base_url", cfg.BaseURL,
		"storage", services.Storage.IsEnabled(),
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
