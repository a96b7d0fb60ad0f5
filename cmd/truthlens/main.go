package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"truthlens/internal/api"
	"truthlens/internal/config"
	"truthlens/internal/logger"
	"truthlens/internal/mediacheck"
	"truthlens/internal/observability"
	"truthlens/internal/quota"
	"truthlens/internal/storage"
	"truthlens/internal/version"

	"github.com/gorilla/mux"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file")
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()

	ver := version.GetInfo()
	if *showVersion {
		fmt.Println(ver.String())
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	log, closer, err := logger.Setup(cfg.Logging, ver)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	// Initialize observability (OpenTelemetry)
	otelProvider, err := observability.Setup(cfg.Metrics, cfg.Observability, ver)
	if err != nil {
		slog.Error("Failed to initialize observability", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown observability", "error", err)
		}
	}()

	// Initialize the classification bridge. Without an API key the service
	// still starts but answers check requests with a configuration error.
	if !cfg.Classifier.Enabled() {
		slog.Warn("Classifier API key not configured, media check is disabled")
	}
	classifierService := mediacheck.NewService(cfg.Classifier)
	defer classifierService.Close()

	var classifier mediacheck.Classifier = classifierService
	if cfg.Metrics.Enabled {
		instrumented, err := observability.NewInstrumentedClassifier(classifierService)
		if err != nil {
			slog.Error("Failed to create instrumented classifier", "error", err)
			os.Exit(1)
		}
		classifier = instrumented
	}

	// Initialize the quota guard
	var guard quota.Guard
	if cfg.Quota.Enabled {
		memGuard := quota.NewMemoryGuard(cfg.Quota.DailyLimit, cfg.Quota.CleanupInterval)
		defer memGuard.Close()
		guard = memGuard
	}

	handlerOpts := []api.HandlerOption{
		api.WithMediaCheckEnabled(cfg.Classifier.Enabled()),
	}

	// Initialize history storage if enabled
	if cfg.History.Enabled {
		store, err := storage.NewFactory().Create(cfg.History)
		if err != nil {
			slog.Error("Failed to initialize history storage", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		var activeStore storage.Storage = store
		if cfg.Metrics.Enabled {
			instrumented, err := observability.NewInstrumentedStorage(store)
			if err != nil {
				slog.Error("Failed to create instrumented storage", "error", err)
				os.Exit(1)
			}
			activeStore = instrumented
		}
		handlerOpts = append(handlerOpts, api.WithHistory(activeStore, cfg.History.CacheTTL))
	}

	handlers := api.NewHandlers(classifier, guard, handlerOpts...)

	// Setup routes with middleware
	routeOpts := []api.RouteOption{}
	if cfg.Observability.Tracing.Enabled {
		routeOpts = append(routeOpts, api.WithOTelMiddleware(cfg.Observability.ServiceName))
	}

	var quotaMW mux.MiddlewareFunc
	if guard != nil {
		quotaMW = quota.Middleware(guard)
	}

	router := api.SetupRoutes(handlers, cfg, quotaMW, routeOpts...)

	// Start metrics server if enabled
	var metricsServer *observability.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = observability.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, otelProvider)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "addr", server.Addr, "version", ver.Version)

		var err error
		if cfg.Server.TLSEnabled {
			if cfg.Server.TLSCertFile == "" || cfg.Server.TLSKeyFile == "" {
				slog.Error("TLS is enabled but cert file or key file is not specified")
				os.Exit(1)
			}
			slog.Info("Starting HTTPS server with TLS")
			err = server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			slog.Info("Starting HTTP server")
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	// Create a deadline to wait for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown metrics server
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("Metrics server forced to shutdown", "error", err)
		}
	}

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server shutdown complete")
}
