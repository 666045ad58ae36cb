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

	"docmill/internal/api"
	"docmill/internal/config"
	"docmill/internal/gate"
	"docmill/internal/history"
	"docmill/internal/job"
	"docmill/internal/logger"
	"docmill/internal/models"
	"docmill/internal/observability"
	"docmill/internal/ratelimit"
	"docmill/internal/version"
)

var configFile = flag.String("config", "", "Path to configuration file")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	log, closer, err := logger.Setup(cfg.Logging, version.GetInfo())
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	// Initialize observability (OpenTelemetry)
	otelProvider, err := observability.Setup(cfg.Metrics, cfg.Observability, version.GetInfo())
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

	// Initialize job history store
	store, err := history.NewStore(context.Background(), cfg.History)
	if err != nil {
		slog.Error("Failed to initialize history store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Concurrency gate and job runner
	jobGate := gate.New(cfg.Admission.MaxConcurrentJobs)
	runner := job.NewRunner(cfg.Tool, jobGate, cfg.Admission.CapacityRetryAfter)

	probeTool(runner, cfg.Tool)

	// Wrap the runner with instrumentation if metrics are enabled
	var jobService job.Service = runner
	if cfg.Metrics.Enabled {
		instrumented, err := observability.NewInstrumentedRunner(runner)
		if err != nil {
			slog.Error("Failed to create instrumented runner", "error", err)
			os.Exit(1)
		}
		jobService = instrumented
	}

	// Initialize HTTP handlers
	handlers := api.NewHandlers(jobService, store, cfg)

	// Setup routes with middleware
	routeOpts := []api.RouteOption{}
	if cfg.Observability.Tracing.Enabled {
		routeOpts = append(routeOpts, api.WithOTelMiddleware(cfg.Observability.ServiceName))
	}

	var heavyLimit func(http.Handler) http.Handler
	if cfg.Admission.Enabled {
		clientKey := ratelimit.ClientKey(cfg.Server.TrustedProxyHops)

		globalLimiter := ratelimit.NewWindowLimiter(cfg.Admission.GlobalMaxRequests, cfg.Admission.Window)
		heavyLimiter := ratelimit.NewWindowLimiter(cfg.Admission.HeavyMaxRequests, cfg.Admission.Window)

		routeOpts = append(routeOpts, api.WithRateLimiter(ratelimit.Middleware(
			globalLimiter, models.ErrorCodeRateLimited, "Rate limit exceeded", clientKey)))
		heavyLimit = ratelimit.Middleware(
			heavyLimiter, models.ErrorCodeHeavyRateLimited, "Heavy operation rate limit exceeded", clientKey)
	}

	router := api.SetupRoutes(handlers, cfg, heavyLimit, routeOpts...)

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
		slog.Info("Starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("Metrics server forced to shutdown", "error", err)
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server shutdown complete")
}

// probeTool verifies the external tool is present and recent enough. A
// missing tool is not fatal at startup; every job would fail loudly anyway,
// and deployments may mount the binary after the service starts.
func probeTool(runner *job.Runner, cfg models.ToolConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ver, err := runner.Probe(ctx)
	switch {
	case err != nil:
		slog.Warn("External tool probe failed", "binary", cfg.Binary, "error", err)
	case ver == "":
		slog.Warn("External tool reported no recognizable version", "binary", cfg.Binary)
	default:
		slog.Info("External tool ready", "binary", cfg.Binary, "version", ver)
	}
}
