package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/enrollhub/onboarding-api/pkg/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	deps, err := InitDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Cleanup()

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: newRouter(deps),
	}

	if err := deps.Scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer deps.Scheduler.Stop()

	var metricsSrv, pprofSrv *http.Server
	if cfg.Observability.MetricsEnabled {
		metricsSrv = startMetricsServer(deps)
	}
	if cfg.Profiling.Enabled {
		pprofSrv = startProfilingServer(deps)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("server failed", "error", err)
		os.Exit(1)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx := context.Background()
	if err := shutdownServer(ctx, srv); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if metricsSrv != nil {
		_ = shutdownServer(ctx, metricsSrv)
	}
	if pprofSrv != nil {
		_ = shutdownServer(ctx, pprofSrv)
	}

	logger.Info("server stopped")
}
