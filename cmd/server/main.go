// Long-running daemon: scheduled live collection and report checks, plus the
// JSON query API, /healthz, and /metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"stationpace/internal/climate"
	"stationpace/internal/collector"
	"stationpace/internal/config"
	"stationpace/internal/db"
	"stationpace/internal/httpapi"
	"stationpace/internal/logging"
	"stationpace/internal/nws"
	"stationpace/internal/observability"
	"stationpace/internal/pace"
	"stationpace/internal/scheduler"
	"stationpace/internal/station"
	"stationpace/internal/store"
)

const (
	appName = "server"
	version = "dev"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	registry, err := station.Load(cfg.StationsPath, logger)
	if err != nil {
		return fmt.Errorf("load station registry: %w", err)
	}

	obsDB, err := db.Open(cfg, cfg.ObservationsDBPath)
	if err != nil {
		return fmt.Errorf("open observation store: %w", err)
	}
	defer func() {
		if err := db.Close(obsDB); err != nil {
			logger.Error("close observation store", "error", err)
		}
	}()
	if err := store.MigrateObservations(obsDB); err != nil {
		return fmt.Errorf("migrate observation store: %w", err)
	}

	resultsDB, err := db.Open(cfg, cfg.ResultsDBPath)
	if err != nil {
		return fmt.Errorf("open results store: %w", err)
	}
	defer func() {
		if err := db.Close(resultsDB); err != nil {
			logger.Error("close results store", "error", err)
		}
	}()
	if err := store.MigrateResults(resultsDB); err != nil {
		return fmt.Errorf("migrate results store: %w", err)
	}

	obsStore := store.NewObservationStore(obsDB)
	resultStore := store.NewResultStore(resultsDB)
	clock := clockwork.NewRealClock()

	metricsReg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(metricsReg)

	col := collector.New(
		nws.NewObservationClient(cfg.ObservationBaseURL, registry.Defaults.UserAgent, cfg.RequestTimeout),
		obsStore,
		registry.Stations(),
		cfg.PacingDelay,
		clock,
		logger,
		metrics,
	)
	rep := climate.NewRunner(
		nws.NewClimateReportClient(cfg.ReportBaseURL, registry.Defaults.UserAgent, cfg.RequestTimeout),
		resultStore,
		registry.Stations(),
		clock,
		logger,
		metrics,
	)

	sched := scheduler.New(col, rep, cfg.CollectInterval, cfg.ReportInterval, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	paceSvc := pace.NewService(obsStore, clock)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.RequestLogger(httpapi.NewMux(registry, paceSvc, resultStore, obsDB, resultsDB, metricsReg)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return ctx.Err()
}
