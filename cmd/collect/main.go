// One live-collection batch over every registered station, then exit.
// Per-station failures are counted in the summary, not fatal; only an
// unusable config, registry, or store fails the process.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"stationpace/internal/collector"
	"stationpace/internal/config"
	"stationpace/internal/db"
	"stationpace/internal/logging"
	"stationpace/internal/nws"
	"stationpace/internal/observability"
	"stationpace/internal/station"
	"stationpace/internal/store"
)

const (
	appName = "collect"
	// Default version is "dev" if not set with -ldflags "-X main.version=..."
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
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

	client := nws.NewObservationClient(cfg.ObservationBaseURL, registry.Defaults.UserAgent, cfg.RequestTimeout)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	col := collector.New(
		client,
		store.NewObservationStore(obsDB),
		registry.Stations(),
		cfg.PacingDelay,
		clockwork.NewRealClock(),
		logger,
		metrics,
	)

	sum, err := col.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("collection batch done",
		"saved", sum.Saved,
		"duplicate", sum.Duplicate,
		"skipped_no_temp", sum.SkippedNoTemp,
		"failed", sum.Failed,
	)
	return nil
}
