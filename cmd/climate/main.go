// One pass over every registered station: fetch the official climate report,
// parse the authoritative high/low, and lock the day's result. Stations whose
// report is not yet issued are skipped and retried on the next run.
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

	"stationpace/internal/climate"
	"stationpace/internal/config"
	"stationpace/internal/db"
	"stationpace/internal/logging"
	"stationpace/internal/nws"
	"stationpace/internal/observability"
	"stationpace/internal/station"
	"stationpace/internal/store"
)

const (
	appName = "climate"
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

	client := nws.NewClimateReportClient(cfg.ReportBaseURL, registry.Defaults.UserAgent, cfg.RequestTimeout)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	runner := climate.NewRunner(
		client,
		store.NewResultStore(resultsDB),
		registry.Stations(),
		clockwork.NewRealClock(),
		logger,
		metrics,
	)

	sum, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("report check done",
		"locked", sum.Locked,
		"unavailable", sum.Unavailable,
		"parse_failed", sum.ParseFailed,
		"failed", sum.Failed,
	)
	return nil
}
