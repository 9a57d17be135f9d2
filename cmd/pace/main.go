// Prints the current temperature pace for every registered station: today's
// running extremes, the hourly velocity, and the trend classification.
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

	"stationpace/internal/config"
	"stationpace/internal/db"
	"stationpace/internal/logging"
	"stationpace/internal/pace"
	"stationpace/internal/station"
	"stationpace/internal/store"
)

const (
	appName = "pace"
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

	obsStore := store.NewObservationStore(obsDB)
	svc := pace.NewService(obsStore, clockwork.NewRealClock())

	for _, st := range registry.Stations() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		printStation(svc, st)
	}

	// Stored data can outlive a registry entry; surface it instead of
	// silently ignoring it.
	stored, err := obsStore.DistinctStations()
	if err != nil {
		return fmt.Errorf("list stored stations: %w", err)
	}
	for _, id := range stored {
		if _, ok := registry.ByID(id); !ok {
			fmt.Printf("%s has stored observations but is not in the registry\n", id)
		}
	}
	return nil
}

func printStation(svc *pace.Service, st station.Station) {
	fmt.Printf("%s (%s)\n", st.Name, st.ID)

	snap, ok, err := svc.SnapshotFor(st)
	if err != nil {
		fmt.Printf("  error: %v\n", err)
		return
	}
	if !ok {
		fmt.Println("  no observations for the current local day")
		return
	}

	fmt.Printf("  current: %.1f F  high: %.1f F  low: %.1f F  (%d readings)\n",
		snap.Current, snap.High, snap.Low, snap.SampleCount)
	if !snap.VelocityKnown {
		fmt.Println("  velocity: unavailable (not enough history)")
		return
	}
	fmt.Printf("  velocity: %+.1f F/hr  trend: %s\n", snap.Velocity, snap.Trend)
	if projected, ok := pace.Project(snap, 3); ok {
		fmt.Printf("  projected in 3h: %.1f F\n", projected)
	}
}
