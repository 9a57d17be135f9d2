// Package collector runs one live-collection batch: for every registered
// station, fetch the latest observation from the upstream feed and persist it.
package collector

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"stationpace/internal/nws"
	"stationpace/internal/observability"
	"stationpace/internal/station"
	"stationpace/internal/store"
)

type Collector struct {
	client   *nws.ObservationClient
	store    *store.ObservationStore
	stations []station.Station
	pacing   time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

func New(
	client *nws.ObservationClient,
	obsStore *store.ObservationStore,
	stations []station.Station,
	pacing time.Duration,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Collector {
	return &Collector{
		client:   client,
		store:    obsStore,
		stations: stations,
		pacing:   pacing,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Summary is the per-run outcome tally. Per-station problems are counted
// here, never surfaced as a run error.
type Summary struct {
	Saved         int
	Duplicate     int
	SkippedNoTemp int
	Failed        int
}

// Run processes every registered station sequentially, with a pacing delay
// between upstream requests. It returns an error only when the context is
// canceled; a station failing never aborts the batch.
func (c *Collector) Run(ctx context.Context) (Summary, error) {
	start := c.clock.Now()
	var sum Summary

	for i, st := range c.stations {
		if i > 0 && c.pacing > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-c.clock.After(c.pacing):
			}
		}
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		c.collectStation(ctx, st, &sum)
	}

	c.metrics.CollectRunDuration.Observe(c.clock.Since(start).Seconds())
	c.logger.Info("collection complete",
		"saved", sum.Saved,
		"duplicate", sum.Duplicate,
		"skipped_no_temp", sum.SkippedNoTemp,
		"failed", sum.Failed,
	)
	return sum, nil
}

func (c *Collector) collectStation(ctx context.Context, st station.Station, sum *Summary) {
	obs, err := c.client.Latest(ctx, st.ID)
	if err != nil {
		c.logger.Warn("observation fetch failed", "station", st.ID, "error", err)
		c.metrics.ObservationFailures.Inc()
		sum.Failed++
		return
	}

	if obs.TempC == nil {
		// Sensor offline or temperature not reported; nothing to store.
		c.logger.Warn("no temperature in latest observation", "station", st.ID)
		c.metrics.ObservationsSkipped.Inc()
		sum.SkippedNoTemp++
		return
	}

	tempF := round1(*obs.TempC*9/5 + 32)

	var desc *string
	if obs.Description != "" {
		desc = &obs.Description
	}

	inserted, err := c.store.Record(store.Observation{
		StationID:   st.ID,
		Time:        obs.Timestamp,
		TempF:       tempF,
		Humidity:    obs.Humidity,
		WindSpeed:   obs.WindSpeed,
		Description: desc,
		RawJSON:     string(obs.Raw),
	})
	if err != nil {
		c.logger.Error("observation save failed", "station", st.ID, "error", err)
		c.metrics.ObservationFailures.Inc()
		sum.Failed++
		return
	}

	if !inserted {
		// The latest-observation endpoint plateaus between sensor updates;
		// seeing the same instant again is routine.
		c.logger.Debug("observation already stored", "station", st.ID, "timestamp", obs.Timestamp)
		c.metrics.ObservationsDuplicate.Inc()
		sum.Duplicate++
		return
	}

	c.logger.Info("observation saved", "station", st.ID, "temp_f", tempF, "timestamp", obs.Timestamp)
	c.metrics.ObservationsSaved.Inc()
	sum.Saved++
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
