// Package scheduler drives the periodic collection and report-check jobs for
// the long-running server. One-shot runs go through the cmd binaries instead.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"stationpace/internal/climate"
	"stationpace/internal/collector"
)

type Scheduler struct {
	scheduler *gocron.Scheduler
	collector *collector.Collector
	reporter  *climate.Runner
	logger    *slog.Logger

	collectInterval time.Duration
	reportInterval  time.Duration
	jobTimeout      time.Duration
}

func New(
	col *collector.Collector,
	rep *climate.Runner,
	collectInterval, reportInterval time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		scheduler:       gocron.NewScheduler(time.UTC),
		collector:       col,
		reporter:        rep,
		logger:          logger,
		collectInterval: collectInterval,
		reportInterval:  reportInterval,
		jobTimeout:      10 * time.Minute,
	}
}

// Start registers both jobs and starts the scheduler in the background. Jobs
// are singletons: a slow batch is never overlapped by the next tick.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.collectInterval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		sum, err := s.collector.Run(ctx)
		if err != nil {
			s.logger.Error("scheduled collection batch aborted", "error", err)
			return
		}
		s.logger.Info("scheduled collection batch done",
			"saved", sum.Saved, "duplicate", sum.Duplicate,
			"skipped_no_temp", sum.SkippedNoTemp, "failed", sum.Failed)
	})
	if err != nil {
		return err
	}

	_, err = s.scheduler.Every(s.reportInterval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		sum, err := s.reporter.Run(ctx)
		if err != nil {
			s.logger.Error("scheduled report check aborted", "error", err)
			return
		}
		s.logger.Info("scheduled report check done",
			"locked", sum.Locked, "unavailable", sum.Unavailable,
			"parse_failed", sum.ParseFailed, "failed", sum.Failed)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
