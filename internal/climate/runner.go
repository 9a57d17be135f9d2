package climate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"stationpace/internal/localtime"
	"stationpace/internal/nws"
	"stationpace/internal/observability"
	"stationpace/internal/station"
	"stationpace/internal/store"
)

// Runner checks the official climate report for every registered station and
// locks parsed results into the results store.
type Runner struct {
	client   *nws.ClimateReportClient
	store    *store.ResultStore
	stations []station.Station
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

func NewRunner(
	client *nws.ClimateReportClient,
	resultStore *store.ResultStore,
	stations []station.Station,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Runner {
	return &Runner{
		client:   client,
		store:    resultStore,
		stations: stations,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Summary tallies one report-check run. Unavailable covers "not issued yet";
// ParseFailed covers reports fetched but missing an extractable high or low;
// Failed covers transport and persistence errors.
type Summary struct {
	Locked      int
	Unavailable int
	ParseFailed int
	Failed      int
}

// Run checks every station sequentially. Gaps are reported in the summary,
// never defaulted into the store: a station-day with no parse gets no write.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := r.clock.Now()
	var sum Summary

	for _, st := range r.stations {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		r.checkStation(ctx, st, &sum)
	}

	r.metrics.ReportRunDuration.Observe(r.clock.Since(start).Seconds())
	r.logger.Info("report check complete",
		"locked", sum.Locked,
		"unavailable", sum.Unavailable,
		"parse_failed", sum.ParseFailed,
		"failed", sum.Failed,
	)
	return sum, nil
}

func (r *Runner) checkStation(ctx context.Context, st station.Station, sum *Summary) {
	text, err := r.client.Fetch(ctx, st.WFO, st.CLICode)
	if err != nil {
		if errors.Is(err, nws.ErrReportUnavailable) {
			r.logger.Info("climate report not issued yet", "station", st.ID, "wfo", st.WFO, "cli_code", st.CLICode)
			r.metrics.ReportsUnavailable.Inc()
			sum.Unavailable++
			return
		}
		r.logger.Warn("climate report fetch failed", "station", st.ID, "error", err)
		r.metrics.ReportFailures.Inc()
		sum.Failed++
		return
	}

	high, low := ExtractHighLow(text)
	if high == nil || low == nil {
		r.logger.Warn("climate report found but temps not extractable",
			"station", st.ID, "have_high", high != nil, "have_low", low != nil)
		r.metrics.ReportParseFailures.Inc()
		sum.ParseFailed++
		return
	}

	// The report's date is the station's current local day, computed from the
	// registry zone, independent of any observation timestamps.
	date := localtime.DateString(r.clock.Now(), st.Location)

	res := store.DailyResult{
		StationID: st.ID,
		Date:      date,
		HighF:     *high,
		LowF:      *low,
		Final:     true,
	}
	if err := r.store.Upsert(res); err != nil {
		r.logger.Error("daily result save failed", "station", st.ID, "date", date, "error", err)
		r.metrics.ReportFailures.Inc()
		sum.Failed++
		return
	}

	r.logger.Info("daily result locked", "station", st.ID, "date", date, "high_f", *high, "low_f", *low)
	r.metrics.ReportsLocked.Inc()
	sum.Locked++
}
