// Package pace derives a short-term trend signal from a station's readings
// for the current day. Snapshots are computed fresh on every query and never
// persisted.
package pace

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"stationpace/internal/localtime"
	"stationpace/internal/station"
	"stationpace/internal/store"
)

type Trend string

const (
	TrendSurge   Trend = "surge"
	TrendPlunge  Trend = "plunge"
	TrendHeating Trend = "heating"
	TrendCooling Trend = "cooling"
	TrendStable  Trend = "stable"
)

// Model constants. Velocity compares the latest reading against the one
// closest to an hour earlier; a match farther than the tolerance from that
// target means insufficient history, not a slow change.
const (
	velocityTarget    = time.Hour
	velocityTolerance = 45 * time.Minute

	surgeThresholdF = 2.0
	trendThresholdF = 0.5
)

// Snapshot is the derived state for one station's day window.
type Snapshot struct {
	StationID   string  `json:"stationId"`
	Current     float64 `json:"currentF"`
	High        float64 `json:"highF"`
	Low         float64 `json:"lowF"`
	SampleCount int     `json:"sampleCount"`

	// Velocity is °F per hour. VelocityKnown is false when the window lacks
	// a usable comparison point; Velocity is then zero and must not be read
	// as "stable at 0°F/h" by anything that distinguishes the two.
	Velocity      float64 `json:"velocityFPerHour"`
	VelocityKnown bool    `json:"velocityKnown"`
	Trend         Trend   `json:"trend"`
}

// Analyze computes the snapshot over a caller-supplied window of readings,
// assumed ascending by time. ok is false for an empty window: zero is a
// valid temperature and never stands in for "no data".
func Analyze(stationID string, readings []store.Reading) (snap Snapshot, ok bool) {
	if len(readings) == 0 {
		return Snapshot{}, false
	}

	current := readings[len(readings)-1].TempF
	high, low := current, current
	for _, r := range readings {
		high = math.Max(high, r.TempF)
		low = math.Min(low, r.TempF)
	}

	vel, known := velocity(readings)

	return Snapshot{
		StationID:     stationID,
		Current:       current,
		High:          high,
		Low:           low,
		SampleCount:   len(readings),
		Velocity:      vel,
		VelocityKnown: known,
		Trend:         classify(vel),
	}, true
}

// velocity anchors on the latest reading at T and compares against the
// reading closest to T-1h. No scaling is applied: the anchor is roughly an
// hour back, so the difference already reads as °F per hour. A closest match
// farther than the tolerance from the target is never extrapolated.
func velocity(readings []store.Reading) (float64, bool) {
	if len(readings) < 2 {
		return 0, false
	}

	last := readings[len(readings)-1]
	target := last.Time.Add(-velocityTarget)

	var pastTemp float64
	closest := time.Duration(math.MaxInt64)
	for _, r := range readings {
		diff := absDuration(r.Time.Sub(target))
		if diff < closest {
			closest = diff
			pastTemp = r.TempF
		}
	}

	if closest >= velocityTolerance {
		return 0, false
	}
	return last.TempF - pastTemp, true
}

func classify(velocity float64) Trend {
	switch {
	case velocity > surgeThresholdF:
		return TrendSurge
	case velocity < -surgeThresholdF:
		return TrendPlunge
	case velocity > trendThresholdF:
		return TrendHeating
	case velocity < -trendThresholdF:
		return TrendCooling
	default:
		return TrendStable
	}
}

// Project extends the current temperature linearly by the velocity. It is a
// rough estimate, not a forecast; ok is false when the velocity is unknown.
func Project(snap Snapshot, hoursAhead float64) (float64, bool) {
	if !snap.VelocityKnown {
		return 0, false
	}
	return snap.Current + snap.Velocity*hoursAhead, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Service answers pace queries against the observation store, windowed to
// the station's current local day.
type Service struct {
	store *store.ObservationStore
	clock clockwork.Clock
}

func NewService(obsStore *store.ObservationStore, clock clockwork.Clock) *Service {
	return &Service{store: obsStore, clock: clock}
}

// SnapshotFor computes the snapshot for the station's current local day.
// ok is false when no readings exist in the window yet.
func (s *Service) SnapshotFor(st station.Station) (Snapshot, bool, error) {
	start, end := localtime.DayBounds(s.clock.Now(), st.Location)
	readings, err := s.store.ReadDay(st.ID, start, end)
	if err != nil {
		return Snapshot{}, false, err
	}
	snap, ok := Analyze(st.ID, readings)
	return snap, ok, nil
}
