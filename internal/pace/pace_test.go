package pace

import (
	"database/sql"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stationpace/internal/station"
	"stationpace/internal/store"
)

func readingsAt(anchor time.Time, points map[time.Duration]float64) []store.Reading {
	// Build ascending readings from offsets relative to the anchor.
	var offsets []time.Duration
	for off := range points {
		offsets = append(offsets, off)
	}
	for i := 0; i < len(offsets); i++ {
		for j := i + 1; j < len(offsets); j++ {
			if offsets[j] < offsets[i] {
				offsets[i], offsets[j] = offsets[j], offsets[i]
			}
		}
	}
	var out []store.Reading
	for _, off := range offsets {
		out = append(out, store.Reading{Time: anchor.Add(off), TempF: points[off]})
	}
	return out
}

func TestAnalyze_EmptyWindow(t *testing.T) {
	_, ok := Analyze("KNYC", nil)
	assert.False(t, ok, "empty window must report no data, never zeros")
}

func TestAnalyze_CurrentHighLow(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)
	readings := readingsAt(anchor, map[time.Duration]float64{
		-6 * time.Hour: 38.0,
		-4 * time.Hour: 45.5,
		-2 * time.Hour: 51.0,
		0:              47.2,
	})

	snap, ok := Analyze("KNYC", readings)
	require.True(t, ok)
	assert.Equal(t, "KNYC", snap.StationID)
	assert.Equal(t, 47.2, snap.Current, "current is the most recent reading")
	assert.Equal(t, 51.0, snap.High)
	assert.Equal(t, 38.0, snap.Low)
	assert.Equal(t, 4, snap.SampleCount)
}

func TestVelocity_AnchorWithinTolerance(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	// T-65min is 5 minutes from the T-60min target: accepted.
	readings := readingsAt(anchor, map[time.Duration]float64{
		-65 * time.Minute: 50.0,
		0:                 55.0,
	})

	snap, ok := Analyze("KNYC", readings)
	require.True(t, ok)
	assert.True(t, snap.VelocityKnown)
	assert.Equal(t, 5.0, snap.Velocity)
	assert.Equal(t, TrendSurge, snap.Trend)
}

func TestVelocity_PicksClosestToTarget(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	readings := readingsAt(anchor, map[time.Duration]float64{
		-2 * time.Hour:    40.0,
		-70 * time.Minute: 52.0,
		-55 * time.Minute: 53.0, // closest to T-60min
		-15 * time.Minute: 54.0,
		0:                 54.5,
	})

	snap, ok := Analyze("KNYC", readings)
	require.True(t, ok)
	assert.True(t, snap.VelocityKnown)
	assert.InDelta(t, 1.5, snap.Velocity, 1e-9)
	assert.Equal(t, TrendHeating, snap.Trend)
}

func TestVelocity_InsufficientHistory(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("single reading", func(t *testing.T) {
		snap, ok := Analyze("KNYC", readingsAt(anchor, map[time.Duration]float64{0: 55.0}))
		require.True(t, ok)
		assert.False(t, snap.VelocityKnown)
		assert.Equal(t, 0.0, snap.Velocity)
		assert.Equal(t, TrendStable, snap.Trend)
	})

	t.Run("closest reading outside tolerance", func(t *testing.T) {
		// Only 10 minutes of history: the closest reading to T-60min sits
		// 50 minutes from the target. Never extrapolated.
		snap, ok := Analyze("KNYC", readingsAt(anchor, map[time.Duration]float64{
			-10 * time.Minute: 50.0,
			0:                 55.0,
		}))
		require.True(t, ok)
		assert.False(t, snap.VelocityKnown)
		assert.Equal(t, 0.0, snap.Velocity)
	})
}

func TestClassify(t *testing.T) {
	cases := []struct {
		velocity float64
		want     Trend
	}{
		{3.0, TrendSurge},
		{2.0, TrendHeating}, // boundary: surge needs strictly more than 2
		{1.0, TrendHeating},
		{0.5, TrendStable},
		{0.0, TrendStable},
		{-0.5, TrendStable},
		{-1.0, TrendCooling},
		{-2.0, TrendCooling},
		{-2.1, TrendPlunge},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classify(tc.velocity), "velocity %v", tc.velocity)
	}
}

func TestProject(t *testing.T) {
	snap := Snapshot{Current: 50.0, Velocity: 2.0, VelocityKnown: true}
	got, ok := Project(snap, 3)
	require.True(t, ok)
	assert.Equal(t, 56.0, got)

	_, ok = Project(Snapshot{Current: 50.0}, 3)
	assert.False(t, ok, "projection requires a known velocity")
}

func TestService_SnapshotFor(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.MigrateObservations(db))
	obsStore := store.NewObservationStore(db)

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	st := station.Station{ID: "KNYC", Name: "NYC", Timezone: "America/New_York", Location: ny}

	// Fake "now": 2024-01-02 02:00 UTC = 2024-01-01 21:00 New York.
	now := time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	// One reading inside the local day, one from the prior local day.
	for _, obs := range []store.Observation{
		{StationID: "KNYC", Time: now.Add(-30 * time.Minute), TempF: 41.0},
		{StationID: "KNYC", Time: now.Add(-22 * time.Hour), TempF: 35.0},
	} {
		_, err := obsStore.Record(obs)
		require.NoError(t, err)
	}

	svc := NewService(obsStore, clock)
	snap, ok, err := svc.SnapshotFor(st)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 41.0, snap.Current)
	assert.Equal(t, 1, snap.SampleCount, "prior local day must be excluded")

	t.Run("no data today", func(t *testing.T) {
		other := station.Station{ID: "KLAX", Name: "LAX", Timezone: "America/New_York", Location: ny}
		_, ok, err := svc.SnapshotFor(other)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
