package collector

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stationpace/internal/nws"
	"stationpace/internal/observability"
	"stationpace/internal/station"
	"stationpace/internal/store"
)

func testStations(ids ...string) []station.Station {
	var out []station.Station
	for _, id := range ids {
		out = append(out, station.Station{
			Key:      id,
			ID:       id,
			Name:     id,
			Timezone: "UTC",
			WFO:      "TST",
			CLICode:  id,
			Location: time.UTC,
		})
	}
	return out
}

func testObservationStore(t *testing.T) *store.ObservationStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.MigrateObservations(db))
	return store.NewObservationStore(db)
}

func observationBody(tempC string) string {
	return fmt.Sprintf(`{
	  "properties": {
	    "timestamp": "2024-01-01T12:00:00+00:00",
	    "textDescription": "Clear",
	    "temperature": {"value": %s},
	    "relativeHumidity": {"value": 55.0},
	    "windSpeed": {"value": 10.0}
	  }
	}`, tempC)
}

func newTestCollector(t *testing.T, baseURL string, obsStore *store.ObservationStore, stations []station.Station) *Collector {
	t.Helper()
	client := nws.NewObservationClient(baseURL, "(collector-test)", 5*time.Second)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return New(client, obsStore, stations, 0, clockwork.NewFakeClock(), slog.Default(), metrics)
}

func TestRun_SavesConvertedObservation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(observationBody("5.0")))
	}))
	defer srv.Close()

	obsStore := testObservationStore(t)
	c := newTestCollector(t, srv.URL, obsStore, testStations("KNYC"))

	sum, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Saved: 1}, sum)

	readings, err := obsStore.ReadDay("KNYC",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	// 5 °C -> 41.0 °F
	assert.Equal(t, 41.0, readings[0].TempF)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), readings[0].Time)
}

func TestRun_RoundsToOneDecimal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(observationBody("3.14")))
	}))
	defer srv.Close()

	obsStore := testObservationStore(t)
	c := newTestCollector(t, srv.URL, obsStore, testStations("KNYC"))

	_, err := c.Run(context.Background())
	require.NoError(t, err)

	readings, err := obsStore.ReadDay("KNYC",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	// 3.14 °C -> 37.652 °F -> 37.7
	assert.Equal(t, 37.7, readings[0].TempF)
}

func TestRun_NullTemperatureSkipsPersistence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(observationBody("null")))
	}))
	defer srv.Close()

	obsStore := testObservationStore(t)
	c := newTestCollector(t, srv.URL, obsStore, testStations("KNYC"))

	sum, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{SkippedNoTemp: 1}, sum)

	ids, err := obsStore.DistinctStations()
	require.NoError(t, err)
	assert.Empty(t, ids, "null temperature must not create a row")
}

func TestRun_StationFailureDoesNotAbortBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/stations/KBAD/observations/latest" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(observationBody("10.0")))
	}))
	defer srv.Close()

	obsStore := testObservationStore(t)
	c := newTestCollector(t, srv.URL, obsStore, testStations("KBAD", "KNYC"))

	sum, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Saved: 1, Failed: 1}, sum)

	ids, err := obsStore.DistinctStations()
	require.NoError(t, err)
	assert.Equal(t, []string{"KNYC"}, ids)
}

func TestRun_SecondRunIsDuplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(observationBody("5.0")))
	}))
	defer srv.Close()

	obsStore := testObservationStore(t)
	c := newTestCollector(t, srv.URL, obsStore, testStations("KNYC"))

	sum, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Saved: 1}, sum)

	// Upstream still serves the same timestamp: no new row, no error.
	sum, err = c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Duplicate: 1}, sum)

	readings, err := obsStore.ReadDay("KNYC",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, readings, 1)
}

func TestRun_CanceledContext(t *testing.T) {
	obsStore := testObservationStore(t)
	c := newTestCollector(t, "http://127.0.0.1:0", obsStore, testStations("KNYC"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
