// Package store provides the two durable SQLite-backed stores: the
// append-mostly observation store written by the live collector, and the
// daily results store written by the official report runner. The stores are
// separate database files and are never joined.
package store

import (
	"database/sql"
	"embed"
	_ "embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"stationpace/internal/migrate"
)

//go:embed migrations/observations/*.sql
var observationMigrations embed.FS

//go:embed sql/insert-observation.sql
var insertObservationSQL string

//go:embed sql/read-day.sql
var readDaySQL string

//go:embed sql/distinct-stations.sql
var distinctStationsSQL string

// Timestamps are stored as UTC RFC3339 text so that lexicographic order is
// chronological order.
const tsFormat = time.RFC3339

type ObservationStore struct {
	db *sql.DB
}

func NewObservationStore(db *sql.DB) *ObservationStore {
	return &ObservationStore{db: db}
}

// MigrateObservations applies the observation store schema.
func MigrateObservations(db *sql.DB) error {
	sub, err := fs.Sub(observationMigrations, "migrations/observations")
	if err != nil {
		return fmt.Errorf("observation migrations fs: %w", err)
	}
	return migrate.Run(db, sub)
}

// Record inserts one observation. A row with the same (station, timestamp)
// already present is not an error: the insert is a no-op and Record reports
// inserted=false. Idempotency comes from the composite primary key plus
// INSERT OR IGNORE, so there is no check-then-insert race between concurrent
// collector runs.
func (s *ObservationStore) Record(obs Observation) (inserted bool, err error) {
	res, err := s.db.Exec(insertObservationSQL,
		obs.StationID,
		obs.Time.UTC().Format(tsFormat),
		obs.TempF,
		obs.Humidity,
		obs.WindSpeed,
		obs.Description,
		obs.RawJSON,
	)
	if err != nil {
		return false, fmt.Errorf("insert observation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert observation rows affected: %w", err)
	}
	return n > 0, nil
}

// ReadDay returns the station's readings with start <= ts < end, ascending.
// The caller supplies the window, so "day" may be UTC or station-local.
func (s *ObservationStore) ReadDay(stationID string, start, end time.Time) ([]Reading, error) {
	rows, err := s.db.Query(readDaySQL,
		stationID,
		start.UTC().Format(tsFormat),
		end.UTC().Format(tsFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("read day: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close read-day rows", "error", err)
		}
	}()

	var out []Reading
	for rows.Next() {
		var ts string
		var r Reading
		if err := rows.Scan(&ts, &r.TempF); err != nil {
			return nil, err
		}
		t, err := time.Parse(tsFormat, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		r.Time = t
		out = append(out, r)
	}
	return out, rows.Err()
}

// DistinctStations lists every station that has at least one stored reading,
// for discovery when no registry is available.
func (s *ObservationStore) DistinctStations() ([]string, error) {
	rows, err := s.db.Query(distinctStationsSQL)
	if err != nil {
		return nil, fmt.Errorf("distinct stations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close distinct-stations rows", "error", err)
		}
	}()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
