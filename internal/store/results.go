package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"stationpace/internal/migrate"
)

//go:embed migrations/results/*.sql
var resultMigrations embed.FS

//go:embed sql/upsert-daily-result.sql
var upsertDailyResultSQL string

//go:embed sql/get-daily-result.sql
var getDailyResultSQL string

//go:embed sql/list-daily-results.sql
var listDailyResultsSQL string

type ResultStore struct {
	db *sql.DB
}

func NewResultStore(db *sql.DB) *ResultStore {
	return &ResultStore{db: db}
}

// MigrateResults applies the daily results store schema.
func MigrateResults(db *sql.DB) error {
	sub, err := fs.Sub(resultMigrations, "migrations/results")
	if err != nil {
		return fmt.Errorf("result migrations fs: %w", err)
	}
	return migrate.Run(db, sub)
}

// Upsert writes the result for one station-day, fully replacing any prior
// row for that key. Last successful parse wins; the upstream report can be
// amended intraday.
func (s *ResultStore) Upsert(res DailyResult) error {
	final := 0
	if res.Final {
		final = 1
	}
	_, err := s.db.Exec(upsertDailyResultSQL,
		res.StationID, res.Date, res.HighF, res.LowF, final,
	)
	if err != nil {
		return fmt.Errorf("upsert daily result: %w", err)
	}
	return nil
}

// Get returns the result for a station-day; ok is false when no row exists.
func (s *ResultStore) Get(stationID, date string) (res DailyResult, ok bool, err error) {
	var final int
	err = s.db.QueryRow(getDailyResultSQL, stationID, date).
		Scan(&res.StationID, &res.Date, &res.HighF, &res.LowF, &final)
	if errors.Is(err, sql.ErrNoRows) {
		return DailyResult{}, false, nil
	}
	if err != nil {
		return DailyResult{}, false, fmt.Errorf("get daily result: %w", err)
	}
	res.Final = final != 0
	return res, true, nil
}

// ListByStation returns up to limit results for a station, newest date first.
func (s *ResultStore) ListByStation(stationID string, limit int) ([]DailyResult, error) {
	rows, err := s.db.Query(listDailyResultsSQL, stationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list daily results: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close daily-results rows", "error", err)
		}
	}()

	var out []DailyResult
	for rows.Next() {
		var res DailyResult
		var final int
		if err := rows.Scan(&res.StationID, &res.Date, &res.HighF, &res.LowF, &final); err != nil {
			return nil, err
		}
		res.Final = final != 0
		out = append(out, res)
	}
	return out, rows.Err()
}
