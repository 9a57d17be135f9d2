package store

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupResultStore(t *testing.T) *ResultStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close db: %v", closeErr)
		}
	})
	if err := MigrateResults(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewResultStore(db)
}

func TestUpsert_ThenGet(t *testing.T) {
	s := setupResultStore(t)
	res := DailyResult{StationID: "KNYC", Date: "2024-01-01", HighF: 70, LowF: 40, Final: true}
	if err := s.Upsert(res); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, ok, err := s.Get("KNYC", "2024-01-01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get: ok = false; want true")
	}
	if got != res {
		t.Errorf("Get = %+v; want %+v", got, res)
	}
}

func TestUpsert_FullReplace(t *testing.T) {
	s := setupResultStore(t)
	if err := s.Upsert(DailyResult{StationID: "KNYC", Date: "2024-01-01", HighF: 70, LowF: 40, Final: true}); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	if err := s.Upsert(DailyResult{StationID: "KNYC", Date: "2024-01-01", HighF: 72, LowF: 38, Final: true}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	got, ok, err := s.Get("KNYC", "2024-01-01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get: ok = false; want true")
	}
	if got.HighF != 72 || got.LowF != 38 {
		t.Errorf("after overwrite: high=%v low=%v; want 72, 38", got.HighF, got.LowF)
	}

	list, err := s.ListByStation("KNYC", 10)
	if err != nil {
		t.Fatalf("ListByStation: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d rows after upsert of same key, want exactly 1", len(list))
	}
}

func TestGet_Missing(t *testing.T) {
	s := setupResultStore(t)
	_, ok, err := s.Get("KNYC", "2024-01-01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("Get: ok = true for missing row; want false")
	}
}

func TestListByStation(t *testing.T) {
	s := setupResultStore(t)
	for _, res := range []DailyResult{
		{StationID: "KNYC", Date: "2024-01-01", HighF: 40, LowF: 30, Final: true},
		{StationID: "KNYC", Date: "2024-01-03", HighF: 44, LowF: 33, Final: true},
		{StationID: "KNYC", Date: "2024-01-02", HighF: 42, LowF: 31, Final: true},
		{StationID: "KLAX", Date: "2024-01-02", HighF: 68, LowF: 55, Final: true},
	} {
		if err := s.Upsert(res); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	list, err := s.ListByStation("KNYC", 2)
	if err != nil {
		t.Fatalf("ListByStation: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d rows, want 2 (limit)", len(list))
	}
	// Newest date first.
	if list[0].Date != "2024-01-03" || list[1].Date != "2024-01-02" {
		t.Errorf("dates = %q, %q; want 2024-01-03, 2024-01-02", list[0].Date, list[1].Date)
	}
}
