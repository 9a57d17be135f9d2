// Package station holds the static registry of tracked weather stations.
// The registry is loaded once at startup from stations.json and is read-only
// for the life of the process.
package station

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
)

// Station describes one tracked reporting point. WFO is the reporting office
// code and CLICode the issuing code for the official climate report; together
// they key the report fetch.
type Station struct {
	Key      string
	ID       string `json:"station_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Timezone string `json:"timezone" validate:"required"`
	WFO      string `json:"wfo" validate:"required"`
	CLICode  string `json:"cli_code" validate:"required"`

	// Location is the resolved Timezone; always non-nil for a registry entry.
	Location *time.Location `json:"-"`
}

// Defaults are shared polling settings from the registry file.
type Defaults struct {
	UserAgent       string `json:"user_agent" validate:"required"`
	IntervalMinutes int    `json:"interval_minutes"`
}

type Registry struct {
	Defaults Defaults
	stations []Station
	byID     map[string]Station
}

type registryFile struct {
	Defaults Defaults           `json:"defaults"`
	Stations map[string]Station `json:"stations"`
}

var ErrNoStations = errors.New("station registry contains no usable stations")

// Load reads and validates the registry file. A malformed single entry is
// skipped with a warning; only an unreadable file, bad defaults, or an empty
// resulting registry is an error.
func Load(path string, logger *slog.Logger) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read station registry %s: %w", path, err)
	}

	var file registryFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse station registry %s: %w", path, err)
	}

	validate := validator.New()
	if err := validate.Struct(file.Defaults); err != nil {
		return nil, fmt.Errorf("station registry defaults: %w", err)
	}
	if file.Defaults.IntervalMinutes <= 0 {
		file.Defaults.IntervalMinutes = 15
	}

	keys := make([]string, 0, len(file.Stations))
	for key := range file.Stations {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	reg := &Registry{
		Defaults: file.Defaults,
		byID:     make(map[string]Station),
	}
	for _, key := range keys {
		st := file.Stations[key]
		st.Key = key
		if err := validate.Struct(st); err != nil {
			logger.Warn("skipping malformed station entry", "key", key, "error", err)
			continue
		}
		loc, err := time.LoadLocation(st.Timezone)
		if err != nil {
			logger.Warn("skipping station with unknown timezone", "key", key, "timezone", st.Timezone)
			continue
		}
		st.Location = loc
		reg.stations = append(reg.stations, st)
		reg.byID[st.ID] = st
	}

	if len(reg.stations) == 0 {
		return nil, ErrNoStations
	}
	return reg, nil
}

// Stations returns all usable entries in stable (sorted key) order.
func (r *Registry) Stations() []Station {
	out := make([]Station, len(r.stations))
	copy(out, r.stations)
	return out
}

// ByID looks a station up by its upstream station code (e.g. "KNYC").
func (r *Registry) ByID(id string) (Station, bool) {
	st, ok := r.byID[id]
	return st, ok
}

func (r *Registry) Len() int {
	return len(r.stations)
}
