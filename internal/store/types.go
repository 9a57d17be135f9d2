package store

import "time"

// Observation is one raw reading as written by the live collector. Optional
// sensor fields are pointers; nil means the upstream feed had no value.
type Observation struct {
	StationID   string
	Time        time.Time
	TempF       float64
	Humidity    *float64
	WindSpeed   *float64
	Description *string
	RawJSON     string
}

// Reading is the (timestamp, temperature) projection the pace model consumes.
type Reading struct {
	Time  time.Time
	TempF float64
}

// DailyResult is the authoritative high/low for one station-day, as parsed
// from the official climate report. Date is the station-local calendar day
// in YYYY-MM-DD form.
type DailyResult struct {
	StationID string  `json:"stationId"`
	Date      string  `json:"date"`
	HighF     float64 `json:"highF"`
	LowF      float64 `json:"lowF"`
	Final     bool    `json:"final"`
}
