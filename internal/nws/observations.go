package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// LatestObservation is the normalized latest reading for a station.
// TempC is nil when the sensor reported no temperature.
type LatestObservation struct {
	Timestamp   time.Time
	TempC       *float64
	Humidity    *float64
	WindSpeed   *float64
	Description string

	// Raw is the unmodified response body, kept for audit/replay.
	Raw []byte
}

// ObservationClient fetches the latest observation per station from the live
// feed.
type ObservationClient struct {
	baseURL string
	doer    *doer
}

func NewObservationClient(baseURL, userAgent string, timeout time.Duration) *ObservationClient {
	return &ObservationClient{
		baseURL: baseURL,
		doer:    newDoer("nws-observations", userAgent, timeout),
	}
}

type observationPayload struct {
	Properties struct {
		Timestamp   string `json:"timestamp"`
		Temperature struct {
			Value *float64 `json:"value"`
		} `json:"temperature"`
		RelativeHumidity struct {
			Value *float64 `json:"value"`
		} `json:"relativeHumidity"`
		WindSpeed struct {
			Value *float64 `json:"value"`
		} `json:"windSpeed"`
		TextDescription string `json:"textDescription"`
	} `json:"properties"`
}

// Latest fetches the most recent observation for stationID. Temperature is
// left in Celsius; unit conversion belongs to the collector.
func (c *ObservationClient) Latest(ctx context.Context, stationID string) (LatestObservation, error) {
	url := fmt.Sprintf("%s/stations/%s/observations/latest", c.baseURL, stationID)

	resp, err := c.doer.get(ctx, url)
	if err != nil {
		return LatestObservation{}, fmt.Errorf("fetch latest observation for %s: %w", stationID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return LatestObservation{}, fmt.Errorf("read observation body for %s: %w", stationID, err)
	}

	var payload observationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return LatestObservation{}, fmt.Errorf("decode observation for %s: %w", stationID, err)
	}

	ts, err := time.Parse(time.RFC3339, payload.Properties.Timestamp)
	if err != nil {
		// The feed occasionally omits fractional offsets; fall back to now
		// rather than dropping the reading.
		ts = time.Now().UTC()
	}

	return LatestObservation{
		Timestamp:   ts.UTC(),
		TempC:       payload.Properties.Temperature.Value,
		Humidity:    payload.Properties.RelativeHumidity.Value,
		WindSpeed:   payload.Properties.WindSpeed.Value,
		Description: payload.Properties.TextDescription,
		Raw:         raw,
	}, nil
}
