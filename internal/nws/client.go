// Package nws holds the clients for the two upstream feeds: the live
// observation API and the official climate report product page.
package nws

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls retry behaviour for transient upstream failures.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var defaultBackoff = BackoffConfig{
	MaxRetries:      2,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errCircuitOpen = errors.New("circuit breaker open")
)

// StatusError reports a non-success, non-retriable upstream status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// doer issues GETs with the polite User-Agent the upstream feed requires,
// retrying transient failures with exponential backoff behind a circuit
// breaker.
type doer struct {
	client    *http.Client
	userAgent string
	backoff   BackoffConfig
	breaker   *gobreaker.CircuitBreaker
}

func newDoer(name, userAgent string, timeout time.Duration) *doer {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &doer{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		backoff:   defaultBackoff,
		breaker:   cb,
	}
}

func (d *doer) get(ctx context.Context, url string) (*http.Response, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", d.userAgent)

		result, err := d.breaker.Execute(func() (interface{}, error) {
			resp, execErr := d.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, &StatusError{Code: resp.StatusCode}
			}
			return resp, nil
		})
		if err == nil {
			return result.(*http.Response), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		// Non-success statuses other than 429/5xx are not transient; don't retry.
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, err
		}

		lastErr = err
		if attempt >= d.backoff.MaxRetries {
			return nil, lastErr
		}

		delay := d.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if d.backoff.MaxInterval > 0 && delay > d.backoff.MaxInterval {
			delay = d.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}
