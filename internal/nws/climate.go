package nws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"time"
)

// ErrReportUnavailable means the office has not issued (or the page does not
// yet carry) the climate report. Callers treat this as "try again later",
// not a failure.
var ErrReportUnavailable = errors.New("climate report not available")

// The report text is embedded in a single <pre> block on the product page.
var preBlockRe = regexp.MustCompile(`(?s)<pre[^>]*>(.*?)</pre>`)

// ClimateReportClient fetches the free-text daily climate report, keyed by
// (reporting office, issuing code).
type ClimateReportClient struct {
	baseURL string
	doer    *doer
}

func NewClimateReportClient(baseURL, userAgent string, timeout time.Duration) *ClimateReportClient {
	return &ClimateReportClient{
		baseURL: baseURL,
		doer:    newDoer("nws-climate-report", userAgent, timeout),
	}
}

// Fetch returns the raw report text for (wfo, issuedBy). Any non-success
// status and a missing <pre> block both map to ErrReportUnavailable.
func (c *ClimateReportClient) Fetch(ctx context.Context, wfo, issuedBy string) (string, error) {
	q := url.Values{
		"site":     {wfo},
		"product":  {"CLI"},
		"issuedby": {issuedBy},
	}
	reportURL := fmt.Sprintf("%s/product.php?%s", c.baseURL, q.Encode())

	resp, err := c.doer.get(ctx, reportURL)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return "", fmt.Errorf("%w: status %d for %s/%s", ErrReportUnavailable, statusErr.Code, wfo, issuedBy)
		}
		return "", fmt.Errorf("fetch climate report %s/%s: %w", wfo, issuedBy, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read climate report %s/%s: %w", wfo, issuedBy, err)
	}

	m := preBlockRe.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("%w: no report block for %s/%s", ErrReportUnavailable, wfo, issuedBy)
	}
	return string(m[1]), nil
}
