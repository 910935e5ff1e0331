// Package envmetrics fetches the three environmental signals (temperature,
// air quality, flood risk) from their prediction endpoints. The endpoints are
// external collaborators; the pipeline only depends on their numeric fields
// being present-or-null.
package envmetrics

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/terralens/terralens/internal/model"
)

// Fetcher fetches one environmental metric for a coordinate.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, c model.Coordinate) (float64, error)
}

// Response field names per endpoint.
const (
	fieldTemperature = "currentTemp"
	fieldAQI         = "currentAQI"
	fieldFloodRisk   = "overallRisk"
)

// HTTPFetcher posts {lat, lng} to a prediction endpoint and extracts a single
// numeric field from its data envelope.
type HTTPFetcher struct {
	name       string
	url        string
	field      string
	httpClient *http.Client
}

// NewTemperatureFetcher fetches current temperature (°C).
func NewTemperatureFetcher(url string, hc *http.Client) *HTTPFetcher {
	return newHTTPFetcher("temperature", url, fieldTemperature, hc)
}

// NewAirQualityFetcher fetches the current air-quality index.
func NewAirQualityFetcher(url string, hc *http.Client) *HTTPFetcher {
	return newHTTPFetcher("air-quality", url, fieldAQI, hc)
}

// NewFloodRiskFetcher fetches the flood-risk percentage.
func NewFloodRiskFetcher(url string, hc *http.Client) *HTTPFetcher {
	return newHTTPFetcher("flood-risk", url, fieldFloodRisk, hc)
}

func newHTTPFetcher(name, url, field string, hc *http.Client) *HTTPFetcher {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPFetcher{name: name, url: url, field: field, httpClient: hc}
}

// Name implements Fetcher.
func (f *HTTPFetcher) Name() string { return f.name }

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, c model.Coordinate) (float64, error) {
	payload, err := json.Marshal(map[string]float64{"lat": c.Lat, "lng": c.Lng})
	if err != nil {
		return 0, eris.Wrapf(err, "envmetrics: %s marshal request", f.name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(payload))
	if err != nil {
		return 0, eris.Wrapf(err, "envmetrics: %s build request", f.name)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, eris.Wrapf(err, "envmetrics: %s request", f.name)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return 0, eris.Errorf("envmetrics: %s returned status %d", f.name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, eris.Wrapf(err, "envmetrics: %s read body", f.name)
	}

	var envelope struct {
		Data map[string]*float64 `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, eris.Wrapf(err, "envmetrics: %s parse response", f.name)
	}

	value, ok := envelope.Data[f.field]
	if !ok || value == nil {
		return 0, eris.Errorf("envmetrics: %s response has no %s value", f.name, f.field)
	}
	return *value, nil
}
