// Package overpass queries an Overpass API endpoint for water-body polygons.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/terralens/terralens/internal/model"
)

const defaultEndpoint = "https://overpass-api.de/api/interpreter"

// Client is an Overpass API client.
type Client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	limiter    *rate.Limiter
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoint points the client at a different Overpass instance.
func WithEndpoint(u string) Option {
	return func(c *Client) { c.endpoint = u }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient creates an Overpass client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   defaultEndpoint,
		userAgent:  "terralens/1.0",
		limiter:    rate.NewLimiter(0.5, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// waterQuery builds the QL selecting water and riverbank areas in the bbox.
func waterQuery(b model.BBox) string {
	bbox := b.OverpassString()
	var q strings.Builder
	q.WriteString("[out:json][timeout:25];(")
	for _, selector := range []string{`["natural"="water"]`, `["waterway"="riverbank"]`} {
		fmt.Fprintf(&q, "way%s%s;", selector, bbox)
		fmt.Fprintf(&q, "relation%s%s;", selector, bbox)
	}
	q.WriteString(");out geom;")
	return q.String()
}

// WaterPolygons fetches water-body and riverbank areas intersecting the bbox
// and converts them to a polygon-only feature collection. (nil, nil) when the
// box contains no water elements.
func (c *Client) WaterPolygons(ctx context.Context, b model.BBox) (*geomjson.FeatureCollection, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "overpass: rate limit")
	}

	form := url.Values{"data": {waterQuery(b)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("overpass: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: read body")
	}

	var payload response
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(err, "overpass: parse response")
	}

	fc := elementsToPolygons(payload.Elements)
	if fc == nil {
		zap.L().Debug("overpass: no water polygons in bbox", zap.Float64("area_deg2", b.AreaDeg2()))
	}
	return fc, nil
}
