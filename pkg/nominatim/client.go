// Package nominatim provides reverse and forward geocoding against a
// Nominatim-compatible endpoint, with rate limiting and response caching.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Reverse-geocode zoom levels, most specific first. Nominatim's zoom maps
// roughly onto administrative granularity.
const (
	ZoomNeighborhood = 14
	ZoomCity         = 10
	ZoomCounty       = 8
	ZoomRegion       = 5
	ZoomCountry      = 3
)

// CascadeZooms is the ordered zoom ladder the resolver walks, most specific
// to least.
func CascadeZooms() []int {
	return []int{ZoomNeighborhood, ZoomCity, ZoomCounty, ZoomRegion}
}

// Cache stores raw responses keyed by request hash. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// Client is a Nominatim API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	cache      Cache
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at a different Nominatim instance.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy requires
// an identifying agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithCache attaches a response cache. The usage policy asks clients to cache
// identical requests.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// NewClient creates a Nominatim client. The default limiter honors the public
// instance's one-request-per-second policy.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		userAgent:  "terralens/1.0",
		limiter:    rate.NewLimiter(1, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reverse geocodes a coordinate at the given zoom, requesting polygon geometry.
// A location Nominatim cannot resolve yields (nil, nil), not an error.
func (c *Client) Reverse(ctx context.Context, lat, lon float64, zoom int) (*Place, error) {
	params := url.Values{
		"lat":             {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":             {strconv.FormatFloat(lon, 'f', -1, 64)},
		"zoom":            {strconv.Itoa(zoom)},
		"format":          {"jsonv2"},
		"polygon_geojson": {"1"},
		"addressdetails":  {"1"},
	}

	body, err := c.get(ctx, "/reverse", params)
	if err != nil {
		return nil, err
	}

	var place Place
	if err := json.Unmarshal(body, &place); err != nil {
		return nil, eris.Wrap(err, "nominatim: parse reverse response")
	}
	if place.Error != "" {
		zap.L().Debug("nominatim: reverse returned no result",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Int("zoom", zoom),
			zap.String("reason", place.Error),
		)
		return nil, nil
	}
	return &place, nil
}

// Search forward-geocodes a free-text query, returning the single best match
// with polygon geometry. No match yields (nil, nil).
func (c *Client) Search(ctx context.Context, query string) (*Place, error) {
	params := url.Values{
		"q":               {query},
		"limit":           {"1"},
		"format":          {"jsonv2"},
		"polygon_geojson": {"1"},
		"addressdetails":  {"1"},
	}

	body, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var places []Place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, eris.Wrap(err, "nominatim: parse search response")
	}
	if len(places) == 0 {
		zap.L().Debug("nominatim: search returned no result", zap.String("query", query))
		return nil, nil
	}
	return &places[0], nil
}

// get performs a cached, rate-limited GET against the endpoint.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path + "?" + params.Encode()

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, CacheKey(reqURL)); ok {
			return cached, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "nominatim: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("nominatim: %s returned status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: read body")
	}

	if c.cache != nil {
		c.cache.Set(ctx, CacheKey(reqURL), body)
	}
	return body, nil
}

// CacheKey returns the cache key for a request URL.
func CacheKey(reqURL string) string {
	return fmt.Sprintf("%x", sha256Sum(reqURL))
}
