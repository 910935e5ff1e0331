package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/terralens/terralens/internal/assistant"
	"github.com/terralens/terralens/internal/overlay"
	"github.com/terralens/terralens/internal/region"
	"github.com/terralens/terralens/internal/resolve"
	"github.com/terralens/terralens/internal/risk"
	"github.com/terralens/terralens/internal/watermask"
	"github.com/terralens/terralens/pkg/envmetrics"
	"github.com/terralens/terralens/pkg/nominatim"
	"github.com/terralens/terralens/pkg/overpass"
)

// appEnv holds all initialized clients and the orchestration graph needed by
// the serve/analyze/grid commands.
type appEnv struct {
	Geocoder     *nominatim.Client
	Resolver     *resolve.Resolver
	Projector    *overlay.Projector
	Store        *region.Store
	Orchestrator *region.Orchestrator
	Metrics      envmetrics.Sources
	Weights      risk.Weights
	Assistant    assistant.Assistant // may be nil

	cache *nominatim.SQLiteCache
}

// Close releases resources held by the app environment.
func (e *appEnv) Close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
}

// initApp wires the geocoding, water-mask, and metric clients into the
// analysis graph. Callers should defer env.Close().
func initApp() (*appEnv, error) {
	env := &appEnv{}

	geocodeOpts := []nominatim.Option{
		nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
		nominatim.WithUserAgent(cfg.Nominatim.UserAgent),
		nominatim.WithRateLimit(cfg.Nominatim.RatePerSec),
	}
	if cfg.Nominatim.CachePath != "" {
		cache, err := nominatim.NewSQLiteCache(cfg.Nominatim.CachePath, cfg.Nominatim.CacheTTL())
		if err != nil {
			zap.L().Warn("geocode cache init failed, running uncached", zap.Error(err))
		} else {
			env.cache = cache
			geocodeOpts = append(geocodeOpts, nominatim.WithCache(cache))
		}
	}
	env.Geocoder = nominatim.NewClient(geocodeOpts...)

	overpassClient := overpass.NewClient(
		overpass.WithEndpoint(cfg.Overpass.Endpoint),
		overpass.WithUserAgent(cfg.Nominatim.UserAgent),
		overpass.WithRateLimit(cfg.Overpass.RatePerSec),
	)
	env.Resolver = resolve.NewResolver(env.Geocoder, watermask.NewOverpassFetcher(overpassClient))

	metricsHTTP := &http.Client{Timeout: cfg.Metrics.MetricTimeout()}
	if cfg.Metrics.TemperatureURL != "" {
		env.Metrics.Temperature = envmetrics.NewTemperatureFetcher(cfg.Metrics.TemperatureURL, metricsHTTP)
	}
	if cfg.Metrics.AirQualityURL != "" {
		env.Metrics.AirQuality = envmetrics.NewAirQualityFetcher(cfg.Metrics.AirQualityURL, metricsHTTP)
	}
	if cfg.Metrics.FloodRiskURL != "" {
		env.Metrics.FloodRisk = envmetrics.NewFloodRiskFetcher(cfg.Metrics.FloodRiskURL, metricsHTTP)
	}

	env.Weights = risk.DefaultWeights()
	if cfg.Risk.WeightsPath != "" {
		w, err := risk.LoadWeights(cfg.Risk.WeightsPath)
		if err != nil {
			return nil, err
		}
		env.Weights = w
	}

	if cfg.Assistant.Key != "" {
		env.Assistant = assistant.New(cfg.Assistant.Key,
			assistant.WithModel(cfg.Assistant.Model),
			assistant.WithMaxTokens(cfg.Assistant.MaxTokens),
		)
	} else {
		zap.L().Debug("TERRALENS_ASSISTANT_KEY not set, chat endpoint disabled")
	}

	env.Projector = overlay.NewProjector()
	env.Store = region.NewStore(env.Projector)
	env.Orchestrator = region.NewOrchestrator(env.Store, env.Resolver, env.Geocoder, env.Metrics)

	return env, nil
}
