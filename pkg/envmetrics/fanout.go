package envmetrics

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/terralens/terralens/internal/model"
)

// FetchAll issues the three metric fetches concurrently and joins them. A
// failed fetch leaves its field nil and never blocks or fails the other two.
func FetchAll(ctx context.Context, c model.Coordinate, temperature, airQuality, floodRisk Fetcher) model.OverlayMetrics {
	var out model.OverlayMetrics

	g, ctx := errgroup.WithContext(ctx)

	fetchInto := func(f Fetcher, dst **float64) func() error {
		return func() error {
			if f == nil {
				return nil
			}
			v, err := f.Fetch(ctx, c)
			if err != nil {
				zap.L().Warn("envmetrics: fetch failed",
					zap.String("metric", f.Name()),
					zap.Float64("lat", c.Lat),
					zap.Float64("lng", c.Lng),
					zap.Error(err),
				)
				return nil
			}
			*dst = &v
			return nil
		}
	}

	g.Go(fetchInto(temperature, &out.Temperature))
	g.Go(fetchInto(airQuality, &out.AirQuality))
	g.Go(fetchInto(floodRisk, &out.FloodRisk))
	_ = g.Wait() // workers never return errors; failures degrade to nil fields

	return out
}

// Sources bundles the three configured fetchers behind a single fan-out call.
type Sources struct {
	Temperature Fetcher
	AirQuality  Fetcher
	FloodRisk   Fetcher
}

// FetchAll runs the fan-out over the bundled fetchers.
func (s Sources) FetchAll(ctx context.Context, c model.Coordinate) model.OverlayMetrics {
	return FetchAll(ctx, c, s.Temperature, s.AirQuality, s.FloodRisk)
}
