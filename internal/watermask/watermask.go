// Package watermask fetches water-body polygons for a resolved region's
// bounding box. It is a purely cosmetic enhancement layer: any failure
// degrades to "no water mask", never to an error.
package watermask

import (
	"context"

	geomjson "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/terralens/terralens/internal/geometry"
	"github.com/terralens/terralens/internal/model"
	"github.com/terralens/terralens/pkg/overpass"
)

// MaxAreaDeg2 is the bounding-box area ceiling (square degrees) above which
// the query is skipped entirely, bounding query cost on country- and
// continent-scale regions.
const MaxAreaDeg2 = 100.0

// Querier is the spatial query dependency.
type Querier interface {
	WaterPolygons(ctx context.Context, b model.BBox) (*geomjson.FeatureCollection, error)
}

// Fetcher guards and sanitizes water-polygon queries.
type Fetcher struct {
	querier     Querier
	maxAreaDeg2 float64
}

// NewFetcher creates a Fetcher with the standard area guard.
func NewFetcher(querier Querier) *Fetcher {
	return &Fetcher{querier: querier, maxAreaDeg2: MaxAreaDeg2}
}

// NewOverpassFetcher is a convenience constructor over an Overpass client.
func NewOverpassFetcher(client *overpass.Client) *Fetcher {
	return NewFetcher(client)
}

// Fetch returns sanitized water polygons intersecting the bbox, or nil: when
// the box exceeds the area guard (no query is issued), when no water exists,
// or when the query fails.
func (f *Fetcher) Fetch(ctx context.Context, b model.BBox) *geomjson.FeatureCollection {
	if area := b.AreaDeg2(); area > f.maxAreaDeg2 {
		zap.L().Debug("watermask: bbox exceeds area guard, skipping",
			zap.Float64("area_deg2", area),
			zap.Float64("max_deg2", f.maxAreaDeg2),
		)
		return nil
	}

	fc, err := f.querier.WaterPolygons(ctx, b)
	if err != nil {
		zap.L().Warn("watermask: query failed", zap.Error(err))
		return nil
	}
	return geometry.Sanitize(fc)
}
