// Package resolve turns a coordinate or place name into a renderable region
// geometry, degrading through a strict cascade of fallbacks so that every
// point on Earth yields some area.
package resolve

import (
	"context"
	"time"

	geomjson "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/terralens/terralens/internal/geometry"
	"github.com/terralens/terralens/internal/model"
	"github.com/terralens/terralens/pkg/nominatim"
)

// Geocoder is the geocoding dependency.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64, zoom int) (*nominatim.Place, error)
	Search(ctx context.Context, query string) (*nominatim.Place, error)
}

// WaterMasker fetches water polygons for a resolved bounding box.
type WaterMasker interface {
	Fetch(ctx context.Context, b model.BBox) *geomjson.FeatureCollection
}

// Sink receives the resolver's side effects. Geometry application and camera
// movement happen through the sink so the owner can discard stale results.
type Sink interface {
	ApplyGeometry(fc *geomjson.FeatureCollection, name string)
	FitBounds(b model.BBox)
	ApplyWaterMask(fc *geomjson.FeatureCollection)
}

// Result is the resolver's return contract. Success means "some area was
// applied" — a true administrative polygon or a bounding-box rectangle — not
// necessarily that a precise boundary was found.
type Result struct {
	Success     bool       `json:"success"`
	CountryName string     `json:"countryName,omitempty"`
	Bounds      *model.BBox `json:"bounds,omitempty"`
}

// waterMaskTimeout bounds the detached water-mask fetch. The fetch outlives
// the resolving request's context so late masks still land on the sink.
const waterMaskTimeout = 30 * time.Second

// Resolver runs the cascading region-geometry lookup.
type Resolver struct {
	geocoder Geocoder
	water    WaterMasker
	zooms    []int
}

// Option configures the resolver.
type Option func(*Resolver)

// WithZooms overrides the reverse-geocode zoom ladder (most specific first).
func WithZooms(zooms []int) Option {
	return func(r *Resolver) { r.zooms = zooms }
}

// NewResolver creates a Resolver. water may be nil to disable the water-mask
// side effect.
func NewResolver(geocoder Geocoder, water WaterMasker, opts ...Option) *Resolver {
	r := &Resolver{
		geocoder: geocoder,
		water:    water,
		zooms:    nominatim.CascadeZooms(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveCoordinate resolves a clicked/searched coordinate to a region:
//
//  1. Reverse geocode down the zoom ladder, most specific first, stopping at
//     the first level with sanitizable polygon geometry. Every attempt
//     harvests the best name and bounding box seen so far, even when its
//     geometry is unusable.
//  2. No polygon anywhere: forward-geocode the harvested name; polygon
//     geometry wins, otherwise its bounding box becomes a rectangle.
//  3. No name harvested: one coarse country-level reverse lookup for a name,
//     then step 2 again.
//  4. Still nothing: Success=false. The caller renders a highlight circle.
//
// Network failures at any single step are recovered by moving on; only full
// exhaustion yields Success=false, and never an error.
func (r *Resolver) ResolveCoordinate(ctx context.Context, c model.Coordinate, sink Sink) Result {
	var bestName string
	var bestBBox *model.BBox

	for _, zoom := range r.zooms {
		place, err := r.geocoder.Reverse(ctx, c.Lat, c.Lng, zoom)
		if err != nil {
			zap.L().Debug("resolve: reverse level failed",
				zap.Int("zoom", zoom), zap.Error(err))
			continue
		}
		if place == nil {
			continue
		}

		if bestName == "" {
			bestName = place.PreferredName()
		}
		if bestBBox == nil {
			if b, err := place.BBox(); err == nil {
				bestBBox = &b
			}
		}

		g, err := place.Geometry()
		if err != nil {
			zap.L().Debug("resolve: geometry decode failed",
				zap.Int("zoom", zoom), zap.Error(err))
			continue
		}
		fc := geometry.Sanitize(g)
		if fc == nil {
			continue
		}

		name := place.PreferredName()
		var bounds *model.BBox
		if b, err := place.BBox(); err == nil {
			bounds = &b
		}
		return r.apply(ctx, sink, fc, name, bounds)
	}

	// Step 3: no name at all — one coarse lookup for a country name.
	if bestName == "" {
		place, err := r.geocoder.Reverse(ctx, c.Lat, c.Lng, nominatim.ZoomCountry)
		if err == nil && place != nil {
			bestName = place.PreferredName()
			if bestBBox == nil {
				if b, err := place.BBox(); err == nil {
					bestBBox = &b
				}
			}
		}
	}

	// Step 2: forward geocode by the harvested name.
	if bestName != "" {
		if result := r.resolveByName(ctx, bestName, sink); result.Success {
			return result
		}
	}

	// Last resort before the caller's circle: a rectangle from the best
	// bounding box any reverse attempt produced.
	if bestBBox != nil {
		fc := geometry.RectangleFromBBox(*bestBBox, map[string]any{"name": bestName})
		return r.apply(ctx, sink, fc, bestName, bestBBox)
	}

	zap.L().Info("resolve: cascade exhausted, no area for coordinate",
		zap.Float64("lat", c.Lat), zap.Float64("lng", c.Lng))
	return Result{Success: false, CountryName: bestName}
}

// resolveByName forward-geocodes a name and applies polygon geometry or a
// bounding-box rectangle from the response.
func (r *Resolver) resolveByName(ctx context.Context, name string, sink Sink) Result {
	place, err := r.geocoder.Search(ctx, name)
	if err != nil {
		zap.L().Debug("resolve: forward geocode failed",
			zap.String("name", name), zap.Error(err))
		return Result{CountryName: name}
	}
	if place == nil {
		return Result{CountryName: name}
	}
	return r.ResolvePlace(ctx, place, sink)
}

// ResolvePlace seeds region geometry from a forward-geocode response: polygon
// geometry when present, a rectangle from its bounding box otherwise.
// Success=false when the place carries neither.
func (r *Resolver) ResolvePlace(ctx context.Context, place *nominatim.Place, sink Sink) Result {
	name := place.PreferredName()

	var bounds *model.BBox
	if b, err := place.BBox(); err == nil {
		bounds = &b
	}

	g, err := place.Geometry()
	if err != nil {
		zap.L().Debug("resolve: place geometry decode failed", zap.Error(err))
		g = nil
	}
	if fc := geometry.Sanitize(g); fc != nil {
		return r.apply(ctx, sink, fc, name, bounds)
	}

	if bounds != nil {
		fc := geometry.RectangleFromBBox(*bounds, map[string]any{"name": name})
		return r.apply(ctx, sink, fc, name, bounds)
	}

	return Result{Success: false, CountryName: name}
}

// apply pushes the resolved geometry through the sink, fits the camera, and
// kicks off the water-mask fetch. The water mask is fire-and-forget: its
// completion is not part of the result contract.
func (r *Resolver) apply(ctx context.Context, sink Sink, fc *geomjson.FeatureCollection, name string, bounds *model.BBox) Result {
	sink.ApplyGeometry(fc, name)

	if bounds == nil {
		if b, ok := geometry.CollectionBBox(fc); ok {
			bounds = &b
		}
	}
	if bounds != nil {
		sink.FitBounds(*bounds)
		if r.water != nil {
			b := *bounds
			// Detach from the request's cancellation: the caller only
			// waits for geometry, and the mask must survive that wait.
			maskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), waterMaskTimeout)
			go func() {
				defer cancel()
				if mask := r.water.Fetch(maskCtx, b); mask != nil {
					sink.ApplyWaterMask(mask)
				}
			}()
		}
	}

	return Result{Success: true, CountryName: name, Bounds: bounds}
}
