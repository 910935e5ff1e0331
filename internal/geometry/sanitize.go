// Package geometry normalizes arbitrary geocoding geometry into renderable
// area-only feature collections.
package geometry

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/terralens/terralens/internal/model"
)

// isArea reports whether g is an area-bearing geometry.
func isArea(g geom.T) bool {
	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
		return true
	}
	return false
}

// Sanitize reduces an arbitrary parsed geocoding response to a
// FeatureCollection containing only Polygon/MultiPolygon features, or nil when
// none exist. It accepts a *geojson.FeatureCollection, a *geojson.Feature, a
// bare geom.T, or nil, never panics, and never mutates its input. A nil result
// means no area-bearing region could be resolved.
func Sanitize(v any) *geojson.FeatureCollection {
	switch in := v.(type) {
	case nil:
		return nil
	case *geojson.FeatureCollection:
		if in == nil {
			return nil
		}
		var kept []*geojson.Feature
		for _, f := range in.Features {
			if f != nil && f.Geometry != nil && isArea(f.Geometry) {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			return nil
		}
		return &geojson.FeatureCollection{Features: kept}
	case *geojson.Feature:
		if in == nil || in.Geometry == nil || !isArea(in.Geometry) {
			return nil
		}
		return &geojson.FeatureCollection{Features: []*geojson.Feature{in}}
	case geom.T:
		if in == nil || !isArea(in) {
			return nil
		}
		return &geojson.FeatureCollection{
			Features: []*geojson.Feature{{Geometry: in}},
		}
	default:
		return nil
	}
}

// RectangleFromBBox synthesizes a rectangular polygon from a bounding box as a
// one-feature collection. The ring is closed: five points, first equals last.
// Used whenever true geometry is unavailable but a bounding box is.
func RectangleFromBBox(b model.BBox, props map[string]any) *geojson.FeatureCollection {
	ring := []geom.Coord{
		{b.West, b.South},
		{b.East, b.South},
		{b.East, b.North},
		{b.West, b.North},
		{b.West, b.South},
	}
	poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{ring})

	return &geojson.FeatureCollection{
		Features: []*geojson.Feature{{Geometry: poly, Properties: props}},
	}
}

// CollectionBBox computes the canonical bounding box over every feature in the
// collection. ok is false for nil or geometry-less collections.
func CollectionBBox(fc *geojson.FeatureCollection) (model.BBox, bool) {
	if fc == nil || len(fc.Features) == 0 {
		return model.BBox{}, false
	}

	var out model.BBox
	found := false
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bounds()
		if b == nil {
			continue
		}
		fb := model.BBox{South: b.Min(1), West: b.Min(0), North: b.Max(1), East: b.Max(0)}
		if !found {
			out = fb
			found = true
			continue
		}
		if fb.South < out.South {
			out.South = fb.South
		}
		if fb.West < out.West {
			out.West = fb.West
		}
		if fb.North > out.North {
			out.North = fb.North
		}
		if fb.East > out.East {
			out.East = fb.East
		}
	}
	return out, found
}
