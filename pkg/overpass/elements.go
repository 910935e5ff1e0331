package overpass

import (
	"fmt"

	"github.com/twpayne/go-geom"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// response is the Overpass JSON envelope.
type response struct {
	Elements []element `json:"elements"`
}

// element is one OSM-style element with inline geometry (out geom).
type element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Tags     map[string]string `json:"tags"`
	Geometry []latLon          `json:"geometry"`
	Members  []member          `json:"members"`
}

type member struct {
	Type     string   `json:"type"`
	Role     string   `json:"role"`
	Geometry []latLon `json:"geometry"`
}

type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ringFromPoints converts an element's point list to a closed linear-ring
// coordinate slice. Open geometry is rejected: riverbank and water ways are
// closed in practice, and an open way cannot bound an area.
func ringFromPoints(points []latLon) []geom.Coord {
	if len(points) < 4 {
		return nil
	}
	first, last := points[0], points[len(points)-1]
	if first.Lat != last.Lat || first.Lon != last.Lon {
		return nil
	}
	ring := make([]geom.Coord, 0, len(points))
	for _, p := range points {
		ring = append(ring, geom.Coord{p.Lon, p.Lat})
	}
	return ring
}

func polygonFromRing(ring []geom.Coord) *geom.Polygon {
	poly := geom.NewPolygon(geom.XY)
	lr := geom.NewLinearRing(geom.XY)
	if _, err := lr.SetCoords(ring); err != nil {
		zap.L().Debug("overpass: skipping malformed ring", zap.Error(err))
		return nil
	}
	if err := poly.Push(lr); err != nil {
		zap.L().Debug("overpass: skipping malformed polygon", zap.Error(err))
		return nil
	}
	return poly
}

// elementsToPolygons converts raw elements to a polygon feature collection.
// Closed ways become polygons; relations contribute their outer members;
// everything else is dropped. Returns nil when nothing area-bearing remains.
func elementsToPolygons(elements []element) *geomjson.FeatureCollection {
	var features []*geomjson.Feature

	appendRing := func(points []latLon, tags map[string]string, id string) {
		ring := ringFromPoints(points)
		if ring == nil {
			return
		}
		poly := polygonFromRing(ring)
		if poly == nil {
			return
		}
		props := map[string]any{"osm_id": id}
		for k, v := range tags {
			props[k] = v
		}
		features = append(features, &geomjson.Feature{Geometry: poly, Properties: props})
	}

	for _, el := range elements {
		switch el.Type {
		case "way":
			appendRing(el.Geometry, el.Tags, fmt.Sprintf("way/%d", el.ID))
		case "relation":
			for _, m := range el.Members {
				if m.Type != "way" || m.Role != "outer" {
					continue
				}
				appendRing(m.Geometry, el.Tags, fmt.Sprintf("relation/%d", el.ID))
			}
		}
	}

	if len(features) == 0 {
		return nil
	}
	return &geomjson.FeatureCollection{Features: features}
}
