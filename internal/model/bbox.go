package model

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
)

// BBox is the canonical bounding-box representation: south, west, north, east
// in degrees. Upstream providers use two other orderings; each gets its own
// constructor because the reorderings differ.
type BBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// BBoxFromGeoJSON converts a GeoJSON-ordered bbox [minLon, minLat, maxLon, maxLat].
func BBoxFromGeoJSON(b [4]float64) BBox {
	return BBox{South: b[1], West: b[0], North: b[3], East: b[2]}
}

// BBoxFromNominatim converts the reverse-geocoding provider's ordering
// [south, north, west, east]. Nominatim returns the values as strings.
func BBoxFromNominatim(b []string) (BBox, error) {
	if len(b) != 4 {
		return BBox{}, eris.Errorf("model: boundingbox has %d elements, want 4", len(b))
	}
	vals := make([]float64, 4)
	for i, s := range b {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return BBox{}, eris.Wrapf(err, "model: parse boundingbox[%d]", i)
		}
		vals[i] = v
	}
	return BBox{South: vals[0], North: vals[1], West: vals[2], East: vals[3]}, nil
}

// AreaDeg2 is the naive bbox area in square degrees.
func (b BBox) AreaDeg2() float64 {
	return (b.North - b.South) * (b.East - b.West)
}

// Center returns the bbox midpoint.
func (b BBox) Center() Coordinate {
	return Coordinate{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
}

// Contains reports whether the coordinate lies inside the box.
func (b BBox) Contains(c Coordinate) bool {
	return c.Lat >= b.South && c.Lat <= b.North && c.Lng >= b.West && c.Lng <= b.East
}

// OverpassString formats the box as the Overpass QL "(south,west,north,east)"
// bbox filter.
func (b BBox) OverpassString() string {
	return fmt.Sprintf("(%f,%f,%f,%f)", b.South, b.West, b.North, b.East)
}
