// Package model holds the core domain types shared across the analysis pipeline.
package model

import "math"

// Coordinate is a geographic point in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Normalize returns the coordinate with latitude clamped to [-90, 90] and
// longitude wrapped (not clamped) into [-180, 180]. Normalization is
// idempotent. Non-finite components degrade to 0.
func (c Coordinate) Normalize() Coordinate {
	lat := c.Lat
	lng := c.Lng

	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		lat = 0
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) {
		lng = 0
	}

	if lat > 90 {
		lat = 90
	} else if lat < -90 {
		lat = -90
	}

	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	lng -= 180

	return Coordinate{Lat: lat, Lng: lng}
}
