package model

// Overlay identifies the active map-coloring mode.
type Overlay string

// Overlay modes.
const (
	OverlayNone        Overlay = "none"
	OverlayTemperature Overlay = "temperature"
	OverlayAirQuality  Overlay = "air-quality"
	OverlayFlood       Overlay = "flood"
	OverlayCombined    Overlay = "combined"
)

// Valid reports whether o is one of the known overlay modes.
func (o Overlay) Valid() bool {
	switch o {
	case OverlayNone, OverlayTemperature, OverlayAirQuality, OverlayFlood, OverlayCombined:
		return true
	}
	return false
}

// HighlightCircle is the fallback visual proxy shown when no polygon could be
// resolved for a selection.
type HighlightCircle struct {
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radiusMeters"`
}

// Highlight radius tiers by map zoom.
const (
	highZoomRadiusMeters   = 1000
	mediumZoomRadiusMeters = 4000
	lowZoomRadiusMeters    = 10000
)

// HighlightRadiusForZoom returns the fallback circle radius for the current
// map zoom: 1000 m at high zoom (>= 12), 4000 m at medium (>= 8), 10000 m
// otherwise.
func HighlightRadiusForZoom(zoom int) float64 {
	switch {
	case zoom >= 12:
		return highZoomRadiusMeters
	case zoom >= 8:
		return mediumZoomRadiusMeters
	default:
		return lowZoomRadiusMeters
	}
}
