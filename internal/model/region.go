package model

import "fmt"

// RegionData is the sidebar payload for the current selection. Metric fields
// are nil until their fetch resolves; nil means unknown. Zero is a real
// reading, never a placeholder.
type RegionData struct {
	Name        string   `json:"name"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Temperature *float64 `json:"temperature"`
	AirQuality  *float64 `json:"airQuality"`
	FloodRisk   *float64 `json:"floodRisk"`
}

// NewRegionStub builds the initial RegionData published at selection time,
// before any metric fetch has resolved.
func NewRegionStub(c Coordinate) *RegionData {
	return &RegionData{
		Name: fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lng),
		Lat:  c.Lat,
		Lng:  c.Lng,
	}
}

// OverlayMetrics is a snapshot of the three environmental signals taken when a
// geometry was resolved. Overlay coloring reads this snapshot, not RegionData,
// so a later sidebar update cannot reflow the map fill.
type OverlayMetrics struct {
	Temperature *float64 `json:"temperature"`
	AirQuality  *float64 `json:"airQuality"`
	FloodRisk   *float64 `json:"floodRisk"`
}

// Float returns a pointer to v. Convenience for building metric values.
func Float(v float64) *float64 { return &v }
