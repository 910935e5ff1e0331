// Package risk maps environmental metrics to severity tiers and composite scores.
package risk

import "math"

// Tier is the shared four-level severity vocabulary. Map fill, legends, and
// the sidebar all use these four buckets and nothing else.
type Tier string

// Severity tiers.
const (
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

// tierColors is the single palette shared by every tier consumer.
var tierColors = map[Tier]string{
	TierLow:      "#2ecc71",
	TierModerate: "#f1c40f",
	TierHigh:     "#e67e22",
	TierCritical: "#e74c3c",
}

// Color returns the fixed display color for the tier.
func (t Tier) Color() string {
	return tierColors[t]
}

// sanitizeMetric degrades non-finite input to the metric's low-end value so
// classification never panics on missing or garbage readings.
func sanitizeMetric(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ClassifyTemperature tiers a temperature in °C.
func ClassifyTemperature(celsius float64) Tier {
	celsius = sanitizeMetric(celsius)
	switch {
	case celsius < 20:
		return TierLow
	case celsius < 30:
		return TierModerate
	case celsius < 40:
		return TierHigh
	default:
		return TierCritical
	}
}

// ClassifyAQI tiers an air-quality index value.
func ClassifyAQI(aqi float64) Tier {
	aqi = sanitizeMetric(aqi)
	switch {
	case aqi <= 50:
		return TierLow
	case aqi <= 100:
		return TierModerate
	case aqi <= 200:
		return TierHigh
	default:
		return TierCritical
	}
}

// ClassifyFlood tiers a flood-risk percentage.
func ClassifyFlood(pct float64) Tier {
	pct = sanitizeMetric(pct)
	switch {
	case pct <= 30:
		return TierLow
	case pct <= 60:
		return TierModerate
	case pct <= 80:
		return TierHigh
	default:
		return TierCritical
	}
}

// ClassifyCombined tiers a composite risk score in [0, 100].
func ClassifyCombined(score float64) Tier {
	score = sanitizeMetric(score)
	switch {
	case score <= 30:
		return TierLow
	case score <= 50:
		return TierModerate
	case score <= 70:
		return TierHigh
	default:
		return TierCritical
	}
}
