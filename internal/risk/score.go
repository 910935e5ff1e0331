package risk

import "math"

// Two scoring formulas coexist on purpose. UrbanRiskScore is the
// bucket-then-weight transform behind the development-suitability grid;
// CombinedRiskScore is the smooth normalization behind the combined-risk
// overlay and card. Their weights and shapes differ for their consumers —
// do not unify them.

// Urban score weights.
const (
	urbanTempWeight  = 0.25
	urbanAQIWeight   = 0.25
	urbanFloodWeight = 0.50
)

// Combined score weights.
const (
	combinedTempWeight  = 0.30
	combinedAQIWeight   = 0.35
	combinedFloodWeight = 0.35
)

// Habitability is the five-tier suitability-for-development scale derived from
// the urban risk score. It is distinct from Tier and used only for grid cells.
type Habitability string

// Habitability buckets.
const (
	HabitabilityExcellent Habitability = "excellent"
	HabitabilityGood      Habitability = "good"
	HabitabilityModerate  Habitability = "moderate"
	HabitabilityPoor      Habitability = "poor"
	HabitabilityCritical  Habitability = "critical"
)

// temperatureRiskBucket maps a temperature to its discrete urban-risk value.
func temperatureRiskBucket(celsius float64) float64 {
	celsius = sanitizeMetric(celsius)
	switch {
	case celsius < 20:
		return 20
	case celsius < 25:
		return 30
	case celsius < 30:
		return 50
	case celsius < 35:
		return 80
	default:
		return 100
	}
}

// aqiRiskBucket maps an AQI reading to its discrete urban-risk value.
func aqiRiskBucket(aqi float64) float64 {
	aqi = sanitizeMetric(aqi)
	switch {
	case aqi <= 50:
		return 20
	case aqi <= 100:
		return 40
	case aqi <= 150:
		return 60
	case aqi <= 200:
		return 80
	default:
		return 100
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// UrbanRiskScore computes the 0-100 urban planning risk score (higher is
// worse): temperature and AQI are bucketed into discrete risk values first,
// flood risk is clamped to [0, 100], then the three are weighted 25/25/50 and
// rounded.
func UrbanRiskScore(celsius, aqi, floodPct float64) int {
	tempRisk := temperatureRiskBucket(celsius)
	aqiRisk := aqiRiskBucket(aqi)
	floodRisk := clamp(sanitizeMetric(floodPct), 0, 100)

	score := tempRisk*urbanTempWeight + aqiRisk*urbanAQIWeight + floodRisk*urbanFloodWeight
	return roundScore(score)
}

func roundScore(v float64) int {
	return int(math.Round(v))
}

// CombinedRiskScore computes the 0-100 composite score for the combined-risk
// overlay: smooth normalization of each signal, weighted 30/35/35, clamped.
func CombinedRiskScore(celsius, aqi, floodPct float64) float64 {
	tempN := clamp((sanitizeMetric(celsius)-10)/30*100, 0, 100)
	aqiN := clamp(sanitizeMetric(aqi)/200*100, 0, 100)
	floodN := clamp(sanitizeMetric(floodPct), 0, 100)

	score := tempN*combinedTempWeight + aqiN*combinedAQIWeight + floodN*combinedFloodWeight
	return clamp(score, 0, 100)
}

// ClassifyHabitability buckets an urban risk score into the five-tier
// development-suitability scale.
func ClassifyHabitability(urbanScore int) Habitability {
	switch {
	case urbanScore <= 30:
		return HabitabilityExcellent
	case urbanScore <= 50:
		return HabitabilityGood
	case urbanScore <= 70:
		return HabitabilityModerate
	case urbanScore <= 85:
		return HabitabilityPoor
	default:
		return HabitabilityCritical
	}
}
