package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUrbanRiskScore_Deterministic(t *testing.T) {
	// temp 36 buckets to 100, AQI 210 buckets to 100, flood 90 passes through:
	// round(100*0.25 + 100*0.25 + 90*0.5) == 95
	assert.Equal(t, 95, UrbanRiskScore(36, 210, 90))
}

func TestUrbanRiskScore_Buckets(t *testing.T) {
	tests := []struct {
		name     string
		celsius  float64
		aqi      float64
		flood    float64
		expected int
	}{
		{name: "all bottom buckets", celsius: 10, aqi: 30, flood: 0, expected: 10},
		{name: "mid buckets", celsius: 27, aqi: 120, flood: 50, expected: 53},
		{name: "flood dominates at half weight", celsius: 10, aqi: 30, flood: 100, expected: 60},
		{name: "flood clamped below zero", celsius: 10, aqi: 30, flood: -40, expected: 10},
		{name: "flood clamped above hundred", celsius: 10, aqi: 30, flood: 250, expected: 60},
		{name: "worst case", celsius: 45, aqi: 400, flood: 100, expected: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UrbanRiskScore(tt.celsius, tt.aqi, tt.flood))
		})
	}
}

func TestCombinedRiskScore_Normalization(t *testing.T) {
	// temp 25 → (25-10)/30*100 = 50; aqi 100 → 50; flood 50 → 50.
	// 50*0.30 + 50*0.35 + 50*0.35 = 50
	assert.InDelta(t, 50.0, CombinedRiskScore(25, 100, 50), 1e-9)

	// Cold and clean bottoms out at zero.
	assert.InDelta(t, 0.0, CombinedRiskScore(-20, 0, 0), 1e-9)

	// Everything saturated tops out at a hundred.
	assert.InDelta(t, 100.0, CombinedRiskScore(100, 1000, 200), 1e-9)
}

func TestCombinedRiskScore_ClampedRange(t *testing.T) {
	for temp := -50.0; temp <= 100; temp += 7.5 {
		for aqi := 0.0; aqi <= 1000; aqi += 93 {
			for flood := -50.0; flood <= 200; flood += 23 {
				score := CombinedRiskScore(temp, aqi, flood)
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 100.0)
			}
		}
	}
}

func TestCombinedRiskScore_NonFinite(t *testing.T) {
	score := CombinedRiskScore(math.NaN(), math.Inf(1), math.Inf(-1))
	assert.False(t, math.IsNaN(score))
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestClassifyHabitability(t *testing.T) {
	tests := []struct {
		score    int
		expected Habitability
	}{
		{score: 0, expected: HabitabilityExcellent},
		{score: 30, expected: HabitabilityExcellent},
		{score: 31, expected: HabitabilityGood},
		{score: 50, expected: HabitabilityGood},
		{score: 51, expected: HabitabilityModerate},
		{score: 70, expected: HabitabilityModerate},
		{score: 71, expected: HabitabilityPoor},
		{score: 85, expected: HabitabilityPoor},
		{score: 86, expected: HabitabilityCritical},
		{score: 100, expected: HabitabilityCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyHabitability(tt.score), "score %d", tt.score)
	}
}
