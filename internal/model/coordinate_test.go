package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       Coordinate
		expected Coordinate
	}{
		{
			name:     "already in range",
			in:       Coordinate{Lat: 45.5, Lng: -120.25},
			expected: Coordinate{Lat: 45.5, Lng: -120.25},
		},
		{
			name:     "lat clamped, lng wrapped",
			in:       Coordinate{Lat: 95, Lng: 185},
			expected: Coordinate{Lat: 90, Lng: -175},
		},
		{
			name:     "negative overflow wraps west",
			in:       Coordinate{Lat: -100, Lng: -190},
			expected: Coordinate{Lat: -90, Lng: 170},
		},
		{
			name:     "full revolution returns to origin",
			in:       Coordinate{Lat: 0, Lng: 360},
			expected: Coordinate{Lat: 0, Lng: 0},
		},
		{
			name:     "multiple revolutions",
			in:       Coordinate{Lat: 10, Lng: 725},
			expected: Coordinate{Lat: 10, Lng: 5},
		},
		{
			name:     "non-finite degrades to zero",
			in:       Coordinate{Lat: math.NaN(), Lng: math.Inf(1)},
			expected: Coordinate{Lat: 0, Lng: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			assert.InDelta(t, tt.expected.Lat, got.Lat, 1e-9)
			assert.InDelta(t, tt.expected.Lng, got.Lng, 1e-9)
		})
	}
}

func TestNormalize_Range(t *testing.T) {
	for lat := -200.0; lat <= 200; lat += 13.7 {
		for lng := -800.0; lng <= 800; lng += 37.3 {
			got := Coordinate{Lat: lat, Lng: lng}.Normalize()
			assert.GreaterOrEqual(t, got.Lat, -90.0)
			assert.LessOrEqual(t, got.Lat, 90.0)
			assert.GreaterOrEqual(t, got.Lng, -180.0)
			assert.LessOrEqual(t, got.Lng, 180.0)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []Coordinate{
		{Lat: 95, Lng: 185},
		{Lat: -95, Lng: -185},
		{Lat: 0, Lng: 180},
		{Lat: 0, Lng: -180},
		{Lat: 51.5, Lng: -0.12},
	}
	for _, in := range inputs {
		once := in.Normalize()
		twice := once.Normalize()
		assert.Equal(t, once, twice, "normalize must be idempotent for %+v", in)
	}
}
