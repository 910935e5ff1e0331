package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/terralens/terralens/internal/model"
)

func TestSystemPrompt_RendersKnownMetrics(t *testing.T) {
	region := &model.RegionData{
		Name:        "Jakarta",
		Lat:         -6.2,
		Lng:         106.8,
		Temperature: model.Float(33.4),
		AirQuality:  model.Float(160),
		FloodRisk:   model.Float(85),
	}

	prompt := systemPrompt(region)

	assert.Contains(t, prompt, "Jakarta")
	assert.Contains(t, prompt, "Temperature: 33.4°C (high)")
	assert.Contains(t, prompt, "Air quality index: 160.0 (high)")
	assert.Contains(t, prompt, "Flood risk: 85.0% (critical)")
	assert.Contains(t, prompt, "Combined risk:")
}

func TestSystemPrompt_UnknownMetricsStatedAsUnavailable(t *testing.T) {
	region := &model.RegionData{Name: "0.0000, 0.0000"}

	prompt := systemPrompt(region)

	assert.Contains(t, prompt, "Temperature: unavailable")
	assert.NotContains(t, prompt, "Combined risk:",
		"no composite score from partial data")
	assert.Equal(t, 3, strings.Count(prompt, "unavailable"))
}

func TestSystemPrompt_NilRegion(t *testing.T) {
	prompt := systemPrompt(nil)
	assert.Contains(t, prompt, "No region is currently selected.")
}
