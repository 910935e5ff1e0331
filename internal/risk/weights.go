package risk

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Weights holds the two weight sets. The production defaults are what every
// production surface uses; a weights file exists for offline experimentation
// with the suitability grid only.
type Weights struct {
	Urban    WeightSet `yaml:"urban"`
	Combined WeightSet `yaml:"combined"`
}

// WeightSet is one temperature/AQI/flood weighting.
type WeightSet struct {
	Temperature float64 `yaml:"temperature"`
	AirQuality  float64 `yaml:"air_quality"`
	Flood       float64 `yaml:"flood"`
}

// DefaultWeights returns the fixed production weights.
func DefaultWeights() Weights {
	return Weights{
		Urban:    WeightSet{Temperature: urbanTempWeight, AirQuality: urbanAQIWeight, Flood: urbanFloodWeight},
		Combined: WeightSet{Temperature: combinedTempWeight, AirQuality: combinedAQIWeight, Flood: combinedFloodWeight},
	}
}

// LoadWeights reads a weights override file. Each set must sum to 1.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, eris.Wrapf(err, "risk: read weights %s", path)
	}

	w := DefaultWeights()
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, eris.Wrap(err, "risk: parse weights")
	}

	for name, set := range map[string]WeightSet{"urban": w.Urban, "combined": w.Combined} {
		sum := set.Temperature + set.AirQuality + set.Flood
		if sum < 0.999 || sum > 1.001 {
			return Weights{}, eris.Errorf("risk: %s weights sum to %.3f, want 1", name, sum)
		}
	}

	return w, nil
}

// UrbanScore is UrbanRiskScore under this weight set.
func (w Weights) UrbanScore(celsius, aqi, floodPct float64) int {
	tempRisk := temperatureRiskBucket(celsius)
	aqiRisk := aqiRiskBucket(aqi)
	floodRisk := clamp(sanitizeMetric(floodPct), 0, 100)

	score := tempRisk*w.Urban.Temperature + aqiRisk*w.Urban.AirQuality + floodRisk*w.Urban.Flood
	return roundScore(score)
}
