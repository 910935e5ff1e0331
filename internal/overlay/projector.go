// Package overlay projects the current selection's metrics and overlay mode
// into the fill-color/legend state the map surface renders from. Sibling UI
// reads this projection instead of owning its own copy of the state.
package overlay

import (
	"sync"

	"github.com/terralens/terralens/internal/model"
	"github.com/terralens/terralens/internal/risk"
)

// State is the rendered overlay projection. FillColor is empty when no
// metrics snapshot exists, the overlay is none, or the selected signal is
// still unknown. HasGeometry gates the legend: it stays false while only a
// highlight circle is shown, so no legend is rendered without a true area.
type State struct {
	Overlay     model.Overlay `json:"overlay"`
	FillColor   string        `json:"fillColor,omitempty"`
	HasGeometry bool          `json:"hasGeometry"`
}

// Projector holds the inputs of the overlay projection and pushes a fresh
// State to its observers synchronously on every change.
type Projector struct {
	mu          sync.Mutex
	metrics     *model.OverlayMetrics
	active      model.Overlay
	hasGeometry bool
	observers   []func(State)
}

// NewProjector creates a Projector with overlay mode none and no metrics.
func NewProjector() *Projector {
	return &Projector{active: model.OverlayNone}
}

// Subscribe registers fn and immediately pushes the current state to it.
// Observers are called synchronously, in registration order, while the
// projector lock is held; they must not call back into the projector.
func (p *Projector) Subscribe(fn func(State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
	fn(p.state())
}

// SetMetrics replaces the metrics snapshot. nil clears it.
func (p *Projector) SetMetrics(m *model.OverlayMetrics) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metrics = m
	p.push()
}

// SetOverlay switches the active overlay mode. Unknown modes are ignored.
func (p *Projector) SetOverlay(o model.Overlay) {
	if !o.Valid() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = o
	p.push()
}

// SetGeometryPresent records whether a true area is currently resolved.
func (p *Projector) SetGeometryPresent(present bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hasGeometry = present
	p.push()
}

// State returns the current projection.
func (p *Projector) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state()
}

func (p *Projector) state() State {
	return State{
		Overlay:     p.active,
		FillColor:   fillColor(p.metrics, p.active),
		HasGeometry: p.hasGeometry,
	}
}

func (p *Projector) push() {
	s := p.state()
	for _, fn := range p.observers {
		fn(s)
	}
}

// fillColor routes the active overlay to its severity classifier. An unknown
// (nil) signal yields no color rather than a misleading low-tier green.
func fillColor(m *model.OverlayMetrics, active model.Overlay) string {
	if m == nil || active == model.OverlayNone {
		return ""
	}
	switch active {
	case model.OverlayTemperature:
		if m.Temperature == nil {
			return ""
		}
		return risk.ClassifyTemperature(*m.Temperature).Color()
	case model.OverlayAirQuality:
		if m.AirQuality == nil {
			return ""
		}
		return risk.ClassifyAQI(*m.AirQuality).Color()
	case model.OverlayFlood:
		if m.FloodRisk == nil {
			return ""
		}
		return risk.ClassifyFlood(*m.FloodRisk).Color()
	case model.OverlayCombined:
		if m.Temperature == nil || m.AirQuality == nil || m.FloodRisk == nil {
			return ""
		}
		score := risk.CombinedRiskScore(*m.Temperature, *m.AirQuality, *m.FloodRisk)
		return risk.ClassifyCombined(score).Color()
	}
	return ""
}
