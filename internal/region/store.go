// Package region owns the single current-selection slot and the analysis
// orchestration around it. There is exactly one logical writer — the most
// recent user action — and every asynchronous result carries the generation
// of the selection that started it, so a slow earlier request can never
// clobber a newer selection's state.
package region

import (
	"sync"

	geomjson "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/terralens/terralens/internal/model"
	"github.com/terralens/terralens/internal/overlay"
)

// Snapshot is a copy of the current-selection slot, safe to serialize.
type Snapshot struct {
	Generation uint64                     `json:"generation"`
	Region     *model.RegionData          `json:"region"`
	Geometry   *geomjson.FeatureCollection `json:"geometry,omitempty"`
	Highlight  *model.HighlightCircle     `json:"highlight,omitempty"`
	WaterMask  *geomjson.FeatureCollection `json:"waterMask,omitempty"`
	Bounds     *model.BBox                `json:"bounds,omitempty"`
}

// Store is the current-selection slot. Begin starts a new selection,
// synchronously clearing all prior state and bumping the generation; every
// apply method names the generation it belongs to and is silently discarded
// when that generation is no longer current.
type Store struct {
	mu        sync.Mutex
	gen       uint64
	region    *model.RegionData
	geometry  *geomjson.FeatureCollection
	highlight *model.HighlightCircle
	waterMask *geomjson.FeatureCollection
	bounds    *model.BBox
	projector *overlay.Projector
}

// NewStore creates an empty Store. The projector receives geometry-presence
// and metrics changes as they land; it may be nil.
func NewStore(projector *overlay.Projector) *Store {
	return &Store{projector: projector}
}

// Begin starts a new selection at c: prior geometry, highlight, water mask,
// and metrics are cleared before Begin returns, and the published region is
// reset to a coordinate-named stub. The returned generation must accompany
// every later apply for this selection.
func (s *Store) Begin(c model.Coordinate) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.region = model.NewRegionStub(c)
	s.geometry = nil
	s.highlight = nil
	s.waterMask = nil
	s.bounds = nil
	if s.projector != nil {
		s.projector.SetMetrics(nil)
		s.projector.SetGeometryPresent(false)
	}
	return s.gen
}

// current reports whether gen is the live selection; callers hold s.mu.
func (s *Store) current(gen uint64, what string) bool {
	if gen == s.gen {
		return true
	}
	zap.L().Debug("region: stale result discarded",
		zap.String("apply", what),
		zap.Uint64("generation", gen),
		zap.Uint64("current", s.gen))
	return false
}

// ApplyGeometry installs resolved geometry and its display name.
func (s *Store) ApplyGeometry(gen uint64, fc *geomjson.FeatureCollection, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen, "geometry") {
		return false
	}
	s.geometry = fc
	s.highlight = nil
	if name != "" && s.region != nil {
		s.region.Name = name
	}
	if s.projector != nil {
		s.projector.SetGeometryPresent(true)
	}
	return true
}

// FitBounds records the camera target for the selection.
func (s *Store) FitBounds(gen uint64, b model.BBox) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen, "bounds") {
		return false
	}
	s.bounds = &b
	return true
}

// ApplyWaterMask installs the water-body overlay for the selection.
func (s *Store) ApplyWaterMask(gen uint64, fc *geomjson.FeatureCollection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen, "water mask") {
		return false
	}
	s.waterMask = fc
	return true
}

// SetHighlight installs the fallback circle shown when no area resolved.
// A highlight never counts as geometry for the projector.
func (s *Store) SetHighlight(gen uint64, hc model.HighlightCircle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen, "highlight") {
		return false
	}
	if s.geometry != nil {
		return false
	}
	s.highlight = &hc
	return true
}

// PublishMetrics merges the joined metric fan-out into the region exactly
// once per selection and hands the overlay projector its snapshot.
func (s *Store) PublishMetrics(gen uint64, m model.OverlayMetrics) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen, "metrics") {
		return false
	}
	if s.region != nil {
		s.region.Temperature = m.Temperature
		s.region.AirQuality = m.AirQuality
		s.region.FloodRisk = m.FloodRisk
	}
	if s.projector != nil {
		s.projector.SetMetrics(&m)
	}
	return true
}

// Snapshot returns a copy of the current slot.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Generation: s.gen,
		Geometry:   s.geometry,
		Highlight:  s.highlight,
		WaterMask:  s.waterMask,
		Bounds:     s.bounds,
	}
	if s.region != nil {
		r := *s.region
		snap.Region = &r
	}
	return snap
}
