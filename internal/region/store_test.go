package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/terralens/terralens/internal/geometry"
	"github.com/terralens/terralens/internal/model"
	"github.com/terralens/terralens/internal/overlay"
)

func testFC(name string) *geomjson.FeatureCollection {
	return geometry.RectangleFromBBox(
		model.BBox{South: 0, West: 0, North: 1, East: 1},
		map[string]any{"name": name},
	)
}

func TestStore_BeginClearsPriorStateSynchronously(t *testing.T) {
	s := NewStore(nil)

	gen := s.Begin(model.Coordinate{Lat: 1, Lng: 2})
	require.True(t, s.ApplyGeometry(gen, testFC("old"), "Old Region"))
	require.True(t, s.ApplyWaterMask(gen, testFC("water")))
	require.True(t, s.FitBounds(gen, model.BBox{North: 1, East: 1}))

	s.Begin(model.Coordinate{Lat: 48.85, Lng: 2.35})

	snap := s.Snapshot()
	assert.Nil(t, snap.Geometry)
	assert.Nil(t, snap.WaterMask)
	assert.Nil(t, snap.Highlight)
	assert.Nil(t, snap.Bounds)
	require.NotNil(t, snap.Region)
	assert.Equal(t, "48.8500, 2.3500", snap.Region.Name)
	assert.Nil(t, snap.Region.Temperature)
}

func TestStore_StaleAppliesDiscarded(t *testing.T) {
	s := NewStore(nil)

	genA := s.Begin(model.Coordinate{})
	genB := s.Begin(model.Coordinate{Lat: 10, Lng: 10})
	require.NotEqual(t, genA, genB)

	// Selection A's late-arriving results must not touch B's state.
	assert.False(t, s.ApplyGeometry(genA, testFC("a"), "A Town"))
	assert.False(t, s.ApplyWaterMask(genA, testFC("aw")))
	assert.False(t, s.FitBounds(genA, model.BBox{North: 5}))
	assert.False(t, s.PublishMetrics(genA, model.OverlayMetrics{Temperature: model.Float(99)}))
	assert.False(t, s.SetHighlight(genA, model.HighlightCircle{RadiusMeters: 1000}))

	snap := s.Snapshot()
	assert.Nil(t, snap.Geometry)
	assert.Nil(t, snap.Highlight)
	assert.NotEqual(t, "A Town", snap.Region.Name)
	assert.Nil(t, snap.Region.Temperature)

	// B's own results still land.
	assert.True(t, s.ApplyGeometry(genB, testFC("b"), "B City"))
	assert.True(t, s.PublishMetrics(genB, model.OverlayMetrics{Temperature: model.Float(21)}))
	snap = s.Snapshot()
	assert.Equal(t, "B City", snap.Region.Name)
	require.NotNil(t, snap.Region.Temperature)
	assert.Equal(t, 21.0, *snap.Region.Temperature)
}

func TestStore_HighlightNeverOverridesGeometry(t *testing.T) {
	s := NewStore(nil)
	gen := s.Begin(model.Coordinate{})

	require.True(t, s.ApplyGeometry(gen, testFC("x"), "X"))
	assert.False(t, s.SetHighlight(gen, model.HighlightCircle{RadiusMeters: 4000}))
	assert.Nil(t, s.Snapshot().Highlight)
}

func TestStore_ApplyGeometryClearsEarlierHighlight(t *testing.T) {
	s := NewStore(nil)
	gen := s.Begin(model.Coordinate{})

	require.True(t, s.SetHighlight(gen, model.HighlightCircle{RadiusMeters: 4000}))
	require.True(t, s.ApplyGeometry(gen, testFC("x"), "X"))

	snap := s.Snapshot()
	assert.Nil(t, snap.Highlight)
	assert.NotNil(t, snap.Geometry)
}

func TestStore_DrivesProjector(t *testing.T) {
	p := overlay.NewProjector()
	p.SetOverlay(model.OverlayTemperature)
	s := NewStore(p)

	gen := s.Begin(model.Coordinate{})
	assert.False(t, p.State().HasGeometry)
	assert.Empty(t, p.State().FillColor)

	s.ApplyGeometry(gen, testFC("x"), "X")
	assert.True(t, p.State().HasGeometry)

	s.PublishMetrics(gen, model.OverlayMetrics{Temperature: model.Float(42)})
	assert.Equal(t, "#e74c3c", p.State().FillColor)

	// A new selection clears both legend gate and fill synchronously.
	s.Begin(model.Coordinate{Lat: 1})
	assert.False(t, p.State().HasGeometry)
	assert.Empty(t, p.State().FillColor)
}
