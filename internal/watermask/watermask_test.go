package watermask

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/terralens/terralens/internal/model"
)

type stubQuerier struct {
	calls int
	fc    *geomjson.FeatureCollection
	err   error
}

func (s *stubQuerier) WaterPolygons(context.Context, model.BBox) (*geomjson.FeatureCollection, error) {
	s.calls++
	return s.fc, s.err
}

func waterCollection(t *testing.T) *geomjson.FeatureCollection {
	t.Helper()
	poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{
		{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}},
	})
	return &geomjson.FeatureCollection{Features: []*geomjson.Feature{{Geometry: poly}}}
}

func TestFetch_AreaGuardSkipsQuery(t *testing.T) {
	q := &stubQuerier{fc: waterCollection(t)}
	f := NewFetcher(q)

	// 90 * 180 = 16200 deg² — far past the guard.
	fc := f.Fetch(context.Background(), model.BBox{South: -45, West: -90, North: 45, East: 90})
	assert.Nil(t, fc)
	assert.Zero(t, q.calls, "oversized bbox must not trigger a network call")
}

func TestFetch_SmallAreaQueries(t *testing.T) {
	q := &stubQuerier{fc: waterCollection(t)}
	f := NewFetcher(q)

	// 5 * 10 = 50 deg² — under the guard.
	fc := f.Fetch(context.Background(), model.BBox{South: 0, West: 0, North: 5, East: 10})
	require.NotNil(t, fc)
	assert.Equal(t, 1, q.calls)
	assert.Len(t, fc.Features, 1)
}

func TestFetch_QueryErrorDegradesToNil(t *testing.T) {
	q := &stubQuerier{err: assert.AnError}
	f := NewFetcher(q)

	fc := f.Fetch(context.Background(), model.BBox{South: 0, West: 0, North: 1, East: 1})
	assert.Nil(t, fc, "water mask failures are cosmetic, never errors")
	assert.Equal(t, 1, q.calls)
}

func TestFetch_SanitizesNonAreaResults(t *testing.T) {
	line := geom.NewLineString(geom.XY).MustSetCoords([]geom.Coord{{0, 0}, {1, 1}})
	q := &stubQuerier{fc: &geomjson.FeatureCollection{
		Features: []*geomjson.Feature{{Geometry: line}},
	}}
	f := NewFetcher(q)

	fc := f.Fetch(context.Background(), model.BBox{South: 0, West: 0, North: 1, East: 1})
	assert.Nil(t, fc)
}

func TestFetch_NoWaterIsNil(t *testing.T) {
	q := &stubQuerier{}
	f := NewFetcher(q)
	assert.Nil(t, f.Fetch(context.Background(), model.BBox{South: 0, West: 0, North: 1, East: 1}))
}
