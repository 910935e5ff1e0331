package region

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/terralens/terralens/internal/model"
	"github.com/terralens/terralens/internal/resolve"
	"github.com/terralens/terralens/pkg/nominatim"
)

type stubResolver struct {
	mu         sync.Mutex
	coordCalls int
	placeCalls int
	coordFn    func(ctx context.Context, c model.Coordinate, sink resolve.Sink) resolve.Result
	placeFn    func(ctx context.Context, p *nominatim.Place, sink resolve.Sink) resolve.Result
}

func (s *stubResolver) ResolveCoordinate(ctx context.Context, c model.Coordinate, sink resolve.Sink) resolve.Result {
	s.mu.Lock()
	s.coordCalls++
	fn := s.coordFn
	s.mu.Unlock()
	if fn == nil {
		return resolve.Result{}
	}
	return fn(ctx, c, sink)
}

func (s *stubResolver) ResolvePlace(ctx context.Context, p *nominatim.Place, sink resolve.Sink) resolve.Result {
	s.mu.Lock()
	s.placeCalls++
	fn := s.placeFn
	s.mu.Unlock()
	if fn == nil {
		return resolve.Result{}
	}
	return fn(ctx, p, sink)
}

type stubSearcher struct {
	place *nominatim.Place
	err   error
}

func (s *stubSearcher) Search(context.Context, string) (*nominatim.Place, error) {
	return s.place, s.err
}

type stubMetrics struct{ m model.OverlayMetrics }

func (s stubMetrics) FetchAll(context.Context, model.Coordinate) model.OverlayMetrics {
	return s.m
}

func applyRect(sink resolve.Sink, name string) resolve.Result {
	sink.ApplyGeometry(testFC(name), name)
	sink.FitBounds(model.BBox{South: 0, West: 0, North: 1, East: 1})
	return resolve.Result{Success: true, CountryName: name}
}

func TestAnalyzeCoordinate_GeometryAndMetricsMerged(t *testing.T) {
	resolver := &stubResolver{
		coordFn: func(_ context.Context, _ model.Coordinate, sink resolve.Sink) resolve.Result {
			return applyRect(sink, "Reykjavik")
		},
	}
	metrics := stubMetrics{m: model.OverlayMetrics{
		Temperature: model.Float(11),
		AirQuality:  model.Float(18),
	}}
	o := NewOrchestrator(NewStore(nil), resolver, &stubSearcher{}, metrics)

	snap := o.AnalyzeCoordinate(context.Background(), model.Coordinate{Lat: 64.1, Lng: -21.9}, 10)

	require.NotNil(t, snap.Region)
	assert.Equal(t, "Reykjavik", snap.Region.Name)
	require.NotNil(t, snap.Region.Temperature)
	assert.Equal(t, 11.0, *snap.Region.Temperature)
	assert.Nil(t, snap.Region.FloodRisk, "a failed metric stays unknown")
	assert.NotNil(t, snap.Geometry)
	assert.Nil(t, snap.Highlight)
}

func TestAnalyzeCoordinate_NormalizesBeforeAnalysis(t *testing.T) {
	var seen model.Coordinate
	resolver := &stubResolver{
		coordFn: func(_ context.Context, c model.Coordinate, _ resolve.Sink) resolve.Result {
			seen = c
			return resolve.Result{Success: true}
		},
	}
	o := NewOrchestrator(NewStore(nil), resolver, &stubSearcher{}, nil)

	o.AnalyzeCoordinate(context.Background(), model.Coordinate{Lat: 95, Lng: 190}, 10)

	assert.Equal(t, 90.0, seen.Lat)
	assert.Equal(t, -170.0, seen.Lng)
}

func TestAnalyzeCoordinate_CircleFallbackSizedByZoom(t *testing.T) {
	tests := []struct {
		zoom   int
		radius float64
	}{
		{14, 1000},
		{9, 4000},
		{4, 10000},
	}
	for _, tt := range tests {
		o := NewOrchestrator(NewStore(nil), &stubResolver{}, &stubSearcher{}, nil)
		snap := o.AnalyzeCoordinate(context.Background(), model.Coordinate{Lat: 2, Lng: 3}, tt.zoom)

		require.NotNil(t, snap.Highlight, "zoom %d", tt.zoom)
		assert.Equal(t, tt.radius, snap.Highlight.RadiusMeters)
		assert.Equal(t, model.Coordinate{Lat: 2, Lng: 3}, snap.Highlight.Center)
		assert.Nil(t, snap.Geometry)
	}
}

func TestAnalyzePlace_SeedsFromForwardResponse(t *testing.T) {
	place := &nominatim.Place{
		DisplayName: "Accra, Ghana",
		Lat:         "5.56",
		Lon:         "-0.2",
		Address:     nominatim.Address{City: "Accra"},
		BoundingBox: []string{"5.5", "5.7", "-0.3", "-0.1"},
	}
	resolver := &stubResolver{
		placeFn: func(_ context.Context, p *nominatim.Place, sink resolve.Sink) resolve.Result {
			return applyRect(sink, p.PreferredName())
		},
	}
	o := NewOrchestrator(NewStore(nil), resolver, &stubSearcher{place: place}, nil)

	snap, err := o.AnalyzePlace(context.Background(), "accra", 10)

	require.NoError(t, err)
	assert.Equal(t, 1, resolver.placeCalls)
	assert.Equal(t, 0, resolver.coordCalls, "seed success skips the reverse cascade")
	assert.Equal(t, "Accra", snap.Region.Name)
}

func TestAnalyzePlace_SeedFailureFallsBackToCascade(t *testing.T) {
	place := &nominatim.Place{DisplayName: "somewhere", Lat: "10", Lon: "20"}
	resolver := &stubResolver{
		coordFn: func(_ context.Context, _ model.Coordinate, sink resolve.Sink) resolve.Result {
			return applyRect(sink, "Somewhere Province")
		},
	}
	o := NewOrchestrator(NewStore(nil), resolver, &stubSearcher{place: place}, nil)

	snap, err := o.AnalyzePlace(context.Background(), "somewhere", 10)

	require.NoError(t, err)
	assert.Equal(t, 1, resolver.placeCalls)
	assert.Equal(t, 1, resolver.coordCalls)
	assert.Equal(t, "Somewhere Province", snap.Region.Name)
}

func TestAnalyzePlace_NoResults(t *testing.T) {
	o := NewOrchestrator(NewStore(nil), &stubResolver{}, &stubSearcher{}, nil)

	_, err := o.AnalyzePlace(context.Background(), "xyzzy", 10)

	assert.Error(t, err)
}

// cannedGeocoder answers every reverse lookup with one place, for tests that
// wire a real resolver through the orchestrator.
type cannedGeocoder struct{ place *nominatim.Place }

func (g *cannedGeocoder) Reverse(context.Context, float64, float64, int) (*nominatim.Place, error) {
	return g.place, nil
}

func (g *cannedGeocoder) Search(context.Context, string) (*nominatim.Place, error) {
	return nil, nil
}

// slowWater holds its fetch until released, recording the context state the
// fetch observed.
type slowWater struct {
	release chan struct{}
	ctxErr  error
}

func (w *slowWater) Fetch(ctx context.Context, _ model.BBox) *geomjson.FeatureCollection {
	<-w.release
	w.ctxErr = ctx.Err()
	return &geomjson.FeatureCollection{Features: []*geomjson.Feature{{}}}
}

func TestAnalyzeCoordinate_WaterMaskSurvivesSelectionReturn(t *testing.T) {
	place := &nominatim.Place{
		DisplayName: "Venice",
		Address:     nominatim.Address{City: "Venice"},
		BoundingBox: []string{"45.4", "45.5", "12.2", "12.4"},
		GeoJSON:     json.RawMessage(`{"type":"Polygon","coordinates":[[[12.2,45.4],[12.4,45.4],[12.4,45.5],[12.2,45.5],[12.2,45.4]]]}`),
	}
	water := &slowWater{release: make(chan struct{})}
	resolver := resolve.NewResolver(&cannedGeocoder{place: place}, water)
	store := NewStore(nil)
	o := NewOrchestrator(store, resolver, &stubSearcher{}, nil)

	snap := o.AnalyzeCoordinate(context.Background(), model.Coordinate{Lat: 45.44, Lng: 12.34}, 10)
	require.Equal(t, "Venice", snap.Region.Name)
	assert.Nil(t, snap.WaterMask, "mask is still in flight when the selection returns")

	close(water.release)
	require.Eventually(t, func() bool {
		return store.Snapshot().WaterMask != nil
	}, 2*time.Second, 10*time.Millisecond, "in-flight mask must land after the selection returned")
	assert.NoError(t, water.ctxErr, "the mask fetch is detached from the selection's lifetime")
}

func TestStaleSelectionDoesNotClobberNewer(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	store := NewStore(nil)
	resolver := &stubResolver{
		coordFn: func(_ context.Context, c model.Coordinate, sink resolve.Sink) resolve.Result {
			if c.Lat == 1 { // selection A stalls until B has landed
				close(started)
				<-release
				return applyRect(sink, "A Town")
			}
			return applyRect(sink, "B City")
		},
	}
	o := NewOrchestrator(store, resolver, &stubSearcher{}, nil)

	done := make(chan Snapshot, 1)
	go func() {
		done <- o.AnalyzeCoordinate(context.Background(), model.Coordinate{Lat: 1}, 10)
	}()
	<-started

	snapB := o.AnalyzeCoordinate(context.Background(), model.Coordinate{Lat: 2}, 10)
	require.Equal(t, "B City", snapB.Region.Name)

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("selection A never finished")
	}

	snap := store.Snapshot()
	assert.Equal(t, "B City", snap.Region.Name, "A's late geometry was discarded")
	require.NotNil(t, snap.Geometry)
}
