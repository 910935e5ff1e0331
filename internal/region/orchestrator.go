package region

import (
	"context"

	"github.com/rotisserie/eris"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/terralens/terralens/internal/model"
	"github.com/terralens/terralens/internal/resolve"
	"github.com/terralens/terralens/pkg/nominatim"
)

// GeometryResolver is the region-geometry cascade dependency.
type GeometryResolver interface {
	ResolveCoordinate(ctx context.Context, c model.Coordinate, sink resolve.Sink) resolve.Result
	ResolvePlace(ctx context.Context, place *nominatim.Place, sink resolve.Sink) resolve.Result
}

// Searcher forward-geocodes a free-form place query.
type Searcher interface {
	Search(ctx context.Context, query string) (*nominatim.Place, error)
}

// MetricSource joins the environmental metric fan-out for a coordinate.
type MetricSource interface {
	FetchAll(ctx context.Context, c model.Coordinate) model.OverlayMetrics
}

// Orchestrator drives one analysis per user selection: it publishes the
// initial stub, runs geometry resolution and the metric fan-out in parallel,
// and lands every result in the Store under the selection's generation.
type Orchestrator struct {
	store    *Store
	resolver GeometryResolver
	searcher Searcher
	metrics  MetricSource
}

// NewOrchestrator wires an Orchestrator. searcher may equal the geocoder
// backing the resolver; metrics may be nil when no metric endpoints are
// configured.
func NewOrchestrator(store *Store, resolver GeometryResolver, searcher Searcher, metrics MetricSource) *Orchestrator {
	return &Orchestrator{
		store:    store,
		resolver: resolver,
		searcher: searcher,
		metrics:  metrics,
	}
}

// genSink binds the Store to one selection generation so the resolver's side
// effects are generation-checked without the resolver knowing about staleness.
type genSink struct {
	store *Store
	gen   uint64
}

func (s genSink) ApplyGeometry(fc *geomjson.FeatureCollection, name string) {
	s.store.ApplyGeometry(s.gen, fc, name)
}

func (s genSink) FitBounds(b model.BBox) {
	s.store.FitBounds(s.gen, b)
}

func (s genSink) ApplyWaterMask(fc *geomjson.FeatureCollection) {
	s.store.ApplyWaterMask(s.gen, fc)
}

// AnalyzeCoordinate analyzes a clicked or navigated-to coordinate. The raw
// coordinate is normalized, a stub is published synchronously, then geometry
// resolution and the metric fan-out run in parallel; neither waits on the
// other. mapZoom sizes the fallback highlight circle when no area resolves.
func (o *Orchestrator) AnalyzeCoordinate(ctx context.Context, raw model.Coordinate, mapZoom int) Snapshot {
	c := raw.Normalize()
	gen := o.store.Begin(c)
	o.run(ctx, gen, c, mapZoom, nil)
	return o.store.Snapshot()
}

// AnalyzePlace analyzes a free-form place query: forward-geocode, pan the
// camera to the hit, then analyze its coordinate with geometry seeded from
// the forward response. The reverse cascade still runs when the forward
// response carries no usable area.
func (o *Orchestrator) AnalyzePlace(ctx context.Context, query string, mapZoom int) (Snapshot, error) {
	place, err := o.searcher.Search(ctx, query)
	if err != nil {
		return Snapshot{}, eris.Wrapf(err, "region: search %q", query)
	}
	if place == nil {
		return Snapshot{}, eris.Errorf("region: no results for %q", query)
	}

	c, err := place.Coordinate()
	if err != nil {
		return Snapshot{}, eris.Wrapf(err, "region: bad coordinate for %q", query)
	}
	c = c.Normalize()

	gen := o.store.Begin(c)
	if b, err := place.BBox(); err == nil {
		o.store.FitBounds(gen, b)
	}
	o.run(ctx, gen, c, mapZoom, place)
	return o.store.Snapshot(), nil
}

// run executes the two independent legs of one selection. seed, when non-nil,
// is tried as the geometry source before the reverse cascade.
func (o *Orchestrator) run(ctx context.Context, gen uint64, c model.Coordinate, mapZoom int, seed *nominatim.Place) {
	sink := genSink{store: o.store, gen: gen}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result := resolve.Result{}
		if seed != nil {
			result = o.resolver.ResolvePlace(ctx, seed, sink)
		}
		if !result.Success {
			result = o.resolver.ResolveCoordinate(ctx, c, sink)
		}
		if !result.Success {
			o.store.SetHighlight(gen, model.HighlightCircle{
				Center:       c,
				RadiusMeters: model.HighlightRadiusForZoom(mapZoom),
			})
		}
		return nil
	})

	g.Go(func() error {
		if o.metrics == nil {
			return nil
		}
		o.store.PublishMetrics(gen, o.metrics.FetchAll(ctx, c))
		return nil
	})

	_ = g.Wait() // both legs degrade internally instead of returning errors
}
