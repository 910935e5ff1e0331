// Package grid scores an area for development suitability by sampling
// environmental metrics over a lattice of cell centers.
package grid

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/terralens/terralens/internal/model"
	"github.com/terralens/terralens/internal/risk"
)

// Per-cell provider policy: each cell's fan-out gets a hard deadline, and
// cells are spaced out to stay under provider rate limits.
const (
	DefaultCellTimeout = 5 * time.Second
	DefaultCellDelay   = 500 * time.Millisecond
)

// MetricSource joins the metric fan-out for one coordinate.
type MetricSource interface {
	FetchAll(ctx context.Context, c model.Coordinate) model.OverlayMetrics
}

// Cell is one scored lattice point. Score and Habitability are nil/empty when
// any of the three signals stayed unknown for the cell.
type Cell struct {
	Row          int                  `json:"row"`
	Col          int                  `json:"col"`
	Center       model.Coordinate     `json:"center"`
	Metrics      model.OverlayMetrics `json:"metrics"`
	Score        *int                 `json:"score,omitempty"`
	Habitability risk.Habitability    `json:"habitability,omitempty"`
}

// Batch runs the lattice scan.
type Batch struct {
	metrics     MetricSource
	rows, cols  int
	cellTimeout time.Duration
	cellDelay   time.Duration
	weights     risk.Weights
}

// Option configures a Batch.
type Option func(*Batch)

// WithCellTimeout overrides the per-cell fetch deadline.
func WithCellTimeout(d time.Duration) Option {
	return func(b *Batch) { b.cellTimeout = d }
}

// WithCellDelay overrides the pause between cells.
func WithCellDelay(d time.Duration) Option {
	return func(b *Batch) { b.cellDelay = d }
}

// WithWeights overrides the urban scoring weights for the scan.
func WithWeights(w risk.Weights) Option {
	return func(b *Batch) { b.weights = w }
}

// NewBatch creates a rows×cols Batch over the given metric source.
func NewBatch(metrics MetricSource, rows, cols int, opts ...Option) *Batch {
	b := &Batch{
		metrics:     metrics,
		rows:        rows,
		cols:        cols,
		cellTimeout: DefaultCellTimeout,
		cellDelay:   DefaultCellDelay,
		weights:     risk.DefaultWeights(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run scans the bounding box row-major, one cell at a time. Cancelling ctx
// stops the scan and returns the cells completed so far alongside the error.
func (b *Batch) Run(ctx context.Context, bbox model.BBox) ([]Cell, error) {
	if b.rows < 1 || b.cols < 1 {
		return nil, eris.Errorf("grid: invalid dimensions %dx%d", b.rows, b.cols)
	}

	scanID := uuid.NewString()
	zap.L().Info("grid: scan started",
		zap.String("scan_id", scanID),
		zap.Int("rows", b.rows), zap.Int("cols", b.cols))

	cells := make([]Cell, 0, b.rows*b.cols)
	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.cols; col++ {
			if err := ctx.Err(); err != nil {
				return cells, eris.Wrap(err, "grid: scan aborted")
			}

			cell := b.scoreCell(ctx, bbox, row, col)
			cells = append(cells, cell)

			if b.cellDelay > 0 && len(cells) < b.rows*b.cols {
				select {
				case <-time.After(b.cellDelay):
				case <-ctx.Done():
					return cells, eris.Wrap(ctx.Err(), "grid: scan aborted")
				}
			}
		}
	}

	zap.L().Info("grid: scan finished",
		zap.String("scan_id", scanID), zap.Int("cells", len(cells)))
	return cells, nil
}

func (b *Batch) scoreCell(ctx context.Context, bbox model.BBox, row, col int) Cell {
	cell := Cell{Row: row, Col: col, Center: b.cellCenter(bbox, row, col)}

	cctx, cancel := context.WithTimeout(ctx, b.cellTimeout)
	defer cancel()
	cell.Metrics = b.metrics.FetchAll(cctx, cell.Center)

	m := cell.Metrics
	if m.Temperature == nil || m.AirQuality == nil || m.FloodRisk == nil {
		zap.L().Debug("grid: cell left unscored",
			zap.Int("row", row), zap.Int("col", col))
		return cell
	}
	score := b.weights.UrbanScore(*m.Temperature, *m.AirQuality, *m.FloodRisk)
	cell.Score = &score
	cell.Habitability = risk.ClassifyHabitability(score)
	return cell
}

// cellCenter places row 0 at the northern edge, column 0 at the western edge.
func (b *Batch) cellCenter(bbox model.BBox, row, col int) model.Coordinate {
	latStep := (bbox.North - bbox.South) / float64(b.rows)
	lngStep := (bbox.East - bbox.West) / float64(b.cols)
	return model.Coordinate{
		Lat: bbox.North - (float64(row)+0.5)*latStep,
		Lng: bbox.West + (float64(col)+0.5)*lngStep,
	}.Normalize()
}
