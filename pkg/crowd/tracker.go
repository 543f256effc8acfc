package crowd

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/saaj376/SafeTrace/pkg/datastructure"

	"github.com/uber/h3-go/v4"
)

const (
	// DefaultRollingWindow bounds how long a visit counts toward density.
	DefaultRollingWindow = 30 * time.Minute

	// DefaultRefreshInterval is how often scores are recalculated.
	DefaultRefreshInterval = 60 * time.Second

	cellResolution = 9
)

// VisitStore is the persistence behind the tracker.
type VisitStore interface {
	RecordVisit(ctx context.Context, cell string, t time.Time) error
	CountVisitsSince(ctx context.Context, cutoff time.Time) (map[string]int, error)
	PruneBefore(ctx context.Context, cutoff time.Time) error
}

// Snapshot is an immutable view of normalized crowd scores at one refresh.
// Weight functions capture a snapshot, never the live tracker, so a route
// computation sees consistent densities end to end.
type Snapshot struct {
	scores   map[string]float64
	edgeCell []string
}

// Density returns the quantized level for an edge, Unknown when its cell
// has no recent visits.
func (s *Snapshot) Density(edgeID int32) Level {
	if s == nil || int(edgeID) >= len(s.edgeCell) {
		return Unknown
	}
	score, ok := s.scores[s.edgeCell[edgeID]]
	if !ok {
		return Unknown
	}
	return quantize(score)
}

// Tracker maintains rolling-window segment-visit counts and normalizes them
// against the busiest cell, the way the original crowd feed works: the most
// visited cell scores 1.0 and everything else scales under it.
type Tracker struct {
	store    VisitStore
	window   time.Duration
	edgeCell []string
	logger   *slog.Logger

	snapshot atomic.Pointer[Snapshot]
}

// NewTracker indexes every edge midpoint into an h3 cell and prepares an
// empty snapshot (all densities Unknown) until the first refresh.
func NewTracker(graph *datastructure.Graph, store VisitStore, window time.Duration, logger *slog.Logger) *Tracker {
	if window <= 0 {
		window = DefaultRollingWindow
	}

	edgeCell := make([]string, graph.NumEdges())
	for _, edge := range graph.GetOutEdges() {
		from := graph.GetNode(edge.FromNodeID)
		to := graph.GetNode(edge.ToNodeID)
		midLat := (from.Lat + to.Lat) / 2
		midLon := (from.Lon + to.Lon) / 2
		cell := h3.LatLngToCell(h3.NewLatLng(midLat, midLon), cellResolution)
		edgeCell[edge.EdgeID] = cell.String()
	}

	t := &Tracker{
		store:    store,
		window:   window,
		edgeCell: edgeCell,
		logger:   logger,
	}
	t.snapshot.Store(&Snapshot{scores: map[string]float64{}, edgeCell: edgeCell})
	return t
}

// RecordVisit registers a traveler position against the h3 cell covering it.
func (t *Tracker) RecordVisit(ctx context.Context, lat, lon float64) error {
	cell := h3.LatLngToCell(h3.NewLatLng(lat, lon), cellResolution)
	return t.store.RecordVisit(ctx, cell.String(), time.Now())
}

// Refresh recomputes normalized scores from the store and publishes a new
// snapshot.
func (t *Tracker) Refresh(ctx context.Context, now time.Time) error {
	cutoff := now.Add(-t.window)
	if err := t.store.PruneBefore(ctx, cutoff); err != nil {
		return err
	}

	counts, err := t.store.CountVisitsSince(ctx, cutoff)
	if err != nil {
		return err
	}

	scores := make(map[string]float64, len(counts))
	maxCount := 0
	for _, count := range counts {
		if count > maxCount {
			maxCount = count
		}
	}
	if maxCount > 0 {
		for cell, count := range counts {
			scores[cell] = float64(count) / float64(maxCount)
		}
	}

	t.snapshot.Store(&Snapshot{scores: scores, edgeCell: t.edgeCell})
	return nil
}

// Run refreshes scores on interval until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := t.Refresh(ctx, now); err != nil && ctx.Err() == nil {
				t.logger.Warn("crowd score refresh failed", "error", err)
			}
		}
	}
}

// Snapshot returns the current immutable score view.
func (t *Tracker) Snapshot() *Snapshot {
	return t.snapshot.Load()
}

// Density reports the level from the current snapshot.
func (t *Tracker) Density(edgeID int32) Level {
	return t.Snapshot().Density(edgeID)
}
