package monitor

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/saaj376/SafeTrace/pkg/datastructure"
	"github.com/saaj376/SafeTrace/pkg/fusion"
	"github.com/saaj376/SafeTrace/pkg/routeassembler"
	"github.com/saaj376/SafeTrace/pkg/server"
)

// PathPlanner computes a route between two coordinates. Implemented by the
// navigation service; the coordinator never reaches into the graph itself.
type PathPlanner interface {
	PlanRoute(ctx context.Context, from, to datastructure.Coordinate, mode fusion.Mode) (routeassembler.Route, error)
}

// RerouteCoordinator replans a tracked journey from its current position to
// the original destination. Planning runs without holding the journey lock;
// when several reroutes for the same journey race, the latest requested one
// wins and stale results are discarded.
type RerouteCoordinator struct {
	monitor *Monitor
	planner PathPlanner
	logger  *slog.Logger
	seq     atomic.Uint64
}

func NewRerouteCoordinator(monitor *Monitor, planner PathPlanner, logger *slog.Logger) *RerouteCoordinator {
	return &RerouteCoordinator{monitor: monitor, planner: planner, logger: logger}
}

// Reroute plans a fresh route from (lat, lon) to the journey's destination
// and installs it. The returned bool is false when a newer reroute finished
// first and this result was dropped.
func (rc *RerouteCoordinator) Reroute(ctx context.Context, journeyID string, lat, lon float64) (routeassembler.Route, bool, error) {
	j, err := rc.monitor.Get(journeyID)
	if err != nil {
		return routeassembler.Route{}, false, err
	}

	j.mu.Lock()
	if j.state.Terminal() {
		j.mu.Unlock()
		return routeassembler.Route{}, false, server.NewErrorf(server.ErrConflict,
			"journey %s already ended in state %s", journeyID, j.state)
	}
	dest := j.route.Coordinates[len(j.route.Coordinates)-1]
	mode := j.Mode
	j.mu.Unlock()

	seq := rc.seq.Add(1)
	route, err := rc.planner.PlanRoute(ctx, datastructure.NewCoordinate(lat, lon), dest, mode)
	if err != nil {
		return routeassembler.Route{}, false, server.WrapErrorf(err, server.Code(err),
			"reroute for journey %s failed", journeyID)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state.Terminal() {
		return routeassembler.Route{}, false, server.NewErrorf(server.ErrConflict,
			"journey %s ended while rerouting", journeyID)
	}
	if seq < j.routeSeq {
		rc.logger.Info("reroute superseded", slog.String("journey_id", journeyID))
		return j.route, false, nil
	}
	j.routeSeq = seq
	j.route = route
	j.progressIdx = 0
	j.state = StateActive

	rc.logger.Info("journey rerouted", slog.String("journey_id", journeyID),
		slog.Float64("distance_km", route.DistanceKm))
	return route, true, nil
}
