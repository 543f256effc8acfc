package service

import (
	"context"
	"errors"
	"time"

	"github.com/saaj376/SafeTrace/pkg/crowd"
	"github.com/saaj376/SafeTrace/pkg/datastructure"
	"github.com/saaj376/SafeTrace/pkg/engine/routingalgorithm"
	"github.com/saaj376/SafeTrace/pkg/fusion"
	"github.com/saaj376/SafeTrace/pkg/routeassembler"
	"github.com/saaj376/SafeTrace/pkg/server"
)

type Snapper interface {
	SnapToRoadNetworkNode(lat, lon float64) (int32, float64, error)
}

type RoutingAlgorithm interface {
	ShortestPath(ctx context.Context, from, to int32, weightFn fusion.WeightFunc) ([]int32, []datastructure.Edge, float64, error)
}

type WeightCalculator interface {
	Bind(mode fusion.Mode, at time.Time, densities crowd.Provider) fusion.WeightFunc
}

// DensitySource serves crowd levels and accepts visit reports. Snapshot
// pins the scores for the whole search, a refresh mid-search never changes
// weights under a running Dijkstra.
type DensitySource interface {
	Snapshot() *crowd.Snapshot
	RecordVisit(ctx context.Context, lat, lon float64) error
}

type RouteAssembler interface {
	Assemble(nodePath []int32, edgePath []datastructure.Edge, totalCost float64, mode fusion.Mode) (routeassembler.Route, error)
}

type RiskSource interface {
	Loaded() bool
	NumRecords() int
}

type HealthStatus struct {
	Status      string `json:"status"`
	GraphLoaded bool   `json:"graph_loaded"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
	RiskLoaded  bool   `json:"risk_loaded"`
	RiskRecords int    `json:"risk_records"`
}

type NavigationService struct {
	graph     *datastructure.Graph
	snapper   Snapper
	routing   RoutingAlgorithm
	calc      WeightCalculator
	densities DensitySource
	assembler RouteAssembler
	risk      RiskSource

	routeTimeout time.Duration
	now          func() time.Time
}

func NewNavigationService(graph *datastructure.Graph, snapper Snapper, routing RoutingAlgorithm,
	calc WeightCalculator, densities DensitySource, assembler RouteAssembler, risk RiskSource,
	routeTimeout time.Duration) *NavigationService {

	return &NavigationService{
		graph:        graph,
		snapper:      snapper,
		routing:      routing,
		calc:         calc,
		densities:    densities,
		assembler:    assembler,
		risk:         risk,
		routeTimeout: routeTimeout,
		now:          time.Now,
	}
}

func (uc *NavigationService) Ready() bool {
	return uc.graph != nil && uc.graph.NumNodes() > 0
}

func (uc *NavigationService) Health() HealthStatus {
	h := HealthStatus{
		GraphLoaded: uc.Ready(),
		RiskLoaded:  uc.risk.Loaded(),
		RiskRecords: uc.risk.NumRecords(),
	}
	if h.GraphLoaded {
		h.Status = "ok"
		h.Nodes = uc.graph.NumNodes()
		h.Edges = uc.graph.NumEdges()
	} else {
		h.Status = "loading"
	}
	return h
}

// PlanRoute snaps both endpoints, runs the safety-weighted shortest path
// under the route timeout and assembles the response.
func (uc *NavigationService) PlanRoute(ctx context.Context, from, to datastructure.Coordinate,
	mode fusion.Mode) (routeassembler.Route, error) {

	if !uc.Ready() {
		return routeassembler.Route{}, server.NewErrorf(server.ErrServiceUnavailable,
			"the road network is still loading, retry shortly")
	}

	ctx, cancel := context.WithTimeout(ctx, uc.routeTimeout)
	defer cancel()

	fromNode, _, err := uc.snapper.SnapToRoadNetworkNode(from.Lat, from.Lon)
	if err != nil {
		return routeassembler.Route{}, server.WrapErrorf(err, server.ErrNotFound,
			"start location (%f, %f) is not near any covered road", from.Lat, from.Lon)
	}
	toNode, _, err := uc.snapper.SnapToRoadNetworkNode(to.Lat, to.Lon)
	if err != nil {
		return routeassembler.Route{}, server.WrapErrorf(err, server.ErrNotFound,
			"destination (%f, %f) is not near any covered road", to.Lat, to.Lon)
	}

	weightFn := uc.calc.Bind(mode, uc.now(), uc.densities.Snapshot())

	nodePath, edgePath, cost, err := uc.routing.ShortestPath(ctx, fromNode, toNode, weightFn)
	switch {
	case errors.Is(err, routingalgorithm.ErrTimeout):
		return routeassembler.Route{}, server.WrapErrorf(err, server.ErrTimeout,
			"route computation did not finish within %s", uc.routeTimeout)
	case errors.Is(err, routingalgorithm.ErrPathNotFound):
		return routeassembler.Route{}, server.WrapErrorf(err, server.ErrNotFound,
			"no route connects the requested locations")
	case err != nil:
		return routeassembler.Route{}, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}

	route, err := uc.assembler.Assemble(nodePath, edgePath, cost, mode)
	if err != nil {
		return routeassembler.Route{}, err
	}
	return route, nil
}

// RecordVisit feeds one traveler position into the crowd tracker.
func (uc *NavigationService) RecordVisit(ctx context.Context, lat, lon float64) error {
	if err := uc.densities.RecordVisit(ctx, lat, lon); err != nil {
		return server.WrapErrorf(err, server.ErrInternalServerError, "recording visit")
	}
	return nil
}
