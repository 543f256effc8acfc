package service

import (
	"context"
	"testing"
	"time"

	"github.com/saaj376/SafeTrace/pkg/crowd"
	"github.com/saaj376/SafeTrace/pkg/datastructure"
	"github.com/saaj376/SafeTrace/pkg/engine/routingalgorithm"
	"github.com/saaj376/SafeTrace/pkg/environment"
	"github.com/saaj376/SafeTrace/pkg/fusion"
	"github.com/saaj376/SafeTrace/pkg/risk"
	"github.com/saaj376/SafeTrace/pkg/routeassembler"
	"github.com/saaj376/SafeTrace/pkg/server"
	"github.com/saaj376/SafeTrace/pkg/snap"

	"github.com/stretchr/testify/assert"
)

type noDensity struct{}

func (noDensity) Snapshot() *crowd.Snapshot { return nil }

func (noDensity) RecordVisit(context.Context, float64, float64) error { return nil }

// south-to-north chain through the city, plus one unreachable node
func chennaiGraph(t *testing.T) *datastructure.Graph {
	t.Helper()
	nodes := []datastructure.Node{
		datastructure.NewNode(0, 13.0342, 80.2206),
		datastructure.NewNode(1, 13.0500, 80.2400),
		datastructure.NewNode(2, 13.0700, 80.2600),
		datastructure.NewNode(3, 13.0881, 80.2707),
		datastructure.NewNode(4, 13.1100, 80.2900), // no edges
	}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 0, 1, 120, 2.8, 0),
		datastructure.NewEdge(1, 1, 0, 120, 2.8, 0),
		datastructure.NewEdge(2, 1, 2, 130, 3.1, 0),
		datastructure.NewEdge(3, 2, 1, 130, 3.1, 0),
		datastructure.NewEdge(4, 2, 3, 90, 2.3, 0),
		datastructure.NewEdge(5, 3, 2, 90, 2.3, 0),
	}
	g, err := datastructure.NewGraph(nodes, edges, []string{"primary"})
	assert.NoError(t, err)
	return g
}

func newTestService(t *testing.T) *NavigationService {
	t.Helper()
	g := chennaiGraph(t)
	calc := fusion.NewCalculator(g, risk.NewEmptyProvider(), environment.NewDefaultContext())
	return NewNavigationService(
		g,
		snap.NewRoadSnapper(g, 2.0),
		routingalgorithm.NewRouteAlgorithm(g),
		calc,
		noDensity{},
		routeassembler.NewAssembler(g),
		risk.NewEmptyProvider(),
		10*time.Second,
	)
}

func TestPlanRouteEndToEnd(t *testing.T) {
	svc := newTestService(t)

	route, err := svc.PlanRoute(context.Background(),
		datastructure.NewCoordinate(13.0342, 80.2206),
		datastructure.NewCoordinate(13.0881, 80.2707),
		fusion.ModeSafe)
	assert.NoError(t, err)

	assert.Equal(t, "safe", route.Mode)
	assert.Equal(t, []int32{0, 1, 2, 3}, route.NodeIDs)
	assert.NotEmpty(t, route.Polyline)
	assert.Greater(t, route.DistanceKm, 5.0)
	assert.Less(t, route.DistanceKm, 10.0)
	assert.Greater(t, route.TotalCost, 0.0)
	assert.Len(t, route.Segments, 3)
}

func TestPlanRouteSnapFailure(t *testing.T) {
	svc := newTestService(t)

	// Bengaluru, far outside the covered network
	_, err := svc.PlanRoute(context.Background(),
		datastructure.NewCoordinate(12.9716, 77.5946),
		datastructure.NewCoordinate(13.0881, 80.2707),
		fusion.ModeBalanced)
	assert.Error(t, err)
	assert.Equal(t, server.ErrNotFound, server.Code(err))
}

func TestPlanRouteUnreachableDestination(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.PlanRoute(context.Background(),
		datastructure.NewCoordinate(13.0342, 80.2206),
		datastructure.NewCoordinate(13.1100, 80.2900),
		fusion.ModeSafe)
	assert.Error(t, err)
	assert.Equal(t, server.ErrNotFound, server.Code(err))
}

type timeoutRouter struct{}

func (timeoutRouter) ShortestPath(context.Context, int32, int32, fusion.WeightFunc) ([]int32, []datastructure.Edge, float64, error) {
	return nil, nil, -1, routingalgorithm.ErrTimeout
}

func TestPlanRouteTimeoutMapsToTimeoutCode(t *testing.T) {
	g := chennaiGraph(t)
	calc := fusion.NewCalculator(g, risk.NewEmptyProvider(), environment.NewDefaultContext())
	svc := NewNavigationService(g, snap.NewRoadSnapper(g, 2.0), timeoutRouter{}, calc,
		noDensity{}, routeassembler.NewAssembler(g), risk.NewEmptyProvider(), time.Second)

	_, err := svc.PlanRoute(context.Background(),
		datastructure.NewCoordinate(13.0342, 80.2206),
		datastructure.NewCoordinate(13.0881, 80.2707),
		fusion.ModeSafe)
	assert.Error(t, err)
	assert.Equal(t, server.ErrTimeout, server.Code(err))
}

func TestPlanRouteBeforeGraphLoaded(t *testing.T) {
	svc := NewNavigationService(nil, nil, nil, nil, noDensity{}, nil, risk.NewEmptyProvider(), time.Second)

	assert.False(t, svc.Ready())
	_, err := svc.PlanRoute(context.Background(),
		datastructure.NewCoordinate(13.0342, 80.2206),
		datastructure.NewCoordinate(13.0881, 80.2707),
		fusion.ModeSafe)
	assert.Error(t, err)
	assert.Equal(t, server.ErrServiceUnavailable, server.Code(err))
}

func TestHealthReportsCounts(t *testing.T) {
	svc := newTestService(t)

	h := svc.Health()
	assert.Equal(t, "ok", h.Status)
	assert.True(t, h.GraphLoaded)
	assert.Equal(t, 5, h.Nodes)
	assert.Equal(t, 6, h.Edges)
	assert.False(t, h.RiskLoaded)
	assert.Equal(t, 0, h.RiskRecords)

	empty := NewNavigationService(nil, nil, nil, nil, noDensity{}, nil, risk.NewEmptyProvider(), time.Second)
	assert.Equal(t, "loading", empty.Health().Status)
}

func TestRecordVisitDelegates(t *testing.T) {
	svc := newTestService(t)
	assert.NoError(t, svc.RecordVisit(context.Background(), 13.05, 80.24))
}
