package routingalgorithm

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/saaj376/SafeTrace/pkg/crowd"
	"github.com/saaj376/SafeTrace/pkg/datastructure"
	"github.com/saaj376/SafeTrace/pkg/fusion"

	"github.com/stretchr/testify/assert"
)

func baseCostWeight(edge datastructure.Edge) float64 {
	return edge.TravelCost
}

/*
	      1
	A ----------- B
	|             |
	4             2
	|             |
	D ----------- C
	      1

plus a slow direct edge A-D with cost 7.
*/
func newSquareGraph(t *testing.T) *datastructure.Graph {
	t.Helper()
	nodes := []datastructure.Node{
		datastructure.NewNode(0, 13.0342, 80.2206), // A
		datastructure.NewNode(1, 13.0450, 80.2300), // B
		datastructure.NewNode(2, 13.0560, 80.2410), // C
		datastructure.NewNode(3, 13.0300, 80.2500), // D
	}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 0, 1, 1, 1.0, 0), // A->B
		datastructure.NewEdge(1, 1, 0, 1, 1.0, 0),
		datastructure.NewEdge(2, 1, 2, 2, 1.0, 0), // B->C
		datastructure.NewEdge(3, 2, 1, 2, 1.0, 0),
		datastructure.NewEdge(4, 2, 3, 1, 1.0, 0), // C->D
		datastructure.NewEdge(5, 3, 2, 1, 1.0, 0),
		datastructure.NewEdge(6, 0, 3, 7, 1.0, 0), // A->D direct, slow
		datastructure.NewEdge(7, 3, 0, 7, 1.0, 0),
	}
	g, err := datastructure.NewGraph(nodes, edges, []string{"residential"})
	assert.NoError(t, err)
	return g
}

func TestShortestPathPicksCheapestRoute(t *testing.T) {
	g := newSquareGraph(t)
	rt := NewRouteAlgorithm(g)

	path, edgePath, cost, err := rt.ShortestPath(context.Background(), 0, 3, baseCostWeight)
	assert.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2, 3}, path)
	assert.Equal(t, 4.0, cost)
	assert.Len(t, edgePath, 3)
	assert.Equal(t, int32(0), edgePath[0].FromNodeID)
	assert.Equal(t, int32(3), edgePath[2].ToNodeID)
}

func TestShortestPathSameNode(t *testing.T) {
	g := newSquareGraph(t)
	rt := NewRouteAlgorithm(g)

	path, edgePath, cost, err := rt.ShortestPath(context.Background(), 2, 2, baseCostWeight)
	assert.NoError(t, err)
	assert.Equal(t, []int32{2}, path)
	assert.Empty(t, edgePath)
	assert.Equal(t, 0.0, cost)
}

func TestShortestPathUnreachable(t *testing.T) {
	nodes := []datastructure.Node{
		datastructure.NewNode(0, 13.0, 80.2),
		datastructure.NewNode(1, 13.1, 80.3),
		datastructure.NewNode(2, 13.2, 80.4),
	}
	// 2 has no incoming edges.
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 0, 1, 1, 1.0, 0),
		datastructure.NewEdge(1, 1, 0, 1, 1.0, 0),
		datastructure.NewEdge(2, 2, 0, 1, 1.0, 0),
	}
	g, err := datastructure.NewGraph(nodes, edges, []string{"residential"})
	assert.NoError(t, err)

	rt := NewRouteAlgorithm(g)
	_, _, _, err = rt.ShortestPath(context.Background(), 0, 2, baseCostWeight)
	assert.True(t, errors.Is(err, ErrPathNotFound))
}

func TestShortestPathTimeout(t *testing.T) {
	// a long chain so the search runs past the context check interval
	n := 2 * ctxCheckInterval
	nodes := make([]datastructure.Node, n)
	edges := make([]datastructure.Edge, 0, n-1)
	for i := 0; i < n; i++ {
		nodes[i] = datastructure.NewNode(int32(i), 13.0+float64(i)*1e-4, 80.2)
		if i > 0 {
			edges = append(edges, datastructure.NewEdge(int32(i-1), int32(i-1), int32(i), 1, 0.01, 0))
		}
	}
	g, err := datastructure.NewGraph(nodes, edges, []string{"residential"})
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rt := NewRouteAlgorithm(g)
	_, _, _, err = rt.ShortestPath(ctx, 0, int32(n-1), baseCostWeight)
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestShortestPathDeterministicTieBreak(t *testing.T) {
	// diamond: 0->{1,2}->3 with identical costs on both branches
	nodes := []datastructure.Node{
		datastructure.NewNode(0, 13.00, 80.20),
		datastructure.NewNode(1, 13.01, 80.21),
		datastructure.NewNode(2, 13.01, 80.19),
		datastructure.NewNode(3, 13.02, 80.20),
	}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 0, 1, 5, 1.0, 0),
		datastructure.NewEdge(1, 0, 2, 5, 1.0, 0),
		datastructure.NewEdge(2, 1, 3, 5, 1.0, 0),
		datastructure.NewEdge(3, 2, 3, 5, 1.0, 0),
	}
	g, err := datastructure.NewGraph(nodes, edges, []string{"residential"})
	assert.NoError(t, err)

	rt := NewRouteAlgorithm(g)
	for i := 0; i < 20; i++ {
		path, _, cost, err := rt.ShortestPath(context.Background(), 0, 3, baseCostWeight)
		assert.NoError(t, err)
		assert.Equal(t, 10.0, cost)
		assert.Equal(t, []int32{0, 1, 3}, path, "equal-cost paths must settle through the lower node id")
	}
}

// bruteForceCost enumerates every simple path by depth-first search.
func bruteForceCost(g *datastructure.Graph, weightFn fusion.WeightFunc, from, to int32) float64 {
	best := math.Inf(1)
	visited := make([]bool, g.NumNodes())

	var dfs func(node int32, cost float64)
	dfs = func(node int32, cost float64) {
		if node == to {
			if cost < best {
				best = cost
			}
			return
		}
		visited[node] = true
		for _, arc := range g.GetNodeFirstOutEdges(node) {
			edge := g.GetOutEdge(arc)
			if !visited[edge.ToNodeID] {
				dfs(edge.ToNodeID, cost+weightFn(edge))
			}
		}
		visited[node] = false
	}
	dfs(from, 0)
	return best
}

func TestShortestPathMatchesBruteForce(t *testing.T) {
	// dense-ish synthetic graph, every pair checked against exhaustive search
	nodes := make([]datastructure.Node, 8)
	for i := range nodes {
		nodes[i] = datastructure.NewNode(int32(i), 13.0+float64(i)*0.01, 80.2)
	}
	type arc struct {
		from, to int32
		cost     float64
	}
	arcs := []arc{
		{0, 1, 4}, {1, 0, 4}, {0, 2, 9}, {2, 0, 9}, {1, 2, 3}, {2, 1, 3},
		{1, 3, 7}, {3, 1, 7}, {2, 4, 2}, {4, 2, 2}, {3, 4, 1}, {4, 3, 1},
		{3, 5, 5}, {5, 3, 5}, {4, 6, 8}, {6, 4, 8}, {5, 6, 2}, {6, 5, 2},
		{5, 7, 6}, {7, 5, 6}, {6, 7, 3}, {7, 6, 3}, {0, 4, 15}, {4, 0, 15},
	}
	edges := make([]datastructure.Edge, len(arcs))
	for i, a := range arcs {
		edges[i] = datastructure.NewEdge(int32(i), a.from, a.to, a.cost, 0.5, 0)
	}
	g, err := datastructure.NewGraph(nodes, edges, []string{"residential"})
	assert.NoError(t, err)

	rt := NewRouteAlgorithm(g)
	for from := int32(0); from < 8; from++ {
		for to := int32(0); to < 8; to++ {
			if from == to {
				continue
			}
			_, _, cost, err := rt.ShortestPath(context.Background(), from, to, baseCostWeight)
			assert.NoError(t, err)
			assert.InDelta(t, bruteForceCost(g, baseCostWeight, from, to), cost, 1e-9,
				"from=%d to=%d", from, to)
		}
	}
}

// --- safety-weighted fixture -------------------------------------------------

type fixtureRisk struct{ byNode map[int32]float64 }

func (f fixtureRisk) Score(nodeID int32, _ int) float64 {
	if s, ok := f.byNode[nodeID]; ok {
		return s
	}
	return 0
}

type fixtureEnv struct{}

func (fixtureEnv) Penalty(time.Time) (float64, float64) { return 1.0, 1.0 }

type fixtureCrowd struct{ byEdge map[int32]crowd.Level }

func (f fixtureCrowd) Density(edgeID int32) crowd.Level {
	if l, ok := f.byEdge[edgeID]; ok {
		return l
	}
	return crowd.Unknown
}

// Fixture: direct edge A->D is risky and quiet; the longer A->B->C->D runs
// along busy, low-risk streets.
//
//	base costs: A->D 100; A->B, B->C, C->D 40 each
//	risk: A=4, D=4, B=C=0
//	crowd: A->D low, every long-path edge high
//
// Under safe weights (sensitivity 0.8, crowd rewarded):
//	A->D   = 100 + 8*4 - 15*(1/3)          = 127
//	long   = (40+8*2-15) + (40-15) + (40+8*2-15) = 107  -> long path wins
// Under balanced weights (sensitivity 0.5, crowd ignored):
//	A->D   = 100 + 5*4 = 120
//	long   = (40+5*2) + 40 + (40+5*2)      = 140        -> direct wins
func newSafetyFixture(t *testing.T) (*datastructure.Graph, *fusion.Calculator, fixtureCrowd) {
	t.Helper()
	nodes := []datastructure.Node{
		datastructure.NewNode(0, 13.0342, 80.2206), // A
		datastructure.NewNode(1, 13.0450, 80.2300), // B
		datastructure.NewNode(2, 13.0560, 80.2410), // C
		datastructure.NewNode(3, 13.0881, 80.2707), // D
	}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 0, 3, 100, 6.5, 0), // A->D direct
		datastructure.NewEdge(1, 0, 1, 40, 1.6, 1),  // A->B
		datastructure.NewEdge(2, 1, 2, 40, 1.8, 1),  // B->C
		datastructure.NewEdge(3, 2, 3, 40, 4.6, 1),  // C->D
	}
	g, err := datastructure.NewGraph(nodes, edges, []string{"alley", "primary"})
	assert.NoError(t, err)

	riskTable := fixtureRisk{byNode: map[int32]float64{0: 4.0, 3: 4.0}}
	densities := fixtureCrowd{byEdge: map[int32]crowd.Level{
		0: crowd.Low,
		1: crowd.High,
		2: crowd.High,
		3: crowd.High,
	}}
	return g, fusion.NewCalculator(g, riskTable, fixtureEnv{}), densities
}

func TestSafeModeAvoidsRiskyDirectEdge(t *testing.T) {
	g, calc, densities := newSafetyFixture(t)
	rt := NewRouteAlgorithm(g)
	at := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	path, _, cost, err := rt.ShortestPath(context.Background(), 0, 3, calc.Bind(fusion.ModeSafe, at, densities))
	assert.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2, 3}, path)
	assert.InDelta(t, 107.0, cost, 1e-9)
}

func TestBalancedModeTakesDirectEdge(t *testing.T) {
	g, calc, densities := newSafetyFixture(t)
	rt := NewRouteAlgorithm(g)
	at := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	path, _, cost, err := rt.ShortestPath(context.Background(), 0, 3, calc.Bind(fusion.ModeBalanced, at, densities))
	assert.NoError(t, err)
	assert.Equal(t, []int32{0, 3}, path)
	assert.InDelta(t, 120.0, cost, 1e-9)
}

func TestReachabilityIsModeIndependent(t *testing.T) {
	g, calc, densities := newSafetyFixture(t)
	rt := NewRouteAlgorithm(g)
	at := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	for _, mode := range fusion.Modes() {
		_, _, _, err := rt.ShortestPath(context.Background(), 0, 3, calc.Bind(mode, at, densities))
		assert.NoError(t, err, "mode=%s", mode)
	}
}
