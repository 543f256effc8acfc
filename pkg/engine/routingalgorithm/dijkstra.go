package routingalgorithm

import (
	"context"
	"errors"

	"github.com/saaj376/SafeTrace/pkg/datastructure"
	"github.com/saaj376/SafeTrace/pkg/fusion"
	"github.com/saaj376/SafeTrace/pkg/util"
)

var (
	ErrPathNotFound = errors.New("no path found between the snapped nodes")
	ErrTimeout      = errors.New("route computation exceeded its deadline")
)

// ctxCheckInterval is how many settled nodes pass between context checks.
const ctxCheckInterval = 256

type cameFromPair struct {
	edge       datastructure.Edge
	prevNodeID int32
}

// RouteAlgorithm runs single-source shortest path searches over a shared
// immutable graph.
type RouteAlgorithm struct {
	graph *datastructure.Graph
}

func NewRouteAlgorithm(graph *datastructure.Graph) *RouteAlgorithm {
	return &RouteAlgorithm{graph: graph}
}

// ShortestPath is Dijkstra's algorithm with the weight function evaluated
// lazily per visited edge: the graph is never copied or re-weighted per
// request. Ties on accumulated cost settle in node-id order, so equal-cost
// inputs always produce the same path. Returns the node path, its edges and
// the total cost under weightFn.
func (rt *RouteAlgorithm) ShortestPath(ctx context.Context, from, to int32,
	weightFn fusion.WeightFunc) ([]int32, []datastructure.Edge, float64, error) {

	if from == to {
		return []int32{from}, []datastructure.Edge{}, 0, nil
	}

	pq := datastructure.NewMinHeap[int32]()
	dist := make(map[int32]float64)
	cameFrom := make(map[int32]cameFromPair)
	settled := make(map[int32]struct{})

	dist[from] = 0.0
	pq.Insert(datastructure.PriorityQueueNode[int32]{Rank: 0, Item: from})

	visitedCount := 0
	for pq.Size() > 0 {
		visitedCount++
		if visitedCount%ctxCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, nil, -1, ErrTimeout
			default:
			}
		}

		node, _ := pq.ExtractMin()
		if _, ok := settled[node.Item]; ok {
			continue
		}
		settled[node.Item] = struct{}{}

		if node.Item == to {
			nodePath, edgePath := rt.unwindPath(cameFrom, from, to)
			return nodePath, edgePath, node.Rank, nil
		}

		for _, arc := range rt.graph.GetNodeFirstOutEdges(node.Item) {
			edge := rt.graph.GetOutEdge(arc)
			toNID := edge.ToNodeID
			if _, ok := settled[toNID]; ok {
				continue
			}

			newCost := dist[node.Item] + weightFn(edge)
			oldCost, seen := dist[toNID]
			if !seen {
				dist[toNID] = newCost
				cameFrom[toNID] = cameFromPair{edge, node.Item}
				pq.Insert(datastructure.PriorityQueueNode[int32]{Rank: newCost, Item: toNID})
			} else if newCost < oldCost {
				dist[toNID] = newCost
				cameFrom[toNID] = cameFromPair{edge, node.Item}
				pq.DecreaseKey(datastructure.PriorityQueueNode[int32]{Rank: newCost, Item: toNID})
			}
		}
	}

	return nil, nil, -1, ErrPathNotFound
}

func (rt *RouteAlgorithm) unwindPath(cameFrom map[int32]cameFromPair, from, to int32) ([]int32, []datastructure.Edge) {
	nodePath := []int32{to}
	edgePath := []datastructure.Edge{}

	current := to
	for current != from {
		pair := cameFrom[current]
		edgePath = append(edgePath, pair.edge)
		current = pair.prevNodeID
		nodePath = append(nodePath, current)
	}

	return util.ReverseG(nodePath), util.ReverseG(edgePath)
}
