package osmparser

import (
	"log"

	"github.com/saaj376/SafeTrace/pkg/datastructure"
)

// LargestConnectedComponent reduces the graph to its biggest strongly
// connected component. Fringe nodes outside it would snap fine but be
// unreachable from most of the network, so preprocessing drops them.
func LargestConnectedComponent(g *datastructure.Graph) (*datastructure.Graph, error) {
	n := g.NumNodes()

	radj := make([][]int32, n)
	for _, edge := range g.GetOutEdges() {
		radj[edge.ToNodeID] = append(radj[edge.ToNodeID], edge.FromNodeID)
	}

	// Kosaraju: forward postorder, then reverse-graph sweeps in reverse
	// postorder. Both passes iterative, road networks get deep.
	order := make([]int32, 0, n)
	visited := make([]bool, n)
	for start := int32(0); int(start) < n; start++ {
		if visited[start] {
			continue
		}
		stack := []int32{start}
		visited[start] = true
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			advanced := false
			for _, edgeID := range g.GetNodeFirstOutEdges(v) {
				to := g.GetOutEdge(edgeID).ToNodeID
				if !visited[to] {
					visited[to] = true
					stack = append(stack, to)
					advanced = true
					break
				}
			}
			if !advanced {
				order = append(order, v)
				stack = stack[:len(stack)-1]
			}
		}
	}

	component := make([]int32, n)
	for i := range component {
		component[i] = -1
	}
	componentSize := make([]int, 0)
	for i := len(order) - 1; i >= 0; i-- {
		start := order[i]
		if component[start] != -1 {
			continue
		}
		label := int32(len(componentSize))
		size := 0
		stack := []int32{start}
		component[start] = label
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++
			for _, from := range radj[v] {
				if component[from] == -1 {
					component[from] = label
					stack = append(stack, from)
				}
			}
		}
		componentSize = append(componentSize, size)
	}

	largest := int32(0)
	for label, size := range componentSize {
		if size > componentSize[largest] {
			largest = int32(label)
		}
	}
	log.Printf("strongly connected components: %d, keeping largest with %d nodes",
		len(componentSize), componentSize[largest])

	if componentSize[largest] == n {
		return g, nil
	}

	newID := make([]int32, n)
	nodes := make([]datastructure.Node, 0, componentSize[largest])
	for v := int32(0); int(v) < n; v++ {
		if component[v] != largest {
			newID[v] = -1
			continue
		}
		newID[v] = int32(len(nodes))
		old := g.GetNode(v)
		nodes = append(nodes, datastructure.NewNode(newID[v], old.Lat, old.Lon))
	}

	edges := make([]datastructure.Edge, 0)
	for _, edge := range g.GetOutEdges() {
		from, to := newID[edge.FromNodeID], newID[edge.ToNodeID]
		if from == -1 || to == -1 {
			continue
		}
		edges = append(edges, datastructure.NewEdge(int32(len(edges)), from, to,
			edge.TravelCost, edge.DistKm, edge.RoadClass))
	}

	return datastructure.NewGraph(nodes, edges, g.GetRoadClasses())
}
