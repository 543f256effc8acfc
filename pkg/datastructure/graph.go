package datastructure

import (
	"fmt"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Lat: lat, Lon: lon}
}

// Node is a road-network intersection. Immutable once the graph is built.
type Node struct {
	ID  int32
	Lat float64
	Lon float64
}

func NewNode(id int32, lat, lon float64) Node {
	return Node{ID: id, Lat: lat, Lon: lon}
}

func (n Node) Coordinate() Coordinate {
	return Coordinate{Lat: n.Lat, Lon: n.Lon}
}

// Edge is a directed road segment. TravelCost is the base traversal cost in
// seconds, DistKm the segment length. RoadClass indexes the graph's
// road-class name table.
type Edge struct {
	EdgeID     int32
	FromNodeID int32
	ToNodeID   int32
	TravelCost float64
	DistKm     float64
	RoadClass  uint8
}

func NewEdge(edgeID, fromNodeID, toNodeID int32, travelCost, distKm float64, roadClass uint8) Edge {
	return Edge{
		EdgeID:     edgeID,
		FromNodeID: fromNodeID,
		ToNodeID:   toNodeID,
		TravelCost: travelCost,
		DistKm:     distKm,
		RoadClass:  roadClass,
	}
}

// Graph owns all nodes and edges of the road network. Adjacency is built
// once in NewGraph and never mutated afterwards, so a single *Graph is
// shared by reference across all concurrent route computations without
// locking.
type Graph struct {
	nodes         []Node
	edges         []Edge
	firstOutEdges [][]int32
	roadClasses   []string
}

// NewGraph validates the node/edge sets and builds the adjacency lists.
// Construction is atomic: callers either receive a fully-populated graph or
// an error, never a partially-initialized one.
func NewGraph(nodes []Node, edges []Edge, roadClasses []string) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("graph must contain at least one node")
	}
	for i, n := range nodes {
		if n.ID != int32(i) {
			return nil, fmt.Errorf("node at index %d has id %d, node ids must be dense", i, n.ID)
		}
	}

	firstOutEdges := make([][]int32, len(nodes))
	for i, e := range edges {
		if e.EdgeID != int32(i) {
			return nil, fmt.Errorf("edge at index %d has id %d, edge ids must be dense", i, e.EdgeID)
		}
		if e.FromNodeID < 0 || int(e.FromNodeID) >= len(nodes) {
			return nil, fmt.Errorf("edge %d references unknown from-node %d", e.EdgeID, e.FromNodeID)
		}
		if e.ToNodeID < 0 || int(e.ToNodeID) >= len(nodes) {
			return nil, fmt.Errorf("edge %d references unknown to-node %d", e.EdgeID, e.ToNodeID)
		}
		if e.TravelCost < 0 {
			return nil, fmt.Errorf("edge %d has negative base travel cost %f", e.EdgeID, e.TravelCost)
		}
		if int(e.RoadClass) >= len(roadClasses) && len(roadClasses) > 0 {
			return nil, fmt.Errorf("edge %d references unknown road class %d", e.EdgeID, e.RoadClass)
		}
		firstOutEdges[e.FromNodeID] = append(firstOutEdges[e.FromNodeID], e.EdgeID)
	}

	return &Graph{
		nodes:         nodes,
		edges:         edges,
		firstOutEdges: firstOutEdges,
		roadClasses:   roadClasses,
	}, nil
}

func (g *Graph) GetNode(nodeID int32) Node {
	return g.nodes[nodeID]
}

func (g *Graph) GetOutEdge(edgeID int32) Edge {
	return g.edges[edgeID]
}

// GetNodeFirstOutEdges returns the ids of the outgoing edges of nodeID. The
// returned slice is owned by the graph and must not be mutated.
func (g *Graph) GetNodeFirstOutEdges(nodeID int32) []int32 {
	return g.firstOutEdges[nodeID]
}

func (g *Graph) GetNodes() []Node {
	return g.nodes
}

func (g *Graph) GetOutEdges() []Edge {
	return g.edges
}

func (g *Graph) GetRoadClassFromID(roadClass uint8) string {
	if int(roadClass) >= len(g.roadClasses) {
		return ""
	}
	return g.roadClasses[roadClass]
}

func (g *Graph) GetRoadClasses() []string {
	return g.roadClasses
}

func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumEdges() int {
	return len(g.edges)
}
