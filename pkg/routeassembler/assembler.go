package routeassembler

import (
	"github.com/saaj376/SafeTrace/pkg/datastructure"
	"github.com/saaj376/SafeTrace/pkg/fusion"
	"github.com/saaj376/SafeTrace/pkg/geo"
	"github.com/saaj376/SafeTrace/pkg/server"
	"github.com/saaj376/SafeTrace/pkg/util"
)

// Segment is one traversed road segment of an assembled route.
type Segment struct {
	EdgeID     int32                    `json:"edge_id"`
	FromNodeID int32                    `json:"from_node_id"`
	ToNodeID   int32                    `json:"to_node_id"`
	From       datastructure.Coordinate `json:"from"`
	To         datastructure.Coordinate `json:"to"`
	RoadClass  string                   `json:"road_class"`
	DistanceKm float64                  `json:"distance_km"`
}

// Route is the client-facing result of a shortest path search: the ordered
// waypoint coordinates, their encoded polyline, the great-circle length of
// the walk and the weighting mode it was computed under.
type Route struct {
	Mode        string                     `json:"mode"`
	NodeIDs     []int32                    `json:"node_ids"`
	Coordinates []datastructure.Coordinate `json:"coordinates"`
	Polyline    string                     `json:"polyline"`
	DistanceKm  float64                    `json:"distance_km"`
	TotalCost   float64                    `json:"total_cost"`
	Segments    []Segment                  `json:"segments"`
}

type Assembler struct {
	graph *datastructure.Graph
}

func NewAssembler(graph *datastructure.Graph) *Assembler {
	return &Assembler{graph: graph}
}

// Assemble turns the node path returned by the routing algorithm into a
// Route. The node and edge paths must come from the same search: len(edges)
// must be len(nodes)-1 with matching endpoints.
func (a *Assembler) Assemble(nodePath []int32, edgePath []datastructure.Edge,
	totalCost float64, mode fusion.Mode) (Route, error) {

	if len(nodePath) == 0 {
		return Route{}, server.NewErrorf(server.ErrInternalServerError, "cannot assemble a route from an empty path")
	}
	if len(edgePath) != len(nodePath)-1 {
		return Route{}, server.NewErrorf(server.ErrInternalServerError,
			"path mismatch: %d nodes with %d edges", len(nodePath), len(edgePath))
	}

	coords := make([]datastructure.Coordinate, len(nodePath))
	for i, nodeID := range nodePath {
		coords[i] = a.graph.GetNode(nodeID).Coordinate()
	}

	segments := make([]Segment, 0, len(edgePath))
	for i, edge := range edgePath {
		if edge.FromNodeID != nodePath[i] || edge.ToNodeID != nodePath[i+1] {
			return Route{}, server.NewErrorf(server.ErrInternalServerError,
				"edge %d does not connect path nodes %d and %d", edge.EdgeID, nodePath[i], nodePath[i+1])
		}
		segments = append(segments, Segment{
			EdgeID:     edge.EdgeID,
			FromNodeID: edge.FromNodeID,
			ToNodeID:   edge.ToNodeID,
			From:       coords[i],
			To:         coords[i+1],
			RoadClass:  a.graph.GetRoadClassFromID(edge.RoadClass),
			DistanceKm: util.RoundFloat(geo.CalculateHaversineDistance(
				coords[i].Lat, coords[i].Lon, coords[i+1].Lat, coords[i+1].Lon), 5),
		})
	}

	return Route{
		Mode:        mode.String(),
		NodeIDs:     nodePath,
		Coordinates: coords,
		Polyline:    datastructure.CreatePolyline(coords),
		DistanceKm:  util.RoundFloat(geo.TotalDistance(coords), 5),
		TotalCost:   util.RoundFloat(totalCost, 3),
		Segments:    segments,
	}, nil
}
