package snap

import (
	"errors"
	"fmt"

	"github.com/saaj376/SafeTrace/pkg/datastructure"
	"github.com/saaj376/SafeTrace/pkg/geo"

	"github.com/dhconnelly/rtreego"
)

const (
	// DefaultMaxSnapDistanceKm bounds how far from a query coordinate the
	// nearest graph node may lie before snapping is rejected.
	DefaultMaxSnapDistanceKm = 2.0

	rtreeMinChildren = 25
	rtreeMaxChildren = 50

	pointRectTolerance = 1e-6
)

var ErrSnapFailed = errors.New("no road network node within the snap radius")

type nodePoint struct {
	id   int32
	rect rtreego.Rect
	lat  float64
	lon  float64
}

func (p *nodePoint) Bounds() rtreego.Rect {
	return p.rect
}

// RoadSnapper maps an arbitrary coordinate to the nearest graph node via an
// R-tree over node coordinates. Built once at load time, read-only after.
type RoadSnapper struct {
	rtree         *rtreego.Rtree
	maxDistanceKm float64
}

// NewRoadSnapper indexes every node of the graph. maxDistanceKm <= 0 falls
// back to DefaultMaxSnapDistanceKm.
func NewRoadSnapper(graph *datastructure.Graph, maxDistanceKm float64) *RoadSnapper {
	if maxDistanceKm <= 0 {
		maxDistanceKm = DefaultMaxSnapDistanceKm
	}
	rt := rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren)
	for _, node := range graph.GetNodes() {
		point := rtreego.Point{node.Lat, node.Lon}
		rt.Insert(&nodePoint{
			id:   node.ID,
			rect: point.ToRect(pointRectTolerance),
			lat:  node.Lat,
			lon:  node.Lon,
		})
	}
	return &RoadSnapper{rtree: rt, maxDistanceKm: maxDistanceKm}
}

// SnapToRoadNetworkNode returns the nearest node id and its offset distance
// in km. ErrSnapFailed when the nearest node exceeds the snap radius.
func (rs *RoadSnapper) SnapToRoadNetworkNode(lat, lon float64) (int32, float64, error) {
	nearest := rs.rtree.NearestNeighbor(rtreego.Point{lat, lon})
	if nearest == nil {
		return 0, 0, ErrSnapFailed
	}

	node := nearest.(*nodePoint)
	dist := geo.CalculateHaversineDistance(lat, lon, node.lat, node.lon)
	if dist > rs.maxDistanceKm {
		return 0, 0, fmt.Errorf("nearest node is %.2f km away (max %.2f km): %w", dist, rs.maxDistanceKm, ErrSnapFailed)
	}
	return node.id, dist, nil
}
