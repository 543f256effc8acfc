package snap

import (
	"errors"
	"testing"

	"github.com/saaj376/SafeTrace/pkg/datastructure"

	"github.com/stretchr/testify/assert"
)

func newTestGraph(t *testing.T) *datastructure.Graph {
	t.Helper()
	nodes := []datastructure.Node{
		datastructure.NewNode(0, 13.0342, 80.2206),
		datastructure.NewNode(1, 13.0500, 80.2400),
		datastructure.NewNode(2, 13.0881, 80.2707),
	}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 0, 1, 120, 2.1, 0),
		datastructure.NewEdge(1, 1, 2, 240, 4.3, 0),
	}
	g, err := datastructure.NewGraph(nodes, edges, []string{"residential"})
	assert.NoError(t, err)
	return g
}

func TestSnapExactNodeCoordinate(t *testing.T) {
	rs := NewRoadSnapper(newTestGraph(t), 0)

	nodeID, dist, err := rs.SnapToRoadNetworkNode(13.0500, 80.2400)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), nodeID)
	assert.Equal(t, 0.0, dist)
}

func TestSnapNearbyCoordinate(t *testing.T) {
	rs := NewRoadSnapper(newTestGraph(t), 0)

	// ~120 m north of node 2.
	nodeID, dist, err := rs.SnapToRoadNetworkNode(13.0892, 80.2707)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), nodeID)
	assert.Greater(t, dist, 0.0)
	assert.Less(t, dist, 0.2)
}

func TestSnapBeyondThresholdFails(t *testing.T) {
	rs := NewRoadSnapper(newTestGraph(t), 2.0)

	// Bengaluru is ~290 km from the fixture nodes.
	_, _, err := rs.SnapToRoadNetworkNode(12.9716, 77.5946)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrSnapFailed))
}
