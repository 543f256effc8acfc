package geo

import (
	"testing"

	"github.com/saaj376/SafeTrace/pkg/datastructure"

	"github.com/stretchr/testify/assert"
)

func TestCalculateHaversineDistance(t *testing.T) {
	// Chennai Central to Chennai Egmore, roughly 1.4 km apart.
	dist := CalculateHaversineDistance(13.0827, 80.2757, 13.0732, 80.2609)

	assert.InDelta(t, 1.9, dist, 0.3)
	assert.Equal(t, 0.0, CalculateHaversineDistance(13.0827, 80.2757, 13.0827, 80.2757))
}

func TestPointLinePerpendicularDistanceOnSegment(t *testing.T) {
	segStart := datastructure.NewCoordinate(13.0000, 80.2000)
	segEnd := datastructure.NewCoordinate(13.0000, 80.2200)

	// A point exactly on the segment has zero perpendicular distance.
	onSegment := datastructure.NewCoordinate(13.0000, 80.2100)
	assert.InDelta(t, 0.0, PointLinePerpendicularDistance(segStart, segEnd, onSegment), 0.5)

	// 0.001 degrees of latitude is roughly 111 m.
	offSegment := datastructure.NewCoordinate(13.0010, 80.2100)
	assert.InDelta(t, 111.0, PointLinePerpendicularDistance(segStart, segEnd, offSegment), 5.0)
}

func TestMinDistanceToPolyline(t *testing.T) {
	polyline := []datastructure.Coordinate{
		{Lat: 13.0000, Lon: 80.2000},
		{Lat: 13.0000, Lon: 80.2100},
		{Lat: 13.0050, Lon: 80.2200},
	}

	assert.InDelta(t, 0.0, MinDistanceToPolyline(datastructure.NewCoordinate(13.0000, 80.2050), polyline), 0.5)

	far := datastructure.NewCoordinate(13.0100, 80.2050)
	assert.Greater(t, MinDistanceToPolyline(far, polyline), 1000.0)
}

func TestTotalDistance(t *testing.T) {
	path := []datastructure.Coordinate{
		{Lat: 13.0000, Lon: 80.2000},
		{Lat: 13.0100, Lon: 80.2000},
		{Lat: 13.0100, Lon: 80.2100},
	}

	sum := CalculateHaversineDistance(13.0000, 80.2000, 13.0100, 80.2000) +
		CalculateHaversineDistance(13.0100, 80.2000, 13.0100, 80.2100)
	assert.InDelta(t, sum, TotalDistance(path), 1e-9)

	assert.Equal(t, 0.0, TotalDistance(nil))
	assert.Equal(t, 0.0, TotalDistance(path[:1]))
}
