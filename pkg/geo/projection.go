package geo

import (
	"math"

	"github.com/saaj376/SafeTrace/pkg/datastructure"

	"github.com/golang/geo/s2"
)

// ProjectPointToLineCoord projects p onto the segment (segStart, segEnd) and
// returns the closest point on the segment.
func ProjectPointToLineCoord(segStart, segEnd, p datastructure.Coordinate) datastructure.Coordinate {
	segStartS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(segStart.Lat, segStart.Lon))
	segEndS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(segEnd.Lat, segEnd.Lon))
	pS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
	projection := s2.Project(pS2, segStartS2, segEndS2)
	projectLatLng := s2.LatLngFromPoint(projection)
	return datastructure.Coordinate{Lat: projectLatLng.Lat.Degrees(), Lon: projectLatLng.Lng.Degrees()}
}

// PointLinePerpendicularDistance returns the distance in meters from p to
// the segment (segStart, segEnd).
func PointLinePerpendicularDistance(segStart, segEnd, p datastructure.Coordinate) float64 {
	proj := ProjectPointToLineCoord(segStart, segEnd, p)
	return CalculateHaversineDistance(proj.Lat, proj.Lon, p.Lat, p.Lon) * 1000.0
}

// MinDistanceToPolyline returns the minimum distance in meters from p to the
// polyline. A polyline with a single point degenerates to point distance.
func MinDistanceToPolyline(p datastructure.Coordinate, polyline []datastructure.Coordinate) float64 {
	if len(polyline) == 0 {
		return math.Inf(1)
	}
	if len(polyline) == 1 {
		return CalculateHaversineDistance(p.Lat, p.Lon, polyline[0].Lat, polyline[0].Lon) * 1000.0
	}

	minDist := math.Inf(1)
	for i := 0; i < len(polyline)-1; i++ {
		dist := PointLinePerpendicularDistance(polyline[i], polyline[i+1], p)
		if dist < minDist {
			minDist = dist
		}
	}
	return minDist
}

// TotalDistance sums the haversine distances between consecutive waypoints,
// in km.
func TotalDistance(path []datastructure.Coordinate) float64 {
	total := 0.0
	for i := 0; i < len(path)-1; i++ {
		total += CalculateHaversineDistance(path[i].Lat, path[i].Lon, path[i+1].Lat, path[i+1].Lon)
	}
	return total
}
