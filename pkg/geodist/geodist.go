// Package geodist computes real-world distances over WGS84 geometries.
//
// Two distance semantics are exposed and callers must choose explicitly:
// Haversine (metric, great-circle) and DegreeDistance (fast planar
// approximation in raw degrees, only meaningful for small extents).
package geodist

import (
	"errors"
	"fmt"
	"math"

	"github.com/kass/go-rail-geo/pkg/geom"
)

const earthRadiusMeters = 6371000.0

// ErrDegenerateGeometry is returned when a polyline with fewer than two
// points reaches the distance engine. Unreachable for polylines built
// through geom.NewPolyline.
var ErrDegenerateGeometry = errors.New("geodist: polyline has fewer than 2 points")

// Haversine returns the great-circle distance between two points in meters.
func Haversine(a, b geom.Point) float64 {
	lat1 := radians(a.Lat)
	lon1 := radians(a.Lon)
	lat2 := radians(b.Lat)
	lon2 := radians(b.Lon)

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

// DegreeDistance returns the planar Euclidean distance between two points
// in raw decimal degrees. Degrees are not linear in metric distance, so
// this is only valid as a cheap comparison key over small extents.
func DegreeDistance(a, b geom.Point) float64 {
	dLon := b.Lon - a.Lon
	dLat := b.Lat - a.Lat
	return math.Hypot(dLon, dLat)
}

// Length returns the metric length of the polyline: the sum of
// great-circle distances between consecutive points.
func Length(line geom.Polyline) (float64, error) {
	if len(line.Points) < 2 {
		return 0, fmt.Errorf("%w: got %d points", ErrDegenerateGeometry, len(line.Points))
	}
	var total float64
	for i := 1; i < len(line.Points); i++ {
		total += Haversine(line.Points[i-1], line.Points[i])
	}
	return total, nil
}

// PointToPolyline returns the minimum metric distance from p to the
// polyline: the smallest endpoint-clamped distance from p to any segment.
func PointToPolyline(p geom.Point, line geom.Polyline) (float64, error) {
	if len(line.Points) < 2 {
		return 0, fmt.Errorf("%w: got %d points", ErrDegenerateGeometry, len(line.Points))
	}
	min := math.Inf(1)
	for i := 1; i < len(line.Points); i++ {
		d := pointToSegment(p, line.Points[i-1], line.Points[i])
		if d < min {
			min = d
		}
	}
	return min, nil
}

// pointToSegment returns the shortest metric distance from p to the
// segment ab. The segment neighborhood is projected onto a local
// equirectangular plane around a, where the perpendicular projection
// parameter is clamped to [0, 1] so distances to the endpoints are used
// when the foot of the perpendicular falls outside the segment.
func pointToSegment(p, a, b geom.Point) float64 {
	cosLat := math.Cos(radians(a.Lat))

	ax := radians(a.Lon) * cosLat * earthRadiusMeters
	ay := radians(a.Lat) * earthRadiusMeters
	bx := radians(b.Lon) * cosLat * earthRadiusMeters
	by := radians(b.Lat) * earthRadiusMeters
	px := radians(p.Lon) * cosLat * earthRadiusMeters
	py := radians(p.Lat) * earthRadiusMeters

	dx := bx - ax
	dy := by - ay
	if dx == 0 && dy == 0 {
		// Coincident endpoints, the segment degenerates to a point
		return math.Hypot(px-ax, py-ay)
	}

	t := ((px-ax)*dx + (py-ay)*dy) / (dx*dx + dy*dy)
	switch {
	case t < 0:
		return math.Hypot(px-ax, py-ay)
	case t > 1:
		return math.Hypot(px-bx, py-by)
	}
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
