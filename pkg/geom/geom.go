// Package geom provides the geographic value types shared by the distance
// engine and the proximity queries: WGS84 points and polylines.
// Values are validated at construction and treated as read-only afterwards.
package geom

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCoordinate is returned when a longitude or latitude is
	// outside the valid WGS84 range.
	ErrInvalidCoordinate = errors.New("geom: coordinate out of range")

	// ErrInsufficientPoints is returned when a polyline is built from
	// fewer than two points.
	ErrInsufficientPoints = errors.New("geom: polyline requires at least 2 points")
)

// Point is a geographic coordinate in decimal degrees (WGS84).
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// NewPoint validates and builds a Point.
// Longitude must be in [-180, 180], latitude in [-90, 90].
func NewPoint(lon, lat float64) (Point, error) {
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return Point{}, fmt.Errorf("%w: (%.6f, %.6f)", ErrInvalidCoordinate, lon, lat)
	}
	return Point{Lon: lon, Lat: lat}, nil
}

// Polyline is an ordered sequence of at least two points forming a
// connected path. Ordering defines the shape of the path.
type Polyline struct {
	Points []Point `json:"points"`
}

// NewPolyline validates and builds a Polyline from the given points.
func NewPolyline(points []Point) (Polyline, error) {
	if len(points) < 2 {
		return Polyline{}, fmt.Errorf("%w: got %d", ErrInsufficientPoints, len(points))
	}
	pts := make([]Point, len(points))
	copy(pts, points)
	return Polyline{Points: pts}, nil
}

// Segments returns the number of segments in the polyline.
func (pl Polyline) Segments() int {
	if len(pl.Points) < 2 {
		return 0
	}
	return len(pl.Points) - 1
}

// BoundingBox is a rectangular area defined by two corners.
type BoundingBox struct {
	BottomLeft Point
	TopRight   Point
}

// Bounds returns the axis-aligned bounding box of the polyline.
func (pl Polyline) Bounds() BoundingBox {
	if len(pl.Points) == 0 {
		return BoundingBox{}
	}
	bb := BoundingBox{BottomLeft: pl.Points[0], TopRight: pl.Points[0]}
	for _, p := range pl.Points[1:] {
		if p.Lon < bb.BottomLeft.Lon {
			bb.BottomLeft.Lon = p.Lon
		}
		if p.Lat < bb.BottomLeft.Lat {
			bb.BottomLeft.Lat = p.Lat
		}
		if p.Lon > bb.TopRight.Lon {
			bb.TopRight.Lon = p.Lon
		}
		if p.Lat > bb.TopRight.Lat {
			bb.TopRight.Lat = p.Lat
		}
	}
	return bb
}

// Contains reports whether the point lies inside the box (inclusive).
func (bb BoundingBox) Contains(p Point) bool {
	return p.Lat >= bb.BottomLeft.Lat && p.Lat <= bb.TopRight.Lat &&
		p.Lon >= bb.BottomLeft.Lon && p.Lon <= bb.TopRight.Lon
}
