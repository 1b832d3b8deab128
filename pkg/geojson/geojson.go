// Package geojson holds the minimal GeoJSON structures used to exchange
// station and line data: Point and LineString features in a
// FeatureCollection, coordinates as [lon, lat].
package geojson

import (
	"encoding/json"
	"fmt"
)

// FeatureCollection is the top-level GeoJSON document.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single geographic feature with geometry and free-form
// properties.
type Feature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   Geometry               `json:"geometry"`
}

// Geometry carries the geometry type and its raw coordinates. The
// coordinate shape depends on the type, so decoding is deferred to the
// typed accessors below.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// NewPoint builds a Point geometry from lon/lat.
func NewPoint(lon, lat float64) Geometry {
	raw, _ := json.Marshal([]float64{lon, lat})
	return Geometry{Type: "Point", Coordinates: raw}
}

// NewLineString builds a LineString geometry from [lon, lat] pairs.
func NewLineString(coords [][]float64) Geometry {
	raw, _ := json.Marshal(coords)
	return Geometry{Type: "LineString", Coordinates: raw}
}

// PointCoordinates decodes the geometry as a Point.
func (g Geometry) PointCoordinates() (lon, lat float64, err error) {
	if g.Type != "Point" {
		return 0, 0, fmt.Errorf("geojson: expected Point geometry, got %q", g.Type)
	}
	var coords []float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return 0, 0, fmt.Errorf("geojson: decode point coordinates: %w", err)
	}
	if len(coords) < 2 {
		return 0, 0, fmt.Errorf("geojson: point needs 2 coordinates, got %d", len(coords))
	}
	return coords[0], coords[1], nil
}

// LineStringCoordinates decodes the geometry as a LineString.
func (g Geometry) LineStringCoordinates() ([][]float64, error) {
	if g.Type != "LineString" {
		return nil, fmt.Errorf("geojson: expected LineString geometry, got %q", g.Type)
	}
	var coords [][]float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, fmt.Errorf("geojson: decode linestring coordinates: %w", err)
	}
	for i, c := range coords {
		if len(c) < 2 {
			return nil, fmt.Errorf("geojson: linestring position %d needs 2 coordinates, got %d", i, len(c))
		}
	}
	return coords, nil
}
