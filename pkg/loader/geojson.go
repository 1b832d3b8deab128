// Package loader builds validated station and line datasets from external
// sources: GeoJSON feature collections and gob snapshots. All geometry
// passes through the geom constructors, so queries only ever see data
// that satisfies the coordinate and polyline invariants.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kass/go-rail-geo/pkg/geojson"
	"github.com/kass/go-rail-geo/pkg/geom"
	"github.com/kass/go-rail-geo/pkg/models"
)

// ParseGeoJSON decodes a FeatureCollection into a dataset.
// Point features become stations (properties: station_name, avg_delay),
// LineString features become lines (properties: name, description).
func ParseGeoJSON(data []byte) (*models.Dataset, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("loader: decode feature collection: %w", err)
	}

	ds := &models.Dataset{}
	for i, f := range fc.Features {
		switch f.Geometry.Type {
		case "Point":
			st, err := stationFromFeature(f)
			if err != nil {
				return nil, fmt.Errorf("loader: feature %d: %w", i, err)
			}
			ds.Stations = append(ds.Stations, st)

		case "LineString":
			ln, err := lineFromFeature(f)
			if err != nil {
				return nil, fmt.Errorf("loader: feature %d: %w", i, err)
			}
			ds.Lines = append(ds.Lines, ln)

		default:
			return nil, fmt.Errorf("loader: feature %d: unsupported geometry type %q", i, f.Geometry.Type)
		}
	}
	return ds, nil
}

// LoadGeoJSONFile reads and parses a GeoJSON dataset file.
func LoadGeoJSONFile(filename string) (*models.Dataset, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", filename, err)
	}
	return ParseGeoJSON(data)
}

func stationFromFeature(f geojson.Feature) (*models.Station, error) {
	lon, lat, err := f.Geometry.PointCoordinates()
	if err != nil {
		return nil, err
	}
	loc, err := geom.NewPoint(lon, lat)
	if err != nil {
		return nil, err
	}

	name := stringProp(f.Properties, "station_name")
	if name == "" {
		return nil, fmt.Errorf("station at (%.4f, %.4f) has no station_name", lon, lat)
	}

	delay := floatProp(f.Properties, "avg_delay")
	if delay < 0 {
		return nil, fmt.Errorf("station %q: negative avg_delay %.2f", name, delay)
	}

	return &models.Station{Name: name, Location: loc, AvgDelay: delay}, nil
}

func lineFromFeature(f geojson.Feature) (*models.Line, error) {
	coords, err := f.Geometry.LineStringCoordinates()
	if err != nil {
		return nil, err
	}

	points := make([]geom.Point, 0, len(coords))
	for _, c := range coords {
		p, err := geom.NewPoint(c[0], c[1])
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	path, err := geom.NewPolyline(points)
	if err != nil {
		return nil, err
	}

	name := stringProp(f.Properties, "name")
	if name == "" {
		return nil, fmt.Errorf("line with %d points has no name", len(points))
	}

	return &models.Line{
		Name:        name,
		Description: stringProp(f.Properties, "description"),
		Path:        path,
	}, nil
}

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func floatProp(props map[string]interface{}, key string) float64 {
	if v, ok := props[key].(float64); ok {
		return v
	}
	return 0
}
