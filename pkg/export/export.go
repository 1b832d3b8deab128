// Package export renders query results and reference data as GeoJSON
// suitable for web maps.
package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kass/go-rail-geo/pkg/geojson"
	"github.com/kass/go-rail-geo/pkg/models"
	"github.com/kass/go-rail-geo/pkg/proximity"
)

// StationsCollection builds a FeatureCollection of station points with
// their names and average delays as properties.
func StationsCollection(stations []*models.Station) geojson.FeatureCollection {
	fc := geojson.FeatureCollection{Type: "FeatureCollection"}
	for _, st := range stations {
		fc.Features = append(fc.Features, geojson.Feature{
			Type: "Feature",
			Properties: map[string]interface{}{
				"station_name": st.Name,
				"avg_delay":    st.AvgDelay,
			},
			Geometry: geojson.NewPoint(st.Location.Lon, st.Location.Lat),
		})
	}
	return fc
}

// LinesCollection builds a FeatureCollection of line paths.
func LinesCollection(lines []*models.Line) geojson.FeatureCollection {
	fc := geojson.FeatureCollection{Type: "FeatureCollection"}
	for _, ln := range lines {
		coords := make([][]float64, 0, len(ln.Path.Points))
		for _, p := range ln.Path.Points {
			coords = append(coords, []float64{p.Lon, p.Lat})
		}
		fc.Features = append(fc.Features, geojson.Feature{
			Type: "Feature",
			Properties: map[string]interface{}{
				"name":        ln.Name,
				"description": ln.Description,
			},
			Geometry: geojson.NewLineString(coords),
		})
	}
	return fc
}

// MatchesCollection builds a FeatureCollection of matched stations, each
// annotated with the matched line and the distance to it.
func MatchesCollection(matches []proximity.Match) geojson.FeatureCollection {
	fc := geojson.FeatureCollection{Type: "FeatureCollection"}
	for _, m := range matches {
		fc.Features = append(fc.Features, geojson.Feature{
			Type: "Feature",
			Properties: map[string]interface{}{
				"station_name":    m.Station.Name,
				"avg_delay":       m.Station.AvgDelay,
				"line":            m.Line.Name,
				"distance_meters": m.Meters,
			},
			Geometry: geojson.NewPoint(m.Station.Location.Lon, m.Station.Location.Lat),
		})
	}
	return fc
}

// WriteFile marshals the collection with indentation and writes it to the
// given path.
func WriteFile(fc geojson.FeatureCollection, filename string) error {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal feature collection: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("export: write %s: %w", filename, err)
	}
	return nil
}
