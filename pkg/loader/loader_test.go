package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/go-rail-geo/pkg/geom"
)

const fixtureGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"station_name": "Ostrava hl.n.", "avg_delay": 5},
      "geometry": {"type": "Point", "coordinates": [18.2917, 49.8465]}
    },
    {
      "type": "Feature",
      "properties": {"station_name": "Frydlant n.O.", "avg_delay": 8},
      "geometry": {"type": "Point", "coordinates": [18.3582, 49.6645]}
    },
    {
      "type": "Feature",
      "properties": {"name": "Line 323", "description": "Ostrava - Valasske Mezirici"},
      "geometry": {"type": "LineString", "coordinates": [
        [18.2917, 49.8465], [18.3582, 49.6645], [18.3615, 49.5760], [18.2140, 49.5601]
      ]}
    }
  ]
}`

func TestParseGeoJSON(t *testing.T) {
	ds, err := ParseGeoJSON([]byte(fixtureGeoJSON))
	require.NoError(t, err)

	require.Len(t, ds.Stations, 2)
	assert.Equal(t, "Ostrava hl.n.", ds.Stations[0].Name)
	assert.Equal(t, 18.2917, ds.Stations[0].Location.Lon)
	assert.Equal(t, 49.8465, ds.Stations[0].Location.Lat)
	assert.Equal(t, 5.0, ds.Stations[0].AvgDelay)

	require.Len(t, ds.Lines, 1)
	assert.Equal(t, "Line 323", ds.Lines[0].Name)
	assert.Equal(t, "Ostrava - Valasske Mezirici", ds.Lines[0].Description)
	assert.Equal(t, 3, ds.Lines[0].Path.Segments())
}

func TestParseGeoJSONRejectsBadInput(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{
			name: "coordinate out of range",
			doc: `{"type":"FeatureCollection","features":[
				{"type":"Feature","properties":{"station_name":"X","avg_delay":1},
				 "geometry":{"type":"Point","coordinates":[181.0, 49.0]}}]}`,
		},
		{
			name: "missing station name",
			doc: `{"type":"FeatureCollection","features":[
				{"type":"Feature","properties":{"avg_delay":1},
				 "geometry":{"type":"Point","coordinates":[18.0, 49.0]}}]}`,
		},
		{
			name: "negative delay",
			doc: `{"type":"FeatureCollection","features":[
				{"type":"Feature","properties":{"station_name":"X","avg_delay":-2},
				 "geometry":{"type":"Point","coordinates":[18.0, 49.0]}}]}`,
		},
		{
			name: "single point linestring",
			doc: `{"type":"FeatureCollection","features":[
				{"type":"Feature","properties":{"name":"L"},
				 "geometry":{"type":"LineString","coordinates":[[18.0, 49.0]]}}]}`,
		},
		{
			name: "unsupported geometry",
			doc: `{"type":"FeatureCollection","features":[
				{"type":"Feature","properties":{},
				 "geometry":{"type":"Polygon","coordinates":[[[18.0,49.0],[18.1,49.0],[18.1,49.1],[18.0,49.0]]]}}]}`,
		},
		{
			name: "not json",
			doc:  `stations.csv`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseGeoJSON([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseGeoJSONSurfacesGeomErrors(t *testing.T) {
	doc := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"station_name":"X","avg_delay":1},
		 "geometry":{"type":"Point","coordinates":[18.0, 95.0]}}]}`

	_, err := ParseGeoJSON([]byte(doc))
	assert.ErrorIs(t, err, geom.ErrInvalidCoordinate)

	doc = `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"L"},
		 "geometry":{"type":"LineString","coordinates":[[18.0, 49.0]]}}]}`

	_, err = ParseGeoJSON([]byte(doc))
	assert.ErrorIs(t, err, geom.ErrInsufficientPoints)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ds, err := ParseGeoJSON([]byte(fixtureGeoJSON))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "railway.gob")
	require.NoError(t, SaveSnapshot(ds, path))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)

	require.Len(t, loaded.Stations, len(ds.Stations))
	for i := range ds.Stations {
		assert.Equal(t, ds.Stations[i].Name, loaded.Stations[i].Name)
		assert.Equal(t, ds.Stations[i].Location, loaded.Stations[i].Location)
		assert.Equal(t, ds.Stations[i].AvgDelay, loaded.Stations[i].AvgDelay)
	}

	require.Len(t, loaded.Lines, len(ds.Lines))
	assert.Equal(t, ds.Lines[0].Name, loaded.Lines[0].Name)
	assert.Equal(t, ds.Lines[0].Path.Points, loaded.Lines[0].Path.Points)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}
