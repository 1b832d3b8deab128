package geojson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointRoundTrip(t *testing.T) {
	g := NewPoint(18.2917, 49.8465)

	raw, err := json.Marshal(g)
	require.NoError(t, err)

	var decoded Geometry
	require.NoError(t, json.Unmarshal(raw, &decoded))

	lon, lat, err := decoded.PointCoordinates()
	require.NoError(t, err)
	assert.Equal(t, 18.2917, lon)
	assert.Equal(t, 49.8465, lat)
}

func TestLineStringRoundTrip(t *testing.T) {
	coords := [][]float64{{18.2917, 49.8465}, {18.3582, 49.6645}}
	g := NewLineString(coords)

	raw, err := json.Marshal(g)
	require.NoError(t, err)

	var decoded Geometry
	require.NoError(t, json.Unmarshal(raw, &decoded))

	got, err := decoded.LineStringCoordinates()
	require.NoError(t, err)
	assert.Equal(t, coords, got)
}

func TestGeometryTypeMismatch(t *testing.T) {
	point := NewPoint(18.0, 49.0)
	_, err := point.LineStringCoordinates()
	assert.Error(t, err)

	line := NewLineString([][]float64{{18.0, 49.0}, {18.1, 49.1}})
	_, _, err = line.PointCoordinates()
	assert.Error(t, err)
}

func TestMalformedCoordinates(t *testing.T) {
	g := Geometry{Type: "Point", Coordinates: json.RawMessage(`[18.0]`)}
	_, _, err := g.PointCoordinates()
	assert.Error(t, err)

	g = Geometry{Type: "LineString", Coordinates: json.RawMessage(`[[18.0]]`)}
	_, err = g.LineStringCoordinates()
	assert.Error(t, err)
}
