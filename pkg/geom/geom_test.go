package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoint(t *testing.T) {
	testCases := []struct {
		name    string
		lon     float64
		lat     float64
		wantErr bool
	}{
		{"valid", 18.2917, 49.8465, false},
		{"lon lower bound", -180, 0, false},
		{"lon upper bound", 180, 0, false},
		{"lat lower bound", 0, -90, false},
		{"lat upper bound", 0, 90, false},
		{"lon too small", -180.01, 0, true},
		{"lon too large", 180.01, 0, true},
		{"lat too small", 0, -90.01, true},
		{"lat too large", 0, 90.01, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPoint(tc.lon, tc.lat)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.lon, p.Lon)
			assert.Equal(t, tc.lat, p.Lat)
		})
	}
}

func TestNewPolyline(t *testing.T) {
	a := Point{Lon: 18.2917, Lat: 49.8465}
	b := Point{Lon: 18.3582, Lat: 49.6645}

	_, err := NewPolyline(nil)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	_, err = NewPolyline([]Point{a})
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	pl, err := NewPolyline([]Point{a, b})
	require.NoError(t, err)
	assert.Equal(t, 1, pl.Segments())
	assert.Equal(t, []Point{a, b}, pl.Points)
}

func TestNewPolylineCopiesInput(t *testing.T) {
	points := []Point{
		{Lon: 18.2917, Lat: 49.8465},
		{Lon: 18.3582, Lat: 49.6645},
	}
	pl, err := NewPolyline(points)
	require.NoError(t, err)

	// Mutating the caller's slice must not change the polyline
	points[0] = Point{Lon: 0, Lat: 0}
	assert.Equal(t, 18.2917, pl.Points[0].Lon)
}

func TestPolylineBounds(t *testing.T) {
	pl, err := NewPolyline([]Point{
		{Lon: 18.2917, Lat: 49.8465},
		{Lon: 18.3582, Lat: 49.6645},
		{Lon: 18.3615, Lat: 49.5760},
		{Lon: 18.2140, Lat: 49.5601},
	})
	require.NoError(t, err)

	bb := pl.Bounds()
	assert.Equal(t, 18.2140, bb.BottomLeft.Lon)
	assert.Equal(t, 49.5601, bb.BottomLeft.Lat)
	assert.Equal(t, 18.3615, bb.TopRight.Lon)
	assert.Equal(t, 49.8465, bb.TopRight.Lat)

	assert.True(t, bb.Contains(Point{Lon: 18.30, Lat: 49.70}))
	assert.False(t, bb.Contains(Point{Lon: 14.43, Lat: 50.08}))
}
