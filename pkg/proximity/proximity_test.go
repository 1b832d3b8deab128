package proximity

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/go-rail-geo/pkg/geodist"
	"github.com/kass/go-rail-geo/pkg/geom"
	"github.com/kass/go-rail-geo/pkg/models"
)

func station(t *testing.T, name string, lon, lat, delay float64) *models.Station {
	t.Helper()
	loc, err := geom.NewPoint(lon, lat)
	require.NoError(t, err)
	return &models.Station{Name: name, Location: loc, AvgDelay: delay}
}

func line(t *testing.T, name string, coords [][2]float64) *models.Line {
	t.Helper()
	points := make([]geom.Point, 0, len(coords))
	for _, c := range coords {
		p, err := geom.NewPoint(c[0], c[1])
		require.NoError(t, err)
		points = append(points, p)
	}
	path, err := geom.NewPolyline(points)
	require.NoError(t, err)
	return &models.Line{Name: name, Path: path}
}

// line323Fixture is the Moravian-Silesian test scenario: four stations
// sitting on the vertices of line 323, plus a distant station in Prague.
func line323Fixture(t *testing.T) ([]*models.Station, []*models.Line) {
	t.Helper()
	stations := []*models.Station{
		station(t, "Ostrava hl.n.", 18.2917, 49.8465, 5),
		station(t, "Frydlant n.O.", 18.3582, 49.6645, 8),
		station(t, "Celadna", 18.3615, 49.5760, 3),
		station(t, "Frenstat p.R.", 18.2140, 49.5601, 10),
		station(t, "Praha hl.n.", 14.4356, 50.0833, 4),
	}
	lines := []*models.Line{
		line(t, "Line 323", [][2]float64{
			{18.2917, 49.8465},
			{18.3582, 49.6645},
			{18.3615, 49.5760},
			{18.2140, 49.5601},
		}),
	}
	return stations, lines
}

func TestWithinDistance(t *testing.T) {
	stations, lines := line323Fixture(t)

	matches, err := WithinDistance(stations, lines, 1000)
	require.NoError(t, err)

	// The four vertex stations match at distance 0; Prague does not
	assert.Len(t, matches, 4)
	matched := make(map[string]bool)
	for _, m := range matches {
		matched[m.Station.Name] = true
		assert.Equal(t, "Line 323", m.Line.Name)
		assert.LessOrEqual(t, m.Meters, 1000.0)
	}
	assert.True(t, matched["Ostrava hl.n."])
	assert.True(t, matched["Frydlant n.O."])
	assert.True(t, matched["Celadna"])
	assert.True(t, matched["Frenstat p.R."])
	assert.False(t, matched["Praha hl.n."])
}

func TestWithinDistanceZeroThreshold(t *testing.T) {
	stations, lines := line323Fixture(t)

	// Threshold 0 keeps only stations lying exactly on the line
	matches, err := WithinDistance(stations, lines, 0)
	require.NoError(t, err)
	assert.Len(t, matches, 4)
	for _, m := range matches {
		assert.InDelta(t, 0, m.Meters, 1e-6)
	}
}

func TestWithinDistanceDeterministicOrder(t *testing.T) {
	stations, lines := line323Fixture(t)

	first, err := WithinDistance(stations, lines, 1000)
	require.NoError(t, err)

	// All four matches are at distance 0, so ordering falls back to the
	// station-name tie-break; repeated runs must agree despite the
	// worker fan-out.
	expected := []string{"Celadna", "Frenstat p.R.", "Frydlant n.O.", "Ostrava hl.n."}
	for i, m := range first {
		assert.Equal(t, expected[i], m.Station.Name)
	}

	for run := 0; run < 10; run++ {
		again, err := WithinDistance(stations, lines, 1000)
		require.NoError(t, err)
		require.Len(t, again, len(first))
		for i := range first {
			assert.Equal(t, first[i].Station.Name, again[i].Station.Name)
			assert.Equal(t, first[i].Line.Name, again[i].Line.Name)
			assert.Equal(t, first[i].Meters, again[i].Meters)
		}
	}
}

func TestWithinDistanceEmptyInputs(t *testing.T) {
	stations, lines := line323Fixture(t)

	matches, err := WithinDistance(nil, lines, 1000)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = WithinDistance(stations, nil, 1000)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestWithinDistanceNegativeThreshold(t *testing.T) {
	stations, lines := line323Fixture(t)
	_, err := WithinDistance(stations, lines, -1)
	assert.Error(t, err)
}

func TestWithinDistanceMatchesSerialScan(t *testing.T) {
	// The parallel fan-out must produce exactly the pairs a plain nested
	// loop over the distance engine finds.
	r := rand.New(rand.NewSource(99))
	var stations []*models.Station
	for i := 0; i < 500; i++ {
		stations = append(stations, station(t,
			fmt.Sprintf("st_%03d", i),
			18.0+r.Float64()*0.5,
			49.5+r.Float64()*0.5,
			r.Float64()*15,
		))
	}
	_, lines := line323Fixture(t)

	const threshold = 5000.0
	matches, err := WithinDistance(stations, lines, threshold)
	require.NoError(t, err)

	want := 0
	for _, st := range stations {
		for _, ln := range lines {
			d, err := geodist.PointToPolyline(st.Location, ln.Path)
			require.NoError(t, err)
			if d <= threshold {
				want++
			}
		}
	}
	assert.Len(t, matches, want)
}

func TestNearestStation(t *testing.T) {
	stations, _ := line323Fixture(t)

	query, err := geom.NewPoint(18.30, 49.70)
	require.NoError(t, err)

	nearest, err := NearestStation(stations, query)
	require.NoError(t, err)
	assert.Equal(t, "Frydlant n.O.", nearest.Name)
}

func TestNearestStationEmptyInput(t *testing.T) {
	query, err := geom.NewPoint(18.30, 49.70)
	require.NoError(t, err)

	_, err = NearestStation(nil, query)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestNearestStationTieKeepsFirst(t *testing.T) {
	first := station(t, "First", 18.30, 49.70, 1)
	second := station(t, "Second", 18.30, 49.70, 2)

	query, err := geom.NewPoint(18.35, 49.75)
	require.NoError(t, err)

	nearest, err := NearestStation([]*models.Station{first, second}, query)
	require.NoError(t, err)
	assert.Equal(t, "First", nearest.Name)
}

func TestAverageDelayAlong(t *testing.T) {
	stations, lines := line323Fixture(t)

	avg, err := AverageDelayAlong(lines[0], stations, 1000)
	require.NoError(t, err)
	// (5 + 8 + 3 + 10) / 4, Prague is out of range
	assert.InDelta(t, 6.5, avg, 1e-9)
}

func TestAverageDelayAlongNoStations(t *testing.T) {
	_, lines := line323Fixture(t)
	praha := station(t, "Praha hl.n.", 14.4356, 50.0833, 4)

	_, err := AverageDelayAlong(lines[0], []*models.Station{praha}, 1000)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func BenchmarkWithinDistance(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	var stations []*models.Station
	for i := 0; i < 10000; i++ {
		stations = append(stations, &models.Station{
			Name:     fmt.Sprintf("st_%05d", i),
			Location: geom.Point{Lon: 18.0 + r.Float64(), Lat: 49.0 + r.Float64()},
		})
	}

	points := []geom.Point{
		{Lon: 18.2917, Lat: 49.8465},
		{Lon: 18.3582, Lat: 49.6645},
		{Lon: 18.3615, Lat: 49.5760},
		{Lon: 18.2140, Lat: 49.5601},
	}
	path, _ := geom.NewPolyline(points)
	lines := []*models.Line{{Name: "Line 323", Path: path}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = WithinDistance(stations, lines, 5000)
	}
}
