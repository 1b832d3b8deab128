// Package proximity answers distance-threshold and nearest-entity queries
// over immutable station and line reference data.
//
// Both queries are pure, single-pass evaluations: no I/O, no shared
// mutable state. WithinDistance fans the station set out across worker
// goroutines and merges the partial results deterministically.
package proximity

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/kass/go-rail-geo/pkg/geodist"
	"github.com/kass/go-rail-geo/pkg/geom"
	"github.com/kass/go-rail-geo/pkg/models"
)

// ErrEmptyInput is returned when a query that selects an entity is given
// an empty collection to select from.
var ErrEmptyInput = errors.New("proximity: empty input")

// Match is a station/line pair whose metric distance is within the
// queried threshold.
type Match struct {
	Station *models.Station
	Line    *models.Line
	Meters  float64
}

// WithinDistance returns every station/line pair whose point-to-polyline
// distance is at most thresholdMeters. Results are ordered by increasing
// distance, then station name, then line name.
func WithinDistance(stations []*models.Station, lines []*models.Line, thresholdMeters float64) ([]Match, error) {
	if thresholdMeters < 0 {
		return nil, fmt.Errorf("proximity: negative threshold %.2f", thresholdMeters)
	}
	if len(stations) == 0 || len(lines) == 0 {
		return []Match{}, nil
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > len(stations) {
		numWorkers = len(stations)
	}

	type partial struct {
		matches []Match
		err     error
	}
	resultsChan := make(chan partial, numWorkers)

	// Partition the station set across workers. Each pair's distance is
	// independent, so no coordination is needed beyond the final merge.
	var wg sync.WaitGroup
	batchSize := len(stations) / numWorkers
	for w := 0; w < numWorkers; w++ {
		start := w * batchSize
		end := start + batchSize
		if w == numWorkers-1 {
			end = len(stations)
		}

		wg.Add(1)
		go func(batch []*models.Station) {
			defer wg.Done()

			var local []Match
			for _, st := range batch {
				for _, ln := range lines {
					d, err := geodist.PointToPolyline(st.Location, ln.Path)
					if err != nil {
						resultsChan <- partial{err: fmt.Errorf("line %q: %w", ln.Name, err)}
						return
					}
					if d <= thresholdMeters {
						local = append(local, Match{Station: st, Line: ln, Meters: d})
					}
				}
			}
			resultsChan <- partial{matches: local}
		}(stations[start:end])
	}

	wg.Wait()
	close(resultsChan)

	var matches []Match
	for p := range resultsChan {
		if p.err != nil {
			return nil, p.err
		}
		matches = append(matches, p.matches...)
	}

	SortMatches(matches)
	return matches, nil
}

// SortMatches orders matches by distance, then station name, then line
// name, so the merged result is deterministic regardless of worker
// scheduling.
func SortMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Meters != matches[j].Meters {
			return matches[i].Meters < matches[j].Meters
		}
		if matches[i].Station.Name != matches[j].Station.Name {
			return matches[i].Station.Name < matches[j].Station.Name
		}
		return matches[i].Line.Name < matches[j].Line.Name
	})
}

// NearestStation returns the station closest to the query point by
// great-circle distance. Ties keep the first occurrence in input order.
func NearestStation(stations []*models.Station, query geom.Point) (*models.Station, error) {
	if len(stations) == 0 {
		return nil, fmt.Errorf("%w: no stations", ErrEmptyInput)
	}

	best := stations[0]
	bestDist := geodist.Haversine(best.Location, query)
	for _, st := range stations[1:] {
		if d := geodist.Haversine(st.Location, query); d < bestDist {
			best = st
			bestDist = d
		}
	}
	return best, nil
}

// AverageDelayAlong returns the mean average delay of the stations lying
// within radiusMeters of the line. Returns ErrEmptyInput when no station
// qualifies.
func AverageDelayAlong(line *models.Line, stations []*models.Station, radiusMeters float64) (float64, error) {
	matched, err := WithinDistance(stations, []*models.Line{line}, radiusMeters)
	if err != nil {
		return 0, err
	}
	if len(matched) == 0 {
		return 0, fmt.Errorf("%w: no stations within %.0fm of line %q", ErrEmptyInput, radiusMeters, line.Name)
	}

	var sum float64
	for _, m := range matched {
		sum += m.Station.AvgDelay
	}
	return sum / float64(len(matched)), nil
}
