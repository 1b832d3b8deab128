// Package index provides an R-Tree candidate pruning layer in front of the
// exact distance engine. It is an optional optimization: query results
// match the exhaustive evaluation in package proximity, the index only
// avoids the O(stations x lines) scan by discarding pairs whose bounding
// boxes are too far apart.
package index

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/kass/go-rail-geo/pkg/geodist"
	"github.com/kass/go-rail-geo/pkg/geom"
	"github.com/kass/go-rail-geo/pkg/models"
	"github.com/kass/go-rail-geo/pkg/proximity"
)

const (
	tolerance         = 0.01
	minChildren       = 25
	maxChildren       = 50
	dimensions        = 2
	earthRadiusMeters = 6371000.0
)

// stationItem wraps a Station for R-Tree indexing. The insertion index is
// kept so nearest-station ties resolve to the first occurrence in input
// order, matching the exhaustive query.
type stationItem struct {
	station *models.Station
	idx     int
	rect    *rtreego.Rect
}

func (si *stationItem) Bounds() *rtreego.Rect {
	return si.rect
}

// lineItem wraps a Line for R-Tree indexing under its path bounding box.
type lineItem struct {
	line *models.Line
	rect *rtreego.Rect
}

func (li *lineItem) Bounds() *rtreego.Rect {
	return li.rect
}

// RailIndex holds R-Trees over the station points and the line bounding
// boxes. It is built once from a loaded dataset and is read-only
// afterwards, so queries need no locking.
type RailIndex struct {
	stations     *rtreego.Rtree
	lines        *rtreego.Rtree
	stationCount int
	lineCount    int
}

// New builds a RailIndex from the dataset's stations and lines.
func New(ds *models.Dataset) (*RailIndex, error) {
	ri := &RailIndex{
		stations: rtreego.NewTree(dimensions, minChildren, maxChildren),
		lines:    rtreego.NewTree(dimensions, minChildren, maxChildren),
	}

	for i, st := range ds.Stations {
		p := rtreego.Point{st.Location.Lat, st.Location.Lon}
		ri.stations.Insert(&stationItem{station: st, idx: i, rect: p.ToRect(tolerance)})
		ri.stationCount++
	}

	for _, ln := range ds.Lines {
		rect, err := boundsRect(ln.Path.Bounds())
		if err != nil {
			return nil, fmt.Errorf("index line %q: %w", ln.Name, err)
		}
		ri.lines.Insert(&lineItem{line: ln, rect: rect})
		ri.lineCount++
	}

	return ri, nil
}

// StationCount returns the number of indexed stations.
func (ri *RailIndex) StationCount() int { return ri.stationCount }

// LineCount returns the number of indexed lines.
func (ri *RailIndex) LineCount() int { return ri.lineCount }

// WithinDistance returns the station/line pairs within thresholdMeters,
// ordered like proximity.WithinDistance. Line candidates are pruned per
// station by intersecting the line bounding boxes with the station's
// threshold-padded box before the exact distance runs.
func (ri *RailIndex) WithinDistance(stations []*models.Station, thresholdMeters float64) ([]proximity.Match, error) {
	if thresholdMeters < 0 {
		return nil, fmt.Errorf("index: negative threshold %.2f", thresholdMeters)
	}

	var matches []proximity.Match
	for _, st := range stations {
		rect, err := paddedRect(st.Location, thresholdMeters)
		if err != nil {
			return nil, fmt.Errorf("station %q: %w", st.Name, err)
		}

		for _, result := range ri.lines.SearchIntersect(rect) {
			item, ok := result.(*lineItem)
			if !ok {
				continue
			}
			d, err := geodist.PointToPolyline(st.Location, item.line.Path)
			if err != nil {
				return nil, fmt.Errorf("line %q: %w", item.line.Name, err)
			}
			if d <= thresholdMeters {
				matches = append(matches, proximity.Match{Station: st, Line: item.line, Meters: d})
			}
		}
	}

	proximity.SortMatches(matches)
	return matches, nil
}

// NearestStation returns the indexed station closest to the query point.
// R-Tree neighbors are found in degree space, then re-ranked by
// great-circle distance; ties keep the lowest insertion index.
func (ri *RailIndex) NearestStation(query geom.Point) (*models.Station, error) {
	if ri.stationCount == 0 {
		return nil, fmt.Errorf("%w: index has no stations", proximity.ErrEmptyInput)
	}

	k := 8
	if k > ri.stationCount {
		k = ri.stationCount
	}
	candidates := ri.stations.NearestNeighbors(k, rtreego.Point{query.Lat, query.Lon})

	var best *stationItem
	bestDist := math.Inf(1)
	for _, result := range candidates {
		item, ok := result.(*stationItem)
		if !ok {
			continue
		}
		d := geodist.Haversine(item.station.Location, query)
		if d < bestDist || (d == bestDist && best != nil && item.idx < best.idx) {
			best = item
			bestDist = d
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: index has no stations", proximity.ErrEmptyInput)
	}
	return best.station, nil
}

// boundsRect converts a geographic bounding box into an R-Tree rect,
// padding zero-extent axes so degenerate boxes stay valid.
func boundsRect(bb geom.BoundingBox) (*rtreego.Rect, error) {
	dLat := bb.TopRight.Lat - bb.BottomLeft.Lat
	dLon := bb.TopRight.Lon - bb.BottomLeft.Lon
	if dLat < tolerance {
		dLat = tolerance
	}
	if dLon < tolerance {
		dLon = tolerance
	}
	return rtreego.NewRect(rtreego.Point{bb.BottomLeft.Lat, bb.BottomLeft.Lon}, []float64{dLat, dLon})
}

// paddedRect builds the search box around a station: the metric threshold
// converted to degrees of latitude, widened on the longitude axis for
// meridian convergence away from the equator.
func paddedRect(p geom.Point, thresholdMeters float64) (*rtreego.Rect, error) {
	latDeg := (thresholdMeters / earthRadiusMeters) * (180 / math.Pi)
	if latDeg < tolerance {
		latDeg = tolerance
	}

	cosLat := math.Cos(p.Lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonDeg := latDeg / cosLat

	return rtreego.NewRect(
		rtreego.Point{p.Lat - latDeg, p.Lon - lonDeg},
		[]float64{2 * latDeg, 2 * lonDeg},
	)
}
