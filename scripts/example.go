package main

import (
	"fmt"
	"log"

	"github.com/kass/go-rail-geo/pkg/geom"
	"github.com/kass/go-rail-geo/pkg/models"
	"github.com/kass/go-rail-geo/pkg/proximity"
)

func main() {
	// Stations of railway line 323 with their average delays
	stationData := []struct {
		name     string
		lon, lat float64
		delay    float64
	}{
		{"Ostrava hl.n.", 18.2917, 49.8465, 5},
		{"Frydlant n.O.", 18.3582, 49.6645, 8},
		{"Celadna", 18.3615, 49.5760, 3},
		{"Frenstat p.R.", 18.2140, 49.5601, 10},
	}

	var stations []*models.Station
	for _, sd := range stationData {
		loc, err := geom.NewPoint(sd.lon, sd.lat)
		if err != nil {
			log.Fatal(err)
		}
		stations = append(stations, &models.Station{
			Name:     sd.name,
			Location: loc,
			AvgDelay: sd.delay,
		})
	}

	points := make([]geom.Point, 0, len(stationData))
	for _, sd := range stationData {
		p, _ := geom.NewPoint(sd.lon, sd.lat)
		points = append(points, p)
	}
	path, err := geom.NewPolyline(points)
	if err != nil {
		log.Fatal(err)
	}
	line := &models.Line{
		Name:        "Line 323",
		Description: "Ostrava - Valasske Mezirici regional line",
		Path:        path,
	}

	// Example 1: stations within 1 km of the line
	matches, err := proximity.WithinDistance(stations, []*models.Line{line}, 1000)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Stations within 1 km of Line 323:")
	for _, m := range matches {
		fmt.Printf("  - %s (%.1f m)\n", m.Station.Name, m.Meters)
	}

	// Example 2: nearest station to a point along the valley
	query, _ := geom.NewPoint(18.30, 49.70)
	nearest, err := proximity.NearestStation(stations, query)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nNearest station to (18.30, 49.70): %s\n", nearest.Name)

	// Example 3: average delay along the line
	avg, err := proximity.AverageDelayAlong(line, stations, 1500)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nAverage delay along %s: %.1f min\n", line.Name, avg)
}
