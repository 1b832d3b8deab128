// Package models defines the railway reference entities the evaluator
// operates on. Entities are built once at load time and never mutated.
package models

import "github.com/kass/go-rail-geo/pkg/geom"

// Station is a named train station with its location and the average
// delay (in minutes) observed at it.
type Station struct {
	Name     string     `json:"name"`
	Location geom.Point `json:"location"`
	AvgDelay float64    `json:"avg_delay"`
}

// Line is a named railway line with the polyline describing its path.
type Line struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Path        geom.Polyline `json:"path"`
}

// Dataset holds the reference data a query evaluates against.
type Dataset struct {
	Stations []*Station `json:"stations"`
	Lines    []*Line    `json:"lines"`
}
