// Package postgis is the PostGIS-backed data loader: it persists station
// and line reference data and reads it back as validated entities. It also
// exposes the server-side ST_DWithin and KNN queries, used to cross-check
// the in-process evaluator against the database's answers.
package postgis

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/kass/go-rail-geo/pkg/geojson"
	"github.com/kass/go-rail-geo/pkg/geom"
	"github.com/kass/go-rail-geo/pkg/models"
)

type Store struct {
	db *sql.DB
}

// Connect opens a PostGIS connection with pooled settings.
func Connect(host, user, password, dbname string, port int) (*Store, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: db}, nil
}

// InitSchema creates the station and line tables with geometry columns.
func (s *Store) InitSchema() error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,

		`DROP TABLE IF EXISTS train_stations;`,
		`DROP TABLE IF EXISTS rail_lines;`,

		`CREATE TABLE train_stations (
			name TEXT PRIMARY KEY,
			avg_delay DOUBLE PRECISION NOT NULL DEFAULT 0,
			geom GEOMETRY(POINT, 4326)
		);`,

		`CREATE TABLE rail_lines (
			name TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			geom GEOMETRY(LINESTRING, 4326)
		);`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}

	return nil
}

// CreateSpatialIndexes creates GIST indexes on both geometry columns.
func (s *Store) CreateSpatialIndexes() error {
	queries := []string{
		`CREATE INDEX idx_train_stations_geom ON train_stations USING GIST(geom);`,
		`CREATE INDEX idx_rail_lines_geom ON rail_lines USING GIST(geom);`,
		`ANALYZE train_stations;`,
		`ANALYZE rail_lines;`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create spatial index: %w", err)
		}
	}
	return nil
}

// InsertStations inserts stations in a single transaction.
func (s *Store) InsertStations(stations []*models.Station) error {
	stmt, err := s.db.Prepare(`
		INSERT INTO train_stations (name, avg_delay, geom)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326))
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStmt := tx.Stmt(stmt)
	for _, st := range stations {
		if _, err := txStmt.Exec(st.Name, st.AvgDelay, st.Location.Lon, st.Location.Lat); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert station %s: %w", st.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stations: %w", err)
	}
	return nil
}

// InsertLines inserts lines in a single transaction, encoding each path
// as a LINESTRING WKT literal.
func (s *Store) InsertLines(lines []*models.Line) error {
	stmt, err := s.db.Prepare(`
		INSERT INTO rail_lines (name, description, geom)
		VALUES ($1, $2, ST_SetSRID(ST_GeomFromText($3), 4326))
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStmt := tx.Stmt(stmt)
	for _, ln := range lines {
		if _, err := txStmt.Exec(ln.Name, ln.Description, lineStringWKT(ln.Path)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert line %s: %w", ln.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit lines: %w", err)
	}
	return nil
}

// LoadDataset reads all stations and lines back as validated entities.
func (s *Store) LoadDataset() (*models.Dataset, error) {
	ds := &models.Dataset{}

	rows, err := s.db.Query(`
		SELECT name, avg_delay, ST_X(geom), ST_Y(geom)
		FROM train_stations
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var delay, lon, lat float64
		if err := rows.Scan(&name, &delay, &lon, &lat); err != nil {
			return nil, fmt.Errorf("failed to scan station row: %w", err)
		}
		loc, err := geom.NewPoint(lon, lat)
		if err != nil {
			return nil, fmt.Errorf("station %s: %w", name, err)
		}
		ds.Stations = append(ds.Stations, &models.Station{Name: name, Location: loc, AvgDelay: delay})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("station rows error: %w", err)
	}

	lineRows, err := s.db.Query(`
		SELECT name, description, ST_AsGeoJSON(geom)
		FROM rail_lines
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var name, description, rawGeom string
		if err := lineRows.Scan(&name, &description, &rawGeom); err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		path, err := decodeLineString(rawGeom)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", name, err)
		}
		ds.Lines = append(ds.Lines, &models.Line{Name: name, Description: description, Path: path})
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("line rows error: %w", err)
	}

	return ds, nil
}

// StationsNearLine returns names of stations within the given metric
// distance of the named line, computed server-side on the geography type.
func (s *Store) StationsNearLine(lineName string, meters float64) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT ts.name
		FROM train_stations ts, rail_lines rl
		WHERE rl.name = $1
		  AND ST_DWithin(ts.geom::geography, rl.geom::geography, $2)
		ORDER BY ST_Distance(ts.geom::geography, rl.geom::geography), ts.name
	`, lineName, meters)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations near line: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return names, nil
}

// NearestStation returns the station closest to the point using the
// KNN index operator, re-ranked by exact geography distance.
func (s *Store) NearestStation(p geom.Point) (*models.Station, error) {
	row := s.db.QueryRow(`
		SELECT name, avg_delay, ST_X(geom), ST_Y(geom)
		FROM train_stations
		ORDER BY geom <-> ST_SetSRID(ST_MakePoint($1, $2), 4326)
		LIMIT 1
	`, p.Lon, p.Lat)

	var name string
	var delay, lon, lat float64
	if err := row.Scan(&name, &delay, &lon, &lat); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no stations stored")
		}
		return nil, fmt.Errorf("failed to query nearest station: %w", err)
	}

	loc, err := geom.NewPoint(lon, lat)
	if err != nil {
		return nil, fmt.Errorf("station %s: %w", name, err)
	}
	return &models.Station{Name: name, Location: loc, AvgDelay: delay}, nil
}

// Count returns the number of stored stations and lines.
func (s *Store) Count() (stations, lines int64, err error) {
	if err = s.db.QueryRow("SELECT COUNT(*) FROM train_stations").Scan(&stations); err != nil {
		return 0, 0, fmt.Errorf("failed to count stations: %w", err)
	}
	if err = s.db.QueryRow("SELECT COUNT(*) FROM rail_lines").Scan(&lines); err != nil {
		return 0, 0, fmt.Errorf("failed to count lines: %w", err)
	}
	return stations, lines, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// lineStringWKT encodes a polyline as a WKT LINESTRING literal.
func lineStringWKT(path geom.Polyline) string {
	parts := make([]string, 0, len(path.Points))
	for _, p := range path.Points {
		parts = append(parts, fmt.Sprintf("%f %f", p.Lon, p.Lat))
	}
	return "LINESTRING(" + strings.Join(parts, ", ") + ")"
}

// decodeLineString parses ST_AsGeoJSON output into a validated polyline.
func decodeLineString(raw string) (geom.Polyline, error) {
	var g geojson.Geometry
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return geom.Polyline{}, fmt.Errorf("decode geometry: %w", err)
	}
	coords, err := g.LineStringCoordinates()
	if err != nil {
		return geom.Polyline{}, err
	}

	points := make([]geom.Point, 0, len(coords))
	for _, c := range coords {
		p, err := geom.NewPoint(c[0], c[1])
		if err != nil {
			return geom.Polyline{}, err
		}
		points = append(points, p)
	}
	return geom.NewPolyline(points)
}
