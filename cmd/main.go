package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kass/go-rail-geo/pkg/export"
	"github.com/kass/go-rail-geo/pkg/geom"
	"github.com/kass/go-rail-geo/pkg/index"
	"github.com/kass/go-rail-geo/pkg/loader"
	"github.com/kass/go-rail-geo/pkg/models"
	"github.com/kass/go-rail-geo/pkg/postgis"
	"github.com/kass/go-rail-geo/pkg/proximity"
)

var (
	dataFile string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "railgeo",
	Short: "Proximity queries over railway stations and lines",
	Long:  `Load railway station and line reference data and answer distance-threshold, nearest-station and delay queries over it.`,
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Convert a GeoJSON dataset into a binary snapshot",
	Run:   runLoad,
}

var withinCmd = &cobra.Command{
	Use:   "within",
	Short: "List station/line pairs within a distance threshold",
	Run:   runWithin,
}

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Find the station nearest to a query point",
	Run:   runNearest,
}

var delayCmd = &cobra.Command{
	Use:   "delay",
	Short: "Average station delay along a line",
	Run:   runDelay,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the dataset as GeoJSON for web maps",
	Run:   runExport,
}

var pgImportCmd = &cobra.Command{
	Use:   "pg-import",
	Short: "Push a dataset into PostGIS",
	Run:   runPgImport,
}

var pgWithinCmd = &cobra.Command{
	Use:   "pg-within",
	Short: "Run the within-distance query server-side in PostGIS",
	Run:   runPgWithin,
}

var (
	inputFile  string
	outputFile string
	thresholdM float64
	queryLon   float64
	queryLat   float64
	lineName   string
	radiusM    float64
	useIndex   bool
	outputJSON bool
	exportKind string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataFile, "data", "d", "data/railway.geojson", "Dataset file (.geojson or .gob snapshot)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	loadCmd.Flags().StringVarP(&inputFile, "input", "i", "data/railway.geojson", "GeoJSON input file")
	loadCmd.Flags().StringVarP(&outputFile, "output", "o", "data/railway.gob", "Snapshot output file")

	withinCmd.Flags().Float64VarP(&thresholdM, "threshold", "t", 1000, "Distance threshold in meters")
	withinCmd.Flags().BoolVar(&useIndex, "indexed", false, "Use the R-Tree candidate pruning path")
	withinCmd.Flags().BoolVar(&outputJSON, "json", false, "Output results as JSON")

	nearestCmd.Flags().Float64Var(&queryLon, "lon", 0, "Query longitude")
	nearestCmd.Flags().Float64Var(&queryLat, "lat", 0, "Query latitude")
	nearestCmd.Flags().BoolVar(&useIndex, "indexed", false, "Use the R-Tree candidate pruning path")

	delayCmd.Flags().StringVarP(&lineName, "line", "l", "", "Line name")
	delayCmd.Flags().Float64VarP(&radiusM, "radius", "r", 1000, "Radius in meters")

	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "out.geojson", "GeoJSON output file")
	exportCmd.Flags().StringVarP(&exportKind, "kind", "k", "stations", "What to export: stations or lines")

	pgImportCmd.Flags().StringVarP(&inputFile, "input", "i", "data/railway.geojson", "GeoJSON input file")

	pgWithinCmd.Flags().StringVarP(&lineName, "line", "l", "", "Line name")
	pgWithinCmd.Flags().Float64VarP(&thresholdM, "threshold", "t", 1000, "Distance threshold in meters")

	rootCmd.AddCommand(loadCmd, withinCmd, nearestCmd, delayCmd, exportCmd, pgImportCmd, pgWithinCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runLoad(cmd *cobra.Command, args []string) {
	ds, err := loader.LoadGeoJSONFile(inputFile)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	if err := loader.SaveSnapshot(ds, outputFile); err != nil {
		log.Fatalf("Failed to save snapshot: %v", err)
	}

	fmt.Printf("Loaded %d stations and %d lines, snapshot saved to %s\n",
		len(ds.Stations), len(ds.Lines), outputFile)
}

func runWithin(cmd *cobra.Command, args []string) {
	ds := mustLoadDataset()

	start := time.Now()
	var matches []proximity.Match
	var err error

	if useIndex {
		var ri *index.RailIndex
		ri, err = index.New(ds)
		if err != nil {
			log.Fatalf("Failed to build index: %v", err)
		}
		matches, err = ri.WithinDistance(ds.Stations, thresholdM)
	} else {
		matches, err = proximity.WithinDistance(ds.Stations, ds.Lines, thresholdM)
	}
	if err != nil {
		log.Fatalf("Within-distance query failed: %v", err)
	}
	elapsed := time.Since(start)

	if outputJSON {
		fc := export.MatchesCollection(matches)
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(fc); err != nil {
			log.Fatalf("Failed to encode results: %v", err)
		}
		return
	}

	fmt.Printf("Found %d pairs within %.0fm:\n", len(matches), thresholdM)
	for i, m := range matches {
		fmt.Printf("%d. %s <-> %s: %.1f m\n", i+1, m.Station.Name, m.Line.Name, m.Meters)
	}
	if verbose {
		fmt.Printf("Query time: %v\n", elapsed)
	}
}

func runNearest(cmd *cobra.Command, args []string) {
	ds := mustLoadDataset()

	query, err := geom.NewPoint(queryLon, queryLat)
	if err != nil {
		log.Fatalf("Invalid query point: %v", err)
	}

	var st *models.Station
	if useIndex {
		ri, err := index.New(ds)
		if err != nil {
			log.Fatalf("Failed to build index: %v", err)
		}
		st, err = ri.NearestStation(query)
		if err != nil {
			log.Fatalf("Nearest-station query failed: %v", err)
		}
	} else {
		st, err = proximity.NearestStation(ds.Stations, query)
		if err != nil {
			log.Fatalf("Nearest-station query failed: %v", err)
		}
	}

	fmt.Printf("Nearest station to (%.4f, %.4f): %s at (%.4f, %.4f), avg delay %.1f min\n",
		queryLon, queryLat, st.Name, st.Location.Lon, st.Location.Lat, st.AvgDelay)
}

func runDelay(cmd *cobra.Command, args []string) {
	ds := mustLoadDataset()

	var line *models.Line
	for _, ln := range ds.Lines {
		if ln.Name == lineName {
			line = ln
			break
		}
	}
	if line == nil {
		log.Fatalf("Line %q not found in dataset", lineName)
	}

	avg, err := proximity.AverageDelayAlong(line, ds.Stations, radiusM)
	if err != nil {
		log.Fatalf("Delay query failed: %v", err)
	}

	fmt.Printf("Average delay within %.0fm of %s: %.2f min\n", radiusM, line.Name, avg)
}

func runExport(cmd *cobra.Command, args []string) {
	ds := mustLoadDataset()

	var err error
	switch exportKind {
	case "stations":
		err = export.WriteFile(export.StationsCollection(ds.Stations), outputFile)
	case "lines":
		err = export.WriteFile(export.LinesCollection(ds.Lines), outputFile)
	default:
		log.Fatalf("Unknown export kind %q (want stations or lines)", exportKind)
	}
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	fmt.Printf("Exported %s to %s\n", exportKind, outputFile)
}

func runPgImport(cmd *cobra.Command, args []string) {
	ds, err := loader.LoadGeoJSONFile(inputFile)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	store := mustConnect()
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		log.Fatalf("Failed to init schema: %v", err)
	}
	if err := store.InsertStations(ds.Stations); err != nil {
		log.Fatalf("Failed to insert stations: %v", err)
	}
	if err := store.InsertLines(ds.Lines); err != nil {
		log.Fatalf("Failed to insert lines: %v", err)
	}
	if err := store.CreateSpatialIndexes(); err != nil {
		log.Fatalf("Failed to create spatial indexes: %v", err)
	}

	stations, lines, err := store.Count()
	if err != nil {
		log.Fatalf("Failed to count rows: %v", err)
	}
	fmt.Printf("Imported %d stations and %d lines into PostGIS\n", stations, lines)
}

func runPgWithin(cmd *cobra.Command, args []string) {
	store := mustConnect()
	defer store.Close()

	names, err := store.StationsNearLine(lineName, thresholdM)
	if err != nil {
		log.Fatalf("PostGIS within-distance query failed: %v", err)
	}

	fmt.Printf("%d stations within %.0fm of %s:\n", len(names), thresholdM, lineName)
	for i, name := range names {
		fmt.Printf("%d. %s\n", i+1, name)
	}
}

// mustLoadDataset loads the dataset behind --data, choosing the decoder by
// file extension.
func mustLoadDataset() *models.Dataset {
	var (
		ds  *models.Dataset
		err error
	)
	if strings.HasSuffix(dataFile, ".gob") {
		ds, err = loader.LoadSnapshot(dataFile)
	} else {
		ds, err = loader.LoadGeoJSONFile(dataFile)
	}
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	if verbose {
		log.Printf("Loaded %d stations and %d lines from %s", len(ds.Stations), len(ds.Lines), dataFile)
	}
	return ds
}

// mustConnect builds a PostGIS connection from environment variables,
// reading .env first when present.
func mustConnect() *postgis.Store {
	if err := godotenv.Load(); err != nil && verbose {
		log.Println("No .env file found (using environment variables)")
	}

	port, err := strconv.Atoi(getEnv("PG_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid PG_PORT: %v", err)
	}

	store, err := postgis.Connect(
		getEnv("PG_HOST", "localhost"),
		getEnv("PG_USER", "postgres"),
		getEnv("PG_PASSWORD", "postgres"),
		getEnv("PG_DATABASE", "railgeo"),
		port,
	)
	if err != nil {
		log.Fatalf("Failed to connect to PostGIS: %v", err)
	}
	return store
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
