// Command genmock writes a self-contained set of report inputs: a synthetic
// incident TSV, a coarse state boundary shapefile, and a word cloud mask. It
// runs the generated incidents through the domain package and prints the counts
// test assertions and demos depend on.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -records 400 -seed 7
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/couchcryptid/pipeline-incident-report/internal/adapter/shapefile"
	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/couchcryptid/pipeline-incident-report/internal/render"
)

type state struct {
	code   string
	minLon float64
	minLat float64
	maxLon float64
	maxLat float64
	cities []string
}

// Rough bounding boxes; the shapefile is for demos, not cartography.
var states = []state{
	{"TX", -106.6, 25.8, -93.5, 36.5, []string{"HOUSTON", "MIDLAND", "ODESSA", "CORPUS CHRISTI"}},
	{"OK", -103.0, 33.6, -94.4, 37.0, []string{"OKLAHOMA CITY", "TULSA", "ENID"}},
	{"LA", -94.0, 29.0, -89.0, 33.0, []string{"LAKE CHARLES", "LAFAYETTE", "HOUMA"}},
	{"PA", -80.5, 39.7, -74.7, 42.3, []string{"PITTSBURGH", "PHILADELPHIA", "WILLIAMSPORT"}},
	{"CO", -109.05, 36.99, -102.04, 41.0, []string{"DENVER", "GREELEY"}},
	{"WY", -111.05, 41.0, -104.05, 45.0, []string{"CASPER", "GILLETTE"}},
	{"KS", -102.05, 37.0, -94.6, 40.0, []string{"WICHITA", "HUTCHINSON"}},
	{"NM", -109.05, 31.33, -103.0, 37.0, []string{"FARMINGTON", "CARLSBAD"}},
}

var causes = []string{
	"INTERNAL CORROSION",
	"EXTERNAL CORROSION",
	"EXCAVATION DAMAGE",
	"EQUIPMENT FAILURE",
	"INCORRECT OPERATION",
	"NATURAL FORCE DAMAGE",
	"MATERIAL FAILURE OF PIPE OR WELD",
}

var header = []string{
	domain.ColumnReportNumber,
	domain.ColumnLatitude,
	domain.ColumnLongitude,
	domain.ColumnFatal,
	domain.ColumnState,
	domain.ColumnCity,
	domain.ColumnCauseDetails,
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the generated fixtures")
	records := flag.Int("records", 400, "number of incident rows")
	seed := flag.Uint64("seed", 7, "random seed for reproducible output")
	flag.Parse()

	if *out == "" || *records <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -records > 0")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x5bd1e995))
	rows := generateRows(rng, *records)

	incidentsPath := filepath.Join(*out, "incidents.txt")
	if err := writeTSV(incidentsPath, rows); err != nil {
		return fmt.Errorf("writing incidents: %w", err)
	}
	log.Printf("wrote incidents: %s (%d records)", incidentsPath, len(rows)-1)

	shpPath := filepath.Join(*out, "states.shp")
	if err := writeShapefile(shpPath); err != nil {
		return fmt.Errorf("writing shapefile: %w", err)
	}
	log.Printf("wrote shapefile: %s (%d states)", shpPath, len(states))

	maskPath := filepath.Join(*out, "mask.jpg")
	if err := writeMask(maskPath, 800, 500); err != nil {
		return fmt.Errorf("writing mask: %w", err)
	}
	log.Printf("wrote mask: %s", maskPath)

	return printStats(rows)
}

// generateRows returns a header plus n incidents. Roughly 8% are fatal, 2%
// carry an unusable FATAL value, and 1% fall offshore outside the map window.
func generateRows(rng *rand.Rand, n int) [][]string {
	rows := make([][]string, 0, n+1)
	rows = append(rows, header)
	for i := range n {
		s := states[rng.IntN(len(states))]
		lat := s.minLat + rng.Float64()*(s.maxLat-s.minLat)
		lon := s.minLon + rng.Float64()*(s.maxLon-s.minLon)

		fatal := "0"
		switch r := rng.Float64(); {
		case r < 0.02:
			fatal = "UNK"
		case r < 0.10:
			fatal = strconv.Itoa(1 + rng.IntN(4))
		}
		if rng.Float64() < 0.01 {
			lat, lon = 18.2+rng.Float64(), -155.5+rng.Float64()
		}

		rows = append(rows, []string{
			strconv.Itoa(20100001 + i),
			strconv.FormatFloat(lat, 'f', 5, 64),
			strconv.FormatFloat(lon, 'f', 5, 64),
			fatal,
			s.code,
			s.cities[rng.IntN(len(s.cities))],
			causes[rng.IntN(len(causes))],
		})
	}
	return rows
}

func writeTSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeShapefile stores each state box named by its two-letter code, the
// same value the incident rows carry.
func writeShapefile(path string) error {
	boundaries := make([]domain.Boundary, 0, len(states))
	for _, s := range states {
		boundaries = append(boundaries, domain.Boundary{
			Name: s.code,
			Rings: [][]domain.Point{{
				{Lon: s.minLon, Lat: s.minLat},
				{Lon: s.minLon, Lat: s.maxLat},
				{Lon: s.maxLon, Lat: s.maxLat},
				{Lon: s.maxLon, Lat: s.minLat},
				{Lon: s.minLon, Lat: s.minLat},
			}},
		})
	}
	return shapefile.Write(path, boundaries)
}

// writeMask draws a dark ellipse on white. Dark pixels are where words go.
func writeMask(path string, width, height int) error {
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.DrawEllipse(float64(width)/2, float64(height)/2, float64(width)*0.45, float64(height)*0.42)
	dc.Fill()
	return gg.SaveJPG(path, dc.Image(), 95)
}

type wordCount struct {
	word  string
	count int
}

func printStats(rows [][]string) error {
	table, err := domain.NewTable(rows)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	geo, err := domain.Geocode(context.Background(), table, domain.DefaultGeocodeOptions(), logger)
	if err != nil {
		return err
	}
	p := domain.PartitionIncidents(geo, domain.ColumnFatal)

	outside := 0
	for _, layer := range [][]domain.Incident{p.NonFatal, p.Fatal} {
		for _, inc := range layer {
			if !render.ContinentalUS.Contains(inc.Point) {
				outside++
			}
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Records: %d\n", table.Len())
	fmt.Printf("By class: non_fatal=%d, fatal=%d, invalid=%d\n", len(p.NonFatal), len(p.Fatal), len(p.Invalid))
	fmt.Printf("Outside map window: %d\n", outside)

	text, err := domain.JoinColumn(table, domain.ColumnState)
	if err != nil {
		return err
	}
	freqs := domain.WordFrequencies(text)
	wc := make([]wordCount, 0, len(freqs))
	for _, f := range freqs {
		wc = append(wc, wordCount{f.Word, f.Count})
	}
	sort.SliceStable(wc, func(i, j int) bool { return wc[i].count > wc[j].count })
	fmt.Printf("States (%d): ", len(wc))
	for _, w := range wc {
		fmt.Printf("%s=%d ", w.word, w.count)
	}
	fmt.Println()
	return nil
}
