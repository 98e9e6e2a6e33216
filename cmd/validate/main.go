// Command validate checks report inputs before a render: the incident TSV
// schema and values, the boundary shapefile, and the word cloud mask. It
// prints a pass/fail line per phase and exits non-zero on any failure.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -input incident_gas_transmission_gathering_jan2010_present.txt \
//	  -shapefile cb_2023_us_state_500k.shp \
//	  -mask us_mask.jpg
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/pipeline-incident-report/internal/adapter/shapefile"
	"github.com/couchcryptid/pipeline-incident-report/internal/adapter/tsv"
	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/couchcryptid/pipeline-incident-report/internal/render"
)

// maxListed caps the per-phase error listing; the count is always exact.
const maxListed = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	total  int
}

func (p *phase) errorf(format string, args ...any) {
	p.total++
	if len(p.errors) < maxListed {
		p.errors = append(p.errors, fmt.Sprintf(format, args...))
	}
}

func (p *phase) passed() bool { return p.total == 0 }

func main() {
	input := flag.String("input", "", "incident TSV file")
	shp := flag.String("shapefile", "", "state boundary shapefile (optional)")
	mask := flag.String("mask", "", "word cloud mask image (optional)")
	column := flag.String("wordcloud-column", domain.ColumnState, "column feeding the word cloud")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*input, *shp, *mask, *column); code != 0 {
		os.Exit(code)
	}
}

func run(inputPath, shpPath, maskPath, column string) int {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fmt.Println("=== Pipeline Incident Input Validation ===")
	fmt.Println()

	rows, err := tsv.NewReader(logger).ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load input: %v\n", err)
		return 1
	}
	table, err := domain.NewTable(rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: build table: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSchema(table, column),
		validateCoordinates(table),
		validateFatalities(table),
	}
	if shpPath != "" {
		phases = append(phases, validateBoundaries(shpPath))
	}
	if maskPath != "" {
		phases = append(phases, validateMask(maskPath))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", p.total)
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	printClassCounts(table, logger)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
		if p.total > len(p.errors) {
			fmt.Printf("  ... %d more\n", p.total-len(p.errors))
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateSchema(table *domain.Table, column string) *phase {
	p := &phase{name: "Schema: required columns present"}
	required := append([]string{}, domain.RequiredColumns...)
	if column != "" && column != domain.ColumnState && column != domain.ColumnCauseDetails {
		required = append(required, column)
	}
	for _, c := range required {
		if table.ColumnIndex(c) < 0 {
			p.errorf("missing column %q", c)
		}
	}
	if table.Len() == 0 {
		p.errorf("no data rows")
	}
	return p
}

func validateCoordinates(table *domain.Table) *phase {
	p := &phase{name: "Coordinates: finite lat/lon in range"}
	for i := range table.Len() {
		rec := table.Record(i)
		line := i + 2
		lat, latOK := parseFinite(rec[domain.ColumnLatitude])
		lon, lonOK := parseFinite(rec[domain.ColumnLongitude])
		switch {
		case !latOK:
			p.errorf("line %d: %s=%q", line, domain.ColumnLatitude, rec[domain.ColumnLatitude])
		case !lonOK:
			p.errorf("line %d: %s=%q", line, domain.ColumnLongitude, rec[domain.ColumnLongitude])
		case lat < -90 || lat > 90:
			p.errorf("line %d: latitude %g out of range", line, lat)
		case lon < -180 || lon > 180:
			p.errorf("line %d: longitude %g out of range", line, lon)
		}
	}
	return p
}

func validateFatalities(table *domain.Table) *phase {
	p := &phase{name: "Fatalities: FATAL classifies"}
	for i := range table.Len() {
		v := table.Record(i)[domain.ColumnFatal]
		if domain.Classify(v) == domain.ClassInvalid {
			p.errorf("line %d: %s=%q is neither \"0\" nor a positive count", i+2, domain.ColumnFatal, v)
		}
	}
	return p
}

func validateBoundaries(path string) *phase {
	p := &phase{name: "Boundaries: shapefile polygons"}
	boundaries, err := shapefile.Load(path)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if len(boundaries) == 0 {
		p.errorf("no polygons in %s", path)
	}
	intersecting := 0
	for _, b := range boundaries {
		if render.ContinentalUS.Intersects(b.BBox) {
			intersecting++
		}
	}
	if len(boundaries) > 0 && intersecting == 0 {
		p.errorf("no polygon intersects the continental U.S. window")
	}
	return p
}

func validateMask(path string) *phase {
	p := &phase{name: "Mask: image has a drawable area"}
	img, err := render.LoadMaskImage(path)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if render.LoadMask(img).Area() == 0 {
		p.errorf("%s has no pixels darker than the mask threshold", path)
	}
	return p
}

func printClassCounts(table *domain.Table, logger *slog.Logger) {
	opts := domain.DefaultGeocodeOptions()
	opts.SkipInvalid = true
	geo, err := domain.Geocode(context.Background(), table, opts, logger)
	if err != nil {
		fmt.Printf("Records: %d (classification unavailable: %v)\n", table.Len(), err)
		return
	}
	part := domain.PartitionIncidents(geo, domain.ColumnFatal)
	fmt.Printf("Records: %d, skipped coordinates: %d\n", table.Len(), geo.Skipped)
	fmt.Printf("By class: non_fatal=%d, fatal=%d, invalid=%d\n", len(part.NonFatal), len(part.Fatal), len(part.Invalid))
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
