package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"
)

// ErrInvalidCoordinate is returned for a latitude or longitude that does not
// parse as a finite float.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// GeocodeOptions configures Geocode.
type GeocodeOptions struct {
	LatitudeColumn  string
	LongitudeColumn string
	CityColumn      string
	StateColumn     string

	// SkipInvalid drops rows with invalid coordinates instead of failing.
	SkipInvalid bool

	// Backfill resolves rows with blank coordinates. Nil disables backfill.
	Backfill Geocoder

	GeohashPrecision uint
}

// DefaultGeocodeOptions returns options for the PHMSA column layout.
func DefaultGeocodeOptions() GeocodeOptions {
	return GeocodeOptions{
		LatitudeColumn:   ColumnLatitude,
		LongitudeColumn:  ColumnLongitude,
		CityColumn:       ColumnCity,
		StateColumn:      ColumnState,
		GeohashPrecision: 7,
	}
}

// Geocode derives a point for every record and wraps the result in a GeoTable
// tagged with EPSG:4326. The first invalid coordinate aborts unless
// opts.SkipInvalid is set.
func Geocode(ctx context.Context, table *Table, opts GeocodeOptions, logger *slog.Logger) (*GeoTable, error) {
	if err := table.RequireColumns(opts.LatitudeColumn, opts.LongitudeColumn); err != nil {
		return nil, err
	}
	if opts.GeohashPrecision == 0 {
		opts.GeohashPrecision = 7
	}

	geo := &GeoTable{
		CRS:       CRS,
		Columns:   table.Columns,
		Incidents: make([]Incident, 0, table.Len()),
	}

	for i := range table.Rows {
		rec := table.Record(i)
		point, backfilled, err := locate(ctx, rec, opts, logger)
		if err != nil {
			err = fmt.Errorf("line %d: %w", line(i), err)
			if !opts.SkipInvalid {
				return nil, err
			}
			logger.Warn("skipping record with invalid coordinates", "line", line(i), "error", err)
			geo.Skipped++
			continue
		}
		if backfilled {
			geo.Backfilled++
		}

		geo.Incidents = append(geo.Incidents, Incident{
			Line:       line(i),
			Record:     rec,
			Point:      point,
			Geohash:    geohash.EncodeWithPrecision(point.Lat, point.Lon, opts.GeohashPrecision),
			Backfilled: backfilled,
		})
	}

	return geo, nil
}

// locate parses the record's coordinates, falling back to the backfill
// geocoder when both are blank.
func locate(ctx context.Context, rec Record, opts GeocodeOptions, logger *slog.Logger) (Point, bool, error) {
	latRaw := strings.TrimSpace(rec[opts.LatitudeColumn])
	lonRaw := strings.TrimSpace(rec[opts.LongitudeColumn])

	if latRaw == "" && lonRaw == "" && opts.Backfill != nil {
		p, err := backfill(ctx, rec, opts, logger)
		if err != nil {
			return Point{}, false, err
		}
		return p, true, nil
	}

	lat, err := parseCoordinate(opts.LatitudeColumn, latRaw)
	if err != nil {
		return Point{}, false, err
	}
	lon, err := parseCoordinate(opts.LongitudeColumn, lonRaw)
	if err != nil {
		return Point{}, false, err
	}
	return Point{Lon: lon, Lat: lat}, false, nil
}

func parseCoordinate(column, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidCoordinate, column, s)
	}
	return v, nil
}

func backfill(ctx context.Context, rec Record, opts GeocodeOptions, logger *slog.Logger) (Point, error) {
	city := strings.TrimSpace(rec[opts.CityColumn])
	state := strings.TrimSpace(rec[opts.StateColumn])
	if city == "" || state == "" {
		return Point{}, fmt.Errorf("%w: blank coordinates and no place to backfill from", ErrInvalidCoordinate)
	}

	result, err := opts.Backfill.ForwardGeocode(ctx, city, state)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"city", city,
			"state", state,
			"error", err,
		)
		return Point{}, fmt.Errorf("%w: backfill %s, %s: %w", ErrInvalidCoordinate, city, state, err)
	}
	if result.Lat == 0 && result.Lon == 0 {
		return Point{}, fmt.Errorf("%w: no geocoding result for %s, %s", ErrInvalidCoordinate, city, state)
	}
	return Point{Lon: result.Lon, Lat: result.Lat}, nil
}
