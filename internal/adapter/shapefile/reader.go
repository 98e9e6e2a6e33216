// Package shapefile loads base map polygons from ESRI shapefiles.
package shapefile

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/jonas-p/go-shp"
)

// nameFields are the attribute columns tried, in order, for a boundary name.
// STUSPS is the two-letter state code in the Census cartographic boundary files.
var nameFields = []string{"STUSPS", "NAME"}

// Load reads every polygon in the shapefile at path. Non-polygon shapes are
// ignored. The .dbf attribute file is optional; without it boundaries are unnamed.
func Load(path string) ([]domain.Boundary, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer r.Close()

	nameIdx := nameFieldIndex(r.Fields())

	var boundaries []domain.Boundary
	for r.Next() {
		n, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}

		b := fromPolygon(poly)
		if nameIdx >= 0 {
			b.Name = strings.TrimSpace(r.ReadAttribute(n, nameIdx))
		}
		boundaries = append(boundaries, b)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile %s: %w", path, err)
	}

	return boundaries, nil
}

func nameFieldIndex(fields []shp.Field) int {
	for _, want := range nameFields {
		for i, f := range fields {
			if strings.EqualFold(f.String(), want) {
				return i
			}
		}
	}
	return -1
}

// fromPolygon splits the flat point list into rings using the part offsets.
func fromPolygon(poly *shp.Polygon) domain.Boundary {
	box := poly.BBox()
	b := domain.Boundary{
		BBox: domain.BBox{MinLon: box.MinX, MinLat: box.MinY, MaxLon: box.MaxX, MaxLat: box.MaxY},
	}

	for i, start := range poly.Parts {
		end := len(poly.Points)
		if i+1 < len(poly.Parts) {
			end = int(poly.Parts[i+1])
		}
		if int(start) >= end {
			continue
		}
		ring := make([]domain.Point, 0, end-int(start))
		for _, p := range poly.Points[start:end] {
			ring = append(ring, domain.Point{Lon: p.X, Lat: p.Y})
		}
		b.Rings = append(b.Rings, ring)
	}
	return b
}
