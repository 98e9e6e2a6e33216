package shapefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/jonas-p/go-shp"
)

// nameFieldSize fits the longest state name in the Census files.
const nameFieldSize = 32

// Write stores boundaries as a polygon shapefile with a NAME attribute. path
// names the .shp file; .shx and .dbf are written beside it.
func Write(path string, boundaries []domain.Boundary) error {
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return fmt.Errorf("create shapefile %s: %w", path, err)
	}

	if err := w.SetFields([]shp.Field{shp.StringField("NAME", nameFieldSize)}); err != nil {
		w.Close()
		return fmt.Errorf("set fields %s: %w", path, err)
	}
	for i, b := range boundaries {
		poly := toPolygon(b)
		w.Write(&poly)
		if err := w.WriteAttribute(i, 0, b.Name); err != nil {
			w.Close()
			return fmt.Errorf("write attribute %d: %w", i, err)
		}
	}
	w.Close()

	return fixAttributeFile(path)
}

// fixAttributeFile moves "<base>dbf" to "<base>.dbf". go-shp v0.1.1 drops the
// dot when creating the attribute file, which leaves the reader without fields.
func fixAttributeFile(path string) error {
	base := strings.TrimSuffix(path, ".shp")
	err := os.Rename(base+"dbf", base+".dbf")
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("rename attribute file for %s: %w", path, err)
	}
	return nil
}

func toPolygon(b domain.Boundary) shp.Polygon {
	parts := make([][]shp.Point, 0, len(b.Rings))
	for _, ring := range b.Rings {
		pts := make([]shp.Point, len(ring))
		for i, p := range ring {
			pts[i] = shp.Point{X: p.Lon, Y: p.Lat}
		}
		parts = append(parts, pts)
	}
	return shp.Polygon(*shp.NewPolyLine(parts))
}
