package render

import (
	"math"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Window is the visible longitude/latitude extent of the map. Containment
// tests run on an s2.Rect so bounds are inclusive.
type Window struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64

	rect s2.Rect
}

// ContinentalUS is the fixed plot window: longitude [-130, -65], latitude [20, 55].
var ContinentalUS = NewWindow(-130, -65, 20, 55)

// NewWindow builds a window from its bounds in degrees.
func NewWindow(minLon, maxLon, minLat, maxLat float64) Window {
	return Window{
		MinLon: minLon,
		MaxLon: maxLon,
		MinLat: minLat,
		MaxLat: maxLat,
		rect:   rectFromBounds(minLon, minLat, maxLon, maxLat),
	}
}

// Contains reports whether p lies inside the window.
func (w Window) Contains(p domain.Point) bool {
	return w.rect.ContainsLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
}

// Intersects reports whether any part of b overlaps the window.
func (w Window) Intersects(b domain.BBox) bool {
	return w.rect.Intersects(rectFromBounds(b.MinLon, b.MinLat, b.MaxLon, b.MaxLat))
}

// CenterLat is the latitude halfway between the window's bounds.
func (w Window) CenterLat() float64 {
	return (w.MinLat + w.MaxLat) / 2
}

func rectFromBounds(minLon, minLat, maxLon, maxLat float64) s2.Rect {
	return s2.Rect{
		Lat: r1.Interval{Lo: radians(minLat), Hi: radians(maxLat)},
		Lng: s1.IntervalFromEndpoints(radians(minLon), radians(maxLon)),
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
