package domain

// BBox is an axis-aligned longitude/latitude bounding box.
type BBox struct {
	MinLon, MinLat float64
	MaxLon, MaxLat float64
}

// Boundary is one named polygon of the base map, e.g. a U.S. state. Each ring
// is a closed sequence of points; holes are rings inside their outer ring.
type Boundary struct {
	Name  string
	Rings [][]Point
	BBox  BBox
}
