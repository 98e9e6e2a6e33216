package domain

// CRS is the coordinate reference system of every GeoTable.
const CRS = "EPSG:4326"

// Column names in the PHMSA incident flat file.
const (
	ColumnLatitude     = "LOCATION_LATITUDE"
	ColumnLongitude    = "LOCATION_LONGITUDE"
	ColumnFatal        = "FATAL"
	ColumnState        = "ONSHORE_STATE_ABBREVIATION"
	ColumnCity         = "ONSHORE_CITY_NAME"
	ColumnCauseDetails = "CAUSE_DETAILS"
	ColumnReportNumber = "REPORT_NUMBER"
)

// RequiredColumns are the columns the report cannot be built without.
var RequiredColumns = []string{
	ColumnLatitude,
	ColumnLongitude,
	ColumnFatal,
	ColumnState,
	ColumnCauseDetails,
}

// Point is a WGS-84 coordinate, longitude first.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Class is the fatality classification of an incident.
type Class int

const (
	ClassInvalid Class = iota
	ClassNonFatal
	ClassFatal
)

func (c Class) String() string {
	switch c {
	case ClassNonFatal:
		return "non_fatal"
	case ClassFatal:
		return "fatal"
	default:
		return "invalid"
	}
}

// Incident is one input record joined with its point geometry.
type Incident struct {
	Line       int     `json:"line"` // 1-based line in the source file; the header is line 1
	Record     Record  `json:"fields"`
	Point      Point   `json:"point"`
	Geohash    string  `json:"geohash"`
	Backfilled bool    `json:"backfilled,omitempty"`
	Class      Class   `json:"-"`
	Severity   float64 `json:"severity"`
}

// GeoTable is the geometry-aware table produced by Geocode.
type GeoTable struct {
	CRS        string
	Columns    []string
	Incidents  []Incident
	Skipped    int // rows dropped for invalid coordinates
	Backfilled int // rows whose coordinates came from the backfill geocoder
}

// Partition splits incidents into the plotted layers. Fatal and NonFatal are
// disjoint; Invalid holds everything that belongs to neither.
type Partition struct {
	NonFatal []Incident
	Fatal    []Incident
	Invalid  []Incident
}

// Plotted returns the number of incidents in the two plotted layers.
func (p Partition) Plotted() int {
	return len(p.NonFatal) + len(p.Fatal)
}
