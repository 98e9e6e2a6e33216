// Package domain models PHMSA gas transmission and gathering incident reports.
//
// # Data Source
//
// Incident reports come from the Pipeline and Hazardous Materials Safety
// Administration (PHMSA) flat files, e.g.
// incident_gas_transmission_gathering_jan2010_present.txt. The file is tab
// delimited; the first line holds the column names and every following line is
// one reported incident. Columns are matched by exact name (see the Column*
// constants). Every value is text until a stage converts it.
//
// # Coordinates
//
// LOCATION_LATITUDE and LOCATION_LONGITUDE are decimal degrees (WGS84). Points
// are stored longitude first, matching GeoJSON and EPSG:4326 axis order used by
// the renderers:
//
//	"40.0" / "-75.0"  →  Point{Lon: -75.0, Lat: 40.0}
//
// Blank coordinates can be backfilled from ONSHORE_CITY_NAME and
// ONSHORE_STATE_ABBREVIATION when a forward [Geocoder] is configured. Anything
// else that does not parse as a float is an [ErrInvalidCoordinate].
//
// # Fatality Classification
//
// FATAL holds the number of fatalities as text. Classification is exhaustive:
//
//	"0"               → ClassNonFatal (severity placeholder 0.1)
//	parses to > 0     → ClassFatal    (severity = parsed value)
//	anything else     → ClassInvalid  ("", "-1", "0.0", "n/a", NaN, Inf)
//
// Only the exact literal "0" is non-fatal. The placeholder keeps non-fatal
// incidents visible as small markers instead of vanishing at zero size.
//
// # Word Cloud Text
//
// The word cloud is built from one column joined with single spaces. The
// default is ONSHORE_STATE_ABBREVIATION; CAUSE_DETAILS can be used with
// whitespace stripping so each multi-word cause counts as a single token.
package domain
