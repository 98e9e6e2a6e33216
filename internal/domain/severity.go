package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidFatality is returned when a fatality value is not a number.
var ErrInvalidFatality = errors.New("invalid fatality value")

// NonFatalPlaceholder is the severity given to incidents with zero fatalities.
const NonFatalPlaceholder = 0.1

const fatalZero = "0"

// ScaleSeverity converts a fatality count into a marker magnitude. The literal
// "0" becomes NonFatalPlaceholder; any other value passes through as parsed.
func ScaleSeverity(fatal string) (float64, error) {
	if fatal == fatalZero {
		return NonFatalPlaceholder, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(fatal), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFatality, fatal)
	}
	return v, nil
}

// Classify maps a fatality value to its plotted layer. Only the exact literal
// "0" is non-fatal; a value must parse to a finite number above zero to be fatal.
func Classify(fatal string) Class {
	if fatal == fatalZero {
		return ClassNonFatal
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(fatal), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ClassInvalid
	}
	return ClassFatal
}

// PartitionIncidents classifies every incident by the fatality column and
// assigns its severity. Input order is kept inside each layer.
func PartitionIncidents(geo *GeoTable, fatalColumn string) Partition {
	var p Partition
	for _, inc := range geo.Incidents {
		fatal := inc.Record[fatalColumn]
		inc.Class = Classify(fatal)
		if inc.Class == ClassInvalid {
			p.Invalid = append(p.Invalid, inc)
			continue
		}

		// Classify already guarantees the value parses.
		inc.Severity, _ = ScaleSeverity(fatal)
		if inc.Class == ClassFatal {
			p.Fatal = append(p.Fatal, inc)
		} else {
			p.NonFatal = append(p.NonFatal, inc)
		}
	}
	return p
}
