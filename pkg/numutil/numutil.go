package numutil

import (
	"math"
	"strconv"
	"strings"
)

// nullMarkers are string values treated as "no value" rather than parse errors.
var nullMarkers = map[string]struct{}{
	"":     {},
	"nan":  {},
	"inf":  {},
	"-inf": {},
	"null": {},
	"none": {},
}

// ParseFloat converts a raw string into a float64. It returns the parsed value
// and true for well-formed numbers, and (0, false) for the known null markers
// ("", "nan", "inf", "null", "none", case-insensitive) as well as anything
// else that does not parse. Callers that need the lossy zero default can
// ignore the second return; callers that must tell "truly zero" from
// "unknown" should not.
func ParseFloat(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if _, isMarker := nullMarkers[strings.ToLower(trimmed)]; isMarker {
		return 0, false
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FloatOrZero is the lossy helper used by the feed normalizer: unparseable
// values become 0.0 instead of raising.
func FloatOrZero(raw string) float64 {
	v, _ := ParseFloat(raw)
	return v
}

// Round2 rounds half away from zero to two decimal places, the display
// convention for all calculation outputs. Negative values mirror positive
// ones, so -1.125 rounds to -1.13 just as 1.125 rounds to 1.13.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	if v < 0 {
		return -math.Floor(-v*100+0.5) / 100
	}
	return math.Floor(v*100+0.5) / 100
}

// SafeFloat maps non-finite values to nil so that encoded JSON never carries
// NaN or Infinity. Finite values are returned rounded for display.
func SafeFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := Round2(v)
	return &r
}
