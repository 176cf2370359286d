// FILE: lixenwraith/zconfig/units.go
package zconfig

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Byte multipliers. Short forms are binary; two-letter forms are decimal
// only when metric prefixes are allowed.
var byteUnits = map[string]float64{
	"bit": 0.125,
	"b":   1,

	"kib": 1 << 10,
	"mib": 1 << 20,
	"gib": 1 << 30,
	"tib": 1 << 40,
	"pib": 1 << 50,
	"eib": 1 << 60,

	"k": 1 << 10,
	"m": 1 << 20,
	"g": 1 << 30,
	"t": 1 << 40,
	"p": 1 << 50,
	"e": 1 << 60,

	"kb": 1e3,
	"mb": 1e6,
	"gb": 1e9,
	"tb": 1e12,
	"pb": 1e15,
	"eb": 1e18,
}

var durationUnits = map[string]time.Duration{
	"us": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  24 * time.Hour,
	"w":  7 * 24 * time.Hour,
}

const (
	maxByteUnitLen     = 3
	maxDurationUnitLen = 2
)

// splitUnits separates a trailing unit of at most maxUnitLen characters
// from the number in front of it. Digits and dots never belong to the unit.
func splitUnits(val string, maxUnitLen int, defaultUnit string) (float64, string, error) {
	val = strings.TrimSpace(val)
	unitLen := min(maxUnitLen, len(val))
	for unitLen > 0 {
		ch := val[len(val)-unitLen]
		if (ch < '0' || ch > '9') && ch != '.' {
			break
		}
		unitLen--
	}

	number, unit := val, defaultUnit
	if unitLen > 0 {
		number = strings.TrimSpace(val[:len(val)-unitLen])
		unit = strings.TrimSpace(val[len(val)-unitLen:])
	}

	n, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, "", err
	}
	return n, unit, nil
}

// ParseBytes converts a size such as "2kib", "512bit" or "10 MB" to bytes.
// Without allowMetric, two-letter units are read as binary (kb means kib).
func ParseBytes(val string, allowMetric bool) (float64, error) {
	n, unit, err := splitUnits(val, maxByteUnitLen, "b")
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", val, err)
	}
	return convertBytes(n, unit, allowMetric)
}

func convertBytes(n float64, unit string, allowMetric bool) (float64, error) {
	unit = strings.ToLower(unit)
	if !allowMetric && len(unit) == 2 {
		unit = unit[:1] + "i" + unit[1:]
	}
	mult, ok := byteUnits[unit]
	if !ok {
		return 0, &UnitError{Unit: unit, Kind: "byte"}
	}
	return n * mult, nil
}

// ParseDuration converts values such as "23w", "15 m" or "250ms".
// A bare number is read as seconds.
func ParseDuration(val string) (time.Duration, error) {
	n, unit, err := splitUnits(val, maxDurationUnitLen, "s")
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", val, err)
	}
	d, err := convertDuration(n, unit)
	if err != nil && !errors.Is(err, ErrUnit) {
		return 0, fmt.Errorf("invalid duration %q: %w", val, err)
	}
	return d, err
}

func convertDuration(n float64, unit string) (time.Duration, error) {
	unit = strings.ToLower(unit)
	mult, ok := durationUnits[unit]
	if !ok {
		return 0, &UnitError{Unit: unit, Kind: "duration"}
	}
	return scaleDuration(n, mult)
}

// scaleDuration multiplies n by mult, failing with strconv.ErrRange when the
// product does not fit a time.Duration.
func scaleDuration(n float64, mult time.Duration) (time.Duration, error) {
	d := n * float64(mult)
	if math.IsNaN(d) || math.Abs(d) >= math.MaxInt64 {
		return 0, fmt.Errorf("duration out of range: %w", strconv.ErrRange)
	}
	return time.Duration(d), nil
}
