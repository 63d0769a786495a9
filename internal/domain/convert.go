package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	cmPerInch = 2.54
	kgPerLb   = 0.453592
)

// Unit systems accepted for height and weight.
const (
	UnitMetric   = "metric"
	UnitImperial = "imperial"
)

// ErrNotFinite is returned by Number.Float64 for NaN and infinities,
// including values too large for a float64.
var ErrNotFinite = errors.New("value is not a finite number")

// NormalizeUnit maps a unit tag onto UnitMetric or UnitImperial. Anything
// other than imperial is treated as metric.
func NormalizeUnit(unit string) string {
	if strings.EqualFold(strings.TrimSpace(unit), UnitImperial) {
		return UnitImperial
	}
	return UnitMetric
}

// HeightToCM converts a height to centimetres. Imperial heights are given as
// feet plus an optional inches component.
func HeightToCM(unit string, value, inches float64) float64 {
	if unit == UnitImperial {
		return (value*12 + inches) * cmPerInch
	}
	return value
}

// WeightToKG converts a weight to kilograms.
func WeightToKG(unit string, value float64) float64 {
	if unit == UnitImperial {
		return value * kgPerLb
	}
	return value
}

// Round rounds v to the given number of decimal places, half away from zero.
// NaN and infinities round to zero.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Number is a JSON value that may arrive as a number or a numeric string.
// Validation is deferred to whoever parses it so a malformed value produces
// an InvalidInput error rather than a decoder failure.
type Number string

// UnmarshalJSON accepts numbers, strings and null.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = ""
		return nil
	}
	if uq, err := strconv.Unquote(s); err == nil {
		s = uq
	}
	*n = Number(strings.TrimSpace(s))
	return nil
}

// IsSet reports whether a value was supplied.
func (n Number) IsSet() bool { return n != "" }

// Float64 parses the value. Only finite numbers are accepted.
func (n Number) Float64() (float64, error) {
	v, err := strconv.ParseFloat(string(n), 64)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}
	return v, err
}

// NumberFrom formats f as a Number.
func NumberFrom(f float64) Number {
	return Number(strconv.FormatFloat(f, 'f', -1, 64))
}
