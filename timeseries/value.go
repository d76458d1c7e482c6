package timeseries

import (
	"math"
	"time"
)

// Value is a single cell. It holds one of:
//   - time.Time for the date cell of a row
//   - float64 for a plain numeric cell
//   - Pair for hi-lo, fraction or value/error cells
//   - Group for error-bar grouping of non-float cells
type Value interface{}

// Pair is a two-element numeric cell, e.g. (low, high) or (numerator, denominator).
type Pair [2]float64

// Group holds a (value, error) grouping of cells that are not plain floats.
type Group []Value

// InvalidDate is the sentinel returned for date text that could not be decoded.
var InvalidDate = time.Time{}

// IsInvalidDate reports whether v is the invalid date sentinel.
func IsInvalidDate(v Value) bool {
	t, ok := v.(time.Time)
	return ok && t.IsZero()
}

// Float returns the float held by v, if any.
func Float(v Value) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

// MapNumeric applies f to every numeric component of v. Pairs and groups are
// mapped element-wise and dates are returned unchanged.
func MapNumeric(v Value, f func(float64) float64) Value {
	switch val := v.(type) {
	case float64:
		return f(val)
	case Pair:
		return Pair{f(val[0]), f(val[1])}
	case Group:
		out := make(Group, len(val))
		for i, g := range val {
			out[i] = MapNumeric(g, f)
		}
		return out
	default:
		return v
	}
}

// Primary returns the first numeric component of v, or NaN if v carries none.
func Primary(v Value) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case Pair:
		return val[0]
	case Group:
		if len(val) > 0 {
			return Primary(val[0])
		}
	}

	return math.NaN()
}
