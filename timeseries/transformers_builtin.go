package timeseries

import (
	"math"
)

func init() {
	// Loading all built-in transformers
	err := AddTransformers(
		scaleTransformer,
		offsetTransformer,
		logTransformer,
		absTransformer,
		diffTransformer,
		normalizeTransformer,
		fillNaNTransformer,
	)

	// This should not happen
	if err != nil {
		panic(err)
	}
}

var scaleTransformer = NewBuiltin("scale", ArgDef{"factor": typFloat}, func(args FuncArgs) (TransformFunc, error) {
	factor, err := argFloat(args, "factor")
	if err != nil {
		return nil, err
	}

	return numeric(func(f float64) float64 { return f * factor }), nil
})

var offsetTransformer = NewBuiltin("offset", ArgDef{"delta": typFloat}, func(args FuncArgs) (TransformFunc, error) {
	delta, err := argFloat(args, "delta")
	if err != nil {
		return nil, err
	}

	return numeric(func(f float64) float64 { return f + delta }), nil
})

// log maps non-positive values to NaN
var logTransformer = NewBuiltin("log", ArgDef{}, func(FuncArgs) (TransformFunc, error) {
	return numeric(func(f float64) float64 {
		if f > 0 {
			return math.Log(f)
		}
		return math.NaN()
	}), nil
})

var absTransformer = NewBuiltin("abs", ArgDef{}, func(FuncArgs) (TransformFunc, error) {
	return numeric(math.Abs), nil
})

var fillNaNTransformer = NewBuiltin("fillNaN", ArgDef{"value": typFloat}, func(args FuncArgs) (TransformFunc, error) {
	fill, err := argFloat(args, "value")
	if err != nil {
		return nil, err
	}

	return numeric(func(f float64) float64 {
		if math.IsNaN(f) {
			return fill
		}
		return f
	}), nil
})

// diff keeps the column length: the first row has no predecessor and becomes NaN
var diffTransformer = NewBuiltin("diff", ArgDef{}, func(FuncArgs) (TransformFunc, error) {
	return func(v Value, row int, column []Value) Value {
		if row == 0 {
			return MapNumeric(v, func(float64) float64 { return math.NaN() })
		}

		prev := column[row-1]
		switch cur := v.(type) {
		case float64:
			p, ok := prev.(float64)
			if !ok {
				return math.NaN()
			}
			return cur - p
		case Pair:
			p, ok := prev.(Pair)
			if !ok {
				return Pair{math.NaN(), math.NaN()}
			}
			return Pair{cur[0] - p[0], cur[1] - p[1]}
		}

		return v
	}, nil
})

// normalize applies a z-score over the primary component of the column's values
var normalizeTransformer = NewBuiltin("normalize", ArgDef{}, func(FuncArgs) (TransformFunc, error) {
	var (
		ready  bool
		mean   float64
		stdDev float64
	)

	return func(v Value, row int, column []Value) Value {
		// columns are mapped from row 0, statistics are computed once per column
		if row == 0 || !ready {
			mean, stdDev = meanStd(column)
			ready = true
		}

		if stdDev == 0 {
			return v
		}

		return MapNumeric(v, func(f float64) float64 { return (f - mean) / stdDev })
	}, nil
})

func numeric(f func(float64) float64) TransformFunc {
	return func(v Value, row int, column []Value) Value {
		return MapNumeric(v, f)
	}
}

// meanStd returns the mean and sample standard deviation of the primary
// components of values, ignoring NaN
func meanStd(values []Value) (float64, float64) {
	var (
		sum float64
		n   int
	)

	for _, v := range values {
		f := Primary(v)
		if math.IsNaN(f) {
			continue
		}
		sum += f
		n++
	}

	if n < 2 {
		return 0, 0
	}

	mean := sum / float64(n)
	sumSq := 0.0
	for _, v := range values {
		f := Primary(v)
		if math.IsNaN(f) {
			continue
		}
		diff := f - mean
		sumSq += diff * diff
	}

	return mean, math.Sqrt(sumSq / float64(n-1))
}
