package csv

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nicored/tsdata/timeseries"
	"github.com/pkg/errors"
)

func init() {
	// Loading all built-in decoders
	err := AddDecoders(
		floatDecoder,
		hiLoDecoder,
		fractionDecoder,
	)

	// This should not happen
	if err != nil {
		panic(err)
	}
}

var (
	dashPattern   = regexp.MustCompile(`-`)
	numberPattern = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)
	digitsPattern = regexp.MustCompile(`^\d+$`)

	// dateLayouts are tried in order once dashes are turned into slashes
	dateLayouts = []string{
		"2006/01/02",
		"2006/1/2",
		"2006/01/02 15:04:05",
		"2006/01/02 15:04",
		"2006/01/02T15:04:05",
		"2006/01/02T15:04:05Z",
		"2006/01/02T15:04:05.000Z",
		"2006/01/02 15:04:05 MST",
		"01/02/2006",
		"1/2/2006",
		"01/02/2006 15:04:05",
		"1/2/2006 15:04",
		"Jan 2, 2006",
		"Jan 2 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"02/Jan/2006",
		"2006/01",
	}

	errEmpty = errors.New("empty value")
)

var floatDecoder = NewFieldDecoder(TypFloat, func(field string, ctx *DecodeContext) (timeseries.Value, error) {
	return ctx.Number(field)
})

var hiLoDecoder = NewFieldDecoder(TypHiLo, func(field string, ctx *DecodeContext) (timeseries.Value, error) {
	return decodePair(field, ctx.Options.CustomBarsSeparator, ctx)
})

var fractionDecoder = NewFieldDecoder(TypFraction, func(field string, ctx *DecodeContext) (timeseries.Value, error) {
	return decodePair(field, ctx.Options.FractionSeparator, ctx)
})

// decodePair splits field on sep into a two-element numeric pair. A missing
// second part decodes to NaN, extra parts are ignored and reported.
func decodePair(field, sep string, ctx *DecodeContext) (timeseries.Value, error) {
	parts := strings.Split(field, sep)

	var (
		pair     timeseries.Pair
		firstErr error
	)

	for i := range pair {
		if i >= len(parts) {
			pair[i] = math.NaN()
			if firstErr == nil {
				firstErr = errors.Errorf("missing part %d, expected two values separated by '%s'", i+1, sep)
			}
			continue
		}

		f, err := ctx.Number(parts[i])
		if err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "part %d", i+1)
		}
		pair[i] = f
	}

	if len(parts) > len(pair) && firstErr == nil {
		firstErr = errors.Errorf("expected two values separated by '%s', got %d", sep, len(parts))
	}

	return pair, firstErr
}

// ParseNumber parses the leading number of s, ignoring leading whitespace and
// any trailing text. It returns NaN and an error when s does not start with a
// number.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimLeft(s, " \t\r\n\v\f")
	if s == "" {
		return math.NaN(), errEmpty
	}

	num := numberPattern.FindString(s)
	if num == "" {
		return math.NaN(), errors.Errorf("not a number: '%s'", s)
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		// out of range values still decode to +/-Inf
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return f, nil
		}
		return math.NaN(), errors.Wrapf(err, "not a number: '%s'", s)
	}

	return f, nil
}

// ParseDate decodes date text in UTC once dashes are normalized to slashes.
// A bare number is read as a year, one or two digit years falling in 1950-2049.
// Text that does not decode returns timeseries.InvalidDate and an error.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(dashPattern.ReplaceAllString(s, "/"))
	if s == "" {
		return timeseries.InvalidDate, errEmpty
	}

	if digitsPattern.MatchString(s) {
		year, err := strconv.Atoi(s)
		if err != nil || year > 9999 {
			return timeseries.InvalidDate, errors.Errorf("invalid year: '%s'", s)
		}
		if len(s) <= 2 {
			year += 2000
			if year >= 2050 {
				year -= 100
			}
		}
		t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		if t.IsZero() {
			return timeseries.InvalidDate, errors.Errorf("invalid year: '%s'", s)
		}
		return t, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return timeseries.InvalidDate, errors.Errorf("not a date: '%s'", s)
}
