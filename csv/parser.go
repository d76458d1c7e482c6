// Package csv parses delimited text (CSV or TSV) into a date-aligned
// timeseries.Data.
//
// Parsing is lenient: malformed numbers decode to NaN, malformed dates to
// timeseries.InvalidDate and rows with fewer than two fields are dropped.
// Enable Options.Strict to also collect a DecodeError per failed cell.
//
// A Parser shares no state with other parsers and may be used from its own
// goroutine without coordination.
package csv

import (
	"fmt"
	"math"
	"strings"

	"github.com/nicored/tsdata/timeseries"
)

// DecodeError reports a field or date that did not decode
type DecodeError struct {
	Line   int // 1-based line number in the raw text
	Column int // 0 is the date column
	Text   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Cause returns the underlying decode error
func (e *DecodeError) Cause() error {
	return e.Err
}

// Parser imports delimited text into the embedded time series container
type Parser struct {
	*timeseries.Data

	opts        *Options
	compiled    *compiled
	diagnostics []*DecodeError
}

// New creates a parser with a copy of opts and parses raw. A nil opts uses
// DefaultOptions. Only invalid options return an error; raw is parsed
// leniently, see ParseText.
func New(raw interface{}, opts *Options) (*Parser, error) {
	if opts == nil {
		opts = DefaultOptions()
	} else {
		opts = opts.Clone()
	}

	c, err := opts.compile()
	if err != nil {
		return nil, err
	}

	p := &Parser{
		Data:     timeseries.Assemble(opts.Clone().Labels, nil, nil),
		opts:     opts,
		compiled: c,
	}

	return p.ParseText(raw), nil
}

// Options returns a copy of the parser's options
func (p *Parser) Options() *Options {
	return p.opts.Clone()
}

// Diagnostics returns the decode failures of the last parse. It is always
// empty unless Options.Strict is set.
func (p *Parser) Diagnostics() []*DecodeError {
	return p.diagnostics
}

func (p *Parser) String() string {
	return "CSV" + strings.TrimPrefix(p.Data.String(), "TimeSeries")
}

// ParseText parses raw, a string or a []byte, and replaces the parser's
// rows, columns and labels, resetting the transform stack. Any other input
// leaves the parser unchanged. The parser is returned in both cases.
func (p *Parser) ParseText(raw interface{}) *Parser {
	var text string
	switch r := raw.(type) {
	case string:
		text = r
	case []byte:
		text = string(r)
	default:
		p.compiled.logger.Debugf("csv: ignoring non-textual input of type %T", raw)
		return p
	}

	o := p.opts
	c := p.compiled
	ctx := &DecodeContext{Options: o}

	lines := strings.Split(text, o.RowSeparator)

	delim := o.ColumnSeparator
	if first := lines[0]; !strings.Contains(first, delim) && strings.Contains(first, "\t") {
		c.logger.Debugf("csv: no '%s' in first line, splitting on tabs", delim)
		delim = "\t"
	}

	fill := timeseries.Value(math.NaN())
	if o.PadRows {
		fill = o.PadRowsValue
	}

	labels := o.Clone().Labels
	hasHeaders := len(labels) != 0

	rows := [][]timeseries.Value{}
	columns := [][]timeseries.Value{}
	p.diagnostics = nil

	for i, line := range lines {
		lineNo := i + 1

		if o.StripComments {
			line = c.comment.ReplaceAllString(line, "")
		}

		if o.SkipBlankLines && (len(line) == 0 || c.blankLine.MatchString(line)) {
			continue
		}

		cols := strings.Split(line, delim)

		if !hasHeaders {
			hasHeaders = true
			labels = make([]string, len(cols))
			for j, col := range cols {
				labels[j] = strings.TrimSpace(col)
			}
			continue
		}

		if len(cols) < 2 {
			c.logger.Debugf("csv: dropping line %d, a row needs a date and at least one value", lineNo)
			continue
		}

		date, err := ParseDate(cols[0])
		p.report(lineNo, 0, cols[0], err)

		fields := make([]timeseries.Value, 0, len(cols))
		for j, field := range cols[1:] {
			v, err := c.decoder.Decode(field, ctx)
			p.report(lineNo, j+1, field, err)
			fields = append(fields, v)
		}

		if o.ErrorBars {
			fields = groupErrorBars(fields)
		}

		row := append([]timeseries.Value{date}, fields...)
		rows = append(rows, row)

		for idx, v := range row {
			if idx == len(columns) {
				// earlier rows had no cell at this index
				col := make([]timeseries.Value, len(rows)-1, len(rows))
				for k := range col {
					col[k] = fill
				}
				columns = append(columns, col)
			}
			columns[idx] = append(columns[idx], v)
		}

		for idx := len(row); idx < len(columns); idx++ {
			columns[idx] = append(columns[idx], fill)
		}
	}

	if o.PadRows {
		for i, row := range rows {
			for len(row) < len(columns) {
				row = append(row, fill)
			}
			rows[i] = row
		}
	}

	p.Data = timeseries.Assemble(labels, rows, columns)
	return p
}

func (p *Parser) report(line, column int, text string, err error) {
	if err == nil || !p.opts.Strict {
		return
	}

	p.diagnostics = append(p.diagnostics, &DecodeError{
		Line:   line,
		Column: column,
		Text:   text,
		Err:    err,
	})
}

// groupErrorBars regroups decoded values into consecutive (value, error)
// pairs. Floats group into a timeseries.Pair, anything else into a
// timeseries.Group. A trailing value without an error gets a NaN error.
func groupErrorBars(fields []timeseries.Value) []timeseries.Value {
	out := make([]timeseries.Value, 0, (len(fields)+1)/2)

	for i := 0; i < len(fields); i += 2 {
		val := fields[i]
		var errVal timeseries.Value = math.NaN()
		if i+1 < len(fields) {
			errVal = fields[i+1]
		}

		f, okVal := val.(float64)
		e, okErr := errVal.(float64)
		if okVal && okErr {
			out = append(out, timeseries.Pair{f, e})
			continue
		}

		out = append(out, timeseries.Group{val, errVal})
	}

	return out
}
