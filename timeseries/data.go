// Package timeseries holds a collection of data columns aligned along a common
// timeline, kept both row-major and column-major, with a reapplicable stack of
// per-column transforms.
//
// Rows and columns are only kept in sync by the Rebuild* methods. The slices
// returned by the accessors are live: mutating them without a rebuild leaves
// the two views inconsistent.
package timeseries

import (
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/copystructure"
)

// Data is the dual row/column time series container. Column 0 is the date
// column, columns 1..n are data columns.
type Data struct {
	labels []string

	rows          [][]Value
	columns       [][]Value
	untransformed [][]Value

	dateColumn  []Value
	dataColumns [][]Value

	transforms [][]TransformFunc
}

// New creates a container from rows, building the columns by transposition.
func New(labels []string, rows [][]Value) *Data {
	d := &Data{labels: labels, rows: rows}
	d.untransformed = deepCopy(rows)
	d.RebuildColumns()
	return d
}

// Assemble creates a container from rows and columns that are already in sync.
func Assemble(labels []string, rows, columns [][]Value) *Data {
	d := &Data{labels: labels, rows: rows, columns: columns}
	d.untransformed = deepCopy(rows)
	d.RebuildDerived()
	return d
}

// Rows returns the list of rows. Rows keep the width they were given, so a
// ragged input stays ragged while the columns are filled.
func (d *Data) Rows() [][]Value {
	return d.rows
}

// Columns returns the list of all columns, including the date column.
func (d *Data) Columns() [][]Value {
	return d.columns
}

// DateColumn returns the date column.
func (d *Data) DateColumn() []Value {
	return d.dateColumn
}

// DataColumns returns all columns except the date column.
func (d *Data) DataColumns() [][]Value {
	return d.dataColumns
}

// Labels returns the column labels.
func (d *Data) Labels() []string {
	return d.labels
}

// Snapshot returns a deep copy of the rows, safe to hand to a serializer.
func (d *Data) Snapshot() [][]Value {
	return deepCopy(d.rows)
}

// RebuildRows recomputes the rows from the columns.
func (d *Data) RebuildRows() {
	d.rows = transpose(d.columns)
	d.RebuildDerived()
}

// RebuildColumns recomputes the columns from the rows.
func (d *Data) RebuildColumns() {
	d.columns = transpose(d.rows)
	d.RebuildDerived()
}

// RebuildDerived pads the transform stack to the column count and refreshes
// the date and data column views.
func (d *Data) RebuildDerived() {
	for len(d.transforms) < len(d.columns) {
		d.transforms = append(d.transforms, nil)
	}

	d.dateColumn = nil
	d.dataColumns = nil
	if len(d.columns) > 0 {
		d.dateColumn = d.columns[0]
		d.dataColumns = d.columns[1:]
	}
}

func (d *Data) String() string {
	quoted := make([]string, len(d.labels))
	for i, l := range d.labels {
		quoted[i] = "'" + l + "'"
	}

	return fmt.Sprintf("TimeSeries(%s)", strings.Join(quoted, ", "))
}

// transpose swaps rows and columns. The result is as wide as the longest
// input entry; cells missing from shorter entries are filled with NaN.
func transpose(m [][]Value) [][]Value {
	width := 0
	for _, r := range m {
		if len(r) > width {
			width = len(r)
		}
	}

	if width == 0 {
		return [][]Value{}
	}

	out := make([][]Value, width)
	for j := range out {
		out[j] = make([]Value, len(m))
		for i, r := range m {
			if j < len(r) {
				out[j][i] = r[j]
			} else {
				out[j][i] = math.NaN()
			}
		}
	}

	return out
}

func deepCopy(rows [][]Value) [][]Value {
	if rows == nil {
		return nil
	}

	return copystructure.Must(copystructure.Copy(rows)).([][]Value)
}
