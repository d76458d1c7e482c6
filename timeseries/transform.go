package timeseries

import (
	"github.com/pkg/errors"
)

var (
	// ErrNoColumns is returned when transforming a container without columns.
	ErrNoColumns = errors.New("time series has no columns")

	// ErrNilTransform is returned when registering a nil transform function.
	ErrNilTransform = errors.New("transform function is nil")
)

// TransformFunc maps a single value of a column. It receives the value, its row
// index and the column being mapped, as it was before this transform ran.
type TransformFunc func(v Value, row int, column []Value) Value

// ApplyTransforms runs the transform stack over the untransformed columns,
// column by column and in registration order, then rebuilds the rows. Rebuilt
// rows keep the width they had before any transform.
func (d *Data) ApplyTransforms() {
	d.rows = deepCopy(d.untransformed)
	d.RebuildColumns()

	for idx, fns := range d.transforms {
		if idx >= len(d.columns) {
			break
		}

		for _, fn := range fns {
			col := d.columns[idx]
			mapped := make([]Value, len(col))
			for i, v := range col {
				mapped[i] = fn(v, i, col)
			}
			d.columns[idx] = mapped
		}
	}

	d.RebuildRows()

	for i, row := range d.rows {
		if i < len(d.untransformed) && len(d.untransformed[i]) < len(row) {
			d.rows[i] = row[:len(d.untransformed[i])]
		}
	}
}

// ClearTransforms drops every transform and restores the rows as they were
// right after construction.
func (d *Data) ClearTransforms() {
	d.transforms = nil
	d.rows = deepCopy(d.untransformed)
	d.RebuildColumns()
}

// AddTransform registers fn on the given column indices and reapplies the
// whole stack. Without indices fn is registered on every column. Negative
// indices are offset from the end of the column list.
func (d *Data) AddTransform(fn TransformFunc, indices ...int) error {
	if fn == nil {
		return ErrNilTransform
	}

	numCols := len(d.columns)
	if numCols == 0 {
		return ErrNoColumns
	}

	if len(indices) == 0 {
		indices = columnRange(0, numCols)
	}

	for _, idx := range indices {
		idx %= numCols
		if idx < 0 {
			idx += numCols
		}
		d.transforms[idx] = append(d.transforms[idx], fn)
	}

	d.ApplyTransforms()
	return nil
}

// AddDataTransform registers fn on every column except the date column.
func (d *Data) AddDataTransform(fn TransformFunc) error {
	if fn == nil {
		return ErrNilTransform
	}

	if len(d.columns) == 0 {
		return ErrNoColumns
	}

	if len(d.columns) == 1 {
		d.ApplyTransforms()
		return nil
	}

	return d.AddTransform(fn, columnRange(1, len(d.columns))...)
}

func columnRange(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}
