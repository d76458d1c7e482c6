package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2020, time.January, d, 0, 0, 0, 0, time.UTC)
}

func sample() *Data {
	return New([]string{"date", "a", "b", "c"}, [][]Value{
		{day(1), 1.0, 10.0, 100.0},
		{day(2), 2.0, 20.0, 200.0},
		{day(3), 3.0, 30.0, 300.0},
	})
}

func plus(n float64) TransformFunc {
	return func(v Value, row int, column []Value) Value {
		return MapNumeric(v, func(f float64) float64 { return f + n })
	}
}

func times(n float64) TransformFunc {
	return func(v Value, row int, column []Value) Value {
		return MapNumeric(v, func(f float64) float64 { return f * n })
	}
}

func TestNew(t *testing.T) {
	d := sample()

	assert.Equal(t, []string{"date", "a", "b", "c"}, d.Labels())
	require.Len(t, d.Columns(), 4)
	assert.Equal(t, []Value{day(1), day(2), day(3)}, d.DateColumn())
	assert.Equal(t, []Value{10.0, 20.0, 30.0}, d.Columns()[2])

	require.Len(t, d.DataColumns(), 3)
	assert.Equal(t, []Value{1.0, 2.0, 3.0}, d.DataColumns()[0])
	assert.Len(t, d.transforms, 4)
}

func TestAssemble(t *testing.T) {
	rows := [][]Value{{day(1), 1.0}, {day(2), 2.0}}
	cols := [][]Value{{day(1), day(2)}, {1.0, 2.0}}

	d := Assemble([]string{"date", "a"}, rows, cols)

	assert.Equal(t, []Value{day(1), day(2)}, d.DateColumn())
	assert.Equal(t, [][]Value{{1.0, 2.0}}, d.DataColumns())
	assert.Len(t, d.transforms, 2)
}

func TestEmpty(t *testing.T) {
	d := Assemble(nil, nil, nil)

	assert.Nil(t, d.Rows())
	assert.Nil(t, d.DateColumn())
	assert.Nil(t, d.DataColumns())
	assert.Nil(t, d.Snapshot())
	assert.Equal(t, ErrNoColumns, d.AddTransform(plus(1)))
	assert.Equal(t, ErrNoColumns, d.AddDataTransform(plus(1)))
}

func TestNilTransform(t *testing.T) {
	d := sample()

	assert.Equal(t, ErrNilTransform, d.AddTransform(nil))
	assert.Equal(t, ErrNilTransform, d.AddDataTransform(nil))
}

func TestClearTransformsRestoresRows(t *testing.T) {
	tests := []struct {
		name  string
		apply func(d *Data) error
	}{
		{"none", func(d *Data) error { return nil }},
		{"single column", func(d *Data) error { return d.AddTransform(times(2), 1) }},
		{"data columns", func(d *Data) error { return d.AddDataTransform(plus(5)) }},
		{"stacked", func(d *Data) error {
			if err := d.AddTransform(times(3), 1, 2); err != nil {
				return err
			}
			if err := d.AddTransform(plus(1), -1); err != nil {
				return err
			}
			return d.AddDataTransform(times(-1))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sample()
			initial := d.Snapshot()

			require.NoError(t, tt.apply(d))
			d.ClearTransforms()

			assert.Equal(t, initial, d.Rows())
			assert.Equal(t, []Value{1.0, 2.0, 3.0}, d.Columns()[1])
			assert.Len(t, d.transforms, 4)
			for _, fns := range d.transforms {
				assert.Empty(t, fns)
			}
		})
	}
}

func TestClearTransformsIsRepeatable(t *testing.T) {
	d := sample()
	initial := d.Snapshot()

	require.NoError(t, d.AddDataTransform(times(2)))
	d.ClearTransforms()
	require.NoError(t, d.AddDataTransform(times(4)))
	d.ClearTransforms()

	assert.Equal(t, initial, d.Rows())
}

func TestRebuildIsIdempotent(t *testing.T) {
	d := sample()

	d.RebuildColumns()
	d.RebuildRows()
	rows, cols := d.Snapshot(), d.Columns()

	d.RebuildColumns()
	d.RebuildRows()

	assert.Equal(t, rows, d.Rows())
	assert.Equal(t, cols, d.Columns())

	d.RebuildRows()
	d.RebuildColumns()
	assert.Equal(t, rows, d.Rows())
}

func TestAddTransformComposes(t *testing.T) {
	d := sample()

	var seen []Value
	observe := func(v Value, row int, column []Value) Value {
		seen = append(seen, v)
		return MapNumeric(v, func(f float64) float64 { return f * 10 })
	}

	require.NoError(t, d.AddTransform(plus(1), 1))
	require.NoError(t, d.AddTransform(observe, 1))

	assert.Equal(t, []Value{2.0, 3.0, 4.0}, seen)
	assert.Equal(t, []Value{20.0, 30.0, 40.0}, d.Columns()[1])
	assert.Equal(t, []Value{day(1), 20.0, 10.0, 100.0}, d.Rows()[0])
}

func TestAddTransformAllColumns(t *testing.T) {
	d := New([]string{"date", "a"}, [][]Value{{day(1), 1.0}, {day(2), 2.0}})

	require.NoError(t, d.AddTransform(times(2)))

	// dates carry no numeric component
	assert.Equal(t, []Value{day(1), day(2)}, d.DateColumn())
	assert.Equal(t, []Value{2.0, 4.0}, d.Columns()[1])
}

func TestAddTransformNegativeIndex(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		affected int
	}{
		{"last", -1, 3},
		{"second to last", -2, 2},
		{"wraps", -5, 3},
		{"out of range", 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sample()
			before := d.Snapshot()

			require.NoError(t, d.AddTransform(times(0), tt.index))

			for i, col := range d.Columns() {
				if i == tt.affected {
					assert.Equal(t, []Value{0.0, 0.0, 0.0}, col)
					continue
				}
				for r := range col {
					assert.Equal(t, before[r][i], col[r])
				}
			}
		})
	}
}

func TestAddDataTransform(t *testing.T) {
	d := sample()

	require.NoError(t, d.AddDataTransform(plus(1)))

	assert.Equal(t, []Value{day(1), day(2), day(3)}, d.DateColumn())
	assert.Equal(t, []Value{2.0, 3.0, 4.0}, d.Columns()[1])
	assert.Equal(t, []Value{301.0}, d.Rows()[2][3:])
	assert.Empty(t, d.transforms[0])
}

func TestAddDataTransformDateOnly(t *testing.T) {
	d := New([]string{"date"}, [][]Value{{day(1)}})

	assert.NoError(t, d.AddDataTransform(plus(1)))
	assert.Equal(t, []Value{day(1)}, d.DateColumn())
}

func TestTransformArguments(t *testing.T) {
	d := sample()

	var rows []int
	require.NoError(t, d.AddTransform(func(v Value, row int, column []Value) Value {
		rows = append(rows, row)
		assert.Len(t, column, 3)
		return column[len(column)-1-row]
	}, 2))

	assert.Equal(t, []int{0, 1, 2}, rows)
	assert.Equal(t, []Value{30.0, 20.0, 10.0}, d.Columns()[2])
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	d := New([]string{"date", "hilo"}, [][]Value{
		{day(1), Pair{1, 2}},
		{day(2), Group{Pair{3, 4}, 0.5}},
	})

	snap := d.Snapshot()
	snap[0][1] = 42.0
	snap[1][1].(Group)[1] = 7.0
	snap[1] = nil

	assert.Equal(t, Pair{1, 2}, d.Rows()[0][1])
	assert.Equal(t, Group{Pair{3, 4}, 0.5}, d.Rows()[1][1])
}

func TestRaggedRowsAreFilled(t *testing.T) {
	d := New([]string{"date", "a", "b"}, [][]Value{
		{day(1), 1.0},
		{day(2), 2.0, 3.0},
	})

	require.Len(t, d.Columns(), 3)
	assert.Len(t, d.Columns()[2], 2)
	assert.True(t, math.IsNaN(d.Columns()[2][0].(float64)))
	assert.Equal(t, 3.0, d.Columns()[2][1])

	// rows are left as given until rebuilt from the columns
	assert.Len(t, d.Rows()[0], 2)
	d.RebuildRows()
	assert.Len(t, d.Rows()[0], 3)
}

func TestTransformsKeepRowWidths(t *testing.T) {
	d := New([]string{"date", "a", "b"}, [][]Value{
		{day(1), 1.0},
		{day(2), 2.0, 3.0},
	})

	require.NoError(t, d.AddDataTransform(times(2)))

	assert.Equal(t, []Value{day(1), 2.0}, d.Rows()[0])
	assert.Equal(t, []Value{day(2), 4.0, 6.0}, d.Rows()[1])
	assert.Len(t, d.Columns()[2], 2)

	d.ClearTransforms()
	assert.Equal(t, []Value{day(1), 1.0}, d.Rows()[0])
	assert.Equal(t, []Value{day(2), 2.0, 3.0}, d.Rows()[1])
}

func TestString(t *testing.T) {
	assert.Equal(t, "TimeSeries('date', 'a', 'b', 'c')", sample().String())
	assert.Equal(t, "TimeSeries()", Assemble(nil, nil, nil).String())
}
