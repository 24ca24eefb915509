package fpl

import (
	"fmt"
)

// Frame is a dense named-column matrix, the unit the encoder, scaler and
// booster all operate on. Rows are row-major float64 slices.
type Frame struct {
	Columns []string
	Rows    [][]float64
}

// NewFrame allocates a frame with the given columns and row capacity
func NewFrame(columns []string, capacity int) *Frame {
	return &Frame{
		Columns: columns,
		Rows:    make([][]float64, 0, capacity),
	}
}

// NumRows returns the row count
func (f *Frame) NumRows() int {
	return len(f.Rows)
}

// ColumnIndex returns the index of a named column, or -1
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column extracts one named column as a slice
func (f *Frame) Column(name string) ([]float64, error) {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("frame has no column %s", name)
	}
	out := make([]float64, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Reindex reorders the frame's columns to exactly the given list. Any
// column the frame does not have is a hard error; silently zero-filling a
// missing feature would feed the model garbage that looks valid.
func (f *Frame) Reindex(columns []string) (*Frame, error) {
	indexes := make([]int, len(columns))
	for i, name := range columns {
		idx := f.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("cannot reindex: frame has no column %s", name)
		}
		indexes[i] = idx
	}

	out := NewFrame(columns, len(f.Rows))
	for _, row := range f.Rows {
		newRow := make([]float64, len(columns))
		for i, idx := range indexes {
			newRow[i] = row[idx]
		}
		out.Rows = append(out.Rows, newRow)
	}
	return out, nil
}

// Concat joins two frames column-wise. Row counts must agree.
func Concat(a, b *Frame) (*Frame, error) {
	if len(a.Rows) != len(b.Rows) {
		return nil, fmt.Errorf("cannot concat frames with %d and %d rows", len(a.Rows), len(b.Rows))
	}

	columns := make([]string, 0, len(a.Columns)+len(b.Columns))
	columns = append(columns, a.Columns...)
	columns = append(columns, b.Columns...)

	out := NewFrame(columns, len(a.Rows))
	for i := range a.Rows {
		row := make([]float64, 0, len(columns))
		row = append(row, a.Rows[i]...)
		row = append(row, b.Rows[i]...)
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
