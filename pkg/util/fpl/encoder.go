package fpl

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// OneHotEncoder expands integer-coded categorical columns into indicator
// columns, one per category seen during fitting. A value unseen at fit
// time encodes to an all-zero block rather than an error, so inference on
// a newly promoted team degrades gracefully instead of aborting.
type OneHotEncoder struct {
	Columns    []string             `json:"columns"`
	Categories map[string][]float64 `json:"categories"`
}

// NewOneHotEncoder returns an unfitted encoder over the given columns
func NewOneHotEncoder(columns []string) *OneHotEncoder {
	return &OneHotEncoder{
		Columns:    columns,
		Categories: make(map[string][]float64),
	}
}

// Fit learns the sorted distinct values of each categorical column
func (e *OneHotEncoder) Fit(frame *Frame) error {
	for _, col := range e.Columns {
		values, err := frame.Column(col)
		if err != nil {
			return err
		}
		seen := make(map[float64]bool)
		for _, v := range values {
			seen[v] = true
		}
		categories := make([]float64, 0, len(seen))
		for v := range seen {
			categories = append(categories, v)
		}
		sort.Float64s(categories)
		e.Categories[col] = categories
	}
	return nil
}

// FeatureNames lists the expanded column names in encoding order,
// e.g. home_or_away_id_1, home_or_away_id_2
func (e *OneHotEncoder) FeatureNames() []string {
	var names []string
	for _, col := range e.Columns {
		for _, cat := range e.Categories[col] {
			names = append(names, col+"_"+strconv.FormatFloat(cat, 'g', -1, 64))
		}
	}
	return names
}

// Transform expands the categorical columns of a frame into indicator
// columns. The encoder must have been fitted.
func (e *OneHotEncoder) Transform(frame *Frame) (*Frame, error) {
	if len(e.Categories) == 0 {
		return nil, fmt.Errorf("encoder has not been fitted")
	}

	indexes := make([]int, len(e.Columns))
	for i, col := range e.Columns {
		idx := frame.ColumnIndex(col)
		if idx < 0 {
			return nil, fmt.Errorf("cannot encode: frame has no column %s", col)
		}
		indexes[i] = idx
	}

	out := NewFrame(e.FeatureNames(), len(frame.Rows))
	for _, row := range frame.Rows {
		encoded := make([]float64, 0, len(out.Columns))
		for i, col := range e.Columns {
			value := row[indexes[i]]
			for _, cat := range e.Categories[col] {
				if value == cat {
					encoded = append(encoded, 1.0)
				} else {
					encoded = append(encoded, 0.0)
				}
			}
		}
		out.Rows = append(out.Rows, encoded)
	}
	return out, nil
}

// InverseTransform recovers the original categorical values from encoded
// rows. An all-zero block (an unknown category at encode time) becomes the
// missing sentinel since the original value was never in the vocabulary.
func (e *OneHotEncoder) InverseTransform(frame *Frame) (*Frame, error) {
	if len(e.Categories) == 0 {
		return nil, fmt.Errorf("encoder has not been fitted")
	}
	want := len(e.FeatureNames())
	if len(frame.Columns) != want {
		return nil, fmt.Errorf("cannot decode: expected %d indicator columns, frame has %d", want, len(frame.Columns))
	}

	out := NewFrame(e.Columns, len(frame.Rows))
	for _, row := range frame.Rows {
		decoded := make([]float64, len(e.Columns))
		offset := 0
		for i, col := range e.Columns {
			decoded[i] = SentinelFloat
			for j, cat := range e.Categories[col] {
				if row[offset+j] == 1.0 {
					decoded[i] = cat
					break
				}
			}
			offset += len(e.Categories[col])
		}
		out.Rows = append(out.Rows, decoded)
	}
	return out, nil
}

// StandardScaler normalises each column to zero mean and unit variance.
// A constant column keeps its values by scaling with 1.0 instead of the
// zero standard deviation.
type StandardScaler struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Std     []float64 `json:"std"`
}

// Fit computes per-column mean and population standard deviation
func (s *StandardScaler) Fit(frame *Frame) error {
	if len(frame.Rows) == 0 {
		return fmt.Errorf("cannot fit scaler on an empty frame")
	}

	n := float64(len(frame.Rows))
	cols := len(frame.Columns)

	s.Columns = append([]string(nil), frame.Columns...)
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	for _, row := range frame.Rows {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= n
	}

	for _, row := range frame.Rows {
		for j, v := range row {
			d := v - s.Mean[j]
			s.Std[j] += d * d
		}
	}
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j] / n)
		if s.Std[j] == 0 {
			s.Std[j] = 1.0
		}
	}
	return nil
}

// Transform scales a frame with the fitted statistics. The frame's columns
// must match the fitted columns exactly; this is the last line of defence
// against training and inference drifting apart.
func (s *StandardScaler) Transform(frame *Frame) (*Frame, error) {
	if len(s.Columns) == 0 {
		return nil, fmt.Errorf("scaler has not been fitted")
	}
	if len(frame.Columns) != len(s.Columns) {
		return nil, fmt.Errorf("scaler fitted on %d columns, frame has %d", len(s.Columns), len(frame.Columns))
	}
	for i, col := range s.Columns {
		if frame.Columns[i] != col {
			return nil, fmt.Errorf("scaler column mismatch at %d: fitted %s, frame has %s", i, col, frame.Columns[i])
		}
	}

	out := NewFrame(s.Columns, len(frame.Rows))
	for _, row := range frame.Rows {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Std[j]
		}
		out.Rows = append(out.Rows, scaled)
	}
	return out, nil
}
