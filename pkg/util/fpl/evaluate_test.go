package fpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	probabilities := []float64{0.9, 0.8, 0.3, 0.6, 0.1}
	target := []float64{1, 0, 1, 1, 0}

	m, err := Evaluate(probabilities, target)
	require.NoError(t, err)

	// predicted positive: 0.9 (tp), 0.8 (fp), 0.6 (tp); missed: 0.3 (fn)
	assert.Equal(t, 2, m.TruePositives)
	assert.Equal(t, 1, m.FalsePositives)
	assert.Equal(t, 1, m.FalseNegatives)
	assert.InDelta(t, 2.0/3.0, m.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.F1, 1e-9)
}

func TestEvaluateNoPositivePredictions(t *testing.T) {
	m, err := Evaluate([]float64{0.1, 0.2}, []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Precision)
	assert.Equal(t, 0.0, m.F1)
}

func TestEvaluateLengthMismatchIsError(t *testing.T) {
	_, err := Evaluate([]float64{0.5}, []float64{1, 0})
	assert.Error(t, err)
}

func TestImportanceIsSortedByGain(t *testing.T) {
	frame, target := separableFrame(200, 9)
	model, err := TrainGBT(frame, target, testGBTParams())
	require.NoError(t, err)

	tm := &TrainedModel{Model: model, ColumnNames: frame.Columns, SchemaVersion: FeatureSchemaVersion}
	importance := tm.Importance()
	require.Len(t, importance, 2)
	assert.Equal(t, "signal", importance[0].Column)
	assert.GreaterOrEqual(t, importance[0].Gain, importance[1].Gain)
}
