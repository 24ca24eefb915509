package fpl

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGBTParams() GBTParams {
	return GBTParams{
		LearningRate:    0.3,
		MaxDepth:        3,
		Rounds:          30,
		RegAlpha:        0.0,
		RegLambda:       1.0,
		Subsample:       1.0,
		ColsampleByTree: 1.0,
		ScalePosWeight:  1.0,
		MinChildWeight:  1.0,
		Seed:            42,
	}
}

// separableFrame builds a two-feature dataset where the label is decided
// entirely by the first feature
func separableFrame(n int, seed int64) (*Frame, []float64) {
	rng := rand.New(rand.NewSource(seed))
	frame := NewFrame([]string{"signal", "noise"}, n)
	target := make([]float64, n)
	for i := 0; i < n; i++ {
		x := rng.Float64()
		frame.Rows = append(frame.Rows, []float64{x, rng.Float64()})
		if x > 0.5 {
			target[i] = 1.0
		}
	}
	return frame, target
}

func TestTrainGBTLearnsASeparableProblem(t *testing.T) {
	frame, target := separableFrame(400, 1)
	model, err := TrainGBT(frame, target, testGBTParams())
	require.NoError(t, err)
	require.Len(t, model.Trees, 30)

	probabilities, err := model.PredictProba(frame)
	require.NoError(t, err)

	correct := 0
	for i, p := range probabilities {
		if (p >= 0.5) == (target[i] == 1.0) {
			correct++
		}
	}
	assert.Greater(t, float64(correct)/float64(len(target)), 0.95)
}

func TestTrainGBTIsDeterministic(t *testing.T) {
	frame, target := separableFrame(200, 2)

	a, err := TrainGBT(frame, target, testGBTParams())
	require.NoError(t, err)
	b, err := TrainGBT(frame, target, testGBTParams())
	require.NoError(t, err)

	pa, err := a.PredictProba(frame)
	require.NoError(t, err)
	pb, err := b.PredictProba(frame)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestTrainGBTGainConcentratesOnTheSignal(t *testing.T) {
	frame, target := separableFrame(400, 3)
	model, err := TrainGBT(frame, target, testGBTParams())
	require.NoError(t, err)

	require.Len(t, model.FeatureGain, 2)
	assert.Greater(t, model.FeatureGain[0], model.FeatureGain[1])
}

func TestGBTModelSurvivesJSON(t *testing.T) {
	frame, target := separableFrame(100, 4)
	model, err := TrainGBT(frame, target, testGBTParams())
	require.NoError(t, err)

	data, err := json.Marshal(model)
	require.NoError(t, err)

	var restored GBTModel
	require.NoError(t, json.Unmarshal(data, &restored))

	pa, err := model.PredictProba(frame)
	require.NoError(t, err)
	pb, err := restored.PredictProba(frame)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestTrainGBTRejectsBadInput(t *testing.T) {
	_, err := TrainGBT(NewFrame([]string{"a"}, 0), nil, testGBTParams())
	assert.Error(t, err)

	frame := &Frame{Columns: []string{"a"}, Rows: [][]float64{{1}, {2}}}
	_, err = TrainGBT(frame, []float64{1}, testGBTParams())
	assert.Error(t, err)
}

func TestPredictRowRejectsWrongWidth(t *testing.T) {
	frame, target := separableFrame(50, 5)
	model, err := TrainGBT(frame, target, testGBTParams())
	require.NoError(t, err)

	_, err = model.PredictRow([]float64{1})
	assert.Error(t, err)
}
