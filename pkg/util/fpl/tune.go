package fpl

import (
	"fmt"

	"github.com/richard-senior/fplodds/internal/logger"
)

// Hyperparameter grid for the offline search. The best combination found
// is promoted into DefaultFplConfig by hand, tuning never runs as part of
// the prediction pipeline.
var tuningGrid = struct {
	LearningRate    []float64
	MaxDepth        []int
	Rounds          []int
	RegAlpha        []float64
	RegLambda       []float64
	Subsample       []float64
	ColsampleByTree []float64
}{
	LearningRate:    []float64{0.05, 0.1, 0.15},
	MaxDepth:        []int{4, 5, 6},
	Rounds:          []int{200, 300, 400},
	RegAlpha:        []float64{0.01, 0.05, 0.1},
	RegLambda:       []float64{0.1, 0.2, 0.3},
	Subsample:       []float64{0.7, 0.8, 0.9},
	ColsampleByTree: []float64{0.8, 0.9, 1.0},
}

const tuningFolds = 5

// TuneResult is one grid point with its cross-validated score
type TuneResult struct {
	Params GBTParams
	MeanF1 float64
}

// Tune runs an exhaustive grid search with k-fold cross validation,
// scoring each combination by mean F1 over the folds. Slow by design;
// this is an offline job.
func Tune(prepared *PreparedData, cfg *FplConfig) (*TuneResult, error) {
	if len(prepared.Target) < tuningFolds*2 {
		return nil, fmt.Errorf("not enough rows (%d) for %d-fold tuning", len(prepared.Target), tuningFolds)
	}

	base := cfg.GBTParams()
	best := &TuneResult{MeanF1: -1.0}
	var tried int

	for _, lr := range tuningGrid.LearningRate {
		for _, depth := range tuningGrid.MaxDepth {
			for _, rounds := range tuningGrid.Rounds {
				for _, alpha := range tuningGrid.RegAlpha {
					for _, lambda := range tuningGrid.RegLambda {
						for _, subsample := range tuningGrid.Subsample {
							for _, colsample := range tuningGrid.ColsampleByTree {
								params := base
								params.LearningRate = lr
								params.MaxDepth = depth
								params.Rounds = rounds
								params.RegAlpha = alpha
								params.RegLambda = lambda
								params.Subsample = subsample
								params.ColsampleByTree = colsample

								f1, err := crossValidate(prepared, params)
								if err != nil {
									return nil, err
								}

								tried++
								if f1 > best.MeanF1 {
									best.Params = params
									best.MeanF1 = f1
									logger.Inform(fmt.Sprintf("new best f1 %.4f after %d combinations: lr %.2f depth %d rounds %d a %.2f l %.2f sub %.2f col %.2f",
										f1, tried, lr, depth, rounds, alpha, lambda, subsample, colsample))
								}
							}
						}
					}
				}
			}
		}
	}

	logger.Highlight(fmt.Sprintf("grid search complete: %d combinations, best mean f1 %.4f", tried, best.MeanF1))
	return best, nil
}

// crossValidate trains on k-1 folds and scores the held-out fold, for
// each fold in turn. Folds are contiguous slices; the row order from
// preparation is gameweek order, so each fold holds out a span of the
// season rather than a random shuffle.
func crossValidate(prepared *PreparedData, params GBTParams) (float64, error) {
	n := len(prepared.Target)
	foldSize := n / tuningFolds

	var total float64
	for fold := 0; fold < tuningFolds; fold++ {
		start := fold * foldSize
		end := start + foldSize
		if fold == tuningFolds-1 {
			end = n
		}

		train := NewFrame(prepared.Features.Columns, n-(end-start))
		var trainTarget []float64
		test := NewFrame(prepared.Features.Columns, end-start)
		var testTarget []float64

		for i := 0; i < n; i++ {
			if i >= start && i < end {
				test.Rows = append(test.Rows, prepared.Features.Rows[i])
				testTarget = append(testTarget, prepared.Target[i])
			} else {
				train.Rows = append(train.Rows, prepared.Features.Rows[i])
				trainTarget = append(trainTarget, prepared.Target[i])
			}
		}

		model, err := TrainGBT(train, trainTarget, params)
		if err != nil {
			return 0, err
		}
		probabilities, err := model.PredictProba(test)
		if err != nil {
			return 0, err
		}
		metrics, err := Evaluate(probabilities, testTarget)
		if err != nil {
			return 0, err
		}
		total += metrics.F1
	}

	return total / float64(tuningFolds), nil
}
