package fpl

import (
	"fmt"
	"math/rand"

	"github.com/richard-senior/fplodds/internal/logger"
)

// Resample rebalances a training matrix toward the configured majority
// ratio. Synthetic minority rows are interpolated between random pairs of
// real minority rows; the majority class is then randomly undersampled to
// ResampleMajorityRatio rows per minority row. Deterministic under the
// configured seed.
func Resample(features *Frame, target []float64, cfg *FplConfig) (*Frame, []float64, error) {
	if len(features.Rows) != len(target) {
		return nil, nil, fmt.Errorf("feature rows (%d) and target (%d) length mismatch", len(features.Rows), len(target))
	}

	var minority, majority []int
	for i, y := range target {
		if y == 1.0 {
			minority = append(minority, i)
		} else {
			majority = append(majority, i)
		}
	}
	if len(minority) < 2 {
		return nil, nil, fmt.Errorf("cannot resample with %d minority rows", len(minority))
	}
	if len(majority) <= len(minority) {
		// already balanced, nothing to do
		return features, target, nil
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	cols := len(features.Columns)

	// Grow the minority until the majority is within ratio of it
	wantMinority := int(float64(len(majority)) / cfg.ResampleMajorityRatio)
	synthetic := make([][]float64, 0)
	for len(minority)+len(synthetic) < wantMinority {
		a := features.Rows[minority[rng.Intn(len(minority))]]
		b := features.Rows[minority[rng.Intn(len(minority))]]
		t := rng.Float64()
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = a[j] + t*(b[j]-a[j])
		}
		synthetic = append(synthetic, row)
	}

	// Shrink the majority to the ratio
	keepMajority := int(float64(len(minority)+len(synthetic)) * cfg.ResampleMajorityRatio)
	if keepMajority < len(majority) {
		perm := rng.Perm(len(majority))
		kept := make([]int, keepMajority)
		for i := 0; i < keepMajority; i++ {
			kept[i] = majority[perm[i]]
		}
		majority = kept
	}

	out := NewFrame(features.Columns, len(minority)+len(synthetic)+len(majority))
	outTarget := make([]float64, 0, cap(out.Rows))

	for _, i := range minority {
		out.Rows = append(out.Rows, features.Rows[i])
		outTarget = append(outTarget, 1.0)
	}
	for _, row := range synthetic {
		out.Rows = append(out.Rows, row)
		outTarget = append(outTarget, 1.0)
	}
	for _, i := range majority {
		out.Rows = append(out.Rows, features.Rows[i])
		outTarget = append(outTarget, 0.0)
	}

	logger.Info("Resampled training set:", len(minority), "minority +", len(synthetic),
		"synthetic vs", len(majority), "majority")
	return out, outTarget, nil
}
