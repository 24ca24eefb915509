package fpl

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// GBTParams are the booster hyperparameters. Regularisation follows the
// standard formulation: RegLambda is the L2 term on leaf weights, RegAlpha
// the L1 soft threshold on gradient sums, ScalePosWeight multiplies the
// gradient and hessian of positive rows.
type GBTParams struct {
	LearningRate    float64 `json:"learningRate"`
	MaxDepth        int     `json:"maxDepth"`
	Rounds          int     `json:"rounds"`
	RegAlpha        float64 `json:"regAlpha"`
	RegLambda       float64 `json:"regLambda"`
	Subsample       float64 `json:"subsample"`
	ColsampleByTree float64 `json:"colsampleByTree"`
	ScalePosWeight  float64 `json:"scalePosWeight"`
	MinChildWeight  float64 `json:"minChildWeight"`
	Seed            int64   `json:"seed"`
}

// TreeNode is one node of a regression tree. Leaf nodes carry the output
// value already scaled by the learning rate; internal nodes route on
// feature < threshold.
type TreeNode struct {
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Leaf      bool    `json:"leaf,omitempty"`

	Left  *TreeNode `json:"left,omitempty"`
	Right *TreeNode `json:"right,omitempty"`
}

// GBTModel is a trained additive ensemble over the logistic loss
type GBTModel struct {
	Params      GBTParams   `json:"params"`
	NumFeatures int         `json:"numFeatures"`
	BaseScore   float64     `json:"baseScore"`
	Trees       []*TreeNode `json:"trees"`

	// Total split gain accumulated per feature index during training
	FeatureGain []float64 `json:"featureGain"`
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// softThreshold applies the L1 shrinkage to a gradient sum
func softThreshold(g, alpha float64) float64 {
	if g > alpha {
		return g - alpha
	}
	if g < -alpha {
		return g + alpha
	}
	return 0.0
}

// treeBuilder carries the per-tree working state so the recursive split
// search does not re-allocate its scratch buffers at every node
type treeBuilder struct {
	rows     [][]float64
	grad     []float64
	hess     []float64
	features []int
	params   GBTParams
	gain     []float64
}

// TrainGBT fits a boosted ensemble on a prepared frame. Rows and target
// must align; the target is 0/1.
func TrainGBT(features *Frame, target []float64, params GBTParams) (*GBTModel, error) {
	if len(features.Rows) == 0 {
		return nil, fmt.Errorf("cannot train on an empty frame")
	}
	if len(features.Rows) != len(target) {
		return nil, fmt.Errorf("feature rows (%d) and target (%d) length mismatch", len(features.Rows), len(target))
	}
	if params.ScalePosWeight <= 0 {
		params.ScalePosWeight = 1.0
	}
	if params.MinChildWeight <= 0 {
		params.MinChildWeight = 1.0
	}

	numRows := len(features.Rows)
	numFeatures := len(features.Columns)
	rng := rand.New(rand.NewSource(params.Seed))

	model := &GBTModel{
		Params:      params,
		NumFeatures: numFeatures,
		BaseScore:   0.0,
		FeatureGain: make([]float64, numFeatures),
	}

	// Running raw scores, updated after every tree
	scores := make([]float64, numRows)
	for i := range scores {
		scores[i] = model.BaseScore
	}

	grad := make([]float64, numRows)
	hess := make([]float64, numRows)

	for round := 0; round < params.Rounds; round++ {
		for i := 0; i < numRows; i++ {
			p := sigmoid(scores[i])
			w := 1.0
			if target[i] == 1.0 {
				w = params.ScalePosWeight
			}
			grad[i] = (p - target[i]) * w
			hess[i] = p * (1.0 - p) * w
		}

		rowSample := sampleIndexes(numRows, params.Subsample, rng)
		colSample := sampleIndexes(numFeatures, params.ColsampleByTree, rng)

		builder := &treeBuilder{
			rows:     features.Rows,
			grad:     grad,
			hess:     hess,
			features: colSample,
			params:   params,
			gain:     model.FeatureGain,
		}

		tree := builder.build(rowSample, 0)
		model.Trees = append(model.Trees, tree)

		for i := 0; i < numRows; i++ {
			scores[i] += predictTree(tree, features.Rows[i])
		}
	}

	return model, nil
}

// sampleIndexes draws a fraction of [0, n) without replacement, sorted.
// A fraction of 1.0 returns every index without touching the rng state
// beyond the shuffle draw.
func sampleIndexes(n int, fraction float64, rng *rand.Rand) []int {
	if fraction >= 1.0 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	k := int(math.Ceil(float64(n) * fraction))
	if k < 1 {
		k = 1
	}
	perm := rng.Perm(n)
	out := append([]int(nil), perm[:k]...)
	sort.Ints(out)
	return out
}

// build grows one tree node over the given row indices
func (b *treeBuilder) build(rows []int, depth int) *TreeNode {
	var gSum, hSum float64
	for _, i := range rows {
		gSum += b.grad[i]
		hSum += b.hess[i]
	}

	leaf := func() *TreeNode {
		return &TreeNode{
			Leaf:  true,
			Value: -b.params.LearningRate * softThreshold(gSum, b.params.RegAlpha) / (hSum + b.params.RegLambda),
		}
	}

	if depth >= b.params.MaxDepth || len(rows) < 2 {
		return leaf()
	}

	feature, threshold, gain, left, right := b.bestSplit(rows, gSum, hSum)
	if gain <= 0 {
		return leaf()
	}

	b.gain[feature] += gain
	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

// bestSplit exhaustively scans every sampled feature for the split with
// the highest structure-score gain. Rows with equal feature values never
// separate; the scan only considers thresholds between distinct values.
func (b *treeBuilder) bestSplit(rows []int, gSum, hSum float64) (int, float64, float64, []int, []int) {
	lambda := b.params.RegLambda
	alpha := b.params.RegAlpha

	score := func(g, h float64) float64 {
		t := softThreshold(g, alpha)
		return (t * t) / (h + lambda)
	}
	parentScore := score(gSum, hSum)

	bestFeature := -1
	var bestThreshold, bestGain float64

	order := make([]int, len(rows))
	for _, feature := range b.features {
		copy(order, rows)
		f := feature
		sort.Slice(order, func(i, j int) bool {
			return b.rows[order[i]][f] < b.rows[order[j]][f]
		})

		var gLeft, hLeft float64
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			gLeft += b.grad[i]
			hLeft += b.hess[i]

			cur := b.rows[i][f]
			next := b.rows[order[pos+1]][f]
			if cur == next {
				continue
			}

			hRight := hSum - hLeft
			if hLeft < b.params.MinChildWeight || hRight < b.params.MinChildWeight {
				continue
			}

			gRight := gSum - gLeft
			gain := 0.5 * (score(gLeft, hLeft) + score(gRight, hRight) - parentScore)
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (cur + next) / 2.0
			}
		}
	}

	if bestFeature < 0 {
		return -1, 0, 0, nil, nil
	}

	var left, right []int
	for _, i := range rows {
		if b.rows[i][bestFeature] < bestThreshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return bestFeature, bestThreshold, bestGain, left, right
}

func predictTree(node *TreeNode, row []float64) float64 {
	for !node.Leaf {
		if row[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// PredictRow returns the positive-class probability for one feature row
func (m *GBTModel) PredictRow(row []float64) (float64, error) {
	if len(row) != m.NumFeatures {
		return 0, fmt.Errorf("model expects %d features, row has %d", m.NumFeatures, len(row))
	}
	score := m.BaseScore
	for _, tree := range m.Trees {
		score += predictTree(tree, row)
	}
	return sigmoid(score), nil
}

// PredictProba returns positive-class probabilities for every row of a frame
func (m *GBTModel) PredictProba(frame *Frame) ([]float64, error) {
	if len(frame.Columns) != m.NumFeatures {
		return nil, fmt.Errorf("model expects %d features, frame has %d", m.NumFeatures, len(frame.Columns))
	}
	out := make([]float64, len(frame.Rows))
	for i, row := range frame.Rows {
		p, err := m.PredictRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
