package fpl

import (
	"fmt"
	"sort"

	"github.com/richard-senior/fplodds/internal/logger"
)

// Metrics summarise binary classification quality at the 0.5 threshold
type Metrics struct {
	Precision float64
	Recall    float64
	F1        float64

	TruePositives  int
	FalsePositives int
	FalseNegatives int
}

// Evaluate scores predicted probabilities against known labels
func Evaluate(probabilities, target []float64) (*Metrics, error) {
	if len(probabilities) != len(target) {
		return nil, fmt.Errorf("predictions (%d) and target (%d) length mismatch", len(probabilities), len(target))
	}

	m := &Metrics{}
	for i, p := range probabilities {
		predicted := p >= 0.5
		actual := target[i] == 1.0
		switch {
		case predicted && actual:
			m.TruePositives++
		case predicted && !actual:
			m.FalsePositives++
		case !predicted && actual:
			m.FalseNegatives++
		}
	}

	if m.TruePositives+m.FalsePositives > 0 {
		m.Precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}
	if m.TruePositives+m.FalseNegatives > 0 {
		m.Recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2.0 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m, nil
}

// FeatureImportance is one feature's accumulated split gain
type FeatureImportance struct {
	Column string
	Gain   float64
}

// Importance maps the model's per-index gain totals back onto column
// names, sorted by gain descending
func (tm *TrainedModel) Importance() []FeatureImportance {
	out := make([]FeatureImportance, 0, len(tm.ColumnNames))
	for i, col := range tm.ColumnNames {
		if i < len(tm.Model.FeatureGain) {
			out = append(out, FeatureImportance{Column: col, Gain: tm.Model.FeatureGain[i]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Gain > out[j].Gain
	})
	return out
}

// LogEvaluation logs the metrics and the top of the importance ranking
func LogEvaluation(m *Metrics, tm *TrainedModel) {
	logger.Highlight(fmt.Sprintf("precision %.3f recall %.3f f1 %.3f", m.Precision, m.Recall, m.F1))
	for i, fi := range tm.Importance() {
		if i >= 10 {
			break
		}
		logger.Info(fmt.Sprintf(".. %-32s gain %.2f", fi.Column, fi.Gain))
	}
}
