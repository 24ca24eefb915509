package fpl

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// preparedFixture builds a small separable PreparedData by hand
func preparedFixture(t *testing.T, n int) *PreparedData {
	t.Helper()
	frame, target := separableFrame(n, 7)
	return &PreparedData{
		Features:    frame,
		Target:      target,
		ColumnNames: frame.Columns,
		Artifact:    &PrepArtifact{SchemaVersion: FeatureSchemaVersion, ColumnNames: frame.Columns},
	}
}

func fastConfig() *FplConfig {
	cfg := DefaultFplConfig()
	cfg.Rounds = 25
	cfg.MaxDepth = 3
	cfg.ScalePosWeight = 1.0
	return cfg
}

func TestTrainClassifierAndPredict(t *testing.T) {
	cfg := fastConfig()
	prepared := preparedFixture(t, 300)

	model, err := TrainClassifier(prepared, cfg)
	require.NoError(t, err)
	assert.Equal(t, FeatureSchemaVersion, model.SchemaVersion)

	probabilities, err := model.Predict(prepared.Features)
	require.NoError(t, err)

	metrics, err := Evaluate(probabilities, prepared.Target)
	require.NoError(t, err)
	assert.Greater(t, metrics.F1, 0.9)
}

func TestPredictRejectsColumnDrift(t *testing.T) {
	cfg := fastConfig()
	prepared := preparedFixture(t, 100)
	model, err := TrainClassifier(prepared, cfg)
	require.NoError(t, err)

	reordered := &Frame{
		Columns: []string{"noise", "signal"},
		Rows:    prepared.Features.Rows,
	}
	_, err = model.Predict(reordered)
	assert.Error(t, err)
}

func TestModelBundleRoundTrip(t *testing.T) {
	cfg := fastConfig()
	prepared := preparedFixture(t, 200)
	model, err := TrainClassifier(prepared, cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, SaveModel(model, path))

	loaded, err := LoadAndVerifyModel(path)
	require.NoError(t, err)
	assert.Equal(t, model.ColumnNames, loaded.ColumnNames)

	pa, err := model.Predict(prepared.Features)
	require.NoError(t, err)
	pb, err := loaded.Predict(prepared.Features)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestLoadAndVerifyModelDetectsTampering(t *testing.T) {
	cfg := fastConfig()
	prepared := preparedFixture(t, 100)
	model, err := TrainClassifier(prepared, cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, SaveModel(model, path))

	// flip one digit of the stored hash, the bundle stays valid JSON
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	idx := bytes.Index(data, []byte(`"hash":"`))
	require.Greater(t, idx, 0)
	pos := idx + len(`"hash":"`)
	if data[pos] == 'a' {
		data[pos] = 'b'
	} else {
		data[pos] = 'a'
	}
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err = LoadAndVerifyModel(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "integrity")
}

func TestTrainClassifierWithResampling(t *testing.T) {
	cfg := fastConfig()
	cfg.Imbalance = ImbalanceResample
	prepared := preparedFixture(t, 300)

	model, err := TrainClassifier(prepared, cfg)
	require.NoError(t, err)

	probabilities, err := model.Predict(prepared.Features)
	require.NoError(t, err)
	metrics, err := Evaluate(probabilities, prepared.Target)
	require.NoError(t, err)
	assert.Greater(t, metrics.F1, 0.85)
}
