package fpl

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/richard-senior/fplodds/internal/logger"
)

// TrainedModel is a booster together with the column layout and schema
// version it was trained against. Inference refuses frames whose columns
// differ in any way.
type TrainedModel struct {
	Model         *GBTModel
	ColumnNames   []string
	SchemaVersion int
}

// modelBundle is the on-disk shape: the serialised model plus an integrity
// hash over those bytes. Hashing the serialised form rather than the file
// lets the bundle metadata evolve without invalidating old hashes.
type modelBundle struct {
	Model         json.RawMessage `json:"model"`
	Hash          string          `json:"hash"`
	ColumnNames   []string        `json:"columnNames"`
	SchemaVersion int             `json:"schemaVersion"`
}

// TrainClassifier fits the booster on prepared data, applying the
// configured imbalance strategy first. Under the resample strategy the
// training matrix is rebalanced here; under class-weight the booster's
// scale-pos-weight does the work and the matrix trains as-is.
func TrainClassifier(prepared *PreparedData, cfg *FplConfig) (*TrainedModel, error) {
	features := prepared.Features
	target := prepared.Target

	if cfg.Imbalance == ImbalanceResample {
		var err error
		features, target, err = Resample(features, target, cfg)
		if err != nil {
			return nil, err
		}
	}

	var positives int
	for _, y := range target {
		if y == 1.0 {
			positives++
		}
	}
	logger.Info(".. training on", len(target), "rows,", positives, "positive")

	model, err := TrainGBT(features, target, cfg.GBTParams())
	if err != nil {
		return nil, err
	}

	return &TrainedModel{
		Model:         model,
		ColumnNames:   prepared.ColumnNames,
		SchemaVersion: FeatureSchemaVersion,
	}, nil
}

// Predict scores a frame with the trained model. The frame's column list
// must equal the training layout exactly, same names in the same order.
func (tm *TrainedModel) Predict(frame *Frame) ([]float64, error) {
	if len(frame.Columns) != len(tm.ColumnNames) {
		return nil, fmt.Errorf("model trained on %d columns, frame has %d", len(tm.ColumnNames), len(frame.Columns))
	}
	for i, col := range tm.ColumnNames {
		if frame.Columns[i] != col {
			return nil, fmt.Errorf("column mismatch at %d: model trained on %s, frame has %s", i, col, frame.Columns[i])
		}
	}
	return tm.Model.PredictProba(frame)
}

// SaveModel writes the model bundle with a sha256 over the model bytes
func SaveModel(tm *TrainedModel, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	modelBytes, err := json.Marshal(tm.Model)
	if err != nil {
		return fmt.Errorf("failed to serialise model: %w", err)
	}
	sum := sha256.Sum256(modelBytes)

	bundle := modelBundle{
		Model:         modelBytes,
		Hash:          hex.EncodeToString(sum[:]),
		ColumnNames:   tm.ColumnNames,
		SchemaVersion: tm.SchemaVersion,
	}

	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to serialise model bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Info("Saved model to", path, "hash", bundle.Hash[:12])
	return nil
}

// LoadAndVerifyModel loads a bundle, recomputes the hash over the stored
// model bytes and refuses any mismatch. A corrupted or tampered model must
// never score a gameweek.
func LoadAndVerifyModel(path string) (*TrainedModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var bundle modelBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	sum := sha256.Sum256(bundle.Model)
	if hex.EncodeToString(sum[:]) != bundle.Hash {
		return nil, fmt.Errorf("model integrity check failed for %s, the stored hash does not match", path)
	}

	if bundle.SchemaVersion != FeatureSchemaVersion {
		return nil, fmt.Errorf("%s was trained with schema version %d, current is %d, retrain the model",
			path, bundle.SchemaVersion, FeatureSchemaVersion)
	}

	var model GBTModel
	if err := json.Unmarshal(bundle.Model, &model); err != nil {
		return nil, fmt.Errorf("failed to parse model in %s: %w", path, err)
	}

	return &TrainedModel{
		Model:         &model,
		ColumnNames:   bundle.ColumnNames,
		SchemaVersion: bundle.SchemaVersion,
	}, nil
}
