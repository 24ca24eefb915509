package fpl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/richard-senior/fplodds/internal/logger"
)

// FeatureSchemaVersion identifies the feature layout below. Bump it
// whenever a column is added, removed, renamed or reordered; artifacts
// carry the version they were produced with and loading rejects any
// mismatch.
const FeatureSchemaVersion = 2

// numericFeatureColumns is the base feature block in fixed order. The two
// categorical ids stay in it alongside their one-hot expansion; the tree
// booster can split on either representation.
var numericFeatureColumns = []string{
	"team_id",
	"position_id",
	"home_or_away_id",
	"opposition_id",
	"opposition_team_strength",
	"team_strength",
	"recent_points",
	"recent_bps",
	"season_points",
	"season_bps",
	"season_minutes",
	"win_odds",
	"over_two_point_five_goals",
}

// categoricalFeatureColumns are additionally one-hot expanded
var categoricalFeatureColumns = []string{
	"home_or_away_id",
	"opposition_id",
}

// targetColumn is the binary label
const targetColumn = "over_four_points"

// PrepArtifact bundles everything inference needs to reproduce the
// training-time feature preparation: the fitted encoder and scaler and
// the final column layout, stamped with the schema version.
type PrepArtifact struct {
	SchemaVersion int             `json:"schemaVersion"`
	Encoder       *OneHotEncoder  `json:"encoder"`
	Scaler        *StandardScaler `json:"scaler"`
	ColumnNames   []string        `json:"columnNames"`
}

// PreparedData is a ready-to-train feature matrix with its target
type PreparedData struct {
	Features    *Frame
	Target      []float64
	ColumnNames []string
	Artifact    *PrepArtifact
}

// recordFrame projects records onto the named columns as a raw frame
func recordFrame(records []*FeatureRecord, columns []string) (*Frame, error) {
	frame := NewFrame(columns, len(records))
	for _, r := range records {
		row := make([]float64, len(columns))
		for j, col := range columns {
			v, err := r.featureValue(col)
			if err != nil {
				return nil, err
			}
			row[j] = v
		}
		frame.Rows = append(frame.Rows, row)
	}
	return frame, nil
}

func (r *FeatureRecord) featureValue(column string) (float64, error) {
	switch column {
	case "team_id":
		return float64(r.TeamID), nil
	case "position_id":
		return float64(r.PositionID), nil
	case "home_or_away_id":
		return float64(r.HomeOrAwayID), nil
	case "opposition_id":
		return float64(r.OppositionID), nil
	case "opposition_team_strength":
		return r.OppositionStrength, nil
	case "team_strength":
		return r.TeamStrength, nil
	case "recent_points":
		return r.RecentPoints, nil
	case "recent_bps":
		return r.RecentBps, nil
	case "season_points":
		return r.SeasonPoints, nil
	case "season_bps":
		return r.SeasonBps, nil
	case "season_minutes":
		return r.SeasonMinutes, nil
	case "win_odds":
		return r.WinOdds, nil
	case "over_two_point_five_goals":
		return r.OverTwoPointFiveGoals, nil
	case targetColumn:
		return float64(r.OverFourPoints), nil
	default:
		return 0, fmt.Errorf("unknown feature column %s", column)
	}
}

// assemble runs the shared encode-concat step: project the numeric block,
// one-hot encode the categoricals and append the indicator columns
func assemble(records []*FeatureRecord, encoder *OneHotEncoder) (*Frame, error) {
	numeric, err := recordFrame(records, numericFeatureColumns)
	if err != nil {
		return nil, err
	}
	categorical, err := recordFrame(records, categoricalFeatureColumns)
	if err != nil {
		return nil, err
	}
	encoded, err := encoder.Transform(categorical)
	if err != nil {
		return nil, err
	}
	return Concat(numeric, encoded)
}

// PrepareTrainingData turns built records into a scaled training matrix.
// Rows without odds are dropped first, then rows under the minutes floor;
// what remains fits the encoder and the scaler, so the artifact reflects
// exactly the distribution the model trains on.
//
// Running twice over the same records yields identical matrices; nothing
// here draws randomness.
func PrepareTrainingData(records []*FeatureRecord, cfg *FplConfig) (*PreparedData, error) {
	var kept []*FeatureRecord
	for _, r := range records {
		if r.WinOdds < 0 {
			continue
		}
		if r.Minutes < cfg.MinMinutes {
			continue
		}
		kept = append(kept, r)
	}
	logger.Info("Prepared training set:", len(kept), "of", len(records), "records pass the odds and minutes filters")
	if len(kept) == 0 {
		return nil, fmt.Errorf("no records survive the training filters")
	}

	encoder := NewOneHotEncoder(categoricalFeatureColumns)
	categorical, err := recordFrame(kept, categoricalFeatureColumns)
	if err != nil {
		return nil, err
	}
	if err := encoder.Fit(categorical); err != nil {
		return nil, err
	}

	unscaled, err := assemble(kept, encoder)
	if err != nil {
		return nil, err
	}

	scaler := &StandardScaler{}
	if err := scaler.Fit(unscaled); err != nil {
		return nil, err
	}
	features, err := scaler.Transform(unscaled)
	if err != nil {
		return nil, err
	}

	target := make([]float64, len(kept))
	for i, r := range kept {
		target[i] = float64(r.OverFourPoints)
	}

	return &PreparedData{
		Features:    features,
		Target:      target,
		ColumnNames: features.Columns,
		Artifact: &PrepArtifact{
			SchemaVersion: FeatureSchemaVersion,
			Encoder:       encoder,
			Scaler:        scaler,
			ColumnNames:   features.Columns,
		},
	}, nil
}

// PrepareForInference encodes and scales records with a previously fitted
// artifact. No odds or minutes filter applies; inference scores every row
// it is given, including future rows whose stats are sentinels.
func PrepareForInference(records []*FeatureRecord, artifact *PrepArtifact) (*Frame, error) {
	if artifact.SchemaVersion != FeatureSchemaVersion {
		return nil, fmt.Errorf("artifact schema version %d does not match current version %d, regenerate the training data",
			artifact.SchemaVersion, FeatureSchemaVersion)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to prepare")
	}

	unscaled, err := assemble(records, artifact.Encoder)
	if err != nil {
		return nil, err
	}
	return artifact.Scaler.Transform(unscaled)
}

// SavePrepArtifact serialises the artifact as JSON
func SavePrepArtifact(artifact *PrepArtifact, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialise prep artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info("Saved prep artifact to", path)
	return nil
}

// LoadPrepArtifact loads and version-checks a saved artifact
func LoadPrepArtifact(path string) (*PrepArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var artifact PrepArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if artifact.SchemaVersion != FeatureSchemaVersion {
		return nil, fmt.Errorf("%s was produced with schema version %d, current is %d",
			path, artifact.SchemaVersion, FeatureSchemaVersion)
	}
	if artifact.Encoder == nil || artifact.Scaler == nil {
		return nil, fmt.Errorf("%s is missing the encoder or scaler", path)
	}
	return &artifact, nil
}
