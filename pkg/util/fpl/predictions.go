package fpl

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/richard-senior/fplodds/internal/logger"
)

// Prediction is one scored player for an output gameweek
type Prediction struct {
	PlayerName     string
	OppositionName string
	Points         int // actual points, sentinel when the gameweek is future
	Probability    float64
}

// PredictGameweek scores every eligible player for a gameweek and writes
// the ranked CSV. For a played gameweek the records come from the live
// feed and carry actual points for comparison; for a future gameweek they
// are synthesized from the schedule.
func PredictGameweek(ctx *DataContext, gameweek int, future bool) ([]*Prediction, error) {
	cfg := ctx.Config

	builder := NewRecordBuilder(ctx)
	var records []*FeatureRecord
	var err error
	if future {
		records, err = builder.BuildFutureGameweek(gameweek)
	} else {
		records, err = builder.BuildGameweek(gameweek)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to score for gameweek %d", gameweek)
	}

	artifact, err := LoadPrepArtifact(cfg.EncoderPath)
	if err != nil {
		return nil, err
	}
	model, err := LoadAndVerifyModel(filepath.Join(cfg.ModelsPath, "model.json"))
	if err != nil {
		return nil, err
	}

	frame, err := PrepareForInference(records, artifact)
	if err != nil {
		return nil, err
	}
	frame, err = frame.Reindex(model.ColumnNames)
	if err != nil {
		return nil, err
	}

	probabilities, err := model.Predict(frame)
	if err != nil {
		return nil, err
	}

	predictions := make([]*Prediction, len(records))
	for i, r := range records {
		predictions[i] = &Prediction{
			PlayerName:     r.PlayerName,
			OppositionName: r.OppositionName,
			Points:         r.Points,
			Probability:    probabilities[i],
		}
	}
	sort.Slice(predictions, func(i, j int) bool {
		return predictions[i].Probability > predictions[j].Probability
	})

	path := filepath.Join(cfg.PredictionsPath, fmt.Sprintf("predictionsGW%d.csv", gameweek))
	if err := writePredictionsCSV(predictions, path); err != nil {
		return nil, err
	}

	for i, p := range predictions {
		if i >= 15 {
			break
		}
		logger.Inform(fmt.Sprintf("%.3f %-28s vs %s", p.Probability, p.PlayerName, p.OppositionName))
	}

	return predictions, nil
}

func writePredictionsCSV(predictions []*Prediction, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"player_name", "opposition_name", "points", "probability"}); err != nil {
		return fmt.Errorf("failed to write predictions header: %w", err)
	}
	for _, p := range predictions {
		row := []string{
			p.PlayerName,
			p.OppositionName,
			strconv.Itoa(p.Points),
			strconv.FormatFloat(p.Probability, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write prediction row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush predictions CSV: %w", err)
	}

	logger.Info("Wrote", len(predictions), "predictions to", path)
	return nil
}
