package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/richard-senior/fplodds/internal/logger"
	"github.com/richard-senior/fplodds/pkg/util/fpl"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: fplodds <command> [args]

commands:
  create-data <start-gw> <end-gw> <file>  fetch raw data and build the flat records CSV
  train <records-csv>                     train the classifier and save the model bundle
  test <records-csv>                      evaluate the saved model against labelled records
  tune <records-csv>                      grid search hyperparameters (slow, offline)
  predict <gameweek>                      score a played gameweek against its actual points
  predict-next <gameweek>                 score an unplayed gameweek from the schedule`)
	os.Exit(2)
}

func main() {
	logger.SetShowDateTime(true)

	if len(os.Args) < 2 {
		usage()
	}

	cfg := fpl.DefaultFplConfig()
	if err := fpl.ValidateConfig(cfg); err != nil {
		logger.Fatal("Invalid configuration:", err)
	}

	var err error
	switch os.Args[1] {
	case "create-data":
		err = runCreateData(cfg, os.Args[2:])
	case "train":
		err = runTrain(cfg, os.Args[2:])
	case "test":
		err = runTest(cfg, os.Args[2:])
	case "tune":
		err = runTune(cfg, os.Args[2:])
	case "predict":
		err = runPredict(cfg, os.Args[2:], false)
	case "predict-next":
		err = runPredict(cfg, os.Args[2:], true)
	default:
		usage()
	}

	if err != nil {
		logger.Error("Command failed:", err)
		os.Exit(1)
	}
}

func runCreateData(cfg *fpl.FplConfig, args []string) error {
	if len(args) != 3 {
		usage()
	}
	start, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid start gameweek %s", args[0])
	}
	end, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid end gameweek %s", args[1])
	}

	store, err := fpl.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return fpl.CreateData(cfg, store, start, end, args[2])
}

func runTrain(cfg *fpl.FplConfig, args []string) error {
	if len(args) != 1 {
		usage()
	}

	records, err := fpl.LoadRecordsCSV(args[0])
	if err != nil {
		return err
	}

	prepared, err := fpl.PrepareTrainingData(records, cfg)
	if err != nil {
		return err
	}

	model, err := fpl.TrainClassifier(prepared, cfg)
	if err != nil {
		return err
	}

	if err := fpl.SaveModel(model, filepath.Join(cfg.ModelsPath, "model.json")); err != nil {
		return err
	}
	if err := fpl.SavePrepArtifact(prepared.Artifact, cfg.EncoderPath); err != nil {
		return err
	}

	// Training-set metrics, optimistic but a useful sanity check
	probabilities, err := model.Predict(prepared.Features)
	if err != nil {
		return err
	}
	metrics, err := fpl.Evaluate(probabilities, prepared.Target)
	if err != nil {
		return err
	}
	fpl.LogEvaluation(metrics, model)
	return nil
}

func runTest(cfg *fpl.FplConfig, args []string) error {
	if len(args) != 1 {
		usage()
	}

	records, err := fpl.LoadRecordsCSV(args[0])
	if err != nil {
		return err
	}

	// Apply the training filters so the labels are comparable
	var kept []*fpl.FeatureRecord
	for _, r := range records {
		if r.WinOdds < 0 || r.Minutes < cfg.MinMinutes {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return fmt.Errorf("no testable records in %s", args[0])
	}

	artifact, err := fpl.LoadPrepArtifact(cfg.EncoderPath)
	if err != nil {
		return err
	}
	model, err := fpl.LoadAndVerifyModel(filepath.Join(cfg.ModelsPath, "model.json"))
	if err != nil {
		return err
	}

	frame, err := fpl.PrepareForInference(kept, artifact)
	if err != nil {
		return err
	}
	frame, err = frame.Reindex(model.ColumnNames)
	if err != nil {
		return err
	}

	probabilities, err := model.Predict(frame)
	if err != nil {
		return err
	}

	target := make([]float64, len(kept))
	for i, r := range kept {
		target[i] = float64(r.OverFourPoints)
	}

	metrics, err := fpl.Evaluate(probabilities, target)
	if err != nil {
		return err
	}
	fpl.LogEvaluation(metrics, model)
	return nil
}

func runTune(cfg *fpl.FplConfig, args []string) error {
	if len(args) != 1 {
		usage()
	}

	records, err := fpl.LoadRecordsCSV(args[0])
	if err != nil {
		return err
	}
	prepared, err := fpl.PrepareTrainingData(records, cfg)
	if err != nil {
		return err
	}

	result, err := fpl.Tune(prepared, cfg)
	if err != nil {
		return err
	}

	logger.Highlight(fmt.Sprintf("best parameters: lr %.2f depth %d rounds %d alpha %.2f lambda %.2f subsample %.2f colsample %.2f (f1 %.4f)",
		result.Params.LearningRate, result.Params.MaxDepth, result.Params.Rounds,
		result.Params.RegAlpha, result.Params.RegLambda,
		result.Params.Subsample, result.Params.ColsampleByTree, result.MeanF1))
	return nil
}

func runPredict(cfg *fpl.FplConfig, args []string, future bool) error {
	if len(args) != 1 {
		usage()
	}
	gameweek, err := strconv.Atoi(args[0])
	if err != nil || gameweek < 1 {
		return fmt.Errorf("invalid gameweek %s", args[0])
	}

	// A future gameweek has no live feed of its own, only its history
	endGameweek := gameweek
	if future {
		endGameweek = gameweek - 1
	}
	if endGameweek < 1 {
		return fmt.Errorf("cannot predict gameweek %d without any prior data", gameweek)
	}

	ds := fpl.NewDatasource(cfg)
	ctx, err := ds.LoadAll(endGameweek)
	if err != nil {
		return err
	}

	_, err = fpl.PredictGameweek(ctx, gameweek, future)
	return err
}
