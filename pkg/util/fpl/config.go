package fpl

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Imbalance strategy selects how class imbalance is corrected during training.
// Exactly one strategy applies per model version, never both.
type ImbalanceStrategy string

const (
	// ImbalanceClassWeight corrects via the scale-pos-weight parameter
	ImbalanceClassWeight ImbalanceStrategy = "class-weight"
	// ImbalanceResample corrects via synthetic minority oversampling plus
	// majority undersampling before training
	ImbalanceResample ImbalanceStrategy = "resample"
)

// FplConfig contains all configurable parameters that influence the pipeline
// This centralizes all magic numbers and constants for easy adjustment
type FplConfig struct {
	// Filesystem layout
	AssetsPath      string // The base directory of assets relating to fplodds
	CachePath       string // Where cached downloaded data is stored
	DbPath          string // The location of the sqlite feature store
	ProcessedPath   string // Where processed feature CSVs are written
	ModelsPath      string // Where trained model bundles are written
	PredictionsPath string // Where prediction CSVs are written
	EncoderPath     string // Where the fitted encoder/scaler artifact is written

	// === DATA PROVIDER ENDPOINTS ===

	BootstrapURL string // FPL bootstrap-static endpoint (players/teams/positions)
	FixturesURL  string // FPL fixtures endpoint
	LiveURL      string // FPL per-gameweek live endpoint, takes the gameweek number

	OddsIndexURL   string // football-data.co.uk index page for English leagues
	OddsBaseURL    string // football-data.co.uk CSV download base
	OddsLeagueCode string // football-data.co.uk league code (default: E0, Premier League)

	Season string // the season we are building data for, "yyyy/yyyy"

	// Delay between consecutive remote fetches. Advisory only, there is no
	// retry or backoff; a failed fetch aborts the run.
	FetchDelay time.Duration

	// === RECORD BUILDING PARAMETERS ===

	RecentFormWindow int // Gameweeks in the recent-form window (default: 3)
	MinMinutes       int // Minimum minutes played for a training row (default: 60)
	PointsThreshold  int // FPL points above which a player is a high scorer (default: 4)

	// Minimum season total points for a player to be included when
	// synthesizing a future gameweek (default: 50)
	MinSeasonPointsForFuture int

	// === CLASSIFIER PARAMETERS ===

	// Fixed, versioned hyperparameters. These are not re-tuned per run; the
	// offline grid search in tune.go discovers new combinations.
	LearningRate    float64
	MaxDepth        int
	Rounds          int
	RegAlpha        float64
	RegLambda       float64
	Subsample       float64
	ColsampleByTree float64
	ScalePosWeight  float64
	MinChildWeight  float64
	Seed            int64

	Imbalance ImbalanceStrategy

	// Resampling targets, used only when Imbalance == ImbalanceResample
	ResampleMajorityRatio float64 // majority rows kept per minority row (default: 2.0)
}

// DefaultFplConfig returns the default configuration with all standard values
func DefaultFplConfig() *FplConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	assetsPath := filepath.Join(home, ".fplodds")

	return &FplConfig{
		AssetsPath:      assetsPath,
		CachePath:       filepath.Join(assetsPath, "cache"),
		DbPath:          filepath.Join(assetsPath, "fplodds.db"),
		ProcessedPath:   filepath.Join(assetsPath, "processed_data"),
		ModelsPath:      filepath.Join(assetsPath, "trained_models"),
		PredictionsPath: filepath.Join(assetsPath, "predictions"),
		EncoderPath:     filepath.Join(assetsPath, "trained_models", "saved_encoder.json"),

		BootstrapURL: "https://fantasy.premierleague.com/api/bootstrap-static/",
		FixturesURL:  "https://fantasy.premierleague.com/api/fixtures/",
		LiveURL:      "https://fantasy.premierleague.com/api/event/%d/live/",

		OddsIndexURL:   "https://www.football-data.co.uk/englandm.php",
		OddsBaseURL:    "https://www.football-data.co.uk/mmz4281",
		OddsLeagueCode: "E0",

		Season: "2024/2025",

		FetchDelay: 250 * time.Millisecond,

		RecentFormWindow:         3,
		MinMinutes:               60,
		PointsThreshold:          4,
		MinSeasonPointsForFuture: 50,

		// Discovered offline by the grid search, see tune.go
		LearningRate:    0.15,
		MaxDepth:        6,
		Rounds:          300,
		RegAlpha:        0.1,
		RegLambda:       0.2,
		Subsample:       0.7,
		ColsampleByTree: 0.9,
		ScalePosWeight:  12.0,
		MinChildWeight:  1.0,
		Seed:            42,

		Imbalance:             ImbalanceClassWeight,
		ResampleMajorityRatio: 2.0,
	}
}

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *FplConfig) error {
	if config.RecentFormWindow < 1 {
		return fmt.Errorf("RecentFormWindow must be at least 1, got: %d", config.RecentFormWindow)
	}

	if config.MinMinutes < 0 || config.MinMinutes > 90 {
		return fmt.Errorf("MinMinutes must be between 0 and 90, got: %d", config.MinMinutes)
	}

	if config.PointsThreshold < 1 {
		return fmt.Errorf("PointsThreshold must be at least 1, got: %d", config.PointsThreshold)
	}

	if config.LearningRate <= 0.0 || config.LearningRate > 1.0 {
		return fmt.Errorf("LearningRate must be in (0, 1], got: %f", config.LearningRate)
	}

	if config.MaxDepth < 1 || config.MaxDepth > 16 {
		return fmt.Errorf("MaxDepth must be between 1 and 16, got: %d", config.MaxDepth)
	}

	if config.Rounds < 1 {
		return fmt.Errorf("Rounds must be at least 1, got: %d", config.Rounds)
	}

	if config.Subsample <= 0.0 || config.Subsample > 1.0 {
		return fmt.Errorf("Subsample must be in (0, 1], got: %f", config.Subsample)
	}

	if config.ColsampleByTree <= 0.0 || config.ColsampleByTree > 1.0 {
		return fmt.Errorf("ColsampleByTree must be in (0, 1], got: %f", config.ColsampleByTree)
	}

	switch config.Imbalance {
	case ImbalanceClassWeight, ImbalanceResample:
	default:
		return fmt.Errorf("unknown imbalance strategy: %s", config.Imbalance)
	}

	if config.Imbalance == ImbalanceResample && config.ResampleMajorityRatio < 1.0 {
		return fmt.Errorf("ResampleMajorityRatio must be at least 1.0, got: %f", config.ResampleMajorityRatio)
	}

	return nil
}

// GBTParams extracts the tree-booster hyperparameters from the config
func (c *FplConfig) GBTParams() GBTParams {
	p := GBTParams{
		LearningRate:    c.LearningRate,
		MaxDepth:        c.MaxDepth,
		Rounds:          c.Rounds,
		RegAlpha:        c.RegAlpha,
		RegLambda:       c.RegLambda,
		Subsample:       c.Subsample,
		ColsampleByTree: c.ColsampleByTree,
		MinChildWeight:  c.MinChildWeight,
		Seed:            c.Seed,
	}
	// scale-pos-weight only applies under the class-weight strategy
	if c.Imbalance == ImbalanceClassWeight {
		p.ScalePosWeight = c.ScalePosWeight
	} else {
		p.ScalePosWeight = 1.0
	}
	return p
}
