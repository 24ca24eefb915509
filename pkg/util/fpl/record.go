package fpl

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/richard-senior/fplodds/internal/logger"
	"github.com/richard-senior/fplodds/pkg/util"
)

// Compile-time check that the flat record implements Persistable
var _ Persistable = (*FeatureRecord)(nil)

// FeatureRecord is one (player, gameweek) row of the flat dataset. Every
// lookup, form average and odds value is already resolved; a missing value
// is the -1 or "NULL" sentinel, never a zero. The same shape serves
// training rows (Points known) and future rows (Points sentinel).
type FeatureRecord struct {
	Gameweek int `json:"gameweek" column:"gameweek" dbtype:"INTEGER" primary:"true" index:"true"`
	PlayerID int `json:"player_id" column:"player_id" dbtype:"INTEGER" primary:"true" index:"true"`

	PlayerName     string `json:"player_name" column:"player_name" dbtype:"TEXT"`
	TeamName       string `json:"team_name" column:"team_name" dbtype:"TEXT"`
	OppositionName string `json:"opposition_name" column:"opposition_name" dbtype:"TEXT"`

	FixtureID    int     `json:"fixture_id" column:"fixture_id" dbtype:"INTEGER DEFAULT -1"`
	PlayerValue  int     `json:"player_value" column:"player_value" dbtype:"INTEGER DEFAULT -1"`
	PositionID   int     `json:"position_id" column:"position_id" dbtype:"INTEGER DEFAULT -1"`
	TeamID       int     `json:"team_id" column:"team_id" dbtype:"INTEGER DEFAULT -1" index:"true"`
	TeamStrength float64 `json:"team_strength" column:"team_strength" dbtype:"REAL DEFAULT -1"`

	HomeOrAwayID       int     `json:"home_or_away_id" column:"home_or_away_id" dbtype:"INTEGER DEFAULT -1"`
	OppositionID       int     `json:"opposition_id" column:"opposition_id" dbtype:"INTEGER DEFAULT -1"`
	OppositionStrength float64 `json:"opposition_team_strength" column:"opposition_team_strength" dbtype:"REAL DEFAULT -1"`

	Minutes int `json:"minutes" column:"minutes" dbtype:"INTEGER DEFAULT -1"`

	RecentPoints float64 `json:"recent_points" column:"recent_points" dbtype:"REAL DEFAULT -1"`
	RecentBps    float64 `json:"recent_bps" column:"recent_bps" dbtype:"REAL DEFAULT -1"`

	SeasonPoints  float64 `json:"season_points" column:"season_points" dbtype:"REAL DEFAULT -1"`
	SeasonBps     float64 `json:"season_bps" column:"season_bps" dbtype:"REAL DEFAULT -1"`
	SeasonMinutes float64 `json:"season_minutes" column:"season_minutes" dbtype:"REAL DEFAULT -1"`

	WinOdds               float64 `json:"win_odds" column:"win_odds" dbtype:"REAL DEFAULT -1"`
	OverTwoPointFiveGoals float64 `json:"over_two_point_five_goals" column:"over_two_point_five_goals" dbtype:"REAL DEFAULT -1"`

	OverFourPoints int `json:"over_four_points" column:"over_four_points" dbtype:"INTEGER DEFAULT 0"`
	Points         int `json:"points" column:"points" dbtype:"INTEGER DEFAULT -1"`

	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// GetTableName returns the table name for feature records
func (r *FeatureRecord) GetTableName() string {
	return "feature_records"
}

// GetPrimaryKey returns the composite primary key as a map
func (r *FeatureRecord) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"gameweek":  r.Gameweek,
		"player_id": r.PlayerID,
	}
}

// BeforeSave is called before saving the record
func (r *FeatureRecord) BeforeSave() error {
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return nil
}

// recordCSVHeader fixes the CSV column order. The loader keys on these
// names, so the order here and in csvRow must agree.
var recordCSVHeader = []string{
	"gameweek",
	"player_id",
	"player_name",
	"team_name",
	"opposition_name",
	"fixture_id",
	"player_value",
	"position_id",
	"team_id",
	"team_strength",
	"home_or_away_id",
	"opposition_id",
	"opposition_team_strength",
	"minutes",
	"recent_points",
	"recent_bps",
	"season_points",
	"season_bps",
	"season_minutes",
	"win_odds",
	"over_two_point_five_goals",
	"over_four_points",
	"points",
}

func (r *FeatureRecord) csvRow() []string {
	return []string{
		strconv.Itoa(r.Gameweek),
		strconv.Itoa(r.PlayerID),
		r.PlayerName,
		r.TeamName,
		r.OppositionName,
		strconv.Itoa(r.FixtureID),
		strconv.Itoa(r.PlayerValue),
		strconv.Itoa(r.PositionID),
		strconv.Itoa(r.TeamID),
		formatFloat(r.TeamStrength),
		strconv.Itoa(r.HomeOrAwayID),
		strconv.Itoa(r.OppositionID),
		formatFloat(r.OppositionStrength),
		strconv.Itoa(r.Minutes),
		formatFloat(r.RecentPoints),
		formatFloat(r.RecentBps),
		formatFloat(r.SeasonPoints),
		formatFloat(r.SeasonBps),
		formatFloat(r.SeasonMinutes),
		formatFloat(r.WinOdds),
		formatFloat(r.OverTwoPointFiveGoals),
		strconv.Itoa(r.OverFourPoints),
		strconv.Itoa(r.Points),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// RecordBuilder assembles flat feature records from a loaded data context
type RecordBuilder struct {
	ctx *DataContext
}

// NewRecordBuilder returns a builder over a loaded context
func NewRecordBuilder(ctx *DataContext) *RecordBuilder {
	return &RecordBuilder{ctx: ctx}
}

// BuildGameweek produces one record per player who has a fixture in the
// given gameweek's live feed. Players with an empty explain list did not
// belong to a club that week and produce no record at all. Missing form
// becomes the -1 sentinel here, at the edge of the flat representation.
//
// Records follow the feed's element order, so repeated builds over the
// same inputs emit identical row sequences and identical CSVs.
func (b *RecordBuilder) BuildGameweek(gameweek int) ([]*FeatureRecord, error) {
	var feed *LiveGameweek
	for _, gw := range b.ctx.Gameweeks {
		if gw.Gameweek == gameweek {
			feed = gw
			break
		}
	}
	if feed == nil {
		return nil, fmt.Errorf("live data for gameweek %d is not loaded", gameweek)
	}

	records := make([]*FeatureRecord, 0, len(feed.Elements))
	for _, lp := range feed.Elements {
		if len(lp.Explain) == 0 {
			continue
		}
		fixtureID := lp.Explain[0].Fixture

		rec, err := b.buildRecord(lp.ID, gameweek, fixtureID)
		if err != nil {
			return nil, err
		}

		rec.Minutes = lp.Stats.Minutes
		rec.Points = lp.Stats.TotalPoints
		if lp.Stats.TotalPoints > b.ctx.Config.PointsThreshold {
			rec.OverFourPoints = 1
		}

		records = append(records, rec)
	}

	logger.Info("Built", len(records), "records for gameweek", gameweek)
	return records, nil
}

// BuildRange builds records for each gameweek in [from, to] inclusive
func (b *RecordBuilder) BuildRange(from, to int) ([]*FeatureRecord, error) {
	if from < 1 || to < from {
		return nil, fmt.Errorf("invalid gameweek range %d..%d", from, to)
	}
	var all []*FeatureRecord
	for gw := from; gw <= to; gw++ {
		records, err := b.BuildGameweek(gw)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// BuildFutureGameweek synthesizes records for a gameweek that has not been
// played. There is no live feed to enumerate, so the candidate set is every
// bootstrap player above the season points floor; their fixture comes from
// the schedule and the in-game stats stay at sentinels.
func (b *RecordBuilder) BuildFutureGameweek(gameweek int) ([]*FeatureRecord, error) {
	if b.ctx.HasGameweek(gameweek) {
		return nil, fmt.Errorf("gameweek %d already has live data, use BuildGameweek", gameweek)
	}

	var records []*FeatureRecord
	for _, p := range b.ctx.Bootstrap.Elements {
		if p.TotalPoints <= b.ctx.Config.MinSeasonPointsForFuture {
			continue
		}

		f := b.ctx.FixtureForTeam(p.TeamID, gameweek)
		if f == nil {
			// blank gameweek for this club
			continue
		}

		rec, err := b.buildRecord(p.ID, gameweek, f.ID)
		if err != nil {
			return nil, err
		}

		rec.Minutes = SentinelInt
		rec.Points = SentinelInt

		records = append(records, rec)
	}

	logger.Info("Built", len(records), "future records for gameweek", gameweek)
	return records, nil
}

// buildRecord resolves the shared (lookup, form, odds) portion of a record
func (b *RecordBuilder) buildRecord(playerID, gameweek, fixtureID int) (*FeatureRecord, error) {
	ctx := b.ctx

	team := ctx.PlayerTeam(playerID)
	position := ctx.PlayerPosition(playerID)
	opposition := ctx.HomeOrAway(playerID, fixtureID)

	odds, err := ctx.ResolveOdds(team.TeamID, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("gameweek %d player %d: %w", gameweek, playerID, err)
	}

	rec := &FeatureRecord{
		Gameweek:              gameweek,
		PlayerID:              playerID,
		PlayerName:            ctx.PlayerName(playerID),
		TeamName:              team.TeamName,
		OppositionName:        opposition.OppositionName,
		FixtureID:             fixtureID,
		PlayerValue:           ctx.PlayerValue(playerID),
		PositionID:            position.ID,
		TeamID:                team.TeamID,
		TeamStrength:          team.TeamStrength,
		HomeOrAwayID:          opposition.HomeOrAwayID,
		OppositionID:          opposition.OppositionID,
		OppositionStrength:    opposition.OppositionStrength,
		WinOdds:               odds.WinOdds,
		OverTwoPointFiveGoals: odds.OverTwoPointFive,
	}

	recent := ctx.RecentForm(playerID, gameweek)
	if recent.Missing {
		rec.RecentPoints = SentinelFloat
		rec.RecentBps = SentinelFloat
	} else {
		rec.RecentPoints = recent.Points
		rec.RecentBps = recent.Bps
	}

	season := ctx.SeasonForm(playerID, gameweek)
	if season.Missing {
		rec.SeasonPoints = SentinelFloat
		rec.SeasonBps = SentinelFloat
		rec.SeasonMinutes = SentinelFloat
	} else {
		rec.SeasonPoints = season.Points
		rec.SeasonBps = season.Bps
		rec.SeasonMinutes = season.Minutes
	}

	return rec, nil
}

// WriteRecordsCSV writes records to a CSV file. When appending to an
// existing file the header is skipped so batches from successive gameweeks
// accumulate into one well-formed file.
func WriteRecordsCSV(records []*FeatureRecord, path string, append bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	writeHeader := true
	if append {
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			writeHeader = false
		}
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if writeHeader {
		if err := w.Write(recordCSVHeader); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}
	for _, r := range records {
		if err := w.Write(r.csvRow()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	logger.Info("Wrote", len(records), "records to", path)
	return nil
}

// LoadRecordsCSV reads a records CSV back into memory, keyed by header
// name so column reordering in the file is harmless
func LoadRecordsCSV(path string) ([]*FeatureRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s contains no records", path)
	}

	headers := rows[0]
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}
	for _, required := range recordCSVHeader {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%s is missing column %s", path, required)
		}
	}

	records := make([]*FeatureRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		get := func(col string) string { return row[index[col]] }
		geti := func(col string) int {
			v, err := util.GetAsInteger(get(col))
			if err != nil {
				return SentinelInt
			}
			return v
		}
		getf := func(col string) float64 {
			v, err := util.GetAsFloat(get(col))
			if err != nil {
				return SentinelFloat
			}
			return v
		}

		records = append(records, &FeatureRecord{
			Gameweek:              geti("gameweek"),
			PlayerID:              geti("player_id"),
			PlayerName:            get("player_name"),
			TeamName:              get("team_name"),
			OppositionName:        get("opposition_name"),
			FixtureID:             geti("fixture_id"),
			PlayerValue:           geti("player_value"),
			PositionID:            geti("position_id"),
			TeamID:                geti("team_id"),
			TeamStrength:          getf("team_strength"),
			HomeOrAwayID:          geti("home_or_away_id"),
			OppositionID:          geti("opposition_id"),
			OppositionStrength:    getf("opposition_team_strength"),
			Minutes:               geti("minutes"),
			RecentPoints:          getf("recent_points"),
			RecentBps:             getf("recent_bps"),
			SeasonPoints:          getf("season_points"),
			SeasonBps:             getf("season_bps"),
			SeasonMinutes:         getf("season_minutes"),
			WinOdds:               getf("win_odds"),
			OverTwoPointFiveGoals: getf("over_two_point_five_goals"),
			OverFourPoints:        geti("over_four_points"),
			Points:                geti("points"),
		})
	}

	logger.Info("Loaded", len(records), "records from", path)
	return records, nil
}
