package fpl

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/richard-senior/fplodds/internal/logger"
)

// OddsRow is one match from the historic odds CSV (football-data.co.uk).
// The source has no fixture ids; matching is by date plus team name.
type OddsRow struct {
	Date     string // DD/MM/YYYY
	HomeTeam string
	AwayTeam string

	HomeWinOdds      float64 // B365H
	AwayWinOdds      float64 // B365A
	OverTwoPointFive float64 // B365>2.5
}

// OddsTable indexes the odds rows by date+team for each side so the
// resolver does a single map lookup rather than a scan per player
type OddsTable struct {
	Rows []*OddsRow

	byDateHome map[string][]*OddsRow
	byDateAway map[string][]*OddsRow
}

// OddsResult is the resolved odds for one player's fixture. The over-2.5
// odds are side-independent and shared across both teams in a fixture.
type OddsResult struct {
	WinOdds          float64
	OverTwoPointFive float64
}

var missingOdds = OddsResult{WinOdds: SentinelFloat, OverTwoPointFive: SentinelFloat}

// canonicalOddsNames maps FPL team names onto the spellings football-data.co.uk
// uses. Any name not listed here is used as-is. The FPL name comes from the
// team id, so joining stays id-driven up to this final spelling translation.
var canonicalOddsNames = map[string]string{
	"Man Utd":       "Man United",
	"Spurs":         "Tottenham",
	"Sheffield Utd": "Sheffield United",
	"Nottm Forest":  "Nott'm Forest",
}

// CanonicalOddsName returns the odds-table spelling of an FPL team name
func CanonicalOddsName(fplName string) string {
	if canonical, ok := canonicalOddsNames[fplName]; ok {
		return canonical
	}
	return fplName
}

// ParseOddsCSV parses the football-data.co.uk CSV into an indexed table.
// Rows with unparseable odds get sentinel values rather than being dropped;
// the downstream win_odds filter removes them from training data.
func ParseOddsCSV(csvData string) (*OddsTable, error) {
	reader := csv.NewReader(strings.NewReader(csvData))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse odds CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("odds CSV was empty")
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	table := &OddsTable{
		byDateHome: make(map[string][]*OddsRow),
		byDateAway: make(map[string][]*OddsRow),
	}

	for i, record := range records[1:] {
		if len(record) < 3 {
			continue
		}

		row := make(map[string]string, len(headers))
		for j, value := range record {
			if j < len(headers) {
				row[headers[j]] = strings.TrimSpace(value)
			}
		}

		if row["HomeTeam"] == "" || row["AwayTeam"] == "" || row["Date"] == "" {
			continue
		}

		odds := &OddsRow{
			Date:             normaliseOddsDate(row["Date"]),
			HomeTeam:         row["HomeTeam"],
			AwayTeam:         row["AwayTeam"],
			HomeWinOdds:      parseOddsField(row["B365H"]),
			AwayWinOdds:      parseOddsField(row["B365A"]),
			OverTwoPointFive: parseOddsField(row["B365>2.5"]),
		}

		if odds.Date == "" {
			logger.Warn("Skipping odds row with unparseable date at row", i+2)
			continue
		}

		table.Rows = append(table.Rows, odds)
		homeKey := odds.Date + "|" + odds.HomeTeam
		awayKey := odds.Date + "|" + odds.AwayTeam
		table.byDateHome[homeKey] = append(table.byDateHome[homeKey], odds)
		table.byDateAway[awayKey] = append(table.byDateAway[awayKey], odds)
	}

	logger.Info("Parsed odds table:", len(table.Rows), "rows")
	return table, nil
}

// parseOddsField parses a decimal odds value, sentinel on blank or junk
func parseOddsField(s string) float64 {
	if s == "" {
		return SentinelFloat
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return SentinelFloat
	}
	return v
}

// normaliseOddsDate accepts DD/MM/YYYY or DD/MM/YY and returns DD/MM/YYYY
func normaliseOddsDate(s string) string {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return ""
	}
	if len(parts[2]) == 2 {
		parts[2] = "20" + parts[2]
	}
	if len(parts[2]) != 4 {
		return ""
	}
	return strings.Join(parts, "/")
}

// ResolveOdds joins a player's fixture to the odds table. The side is
// decided by comparing the player's team id against the fixture's home and
// away team ids; the date key comes from the kickoff timestamp and the team
// name from the canonical id-based mapping.
//
// Zero matching rows yields the sentinel result. Multiple matching rows is
// an explicit ambiguity error; there is no defined tie-break and silently
// taking the first row risks attributing the wrong game's odds.
func (ctx *DataContext) ResolveOdds(playerTeamID, fixtureID int) (OddsResult, error) {
	if ctx.Odds == nil {
		return missingOdds, nil
	}

	f := ctx.Fixture(fixtureID)
	if f == nil {
		return missingOdds, nil
	}

	team := ctx.Team(playerTeamID)
	if team == nil {
		return missingOdds, nil
	}

	dateKey, err := f.OddsDateKey()
	if err != nil {
		logger.Debug("No odds date key for fixture", fixtureID, err)
		return missingOdds, nil
	}

	name := CanonicalOddsName(team.Name)

	var rows []*OddsRow
	var home bool
	switch playerTeamID {
	case f.TeamH:
		home = true
		rows = ctx.Odds.byDateHome[dateKey+"|"+name]
	case f.TeamA:
		home = false
		rows = ctx.Odds.byDateAway[dateKey+"|"+name]
	default:
		return missingOdds, nil
	}

	if len(rows) == 0 {
		return missingOdds, nil
	}
	if len(rows) > 1 {
		return missingOdds, fmt.Errorf("ambiguous odds match: %d rows for %s on %s", len(rows), name, dateKey)
	}

	row := rows[0]
	result := OddsResult{OverTwoPointFive: row.OverTwoPointFive}
	if home {
		result.WinOdds = row.HomeWinOdds
	} else {
		result.WinOdds = row.AwayWinOdds
	}
	return result, nil
}
