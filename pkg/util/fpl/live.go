package fpl

import (
	"encoding/json"
	"fmt"
)

// LiveStats are a player's in-game numbers for one gameweek. The feed
// serialises the influence/creativity/threat and expected-goals family
// as strings.
type LiveStats struct {
	Minutes     int    `json:"minutes"`
	TotalPoints int    `json:"total_points"`
	Bps         int    `json:"bps"`
	Influence   string `json:"influence"`
	Creativity  string `json:"creativity"`
	Threat      string `json:"threat"`

	ExpectedGoals            string `json:"expected_goals"`
	ExpectedAssists          string `json:"expected_assists"`
	ExpectedGoalInvolvements string `json:"expected_goal_involvements"`
	ExpectedGoalsConceded    string `json:"expected_goals_conceded"`
}

// ExplainEntry ties a player's gameweek stats to a fixture. Players
// without a club have an empty explain list; that absence is the
// "did not play" filter applied by the record builder.
type ExplainEntry struct {
	Fixture int `json:"fixture"`
}

// LivePlayer is one player's entry in the per-gameweek live feed
type LivePlayer struct {
	ID      int            `json:"id"`
	Stats   LiveStats      `json:"stats"`
	Explain []ExplainEntry `json:"explain"`
}

// LiveGameweek is the parsed live feed for a single gameweek
type LiveGameweek struct {
	Gameweek int
	Elements []*LivePlayer `json:"elements"`
}

// ParseLiveGameweek parses a per-gameweek live feed JSON document
func ParseLiveGameweek(data []byte, gameweek int) (*LiveGameweek, error) {
	var lg LiveGameweek
	if err := json.Unmarshal(data, &lg); err != nil {
		return nil, fmt.Errorf("error parsing live data for gameweek %d: %w", gameweek, err)
	}
	lg.Gameweek = gameweek
	if len(lg.Elements) == 0 {
		return nil, fmt.Errorf("live data for gameweek %d contained no players", gameweek)
	}
	return &lg, nil
}
