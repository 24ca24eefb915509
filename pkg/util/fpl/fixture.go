package fpl

import (
	"encoding/json"
	"fmt"
	"time"
)

// Fixture is a single entry from the fixtures endpoint. Event is the
// gameweek number and may be zero for fixtures not yet scheduled.
type Fixture struct {
	ID          int    `json:"id"`
	Event       int    `json:"event"`
	TeamH       int    `json:"team_h"`
	TeamA       int    `json:"team_a"`
	KickoffTime string `json:"kickoff_time"`
}

// ParseFixtures parses the fixtures endpoint JSON document
func ParseFixtures(data []byte) ([]*Fixture, error) {
	var fixtures []*Fixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("error parsing fixtures data: %w", err)
	}
	if len(fixtures) == 0 {
		return nil, fmt.Errorf("fixtures data was empty")
	}
	return fixtures, nil
}

// Kickoff parses the fixture's ISO-8601 kickoff timestamp
func (f *Fixture) Kickoff() (time.Time, error) {
	if f.KickoffTime == "" {
		return time.Time{}, fmt.Errorf("fixture %d has no kickoff time", f.ID)
	}
	t, err := time.Parse("2006-01-02T15:04:05Z", f.KickoffTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse kickoff time %s: %w", f.KickoffTime, err)
	}
	return t, nil
}

// OddsDateKey converts the kickoff timestamp to the DD/MM/YYYY key the
// odds table is indexed by
func (f *Fixture) OddsDateKey() (string, error) {
	t, err := f.Kickoff()
	if err != nil {
		return "", err
	}
	return t.Format("02/01/2006"), nil
}
