package fpl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestContext builds a small two-club world: Arsenal (1) host Spurs (2)
// in every gameweek, players 10 and 11 play for them, and three gameweeks
// of live data exist. Gameweek 4 has a fixture but no live feed.
func newTestContext(t *testing.T, odds *OddsTable) *DataContext {
	t.Helper()

	bootstrap := &Bootstrap{
		Elements: []*Player{
			{ID: 10, FirstName: "Bukayo", SecondName: "Saka", TeamID: 1, ElementType: 3, NowCost: 100, TotalPoints: 60},
			{ID: 11, FirstName: "Son", SecondName: "Heung-min", TeamID: 2, ElementType: 3, NowCost: 95, TotalPoints: 55},
			{ID: 12, FirstName: "Late", SecondName: "Signing", TeamID: 1, ElementType: 4, NowCost: 60, TotalPoints: 10},
		},
		Teams: []*Team{
			{ID: 1, Name: "Arsenal", ShortName: "ARS", StrengthOverallHome: 1350, StrengthOverallAway: 1330},
			{ID: 2, Name: "Spurs", ShortName: "TOT", StrengthOverallHome: 1280, StrengthOverallAway: 1260},
		},
		ElementTypes: []*ElementType{
			{ID: 3, SingularName: "Midfielder", SingularNameShort: "MID"},
			{ID: 4, SingularName: "Forward", SingularNameShort: "FWD"},
		},
		Events: []*Event{{ID: 1, Finished: true}, {ID: 2, Finished: true}, {ID: 3, Finished: true}},
	}

	fixtures := []*Fixture{
		{ID: 100, Event: 1, TeamH: 1, TeamA: 2, KickoffTime: "2024-08-17T14:00:00Z"},
		{ID: 200, Event: 2, TeamH: 1, TeamA: 2, KickoffTime: "2024-08-24T14:00:00Z"},
		{ID: 300, Event: 3, TeamH: 1, TeamA: 2, KickoffTime: "2024-08-31T14:00:00Z"},
		{ID: 400, Event: 4, TeamH: 1, TeamA: 2, KickoffTime: "2024-09-14T14:00:00Z"},
	}

	live := func(gw, id, minutes, points, bps int, fixtureID int) *LivePlayer {
		return &LivePlayer{
			ID:      id,
			Stats:   LiveStats{Minutes: minutes, TotalPoints: points, Bps: bps},
			Explain: []ExplainEntry{{Fixture: fixtureID}},
		}
	}

	gameweeks := []*LiveGameweek{
		{Gameweek: 1, Elements: []*LivePlayer{
			live(1, 10, 90, 2, 10, 100),
			live(1, 11, 90, 6, 24, 100),
		}},
		{Gameweek: 2, Elements: []*LivePlayer{
			live(2, 10, 90, 5, 18, 200),
			live(2, 11, 60, 2, 8, 200),
		}},
		{Gameweek: 3, Elements: []*LivePlayer{
			live(3, 10, 90, 9, 30, 300),
			live(3, 11, 90, 8, 28, 300),
			// player 12 appears for the first time, without a fixture
			{ID: 12, Stats: LiveStats{Minutes: 0, TotalPoints: 0, Bps: 0}},
		}},
	}

	ctx, err := NewDataContext(DefaultFplConfig(), bootstrap, fixtures, gameweeks, odds)
	require.NoError(t, err)
	return ctx
}
