package fpl

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findRecord(records []*FeatureRecord, playerID int) *FeatureRecord {
	for _, r := range records {
		if r.PlayerID == playerID {
			return r
		}
	}
	return nil
}

func TestBuildGameweek(t *testing.T) {
	table, err := ParseOddsCSV(testOddsCSV)
	require.NoError(t, err)
	ctx := newTestContext(t, table)

	records, err := NewRecordBuilder(ctx).BuildGameweek(1)
	require.NoError(t, err)
	require.Len(t, records, 2)

	rec := findRecord(records, 10)
	require.NotNil(t, rec)
	assert.Equal(t, "Bukayo Saka", rec.PlayerName)
	assert.Equal(t, "Arsenal", rec.TeamName)
	assert.Equal(t, "Spurs", rec.OppositionName)
	assert.Equal(t, 1, rec.HomeOrAwayID)
	assert.Equal(t, 90, rec.Minutes)
	assert.Equal(t, 2, rec.Points)
	assert.Equal(t, 0, rec.OverFourPoints)
	assert.InDelta(t, 1.5, rec.WinOdds, 1e-9)

	// no prior history in gameweek 1, form is sentinel
	assert.Equal(t, SentinelFloat, rec.RecentPoints)
	assert.Equal(t, SentinelFloat, rec.SeasonPoints)

	spurs := findRecord(records, 11)
	require.NotNil(t, spurs)
	assert.Equal(t, 2, spurs.HomeOrAwayID)
	assert.Equal(t, 1, spurs.OverFourPoints)
	assert.InDelta(t, 5.0, spurs.WinOdds, 1e-9)
}

func TestBuildGameweekSkipsPlayersWithoutFixtures(t *testing.T) {
	ctx := newTestContext(t, nil)

	// player 12 is in the gameweek 3 feed with an empty explain list
	records, err := NewRecordBuilder(ctx).BuildGameweek(3)
	require.NoError(t, err)
	assert.Nil(t, findRecord(records, 12))
	assert.Len(t, records, 2)
}

func TestBuildGameweekFormCarriesHistory(t *testing.T) {
	ctx := newTestContext(t, nil)

	records, err := NewRecordBuilder(ctx).BuildGameweek(3)
	require.NoError(t, err)

	rec := findRecord(records, 10)
	require.NotNil(t, rec)
	// gameweeks 1 and 2 (points 2, 5) averaged over the window of 3
	assert.InDelta(t, 7.0/3.0, rec.RecentPoints, 1e-9)
	// season mean over the two played gameweeks
	assert.InDelta(t, 3.5, rec.SeasonPoints, 1e-9)
}

func TestBuildGameweekOrderIsDeterministic(t *testing.T) {
	// a feed large enough that map iteration would scramble it
	elements := make([]*LivePlayer, 0, 60)
	players := make([]*Player, 0, 60)
	for i := 60; i >= 1; i-- {
		players = append(players, &Player{ID: i, SecondName: "Player", TeamID: 1, ElementType: 3})
		elements = append(elements, &LivePlayer{
			ID:      i,
			Stats:   LiveStats{Minutes: 90, TotalPoints: i % 10},
			Explain: []ExplainEntry{{Fixture: 100}},
		})
	}

	bootstrap := &Bootstrap{
		Elements:     players,
		Teams:        []*Team{{ID: 1, Name: "Arsenal"}, {ID: 2, Name: "Spurs"}},
		ElementTypes: []*ElementType{{ID: 3, SingularNameShort: "MID"}},
	}
	fixtures := []*Fixture{{ID: 100, Event: 1, TeamH: 1, TeamA: 2, KickoffTime: "2024-08-17T14:00:00Z"}}
	gameweeks := []*LiveGameweek{{Gameweek: 1, Elements: elements}}

	ctx, err := NewDataContext(DefaultFplConfig(), bootstrap, fixtures, gameweeks, nil)
	require.NoError(t, err)

	order := func() []int {
		records, err := NewRecordBuilder(ctx).BuildGameweek(1)
		require.NoError(t, err)
		ids := make([]int, len(records))
		for i, r := range records {
			ids[i] = r.PlayerID
		}
		return ids
	}

	first := order()
	require.Len(t, first, 60)
	// records come out in feed order, descending ids here
	assert.Equal(t, 60, first[0])
	assert.Equal(t, 1, first[59])
	assert.Equal(t, first, order())
}

func TestBuildGameweekNotLoadedIsError(t *testing.T) {
	ctx := newTestContext(t, nil)
	_, err := NewRecordBuilder(ctx).BuildGameweek(9)
	assert.Error(t, err)
}

func TestBuildRange(t *testing.T) {
	ctx := newTestContext(t, nil)
	records, err := NewRecordBuilder(ctx).BuildRange(1, 3)
	require.NoError(t, err)
	assert.Len(t, records, 6)
}

func TestBuildFutureGameweek(t *testing.T) {
	ctx := newTestContext(t, nil)

	records, err := NewRecordBuilder(ctx).BuildFutureGameweek(4)
	require.NoError(t, err)

	// players 10 and 11 clear the season points floor, player 12 does not
	require.Len(t, records, 2)
	assert.Nil(t, findRecord(records, 12))

	rec := findRecord(records, 10)
	require.NotNil(t, rec)
	assert.Equal(t, 400, rec.FixtureID)
	assert.Equal(t, SentinelInt, rec.Points)
	assert.Equal(t, SentinelInt, rec.Minutes)
	// history through gameweek 3 is available
	assert.False(t, rec.RecentPoints == SentinelFloat)
}

func TestBuildFutureGameweekRejectsPlayedGameweek(t *testing.T) {
	ctx := newTestContext(t, nil)
	_, err := NewRecordBuilder(ctx).BuildFutureGameweek(2)
	assert.Error(t, err)
}

func TestRecordsCSVRoundTrip(t *testing.T) {
	ctx := newTestContext(t, nil)
	records, err := NewRecordBuilder(ctx).BuildRange(1, 3)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "records.csv")
	require.NoError(t, WriteRecordsCSV(records[:4], path, false))
	// appending must not repeat the header
	require.NoError(t, WriteRecordsCSV(records[4:], path, true))

	loaded, err := LoadRecordsCSV(path)
	require.NoError(t, err)
	require.Len(t, loaded, len(records))

	assert.Equal(t, records[0].PlayerID, loaded[0].PlayerID)
	assert.Equal(t, records[0].PlayerName, loaded[0].PlayerName)
	assert.InDelta(t, records[0].TeamStrength, loaded[0].TeamStrength, 1e-9)
	assert.Equal(t, records[5].Points, loaded[5].Points)
}
