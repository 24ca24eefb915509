package fpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOddsCSV = `Div,Date,HomeTeam,AwayTeam,B365H,B365D,B365A,B365>2.5
E0,17/08/2024,Arsenal,Tottenham,1.5,4.2,5.0,1.8
E0,24/08/2024,Arsenal,Tottenham,1.6,4.0,4.8,1.9
E0,24/08/2024,Chelsea,Liverpool,2.8,3.4,2.5,1.7`

func TestParseOddsCSV(t *testing.T) {
	table, err := ParseOddsCSV(testOddsCSV)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	row := table.Rows[0]
	assert.Equal(t, "17/08/2024", row.Date)
	assert.Equal(t, "Arsenal", row.HomeTeam)
	assert.InDelta(t, 1.5, row.HomeWinOdds, 1e-9)
	assert.InDelta(t, 5.0, row.AwayWinOdds, 1e-9)
	assert.InDelta(t, 1.8, row.OverTwoPointFive, 1e-9)
}

func TestParseOddsCSVNormalisesTwoDigitYears(t *testing.T) {
	table, err := ParseOddsCSV("Date,HomeTeam,AwayTeam,B365H,B365A,B365>2.5\n17/08/24,Arsenal,Tottenham,1.5,5.0,1.8\n")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "17/08/2024", table.Rows[0].Date)
}

func TestParseOddsCSVMissingOddsAreSentinels(t *testing.T) {
	table, err := ParseOddsCSV("Date,HomeTeam,AwayTeam,B365H,B365A,B365>2.5\n17/08/2024,Arsenal,Tottenham,,,\n")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, SentinelFloat, table.Rows[0].HomeWinOdds)
}

func TestResolveOddsPicksTheCorrectSide(t *testing.T) {
	table, err := ParseOddsCSV(testOddsCSV)
	require.NoError(t, err)
	ctx := newTestContext(t, table)

	// Arsenal at home in fixture 100 on 17/08/2024
	home, err := ctx.ResolveOdds(1, 100)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, home.WinOdds, 1e-9)
	assert.InDelta(t, 1.8, home.OverTwoPointFive, 1e-9)

	// Spurs away in the same fixture, canonical name Tottenham
	away, err := ctx.ResolveOdds(2, 100)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, away.WinOdds, 1e-9)
	assert.InDelta(t, 1.8, away.OverTwoPointFive, 1e-9)
}

func TestResolveOddsNoMatchIsSentinelNotError(t *testing.T) {
	table, err := ParseOddsCSV("Date,HomeTeam,AwayTeam,B365H,B365A,B365>2.5\n01/01/2025,Chelsea,Liverpool,2.0,3.0,1.7\n")
	require.NoError(t, err)
	ctx := newTestContext(t, table)

	result, err := ctx.ResolveOdds(1, 100)
	require.NoError(t, err)
	assert.Equal(t, SentinelFloat, result.WinOdds)
	assert.Equal(t, SentinelFloat, result.OverTwoPointFive)
}

func TestResolveOddsAmbiguousMatchIsError(t *testing.T) {
	duplicated := "Date,HomeTeam,AwayTeam,B365H,B365A,B365>2.5\n" +
		"17/08/2024,Arsenal,Tottenham,1.5,5.0,1.8\n" +
		"17/08/2024,Arsenal,Everton,1.4,6.0,1.9\n"
	table, err := ParseOddsCSV(duplicated)
	require.NoError(t, err)
	ctx := newTestContext(t, table)

	_, err = ctx.ResolveOdds(1, 100)
	assert.Error(t, err)
}

func TestResolveOddsNilTableIsSentinel(t *testing.T) {
	ctx := newTestContext(t, nil)
	result, err := ctx.ResolveOdds(1, 100)
	require.NoError(t, err)
	assert.Equal(t, SentinelFloat, result.WinOdds)
}

func TestCanonicalOddsName(t *testing.T) {
	assert.Equal(t, "Tottenham", CanonicalOddsName("Spurs"))
	assert.Equal(t, "Man United", CanonicalOddsName("Man Utd"))
	assert.Equal(t, "Brentford", CanonicalOddsName("Brentford"))
}
