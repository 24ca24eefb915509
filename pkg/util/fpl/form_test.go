package fpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecentForm(t *testing.T) {
	ctx := newTestContext(t, nil)

	// gameweek 4 looks back over gameweeks 1-3: points 2, 5, 9
	form := ctx.RecentForm(10, 4)
	assert.False(t, form.Missing)
	assert.InDelta(t, (2.0+5.0+9.0)/3.0, form.Points, 1e-9)
	assert.InDelta(t, (10.0+18.0+30.0)/3.0, form.Bps, 1e-9)
}

func TestRecentFormDividesByWindowAtSeasonStart(t *testing.T) {
	ctx := newTestContext(t, nil)

	// gameweek 2 has only gameweek 1 of history but still divides by the
	// full window length
	form := ctx.RecentForm(10, 2)
	assert.False(t, form.Missing)
	assert.InDelta(t, 2.0/3.0, form.Points, 1e-9)
}

func TestRecentFormFirstGameweekIsMissing(t *testing.T) {
	ctx := newTestContext(t, nil)
	form := ctx.RecentForm(10, 1)
	assert.True(t, form.Missing)
}

func TestRecentFormAbsentPlayerIsMissing(t *testing.T) {
	ctx := newTestContext(t, nil)

	// player 12 only appears in gameweek 3, so the window is incomplete
	form := ctx.RecentForm(12, 4)
	assert.True(t, form.Missing)
}

func TestSeasonForm(t *testing.T) {
	ctx := newTestContext(t, nil)

	season := ctx.SeasonForm(10, 4)
	assert.False(t, season.Missing)
	assert.InDelta(t, (2.0+5.0+9.0)/3.0, season.Points, 1e-9)
	assert.InDelta(t, 90.0, season.Minutes, 1e-9)
}

func TestSeasonFormFirstGameweekIsMissing(t *testing.T) {
	ctx := newTestContext(t, nil)
	season := ctx.SeasonForm(10, 1)
	assert.True(t, season.Missing)
}

func TestSeasonFormAbsentPlayerIsMissing(t *testing.T) {
	ctx := newTestContext(t, nil)

	// absent from gameweeks 1 and 2, season history is incomplete
	season := ctx.SeasonForm(12, 4)
	assert.True(t, season.Missing)
}

func TestSeasonFormDistinguishesZeroFromMissing(t *testing.T) {
	ctx := newTestContext(t, nil)

	// a player who played every week and scored nothing is not missing
	for _, gw := range ctx.Gameweeks {
		for _, lp := range gw.Elements {
			if lp.ID == 10 {
				lp.Stats.TotalPoints = 0
				lp.Stats.Bps = 0
			}
		}
	}

	season := ctx.SeasonForm(10, 4)
	assert.False(t, season.Missing)
	assert.Equal(t, 0.0, season.Points)
}
