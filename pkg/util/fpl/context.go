package fpl

import (
	"fmt"
)

// DataContext owns every table one pipeline run works from: the bootstrap
// snapshot, the fixtures list, all loaded live gameweeks and the odds table.
// It is constructed once per run and passed explicitly into every resolver
// and aggregator, so there is no hidden load-order dependency and runs are
// test-isolated.
type DataContext struct {
	Config    *FplConfig
	Bootstrap *Bootstrap
	Fixtures  []*Fixture
	Gameweeks []*LiveGameweek
	Odds      *OddsTable

	playersByID    map[int]*Player
	teamsByID      map[int]*Team
	positionsByID  map[int]*ElementType
	fixturesByID   map[int]*Fixture
	liveByGameweek map[int]map[int]*LivePlayer
}

// NewDataContext builds a context and its lookup indexes. The odds table
// may be nil when a run does not need the odds join (tests mostly).
func NewDataContext(cfg *FplConfig, bootstrap *Bootstrap, fixtures []*Fixture, gameweeks []*LiveGameweek, odds *OddsTable) (*DataContext, error) {
	if bootstrap == nil {
		return nil, fmt.Errorf("bootstrap data is required")
	}

	ctx := &DataContext{
		Config:    cfg,
		Bootstrap: bootstrap,
		Fixtures:  fixtures,
		Gameweeks: gameweeks,
		Odds:      odds,

		playersByID:    make(map[int]*Player, len(bootstrap.Elements)),
		teamsByID:      make(map[int]*Team, len(bootstrap.Teams)),
		positionsByID:  make(map[int]*ElementType, len(bootstrap.ElementTypes)),
		fixturesByID:   make(map[int]*Fixture, len(fixtures)),
		liveByGameweek: make(map[int]map[int]*LivePlayer, len(gameweeks)),
	}

	for _, p := range bootstrap.Elements {
		ctx.playersByID[p.ID] = p
	}
	for _, t := range bootstrap.Teams {
		ctx.teamsByID[t.ID] = t
	}
	for _, et := range bootstrap.ElementTypes {
		ctx.positionsByID[et.ID] = et
	}
	for _, f := range fixtures {
		ctx.fixturesByID[f.ID] = f
	}
	for _, gw := range gameweeks {
		byPlayer := make(map[int]*LivePlayer, len(gw.Elements))
		for _, lp := range gw.Elements {
			byPlayer[lp.ID] = lp
		}
		ctx.liveByGameweek[gw.Gameweek] = byPlayer
	}

	return ctx, nil
}

// Player returns the bootstrap entry for a player id, or nil
func (ctx *DataContext) Player(id int) *Player {
	return ctx.playersByID[id]
}

// Team returns the bootstrap entry for a team id, or nil
func (ctx *DataContext) Team(id int) *Team {
	return ctx.teamsByID[id]
}

// Fixture returns the fixture for a fixture id, or nil
func (ctx *DataContext) Fixture(id int) *Fixture {
	return ctx.fixturesByID[id]
}

// Live returns a player's live entry for a gameweek, or nil when the player
// is absent from that gameweek's feed
func (ctx *DataContext) Live(gameweek, playerID int) *LivePlayer {
	byPlayer, ok := ctx.liveByGameweek[gameweek]
	if !ok {
		return nil
	}
	return byPlayer[playerID]
}

// HasGameweek reports whether the live feed for a gameweek is loaded
func (ctx *DataContext) HasGameweek(gameweek int) bool {
	_, ok := ctx.liveByGameweek[gameweek]
	return ok
}

// FixtureForTeam finds the fixture a team plays in a given gameweek, or nil
func (ctx *DataContext) FixtureForTeam(teamID, gameweek int) *Fixture {
	for _, f := range ctx.Fixtures {
		if f.Event != gameweek {
			continue
		}
		if f.TeamH == teamID || f.TeamA == teamID {
			return f
		}
	}
	return nil
}
