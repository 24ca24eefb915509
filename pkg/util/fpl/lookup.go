package fpl

// Lookup resolvers map ids onto static attributes from the bootstrap
// snapshot. A missing id never raises; it yields the sentinel values
// (-1 / "NULL") which propagate into the flat record and are removed by
// the downstream win_odds and minutes filters, not here.

const (
	// SentinelInt marks a missing numeric value in a flat record
	SentinelInt = -1
	// SentinelFloat marks a missing float value in a flat record
	SentinelFloat = -1.0
	// SentinelName marks a missing name in a flat record
	SentinelName = "NULL"
)

// TeamInfo carries a player's club attributes
type TeamInfo struct {
	TeamID       int
	TeamName     string
	TeamStrength float64

	StrengthOverallHome int
	StrengthOverallAway int
	StrengthAttackHome  int
	StrengthAttackAway  int
	StrengthDefenceHome int
	StrengthDefenceAway int
}

// PositionInfo carries a player's position attributes
type PositionInfo struct {
	ID   int
	Name string
}

// OppositionInfo carries the resolved side and opponent for a fixture
type OppositionInfo struct {
	HomeOrAwayID       int // 1 home, 2 away, sentinel when unresolvable
	OppositionID       int
	OppositionName     string
	OppositionStrength float64
}

// PlayerName resolves a player id to a full name
func (ctx *DataContext) PlayerName(playerID int) string {
	p := ctx.Player(playerID)
	if p == nil {
		return SentinelName
	}
	return p.Name()
}

// PlayerValue resolves a player id to their FPL market value
func (ctx *DataContext) PlayerValue(playerID int) int {
	p := ctx.Player(playerID)
	if p == nil {
		return SentinelInt
	}
	return p.NowCost
}

// PlayerPosition resolves a player id to their position
func (ctx *DataContext) PlayerPosition(playerID int) PositionInfo {
	p := ctx.Player(playerID)
	if p == nil {
		return PositionInfo{ID: SentinelInt, Name: SentinelName}
	}
	et, ok := ctx.positionsByID[p.ElementType]
	if !ok {
		return PositionInfo{ID: p.ElementType, Name: SentinelName}
	}
	return PositionInfo{ID: et.ID, Name: et.SingularNameShort}
}

// PlayerTeam resolves a player id to their club's attributes, including the
// full set of strength ratings and the averaged overall strength
func (ctx *DataContext) PlayerTeam(playerID int) TeamInfo {
	missing := TeamInfo{
		TeamID:              SentinelInt,
		TeamName:            SentinelName,
		TeamStrength:        SentinelFloat,
		StrengthOverallHome: SentinelInt,
		StrengthOverallAway: SentinelInt,
		StrengthAttackHome:  SentinelInt,
		StrengthAttackAway:  SentinelInt,
		StrengthDefenceHome: SentinelInt,
		StrengthDefenceAway: SentinelInt,
	}

	p := ctx.Player(playerID)
	if p == nil {
		return missing
	}
	t := ctx.Team(p.TeamID)
	if t == nil {
		return missing
	}

	return TeamInfo{
		TeamID:              t.ID,
		TeamName:            t.Name,
		TeamStrength:        t.OverallStrength(),
		StrengthOverallHome: t.StrengthOverallHome,
		StrengthOverallAway: t.StrengthOverallAway,
		StrengthAttackHome:  t.StrengthAttackHome,
		StrengthAttackAway:  t.StrengthAttackAway,
		StrengthDefenceHome: t.StrengthDefenceHome,
		StrengthDefenceAway: t.StrengthDefenceAway,
	}
}

// KickoffHour resolves a fixture id to the hour of day it kicks off
func (ctx *DataContext) KickoffHour(fixtureID int) int {
	f := ctx.Fixture(fixtureID)
	if f == nil {
		return SentinelInt
	}
	t, err := f.Kickoff()
	if err != nil {
		return SentinelInt
	}
	return t.Hour()
}

// HomeOrAway determines which side of a fixture a player's team is on and
// resolves the opposition's attributes. A player whose team appears on
// neither side (transferred mid-season, wrong fixture) resolves to sentinels.
func (ctx *DataContext) HomeOrAway(playerID, fixtureID int) OppositionInfo {
	missing := OppositionInfo{
		HomeOrAwayID:       SentinelInt,
		OppositionID:       SentinelInt,
		OppositionName:     SentinelName,
		OppositionStrength: SentinelFloat,
	}

	p := ctx.Player(playerID)
	f := ctx.Fixture(fixtureID)
	if p == nil || f == nil {
		return missing
	}

	var sideID, oppositionID int
	switch p.TeamID {
	case f.TeamH:
		sideID = 1
		oppositionID = f.TeamA
	case f.TeamA:
		sideID = 2
		oppositionID = f.TeamH
	default:
		return missing
	}

	opp := ctx.Team(oppositionID)
	if opp == nil {
		return OppositionInfo{
			HomeOrAwayID:       sideID,
			OppositionID:       oppositionID,
			OppositionName:     SentinelName,
			OppositionStrength: SentinelFloat,
		}
	}

	return OppositionInfo{
		HomeOrAwayID:       sideID,
		OppositionID:       opp.ID,
		OppositionName:     opp.Name,
		OppositionStrength: opp.OverallStrength(),
	}
}
