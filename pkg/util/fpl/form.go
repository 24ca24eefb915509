package fpl

// Form aggregators roll a player's live-feed history up into the
// recent-form and season-form features. A player absent from any required
// prior gameweek yields Missing, never a zero-fill; "no data" and "played
// and scored nothing" must stay distinguishable. The Missing flag is
// converted to the -1 sentinel only when the flat record is assembled.

// FormAverages is the recent-form window mean of points and bps
type FormAverages struct {
	Points  float64
	Bps     float64
	Missing bool
}

// SeasonAverages is the season-to-date mean of points, bps and minutes
type SeasonAverages struct {
	Points  float64
	Bps     float64
	Minutes float64
	Missing bool
}

// RecentForm averages a player's points and bps over the configured window
// of gameweeks strictly before the given one. Divides by the window length
// regardless of how many of those gameweeks exist, matching the season
// opening where the window reaches back before gameweek 1.
func (ctx *DataContext) RecentForm(playerID, gameweek int) FormAverages {
	window := ctx.Config.RecentFormWindow
	if gameweek <= 1 {
		// zero-length history, nothing to average
		return FormAverages{Missing: true}
	}

	var points, bps float64
	for gw := gameweek - window; gw < gameweek; gw++ {
		if !ctx.HasGameweek(gw) {
			continue
		}
		lp := ctx.Live(gw, playerID)
		if lp == nil {
			// absent from a required prior gameweek: insufficient history
			return FormAverages{Missing: true}
		}
		points += float64(lp.Stats.TotalPoints)
		bps += float64(lp.Stats.Bps)
	}

	w := float64(window)
	return FormAverages{
		Points: points / w,
		Bps:    bps / w,
	}
}

// SeasonForm averages a player's points, bps and minutes over every loaded
// gameweek strictly before the given one. The first gameweek of a season
// has a zero-length window and is explicitly Missing rather than a divide
// by zero.
func (ctx *DataContext) SeasonForm(playerID, gameweek int) SeasonAverages {
	var points, bps, minutes float64
	var count int

	for _, gw := range ctx.Gameweeks {
		if gw.Gameweek >= gameweek {
			continue
		}
		lp := ctx.Live(gw.Gameweek, playerID)
		if lp == nil {
			return SeasonAverages{Missing: true}
		}
		points += float64(lp.Stats.TotalPoints)
		bps += float64(lp.Stats.Bps)
		minutes += float64(lp.Stats.Minutes)
		count++
	}

	if count == 0 {
		return SeasonAverages{Missing: true}
	}

	c := float64(count)
	return SeasonAverages{
		Points:  points / c,
		Bps:     bps / c,
		Minutes: minutes / c,
	}
}
