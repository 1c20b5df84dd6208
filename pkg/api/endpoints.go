package api

// Endpoint constructors for the families this library ships with. Each is
// a thin composition over NewEndpoint; the full stats catalog is hundreds
// of endpoints and callers can build any of them the same way.

// SeasonType selects the portion of a season an endpoint covers.
type SeasonType string

const (
	SeasonTypeRegular   SeasonType = "Regular Season"
	SeasonTypePlayoffs  SeasonType = "Playoffs"
	SeasonTypePreseason SeasonType = "Pre Season"
)

// LeagueStandings returns the standings endpoint for a season.
func LeagueStandings(season string, seasonType SeasonType) Endpoint {
	return NewEndpoint("leaguestandingsv3",
		Param{"LeagueID", "00"},
		Param{"Season", season},
		Param{"SeasonType", string(seasonType)},
	)
}

// Scoreboard returns the scoreboard endpoint for a date (YYYY-MM-DD).
func Scoreboard(gameDate string) Endpoint {
	return NewEndpoint("scoreboardv3",
		Param{"GameDate", gameDate},
		Param{"LeagueID", "00"},
	)
}

// BoxScoreTraditional returns the traditional box score endpoint for one
// game.
func BoxScoreTraditional(gameID string) Endpoint {
	return NewEndpoint("boxscoretraditionalv3",
		Param{"GameID", gameID},
	)
}

// LeagueGameLog returns the team-level game log for a season. The log
// contains one row per team per game.
func LeagueGameLog(season string, seasonType SeasonType) Endpoint {
	return NewEndpoint("leaguegamelog",
		Param{"LeagueID", "00"},
		Param{"Season", season},
		Param{"SeasonType", string(seasonType)},
		Param{"PlayerOrTeam", "T"},
		Param{"Sorter", "DATE"},
		Param{"Direction", "ASC"},
	)
}

// CommonPlayerInfo returns the bio/profile endpoint for one player.
func CommonPlayerInfo(playerID string) Endpoint {
	return NewEndpoint("commonplayerinfo",
		Param{"PlayerID", playerID},
	)
}
