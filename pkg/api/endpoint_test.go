package api

import (
	"testing"
)

func TestEndpoint_Query_PreservesOrder(t *testing.T) {
	ep := NewEndpoint("leaguegamelog",
		Param{"Season", "2024-25"},
		Param{"LeagueID", "00"},
		Param{"PlayerOrTeam", "T"},
	)

	want := "Season=2024-25&LeagueID=00&PlayerOrTeam=T"
	if got := ep.Query(); got != want {
		t.Errorf("Query() = %q, want %q", got, want)
	}
}

func TestEndpoint_Query_Escaping(t *testing.T) {
	ep := NewEndpoint("leaguestandingsv3",
		Param{"SeasonType", "Regular Season"},
	)

	want := "SeasonType=Regular+Season"
	if got := ep.Query(); got != want {
		t.Errorf("Query() = %q, want %q", got, want)
	}
}

func TestEndpoint_URL(t *testing.T) {
	tests := []struct {
		name string
		ep   Endpoint
		base string
		want string
	}{
		{
			name: "with params",
			ep:   NewEndpoint("scoreboardv3", Param{"GameDate", "2025-01-15"}),
			base: "https://stats.nba.com/stats",
			want: "https://stats.nba.com/stats/scoreboardv3?GameDate=2025-01-15",
		},
		{
			name: "no params",
			ep:   NewEndpoint("scheduleleaguev2"),
			base: "https://stats.nba.com/stats/",
			want: "https://stats.nba.com/stats/scheduleleaguev2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ep.URL(tt.base); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEndpoint_Immutable(t *testing.T) {
	params := []Param{{"GameID", "0022400001"}}
	ep := NewEndpoint("boxscoretraditionalv3", params...)

	// Mutating the caller's slice or the returned copy must not leak
	// into the descriptor.
	params[0].Value = "mutated"
	got := ep.Params()
	got[0].Value = "also mutated"

	if ep.Params()[0].Value != "0022400001" {
		t.Errorf("Endpoint params mutated: %v", ep.Params())
	}
}

func TestLeagueStandings(t *testing.T) {
	ep := LeagueStandings("2024-25", SeasonTypeRegular)

	if ep.Path() != "leaguestandingsv3" {
		t.Errorf("Path() = %q, want leaguestandingsv3", ep.Path())
	}
	want := "LeagueID=00&Season=2024-25&SeasonType=Regular+Season"
	if got := ep.Query(); got != want {
		t.Errorf("Query() = %q, want %q", got, want)
	}
}
