package config

// sportPaths maps dashboard sport ids to upstream scoreboard paths.
var sportPaths = map[string]string{
	"nba":   "basketball/nba",
	"wnba":  "basketball/wnba",
	"ncaam": "basketball/mens-college-basketball",
	"nfl":   "football/nfl",
	"ncaaf": "football/college-football",
	"mlb":   "baseball/mlb",
	"nhl":   "hockey/nhl",
	"mls":   "soccer/usa.1",
}

// SportPath resolves the upstream path for a sport id.
func SportPath(sportID string) (string, bool) {
	path, ok := sportPaths[sportID]
	return path, ok
}

// KnownSport reports whether a sport id is supported by the dashboard.
func KnownSport(sportID string) bool {
	_, ok := sportPaths[sportID]
	return ok
}

// SupportedSports lists every sport id the dashboard can poll.
func SupportedSports() []string {
	out := make([]string, 0, len(sportPaths))
	for id := range sportPaths {
		out = append(out, id)
	}
	return out
}
