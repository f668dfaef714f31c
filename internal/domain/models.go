package domain

// GameStatus mirrors the lifecycle states reported by upstream scoreboards.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusLive      GameStatus = "live"
	StatusFinal     GameStatus = "final"
)

// GameKey is the composite identity of one game, stable across polls.
type GameKey struct {
	SportID string
	EventID string
}

// Event is one normalized scoreboard entry from an upstream provider.
// HomeTeam/AwayTeam may be empty when the upstream payload is missing a
// competitor side; such events cannot be diffed or displayed.
type Event struct {
	SportID   string
	EventID   string
	Status    GameStatus
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
	Period    string
	Clock     string
}

// Key returns the composite identity for the event.
func (e Event) Key() GameKey {
	return GameKey{SportID: e.SportID, EventID: e.EventID}
}

// HasTeams reports whether both competitor sides resolved.
func (e Event) HasTeams() bool {
	return e.HomeTeam != "" && e.AwayTeam != ""
}

// Snapshot is the last-observed state of one game, kept for diffing.
type Snapshot struct {
	Status    GameStatus
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
	Period    string
	Clock     string
}

// SnapshotOf builds a Snapshot from an event's current values.
func SnapshotOf(e Event) Snapshot {
	return Snapshot{
		Status:    e.Status,
		HomeTeam:  e.HomeTeam,
		AwayTeam:  e.AwayTeam,
		HomeScore: e.HomeScore,
		AwayScore: e.AwayScore,
		Period:    e.Period,
		Clock:     e.Clock,
	}
}

// ChangeEvent describes the difference between two consecutive observations
// of one game. Score and state changes are detected independently; both may
// be set for a single poll.
type ChangeEvent struct {
	Key      GameKey
	Snapshot Snapshot

	ScoreChanged bool
	PrevHome     int
	PrevAway     int

	StateChanged bool
	PrevStatus   GameStatus
}

// LiveSummary maps sport id to the number of games currently live.
// Sports with zero live games are omitted.
type LiveSummary map[string]int

// SameMembership reports whether both summaries cover the same set of
// sports, ignoring per-sport counts.
func (s LiveSummary) SameMembership(other LiveSummary) bool {
	if len(s) != len(other) {
		return false
	}
	for sport := range s {
		if _, ok := other[sport]; !ok {
			return false
		}
	}
	return true
}

// Clone returns a copy safe to retain across cycles.
func (s LiveSummary) Clone() LiveSummary {
	out := make(LiveSummary, len(s))
	for sport, n := range s {
		out[sport] = n
	}
	return out
}
