package domain

import "time"

// Wire message type discriminators shared by the dispatcher and transport.
const (
	MessageConnection      = "connection"
	MessageScoreUpdate     = "score_update"
	MessageGameStateChange = "game_state_change"
	MessageLiveSports      = "live_sports_update"
	MessageSubscribe       = "subscribe"
	MessageUnsubscribe     = "unsubscribe"
)

// ConnectionMessage greets a freshly connected client with its identifier.
type ConnectionMessage struct {
	Type      string    `json:"type"`
	ClientID  string    `json:"clientId"`
	Timestamp time.Time `json:"timestamp"`
}

// ScoreUpdateMessage notifies subscribers that a game's score changed.
type ScoreUpdateMessage struct {
	Type      string    `json:"type"`
	Sport     string    `json:"sport"`
	GameID    string    `json:"gameId"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	PrevHome  int       `json:"previousHomeScore"`
	PrevAway  int       `json:"previousAwayScore"`
	Period    string    `json:"period,omitempty"`
	Clock     string    `json:"clock,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StateChangeMessage notifies subscribers that a game's lifecycle state changed.
type StateChangeMessage struct {
	Type      string     `json:"type"`
	Sport     string     `json:"sport"`
	GameID    string     `json:"gameId"`
	HomeTeam  string     `json:"homeTeam"`
	AwayTeam  string     `json:"awayTeam"`
	HomeScore int        `json:"homeScore"`
	AwayScore int        `json:"awayScore"`
	PrevState GameStatus `json:"previousState"`
	NewState  GameStatus `json:"newState"`
	Timestamp time.Time  `json:"timestamp"`
}

// LiveSportsMessage carries the aggregate set of sports with live games.
type LiveSportsMessage struct {
	Type      string      `json:"type"`
	Sports    []string    `json:"sports"`
	Counts    LiveSummary `json:"counts"`
	Timestamp time.Time   `json:"timestamp"`
}

// ClientCommand is the inbound subscribe/unsubscribe payload.
type ClientCommand struct {
	Type   string   `json:"type"`
	Sports []string `json:"sports"`
}
