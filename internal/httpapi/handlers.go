package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"

	"live-scores-service/internal/domain"
	"live-scores-service/internal/logging"
	"live-scores-service/internal/poller"
	"live-scores-service/internal/store"
)

// Handler serves the thin JSON read endpoints next to the websocket feed.
type Handler struct {
	snapshots *store.SnapshotStore
	logger    *slog.Logger
	status    func() poller.Status
	sports    []string
	known     func(string) bool
}

// HandlerConfig wires a Handler's collaborators.
type HandlerConfig struct {
	Snapshots *store.SnapshotStore
	Logger    *slog.Logger
	Status    func() poller.Status
	Sports    []string
	Known     func(string) bool
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	sports := append([]string{}, cfg.Sports...)
	sort.Strings(sports)
	return &Handler{
		snapshots: cfg.Snapshots,
		logger:    cfg.Logger,
		status:    cfg.Status,
		sports:    sports,
		known:     cfg.Known,
	}
}

// Health reports process liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the poller has warmed recent data.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.status == nil || !h.status().IsReady() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type sportsResponse struct {
	Sports []string           `json:"sports"`
	Live   domain.LiveSummary `json:"live"`
}

// Sports lists the supported sports and which currently have live games.
func (h *Handler) Sports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sportsResponse{
		Sports: h.sports,
		Live:   h.snapshots.LiveCounts(),
	})
}

type scoreboardGame struct {
	GameID    string            `json:"gameId"`
	State     domain.GameStatus `json:"state"`
	HomeTeam  string            `json:"homeTeam"`
	AwayTeam  string            `json:"awayTeam"`
	HomeScore int               `json:"homeScore"`
	AwayScore int               `json:"awayScore"`
	Period    string            `json:"period,omitempty"`
	Clock     string            `json:"clock,omitempty"`
}

type scoreboardResponse struct {
	Sport string           `json:"sport"`
	Games []scoreboardGame `json:"games"`
}

// Scoreboard returns the last-observed games for one sport, served from the
// in-memory store (whatever the poller has seen so far).
func (h *Handler) Scoreboard(w http.ResponseWriter, r *http.Request, sportID string) {
	if h.known != nil && !h.known(sportID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown sport"})
		return
	}

	snaps := h.snapshots.SportSnapshots(sportID)
	games := make([]scoreboardGame, 0, len(snaps))
	for key, snap := range snaps {
		games = append(games, scoreboardGame{
			GameID:    key.EventID,
			State:     snap.Status,
			HomeTeam:  snap.HomeTeam,
			AwayTeam:  snap.AwayTeam,
			HomeScore: snap.HomeScore,
			AwayScore: snap.AwayScore,
			Period:    snap.Period,
			Clock:     snap.Clock,
		})
	}
	sort.Slice(games, func(i, j int) bool { return games[i].GameID < games[j].GameID })

	writeJSON(w, http.StatusOK, scoreboardResponse{Sport: sportID, Games: games})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error(slog.Default(), "response encode failed", err)
	}
}
