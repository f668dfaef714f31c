package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"live-scores-service/internal/domain"
	"live-scores-service/internal/logging"
	"live-scores-service/internal/metrics"
	"live-scores-service/internal/subs"
)

// Greeter sends a fresh connection its initial messages.
type Greeter interface {
	GreetClient(clientID string, sender subs.Sender)
}

// Hub upgrades websocket connections and runs their read/write pumps,
// bridging client (un)subscribe commands into the registry.
type Hub struct {
	registry *subs.Registry
	greeter  Greeter
	logger   *slog.Logger
	metrics  *metrics.Recorder
	// KnownSport filters subscribe lists; nil accepts any sport id.
	knownSport func(string) bool
	upgrader   websocket.Upgrader
}

// Config wires a Hub's collaborators.
type Config struct {
	Registry   *subs.Registry
	Greeter    Greeter
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
	KnownSport func(string) bool
}

// NewHub constructs a Hub.
func NewHub(cfg Config) *Hub {
	return &Hub{
		registry:   cfg.Registry,
		greeter:    cfg.Greeter,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		knownSport: cfg.KnownSport,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from arbitrary origins; there is no
			// client auth to protect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(h.logger, "websocket upgrade failed", "error", err)
		return
	}

	client := newClient(conn)
	client.id = h.registry.Connect(client)
	h.metrics.RecordClientDelta(1)
	logging.Info(h.logger, "client connected", slog.String(logging.FieldClientID, client.id))

	go client.writePump()
	h.greeter.GreetClient(client.id, client)
	h.readPump(client)
}

// readPump consumes client commands until the connection dies, then tears
// the client down. Disconnect handling runs here exactly once; the registry
// removal itself is idempotent with the dispatcher's cleanup path.
func (h *Hub) readPump(client *Client) {
	defer h.teardown(client)

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug(h.logger, "client read failed",
					slog.String(logging.FieldClientID, client.id),
					"error", err,
				)
			}
			return
		}
		h.handleCommand(client.id, payload)
	}
}

func (h *Hub) handleCommand(clientID string, payload []byte) {
	var cmd domain.ClientCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		logging.Debug(h.logger, "ignoring malformed client message",
			slog.String(logging.FieldClientID, clientID),
			"error", err,
		)
		return
	}

	switch cmd.Type {
	case domain.MessageSubscribe:
		h.registry.Subscribe(clientID, h.filterSports(cmd.Sports))
	case domain.MessageUnsubscribe:
		h.registry.Unsubscribe(clientID, cmd.Sports)
	default:
		logging.Debug(h.logger, "ignoring unknown client message type",
			slog.String(logging.FieldClientID, clientID),
			slog.String("type", cmd.Type),
		)
	}
}

func (h *Hub) filterSports(sports []string) []string {
	if h.knownSport == nil {
		return sports
	}
	out := make([]string, 0, len(sports))
	for _, sport := range sports {
		if h.knownSport(sport) {
			out = append(out, sport)
		}
	}
	return out
}

func (h *Hub) teardown(client *Client) {
	h.registry.Disconnect(client.id)
	client.close()
	h.metrics.RecordClientDelta(-1)
	logging.Info(h.logger, "client disconnected", slog.String(logging.FieldClientID, client.id))
}
