package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"live-scores-service/internal/domain"
	"live-scores-service/internal/logging"
	"live-scores-service/internal/metrics"
	"live-scores-service/internal/store"
	"live-scores-service/internal/subs"
)

const (
	changeBuffer = 256
	cycleBuffer  = 4
)

// Dispatcher turns detector output into delivered client messages. It runs
// its own loop, decoupled from the poll cadence by two channels: one for
// per-game changes and one for end-of-cycle live summaries.
type Dispatcher struct {
	registry  *subs.Registry
	snapshots *store.SnapshotStore
	logger    *slog.Logger
	metrics   *metrics.Recorder
	now       func() time.Time

	changes chan domain.ChangeEvent
	cycles  chan domain.LiveSummary

	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	summaryMu   sync.Mutex
	lastSummary domain.LiveSummary
}

// New constructs a Dispatcher.
func New(registry *subs.Registry, snapshots *store.SnapshotStore, logger *slog.Logger, recorder *metrics.Recorder) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		snapshots: snapshots,
		logger:    logger,
		metrics:   recorder,
		now:       time.Now,
		changes:   make(chan domain.ChangeEvent, changeBuffer),
		cycles:    make(chan domain.LiveSummary, cycleBuffer),
		done:      make(chan struct{}),
	}
}

// Changes is the inbound channel of detected per-game changes.
func (d *Dispatcher) Changes() chan<- domain.ChangeEvent {
	return d.changes
}

// Cycles is the inbound channel of end-of-cycle live summaries.
func (d *Dispatcher) Cycles() chan<- domain.LiveSummary {
	return d.cycles
}

// Start runs the dispatch loop until the context is cancelled or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startMu.Lock()
	if d.started {
		d.startMu.Unlock()
		return
	}
	d.started = true
	d.startMu.Unlock()

	go func() {
		logging.Info(d.logger, "dispatcher started")
		for {
			select {
			case <-ctx.Done():
				logging.Info(d.logger, "dispatcher stopped")
				return
			case <-d.done:
				logging.Info(d.logger, "dispatcher stopped")
				return
			case change := <-d.changes:
				d.dispatchChange(change)
			case summary := <-d.cycles:
				d.dispatchCycle(summary)
			}
		}
	}()
}

// Stop halts the dispatch loop.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.done)
	})
}

// GreetClient sends a fresh connection its id and the current live-sports
// summary so it does not wait out a poll interval for initial state.
func (d *Dispatcher) GreetClient(clientID string, sender subs.Sender) {
	now := d.now()
	d.sendTo(clientID, sender, domain.ConnectionMessage{
		Type:      domain.MessageConnection,
		ClientID:  clientID,
		Timestamp: now,
	})
	d.sendTo(clientID, sender, liveSportsMessage(d.snapshots.LiveCounts(), now))
}

// dispatchChange delivers score/state notifications to the sport's
// subscribers. When both changed, each recipient gets the two messages
// adjacent, derived from the same fetch.
func (d *Dispatcher) dispatchChange(change domain.ChangeEvent) {
	now := d.now()
	msgs := make([]any, 0, 2)
	if change.StateChanged {
		msgs = append(msgs, stateChangeMessage(change, now))
	}
	if change.ScoreChanged {
		msgs = append(msgs, scoreUpdateMessage(change, now))
	}
	if len(msgs) == 0 {
		return
	}

	for _, sub := range d.registry.SubscribersOf(change.Key.SportID) {
		for _, msg := range msgs {
			d.sendTo(sub.ID, sub.Sender, msg)
		}
	}
}

// dispatchCycle broadcasts the live-sports summary to every client when the
// set of live sports changed since the previous cycle. Count-only movement
// within an already-live sport stays quiet.
func (d *Dispatcher) dispatchCycle(summary domain.LiveSummary) {
	d.summaryMu.Lock()
	changed := !summary.SameMembership(d.lastSummary)
	d.lastSummary = summary.Clone()
	d.summaryMu.Unlock()

	if !changed {
		return
	}

	msg := liveSportsMessage(summary, d.now())
	d.metrics.RecordBroadcast()
	logging.Info(d.logger, "live sports changed",
		slog.Any("sports", msg.Sports),
		slog.Int(logging.FieldCount, d.registry.Len()),
	)
	for _, sub := range d.registry.All() {
		d.sendTo(sub.ID, sub.Sender, msg)
	}
}

// sendTo delivers one message, recovering locally from transport failures.
// A gone client is removed from the registry; removal is idempotent with the
// transport's own disconnect handling.
func (d *Dispatcher) sendTo(clientID string, sender subs.Sender, msg any) {
	err := sender.Send(msg)
	if err == nil {
		d.metrics.RecordSend(messageType(msg))
		return
	}

	d.metrics.RecordDrop(messageType(msg))
	logging.Debug(d.logger, "client delivery failed",
		slog.String(logging.FieldClientID, clientID),
		"error", err,
	)
	if errors.Is(err, subs.ErrClientGone) {
		d.registry.Disconnect(clientID)
	}
}

func scoreUpdateMessage(change domain.ChangeEvent, now time.Time) domain.ScoreUpdateMessage {
	return domain.ScoreUpdateMessage{
		Type:      domain.MessageScoreUpdate,
		Sport:     change.Key.SportID,
		GameID:    change.Key.EventID,
		HomeTeam:  change.Snapshot.HomeTeam,
		AwayTeam:  change.Snapshot.AwayTeam,
		HomeScore: change.Snapshot.HomeScore,
		AwayScore: change.Snapshot.AwayScore,
		PrevHome:  change.PrevHome,
		PrevAway:  change.PrevAway,
		Period:    change.Snapshot.Period,
		Clock:     change.Snapshot.Clock,
		Timestamp: now,
	}
}

func stateChangeMessage(change domain.ChangeEvent, now time.Time) domain.StateChangeMessage {
	return domain.StateChangeMessage{
		Type:      domain.MessageGameStateChange,
		Sport:     change.Key.SportID,
		GameID:    change.Key.EventID,
		HomeTeam:  change.Snapshot.HomeTeam,
		AwayTeam:  change.Snapshot.AwayTeam,
		HomeScore: change.Snapshot.HomeScore,
		AwayScore: change.Snapshot.AwayScore,
		PrevState: change.PrevStatus,
		NewState:  change.Snapshot.Status,
		Timestamp: now,
	}
}

func liveSportsMessage(summary domain.LiveSummary, now time.Time) domain.LiveSportsMessage {
	sports := make([]string, 0, len(summary))
	for sport := range summary {
		sports = append(sports, sport)
	}
	sort.Strings(sports)
	return domain.LiveSportsMessage{
		Type:      domain.MessageLiveSports,
		Sports:    sports,
		Counts:    summary,
		Timestamp: now,
	}
}

func messageType(msg any) string {
	switch m := msg.(type) {
	case domain.ConnectionMessage:
		return m.Type
	case domain.ScoreUpdateMessage:
		return m.Type
	case domain.StateChangeMessage:
		return m.Type
	case domain.LiveSportsMessage:
		return m.Type
	default:
		return "unknown"
	}
}
