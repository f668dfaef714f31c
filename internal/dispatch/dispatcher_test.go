package dispatch

import (
	"context"
	"testing"
	"time"

	"live-scores-service/internal/domain"
	"live-scores-service/internal/metrics"
	"live-scores-service/internal/store"
	"live-scores-service/internal/subs"
	"live-scores-service/internal/teststubs"
)

func newDispatcher() (*Dispatcher, *subs.Registry, *store.SnapshotStore) {
	registry := subs.NewRegistry()
	snapshots := store.NewSnapshotStore()
	d := New(registry, snapshots, nil, metrics.NewRecorder())
	d.now = func() time.Time { return time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC) }
	return d, registry, snapshots
}

func scoreChange(sport string) domain.ChangeEvent {
	return domain.ChangeEvent{
		Key: domain.GameKey{SportID: sport, EventID: "401"},
		Snapshot: domain.Snapshot{
			Status:    domain.StatusLive,
			HomeTeam:  "Home",
			AwayTeam:  "Away",
			HomeScore: 2,
		},
		ScoreChanged: true,
		PrevHome:     1,
	}
}

func TestScoreUpdateOnlyReachesSubscribers(t *testing.T) {
	d, registry, _ := newDispatcher()

	nbaSender := &teststubs.StubSender{}
	nflSender := &teststubs.StubSender{}
	nbaFan := registry.Connect(nbaSender)
	nflFan := registry.Connect(nflSender)
	registry.Subscribe(nbaFan, []string{"nba"})
	registry.Subscribe(nflFan, []string{"nfl"})

	d.dispatchChange(scoreChange("nba"))

	if got := nbaSender.Sent(); len(got) != 1 {
		t.Fatalf("expected one message for nba fan, got %d", len(got))
	} else if msg, ok := got[0].(domain.ScoreUpdateMessage); !ok || msg.PrevHome != 1 || msg.HomeScore != 2 {
		t.Fatalf("unexpected score update: %+v", got[0])
	}
	if got := nflSender.Sent(); len(got) != 0 {
		t.Fatalf("nfl fan must not receive nba updates: %+v", got)
	}
}

func TestCombinedChangeDeliversAdjacentMessages(t *testing.T) {
	d, registry, _ := newDispatcher()
	sender := &teststubs.StubSender{}
	id := registry.Connect(sender)
	registry.Subscribe(id, []string{"nba"})

	change := scoreChange("nba")
	change.StateChanged = true
	change.PrevStatus = domain.StatusScheduled
	d.dispatchChange(change)

	got := sender.Sent()
	if len(got) != 2 {
		t.Fatalf("expected state+score messages, got %d", len(got))
	}
	if _, ok := got[0].(domain.StateChangeMessage); !ok {
		t.Fatalf("expected state change first, got %T", got[0])
	}
	if _, ok := got[1].(domain.ScoreUpdateMessage); !ok {
		t.Fatalf("expected score update second, got %T", got[1])
	}
}

func TestCycleBroadcastOnlyOnMembershipChange(t *testing.T) {
	d, registry, _ := newDispatcher()
	sender := &teststubs.StubSender{}
	registry.Connect(sender) // no subscriptions; summary is global

	d.dispatchCycle(domain.LiveSummary{"nba": 1})
	if got := sender.Sent(); len(got) != 1 {
		t.Fatalf("expected first summary broadcast, got %d", len(got))
	}

	// Count-only change within an already-live sport stays quiet.
	d.dispatchCycle(domain.LiveSummary{"nba": 3})
	if got := sender.Sent(); len(got) != 1 {
		t.Fatalf("count-only change must not broadcast, got %d messages", len(got))
	}

	// A sport entering the live set broadcasts once.
	d.dispatchCycle(domain.LiveSummary{"nba": 3, "nhl": 1})
	got := sender.Sent()
	if len(got) != 2 {
		t.Fatalf("expected broadcast on membership change, got %d", len(got))
	}
	msg, ok := got[1].(domain.LiveSportsMessage)
	if !ok {
		t.Fatalf("expected live sports message, got %T", got[1])
	}
	if len(msg.Sports) != 2 || msg.Sports[0] != "nba" || msg.Sports[1] != "nhl" {
		t.Fatalf("expected sorted sports, got %v", msg.Sports)
	}
	if msg.Counts["nhl"] != 1 {
		t.Fatalf("unexpected counts: %v", msg.Counts)
	}

	// A sport leaving the live set broadcasts too.
	d.dispatchCycle(domain.LiveSummary{"nba": 3})
	if got := sender.Sent(); len(got) != 3 {
		t.Fatalf("expected broadcast on sport leaving, got %d", len(got))
	}
}

func TestEmptyFirstCycleStaysQuiet(t *testing.T) {
	d, registry, _ := newDispatcher()
	sender := &teststubs.StubSender{}
	registry.Connect(sender)

	d.dispatchCycle(domain.LiveSummary{})
	if got := sender.Sent(); len(got) != 0 {
		t.Fatalf("no live sports means nothing to announce, got %+v", got)
	}
}

func TestDeliveryFailureDoesNotAbortLoopAndCleansUpGoneClients(t *testing.T) {
	d, registry, _ := newDispatcher()

	gone := &teststubs.StubSender{}
	gone.Fail(subs.ErrClientGone)
	healthy := &teststubs.StubSender{}

	goneID := registry.Connect(gone)
	healthyID := registry.Connect(healthy)
	registry.Subscribe(goneID, []string{"nba"})
	registry.Subscribe(healthyID, []string{"nba"})

	d.dispatchChange(scoreChange("nba"))

	if got := healthy.Sent(); len(got) != 1 {
		t.Fatalf("healthy client should still be served, got %d", len(got))
	}
	if subs := registry.SubscribersOf("nba"); len(subs) != 1 || subs[0].ID != healthyID {
		t.Fatalf("gone client should be removed: %+v", subs)
	}
}

func TestGreetClientSendsConnectionAndSummary(t *testing.T) {
	d, registry, snapshots := newDispatcher()
	snapshots.Put(domain.GameKey{SportID: "nba", EventID: "1"}, domain.Snapshot{Status: domain.StatusLive})

	sender := &teststubs.StubSender{}
	id := registry.Connect(sender)
	d.GreetClient(id, sender)

	got := sender.Sent()
	if len(got) != 2 {
		t.Fatalf("expected connection + summary, got %d", len(got))
	}
	conn, ok := got[0].(domain.ConnectionMessage)
	if !ok || conn.ClientID != id || conn.Type != domain.MessageConnection {
		t.Fatalf("unexpected greeting: %+v", got[0])
	}
	summary, ok := got[1].(domain.LiveSportsMessage)
	if !ok || summary.Counts["nba"] != 1 {
		t.Fatalf("unexpected initial summary: %+v", got[1])
	}
}

func TestLoopConsumesChannels(t *testing.T) {
	d, registry, _ := newDispatcher()
	sender := &teststubs.StubSender{}
	id := registry.Connect(sender)
	registry.Subscribe(id, []string{"nba"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	defer d.Stop()

	d.Changes() <- scoreChange("nba")
	d.Cycles() <- domain.LiveSummary{"nba": 1}

	deadline := time.After(2 * time.Second)
	for {
		if len(sender.Sent()) >= 2 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for dispatch, got %d messages", len(sender.Sent()))
		case <-time.After(5 * time.Millisecond):
		}
	}
}
