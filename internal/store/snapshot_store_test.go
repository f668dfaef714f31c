package store

import (
	"fmt"
	"sync"
	"testing"

	"live-scores-service/internal/domain"
)

func TestGetPutRoundTrip(t *testing.T) {
	s := NewSnapshotStore()
	key := domain.GameKey{SportID: "nba", EventID: "401"}

	if _, ok := s.Get(key); ok {
		t.Fatalf("expected miss before put")
	}

	snap := domain.Snapshot{Status: domain.StatusLive, HomeScore: 10, AwayScore: 8}
	s.Put(key, snap)

	got, ok := s.Get(key)
	if !ok || got != snap {
		t.Fatalf("unexpected snapshot: %+v ok=%v", got, ok)
	}

	// Put replaces the prior value.
	snap.HomeScore = 12
	s.Put(key, snap)
	if got, _ := s.Get(key); got.HomeScore != 12 {
		t.Fatalf("expected replacement, got %+v", got)
	}
	if s.Len() != 1 {
		t.Fatalf("expected single entry per identity, got %d", s.Len())
	}
}

func TestLiveCountsOmitsIdleSports(t *testing.T) {
	s := NewSnapshotStore()
	s.Put(domain.GameKey{SportID: "nba", EventID: "1"}, domain.Snapshot{Status: domain.StatusLive})
	s.Put(domain.GameKey{SportID: "nba", EventID: "2"}, domain.Snapshot{Status: domain.StatusLive})
	s.Put(domain.GameKey{SportID: "nba", EventID: "3"}, domain.Snapshot{Status: domain.StatusFinal})
	s.Put(domain.GameKey{SportID: "nfl", EventID: "9"}, domain.Snapshot{Status: domain.StatusScheduled})

	counts := s.LiveCounts()
	if counts["nba"] != 2 {
		t.Fatalf("expected 2 live nba games, got %d", counts["nba"])
	}
	if _, ok := counts["nfl"]; ok {
		t.Fatalf("sports without live games should be omitted: %v", counts)
	}
}

func TestSportSnapshotsFilters(t *testing.T) {
	s := NewSnapshotStore()
	s.Put(domain.GameKey{SportID: "nba", EventID: "1"}, domain.Snapshot{Status: domain.StatusLive})
	s.Put(domain.GameKey{SportID: "nhl", EventID: "2"}, domain.Snapshot{Status: domain.StatusLive})

	got := s.SportSnapshots("nba")
	if len(got) != 1 {
		t.Fatalf("expected one nba snapshot, got %d", len(got))
	}
	if _, ok := got[domain.GameKey{SportID: "nba", EventID: "1"}]; !ok {
		t.Fatalf("missing nba snapshot: %v", got)
	}
}

func TestConcurrentPutsAcrossSports(t *testing.T) {
	s := NewSnapshotStore()
	var wg sync.WaitGroup
	for _, sport := range []string{"nba", "nfl", "mlb", "nhl"} {
		sport := sport
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				key := domain.GameKey{SportID: sport, EventID: fmt.Sprintf("%d", i)}
				s.Put(key, domain.Snapshot{Status: domain.StatusLive, HomeScore: i})
				s.Get(key)
			}
		}()
	}
	wg.Wait()

	if s.Len() != 200 {
		t.Fatalf("expected 200 entries, got %d", s.Len())
	}
}
