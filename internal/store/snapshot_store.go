package store

import (
	"sync"

	"live-scores-service/internal/domain"
)

// SnapshotStore keeps the last-observed snapshot per game in memory. It is
// the single source of truth for what was last broadcast. Entries are never
// evicted; the working set is bounded by the games upstream currently
// reports, and the store resets with the process.
type SnapshotStore struct {
	mu    sync.RWMutex
	games map[domain.GameKey]domain.Snapshot
}

// NewSnapshotStore constructs an empty SnapshotStore.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		games: make(map[domain.GameKey]domain.Snapshot),
	}
}

// Get retrieves the snapshot for a game identity.
func (s *SnapshotStore) Get(key domain.GameKey) (domain.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.games[key]
	return snap, ok
}

// Put replaces any prior snapshot for the game identity.
func (s *SnapshotStore) Put(key domain.GameKey, snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games[key] = snap
}

// Len returns the number of tracked games.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.games)
}

// LiveCounts returns the number of live games per sport, omitting sports
// with none. Used to seed the live-sports summary for new connections.
func (s *SnapshotStore) LiveCounts() domain.LiveSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(domain.LiveSummary)
	for key, snap := range s.games {
		if snap.Status == domain.StatusLive {
			counts[key.SportID]++
		}
	}
	return counts
}

// SportSnapshots returns a copy of the tracked snapshots for one sport.
func (s *SnapshotStore) SportSnapshots(sportID string) map[domain.GameKey]domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.GameKey]domain.Snapshot)
	for key, snap := range s.games {
		if key.SportID == sportID {
			out[key] = snap
		}
	}
	return out
}
