package detect

import (
	"log/slog"

	"live-scores-service/internal/domain"
	"live-scores-service/internal/logging"
	"live-scores-service/internal/store"
)

// Detector diffs freshly fetched events against the snapshot store and keeps
// the store current. The detector is the only writer of the store.
type Detector struct {
	store  *store.SnapshotStore
	logger *slog.Logger
}

// New constructs a Detector owning the given store.
func New(snapshots *store.SnapshotStore, logger *slog.Logger) *Detector {
	return &Detector{store: snapshots, logger: logger}
}

// Store exposes the snapshot store for read-side consumers (live counts).
func (d *Detector) Store() *store.SnapshotStore {
	return d.store
}

// Process diffs one sport's fetch result against the stored snapshots and
// returns the detected changes plus the number of live games observed.
// Events missing a competitor side are skipped; they can neither be diffed
// nor displayed. First observations update the store without emitting a
// change. Lifecycle regressions (e.g. final back to live) are reported
// as-is; upstream corrections are real and should not be suppressed.
func (d *Detector) Process(events []domain.Event) ([]domain.ChangeEvent, int) {
	changes := make([]domain.ChangeEvent, 0)
	live := 0

	for _, event := range events {
		if !event.HasTeams() {
			logging.Debug(d.logger, "skipping event with unresolved teams",
				slog.String(logging.FieldSport, event.SportID),
				slog.String(logging.FieldGameID, event.EventID),
			)
			continue
		}

		if event.Status == domain.StatusLive {
			live++
		}

		fresh := domain.SnapshotOf(event)
		key := event.Key()

		prior, seen := d.store.Get(key)
		if !seen {
			d.store.Put(key, fresh)
			continue
		}

		change := domain.ChangeEvent{Key: key, Snapshot: fresh}
		if prior.Status != fresh.Status {
			change.StateChanged = true
			change.PrevStatus = prior.Status
		}
		if prior.HomeScore != fresh.HomeScore || prior.AwayScore != fresh.AwayScore {
			change.ScoreChanged = true
			change.PrevHome = prior.HomeScore
			change.PrevAway = prior.AwayScore
		}

		d.store.Put(key, fresh)

		if change.StateChanged || change.ScoreChanged {
			changes = append(changes, change)
		}
	}

	return changes, live
}
