package providers

import (
	"context"

	"live-scores-service/internal/domain"
)

// ScoreboardProvider defines how upstream scoreboard data is fetched and
// normalized. The fetch is idempotent and side-effect-free; sportID is a
// dashboard sport id (e.g. "nba"). Implementations may return events with
// unresolved competitor sides; callers are expected to skip those.
type ScoreboardProvider interface {
	FetchScoreboard(ctx context.Context, sportID string) ([]domain.Event, error)
}

// ProviderFunc adapts a function to the ScoreboardProvider interface.
type ProviderFunc func(ctx context.Context, sportID string) ([]domain.Event, error)

func (f ProviderFunc) FetchScoreboard(ctx context.Context, sportID string) ([]domain.Event, error) {
	return f(ctx, sportID)
}
