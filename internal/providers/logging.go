package providers

import (
	"context"
	"log/slog"
	"time"

	"live-scores-service/internal/domain"
	"live-scores-service/internal/logging"
	"live-scores-service/internal/metrics"
)

// loggingProvider wraps a ScoreboardProvider with per-fetch logging and metrics.
type loggingProvider struct {
	next    ScoreboardProvider
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewLoggingProvider decorates a provider with structured fetch logging and
// metrics recording. Either logger or recorder may be nil.
func NewLoggingProvider(next ScoreboardProvider, logger *slog.Logger, recorder *metrics.Recorder) ScoreboardProvider {
	return &loggingProvider{next: next, logger: logger, metrics: recorder}
}

func (p *loggingProvider) FetchScoreboard(ctx context.Context, sportID string) ([]domain.Event, error) {
	start := time.Now()
	events, err := p.next.FetchScoreboard(ctx, sportID)
	elapsed := time.Since(start)

	p.metrics.RecordFetch(sportID, elapsed, err)

	if err != nil {
		if rl, ok := AsRateLimitError(err); ok {
			logging.Warn(p.logger, "scoreboard fetch rate limited",
				slog.String(logging.FieldSport, sportID),
				slog.Int64("retry_after_ms", rl.RetryAfter.Milliseconds()),
			)
		} else {
			logging.Error(p.logger, "scoreboard fetch failed", err,
				slog.String(logging.FieldSport, sportID),
				slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
			)
		}
		return nil, err
	}

	logging.Debug(p.logger, "scoreboard fetched",
		slog.String(logging.FieldSport, sportID),
		slog.Int(logging.FieldCount, len(events)),
		slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
	)
	return events, nil
}
