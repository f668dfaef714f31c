package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"live-scores-service/internal/detect"
	"live-scores-service/internal/domain"
	"live-scores-service/internal/logging"
	"live-scores-service/internal/metrics"
	"live-scores-service/internal/providers"
)

const (
	defaultInterval     = 10 * time.Second
	defaultFetchTimeout = 10 * time.Second
)

// WorkingSetFunc returns the sports to poll this cycle: the union of every
// subscribed sport and the configured baseline list.
type WorkingSetFunc func() []string

// Config wires a Poller's collaborators.
type Config struct {
	Provider     providers.ScoreboardProvider
	Detector     *detect.Detector
	WorkingSet   WorkingSetFunc
	Changes      chan<- domain.ChangeEvent
	Cycles       chan<- domain.LiveSummary
	Logger       *slog.Logger
	Metrics      *metrics.Recorder
	Interval     time.Duration
	FetchTimeout time.Duration
}

// Poller drives periodic scoreboard refresh for the working set of sports.
// Cycles run to completion before the next tick is handled, so a sport is
// never processed twice concurrently; within a cycle, per-sport fetches run
// in parallel and fail independently.
type Poller struct {
	provider     providers.ScoreboardProvider
	detector     *detect.Detector
	workingSet   WorkingSetFunc
	changes      chan<- domain.ChangeEvent
	cycles       chan<- domain.LiveSummary
	logger       *slog.Logger
	metrics      *metrics.Recorder
	interval     time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the poll loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the poller has had a recent success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Poller with sane defaults.
func New(cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	return &Poller{
		provider:     cfg.Provider,
		detector:     cfg.Detector,
		workingSet:   cfg.WorkingSet,
		changes:      cfg.Changes,
		cycles:       cfg.Cycles,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		interval:     cfg.Interval,
		fetchTimeout: cfg.FetchTimeout,
		now:          time.Now,
		done:         make(chan struct{}),
	}
}

// Start begins polling until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.startMu.Unlock()

	p.ticker = time.NewTicker(p.interval)

	go func() {
		logging.Info(p.logger, "poller started", slog.Int64(logging.FieldDurationMS, p.interval.Milliseconds()))
		// Initial cycle to warm data on boot.
		p.runCycle(ctx)

		for {
			select {
			case <-ctx.Done():
				p.stopTicker()
				logging.Info(p.logger, "poller stopped")
				return
			case <-p.done:
				p.stopTicker()
				logging.Info(p.logger, "poller stopped")
				return
			case <-p.ticker.C:
				p.runCycle(ctx)
			}
		}
	}()
}

// Stop halts the poll loop.
func (p *Poller) Stop(ctx context.Context) error {
	_ = ctx
	p.stopOnce.Do(func() {
		close(p.done)
		p.stopTicker()
	})
	return nil
}

// runCycle fetches every sport in the working set, feeds results through the
// detector, and emits the cycle's live summary. One sport's failure never
// aborts the others; the next tick is the retry.
func (p *Poller) runCycle(ctx context.Context) {
	start := time.Now()
	p.recordAttempt(p.now())

	sports := dedupe(p.workingSet())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		summary = make(domain.LiveSummary)
		failed  int
		lastErr error
	)

	for _, sport := range sports {
		sport := sport
		wg.Add(1)
		go func() {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
			defer cancel()

			events, err := p.provider.FetchScoreboard(fetchCtx, sport)
			if err != nil {
				mu.Lock()
				failed++
				lastErr = err
				mu.Unlock()
				return
			}

			changes, live := p.detector.Process(events)
			for _, change := range changes {
				p.emitChange(ctx, change)
			}

			mu.Lock()
			if live > 0 {
				summary[sport] = live
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	p.emitCycle(ctx, summary)
	p.metrics.RecordPollCycle(time.Since(start), len(sports))

	if len(sports) > 0 && failed == len(sports) {
		logging.Error(p.logger, "poll cycle failed for every sport", lastErr,
			slog.Int(logging.FieldCount, len(sports)),
		)
		p.recordFailure(lastErr, p.now())
		return
	}
	p.recordSuccess(p.now())
	logging.Debug(p.logger, "poll cycle complete",
		slog.Int(logging.FieldCount, len(sports)),
		slog.Int("failed", failed),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
}

func (p *Poller) emitChange(ctx context.Context, change domain.ChangeEvent) {
	select {
	case p.changes <- change:
	case <-ctx.Done():
	case <-p.done:
	}
}

func (p *Poller) emitCycle(ctx context.Context, summary domain.LiveSummary) {
	select {
	case p.cycles <- summary:
	case <-ctx.Done():
	case <-p.done:
	}
}

func (p *Poller) stopTicker() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}

// BuildWorkingSet unions the baseline sports with the subscribed sports,
// dropping duplicates and ids the filter rejects.
func BuildWorkingSet(baseline, subscribed []string, known func(string) bool) []string {
	out := make([]string, 0, len(baseline)+len(subscribed))
	seen := make(map[string]struct{})
	for _, sport := range append(append([]string{}, baseline...), subscribed...) {
		if _, dup := seen[sport]; dup {
			continue
		}
		if known != nil && !known(sport) {
			continue
		}
		seen[sport] = struct{}{}
		out = append(out, sport)
	}
	return out
}

func dedupe(sports []string) []string {
	seen := make(map[string]struct{}, len(sports))
	out := make([]string, 0, len(sports))
	for _, sport := range sports {
		if _, dup := seen[sport]; dup {
			continue
		}
		seen[sport] = struct{}{}
		out = append(out, sport)
	}
	return out
}
