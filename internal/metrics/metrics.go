package metrics

import (
	"sync"
	"time"
)

type fetchStats struct {
	fetches     int
	errors      int
	lastLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about the service.
// It mirrors what is exported via OpenTelemetry so tests can assert on
// counters without a metrics backend.
type Recorder struct {
	mu        sync.Mutex
	sports    map[string]*fetchStats
	cycles    int
	sent      int
	dropped   int
	broadcast int
	clients   int
	otel      *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		sports: make(map[string]*fetchStats),
		otel:   otel,
	}
}

// RecordFetch tracks one per-sport scoreboard fetch and its outcome.
func (r *Recorder) RecordFetch(sport string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.sports[sport]
	if stats == nil {
		stats = &fetchStats{}
		r.sports[sport] = stats
	}
	stats.fetches++
	stats.lastLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordFetch(sport, duration, err)
	}
}

// RecordPollCycle tracks one full poll cycle across the working set.
func (r *Recorder) RecordPollCycle(duration time.Duration, sports int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.cycles++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordPollCycle(duration, sports)
	}
}

// RecordSend tracks one delivered client message by type.
func (r *Recorder) RecordSend(messageType string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.sent++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordSend(messageType)
	}
}

// RecordDrop tracks a message that could not be delivered to a client.
func (r *Recorder) RecordDrop(messageType string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.dropped++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordDrop(messageType)
	}
}

// RecordBroadcast tracks one all-client broadcast.
func (r *Recorder) RecordBroadcast() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.broadcast++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordBroadcast()
	}
}

// RecordClientDelta adjusts the connected-clients gauge by delta (+1/-1).
func (r *Recorder) RecordClientDelta(delta int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.clients += delta
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordClientDelta(delta)
	}
}

// Snapshot is a copy of the recorder's counters for one sport.
type Snapshot struct {
	Fetches     int
	Errors      int
	LastLatency time.Duration
}

// FetchSnapshot returns a copy of the counters recorded for a sport.
func (r *Recorder) FetchSnapshot(sport string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if stats, ok := r.sports[sport]; ok && stats != nil {
		return Snapshot{Fetches: stats.fetches, Errors: stats.errors, LastLatency: stats.lastLatency}
	}
	return Snapshot{}
}

// PollCycles returns the number of completed poll cycles.
func (r *Recorder) PollCycles() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cycles
}

// MessagesSent returns the number of delivered client messages.
func (r *Recorder) MessagesSent() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

// MessagesDropped returns the number of failed deliveries.
func (r *Recorder) MessagesDropped() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Broadcasts returns the number of all-client broadcasts.
func (r *Recorder) Broadcasts() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.broadcast
}

// ConnectedClients returns the current connected-clients gauge value.
func (r *Recorder) ConnectedClients() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clients
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}
