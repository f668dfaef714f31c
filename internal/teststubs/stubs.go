package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"live-scores-service/internal/domain"
)

// StubProvider is a test double for providers.ScoreboardProvider. Events and
// errors are keyed by sport so partial-failure cycles can be simulated.
type StubProvider struct {
	mu     sync.Mutex
	Events map[string][]domain.Event
	Errs   map[string]error
	Calls  atomic.Int32
	Notify chan struct{}
}

// FetchScoreboard returns the configured events/error for the sport.
func (s *StubProvider) FetchScoreboard(ctx context.Context, sportID string) ([]domain.Event, error) {
	_ = ctx
	s.Calls.Add(1)
	if s.Notify != nil {
		select {
		case s.Notify <- struct{}{}:
		default:
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.Errs[sportID]; ok && err != nil {
		return nil, err
	}
	return s.Events[sportID], nil
}

// SetEvents swaps the configured events for a sport between cycles.
func (s *StubProvider) SetEvents(sportID string, events []domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Events == nil {
		s.Events = make(map[string][]domain.Event)
	}
	s.Events[sportID] = events
}

// StubSender is a test double for a client transport endpoint. It records
// every message handed to it and can be configured to fail.
type StubSender struct {
	mu       sync.Mutex
	Messages []any
	Err      error
}

// Send records the message, or returns the configured error.
func (s *StubSender) Send(msg any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Messages = append(s.Messages, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (s *StubSender) Sent() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]any, len(s.Messages))
	copy(out, s.Messages)
	return out
}

// Fail makes subsequent sends return the given error.
func (s *StubSender) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}
