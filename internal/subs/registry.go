package subs

import (
	"sync"

	"github.com/google/uuid"
)

// Sender delivers one message to a connected client. Send fails when the
// client's transport is gone; failures are best-effort and ignorable.
type Sender interface {
	Send(msg any) error
}

// Subscriber pairs a client id with its transport endpoint.
type Subscriber struct {
	ID     string
	Sender Sender
}

type subscription struct {
	sender Sender
	sports map[string]struct{}
}

// Registry tracks which sports each connected client wants updates for.
// It is safe for concurrent use; client message handling interleaves freely
// with dispatcher reads mid-cycle.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*subscription
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*subscription)}
}

// Connect registers a new client with an empty interest set and returns its
// identifier. Identifiers are unique for the connection's lifetime and
// never reused.
func (r *Registry) Connect(sender Sender) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.clients[id] = &subscription{sender: sender, sports: make(map[string]struct{})}
	r.mu.Unlock()

	return id
}

// Subscribe adds sports to a client's interest set. Unknown clients and
// repeated subscriptions are no-ops.
func (r *Registry) Subscribe(clientID string, sports []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.clients[clientID]
	if !ok {
		return
	}
	for _, sport := range sports {
		sub.sports[sport] = struct{}{}
	}
}

// Unsubscribe removes sports from a client's interest set. Unknown clients
// and absent sports are no-ops.
func (r *Registry) Unsubscribe(clientID string, sports []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.clients[clientID]
	if !ok {
		return
	}
	for _, sport := range sports {
		delete(sub.sports, sport)
	}
}

// Disconnect removes the client and its interest set. Idempotent; close and
// transport error may both trigger it.
func (r *Registry) Disconnect(clientID string) {
	r.mu.Lock()
	delete(r.clients, clientID)
	r.mu.Unlock()
}

// SubscribersOf returns the clients currently subscribed to a sport,
// reflecting the live registry at call time.
func (r *Registry) SubscribersOf(sportID string) []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Subscriber, 0)
	for id, sub := range r.clients {
		if _, ok := sub.sports[sportID]; ok {
			out = append(out, Subscriber{ID: id, Sender: sub.sender})
		}
	}
	return out
}

// All returns every connected client regardless of subscriptions.
func (r *Registry) All() []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Subscriber, 0, len(r.clients))
	for id, sub := range r.clients {
		out = append(out, Subscriber{ID: id, Sender: sub.sender})
	}
	return out
}

// SubscribedSports returns the union of every connected client's interest
// set, used to build the poller's working set.
func (r *Registry) SubscribedSports() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, sub := range r.clients {
		for sport := range sub.sports {
			seen[sport] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for sport := range seen {
		out = append(out, sport)
	}
	return out
}

// Len returns the number of connected clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
