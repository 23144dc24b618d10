// Package inflight enforces at-most-one-in-flight mutation per listing.
//
// Create/update/delete/reactivate must resolve before the triggering control
// re-enables; a second request for the same listing while one is pending is
// rejected locally with ErrBusy instead of being issued to the store. The
// guard is process-local: it protects against double submits within one
// server, not across replicas (the store's atomic updates handle those).
package inflight

import (
	"errors"
	"sync"
)

// ErrBusy is returned when a mutation for the same listing is already in
// flight.
var ErrBusy = errors.New("another operation for this listing is still in progress")

// Guard tracks listing ids with a pending mutation.
type Guard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewGuard returns an empty Guard.
func NewGuard() *Guard {
	return &Guard{pending: make(map[string]struct{})}
}

// Begin marks id as having a mutation in flight. It returns ErrBusy when a
// previous mutation for id has not ended yet.
func (g *Guard) Begin(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.pending[id]; busy {
		return ErrBusy
	}
	g.pending[id] = struct{}{}
	return nil
}

// End clears the in-flight mark for id. Safe to call for an id that was
// never begun.
func (g *Guard) End(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, id)
}
