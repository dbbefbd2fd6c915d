package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// UnreadTracker reconciles the two refresh triggers that feed the
// notification dropdown: push delivery (best-effort) and the fixed
// interval poll (the correctness backstop). It keeps a previous-count
// snapshot per user and decides when the audible cue fires. The rule is
// one cue per detected increase between consecutive observations, never
// per item and never on a decrease or repeat.
type UnreadTracker struct {
	mu   sync.Mutex
	last map[uuid.UUID]int
}

// NewUnreadTracker creates an empty tracker.
func NewUnreadTracker() *UnreadTracker {
	return &UnreadTracker{last: make(map[uuid.UUID]int)}
}

// Observe records the unread count seen by one poll and reports whether
// a sound cue should fire. The very first observation never cues; there
// is no previous snapshot to compare against.
func (t *UnreadTracker) Observe(userID uuid.UUID, count int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, seen := t.last[userID]
	t.last[userID] = count
	return seen && count > prev
}

// Forget drops the snapshot for a user, e.g. on sign-out.
func (t *UnreadTracker) Forget(userID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.last, userID)
}

// RefreshGuard serializes racing refetches with a request-generation
// token. Each refetch calls Begin before issuing its request and Commit
// when the response arrives; Commit reports whether the response is
// still current. A slow response whose generation has been superseded is
// discarded, so the latest-issued refetch always wins regardless of
// response ordering.
type RefreshGuard struct {
	mu        sync.Mutex
	issued    uint64
	committed uint64
}

// NewRefreshGuard creates a guard with no generations issued.
func NewRefreshGuard() *RefreshGuard {
	return &RefreshGuard{}
}

// Begin issues a new generation token.
func (g *RefreshGuard) Begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return g.issued
}

// Commit reports whether the response for the given generation may be
// applied. Responses for superseded or already-overtaken generations
// return false and must be dropped.
func (g *RefreshGuard) Commit(gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen < g.issued || gen <= g.committed {
		return false
	}
	g.committed = gen
	return true
}
