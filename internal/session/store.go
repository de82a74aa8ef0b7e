// Package session keeps independent calculator evaluators keyed by ID and
// serializes access to each of them.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"keypad-calculator/internal/evaluator"
)

var (
	// ErrNotFound is returned for an unknown or expired session ID.
	ErrNotFound = errors.New("session not found")
	// ErrLimitReached is returned when the store already holds its maximum
	// number of sessions.
	ErrLimitReached = errors.New("session limit reached")
)

// Session is one calculator owned by one remote caller.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	eval     *evaluator.Evaluator
	lastUsed time.Time
	now      func() time.Time
}

// Do runs fn with exclusive access to the session's evaluator.
func (s *Session) Do(fn func(e *evaluator.Evaluator)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.eval)
	s.lastUsed = s.now()
}

// Display returns the evaluator's current display text.
func (s *Session) Display() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eval.Display()
}

func (s *Session) idleSince(t time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.Sub(s.lastUsed)
}

// Store is an in-memory set of sessions.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	idleTTL     time.Duration
	now         func() time.Time
}

// NewStore creates a store holding at most maxSessions sessions and expiring
// those idle for longer than idleTTL. Zero disables either limit.
func NewStore(maxSessions int, idleTTL time.Duration) *Store {
	return &Store{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		idleTTL:     idleTTL,
		now:         time.Now,
	}
}

// Create starts a new session with a fresh evaluator.
func (st *Store) Create() (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.maxSessions > 0 && len(st.sessions) >= st.maxSessions {
		return nil, ErrLimitReached
	}

	now := st.now()
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		eval:      evaluator.New(),
		lastUsed:  now,
		now:       st.now,
	}
	st.sessions[s.ID] = s

	return s, nil
}

// Get returns the session with the given ID.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes the session with the given ID.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than the store's TTL and returns how
// many were removed.
func (st *Store) Sweep() int {
	if st.idleTTL <= 0 {
		return 0
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, s := range st.sessions {
		if s.idleSince(now) > st.idleTTL {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps the store every interval until ctx is cancelled. onSweep, when
// non-nil, is called with the number of sessions removed by each sweep.
func (st *Store) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := st.Sweep()
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}
