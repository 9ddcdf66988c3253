// Package session tracks which vehicles were already shown to a user, so
// follow-up requests in the same session can ask for "more, different"
// results without resending the full exclusion list.
package session

import (
	"context"
	"sync"
	"time"
)

// Store records shown vehicle names per session.
type Store interface {
	// Shown returns the names recorded for the session.
	Shown(ctx context.Context, sessionID string) ([]string, error)

	// AddShown records names as shown for the session.
	AddShown(ctx context.Context, sessionID string, names []string) error
}

// DefaultTTL is how long a session's shown set is retained.
const DefaultTTL = 30 * time.Minute

// sweepInterval is how often expired sessions are removed.
const sweepInterval = time.Minute

// MemoryStore is the in-process Store used by default and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	ttl      time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

type memorySession struct {
	names    map[string]bool
	order    []string
	lastSeen time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		done:     make(chan struct{}),
	}

	go s.sweepLoop()

	return s
}

// sweepLoop periodically removes expired sessions until Close is called.
func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepExpired()
		case <-s.done:
			return
		}
	}
}

// sweepExpired deletes every session whose TTL has elapsed.
func (s *MemoryStore) sweepExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if time.Since(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

// Len reports how many sessions are currently retained.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the background sweep.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Shown implements Store.
func (s *MemoryStore) Shown(_ context.Context, sessionID string) ([]string, error) {
	if sessionID == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok || time.Since(sess.lastSeen) > s.ttl {
		return nil, nil
	}

	out := make([]string, len(sess.order))
	copy(out, sess.order)
	return out, nil
}

// AddShown implements Store.
func (s *MemoryStore) AddShown(_ context.Context, sessionID string, names []string) error {
	if sessionID == "" || len(names) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || time.Since(sess.lastSeen) > s.ttl {
		sess = &memorySession{names: make(map[string]bool)}
		s.sessions[sessionID] = sess
	}
	sess.lastSeen = time.Now()

	for _, n := range names {
		if !sess.names[n] {
			sess.names[n] = true
			sess.order = append(sess.order, n)
		}
	}
	return nil
}
