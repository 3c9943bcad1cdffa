package handler

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/enrollhub/onboarding-api/internal/domain/importer/session"
)

// SessionStore keeps the active import sessions in memory, keyed by session
// ID. The store's lock guards the map only; handlers take each session's own
// lock before mutating it, so overlapping requests on one session serialize.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session.Session
	touched  map[uuid.UUID]time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*session.Session),
		touched:  make(map[uuid.UUID]time.Time),
	}
}

// Put registers a session, replacing any previous one with the same ID.
func (s *SessionStore) Put(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	s.touched[sess.ID] = time.Now()
}

// Get returns the session with the given ID and refreshes its last-use time.
func (s *SessionStore) Get(id uuid.UUID) (*session.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		s.touched[id] = time.Now()
	}
	return sess, ok
}

// Delete removes a session; committed or abandoned sessions are dropped so
// the store does not grow across wizard runs.
func (s *SessionStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.touched, id)
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops every session idle for longer than maxAge and returns how many
// were removed. The background scheduler calls this; an abandoned wizard tab
// should not pin a parsed spreadsheet in memory forever.
func (s *SessionStore) Sweep(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, last := range s.touched {
		if last.Before(cutoff) {
			delete(s.sessions, id)
			delete(s.touched, id)
			removed++
		}
	}
	return removed
}
