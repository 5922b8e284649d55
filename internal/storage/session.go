package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// Session pairs a value with its bookkeeping timestamps.
type Session[T any] struct {
	ID        string
	Value     T
	CreatedAt time.Time
	SeenAt    time.Time
}

// SessionStore keeps per-visitor values for a sliding TTL. Expired sessions
// are handed to the release callback so their resources can be freed.
type SessionStore[T any] struct {
	mu       sync.RWMutex
	sessions map[string]*Session[T]
	ttl      time.Duration
	release  func(T)
	now      func() time.Time
}

// SessionOption customises a SessionStore.
type SessionOption[T any] func(*SessionStore[T])

// WithRelease registers a callback run for each session removed by Delete or
// Sweep.
func WithRelease[T any](fn func(T)) SessionOption[T] {
	return func(s *SessionStore[T]) { s.release = fn }
}

// WithClock replaces time.Now.
func WithClock[T any](now func() time.Time) SessionOption[T] {
	return func(s *SessionStore[T]) { s.now = now }
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore[T any](ttl time.Duration, opts ...SessionOption[T]) *SessionStore[T] {
	s := &SessionStore[T]{
		sessions: make(map[string]*Session[T]),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session holding value and returns its ID.
func (s *SessionStore[T]) Create(value T) string {
	now := s.now().UTC()
	sess := &Session[T]{ID: uuid.NewString(), Value: value, CreatedAt: now, SeenAt: now}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess.ID
}

// Get returns the session value and refreshes its TTL.
func (s *SessionStore[T]) Get(id string) (T, error) {
	var zero T
	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || s.expired(sess, now) {
		return zero, ErrSessionNotFound
	}
	sess.SeenAt = now
	return sess.Value, nil
}

// Delete removes a session and releases its value.
func (s *SessionStore[T]) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.releaseValue(sess.Value)
	return nil
}

// Sweep removes every expired session and returns how many it removed.
func (s *SessionStore[T]) Sweep() int {
	now := s.now().UTC()
	var expired []*Session[T]
	s.mu.Lock()
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
	for _, sess := range expired {
		s.releaseValue(sess.Value)
	}
	return len(expired)
}

// Len returns the number of sessions, expired ones included until swept.
func (s *SessionStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore[T]) expired(sess *Session[T], now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.SeenAt) > s.ttl
}

func (s *SessionStore[T]) releaseValue(v T) {
	if s.release != nil {
		s.release(v)
	}
}
