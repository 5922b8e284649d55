// Package view holds the per-page state machines: the list, detail and
// create/update views. Each wraps its remote data in a State so a response
// that arrives after the user has moved on is dropped instead of overwriting
// newer data.
package view

import "sync"

// Phase is where a view's remote data stands.
type Phase int

const (
	Loading Phase = iota
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// Ticket identifies one load. Only the most recent ticket may settle a State.
type Ticket uint64

// State is Loading until a load settles into Ready(data) or Failed(err).
// The zero value is Loading with no load in flight.
type State[T any] struct {
	mu     sync.Mutex
	phase  Phase
	data   T
	err    error
	ticket Ticket
}

// Begin starts a new load and invalidates every earlier ticket. Data from the
// previous load stays readable until the new one settles.
func (s *State[T]) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticket++
	s.phase = Loading
	s.err = nil
	return s.ticket
}

// Resolve settles the load identified by t with data. Stale tickets are
// ignored and Resolve reports false.
func (s *State[T]) Resolve(t Ticket, data T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.ticket {
		return false
	}
	s.phase, s.data, s.err = Ready, data, nil
	return true
}

// Fail settles the load identified by t with err. Stale tickets are ignored.
func (s *State[T]) Fail(t Ticket, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.ticket {
		return false
	}
	s.phase, s.err = Failed, err
	return true
}

// Snapshot returns phase, data and error together.
func (s *State[T]) Snapshot() (Phase, T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase, s.data, s.err
}

// Phase returns the current phase.
func (s *State[T]) Phase() Phase {
	p, _, _ := s.Snapshot()
	return p
}

// Err returns the error of a Failed state.
func (s *State[T]) Err() error {
	_, _, err := s.Snapshot()
	return err
}
