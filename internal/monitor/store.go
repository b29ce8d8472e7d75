package monitor

import (
	"strings"
	"sync"

	"console/internal/client"
	"console/internal/types"
)

// Store holds the last reconciled session list and the focused session id.
// It is owned by a single View; the poller, the focus tracker and the
// lifecycle controller are its only writers.
type Store struct {
	mu      sync.RWMutex
	state   State
	subs    map[int]chan struct{}
	nextSub int
}

func NewStore() *Store {
	return &Store{
		state: State{Filter: types.StatusFilterAll},
		subs:  map[int]chan struct{}{},
	}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) Session(id string) (*types.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Find(strings.TrimSpace(id))
}

// Apply reconciles snap into the store. Snapshots issued before the one
// currently applied are dropped and Apply reports false.
func (s *Store) Apply(snap Snapshot) bool {
	s.mu.Lock()
	if snap.Seq != 0 && snap.Seq < s.state.Seq {
		s.mu.Unlock()
		return false
	}
	s.state = Reconcile(s.state, snap)
	s.mu.Unlock()
	s.notify()
	return true
}

// Remove drops a session locally, clearing focus when it pointed at id.
func (s *Store) Remove(id string) bool {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	next, removed := removeSession(s.state, id)
	changed := removed || next.FocusID != s.state.FocusID
	s.state = next
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return removed
}

func (s *Store) focus(id string) error {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	session, ok := s.state.Find(id)
	if !ok {
		s.mu.Unlock()
		return client.Rejected("focus", "conversation "+id+" is not in the current list")
	}
	changed := s.state.FocusID != id || s.state.Focused != session
	s.state.FocusID = id
	s.state.Focused = session
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return nil
}

// clearFocus clears focus. With a non-empty only argument it clears only
// when that id is the focused one.
func (s *Store) clearFocus(only string) bool {
	s.mu.Lock()
	if s.state.FocusID == "" || (only != "" && s.state.FocusID != only) {
		s.mu.Unlock()
		return false
	}
	s.state.FocusID = ""
	s.state.Focused = nil
	s.mu.Unlock()
	s.notify()
	return true
}

// Subscribe returns a channel that receives a signal after every change.
// Signals coalesce: a slow reader sees one pending signal, then reads the
// latest state with Snapshot.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
