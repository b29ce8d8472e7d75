package monitor

import (
	"time"

	"console/internal/types"
)

// Snapshot is one fetched, ordered collection of sessions. Seq is assigned
// when the fetch starts so that responses can be ranked by issue order.
type Snapshot struct {
	Filter    types.StatusFilter
	Sessions  []*types.Session
	Seq       uint64
	FetchedAt time.Time
}

// State is the content of the session store. Sessions are shared with the
// snapshot that produced them and must be treated as read-only.
type State struct {
	Filter    types.StatusFilter
	Sessions  []*types.Session
	FocusID   string
	Focused   *types.Session
	Seq       uint64
	UpdatedAt time.Time
}

func (s State) Find(id string) (*types.Session, bool) {
	for _, session := range s.Sessions {
		if session != nil && session.ID == id {
			return session, true
		}
	}
	return nil, false
}

// Counts tallies sessions by status for the header line.
func (s State) Counts() map[types.SessionStatus]int {
	counts := make(map[types.SessionStatus]int, 3)
	for _, session := range s.Sessions {
		if session != nil {
			counts[session.Status]++
		}
	}
	return counts
}

func (s State) clone() State {
	out := s
	if s.Sessions != nil {
		out.Sessions = append([]*types.Session(nil), s.Sessions...)
	}
	return out
}
