package monitor

import (
	"console/internal/types"
)

// Reconcile replaces the session list of prev with snap and re-resolves the
// focused session by id. A focus whose id is missing from snap is cleared.
// The result depends only on the inputs, so applying the same snapshot twice
// yields the same state.
func Reconcile(prev State, snap Snapshot) State {
	sessions := make([]*types.Session, 0, len(snap.Sessions))
	seen := make(map[string]struct{}, len(snap.Sessions))
	for _, session := range snap.Sessions {
		if session == nil || session.ID == "" {
			continue
		}
		if _, ok := seen[session.ID]; ok {
			continue
		}
		seen[session.ID] = struct{}{}
		sessions = append(sessions, session)
	}
	SortSessions(sessions)

	next := State{
		Filter:    snap.Filter.Normalize(),
		Sessions:  sessions,
		Seq:       snap.Seq,
		UpdatedAt: snap.FetchedAt,
	}
	if prev.FocusID == "" {
		return next
	}
	if focused, ok := next.Find(prev.FocusID); ok {
		next.FocusID = prev.FocusID
		next.Focused = focused
	}
	return next
}

// removeSession drops id from state ahead of the next snapshot.
func removeSession(prev State, id string) (State, bool) {
	idx := -1
	for i, session := range prev.Sessions {
		if session != nil && session.ID == id {
			idx = i
			break
		}
	}
	next := prev.clone()
	if idx >= 0 {
		next.Sessions = append(next.Sessions[:idx], next.Sessions[idx+1:]...)
	}
	if next.FocusID == id {
		next.FocusID = ""
		next.Focused = nil
	}
	return next, idx >= 0
}
