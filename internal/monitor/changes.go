package monitor

import (
	"console/internal/types"
)

type ChangeKind string

const (
	ChangeAdded        ChangeKind = "added"
	ChangeRemoved      ChangeKind = "removed"
	ChangeStatus       ChangeKind = "status"
	ChangeMessages     ChangeKind = "messages"
	ChangeFocusEvicted ChangeKind = "focus_evicted"
)

// Change describes one observable difference between two store states.
type Change struct {
	Kind    ChangeKind
	ID      string
	Session *types.Session
	From    types.SessionStatus
	To      types.SessionStatus
	// NewMessages counts messages added since the previous state.
	NewMessages int
}

// Diff lists the changes from prev to next in next's list order, followed by
// removals in prev's order.
func Diff(prev, next State) []Change {
	before := make(map[string]*types.Session, len(prev.Sessions))
	for _, session := range prev.Sessions {
		if session != nil {
			before[session.ID] = session
		}
	}
	var changes []Change
	present := make(map[string]struct{}, len(next.Sessions))
	for _, session := range next.Sessions {
		if session == nil {
			continue
		}
		present[session.ID] = struct{}{}
		old, ok := before[session.ID]
		if !ok {
			changes = append(changes, Change{Kind: ChangeAdded, ID: session.ID, Session: session, To: session.Status})
			continue
		}
		if old.Status != session.Status {
			changes = append(changes, Change{Kind: ChangeStatus, ID: session.ID, Session: session, From: old.Status, To: session.Status})
		}
		if added := len(session.Messages) - len(old.Messages); added > 0 {
			changes = append(changes, Change{Kind: ChangeMessages, ID: session.ID, Session: session, NewMessages: added})
		}
	}
	for _, session := range prev.Sessions {
		if session == nil {
			continue
		}
		if _, ok := present[session.ID]; !ok {
			changes = append(changes, Change{Kind: ChangeRemoved, ID: session.ID, Session: session, From: session.Status})
		}
	}
	if prev.FocusID != "" && next.FocusID == "" {
		if _, ok := present[prev.FocusID]; !ok {
			changes = append(changes, Change{Kind: ChangeFocusEvicted, ID: prev.FocusID})
		}
	}
	return changes
}
