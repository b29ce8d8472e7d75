package monitor

import (
	"console/internal/types"
)

// FocusTracker binds the operator's selection to a session id. The store
// re-resolves the id on every reconciliation, so the selection survives
// reordering and refreshes.
type FocusTracker struct {
	store *Store
}

func NewFocusTracker(store *Store) *FocusTracker {
	return &FocusTracker{store: store}
}

// Select focuses id. It fails with ValidationRejected when id is not in the
// current list.
func (f *FocusTracker) Select(id string) error {
	return f.store.focus(id)
}

func (f *FocusTracker) Clear() {
	f.store.clearFocus("")
}

func (f *FocusTracker) ID() string {
	return f.store.Snapshot().FocusID
}

func (f *FocusTracker) Session() (*types.Session, bool) {
	state := f.store.Snapshot()
	if state.Focused == nil {
		return nil, false
	}
	return state.Focused, true
}
