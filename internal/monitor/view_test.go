package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"console/internal/types"
)

type memoryViewState struct {
	mu    sync.Mutex
	state *types.ViewState
	saves int
}

func (m *memoryViewState) Load(context.Context) (*types.ViewState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *memoryViewState) Save(_ context.Context, state *types.ViewState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.saves++
	return nil
}

func TestViewEndToEndFocusFollowsTransfer(t *testing.T) {
	api := &fakeAPI{}
	api.queue(newSession("1", types.SessionStatusActive, 1))
	view := NewView(api, WithInterval(time.Hour))
	if err := view.Mount(context.Background(), types.StatusFilterAll); err != nil {
		t.Fatalf("mount: %v", err)
	}
	defer view.Unmount()

	waitFor(t, "tick 1", func() bool { return len(view.Store().Snapshot().Sessions) == 1 })
	if err := view.Focus().Select("1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if view.Commands().Allowed("1").Send {
		t.Fatalf("send must not be allowed before transfer")
	}

	api.set(newSession("2", types.SessionStatusActive, 5), newSession("1", types.SessionStatusTransferred, 2))
	view.Refresh()
	waitFor(t, "tick 2", func() bool { return len(view.Store().Snapshot().Sessions) == 2 })

	state := view.Store().Snapshot()
	if state.FocusID != "1" || state.Focused == nil || state.Focused.Status != types.SessionStatusTransferred {
		t.Fatalf("expected focus on transferred session 1, got %#v", state)
	}
	if !equalIDs(ids(state.Sessions), "2", "1") {
		t.Fatalf("unexpected order: %v", ids(state.Sessions))
	}
	if !view.Commands().Allowed("1").Send {
		t.Fatalf("expected send to be permitted after transfer")
	}
	if err := view.Commands().SendMessage(context.Background(), "1", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestViewDeleteClearsFocusBeforeNextPoll(t *testing.T) {
	api := &fakeAPI{}
	api.queue(newSession("1", types.SessionStatusActive, 1), newSession("2", types.SessionStatusActive, 2))
	view := NewView(api, WithInterval(time.Hour))
	if err := view.Mount(context.Background(), ""); err != nil {
		t.Fatalf("mount: %v", err)
	}
	defer view.Unmount()
	waitFor(t, "first snapshot", func() bool { return len(view.Store().Snapshot().Sessions) == 2 })
	_ = view.Focus().Select("1")

	api.mu.Lock()
	api.gate = make(chan struct{})
	api.mu.Unlock()
	defer close(api.gate)

	confirm, err := view.Commands().RequestDelete("1")
	if err != nil {
		t.Fatalf("request delete: %v", err)
	}
	if err := view.Commands().Delete(context.Background(), confirm); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if view.Focus().ID() != "" {
		t.Fatalf("expected focus cleared while the resync is still pending")
	}
	if _, ok := view.Store().Session("1"); ok {
		t.Fatalf("expected session removed locally")
	}
}

func TestViewRestoresAndSavesState(t *testing.T) {
	saved := &memoryViewState{state: &types.ViewState{
		Filter:    types.StatusFilter(types.SessionStatusTransferred),
		FocusedID: "7",
		Drafts:    map[string]string{"7": "half written"},
	}}
	api := &fakeAPI{}
	api.queue(newSession("7", types.SessionStatusTransferred, 1))
	view := NewView(api, WithInterval(time.Hour), WithStateStore(saved))
	if err := view.Mount(context.Background(), ""); err != nil {
		t.Fatalf("mount: %v", err)
	}
	waitFor(t, "focus restore", func() bool { return view.Focus().ID() == "7" })
	if view.Filter() != types.StatusFilter(types.SessionStatusTransferred) {
		t.Fatalf("expected saved filter, got %q", view.Filter())
	}
	if view.Drafts().Get("7") != "half written" {
		t.Fatalf("expected restored draft")
	}

	view.Drafts().Set("7", "fully written")
	if err := view.Unmount(); err != nil {
		t.Fatalf("unmount: %v", err)
	}
	if view.Poller().Running() {
		t.Fatalf("expected poll cycle stopped on unmount")
	}
	if saved.saves != 1 || saved.state.FocusedID != "7" || saved.state.Drafts["7"] != "fully written" {
		t.Fatalf("unexpected saved state: %#v", saved.state)
	}
}

func TestViewIgnoresSavedFocusMissingFromFirstSnapshot(t *testing.T) {
	saved := &memoryViewState{state: &types.ViewState{FocusedID: "gone"}}
	api := &fakeAPI{}
	api.queue(newSession("1", types.SessionStatusActive, 1))
	view := NewView(api, WithInterval(time.Hour), WithStateStore(saved))
	if err := view.Mount(context.Background(), ""); err != nil {
		t.Fatalf("mount: %v", err)
	}
	defer view.Unmount()
	waitFor(t, "first snapshot", func() bool { return len(view.Store().Snapshot().Sessions) == 1 })
	if view.Focus().ID() != "" {
		t.Fatalf("expected no focus, got %q", view.Focus().ID())
	}
}

func TestViewSetFilterRestartsCycle(t *testing.T) {
	api := &fakeAPI{}
	view := NewView(api, WithInterval(time.Hour))
	if err := view.SetFilter(types.StatusFilterAll); err != ErrNotMounted {
		t.Fatalf("expected ErrNotMounted, got %v", err)
	}
	if err := view.Mount(context.Background(), types.StatusFilterAll); err != nil {
		t.Fatalf("mount: %v", err)
	}
	defer view.Unmount()
	if err := view.Mount(context.Background(), types.StatusFilterAll); err != ErrAlreadyMounted {
		t.Fatalf("expected ErrAlreadyMounted, got %v", err)
	}
	waitFor(t, "first fetch", func() bool { return api.calls() == 1 })

	if err := view.SetFilter(types.StatusFilter(types.SessionStatusClosed)); err != nil {
		t.Fatalf("set filter: %v", err)
	}
	waitFor(t, "filtered fetch", func() bool { return api.calls() == 2 })
	api.mu.Lock()
	last := api.filters[len(api.filters)-1]
	api.mu.Unlock()
	if last != types.StatusFilter(types.SessionStatusClosed) {
		t.Fatalf("expected closed filter, got %q", last)
	}
	if view.Poller().Filter() != types.StatusFilter(types.SessionStatusClosed) {
		t.Fatalf("expected poller on closed filter")
	}
}
