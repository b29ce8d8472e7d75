package store

import (
	"context"
	"path/filepath"
	"testing"

	"console/internal/types"
)

func TestBboltViewStateRoundTrip(t *testing.T) {
	repo, err := NewBboltRepository(filepath.Join(t.TempDir(), "console.db"))
	if err != nil {
		t.Fatalf("NewBboltRepository: %v", err)
	}
	defer repo.Close()
	ctx := context.Background()

	if repo.Backend() != RepositoryBackendBbolt {
		t.Fatalf("unexpected backend %q", repo.Backend())
	}
	empty, err := repo.ViewState().Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if !isZeroViewState(empty) {
		t.Fatalf("expected zero state, got %#v", empty)
	}

	first := &types.ViewState{
		Filter:    types.StatusFilter(types.SessionStatusActive),
		FocusedID: "c1",
		Drafts:    map[string]string{"c1": "one", "c2": "two"},
	}
	if err := repo.ViewState().Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := &types.ViewState{
		Filter: types.StatusFilter(types.SessionStatusActive),
		Drafts: map[string]string{"c2": "two, edited"},
	}
	if err := repo.ViewState().Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.ViewState().Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Filter != types.StatusFilter(types.SessionStatusActive) || loaded.FocusedID != "" {
		t.Fatalf("unexpected state: %#v", loaded)
	}
	if len(loaded.Drafts) != 1 || loaded.Drafts["c2"] != "two, edited" {
		t.Fatalf("expected drafts replaced, got %#v", loaded.Drafts)
	}
}

func TestBboltViewStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.db")
	repo, err := NewBboltRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.ViewState().Save(context.Background(), &types.ViewState{FocusedID: "c7"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewBboltRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	state, err := reopened.ViewState().Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.FocusedID != "c7" {
		t.Fatalf("expected focus to persist, got %#v", state)
	}
}
