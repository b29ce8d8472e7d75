package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"console/internal/types"
)

type ViewStateStore interface {
	Load(ctx context.Context) (*types.ViewState, error)
	Save(ctx context.Context, state *types.ViewState) error
}

type FileViewStateStore struct {
	path string
	mu   sync.Mutex
}

func NewFileViewStateStore(path string) *FileViewStateStore {
	return &FileViewStateStore{path: path}
}

func (s *FileViewStateStore) Load(ctx context.Context) (*types.ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &types.ViewState{}
	if err := readJSON(s.path, state); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return normalizeViewState(state), nil
		}
		return nil, err
	}
	return normalizeViewState(state), nil
}

func (s *FileViewStateStore) Save(ctx context.Context, state *types.ViewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == nil {
		return errors.New("state is required")
	}
	return writeJSONAtomic(s.path, normalizeViewState(state))
}

// normalizeViewState returns a copy with an unknown filter reset to all and
// blank drafts dropped.
func normalizeViewState(state *types.ViewState) *types.ViewState {
	out := &types.ViewState{}
	if state == nil {
		out.Filter = types.StatusFilterAll
		return out
	}
	filter, err := types.ParseStatusFilter(string(state.Filter))
	if err != nil {
		filter = types.StatusFilterAll
	}
	out.Filter = filter
	out.FocusedID = strings.TrimSpace(state.FocusedID)
	for id, text := range state.Drafts {
		id = strings.TrimSpace(id)
		if id == "" || strings.TrimSpace(text) == "" {
			continue
		}
		if out.Drafts == nil {
			out.Drafts = map[string]string{}
		}
		out.Drafts[id] = text
	}
	return out
}
