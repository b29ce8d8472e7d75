package store

import (
	"context"
	"errors"
	"strings"

	"console/internal/types"
)

const (
	RepositoryBackendFile  = "file"
	RepositoryBackendBbolt = "bbolt"
)

type Repository interface {
	ViewState() ViewStateStore
	Backend() string
	Close() error
}

type RepositoryPaths struct {
	ViewStatePath string
	DBPath        string
}

type fileRepository struct {
	viewState ViewStateStore
}

func NewFileRepository(paths RepositoryPaths) Repository {
	return &fileRepository{
		viewState: NewFileViewStateStore(paths.ViewStatePath),
	}
}

func (r *fileRepository) ViewState() ViewStateStore {
	return r.viewState
}

func (r *fileRepository) Backend() string {
	return RepositoryBackendFile
}

func (r *fileRepository) Close() error {
	return nil
}

func OpenRepository(paths RepositoryPaths, backend string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", RepositoryBackendBbolt:
		if strings.TrimSpace(paths.DBPath) == "" {
			return nil, errors.New("db path is required for bbolt repository")
		}
		return NewBboltRepository(paths.DBPath)
	case RepositoryBackendFile:
		if strings.TrimSpace(paths.ViewStatePath) == "" {
			return nil, errors.New("view state path is required for file repository")
		}
		return NewFileRepository(paths), nil
	default:
		return nil, errors.New("unsupported repository backend: " + backend)
	}
}

// SeedRepositoryFromFiles copies a file-backed view state into dst when dst
// has none, so switching the backend to bbolt keeps the operator's filter,
// focus and drafts.
func SeedRepositoryFromFiles(ctx context.Context, dst Repository, paths RepositoryPaths) error {
	if dst == nil || dst.Backend() == RepositoryBackendFile || strings.TrimSpace(paths.ViewStatePath) == "" {
		return nil
	}
	src := NewFileRepository(paths)
	defer src.Close()

	current, err := dst.ViewState().Load(ctx)
	if err != nil {
		return err
	}
	if !isZeroViewState(current) {
		return nil
	}
	legacy, err := src.ViewState().Load(ctx)
	if err != nil {
		return err
	}
	if isZeroViewState(legacy) {
		return nil
	}
	return dst.ViewState().Save(ctx, legacy)
}

func isZeroViewState(state *types.ViewState) bool {
	if state == nil {
		return true
	}
	return (state.Filter == "" || state.Filter == types.StatusFilterAll) &&
		strings.TrimSpace(state.FocusedID) == "" &&
		len(state.Drafts) == 0
}
