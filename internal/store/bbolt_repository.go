package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"console/internal/types"
)

var (
	bucketViewState = []byte("view_state")
	bucketDrafts    = []byte("drafts")
	keyViewState    = []byte("state")
)

type bboltRepository struct {
	db        *bolt.DB
	viewState ViewStateStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{
		db:        db,
		viewState: &bboltViewStateStore{db: db},
	}, nil
}

func (r *bboltRepository) ViewState() ViewStateStore {
	return r.viewState
}

func (r *bboltRepository) Backend() string {
	return RepositoryBackendBbolt
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketViewState); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketDrafts); err != nil {
			return err
		}
		return nil
	})
}

// bboltViewStateStore keeps filter and focus under one key and each compose
// draft under its session id.
type bboltViewStateStore struct {
	db *bolt.DB
}

type bboltViewStateRecord struct {
	Filter    types.StatusFilter `json:"filter,omitempty"`
	FocusedID string             `json:"focused_id,omitempty"`
}

func (s *bboltViewStateStore) Load(ctx context.Context) (*types.ViewState, error) {
	state := &types.ViewState{}
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketViewState); b != nil {
			if raw := b.Get(keyViewState); len(raw) > 0 {
				var record bboltViewStateRecord
				if err := json.Unmarshal(raw, &record); err != nil {
					return err
				}
				state.Filter = record.Filter
				state.FocusedID = record.FocusedID
			}
		}
		b := tx.Bucket(bucketDrafts)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if state.Drafts == nil {
				state.Drafts = map[string]string{}
			}
			state.Drafts[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return normalizeViewState(state), nil
}

func (s *bboltViewStateStore) Save(ctx context.Context, state *types.ViewState) error {
	if state == nil {
		return errors.New("state is required")
	}
	state = normalizeViewState(state)
	raw, err := json.Marshal(bboltViewStateRecord{Filter: state.Filter, FocusedID: state.FocusedID})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketViewState)
		if b == nil {
			return errors.New("view state bucket missing")
		}
		if err := b.Put(keyViewState, raw); err != nil {
			return err
		}
		if err := tx.DeleteBucket(bucketDrafts); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		drafts, err := tx.CreateBucket(bucketDrafts)
		if err != nil {
			return err
		}
		for id, text := range state.Drafts {
			if err := drafts.Put([]byte(id), []byte(text)); err != nil {
				return err
			}
		}
		return nil
	})
}
