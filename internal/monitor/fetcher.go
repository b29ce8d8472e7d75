package monitor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"console/internal/client"
	"console/internal/logging"
	"console/internal/types"
)

type SessionLister interface {
	ListConversations(ctx context.Context, filter types.StatusFilter) ([]*types.Session, error)
}

// Fetcher performs one list round trip and shapes the result into an
// ordered Snapshot. Concurrent fetches for the same filter share a single
// request.
type Fetcher struct {
	api    SessionLister
	logger logging.Logger
	now    func() time.Time
	group  singleflight.Group
	seq    atomic.Uint64

	mu     sync.Mutex
	rounds map[types.StatusFilter]uint64
}

func NewFetcher(api SessionLister, logger logging.Logger) *Fetcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Fetcher{
		api:    api,
		logger: logger.With(logging.F("component", "fetcher")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Fetch joins the request already in flight for filter, or starts one.
func (f *Fetcher) Fetch(ctx context.Context, filter types.StatusFilter) (Snapshot, error) {
	return f.do(ctx, filter, false)
}

// FetchFresh always starts a new request, so the snapshot reflects every
// change made before the call. Fetch calls made after it join the new
// request instead of the older one.
func (f *Fetcher) FetchFresh(ctx context.Context, filter types.StatusFilter) (Snapshot, error) {
	return f.do(ctx, filter, true)
}

func (f *Fetcher) do(ctx context.Context, filter types.StatusFilter, fresh bool) (Snapshot, error) {
	if f == nil || f.api == nil {
		return Snapshot{}, &client.Error{Kind: client.KindRemoteUnavailable, Op: "fetch", Message: "no remote configured"}
	}
	filter = filter.Normalize()
	ch := f.group.DoChan(f.key(filter, fresh), func() (any, error) {
		shared, cancel := detach(ctx)
		defer cancel()
		return f.fetch(shared, filter)
	})
	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Snapshot{}, res.Err
		}
		return res.Val.(Snapshot), nil
	}
}

func (f *Fetcher) key(filter types.StatusFilter, fresh bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rounds == nil {
		f.rounds = make(map[types.StatusFilter]uint64)
	}
	if fresh {
		f.rounds[filter]++
	}
	return fmt.Sprintf("%s#%d", filter, f.rounds[filter])
}

// detach keeps the shared request alive when the caller that started it
// goes away, but still bounds it by that caller's deadline.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(base, deadline)
	}
	return context.WithCancel(base)
}

func (f *Fetcher) fetch(ctx context.Context, filter types.StatusFilter) (Snapshot, error) {
	seq := f.seq.Add(1)
	sessions, err := f.api.ListConversations(ctx, filter)
	if err != nil {
		return Snapshot{}, err
	}
	out := make([]*types.Session, 0, len(sessions))
	seen := make(map[string]struct{}, len(sessions))
	for i, session := range sessions {
		if session == nil {
			return Snapshot{}, malformedSnapshot(fmt.Sprintf("entry %d is null", i))
		}
		id := strings.TrimSpace(session.ID)
		if id == "" {
			return Snapshot{}, malformedSnapshot(fmt.Sprintf("entry %d has no id", i))
		}
		if _, ok := seen[id]; ok {
			f.logger.Warn("duplicate conversation in snapshot", logging.F("id", id))
			continue
		}
		seen[id] = struct{}{}
		session.ID = id
		out = append(out, session)
	}
	SortSessions(out)
	return Snapshot{
		Filter:    filter,
		Sessions:  out,
		Seq:       seq,
		FetchedAt: f.now(),
	}, nil
}

func malformedSnapshot(message string) error {
	return &client.Error{Kind: client.KindMalformedResponse, Op: "fetch", Message: message}
}
