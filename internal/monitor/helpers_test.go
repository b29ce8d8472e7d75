package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"console/internal/types"
)

var baseTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func at(minutes int) types.Timestamp {
	return types.NewTimestamp(baseTime.Add(time.Duration(minutes) * time.Minute))
}

func newSession(id string, status types.SessionStatus, lastMinute int) *types.Session {
	s := &types.Session{
		ID:                 id,
		PhoneNumber:        "55" + id,
		UserName:           "user " + id,
		Status:             status,
		TransferredToHuman: status == types.SessionStatusTransferred,
		StartedAt:          at(0),
	}
	if lastMinute > 0 {
		s.LastMessageAt = at(lastMinute)
	}
	return s
}

func ids(sessions []*types.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}

func equalIDs(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// fakeAPI serves queued list responses and records commands.
type fakeAPI struct {
	mu        sync.Mutex
	responses [][]*types.Session
	listErr   error
	listCalls int
	inFlight  int
	peak      int
	filters   []types.StatusFilter
	gate      chan struct{}
	entered   chan struct{}
	commands  []string
	sent      []string
	cmdErr    error
}

func (f *fakeAPI) queue(sessions ...*types.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, sessions)
}

// set replaces every queued response with sessions.
func (f *fakeAPI) set(sessions ...*types.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = [][]*types.Session{sessions}
}

func (f *fakeAPI) ListConversations(ctx context.Context, filter types.StatusFilter) ([]*types.Session, error) {
	f.mu.Lock()
	gate := f.gate
	entered := f.entered
	f.inFlight++
	f.peak = max(f.peak, f.inFlight)
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()
	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.filters = append(f.filters, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.responses) == 0 {
		return nil, nil
	}
	next := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	out := make([]*types.Session, 0, len(next))
	for _, s := range next {
		out = append(out, s.Clone())
	}
	return out, nil
}

// peakInFlight reports the most list requests that were open at once.
func (f *fakeAPI) peakInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak
}

func (f *fakeAPI) record(command string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, command)
	return f.cmdErr
}

func (f *fakeAPI) TransferConversation(_ context.Context, id string) error {
	return f.record("transfer " + id)
}

func (f *fakeAPI) CloseConversation(_ context.Context, id string) error {
	return f.record("close " + id)
}

func (f *fakeAPI) DeleteConversation(_ context.Context, id string) error {
	return f.record("delete " + id)
}

func (f *fakeAPI) SendMessage(_ context.Context, phone, text string) error {
	f.mu.Lock()
	f.sent = append(f.sent, phone+": "+text)
	f.mu.Unlock()
	return f.record("send " + phone)
}

func (f *fakeAPI) commandCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.commands)
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type countingResync struct {
	mu    sync.Mutex
	count int
}

func (r *countingResync) Trigger() {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
}

func (r *countingResync) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
