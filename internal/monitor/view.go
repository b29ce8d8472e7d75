package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"console/internal/logging"
	"console/internal/types"
)

var (
	ErrAlreadyMounted = errors.New("monitoring view already mounted")
	ErrNotMounted     = errors.New("monitoring view not mounted")
)

// API is the slice of the remote client the monitoring view needs.
type API interface {
	SessionLister
	CommandAPI
}

type ViewStateStore interface {
	Load(ctx context.Context) (*types.ViewState, error)
	Save(ctx context.Context, state *types.ViewState) error
}

// View owns one monitoring view's engine: the store, its poll cycle, focus,
// drafts and commands. Construct it when the view mounts and Unmount it when
// the view goes away so that no poll cycle outlives the view.
type View struct {
	store    *Store
	fetcher  *Fetcher
	poller   *Poller
	focus    *FocusTracker
	drafts   *Drafts
	commands *Controller
	state    ViewStateStore
	logger   logging.Logger

	interval time.Duration
	timeout  time.Duration
	onError  func(error)

	mu           sync.Mutex
	mounted      bool
	ctx          context.Context
	filter       types.StatusFilter
	pendingFocus string
}

type ViewOption func(*View)

func WithInterval(interval time.Duration) ViewOption {
	return func(v *View) {
		if interval > 0 {
			v.interval = interval
		}
	}
}

func WithRequestTimeout(timeout time.Duration) ViewOption {
	return func(v *View) {
		if timeout > 0 {
			v.timeout = timeout
		}
	}
}

func WithLogger(logger logging.Logger) ViewOption {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithStateStore persists filter, focus and drafts across mounts.
func WithStateStore(state ViewStateStore) ViewOption {
	return func(v *View) {
		v.state = state
	}
}

// WithErrorHandler receives poll failures. It must not block.
func WithErrorHandler(fn func(error)) ViewOption {
	return func(v *View) {
		v.onError = fn
	}
}

func NewView(api API, opts ...ViewOption) *View {
	v := &View{
		interval: defaultPollInterval,
		timeout:  defaultPollTimeout,
		logger:   logging.Nop(),
		filter:   types.StatusFilterAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	v.store = NewStore()
	v.drafts = NewDrafts()
	v.focus = NewFocusTracker(v.store)
	v.fetcher = NewFetcher(api, v.logger)
	v.poller = NewPoller(v.fetcher, v.store,
		WithPollInterval(v.interval),
		WithFetchTimeout(v.timeout),
		WithPollLogger(v.logger),
		WithPollErrorHandler(v.handleError),
		WithApplyHandler(v.handleApplied),
	)
	v.commands = NewController(api, v.store, v.drafts, v.poller, v.logger)
	return v
}

func (v *View) Store() *Store { return v.store }

func (v *View) Focus() *FocusTracker { return v.focus }

func (v *View) Drafts() *Drafts { return v.drafts }

func (v *View) Commands() *Controller { return v.commands }

func (v *View) Poller() *Poller { return v.poller }

func (v *View) Filter() types.StatusFilter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// Mount restores any saved view state and starts polling. An empty filter
// falls back to the saved one. A saved focus is restored once the first
// snapshot containing it arrives.
func (v *View) Mount(ctx context.Context, filter types.StatusFilter) error {
	if ctx == nil {
		ctx = context.Background()
	}
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return ErrAlreadyMounted
	}
	v.mounted = true
	v.ctx = ctx
	v.mu.Unlock()

	saved := v.loadState(ctx)
	if filter == "" && saved != nil {
		filter = saved.Filter
	}
	filter = filter.Normalize()

	v.mu.Lock()
	v.filter = filter
	if saved != nil {
		v.pendingFocus = saved.FocusedID
		v.drafts.Restore(saved.Drafts)
	}
	v.mu.Unlock()

	v.poller.Start(ctx, filter)
	return nil
}

// Unmount stops the poll cycle and saves the view state.
func (v *View) Unmount() error {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return ErrNotMounted
	}
	v.mounted = false
	v.pendingFocus = ""
	filter := v.filter
	v.mu.Unlock()

	v.poller.Stop()
	if v.state == nil {
		return nil
	}
	state := &types.ViewState{
		Filter:    filter,
		FocusedID: v.focus.ID(),
		Drafts:    v.drafts.All(),
	}
	// The mount context may already be cancelled by the time the view goes
	// away; saving must still happen.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := v.state.Save(ctx, state); err != nil {
		v.logger.Warn("view state save failed", logging.Err(err))
		return err
	}
	return nil
}

// SetFilter restarts the poll cycle for filter. The previous cycle is
// stopped first so that at most one cycle is active.
func (v *View) SetFilter(filter types.StatusFilter) error {
	filter = filter.Normalize()
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return ErrNotMounted
	}
	if filter == v.filter {
		v.mu.Unlock()
		return nil
	}
	v.filter = filter
	ctx := v.ctx
	v.mu.Unlock()

	v.poller.Start(ctx, filter)
	return nil
}

// Refresh requests an immediate poll.
func (v *View) Refresh() {
	v.poller.Trigger()
}

func (v *View) loadState(ctx context.Context) *types.ViewState {
	if v.state == nil {
		return nil
	}
	saved, err := v.state.Load(ctx)
	if err != nil {
		v.logger.Warn("view state load failed", logging.Err(err))
		return nil
	}
	return saved
}

func (v *View) handleApplied(Snapshot) {
	v.mu.Lock()
	id := v.pendingFocus
	v.pendingFocus = ""
	mounted := v.mounted
	v.mu.Unlock()
	if !mounted || id == "" || v.focus.ID() != "" {
		return
	}
	if err := v.focus.Select(id); err != nil {
		v.logger.Debug("saved focus not restored", logging.F("id", id))
	}
}

func (v *View) handleError(err error) {
	if v.onError != nil {
		v.onError(err)
	}
}
