package monitor

import (
	"context"
	"sync"
	"time"

	"console/internal/logging"
	"console/internal/types"
)

const (
	defaultPollInterval = 10 * time.Second
	defaultPollTimeout  = 15 * time.Second
)

type SnapshotSource interface {
	Fetch(ctx context.Context, filter types.StatusFilter) (Snapshot, error)
}

// freshSource is implemented by sources that can skip a request already in
// flight, so a triggered cycle observes changes made just before it.
type freshSource interface {
	FetchFresh(ctx context.Context, filter types.StatusFilter) (Snapshot, error)
}

type SnapshotSink interface {
	Apply(snap Snapshot) bool
}

// Poller runs fetch then reconcile once on start, then on every tick and on
// every Trigger, until stopped. Tick cycles do not wait for each other, so
// a tick that fires while a fetch is in flight joins it through the
// source. Triggered cycles run one at a time and request a fresh fetch;
// triggers that arrive during one collapse into a single follow-up. A
// fetch that completes after Stop, or after a restart, is discarded.
type Poller struct {
	source   SnapshotSource
	sink     SnapshotSink
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger
	onError  func(error)
	onApply  func(Snapshot)

	mu      sync.Mutex
	gen     uint64
	running bool
	filter  types.StatusFilter
	cancel  context.CancelFunc
	trigger chan struct{}
}

type PollerOption func(*Poller)

func WithPollInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithFetchTimeout bounds each fetch; expiry surfaces as RemoteUnavailable.
func WithFetchTimeout(timeout time.Duration) PollerOption {
	return func(p *Poller) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

func WithPollLogger(logger logging.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPollErrorHandler receives fetch failures. Overlapping cycles may call
// it concurrently and it must not block.
func WithPollErrorHandler(fn func(error)) PollerOption {
	return func(p *Poller) {
		p.onError = fn
	}
}

// WithApplyHandler runs after each snapshot is applied to the sink. Like
// the error handler it may be called from overlapping cycles.
func WithApplyHandler(fn func(Snapshot)) PollerOption {
	return func(p *Poller) {
		p.onApply = fn
	}
}

func NewPoller(source SnapshotSource, sink SnapshotSink, opts ...PollerOption) *Poller {
	p := &Poller{
		source:   source,
		sink:     sink,
		interval: defaultPollInterval,
		timeout:  defaultPollTimeout,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.logger = p.logger.With(logging.F("component", "poller"))
	return p
}

// Start begins a poll cycle for filter, stopping any cycle already running.
func (p *Poller) Start(ctx context.Context, filter types.StatusFilter) {
	if ctx == nil {
		ctx = context.Background()
	}
	filter = filter.Normalize()
	p.mu.Lock()
	p.stopLocked()
	p.gen++
	gen := p.gen
	cycleCtx, cancel := context.WithCancel(ctx)
	trigger := make(chan struct{}, 1)
	p.running = true
	p.filter = filter
	p.cancel = cancel
	p.trigger = trigger
	p.mu.Unlock()

	p.logger.Info("poll cycle started", logging.F("filter", filter), logging.F("interval", p.interval))
	go p.loop(cycleCtx, gen, filter, trigger)
}

func (p *Poller) Stop() {
	p.mu.Lock()
	stopped := p.stopLocked()
	p.mu.Unlock()
	if stopped {
		p.logger.Info("poll cycle stopped")
	}
}

func (p *Poller) stopLocked() bool {
	if !p.running {
		return false
	}
	p.gen++
	p.running = false
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.trigger = nil
	return true
}

// Trigger requests an immediate cycle without waiting for the next tick.
// Requests made while one is already pending collapse into it.
func (p *Poller) Trigger() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running || p.trigger == nil {
		return
	}
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) Filter() types.StatusFilter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

func (p *Poller) loop(ctx context.Context, gen uint64, filter types.StatusFilter, trigger <-chan struct{}) {
	var wg sync.WaitGroup
	defer wg.Wait()
	spawn := func(fresh bool, done chan<- struct{}) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.cycle(ctx, gen, filter, fresh)
			if done != nil {
				done <- struct{}{}
			}
		}()
	}

	resynced := make(chan struct{}, 1)
	resyncing, pending := false, false
	spawn(false, nil)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			spawn(false, nil)
		case <-trigger:
			if resyncing {
				pending = true
				continue
			}
			resyncing = true
			spawn(true, resynced)
		case <-resynced:
			resyncing = false
			if pending {
				pending = false
				resyncing = true
				spawn(true, resynced)
			}
		}
	}
}

func (p *Poller) fetch(ctx context.Context, filter types.StatusFilter, fresh bool) (Snapshot, error) {
	if fresh {
		if source, ok := p.source.(freshSource); ok {
			return source.FetchFresh(ctx, filter)
		}
	}
	return p.source.Fetch(ctx, filter)
}

func (p *Poller) cycle(ctx context.Context, gen uint64, filter types.StatusFilter, fresh bool) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	started := time.Now()
	snap, err := p.fetch(fetchCtx, filter, fresh)
	cancel()

	p.mu.Lock()
	if !p.running || p.gen != gen {
		p.mu.Unlock()
		return
	}
	if err != nil {
		p.mu.Unlock()
		p.logger.Warn("poll failed",
			logging.F("filter", filter),
			logging.F("duration", time.Since(started)),
			logging.Err(err),
		)
		if p.onError != nil {
			p.onError(err)
		}
		return
	}
	applied := p.sink.Apply(snap)
	p.mu.Unlock()

	if !applied {
		p.logger.Debug("stale snapshot dropped", logging.F("seq", snap.Seq))
		return
	}
	p.logger.Debug("poll complete",
		logging.F("filter", filter),
		logging.F("sessions", len(snap.Sessions)),
		logging.F("seq", snap.Seq),
		logging.F("duration", time.Since(started)),
	)
	if p.onApply != nil {
		p.onApply(snap)
	}
}
