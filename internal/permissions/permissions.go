package permissions

import (
	"sync"
	"time"

	"github.com/mj1618/appgate/internal/logging"
	"github.com/mj1618/appgate/internal/mainqueue"
	"github.com/mj1618/appgate/internal/platform"
	"github.com/rs/zerolog"
)

// DefaultPollInterval is how often probes query the OS when no interval is
// configured.
const DefaultPollInterval = time.Second

// Permissions owns one probe per known permission kind and publishes the
// aggregate State.
type Permissions struct {
	queue    *mainqueue.Queue
	ownQueue bool
	log      zerolog.Logger
	all      []Permission

	mu          sync.RWMutex
	state       State
	recomputes  int
	listeners   map[int]func(State)
	nextID      int
	unsubscribe []func()
}

type options struct {
	queue      *mainqueue.Queue
	checker    platform.PermissionChecker
	checkerSet bool
	log        *zerolog.Logger
	interval   time.Duration
	factories  []Factory
}

// Option configures New.
type Option func(*options)

// WithQueue delivers probe updates and state changes on q instead of a
// private queue.
func WithQueue(q *mainqueue.Queue) Option {
	return func(o *options) { o.queue = q }
}

// WithChecker uses c for OS queries instead of the platform provider.
func WithChecker(c platform.PermissionChecker) Option {
	return func(o *options) {
		o.checker = c
		o.checkerSet = true
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = &log }
}

// WithPollInterval sets how often probes query the OS.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// withFactories replaces the set of permission kinds. Used by tests.
func withFactories(f ...Factory) Option {
	return func(o *options) { o.factories = f }
}

// New creates the aggregator, computes the initial state from each probe's
// current value, subscribes to every probe and then starts polling.
func New(opts ...Option) *Permissions {
	o := options{interval: DefaultPollInterval, factories: factories}
	for _, opt := range opts {
		opt(&o)
	}
	if o.interval <= 0 {
		o.interval = DefaultPollInterval
	}

	var log zerolog.Logger
	if o.log != nil {
		log = logging.Component(*o.log, "permissions")
	} else {
		log = logging.Component(logging.NewFromEnv(), "permissions")
	}

	if !o.checkerSet {
		provider, err := platform.NewProvider()
		if err != nil {
			log.Warn().Err(err).Msg("no platform permission checker, all permissions treated as not granted")
		} else {
			o.checker = provider.Permissions
		}
	}

	ps := &Permissions{
		queue:     o.queue,
		log:       log,
		listeners: make(map[int]func(State)),
	}
	if ps.queue == nil {
		ps.queue = mainqueue.New()
		ps.ownQueue = true
	}

	for _, f := range o.factories {
		ps.all = append(ps.all, f(o.checker, ps.queue, o.interval, log))
	}

	ps.updateState()

	for _, p := range ps.all {
		ps.unsubscribe = append(ps.unsubscribe, p.Subscribe(func(bool) {
			ps.updateState()
		}))
	}
	for _, p := range ps.all {
		p.StartCheck()
	}

	ps.log.Debug().Stringer("state", ps.State()).Msg("permissions initialized")
	return ps
}

// AllPermissions returns every tracked permission in a fixed order.
func (ps *Permissions) AllPermissions() []Permission {
	out := make([]Permission, len(ps.all))
	copy(out, ps.all)
	return out
}

// RequiredPermissions returns the permissions that gate core functionality.
func (ps *Permissions) RequiredPermissions() []Permission {
	var out []Permission
	for _, p := range ps.all {
		if p.IsRequired() {
			out = append(out, p)
		}
	}
	return out
}

// Permission returns the probe for kind, or nil if it is not tracked.
func (ps *Permissions) Permission(kind Kind) Permission {
	for _, p := range ps.all {
		if p.Kind() == kind {
			return p
		}
	}
	return nil
}

// State returns the current aggregate state.
func (ps *Permissions) State() State {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.state
}

// Subscribe registers fn to run on the main queue after every state change.
func (ps *Permissions) Subscribe(fn func(State)) (unsubscribe func()) {
	ps.mu.Lock()
	id := ps.nextID
	ps.nextID++
	ps.listeners[id] = fn
	ps.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ps.mu.Lock()
			delete(ps.listeners, id)
			ps.mu.Unlock()
		})
	}
}

// Flush waits until every probe update posted so far has been applied.
func (ps *Permissions) Flush() {
	ps.queue.Flush()
}

// StopAllChecks stops every probe.
func (ps *Permissions) StopAllChecks() {
	ps.log.Info().Msg("Stopping all permissions checks")
	for _, p := range ps.all {
		p.StopCheck()
	}
}

// Close stops all checks and releases the private queue, if any.
func (ps *Permissions) Close() {
	ps.StopAllChecks()
	for _, unsub := range ps.unsubscribe {
		unsub()
	}
	if ps.ownQueue {
		ps.queue.Close()
	}
}

// updateState recomputes the state in one pass and notifies listeners if it
// changed. After construction it only runs on the main queue.
func (ps *Permissions) updateState() {
	next := computeState(ps.all)

	ps.mu.Lock()
	ps.recomputes++
	initial := ps.recomputes == 1
	prev := ps.state
	ps.state = next
	if initial || prev == next {
		ps.mu.Unlock()
		return
	}
	listeners := make([]func(State), 0, len(ps.listeners))
	for id := 0; id < ps.nextID; id++ {
		if fn, ok := ps.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	ps.mu.Unlock()

	ps.log.Info().Stringer("from", prev).Stringer("to", next).Msg("permissions state changed")
	for _, fn := range listeners {
		fn(next)
	}
}

// recomputeCount returns how many times the state has been recomputed.
func (ps *Permissions) recomputeCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.recomputes
}
