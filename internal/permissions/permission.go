// Package permissions tracks the macOS privacy permissions appgate depends on
// and folds them into a single readiness state.
package permissions

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mj1618/appgate/internal/mainqueue"
	"github.com/rs/zerolog"
)

// Kind identifies a permission.
type Kind string

const (
	KindAccessibility   Kind = "accessibility"
	KindScreenRecording Kind = "screen-recording"
)

// Kinds lists every known kind in display order.
var Kinds = []Kind{KindAccessibility, KindScreenRecording}

// ParseKind converts a flag or tool argument to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accessibility", "ax":
		return KindAccessibility, nil
	case "screen-recording", "screenrecording", "screen_recording", "screen":
		return KindScreenRecording, nil
	default:
		return "", fmt.Errorf("unknown permission: %q (expected accessibility or screen-recording)", s)
	}
}

// Permission is a probe for one OS capability grant.
type Permission interface {
	Kind() Kind
	Title() string
	Details() []string
	SettingsURL() string

	// IsRequired reports whether core functionality is blocked without the
	// grant. Fixed at construction.
	IsRequired() bool

	// HasPermission returns the last value published on the main queue.
	HasPermission() bool

	// Check queries the OS now, posts the result to the main queue and
	// returns it.
	Check() bool

	// Request asks the OS to prompt the user. The outcome arrives through
	// polling like any other change.
	Request()

	// Subscribe registers fn to run on the main queue whenever the
	// published value changes.
	Subscribe(fn func(granted bool)) (unsubscribe func())

	// StartCheck begins background polling. No-op if running or stopped.
	StartCheck()

	// StopCheck ends background polling and publishing. Idempotent.
	StopCheck()
}

// probe holds the state shared by every Permission implementation.
type probe struct {
	kind        Kind
	title       string
	details     []string
	settingsURL string
	required    bool

	check    func() (bool, error)
	request  func() error
	queue    *mainqueue.Queue
	interval time.Duration
	log      zerolog.Logger

	mu        sync.Mutex
	granted   bool
	listeners map[int]func(bool)
	nextID    int
	running   bool
	stopped   bool
	stop      chan struct{}
}

type probeConfig struct {
	kind        Kind
	title       string
	details     []string
	settingsURL string
	required    bool
	check       func() (bool, error)
	request     func() error
}

func newProbe(cfg probeConfig, queue *mainqueue.Queue, interval time.Duration, log zerolog.Logger) *probe {
	p := &probe{
		kind:        cfg.kind,
		title:       cfg.title,
		details:     cfg.details,
		settingsURL: cfg.settingsURL,
		required:    cfg.required,
		check:       cfg.check,
		request:     cfg.request,
		queue:       queue,
		interval:    interval,
		log:         log.With().Str("permission", string(cfg.kind)).Logger(),
		listeners:   make(map[int]func(bool)),
		stop:        make(chan struct{}),
	}
	// Best-known value at construction; no listeners exist yet.
	p.granted = p.query()
	return p
}

func (p *probe) Kind() Kind          { return p.kind }
func (p *probe) Title() string       { return p.title }
func (p *probe) Details() []string   { return p.details }
func (p *probe) SettingsURL() string { return p.settingsURL }
func (p *probe) IsRequired() bool    { return p.required }

func (p *probe) HasPermission() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.granted
}

// query asks the OS. Errors count as not granted.
func (p *probe) query() bool {
	if p.check == nil {
		return false
	}
	granted, err := p.check()
	if err != nil {
		p.log.Warn().Err(err).Msg("permission check failed, treating as not granted")
		return false
	}
	return granted
}

func (p *probe) Check() bool {
	granted := p.query()
	p.publish(granted)
	return granted
}

func (p *probe) Request() {
	if p.request == nil {
		p.log.Debug().Msg("permission has no request prompt")
		return
	}
	p.log.Info().Msg("requesting permission")
	if err := p.request(); err != nil {
		p.log.Error().Err(err).Msg("permission request failed")
	}
}

func (p *probe) Subscribe(fn func(bool)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

// publish posts a new value to the main queue.
func (p *probe) publish(granted bool) {
	p.queue.Post(func() { p.set(granted) })
}

// set runs on the main queue. It updates the value and notifies listeners
// only on an actual change.
func (p *probe) set(granted bool) {
	p.mu.Lock()
	if p.stopped || p.granted == granted {
		p.mu.Unlock()
		return
	}
	p.granted = granted
	listeners := make([]func(bool), 0, len(p.listeners))
	for id := 0; id < p.nextID; id++ {
		if fn, ok := p.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	p.mu.Unlock()

	p.log.Debug().Bool("granted", granted).Msg("permission changed")
	for _, fn := range listeners {
		fn(granted)
	}
}

func (p *probe) StartCheck() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running || p.stopped {
		return
	}
	p.running = true
	go p.poll()
}

func (p *probe) poll() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.Check()
		}
	}
}

func (p *probe) StopCheck() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	p.running = false
	close(p.stop)
	p.log.Debug().Msg("stopped permission check")
}
