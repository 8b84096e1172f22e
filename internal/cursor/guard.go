// Package cursor arbitrates cursor visibility between independent callers
// and wraps the mouse helpers built on it.
package cursor

import (
	"sync"

	"github.com/mj1618/appgate/internal/logging"
	"github.com/mj1618/appgate/internal/platform"
	"github.com/rs/zerolog"
)

// Guard reference-counts hide requests for the system cursor. The cursor is
// hidden exactly while the count is above zero.
type Guard struct {
	mu    sync.Mutex
	count int
	ctrl  platform.CursorController
	log   zerolog.Logger
}

// NewGuard returns a Guard driving ctrl.
func NewGuard(ctrl platform.CursorController, log zerolog.Logger) *Guard {
	return &Guard{
		ctrl: ctrl,
		log:  logging.Component(log, "cursor"),
	}
}

// Acquire hides the cursor, or adds a nested hide if it is already hidden.
// If the OS call fails the count is reset to zero. It returns the count
// after the call, so zero means the hide failed.
func (g *Guard) Acquire() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.count++
	if g.count != 1 {
		return g.count
	}
	if err := g.hide(); err != nil {
		g.log.Error().Err(err).Msg("hide cursor failed")
		g.count = 0
	}
	return g.count
}

// Release undoes one Acquire and shows the cursor once the count reaches
// zero. Unbalanced calls are ignored. A failed show is not rolled back, so
// a later Release cannot show the cursor twice. It returns the count after
// the call.
func (g *Guard) Release() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.count == 0 {
		return 0
	}
	g.count--
	if g.count != 0 {
		return g.count
	}
	if err := g.show(); err != nil {
		g.log.Error().Err(err).Msg("show cursor failed")
	}
	return 0
}

// ReleaseAll drops every outstanding hide and shows the cursor if it was
// hidden. It returns how many hides were dropped.
func (g *Guard) ReleaseAll() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.count
	if n == 0 {
		return 0
	}
	g.count = 0
	if err := g.show(); err != nil {
		g.log.Error().Err(err).Msg("show cursor failed")
	}
	return n
}

// Count returns the number of outstanding hides.
func (g *Guard) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count
}

// Hidden reports whether the guard currently holds the cursor hidden.
func (g *Guard) Hidden() bool {
	return g.Count() > 0
}

func (g *Guard) hide() error {
	if g.ctrl == nil {
		return platform.ErrUnsupported
	}
	return g.ctrl.HideCursor()
}

func (g *Guard) show() error {
	if g.ctrl == nil {
		return platform.ErrUnsupported
	}
	return g.ctrl.ShowCursor()
}

var (
	defaultMu    sync.RWMutex
	defaultGuard = NewGuard(nil, zerolog.Nop())
)

// SetDefault installs the process-wide guard used by Hide and Show.
func SetDefault(g *Guard) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultGuard = g
}

// Default returns the process-wide guard.
func Default() *Guard {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultGuard
}

// Hide acquires the process-wide guard.
func Hide() { Default().Acquire() }

// Show releases the process-wide guard.
func Show() { Default().Release() }
