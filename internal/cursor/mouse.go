package cursor

import (
	"time"

	"github.com/mj1618/appgate/internal/logging"
	"github.com/mj1618/appgate/internal/platform"
	"github.com/rs/zerolog"
)

// Mouse wraps platform.Mouse. OS failures are logged and never returned,
// matching the guard.
type Mouse struct {
	m   platform.Mouse
	log zerolog.Logger
}

// NewMouse returns helpers backed by m.
func NewMouse(m platform.Mouse, log zerolog.Logger) *Mouse {
	return &Mouse{m: m, log: logging.Component(log, "cursor")}
}

// Location returns the cursor position, or false if it cannot be read.
func (h *Mouse) Location() (platform.Point, bool) {
	if h.m == nil {
		return platform.Point{}, false
	}
	p, err := h.m.Location()
	if err != nil {
		h.log.Error().Err(err).Msg("read cursor location failed")
		return platform.Point{}, false
	}
	return p, true
}

// Warp moves the cursor to p without generating events.
func (h *Mouse) Warp(p platform.Point) {
	if h.m == nil {
		return
	}
	if err := h.m.Warp(p); err != nil {
		h.log.Error().Err(err).Float64("x", p.X).Float64("y", p.Y).Msg("warp cursor failed")
	}
}

// Associate connects or disconnects the mouse and cursor positions.
func (h *Mouse) Associate(connected bool) {
	if h.m == nil {
		return
	}
	if err := h.m.Associate(connected); err != nil {
		h.log.Error().Err(err).Bool("connected", connected).Msg("associate mouse and cursor failed")
	}
}

// ButtonPressed reports whether button is down. MouseAny checks all buttons.
func (h *Mouse) ButtonPressed(button platform.MouseButton) bool {
	if h.m == nil {
		return false
	}
	return h.m.ButtonPressed(button)
}

// LastMovementWithin reports whether the mouse moved within d.
func (h *Mouse) LastMovementWithin(d time.Duration) bool {
	return h.within(platform.EventMouseMoved, d)
}

// LastScrollWithin reports whether the scroll wheel moved within d.
func (h *Mouse) LastScrollWithin(d time.Duration) bool {
	return h.within(platform.EventScrollWheel, d)
}

func (h *Mouse) within(kind platform.EventKind, d time.Duration) bool {
	if h.m == nil {
		return false
	}
	elapsed := time.Duration(h.m.SecondsSince(kind) * float64(time.Second))
	return elapsed <= d
}
