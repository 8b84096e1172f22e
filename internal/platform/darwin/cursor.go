//go:build darwin && cgo

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework ApplicationServices
#include <CoreGraphics/CoreGraphics.h>

static int cg_hide_cursor() {
    return (int)CGDisplayHideCursor(CGMainDisplayID());
}

static int cg_show_cursor() {
    return (int)CGDisplayShowCursor(CGMainDisplayID());
}

static int cg_warp_cursor(double x, double y) {
    return (int)CGWarpMouseCursorPosition(CGPointMake(x, y));
}

static int cg_associate(int connected) {
    return (int)CGAssociateMouseAndMouseCursorPosition(connected ? 1 : 0);
}

// Returns 0 on success and fills x/y; -1 if no event could be created.
static int cg_location(double *x, double *y) {
    CGEventRef event = CGEventCreate(NULL);
    if (!event) return -1;
    CGPoint p = CGEventGetLocation(event);
    CFRelease(event);
    *x = p.x;
    *y = p.y;
    return 0;
}

static int cg_button_state(int button) {
    return CGEventSourceButtonState(kCGEventSourceStateCombinedSessionState, (CGMouseButton)button) ? 1 : 0;
}

static double cg_seconds_since(int kind) {
    CGEventType type = kind == 1 ? kCGEventScrollWheel : kCGEventMouseMoved;
    return CGEventSourceSecondsSinceLastEventType(kCGEventSourceStateCombinedSessionState, type);
}
*/
import "C"

import (
	"fmt"

	"github.com/mj1618/appgate/internal/platform"
)

// CursorController implements platform.CursorController for the main display.
type CursorController struct{}

// NewCursorController returns a new CursorController.
func NewCursorController() *CursorController {
	return &CursorController{}
}

func (CursorController) HideCursor() error {
	if rc := CGError(C.cg_hide_cursor()); rc != CGSuccess {
		return fmt.Errorf("CGDisplayHideCursor failed with error %s", rc)
	}
	return nil
}

func (CursorController) ShowCursor() error {
	if rc := CGError(C.cg_show_cursor()); rc != CGSuccess {
		return fmt.Errorf("CGDisplayShowCursor failed with error %s", rc)
	}
	return nil
}

// Mouse implements platform.Mouse.
type Mouse struct{}

// NewMouse returns a new Mouse.
func NewMouse() *Mouse {
	return &Mouse{}
}

func (Mouse) Location() (platform.Point, error) {
	var x, y C.double
	if C.cg_location(&x, &y) != 0 {
		return platform.Point{}, fmt.Errorf("CGEventCreate failed")
	}
	return platform.Point{X: float64(x), Y: float64(y)}, nil
}

func (Mouse) Warp(p platform.Point) error {
	if rc := CGError(C.cg_warp_cursor(C.double(p.X), C.double(p.Y))); rc != CGSuccess {
		return fmt.Errorf("CGWarpMouseCursorPosition failed with error %s", rc)
	}
	return nil
}

func (Mouse) Associate(connected bool) error {
	c := C.int(0)
	if connected {
		c = 1
	}
	if rc := CGError(C.cg_associate(c)); rc != CGSuccess {
		return fmt.Errorf("CGAssociateMouseAndMouseCursorPosition failed with error %s", rc)
	}
	return nil
}

func (Mouse) ButtonPressed(button platform.MouseButton) bool {
	if button != platform.MouseAny {
		return C.cg_button_state(C.int(button)) == 1
	}
	for n := 0; n < 32; n++ {
		if C.cg_button_state(C.int(n)) == 1 {
			return true
		}
	}
	return false
}

func (Mouse) SecondsSince(kind platform.EventKind) float64 {
	k := C.int(0)
	if kind == platform.EventScrollWheel {
		k = 1
	}
	return float64(C.cg_seconds_since(k))
}
