//go:build darwin && cgo

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework CoreGraphics -framework Foundation
#include <ApplicationServices/ApplicationServices.h>
#include <CoreGraphics/CoreGraphics.h>

// prompt=0 only checks; prompt=1 also shows the system dialog when untrusted.
static int ax_trusted(int prompt) {
    const void *keys[] = { kAXTrustedCheckOptionPrompt };
    const void *values[] = { prompt ? kCFBooleanTrue : kCFBooleanFalse };
    CFDictionaryRef options = CFDictionaryCreate(kCFAllocatorDefault,
        keys, values, 1,
        &kCFTypeDictionaryKeyCallBacks,
        &kCFTypeDictionaryValueCallBacks);
    if (!options) return -1;
    Boolean trusted = AXIsProcessTrustedWithOptions(options);
    CFRelease(options);
    return trusted ? 1 : 0;
}

static int screen_capture_preflight() {
    return CGPreflightScreenCaptureAccess() ? 1 : 0;
}

static int screen_capture_request() {
    return CGRequestScreenCaptureAccess() ? 1 : 0;
}
*/
import "C"
import "fmt"

// PermissionChecker implements platform.PermissionChecker with AX and
// CoreGraphics preflight calls.
type PermissionChecker struct{}

// NewPermissionChecker returns a new PermissionChecker.
func NewPermissionChecker() *PermissionChecker {
	return &PermissionChecker{}
}

func (PermissionChecker) AccessibilityGranted() (bool, error) {
	switch C.ax_trusted(0) {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("AXIsProcessTrustedWithOptions: could not build options dictionary")
	}
}

func (PermissionChecker) RequestAccessibility() error {
	if C.ax_trusted(1) < 0 {
		return fmt.Errorf("AXIsProcessTrustedWithOptions: could not build options dictionary")
	}
	return nil
}

func (PermissionChecker) ScreenRecordingGranted() (bool, error) {
	return C.screen_capture_preflight() == 1, nil
}

// RequestScreenRecording shows the system prompt. macOS only applies a new
// grant after the process restarts.
func (PermissionChecker) RequestScreenRecording() error {
	C.screen_capture_request()
	return nil
}
