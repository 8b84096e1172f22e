package permissions

import (
	"time"

	"github.com/mj1618/appgate/internal/mainqueue"
	"github.com/mj1618/appgate/internal/platform"
	"github.com/rs/zerolog"
)

const (
	accessibilitySettingsURL   = "x-apple.systempreferences:com.apple.preference.security?Privacy_Accessibility"
	screenRecordingSettingsURL = "x-apple.systempreferences:com.apple.preference.security?Privacy_ScreenCapture"
)

// NewAccessibility returns the required Accessibility permission.
func NewAccessibility(checker platform.PermissionChecker, queue *mainqueue.Queue, interval time.Duration, log zerolog.Logger) Permission {
	cfg := probeConfig{
		kind:  KindAccessibility,
		title: "Accessibility",
		details: []string{
			"Get real-time information about the menu bar.",
			"Arrange menu bar items.",
		},
		settingsURL: accessibilitySettingsURL,
		required:    true,
	}
	if checker != nil {
		cfg.check = checker.AccessibilityGranted
		cfg.request = checker.RequestAccessibility
	}
	return newProbe(cfg, queue, interval, log)
}

// NewScreenRecording returns the optional Screen Recording permission.
func NewScreenRecording(checker platform.PermissionChecker, queue *mainqueue.Queue, interval time.Duration, log zerolog.Logger) Permission {
	cfg := probeConfig{
		kind:  KindScreenRecording,
		title: "Screen Recording",
		details: []string{
			"Edit the menu bar's appearance.",
			"Display images of individual menu bar items.",
		},
		settingsURL: screenRecordingSettingsURL,
		required:    false,
	}
	if checker != nil {
		cfg.check = checker.ScreenRecordingGranted
		cfg.request = checker.RequestScreenRecording
	}
	return newProbe(cfg, queue, interval, log)
}

// Factory builds one Permission. New kinds are added to factories; the
// aggregator itself never changes.
type Factory func(checker platform.PermissionChecker, queue *mainqueue.Queue, interval time.Duration, log zerolog.Logger) Permission

// factories is ordered; the order is the order of AllPermissions.
var factories = []Factory{
	NewAccessibility,
	NewScreenRecording,
}
