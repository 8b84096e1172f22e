package platform

// PermissionChecker queries and requests macOS privacy permissions.
// Query methods must be fast and non-blocking.
type PermissionChecker interface {
	// AccessibilityGranted reports whether the process is a trusted
	// accessibility client.
	AccessibilityGranted() (bool, error)

	// RequestAccessibility shows the system accessibility prompt.
	RequestAccessibility() error

	// ScreenRecordingGranted reports whether the process may capture the screen.
	ScreenRecordingGranted() (bool, error)

	// RequestScreenRecording shows the system screen recording prompt.
	RequestScreenRecording() error
}

// CursorController hides and shows the system cursor. Calls map one-to-one
// onto the OS; callers are responsible for balancing them.
type CursorController interface {
	HideCursor() error
	ShowCursor() error
}

// Mouse reads and moves the pointer.
type Mouse interface {
	// Location returns the cursor position in global display coordinates,
	// origin at the top left of the main display.
	Location() (Point, error)

	// Warp moves the cursor without generating mouse events.
	Warp(p Point) error

	// Associate connects or disconnects mouse movement and cursor position.
	Associate(connected bool) error

	// ButtonPressed reports whether the given button is down. MouseAny
	// checks every button.
	ButtonPressed(button MouseButton) bool

	// SecondsSince returns the seconds elapsed since the last event of kind.
	SecondsSince(kind EventKind) float64
}

// SettingsOpener opens a System Settings pane by URL.
type SettingsOpener interface {
	OpenSettings(url string) error
}
