package platform

import (
	"fmt"
	"strings"
)

// MouseButton represents a mouse button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle

	// MouseAny matches any of the 32 buttons Quartz tracks.
	MouseAny MouseButton = -1
)

// ParseMouseButton converts a string flag value to MouseButton.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(s) {
	case "left":
		return MouseLeft, nil
	case "right":
		return MouseRight, nil
	case "middle":
		return MouseMiddle, nil
	case "any", "":
		return MouseAny, nil
	default:
		return MouseLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, middle, or any)", s)
	}
}

// EventKind selects an input event type for idle-time queries.
type EventKind int

const (
	EventMouseMoved EventKind = iota
	EventScrollWheel
)

// Point is a location in global display coordinates.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// ParsePoint parses an "x,y" string into a Point.
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("invalid point %q: expected x,y", s)
	}
	var vals [2]float64
	for i, p := range parts {
		if _, err := fmt.Sscanf(strings.TrimSpace(p), "%g", &vals[i]); err != nil {
			return Point{}, fmt.Errorf("invalid point %q: %w", s, err)
		}
	}
	return Point{X: vals[0], Y: vals[1]}, nil
}
