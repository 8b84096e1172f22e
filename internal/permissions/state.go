package permissions

import "fmt"

// State is the aggregate readiness of all tracked permissions.
type State int

const (
	// StateMissing means at least one required permission is not granted.
	StateMissing State = iota
	// StateHasRequired means every required permission is granted but at
	// least one optional one is not.
	StateHasRequired
	// StateHasAll means every tracked permission is granted.
	StateHasAll
)

func (s State) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateHasRequired:
		return "hasRequired"
	case StateHasAll:
		return "hasAll"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText lets YAML and JSON encoders print the state by name.
func (s State) MarshalText() ([]byte, error) {
	switch s {
	case StateMissing, StateHasRequired, StateHasAll:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("invalid permissions state %d", int(s))
	}
}

// ParseState parses a state name as printed by String.
func ParseState(name string) (State, error) {
	var s State
	err := s.UnmarshalText([]byte(name))
	return s, err
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "missing":
		*s = StateMissing
	case "hasRequired":
		*s = StateHasRequired
	case "hasAll":
		*s = StateHasAll
	default:
		return fmt.Errorf("invalid permissions state %q", b)
	}
	return nil
}

// Ready reports whether core functionality may run.
func (s State) Ready() bool {
	return s == StateHasRequired || s == StateHasAll
}

// computeState applies the partition rule: all granted is HasAll, else all
// required granted is HasRequired, else Missing.
func computeState(perms []Permission) State {
	all, required := true, true
	for _, p := range perms {
		if p.HasPermission() {
			continue
		}
		all = false
		if p.IsRequired() {
			required = false
		}
	}
	switch {
	case all:
		return StateHasAll
	case required:
		return StateHasRequired
	default:
		return StateMissing
	}
}
