package manager

// State is the lifecycle state of a manager
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateApplying
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateApplying:
		return "applying"
	default:
		return "unknown"
	}
}
