package tools

// State represents the lifecycle state of a tool.
type State int

// Tool states.
const (
	// StateUnprepared - Tool is registered but not prepared yet.
	StateUnprepared State = iota

	// StateAvailable - Tool is prepared and can create blocks.
	StateAvailable

	// StateUnavailable - Tool has no class or failed to prepare.
	StateUnavailable
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnprepared:
		return "unprepared"
	case StateAvailable:
		return "available"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}
