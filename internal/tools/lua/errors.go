package lua

import "errors"

// Errors for Lua tool operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a call runs past its timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrBadScript is returned when a script does not describe a tool.
	ErrBadScript = errors.New("lua script must return a tool table")
)
