package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBlock is returned by Save under the fail policy when a block
	// does not validate.
	ErrInvalidBlock = errors.New("block data is invalid")

	// ErrMissingModule is returned when a collaborator module is absent.
	ErrMissingModule = errors.New("required module missing")
)

// RenderError reports a block that could not be inserted.
type RenderError struct {
	Index int            // Position in the rendered document
	Type  string         // Block type
	Data  map[string]any // Block data
	Err   error          // Underlying error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering block %d (%s): %v", e.Index, e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// InvalidBlockError identifies the block rejected under the fail policy.
type InvalidBlockError struct {
	Index int
	Tool  string
}

func (e *InvalidBlockError) Error() string {
	return fmt.Sprintf("block %d (%s): %v", e.Index, e.Tool, ErrInvalidBlock)
}

// Is reports whether target is ErrInvalidBlock.
func (e *InvalidBlockError) Is(target error) bool {
	return target == ErrInvalidBlock
}
