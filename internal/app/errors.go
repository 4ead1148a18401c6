package app

import (
	"errors"
	"fmt"

	"github.com/dshills/blockedit/internal/module"
)

// Editor errors.
var (
	// ErrDestroyed is returned by every call on a destroyed editor.
	ErrDestroyed = errors.New("editor destroyed")

	// ErrReadOnlySave is returned by Save while the editor is read-only.
	ErrReadOnlySave = errors.New("Editor's content can not be saved in read-only mode")

	// ErrModuleUnavailable indicates a module the call needs was not
	// constructed or failed to prepare.
	ErrModuleUnavailable = errors.New("module not available")
)

// OperationError is the failure of an Editor API call: Op is "save",
// "render", "clear" or "focus".
type OperationError struct {
	Op      string
	Context string
	Err     error
}

func NewOperationError(op string, err error) *OperationError {
	return &OperationError{Op: op, Err: err}
}

// WithContext sets a note shown next to Op. A nil receiver stays nil.
func (e *OperationError) WithContext(ctx string) *OperationError {
	if e == nil {
		return nil
	}
	e.Context = ctx
	return e
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Context != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Context)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ModuleError is a non-fatal failure of one module during startup: a
// constructor that failed, or a preparation that was recoverable.
type ModuleError struct {
	Module module.Name
	Stage  string // "construct" or "prepare"
	Err    error
}

func (e *ModuleError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Module, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Module, e.Stage)
}

func (e *ModuleError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InitError rejects startup before any module was prepared.
type InitError struct {
	Stage string
	Err   error
}

func (e *InitError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("init %s: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RecoveredPanicError carries a panic raised by a module. Stack is
// logged at debug level and left out of Error.
type RecoveredPanicError struct {
	Value any
	Stack string
}

func NewRecoveredPanicError(value any, stack string) *RecoveredPanicError {
	return &RecoveredPanicError{Value: value, Stack: stack}
}

func (e *RecoveredPanicError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorList gathers the module failures startup survived. It is filled
// by the bootstrap goroutine only.
type ErrorList struct {
	errors []error
}

// Add appends err unless it is nil.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.errors = append(e.errors, err)
	}
}

func (e *ErrorList) Len() int {
	if e == nil {
		return 0
	}
	return len(e.errors)
}

// Errors returns a copy of the collected errors.
func (e *ErrorList) Errors() []error {
	if e == nil || len(e.errors) == 0 {
		return nil
	}
	out := make([]error, len(e.errors))
	copy(out, e.errors)
	return out
}

// Error reports the first failure and how many followed it.
func (e *ErrorList) Error() string {
	switch e.Len() {
	case 0:
		return ""
	case 1:
		return e.errors[0].Error()
	}
	return fmt.Sprintf("%v (and %d more)", e.errors[0], len(e.errors)-1)
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e *ErrorList) Unwrap() []error {
	return e.Errors()
}
