package module

import (
	"errors"
	"fmt"
)

// Severity classifies the outcome of a module preparation.
type Severity int

const (
	// SeverityNone means preparation succeeded.
	SeverityNone Severity = iota
	// SeverityRecoverable means the module is left unprepared and startup
	// continues.
	SeverityRecoverable
	// SeverityFatal aborts startup.
	SeverityFatal
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "ok"
	case SeverityRecoverable:
		return "recoverable"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Result is the outcome of Preparer.Prepare.
type Result struct {
	severity Severity
	err      error
}

// OK is a successful preparation.
func OK() Result {
	return Result{}
}

// Recoverable reports a failure that leaves the module unprepared while the
// rest of the editor keeps loading. A nil err yields OK.
func Recoverable(err error) Result {
	if err == nil {
		return OK()
	}
	return Result{severity: SeverityRecoverable, err: err}
}

// Fatal reports a failure that must abort startup. A nil err yields OK.
func Fatal(err error) Result {
	if err == nil {
		return OK()
	}
	return Result{severity: SeverityFatal, err: err}
}

// Severity returns the outcome class.
func (r Result) Severity() Severity {
	return r.severity
}

// Err returns the failure, or nil on success.
func (r Result) Err() error {
	return r.err
}

// IsOK reports whether preparation succeeded.
func (r Result) IsOK() bool {
	return r.severity == SeverityNone
}

// IsFatal reports whether the failure must abort startup.
func (r Result) IsFatal() bool {
	return r.severity == SeverityFatal
}

// ErrCritical is matched by every CriticalError.
var ErrCritical = errors.New("critical error")

// CriticalError is the error startup is rejected with when a module reports
// a Fatal result.
type CriticalError struct {
	Module Name
	Err    error
}

func (e *CriticalError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("module %s: critical error", e.Module)
	}
	return fmt.Sprintf("module %s: %v", e.Module, e.Err)
}

func (e *CriticalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches ErrCritical and the wrapped error.
func (e *CriticalError) Is(target error) bool {
	if e == nil {
		return false
	}
	if target == ErrCritical {
		return true
	}
	return errors.Is(e.Err, target)
}
