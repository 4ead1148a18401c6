// Package errdefs defines the error kinds shared across editor packages
// that cannot import each other.
package errdefs

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every ConfigurationError.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a configuration that can never work.
// It is raised before any module runs and is never retried.
type ConfigurationError struct {
	Field   string // offending field, e.g. "holder" or "sanitizer.a"
	Message string
	Err     error
}

// NewConfigurationError creates a ConfigurationError for field.
func NewConfigurationError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	msg := "configuration"
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches ErrConfiguration and the wrapped error.
func (e *ConfigurationError) Is(target error) bool {
	if e == nil {
		return false
	}
	if target == ErrConfiguration {
		return true
	}
	return errors.Is(e.Err, target)
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
