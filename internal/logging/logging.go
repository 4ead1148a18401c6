// Package logging configures the structured logger shared by the editor
// modules.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level names accepted in configuration files. VERBOSE is the most chatty
// level and the default.
const (
	LevelVerbose = "VERBOSE"
	LevelInfo    = "INFO"
	LevelWarn    = "WARN"
	LevelError   = "ERROR"
)

// ParseLevel maps a configuration level name to a slog level.
// Unknown names fall back to debug, matching the VERBOSE default.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn, "WARNING":
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// New creates a text logger writing to w (stderr when nil).
// The "error" key is standardized to "err".
func New(level slog.Level, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ForModule returns a child logger tagged with the module name.
func ForModule(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = NewNop()
	}
	return l.With("module", name)
}
