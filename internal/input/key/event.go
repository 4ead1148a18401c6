package key

import (
	"strings"
	"time"
)

// Event is a single key press.
type Event struct {
	Key       Key
	Rune      rune // set when Key is KeyRune
	Modifiers Modifier
	Timestamp time.Time
}

// NewRuneEvent returns a press of the character r.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods, Timestamp: time.Now()}
}

// NewSpecialEvent returns a press of a non-character key.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods, Timestamp: time.Now()}
}

// Code returns the key code shortcuts compare against.
func (e Event) Code() Code {
	return CodeOf(e.Key, e.Rune)
}

// String renders the press as "Ctrl+Shift+s".
func (e Event) String() string {
	name := e.Key.String()
	switch {
	case e.Key == KeyRune && e.Rune == ' ':
		name = "Space"
	case e.Key == KeyRune:
		name = string(e.Rune)
	}
	if mods := e.Modifiers.String(); mods != "" {
		return strings.Join([]string{mods, name}, "+")
	}
	return name
}
