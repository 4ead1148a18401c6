// Package shortcut binds named key combinations to handlers.
//
// A combination is written as "+"-joined tokens, case-insensitive:
//
//	CMD+SHIFT+P
//
// CMD (also CONTROL, COMMAND, WINDOWS, CTRL), ALT (also OPTION) and SHIFT
// are modifiers; every other token is a key. A press matches only when the
// modifier set is exactly the one written and every key equals the pressed
// key. CMD is held when Control or Meta is down; WithPlatform pins it to
// one of them.
package shortcut

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/input/key"
)

var (
	// ErrUnknownKey is returned for a key token with no key code.
	ErrUnknownKey = errors.New("unknown key")

	// ErrNoTarget is returned when a descriptor has no target.
	ErrNoTarget = errors.New("shortcut target required")

	// ErrEmptyName is returned for an empty combination.
	ErrEmptyName = errors.New("shortcut name required")
)

// Modifier tokens.
type Modifier uint8

const (
	CMD Modifier = 1 << iota
	ALT
	SHIFT
)

var modifierAliases = map[string]Modifier{
	"CMD":     CMD,
	"CONTROL": CMD,
	"COMMAND": CMD,
	"WINDOWS": CMD,
	"CTRL":    CMD,
	"ALT":     ALT,
	"OPTION":  ALT,
	"SHIFT":   SHIFT,
}

// String returns the tokens of m joined by "+".
func (m Modifier) String() string {
	var parts []string
	if m&CMD != 0 {
		parts = append(parts, "CMD")
	}
	if m&ALT != 0 {
		parts = append(parts, "ALT")
	}
	if m&SHIFT != 0 {
		parts = append(parts, "SHIFT")
	}
	return strings.Join(parts, "+")
}

// Descriptor describes a shortcut to create.
type Descriptor struct {
	// Name is the key combination, e.g. "CMD+B".
	Name string

	// On is the target the shortcut listens on.
	On Target

	// Handler runs when the combination is pressed.
	Handler func(key.Event)
}

// Option configures a Shortcut.
type Option func(*Shortcut)

// WithPlatform pins CMD to Meta (PlatformMac) or Control (PlatformOther).
// PlatformAny keeps both.
func WithPlatform(p config.Platform) Option {
	return func(s *Shortcut) {
		s.platform = p
	}
}

// Shortcut is a live binding. It holds exactly one listener on its
// target until Remove is called.
type Shortcut struct {
	name      string
	modifiers Modifier
	keys      []key.Code
	handler   func(key.Event)
	target    Target
	platform  config.Platform

	mu     sync.Mutex
	detach func()
}

// Parse splits a combination into its modifiers and key codes.
func Parse(name string) (Modifier, []key.Code, error) {
	if strings.TrimSpace(name) == "" {
		return 0, nil, ErrEmptyName
	}

	var mods Modifier
	var keys []key.Code
	for _, tok := range strings.Split(name, "+") {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if m, ok := modifierAliases[tok]; ok {
			mods |= m
			continue
		}
		code, ok := key.CodeFromName(tok)
		if !ok {
			return 0, nil, fmt.Errorf("%w: %q in %q", ErrUnknownKey, tok, name)
		}
		keys = append(keys, code)
	}
	return mods, keys, nil
}

// Canonical returns the spelling-independent form of a combination:
// "cmd+b", "CONTROL + B" and "B+CMD" all give "CMD+B".
func Canonical(name string) (string, error) {
	mods, keys, err := Parse(name)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(keys)+1)
	if mods != 0 {
		parts = append(parts, mods.String())
	}
	for _, k := range keys {
		parts = append(parts, k.String())
	}
	return strings.Join(parts, "+"), nil
}

// New parses d.Name and attaches the shortcut to d.On.
func New(d Descriptor, opts ...Option) (*Shortcut, error) {
	if d.On == nil {
		return nil, ErrNoTarget
	}
	mods, keys, err := Parse(d.Name)
	if err != nil {
		return nil, err
	}

	s := &Shortcut{
		name:      d.Name,
		modifiers: mods,
		keys:      keys,
		handler:   d.Handler,
		target:    d.On,
		platform:  config.PlatformAny,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.detach = d.On.AddKeyListener(s.execute)
	return s, nil
}

// Name returns the combination the shortcut was created with.
func (s *Shortcut) Name() string {
	return s.name
}

// Target returns the target the shortcut listens on.
func (s *Shortcut) Target() Target {
	return s.target
}

// Modifiers returns the required modifier set.
func (s *Shortcut) Modifiers() Modifier {
	return s.modifiers
}

// Keys returns the required key codes.
func (s *Shortcut) Keys() []key.Code {
	return append([]key.Code(nil), s.keys...)
}

// Matches reports whether ev triggers the shortcut.
func (s *Shortcut) Matches(ev key.Event) bool {
	pressed := map[Modifier]bool{
		CMD:   s.command(ev.Modifiers),
		ALT:   ev.Modifiers.Has(key.ModAlt),
		SHIFT: ev.Modifiers.Has(key.ModShift),
	}
	for m, down := range pressed {
		if (s.modifiers&m != 0) != down {
			return false
		}
	}

	code := ev.Code()
	for _, k := range s.keys {
		if k != code {
			return false
		}
	}
	return true
}

func (s *Shortcut) command(m key.Modifier) bool {
	switch s.platform {
	case config.PlatformMac:
		return m.Has(key.ModMeta)
	case config.PlatformOther:
		return m.Has(key.ModCtrl)
	}
	return m.Command()
}

func (s *Shortcut) execute(ev key.Event) {
	if !s.Matches(ev) || s.handler == nil {
		return
	}
	s.handler(ev)
}

// Remove detaches the listener. Further calls do nothing.
func (s *Shortcut) Remove() {
	s.mu.Lock()
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()

	if detach != nil {
		detach()
	}
}
