// Package terminal feeds key presses from a tcell screen to the editor's
// shortcut target.
package terminal

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/blockedit/internal/input/key"
	"github.com/dshills/blockedit/internal/shortcut"
)

// Source pumps key events from a screen into a dispatcher.
type Source struct {
	screen tcell.Screen
	keys   *shortcut.Dispatcher

	mu     sync.Mutex
	onKey  func(key.Event)
	inited bool
}

// New creates a source for screen. The screen is initialized by Run.
func New(screen tcell.Screen, keys *shortcut.Dispatcher) *Source {
	return &Source{screen: screen, keys: keys}
}

// NewTerminal creates a source on the process terminal.
func NewTerminal(keys *shortcut.Dispatcher) (*Source, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return New(screen, keys), nil
}

// OnKey sets a callback run after each press is dispatched.
func (s *Source) OnKey(fn func(key.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onKey = fn
}

// Screen returns the underlying screen.
func (s *Source) Screen() tcell.Screen {
	return s.screen
}

// Init initializes the screen. Run calls it when needed.
func (s *Source) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inited {
		return nil
	}
	if err := s.screen.Init(); err != nil {
		return err
	}
	s.inited = true
	return nil
}

// Run dispatches key presses until ctx is done or the screen is
// finalized. The screen is left initialized; call Shutdown to restore
// the terminal.
func (s *Source) Run(ctx context.Context) error {
	if err := s.Init(); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		_ = s.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if ek, ok := ev.(*tcell.EventKey); ok {
			if kev, ok := ConvertEvent(ek); ok {
				s.keys.Dispatch(kev)
				s.mu.Lock()
				fn := s.onKey
				s.mu.Unlock()
				if fn != nil {
					fn(kev)
				}
			}
		}
	}
}

// Shutdown finalizes the screen.
func (s *Source) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inited {
		s.screen.Fini()
		s.inited = false
	}
}

// ConvertEvent converts a tcell key event. Control letters are reported
// as the letter with the Ctrl modifier.
func ConvertEvent(ev *tcell.EventKey) (key.Event, bool) {
	mods := convertMod(ev.Modifiers())
	k := ev.Key()

	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return key.Event{
			Key:       key.KeyRune,
			Rune:      'a' + rune(k-tcell.KeyCtrlA),
			Modifiers: mods.With(key.ModCtrl),
			Timestamp: ev.When(),
		}, true
	}
	if k == tcell.KeyRune {
		r := ev.Rune()
		if r == ' ' {
			return key.Event{Key: key.KeySpace, Modifiers: mods, Timestamp: ev.When()}, true
		}
		return key.Event{Key: key.KeyRune, Rune: r, Modifiers: mods, Timestamp: ev.When()}, true
	}

	special := convertKey(k)
	if special == key.KeyNone {
		return key.Event{}, false
	}
	return key.Event{Key: special, Modifiers: mods, Timestamp: ev.When()}, true
}

func convertKey(k tcell.Key) key.Key {
	switch k {
	case tcell.KeyEscape:
		return key.KeyEscape
	case tcell.KeyEnter:
		return key.KeyEnter
	case tcell.KeyTab, tcell.KeyBacktab:
		return key.KeyTab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.KeyBackspace
	case tcell.KeyDelete:
		return key.KeyDelete
	case tcell.KeyInsert:
		return key.KeyInsert
	case tcell.KeyHome:
		return key.KeyHome
	case tcell.KeyEnd:
		return key.KeyEnd
	case tcell.KeyPgUp:
		return key.KeyPageUp
	case tcell.KeyPgDn:
		return key.KeyPageDown
	case tcell.KeyUp:
		return key.KeyUp
	case tcell.KeyDown:
		return key.KeyDown
	case tcell.KeyLeft:
		return key.KeyLeft
	case tcell.KeyRight:
		return key.KeyRight
	case tcell.KeyPause:
		return key.KeyPause
	}
	if k >= tcell.KeyF1 && k <= tcell.KeyF12 {
		return key.KeyF1 + key.Key(k-tcell.KeyF1)
	}
	return key.KeyNone
}

func convertMod(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(key.ModMeta)
	}
	return mods
}
