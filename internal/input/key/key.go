package key

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies a non-character key. Characters use KeyRune with the
// character in Event.Rune.
type Key uint16

const (
	KeyNone Key = iota
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeySpace
	KeyPause
	KeyCapsLock
	KeyRune
)

// keyTable holds the display name and key code of each special key.
// Aliases are extra lower-case names accepted by KeyFromName.
var keyTable = map[Key]struct {
	name    string
	code    Code
	aliases []string
}{
	KeyEscape:    {"Escape", CodeEscape, []string{"esc"}},
	KeyEnter:     {"Enter", CodeEnter, []string{"return"}},
	KeyTab:       {"Tab", CodeTab, nil},
	KeyBackspace: {"Backspace", CodeBackspace, nil},
	KeyDelete:    {"Delete", CodeDelete, []string{"del"}},
	KeyInsert:    {"Insert", CodeInsert, nil},
	KeyHome:      {"Home", CodeHome, nil},
	KeyEnd:       {"End", CodeEnd, nil},
	KeyPageUp:    {"PageUp", CodePageUp, nil},
	KeyPageDown:  {"PageDown", CodePageDown, nil},
	KeyUp:        {"Up", CodeUp, nil},
	KeyDown:      {"Down", CodeDown, nil},
	KeyLeft:      {"Left", CodeLeft, nil},
	KeyRight:     {"Right", CodeRight, nil},
	KeySpace:     {"Space", CodeSpace, nil},
	KeyPause:     {"Pause", CodePause, nil},
	KeyCapsLock:  {"CapsLock", CodeCapsLock, nil},
}

var keysByName = func() map[string]Key {
	m := make(map[string]Key, len(keyTable)*2)
	for k, info := range keyTable {
		m[strings.ToLower(info.name)] = k
		for _, a := range info.aliases {
			m[a] = k
		}
	}
	return m
}()

func (k Key) String() string {
	switch {
	case k.IsFunctionKey():
		return fmt.Sprintf("F%d", k-KeyF1+1)
	case k == KeyNone:
		return "None"
	case k == KeyRune:
		return "Rune"
	}
	if info, ok := keyTable[k]; ok {
		return info.name
	}
	return fmt.Sprintf("Key(%d)", k)
}

// IsFunctionKey reports whether k is one of F1 to F12.
func (k Key) IsFunctionKey() bool {
	return k >= KeyF1 && k <= KeyF12
}

// KeyFromName resolves a key name such as "Enter", "esc" or "F5",
// ignoring case. Unknown names give KeyNone.
func KeyFromName(name string) Key {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, ok := keysByName[name]; ok {
		return k
	}
	if rest, ok := strings.CutPrefix(name, "f"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 12 && strconv.Itoa(n) == rest {
			return KeyF1 + Key(n-1)
		}
	}
	return KeyNone
}
