package key

import (
	"fmt"
	"strings"
	"unicode"
)

// Code is a numeric key code. Letters use the code of their upper-case
// form, digits their ASCII code.
type Code uint16

// Key codes of non-character keys.
const (
	CodeNone      Code = 0
	CodeBackspace Code = 8
	CodeTab       Code = 9
	CodeEnter     Code = 13
	CodeShift     Code = 16
	CodeCtrl      Code = 17
	CodeAlt       Code = 18
	CodePause     Code = 19
	CodeCapsLock  Code = 20
	CodeEscape    Code = 27
	CodeSpace     Code = 32
	CodePageUp    Code = 33
	CodePageDown  Code = 34
	CodeEnd       Code = 35
	CodeHome      Code = 36
	CodeLeft      Code = 37
	CodeUp        Code = 38
	CodeRight     Code = 39
	CodeDown      Code = 40
	CodeInsert    Code = 45
	CodeDelete    Code = 46
	CodeMeta      Code = 91
	CodeF1        Code = 112
	CodeSlash     Code = 191
)

// punctuationCodes maps punctuation characters, shifted and unshifted, to
// the code of their physical key on a US layout.
var punctuationCodes = map[rune]Code{
	';': 186, ':': 186,
	'=': 187, '+': 187,
	',': 188, '<': 188,
	'-': 189, '_': 189,
	'.': 190, '>': 190,
	'/': 191, '?': 191,
	'`': 192, '~': 192,
	'[': 219, '{': 219,
	'\\': 220, '|': 220,
	']': 221, '}': 221,
	'\'': 222, '"': 222,
}

// namedCodes maps the upper-case names usable in shortcuts to codes.
var namedCodes = map[string]Code{
	"BACKSPACE": CodeBackspace,
	"TAB":       CodeTab,
	"ENTER":     CodeEnter,
	"RETURN":    CodeEnter,
	"PAUSE":     CodePause,
	"CAPSLOCK":  CodeCapsLock,
	"ESC":       CodeEscape,
	"ESCAPE":    CodeEscape,
	"SPACE":     CodeSpace,
	"PAGEUP":    CodePageUp,
	"PAGEDOWN":  CodePageDown,
	"END":       CodeEnd,
	"HOME":      CodeHome,
	"LEFT":      CodeLeft,
	"UP":        CodeUp,
	"RIGHT":     CodeRight,
	"DOWN":      CodeDown,
	"INSERT":    CodeInsert,
	"DELETE":    CodeDelete,
	"SLASH":     CodeSlash,
}

// CodeOf returns the key code of a special key or character.
func CodeOf(k Key, r rune) Code {
	if k == KeyRune {
		return RuneCode(r)
	}
	if k.IsFunctionKey() {
		return CodeF1 + Code(k-KeyF1)
	}
	return keyTable[k].code
}

// RuneCode returns the key code for a character, or CodeNone.
func RuneCode(r rune) Code {
	switch {
	case r == ' ':
		return CodeSpace
	case r >= '0' && r <= '9':
		return Code(r)
	case r < unicode.MaxASCII && unicode.IsLetter(r):
		return Code(unicode.ToUpper(r))
	}
	return punctuationCodes[r]
}

// CodeFromName resolves a shortcut key token such as "A", "ENTER", "F5"
// or "/". Names are case-insensitive.
func CodeFromName(name string) (Code, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "" {
		return CodeNone, false
	}
	if c, ok := namedCodes[upper]; ok {
		return c, true
	}
	if k := KeyFromName(upper); k.IsFunctionKey() {
		return CodeOf(k, 0), true
	}
	if r := []rune(upper); len(r) == 1 {
		if c := RuneCode(r[0]); c != CodeNone {
			return c, true
		}
	}
	return CodeNone, false
}

// String returns a readable name for the code.
func (c Code) String() string {
	for name, code := range namedCodes {
		if code == c && name != "RETURN" && name != "ESC" && name != "SLASH" {
			return name
		}
	}
	switch {
	case c >= CodeF1 && c < CodeF1+12:
		return fmt.Sprintf("F%d", c-CodeF1+1)
	case c >= '0' && c <= '9', c >= 'A' && c <= 'Z':
		return string(rune(c))
	case c == CodeShift:
		return "SHIFT"
	case c == CodeCtrl:
		return "CTRL"
	case c == CodeAlt:
		return "ALT"
	case c == CodeMeta:
		return "META"
	}
	for r, code := range punctuationCodes {
		if code == c && isUnshifted(r) {
			return string(r)
		}
	}
	return fmt.Sprintf("Code(%d)", uint16(c))
}

func isUnshifted(r rune) bool {
	return strings.ContainsRune(";=,-./`[\\]'", r)
}
