package key

import "strings"

// Modifier is the set of modifier keys held during a press.
type Modifier uint8

const (
	ModNone Modifier = 0

	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	// ModMeta is Cmd on macOS and the Windows key elsewhere.
	ModMeta
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "Ctrl"},
	{ModAlt, "Alt"},
	{ModShift, "Shift"},
	{ModMeta, "Meta"},
}

// Has reports whether every modifier in mod is held.
func (m Modifier) Has(mod Modifier) bool {
	return mod != ModNone && m&mod == mod
}

// With adds mod to the set.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without removes mod from the set.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// Command reports whether a command key, Ctrl or Meta, is held.
func (m Modifier) Command() bool {
	return m.Has(ModCtrl) || m.Has(ModMeta)
}

// String joins the held modifiers with "+", e.g. "Ctrl+Shift".
func (m Modifier) String() string {
	var parts []string
	for _, n := range modifierNames {
		if m.Has(n.mod) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "+")
}
