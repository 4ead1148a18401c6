// Package key defines keyboard events as seen by the shortcut dispatcher.
//
//   - Key: identifies a special key, or KeyRune for characters
//   - Modifier: the Shift, Ctrl, Alt and Meta modifier set
//   - Code: the numeric key code shortcuts compare against
//   - Event: a single key press with its modifiers
//
// Key codes follow the browser keyCode values, so a shortcut written as
// "CMD+SHIFT+/" means the same thing whichever event source produced the
// press.
package key
