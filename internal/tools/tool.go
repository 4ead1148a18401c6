// Package tools manages the block tools of an editor.
//
// A Class is a tool implementation; the Tools module builds one Class per
// configured tool, prepares it and tracks whether it is available. Blocks
// are Instances created by an available Class.
package tools

import (
	"context"

	"github.com/dshills/blockedit/internal/config"
)

// Names of the tools every editor has.
const (
	ParagraphTool = "paragraph"
	StubTool      = "stub"
)

// Toolbox is the menu entry of a tool.
type Toolbox struct {
	Title string
	Icon  string
}

// Params are passed to Class.New.
type Params struct {
	// Tool is the name the tool is registered under.
	Tool string

	// Data is the saved data the block starts with.
	Data map[string]any

	// Config is the tool's user configuration.
	Config map[string]any

	// ReadOnly reports whether the editor is read-only.
	ReadOnly bool
}

// Class is a block tool implementation.
type Class interface {
	// Toolbox returns the tool's menu entry.
	Toolbox() Toolbox

	// SanitizeRules returns per-field sanitizer rules for saved data, or
	// nil to leave data untouched.
	SanitizeRules() map[string]any

	// ReadOnlySupported reports whether blocks can be shown read-only.
	ReadOnlySupported() bool

	// New creates a block instance.
	New(p Params) (Instance, error)
}

// Preparer is implemented by classes that need setup before use. A
// failing Prepare makes the tool unavailable.
type Preparer interface {
	Prepare(ctx context.Context, settings config.ToolSettings) error
}

// Closer is implemented by classes holding resources.
type Closer interface {
	Close() error
}

// Instance is one block's tool instance.
type Instance interface {
	// Save extracts the block's data.
	Save(ctx context.Context) (map[string]any, error)

	// Validate reports whether saved data is worth keeping.
	Validate(data map[string]any) bool
}

// Updater is implemented by instances whose data can be replaced.
type Updater interface {
	Update(data map[string]any) error
}

// Factory builds the Class for a configured tool.
type Factory func(name string, settings config.ToolSettings) (Class, error)

// Classes maps class names to factories.
type Classes map[string]Factory

// DefaultClasses returns the built-in classes.
func DefaultClasses() Classes {
	return Classes{
		ParagraphTool: func(string, config.ToolSettings) (Class, error) {
			return Paragraph{}, nil
		},
	}
}

// With returns a copy of c with f registered under name.
func (c Classes) With(name string, f Factory) Classes {
	out := make(Classes, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[name] = f
	return out
}

// copyData returns a shallow copy of data that is never nil.
func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
