package config

import (
	"github.com/dshills/blockedit/internal/document"
	"github.com/dshills/blockedit/internal/events"
)

// Default values applied by Normalize.
const (
	DefaultHolder       = "editorjs"
	DefaultBlockType    = "paragraph"
	DefaultMinHeight    = 300
	DefaultLocale       = "en"
	DefaultDirection    = "ltr"
	DefaultLogLevel     = "VERBOSE"
	DefaultInvalidBlock = InvalidBlocksDrop
)

// InvalidBlockPolicy decides what a save does with blocks that fail
// validation.
type InvalidBlockPolicy string

const (
	// InvalidBlocksDrop omits invalid blocks from the output with a warning.
	InvalidBlocksDrop InvalidBlockPolicy = "drop"
	// InvalidBlocksFail makes the save fail on the first invalid block.
	InvalidBlocksFail InvalidBlockPolicy = "fail"
)

// Platform selects the physical modifier behind the CMD shortcut token.
// The zero value lets either Control or Meta stand for CMD; the named
// platforms pin it to one key.
type Platform string

const (
	PlatformAny Platform = ""
	// PlatformMac maps CMD to the Meta key only.
	PlatformMac Platform = "darwin"
	// PlatformOther maps CMD to the Control key only.
	PlatformOther Platform = "other"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformAny, PlatformMac, PlatformOther:
		return true
	}
	return false
}

// Pixels returns a pointer to n, for Config.MinHeight.
func Pixels(n int) *int {
	return &n
}

// Config is the editor configuration.
type Config struct {
	// Holder is the id of the container node.
	Holder string

	// HolderID is the deprecated spelling of Holder.
	HolderID string

	// HolderNode is a direct container reference, used instead of Holder.
	HolderNode Node

	// DefaultBlock is the tool used for new blocks.
	DefaultBlock string

	// InitialBlock is the deprecated spelling of DefaultBlock.
	InitialBlock string

	// MinHeight is the bottom zone height in pixels. Nil means
	// DefaultMinHeight; zero is kept.
	MinHeight *int

	// Placeholder is shown by the first empty default block.
	Placeholder string

	// Sanitizer is the inline HTML whitelist shared by all tools. Values are
	// bool, attribute maps or tag functions; see the sanitizer package.
	Sanitizer map[string]any

	// Tools maps tool names to their settings.
	Tools map[string]ToolSettings

	// I18n holds locale settings.
	I18n I18nSettings

	// Autofocus puts the caret into the first block after rendering.
	Autofocus bool

	// ReadOnly starts the editor in read-only mode.
	ReadOnly bool

	// OnReady is called once the editor is ready.
	OnReady func()

	// OnChange is called for every block modification while the
	// modifications observer is enabled.
	OnChange func(events.Event)

	// Data is the document rendered on start.
	Data *document.Output

	// LogLevel is one of VERBOSE, INFO, WARN or ERROR.
	LogLevel string

	// InvalidBlocks selects the save policy for blocks failing validation.
	InvalidBlocks InvalidBlockPolicy

	// Platform selects the CMD modifier mapping. Empty accepts Control
	// or Meta.
	Platform Platform
}

// ToolSettings configures one tool.
type ToolSettings struct {
	// Class names the tool implementation. Defaults to the tool name.
	Class string

	// Script is Lua source or a path to it, for scripted tools.
	Script string

	// Config is passed to the tool unchanged.
	Config map[string]any

	// Shortcut is a key combination inserting this tool, e.g. "CMD+SHIFT+P".
	Shortcut string

	// Toolbox overrides the tool's toolbox entry.
	Toolbox *Toolbox

	// Disabled removes the tool from the editor.
	Disabled bool
}

// ClassName returns the implementation name for the tool named name.
func (s ToolSettings) ClassName(name string) string {
	if s.Class != "" {
		return s.Class
	}
	return name
}

// Toolbox is a tool's menu entry.
type Toolbox struct {
	Title string
	Icon  string
}

// I18nSettings holds localization settings.
type I18nSettings struct {
	// Locale is a BCP 47 tag.
	Locale string

	// Direction is "ltr" or "rtl".
	Direction string

	// Messages maps message keys to translations.
	Messages map[string]string
}

// Node is an element-like container the editor can be mounted in.
type Node interface {
	// ID returns the node identifier, possibly empty.
	ID() string

	// IsElement reports whether the node can hold editor content.
	IsElement() bool
}

// Resolver finds nodes by id.
type Resolver interface {
	Lookup(id string) (Node, bool)
}

// BottomZone returns MinHeight, or DefaultMinHeight when unset.
func (c *Config) BottomZone() int {
	if c.MinHeight == nil {
		return DefaultMinHeight
	}
	return *c.MinHeight
}

// Clone returns a copy of c whose maps and document can be modified
// without affecting c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c

	if c.Sanitizer != nil {
		out.Sanitizer = make(map[string]any, len(c.Sanitizer))
		for k, v := range c.Sanitizer {
			out.Sanitizer[k] = v
		}
	}
	if c.Tools != nil {
		out.Tools = make(map[string]ToolSettings, len(c.Tools))
		for k, v := range c.Tools {
			out.Tools[k] = v
		}
	}
	if c.I18n.Messages != nil {
		out.I18n.Messages = make(map[string]string, len(c.I18n.Messages))
		for k, v := range c.I18n.Messages {
			out.I18n.Messages[k] = v
		}
	}
	if c.MinHeight != nil {
		out.MinHeight = Pixels(*c.MinHeight)
	}
	if c.Data != nil {
		data := *c.Data
		data.Blocks = append([]document.Block(nil), c.Data.Blocks...)
		out.Data = &data
	}
	return &out
}
