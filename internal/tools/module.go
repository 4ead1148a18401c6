package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
)

var (
	// ErrNoClass is returned when no factory is registered for a tool's class.
	ErrNoClass = errors.New("tool class not found")

	// ErrUnavailable is returned when creating a block of an unavailable tool.
	ErrUnavailable = errors.New("tool unavailable")
)

// Tool is a configured tool.
type Tool struct {
	Name     string
	Settings config.ToolSettings
	Class    Class
	State    State
	Err      error
	Internal bool
}

// Available reports whether the tool can create blocks.
func (t *Tool) Available() bool {
	return t.State == StateAvailable
}

// Tools is the editor module owning every tool.
type Tools struct {
	cfg     *config.Config
	classes Classes
	log     *slog.Logger

	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewModule creates the module. classes resolves class names; nil means
// DefaultClasses.
func NewModule(cfg *config.Config, classes Classes, log *slog.Logger) *Tools {
	if classes == nil {
		classes = DefaultClasses()
	}
	return &Tools{
		cfg:     cfg,
		classes: classes,
		log:     logging.ForModule(log, string(module.Tools)),
		tools:   make(map[string]*Tool),
	}
}

// Name implements module.Module.
func (m *Tools) Name() module.Name {
	return module.Tools
}

// Prepare builds and prepares every tool. A tool that fails stays
// registered as unavailable. The editor cannot start without its default
// block tool.
func (m *Tools) Prepare(ctx context.Context) module.Result {
	settings := make(map[string]config.ToolSettings, len(m.cfg.Tools)+1)
	internal := map[string]bool{}
	if _, ok := m.cfg.Tools[ParagraphTool]; !ok {
		settings[ParagraphTool] = config.ToolSettings{}
		internal[ParagraphTool] = true
	}
	for name, s := range m.cfg.Tools {
		if s.Disabled {
			m.log.Debug("tool disabled", "tool", name)
			continue
		}
		settings[name] = s
	}

	names := make([]string, 0, len(settings))
	for name := range settings {
		names = append(names, name)
	}
	sort.Strings(names)

	prepared := make(map[string]*Tool, len(names)+1)
	prepared[StubTool] = &Tool{Name: StubTool, Class: Stub{}, State: StateAvailable, Internal: true}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return module.Fatal(err)
		}
		if name == StubTool {
			m.log.Warn("tool name is reserved", "tool", name)
			continue
		}
		t := m.prepareTool(ctx, name, settings[name])
		t.Internal = internal[name]
		prepared[name] = t
	}

	m.mu.Lock()
	m.tools = prepared
	m.mu.Unlock()

	if !m.Available(m.cfg.DefaultBlock) {
		return module.Fatal(fmt.Errorf("default block tool %q is not available", m.cfg.DefaultBlock))
	}
	return module.OK()
}

func (m *Tools) prepareTool(ctx context.Context, name string, s config.ToolSettings) *Tool {
	t := &Tool{Name: name, Settings: s}

	className := s.ClassName(name)
	factory, ok := m.classes[className]
	if !ok {
		t.State = StateUnavailable
		t.Err = fmt.Errorf("%w: %q", ErrNoClass, className)
		m.log.Warn("tool unavailable", "tool", name, "error", t.Err)
		return t
	}

	class, err := factory(name, s)
	if err != nil {
		t.State = StateUnavailable
		t.Err = fmt.Errorf("building tool %s: %w", name, err)
		m.log.Warn("tool unavailable", "tool", name, "error", t.Err)
		return t
	}
	t.Class = class

	if p, ok := class.(Preparer); ok {
		if err := p.Prepare(ctx, s); err != nil {
			t.State = StateUnavailable
			t.Err = fmt.Errorf("preparing tool %s: %w", name, err)
			m.log.Warn("tool unavailable", "tool", name, "error", t.Err)
			return t
		}
	}

	t.State = StateAvailable
	m.log.Debug("tool prepared", "tool", name, "class", className)
	return t
}

// Get returns the tool registered under name.
func (m *Tools) Get(name string) (*Tool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tools[name]
	return t, ok
}

// Available reports whether name is a prepared tool.
func (m *Tools) Available(name string) bool {
	t, ok := m.Get(name)
	return ok && t.Available()
}

// Names returns every registered tool name, sorted.
func (m *Tools) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.tools))
	for name := range m.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unavailable returns the names of tools that failed to prepare.
func (m *Tools) Unavailable() []string {
	var out []string
	for _, name := range m.Names() {
		if t, _ := m.Get(name); !t.Available() {
			out = append(out, name)
		}
	}
	return out
}

// StubTitle returns the title shown for a block of type typ that cannot be
// rendered by its own tool.
func (m *Tools) StubTitle(typ string) string {
	if t, ok := m.Get(typ); ok {
		if t.Class != nil {
			if title := t.Class.Toolbox().Title; title != "" {
				return title
			}
		}
		if t.Settings.Toolbox != nil && t.Settings.Toolbox.Title != "" {
			return t.Settings.Toolbox.Title
		}
	}
	if s, ok := m.cfg.Tools[typ]; ok && s.Toolbox != nil && s.Toolbox.Title != "" {
		return s.Toolbox.Title
	}
	return typ
}

// Toolbox returns the merged toolbox entry of an available tool. User
// settings override the class entry.
func (m *Tools) Toolbox(name string) (Toolbox, bool) {
	t, ok := m.Get(name)
	if !ok || !t.Available() {
		return Toolbox{}, false
	}
	tb := t.Class.Toolbox()
	if t.Settings.Toolbox != nil {
		if t.Settings.Toolbox.Title != "" {
			tb.Title = t.Settings.Toolbox.Title
		}
		if t.Settings.Toolbox.Icon != "" {
			tb.Icon = t.Settings.Toolbox.Icon
		}
	}
	return tb, true
}

// SanitizeRules returns the field rules of an available tool.
func (m *Tools) SanitizeRules(name string) map[string]any {
	t, ok := m.Get(name)
	if !ok || !t.Available() {
		return nil
	}
	return t.Class.SanitizeRules()
}

// ToolShortcuts maps available tools to their configured shortcut.
func (m *Tools) ToolShortcuts() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string)
	for name, t := range m.tools {
		if t.Available() && t.Settings.Shortcut != "" {
			out[name] = t.Settings.Shortcut
		}
	}
	return out
}

// ReadOnlyUnsupported returns the available tools that cannot render in
// read-only mode, sorted.
func (m *Tools) ReadOnlyUnsupported() []string {
	var out []string
	for _, name := range m.Names() {
		t, _ := m.Get(name)
		if t.Available() && !t.Class.ReadOnlySupported() {
			out = append(out, name)
		}
	}
	return out
}

// Create makes a block instance of an available tool.
func (m *Tools) Create(name string, data map[string]any, readOnly bool) (Instance, error) {
	t, ok := m.Get(name)
	if !ok || !t.Available() {
		return nil, fmt.Errorf("%w: %q", ErrUnavailable, name)
	}
	return t.Class.New(Params{
		Tool:     name,
		Data:     copyData(data),
		Config:   t.Settings.Config,
		ReadOnly: readOnly,
	})
}

// Destroy implements module.Destroyer by closing classes that hold
// resources.
func (m *Tools) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, t := range m.tools {
		c, ok := t.Class.(Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			m.log.Warn("closing tool failed", "tool", name, "error", err)
		}
	}
	m.tools = make(map[string]*Tool)
}
