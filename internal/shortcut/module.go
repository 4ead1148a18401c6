package shortcut

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/input/key"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
)

// ErrDuplicate is returned when a combination is already bound on a target.
var ErrDuplicate = errors.New("shortcut already registered")

// ToolShortcuts lists the combinations that insert a tool's block.
type ToolShortcuts interface {
	ToolShortcuts() map[string]string
}

// KeyTarget exposes the editor's key event target.
type KeyTarget interface {
	KeyTarget() Target
}

// ToolInserter inserts a new block of a tool.
type ToolInserter interface {
	InsertTool(tool string) error
}

// Shortcuts is the editor module keeping every live shortcut. A
// combination can be bound at most once per target, however it is
// spelled. Targets must be comparable.
type Shortcuts struct {
	platform config.Platform
	log      *slog.Logger

	mu       sync.Mutex
	registry map[Target]map[string]*Shortcut

	tools    ToolShortcuts
	target   KeyTarget
	inserter ToolInserter
}

// NewModule creates the module.
func NewModule(platform config.Platform, log *slog.Logger) *Shortcuts {
	return &Shortcuts{
		platform: platform,
		log:      logging.ForModule(log, string(module.Shortcuts)),
		registry: make(map[Target]map[string]*Shortcut),
	}
}

// Name implements module.Module.
func (m *Shortcuts) Name() module.Name {
	return module.Shortcuts
}

// Wire implements module.Wirer.
func (m *Shortcuts) Wire(s module.Siblings) {
	m.tools, _ = module.Lookup[ToolShortcuts](s, module.Tools)
	m.target, _ = module.Lookup[KeyTarget](s, module.UI)
	m.inserter, _ = module.Lookup[ToolInserter](s, module.BlockManager)
}

// Prepare binds the shortcuts configured for tools.
func (m *Shortcuts) Prepare(ctx context.Context) module.Result {
	if m.tools == nil || m.target == nil || m.inserter == nil {
		return module.OK()
	}
	target := m.target.KeyTarget()
	if target == nil {
		return module.OK()
	}

	bindings := m.tools.ToolShortcuts()
	names := make([]string, 0, len(bindings))
	for tool := range bindings {
		names = append(names, tool)
	}
	sort.Strings(names)

	var errs []error
	for _, tool := range names {
		if err := ctx.Err(); err != nil {
			return module.Recoverable(err)
		}
		tool := tool
		err := m.Add(Descriptor{
			Name: bindings[tool],
			On:   target,
			Handler: func(key.Event) {
				if err := m.inserter.InsertTool(tool); err != nil {
					m.log.Warn("shortcut insert failed", "tool", tool, "error", err)
				}
			},
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("tool %s: %w", tool, err))
		}
	}
	return module.Recoverable(errors.Join(errs...))
}

// Add creates a shortcut and registers it.
func (m *Shortcuts) Add(d Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d.On == nil {
		return ErrNoTarget
	}
	combo, err := Canonical(d.Name)
	if err != nil {
		return err
	}
	if prev, exists := m.registry[d.On][combo]; exists {
		return fmt.Errorf("%w: %q (bound as %q)", ErrDuplicate, d.Name, prev.Name())
	}

	s, err := New(d, WithPlatform(m.platform))
	if err != nil {
		return err
	}
	byName, ok := m.registry[d.On]
	if !ok {
		byName = make(map[string]*Shortcut)
		m.registry[d.On] = byName
	}
	byName[combo] = s
	m.log.Debug("shortcut added", "name", d.Name)
	return nil
}

// Remove detaches and forgets the shortcut bound to name on target.
func (m *Shortcuts) Remove(target Target, name string) {
	combo, err := Canonical(name)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	byName := m.registry[target]
	s, ok := byName[combo]
	if !ok {
		return
	}
	s.Remove()
	delete(byName, combo)
	if len(byName) == 0 {
		delete(m.registry, target)
	}
}

// Get returns the shortcut bound to name on target.
func (m *Shortcuts) Get(target Target, name string) (*Shortcut, bool) {
	combo, err := Canonical(name)
	if err != nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.registry[target][combo]
	return s, ok
}

// Len returns the number of registered shortcuts.
func (m *Shortcuts) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, byName := range m.registry {
		n += len(byName)
	}
	return n
}

// Destroy implements module.Destroyer by removing every shortcut.
func (m *Shortcuts) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, byName := range m.registry {
		for _, s := range byName {
			s.Remove()
		}
	}
	m.registry = make(map[Target]map[string]*Shortcut)
}
