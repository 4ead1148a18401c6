package blocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/events"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
	"github.com/dshills/blockedit/internal/tools"
)

var (
	// ErrIndexOutOfRange is returned for an index outside the block list.
	ErrIndexOutOfRange = errors.New("block index out of range")

	// ErrNotFound is returned when no block has the requested id.
	ErrNotFound = errors.New("block not found")

	// ErrNotUpdatable is returned when a block's tool cannot replace its data.
	ErrNotUpdatable = errors.New("block data cannot be updated")

	// ErrNoTools is returned when the manager has no tools module.
	ErrNoTools = errors.New("tools module missing")
)

// Creator builds tool instances.
type Creator interface {
	Create(tool string, data map[string]any, readOnly bool) (tools.Instance, error)
}

// Emitter publishes editor events.
type Emitter interface {
	Emit(e events.Event)
}

// Manager is the BlockManager module.
type Manager struct {
	defaultBlock string
	log          *slog.Logger

	tools  Creator
	events Emitter

	mu       sync.RWMutex
	blocks   []*Block
	current  int
	readOnly bool
}

// NewModule creates the module.
func NewModule(cfg *config.Config, log *slog.Logger) *Manager {
	return &Manager{
		defaultBlock: cfg.DefaultBlock,
		log:          logging.ForModule(log, string(module.BlockManager)),
		current:      -1,
		readOnly:     cfg.ReadOnly,
	}
}

// Name implements module.Module.
func (m *Manager) Name() module.Name {
	return module.BlockManager
}

// Wire implements module.Wirer.
func (m *Manager) Wire(s module.Siblings) {
	m.tools, _ = module.Lookup[Creator](s, module.Tools)
	m.events, _ = module.Lookup[Emitter](s, module.Events)
}

// Prepare implements module.Preparer. Blocks cannot exist without tools.
func (m *Manager) Prepare(context.Context) module.Result {
	if m.tools == nil {
		return module.Fatal(ErrNoTools)
	}
	return module.OK()
}

// SetReadOnly sets the mode new blocks are created in.
func (m *Manager) SetReadOnly(v bool) {
	m.mu.Lock()
	m.readOnly = v
	m.mu.Unlock()
}

func (m *Manager) create(tool string, data map[string]any) (*Block, error) {
	if m.tools == nil {
		return nil, ErrNoTools
	}
	m.mu.RLock()
	readOnly := m.readOnly
	m.mu.RUnlock()

	inst, err := m.tools.Create(tool, data, readOnly)
	if err != nil {
		return nil, fmt.Errorf("creating %s block: %w", tool, err)
	}
	return newBlock(tool, inst), nil
}

// Insert appends a block of tool with data.
func (m *Manager) Insert(tool string, data map[string]any) (*Block, error) {
	return m.InsertAt(-1, tool, data)
}

// InsertAt inserts a block at index. A negative index appends. The new
// block becomes the current block.
func (m *Manager) InsertAt(index int, tool string, data map[string]any) (*Block, error) {
	b, err := m.create(tool, data)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if index < 0 || index > len(m.blocks) {
		if index > len(m.blocks) {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
		}
		index = len(m.blocks)
	}
	m.blocks = append(m.blocks, nil)
	copy(m.blocks[index+1:], m.blocks[index:])
	m.blocks[index] = b
	m.current = index
	m.mu.Unlock()

	m.emit(events.Event{Type: events.BlockAdded, BlockID: b.id, Index: index, Payload: tool})
	return b, nil
}

// InsertTool inserts an empty block of tool after the current block.
func (m *Manager) InsertTool(tool string) error {
	m.mu.RLock()
	index := m.current + 1
	m.mu.RUnlock()

	_, err := m.InsertAt(index, tool, nil)
	return err
}

// InsertDefault appends an empty block of the default tool.
func (m *Manager) InsertDefault() (*Block, error) {
	return m.Insert(m.defaultBlock, nil)
}

// Remove deletes the block at index.
func (m *Manager) Remove(index int) error {
	m.mu.Lock()
	if index < 0 || index >= len(m.blocks) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	b := m.blocks[index]
	m.blocks = append(m.blocks[:index], m.blocks[index+1:]...)
	if m.current >= len(m.blocks) {
		m.current = len(m.blocks) - 1
	}
	m.mu.Unlock()

	m.emit(events.Event{Type: events.BlockRemoved, BlockID: b.id, Index: index, Payload: b.tool})
	return nil
}

// RemoveByID deletes the block with id.
func (m *Manager) RemoveByID(id string) error {
	index := m.IndexOf(id)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.Remove(index)
}

// Move moves the block at from to position to.
func (m *Manager) Move(from, to int) error {
	m.mu.Lock()
	n := len(m.blocks)
	if from < 0 || from >= n || to < 0 || to >= n {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d -> %d", ErrIndexOutOfRange, from, to)
	}
	b := m.blocks[from]
	if from != to {
		m.blocks = append(m.blocks[:from], m.blocks[from+1:]...)
		m.blocks = append(m.blocks, nil)
		copy(m.blocks[to+1:], m.blocks[to:])
		m.blocks[to] = b
	}
	m.current = to
	m.mu.Unlock()

	m.emit(events.Event{Type: events.BlockMoved, BlockID: b.id, Index: to, Payload: from})
	return nil
}

// Update replaces the data of the block with id.
func (m *Manager) Update(id string, data map[string]any) error {
	b, ok := m.ByID(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	u, ok := b.inst.(tools.Updater)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotUpdatable, b.tool)
	}
	if err := u.Update(data); err != nil {
		return fmt.Errorf("updating block %s: %w", id, err)
	}
	m.Changed(id)
	return nil
}

// Changed reports that the block with id was edited.
func (m *Manager) Changed(id string) {
	index := m.IndexOf(id)
	if index < 0 {
		return
	}
	m.emit(events.Event{Type: events.BlockChanged, BlockID: id, Index: index})
}

// Clear removes every block without emitting per-block events.
func (m *Manager) Clear() {
	m.mu.Lock()
	n := len(m.blocks)
	m.blocks = nil
	m.current = -1
	m.mu.Unlock()

	if n > 0 {
		m.log.Debug("blocks cleared", "count", n)
	}
}

// Len returns the number of blocks.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blocks)
}

// Blocks returns a snapshot of the block list.
func (m *Manager) Blocks() []*Block {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Block(nil), m.blocks...)
}

// ByIndex returns the block at index.
func (m *Manager) ByIndex(index int) (*Block, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 0 || index >= len(m.blocks) {
		return nil, false
	}
	return m.blocks[index], true
}

// ByID returns the block with id.
func (m *Manager) ByID(id string) (*Block, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.blocks {
		if b.id == id {
			return b, true
		}
	}
	return nil, false
}

// IndexOf returns the position of the block with id, or -1.
func (m *Manager) IndexOf(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, b := range m.blocks {
		if b.id == id {
			return i
		}
	}
	return -1
}

// CurrentIndex returns the index of the current block, or -1.
func (m *Manager) CurrentIndex() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SetCurrent makes the block at index current.
func (m *Manager) SetCurrent(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.blocks) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	m.current = index
	return nil
}

// Destroy implements module.Destroyer.
func (m *Manager) Destroy() {
	m.Clear()
}

func (m *Manager) emit(e events.Event) {
	if m.events != nil {
		m.events.Emit(e)
	}
}
