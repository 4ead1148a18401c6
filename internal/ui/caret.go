package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
)

// Position is where the caret sits inside a block.
type Position int

// Caret positions.
const (
	PositionDefault Position = iota
	PositionStart
	PositionEnd
)

// String returns the position name.
func (p Position) String() string {
	switch p {
	case PositionStart:
		return "start"
	case PositionEnd:
		return "end"
	default:
		return "default"
	}
}

// CurrentSetter selects the current block.
type CurrentSetter interface {
	SetCurrent(index int) error
	Len() int
}

// Caret is the Caret module. It tracks which block has focus.
type Caret struct {
	log *slog.Logger

	blocks CurrentSetter

	mu       sync.Mutex
	index    int
	position Position
}

// NewCaret creates the module.
func NewCaret(log *slog.Logger) *Caret {
	return &Caret{
		log:   logging.ForModule(log, string(module.Caret)),
		index: -1,
	}
}

// Name implements module.Module.
func (c *Caret) Name() module.Name {
	return module.Caret
}

// Wire implements module.Wirer.
func (c *Caret) Wire(s module.Siblings) {
	c.blocks, _ = module.Lookup[CurrentSetter](s, module.BlockManager)
}

// SetToBlock focuses the block at index. A negative index counts from
// the end.
func (c *Caret) SetToBlock(index int, pos Position) error {
	if c.blocks == nil {
		return fmt.Errorf("caret: no blocks")
	}
	if index < 0 {
		index += c.blocks.Len()
	}
	if err := c.blocks.SetCurrent(index); err != nil {
		return err
	}

	c.mu.Lock()
	c.index = index
	c.position = pos
	c.mu.Unlock()

	c.log.Debug("caret set", "index", index, "position", pos.String())
	return nil
}

// Focus places the caret in the first block, or the last one when atEnd
// is set.
func (c *Caret) Focus(atEnd bool) error {
	if atEnd {
		return c.SetToBlock(-1, PositionEnd)
	}
	return c.SetToBlock(0, PositionStart)
}

// Location returns the focused block index, or -1, and the position.
func (c *Caret) Location() (int, Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index, c.position
}
