// Package blocks holds the live blocks of a document.
//
// The Manager module owns the ordered block list and the current block
// index. Every change is published on the events hub.
package blocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/blockedit/internal/document"
	"github.com/dshills/blockedit/internal/tools"
)

// Block is one live block.
type Block struct {
	id   string
	tool string
	inst tools.Instance

	mu        sync.RWMutex
	stretched bool
}

func newBlock(tool string, inst tools.Instance) *Block {
	return &Block{
		id:   uuid.NewString(),
		tool: tool,
		inst: inst,
	}
}

// ID returns the block's unique id.
func (b *Block) ID() string {
	return b.id
}

// Tool returns the name of the block's tool.
func (b *Block) Tool() string {
	return b.tool
}

// Instance returns the tool instance backing the block.
func (b *Block) Instance() tools.Instance {
	return b.inst
}

// Stretched reports whether the block spans the full editor width.
func (b *Block) Stretched() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stretched
}

// SetStretched sets the stretched state.
func (b *Block) SetStretched(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stretched = v
}

// Save extracts the block's data and validates it. When the tool fails to
// save, the returned block is invalid and the error is returned with it.
func (b *Block) Save(ctx context.Context) (document.ValidatedBlock, error) {
	start := time.Now()
	data, err := b.inst.Save(ctx)
	elapsed := time.Since(start)
	if err != nil {
		return document.ValidatedBlock{Tool: b.tool, Data: map[string]any{}, Time: elapsed}, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return document.ValidatedBlock{
		Tool:    b.tool,
		Data:    data,
		Time:    elapsed,
		IsValid: b.inst.Validate(data),
	}, nil
}
