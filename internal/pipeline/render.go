// Package pipeline moves documents between their persisted form and the
// live block list.
//
// The Renderer inserts persisted blocks through the block manager, using
// the stub tool for blocks whose tool is missing. The Saver extracts,
// validates and sanitizes every live block and assembles the output.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dshills/blockedit/internal/blocks"
	"github.com/dshills/blockedit/internal/document"
	"github.com/dshills/blockedit/internal/events"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
	"github.com/dshills/blockedit/internal/tools"
)

// ToolCatalog reports which tools can render blocks.
type ToolCatalog interface {
	Available(tool string) bool
	StubTitle(typ string) string
}

// Inserter appends live blocks.
type Inserter interface {
	Insert(tool string, data map[string]any) (*blocks.Block, error)
}

// EmptinessChecker updates the editor's empty state.
type EmptinessChecker interface {
	CheckEmptiness()
}

// Emitter publishes editor events.
type Emitter interface {
	Emit(e events.Event)
}

// RenderStats counts the blocks of one render.
type RenderStats struct {
	Rendered int
	Stubbed  int
}

// Renderer is the Renderer module.
type Renderer struct {
	log *slog.Logger

	tools    ToolCatalog
	blocks   Inserter
	ui       EmptinessChecker
	events   Emitter
	observer Switch

	// OnBlock is called for every inserted block with whether it was
	// stubbed.
	OnBlock func(tool string, stubbed bool)
}

// NewRenderer creates the module.
func NewRenderer(log *slog.Logger) *Renderer {
	return &Renderer{log: logging.ForModule(log, string(module.Renderer))}
}

// Name implements module.Module.
func (r *Renderer) Name() module.Name {
	return module.Renderer
}

// Wire implements module.Wirer.
func (r *Renderer) Wire(s module.Siblings) {
	r.tools, _ = module.Lookup[ToolCatalog](s, module.Tools)
	r.blocks, _ = module.Lookup[Inserter](s, module.BlockManager)
	r.ui, _ = module.Lookup[EmptinessChecker](s, module.UI)
	r.events, _ = module.Lookup[Emitter](s, module.Events)
	r.observer, _ = module.Lookup[Switch](s, module.ModificationsObserver)
}

// Render inserts blocks in order. A block whose tool is unknown or
// unavailable is kept as a stub. The first insertion error aborts the
// render. Change notifications are off for the duration.
func (r *Renderer) Render(ctx context.Context, list []document.Block) (RenderStats, error) {
	var stats RenderStats
	if r.tools == nil || r.blocks == nil {
		return stats, fmt.Errorf("render: %w", ErrMissingModule)
	}
	if r.observer != nil {
		r.observer.Disable()
		defer r.observer.Enable()
	}

	for i, b := range list {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if r.tools.Available(b.Type) {
			if _, err := r.blocks.Insert(b.Type, b.Data); err != nil {
				r.log.Error("block insertion failed", "index", i, "tool", b.Type, "data", b.Data, "error", err)
				return stats, &RenderError{Index: i, Type: b.Type, Data: b.Data, Err: err}
			}
			stats.Rendered++
			r.observe(b.Type, false)
			continue
		}

		title := r.tools.StubTitle(b.Type)
		stub, err := r.blocks.Insert(tools.StubTool, tools.StubData(b.Type, b.Data, title))
		if err != nil {
			r.log.Error("stub insertion failed", "index", i, "tool", b.Type, "data", b.Data, "error", err)
			return stats, &RenderError{Index: i, Type: b.Type, Data: b.Data, Err: err}
		}
		stub.SetStretched(true)
		stats.Stubbed++
		r.observe(b.Type, true)
		r.log.Warn("tool not found or unavailable, block kept as stub", "index", i, "tool", b.Type)
	}

	if r.ui != nil {
		r.ui.CheckEmptiness()
	}
	if r.events != nil {
		r.events.Emit(events.Event{Type: events.Rendered, Index: -1, Payload: stats})
	}
	return stats, nil
}

func (r *Renderer) observe(tool string, stubbed bool) {
	if r.OnBlock != nil {
		r.OnBlock(tool, stubbed)
	}
}
