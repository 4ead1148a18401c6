// Package readonly switches an editor between editing and read-only mode.
package readonly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/document"
	"github.com/dshills/blockedit/internal/events"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
	"github.com/dshills/blockedit/internal/pipeline"
)

// ErrUnsupported is returned when a tool cannot be shown read-only.
var ErrUnsupported = errors.New("tools do not support read-only mode")

// SupportReporter lists the tools without read-only support.
type SupportReporter interface {
	ReadOnlyUnsupported() []string
}

// Saver extracts the current document.
type Saver interface {
	Save(ctx context.Context) (document.Output, error)
}

// Renderer inserts a document.
type Renderer interface {
	Render(ctx context.Context, list []document.Block) (pipeline.RenderStats, error)
}

// Modal is implemented by modules that behave differently in read-only
// mode.
type Modal interface {
	SetReadOnly(v bool)
}

// Clearer removes every block.
type Clearer interface {
	Clear()
}

// BlockMode is the part of the block manager a mode switch drives.
type BlockMode interface {
	Modal
	Clearer
}

// Emitter publishes editor events.
type Emitter interface {
	Emit(e events.Event)
}

// ReadOnly is the ReadOnly module.
type ReadOnly struct {
	log *slog.Logger

	tools    SupportReporter
	saver    Saver
	renderer Renderer
	blocks   BlockMode
	ui       Modal
	events   Emitter

	mu          sync.Mutex
	enabled     bool
	unsupported []string
}

// NewModule creates the module.
func NewModule(cfg *config.Config, log *slog.Logger) *ReadOnly {
	return &ReadOnly{
		log:     logging.ForModule(log, string(module.ReadOnly)),
		enabled: cfg.ReadOnly,
	}
}

// Name implements module.Module.
func (r *ReadOnly) Name() module.Name {
	return module.ReadOnly
}

// Wire implements module.Wirer.
func (r *ReadOnly) Wire(s module.Siblings) {
	r.tools, _ = module.Lookup[SupportReporter](s, module.Tools)
	r.saver, _ = module.Lookup[Saver](s, module.Saver)
	r.renderer, _ = module.Lookup[Renderer](s, module.Renderer)
	r.blocks, _ = module.Lookup[BlockMode](s, module.BlockManager)
	r.ui, _ = module.Lookup[Modal](s, module.UI)
	r.events, _ = module.Lookup[Emitter](s, module.Events)
}

// Prepare records the tools lacking read-only support. Starting read-only
// with such tools is fatal.
func (r *ReadOnly) Prepare(context.Context) module.Result {
	var unsupported []string
	if r.tools != nil {
		unsupported = r.tools.ReadOnlyUnsupported()
	}

	r.mu.Lock()
	r.unsupported = unsupported
	enabled := r.enabled
	r.mu.Unlock()

	if enabled && len(unsupported) > 0 {
		return module.Fatal(unsupportedError(unsupported))
	}
	return module.OK()
}

func unsupportedError(tools []string) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, strings.Join(tools, ", "))
}

// Enabled reports whether the editor is read-only.
func (r *ReadOnly) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Toggle switches the mode and re-renders the document in it. It returns
// the new mode.
func (r *ReadOnly) Toggle(ctx context.Context) (bool, error) {
	return r.Set(ctx, !r.Enabled())
}

// Set switches to the given mode. The current content is saved, cleared
// and rendered again so every block is recreated in the new mode.
func (r *ReadOnly) Set(ctx context.Context, state bool) (bool, error) {
	r.mu.Lock()
	if state && len(r.unsupported) > 0 {
		err := unsupportedError(r.unsupported)
		r.mu.Unlock()
		return r.Enabled(), err
	}
	if r.enabled == state {
		r.mu.Unlock()
		return state, nil
	}
	r.mu.Unlock()

	if r.saver == nil || r.renderer == nil || r.blocks == nil {
		return r.Enabled(), fmt.Errorf("read-only toggle: %w", pipeline.ErrMissingModule)
	}

	out, err := r.saver.Save(ctx)
	if err != nil {
		return r.Enabled(), fmt.Errorf("saving before mode switch: %w", err)
	}

	r.mu.Lock()
	r.enabled = state
	r.mu.Unlock()

	r.blocks.SetReadOnly(state)
	if r.ui != nil {
		r.ui.SetReadOnly(state)
	}
	r.blocks.Clear()
	if _, err := r.renderer.Render(ctx, out.Blocks); err != nil {
		return state, fmt.Errorf("rendering after mode switch: %w", err)
	}

	r.log.Debug("mode switched", "readOnly", state)
	if r.events != nil {
		r.events.Emit(events.Event{Type: events.ReadOnly, Index: -1, Payload: state})
	}
	return state, nil
}
