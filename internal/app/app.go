// Package app assembles editor modules into a running Editor.
//
// New normalizes the configuration, constructs one instance of every
// module, wires them together and prepares them in a fixed order before
// rendering the initial document. Startup runs on its own goroutine; Ready
// reports its outcome.
package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dshills/blockedit/internal/blocks"
	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/document"
	"github.com/dshills/blockedit/internal/events"
	"github.com/dshills/blockedit/internal/i18n"
	"github.com/dshills/blockedit/internal/module"
	"github.com/dshills/blockedit/internal/pipeline"
	"github.com/dshills/blockedit/internal/readonly"
	"github.com/dshills/blockedit/internal/sanitizer"
	"github.com/dshills/blockedit/internal/shortcut"
	"github.com/dshills/blockedit/internal/ui"
)

// Editor is one running editor instance.
type Editor struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu        sync.RWMutex
	err       error
	reg       *module.Registry
	order     []module.Name
	cfg       *config.Config
	log       *slog.Logger
	warnings  []error
	destroyed bool
}

// New starts an editor for input, a holder id or a config.Config. It
// returns immediately; use Ready to wait for startup.
func New(input any, opts ...Option) *Editor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Editor{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go e.start(ctx, input, o)
	return e
}

// Open starts an editor and waits until it is ready. A failed editor is
// destroyed.
func Open(ctx context.Context, input any, opts ...Option) (*Editor, error) {
	e := New(input, opts...)
	if err := e.Ready(ctx); err != nil {
		_ = e.Destroy()
		return nil, err
	}
	return e, nil
}

func (e *Editor) start(ctx context.Context, input any, o options) {
	b := newBootstrapper(o)
	err := b.bootstrap(ctx, input)

	e.mu.Lock()
	e.err = err
	e.log = b.log
	e.warnings = b.warnings.Errors()
	if err == nil {
		e.reg = b.reg
		e.order = b.initOrder
		e.cfg = b.cfg
	}
	e.mu.Unlock()
	close(e.done)

	if err != nil {
		if b.log != nil {
			b.log.Error("editor startup failed", "error", err)
		}
		return
	}
	b.log.Info("editor ready", "modules", len(b.initOrder), "warnings", len(e.warnings))
	if b.cfg.OnReady != nil {
		b.cfg.OnReady()
	}
}

// Ready blocks until startup finishes and returns its error.
func (e *Editor) Ready(ctx context.Context) error {
	select {
	case <-e.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.destroyed {
		return ErrDestroyed
	}
	return e.err
}

// Warnings returns the non-fatal startup failures.
func (e *Editor) Warnings() []error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]error, len(e.warnings))
	copy(out, e.warnings)
	return out
}

// Destroy tears the editor down. Startup still in progress is cancelled.
// Every later call returns ErrDestroyed.
func (e *Editor) Destroy() error {
	e.cancel()
	<-e.done

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return ErrDestroyed
	}
	e.destroyed = true

	if e.reg != nil {
		destroyModules(e.reg, e.order, e.log)
	}
	e.reg = nil
	e.order = nil
	e.cfg = nil
	e.warnings = nil
	if e.log != nil {
		e.log.Debug("editor destroyed")
	}
	return nil
}

// registry waits for startup and returns the live modules.
func (e *Editor) registry(ctx context.Context) (*module.Registry, error) {
	if err := e.Ready(ctx); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.destroyed {
		return nil, ErrDestroyed
	}
	return e.reg, nil
}

// surface returns the module registered under name once the editor is
// ready, or the zero T.
func surface[T any](e *Editor, name module.Name) T {
	var zero T
	select {
	case <-e.done:
	default:
		return zero
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.destroyed || e.reg == nil {
		return zero
	}
	t, _ := module.Instance[T](e.reg, name)
	return t
}

func need[T any](reg *module.Registry, name module.Name) (T, error) {
	t, ok := module.Instance[T](reg, name)
	if !ok {
		return t, ErrModuleUnavailable
	}
	return t, nil
}

// Save returns the current document. It fails in read-only mode.
func (e *Editor) Save(ctx context.Context) (document.Output, error) {
	reg, err := e.registry(ctx)
	if err != nil {
		return document.Output{}, err
	}
	if e.readOnly(reg) {
		return document.Output{}, NewOperationError("save", ErrReadOnlySave)
	}
	s, err := need[*pipeline.Saver](reg, module.Saver)
	if err != nil {
		return document.Output{}, NewOperationError("save", err)
	}
	out, err := s.Save(ctx)
	if err != nil {
		return document.Output{}, NewOperationError("save", err)
	}
	return out, nil
}

func (e *Editor) readOnly(reg *module.Registry) bool {
	if r, ok := module.Instance[*readonly.ReadOnly](reg, module.ReadOnly); ok {
		return r.Enabled()
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg != nil && e.cfg.ReadOnly
}

// Render replaces the content with doc. An empty document leaves one
// default block.
func (e *Editor) Render(ctx context.Context, doc document.Output) error {
	reg, err := e.registry(ctx)
	if err != nil {
		return err
	}
	bm, err := need[*blocks.Manager](reg, module.BlockManager)
	if err != nil {
		return NewOperationError("render", err)
	}
	r, err := need[*pipeline.Renderer](reg, module.Renderer)
	if err != nil {
		return NewOperationError("render", err)
	}

	bm.Clear()
	if len(doc.Blocks) == 0 {
		if _, err := bm.InsertDefault(); err != nil {
			return NewOperationError("render", err)
		}
		e.checkEmptiness(reg)
		return nil
	}
	if _, err := r.Render(ctx, doc.Blocks); err != nil {
		return NewOperationError("render", err).WithContext("document replaced partially")
	}
	return nil
}

// Clear removes every block and leaves one empty default block.
func (e *Editor) Clear(ctx context.Context) error {
	reg, err := e.registry(ctx)
	if err != nil {
		return err
	}
	bm, err := need[*blocks.Manager](reg, module.BlockManager)
	if err != nil {
		return NewOperationError("clear", err)
	}
	bm.Clear()
	if _, err := bm.InsertDefault(); err != nil {
		return NewOperationError("clear", err)
	}
	e.checkEmptiness(reg)
	return nil
}

func (e *Editor) checkEmptiness(reg *module.Registry) {
	if u, ok := module.Instance[*ui.UI](reg, module.UI); ok {
		u.CheckEmptiness()
	}
}

// Focus puts the caret in the first block, or the last one when atEnd is
// set.
func (e *Editor) Focus(ctx context.Context, atEnd bool) error {
	reg, err := e.registry(ctx)
	if err != nil {
		return err
	}
	c, err := need[*ui.Caret](reg, module.Caret)
	if err != nil {
		return NewOperationError("focus", err)
	}
	if err := c.Focus(atEnd); err != nil {
		return NewOperationError("focus", err)
	}
	return nil
}

// Blocks returns the block manager, or nil before readiness and after
// Destroy.
func (e *Editor) Blocks() *blocks.Manager {
	return surface[*blocks.Manager](e, module.BlockManager)
}

// Sanitizer returns the sanitizer module.
func (e *Editor) Sanitizer() *sanitizer.Sanitizer {
	return surface[*sanitizer.Sanitizer](e, module.Sanitizer)
}

// Events returns the event hub.
func (e *Editor) Events() *events.Hub {
	return surface[*events.Hub](e, module.Events)
}

// ReadOnly returns the read-only module.
func (e *Editor) ReadOnly() *readonly.ReadOnly {
	return surface[*readonly.ReadOnly](e, module.ReadOnly)
}

// I18n returns the localization module.
func (e *Editor) I18n() *i18n.I18n {
	return surface[*i18n.I18n](e, module.I18n)
}

// Shortcuts returns the shortcut registry.
func (e *Editor) Shortcuts() *shortcut.Shortcuts {
	return surface[*shortcut.Shortcuts](e, module.Shortcuts)
}

// Caret returns the caret module.
func (e *Editor) Caret() *ui.Caret {
	return surface[*ui.Caret](e, module.Caret)
}

// UI returns the view state.
func (e *Editor) UI() *ui.UI {
	return surface[*ui.UI](e, module.UI)
}

// Keys returns the dispatcher key presses are fed to, or nil.
func (e *Editor) Keys() *shortcut.Dispatcher {
	if u := e.UI(); u != nil {
		return u.Keys()
	}
	return nil
}

// Config returns the normalized configuration, or nil.
func (e *Editor) Config() *config.Config {
	select {
	case <-e.done:
	default:
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}
