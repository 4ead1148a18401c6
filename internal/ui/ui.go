// Package ui holds the headless view state of an editor: the resolved
// holder, the loader, the empty state and the key event target. It also
// provides the Caret module.
package ui

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/dshills/blockedit/internal/blocks"
	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
	"github.com/dshills/blockedit/internal/shortcut"
)

// BlockLister returns the live blocks.
type BlockLister interface {
	Blocks() []*blocks.Block
}

// UI is the UI module.
type UI struct {
	cfg      *config.Config
	resolver config.Resolver
	log      *slog.Logger
	keys     *shortcut.Dispatcher

	blocks BlockLister

	mu       sync.RWMutex
	holder   config.Node
	loading  bool
	empty    bool
	readOnly bool
}

// NewModule creates the module. resolver finds the holder by id; it may
// be nil when the configuration carries a node reference.
func NewModule(cfg *config.Config, resolver config.Resolver, log *slog.Logger) *UI {
	return &UI{
		cfg:      cfg,
		resolver: resolver,
		log:      logging.ForModule(log, string(module.UI)),
		keys:     shortcut.NewDispatcher(),
		loading:  true,
		empty:    true,
		readOnly: cfg.ReadOnly,
	}
}

// Name implements module.Module.
func (u *UI) Name() module.Name {
	return module.UI
}

// Wire implements module.Wirer.
func (u *UI) Wire(s module.Siblings) {
	u.blocks, _ = module.Lookup[BlockLister](s, module.BlockManager)
}

// Prepare mounts the editor in its holder. A missing holder is fatal.
func (u *UI) Prepare(context.Context) module.Result {
	holder, err := config.ResolveHolder(u.cfg, u.resolver)
	if err != nil {
		return module.Fatal(err)
	}
	u.mu.Lock()
	u.holder = holder
	u.mu.Unlock()

	u.log.Debug("mounted", "holder", holder.ID(), "minHeight", u.cfg.BottomZone(), "direction", u.cfg.I18n.Direction)
	return module.OK()
}

// Holder returns the node the editor is mounted in.
func (u *UI) Holder() config.Node {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.holder
}

// KeyTarget returns the target key presses are dispatched to.
func (u *UI) KeyTarget() shortcut.Target {
	return u.keys
}

// Keys returns the dispatcher feeding KeyTarget.
func (u *UI) Keys() *shortcut.Dispatcher {
	return u.keys
}

// RemoveLoader hides the loading indicator.
func (u *UI) RemoveLoader() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.loading = false
}

// Loading reports whether the loading indicator is shown.
func (u *UI) Loading() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.loading
}

// CheckEmptiness recomputes the empty state. The editor is empty when it
// has no blocks or only blocks of the default tool without content.
func (u *UI) CheckEmptiness() {
	empty := true
	if u.blocks != nil {
		for _, b := range u.blocks.Blocks() {
			if b.Tool() != u.cfg.DefaultBlock {
				empty = false
				break
			}
			vb, err := b.Save(context.Background())
			if err != nil || hasContent(vb.Data) {
				empty = false
				break
			}
		}
	}

	u.mu.Lock()
	u.empty = empty
	u.mu.Unlock()
}

// Empty reports the state computed by the last CheckEmptiness.
func (u *UI) Empty() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.empty
}

// Placeholder returns the text shown in an empty editor.
func (u *UI) Placeholder() string {
	if !u.Empty() {
		return ""
	}
	return u.cfg.Placeholder
}

// SetReadOnly switches the view mode.
func (u *UI) SetReadOnly(v bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.readOnly = v
}

// ReadOnly reports the view mode.
func (u *UI) ReadOnly() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.readOnly
}

// Destroy implements module.Destroyer.
func (u *UI) Destroy() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.holder = nil
	u.loading = true
}

func hasContent(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	case map[string]any:
		for _, e := range x {
			if hasContent(e) {
				return true
			}
		}
		return false
	case []any:
		for _, e := range x {
			if hasContent(e) {
				return true
			}
		}
		return false
	case bool:
		return x
	default:
		return true
	}
}
