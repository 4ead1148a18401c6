// Package observer forwards block changes to the host's change callback.
package observer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/events"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
)

// Subscriber registers event handlers.
type Subscriber interface {
	OnAny(handler events.Handler) *events.Subscription
}

// watched lists the events reported as modifications.
var watched = map[events.Type]bool{
	events.BlockAdded:   true,
	events.BlockRemoved: true,
	events.BlockChanged: true,
	events.BlockMoved:   true,
}

// Observer is the ModificationsObserver module. Disable calls nest: the
// observer reports changes again once every Disable has been matched by
// an Enable.
type Observer struct {
	onChange func(events.Event)
	log      *slog.Logger

	hub Subscriber
	sub *events.Subscription

	mu       sync.Mutex
	disabled int
}

// NewModule creates the module.
func NewModule(cfg *config.Config, log *slog.Logger) *Observer {
	return &Observer{
		onChange: cfg.OnChange,
		log:      logging.ForModule(log, string(module.ModificationsObserver)),
	}
}

// Name implements module.Module.
func (o *Observer) Name() module.Name {
	return module.ModificationsObserver
}

// Wire implements module.Wirer.
func (o *Observer) Wire(s module.Siblings) {
	o.hub, _ = module.Lookup[Subscriber](s, module.Events)
}

// Prepare subscribes to block events.
func (o *Observer) Prepare(context.Context) module.Result {
	if o.hub == nil || o.onChange == nil {
		return module.OK()
	}
	o.sub = o.hub.OnAny(o.handle)
	return module.OK()
}

func (o *Observer) handle(e events.Event) {
	if !watched[e.Type] || !o.Enabled() {
		return
	}
	o.log.Debug("modification", "event", string(e.Type), "block", e.BlockID)
	o.onChange(e)
}

// Enable resumes change reporting.
func (o *Observer) Enable() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disabled > 0 {
		o.disabled--
	}
}

// Disable pauses change reporting.
func (o *Observer) Disable() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disabled++
}

// Enabled reports whether changes are reported.
func (o *Observer) Enabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disabled == 0
}

// Destroy implements module.Destroyer.
func (o *Observer) Destroy() {
	o.sub.Unsubscribe()
	o.sub = nil
}
