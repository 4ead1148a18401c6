// Package events provides the editor's synchronous publish/subscribe hub.
//
// Modules publish block lifecycle changes here; the modifications observer
// and host code subscribe to them.
package events

import (
	"sync"

	"github.com/dshills/blockedit/internal/module"
)

// Type identifies an event kind.
type Type string

// Event kinds emitted by the editor.
const (
	BlockAdded   Type = "block-added"
	BlockRemoved Type = "block-removed"
	BlockChanged Type = "block-changed"
	BlockMoved   Type = "block-moved"
	Rendered     Type = "rendered"
	ReadOnly     Type = "read-only-changed"
)

// Event is a single notification.
type Event struct {
	// Type is the kind of event.
	Type Type

	// BlockID identifies the affected block, if any.
	BlockID string

	// Index is the affected block position, -1 when not applicable.
	Index int

	// Payload carries event specific data.
	Payload any
}

// Handler receives events.
type Handler func(Event)

// Subscription represents an active handler registration.
type Subscription struct {
	id   uint64
	typ  Type
	hub  *Hub
	all  bool
	once sync.Once
}

// Unsubscribe removes the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub manages subscriptions. Delivery is synchronous, in subscription order.
type Hub struct {
	mu sync.RWMutex

	typed  map[Type][]entry
	global []entry
	nextID uint64
	closed bool
}

type entry struct {
	id      uint64
	handler Handler
}

// New creates a hub.
func New() *Hub {
	return &Hub{typed: make(map[Type][]entry)}
}

// Name implements module.Module.
func (h *Hub) Name() module.Name {
	return module.Events
}

// On subscribes handler to events of type t.
func (h *Hub) On(t Type, handler Handler) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	h.typed[t] = append(h.typed[t], entry{id: h.nextID, handler: handler})
	return &Subscription{id: h.nextID, typ: t, hub: h}
}

// OnAny subscribes handler to every event.
func (h *Hub) OnAny(handler Handler) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	h.global = append(h.global, entry{id: h.nextID, handler: handler})
	return &Subscription{id: h.nextID, hub: h, all: true}
}

// Off removes a subscription.
func (h *Hub) Off(s *Subscription) {
	s.Unsubscribe()
}

// Emit delivers e to type subscribers, then to global subscribers.
// Handlers run in the caller's goroutine. Emit after Destroy is a no-op.
func (h *Hub) Emit(e Event) {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return
	}
	typed := append([]entry(nil), h.typed[e.Type]...)
	global := append([]entry(nil), h.global...)
	h.mu.RUnlock()

	for _, en := range typed {
		en.handler(e)
	}
	for _, en := range global {
		en.handler(e)
	}
}

// Count returns the number of active subscriptions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := len(h.global)
	for _, list := range h.typed {
		n += len(list)
	}
	return n
}

// Destroy drops every subscription.
func (h *Hub) Destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.typed = make(map[Type][]entry)
	h.global = nil
	h.closed = true
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.all {
		h.global = without(h.global, s.id)
		return
	}
	h.typed[s.typ] = without(h.typed[s.typ], s.id)
	if len(h.typed[s.typ]) == 0 {
		delete(h.typed, s.typ)
	}
}

func without(list []entry, id uint64) []entry {
	out := list[:0:0]
	for _, e := range list {
		if e.id != id {
			out = append(out, e)
		}
	}
	return out
}
