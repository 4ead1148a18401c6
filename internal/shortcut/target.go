package shortcut

import (
	"sync"

	"github.com/dshills/blockedit/internal/input/key"
)

// Listener receives key presses.
type Listener func(key.Event)

// Target is an event source shortcuts attach to.
type Target interface {
	// AddKeyListener attaches fn and returns the function detaching it.
	AddKeyListener(fn Listener) (remove func())
}

// Dispatcher is a Target fed by Dispatch. The editor holder and the
// terminal adapter use it.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []listenerEntry
	nextID    uint64
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// NewDispatcher creates a target with no listeners.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// AddKeyListener implements Target.
func (d *Dispatcher) AddKeyListener(fn Listener) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.listeners = append(d.listeners, listenerEntry{id: id, fn: fn})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(id) })
	}
}

func (d *Dispatcher) remove(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, l := range d.listeners {
		if l.id == id {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return
		}
	}
}

// Dispatch delivers ev to every listener in attachment order.
func (d *Dispatcher) Dispatch(ev key.Event) {
	d.mu.RLock()
	listeners := make([]listenerEntry, len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.RUnlock()

	for _, l := range listeners {
		l.fn(ev)
	}
}

// Len returns the number of attached listeners.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}
