package ui

import (
	"sync"

	"github.com/dshills/blockedit/internal/config"
)

// Element is a host node the editor can be mounted in.
type Element struct {
	id      string
	element bool
}

// ID implements config.Node.
func (e *Element) ID() string {
	return e.id
}

// IsElement implements config.Node.
func (e *Element) IsElement() bool {
	return e.element
}

// NewElement returns a detached element node.
func NewElement(id string) *Element {
	return &Element{id: id, element: true}
}

// NewTextNode returns a detached node that cannot hold content.
func NewTextNode(id string) *Element {
	return &Element{id: id}
}

// Document is an id index of host nodes. It implements config.Resolver.
type Document struct {
	mu    sync.RWMutex
	nodes map[string]config.Node
}

// NewDocument returns a document holding ids as elements.
func NewDocument(ids ...string) *Document {
	d := &Document{nodes: make(map[string]config.Node)}
	for _, id := range ids {
		d.Add(NewElement(id))
	}
	return d
}

// Add indexes n by its id, replacing any node with the same id.
func (d *Document) Add(n config.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nodes[n.ID()] = n
}

// Lookup implements config.Resolver.
func (d *Document) Lookup(id string) (config.Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nodes[id]
	return n, ok
}
