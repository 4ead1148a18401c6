// Package store persists saved documents by id.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dshills/blockedit/internal/document"
)

// ErrNotFound is returned when no document is stored under an id.
var ErrNotFound = errors.New("document not found")

// Store keeps saved documents.
type Store interface {
	// Put stores out under id, replacing any previous version.
	Put(ctx context.Context, id string, out document.Output) error

	// Get returns the document stored under id.
	Get(ctx context.Context, id string) (document.Output, error)

	// Delete removes id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the stored ids, sorted.
	List(ctx context.Context) ([]string, error)
}

// Memory is a Store held in process memory. Documents are kept encoded so
// callers never share maps with the store.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

// Put implements Store.
func (m *Memory) Put(ctx context.Context, id string, out document.Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := document.Encode(out)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id] = raw
	return nil
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, id string) (document.Output, error) {
	if err := ctx.Err(); err != nil {
		return document.Output{}, err
	}
	m.mu.RLock()
	raw, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		return document.Output{}, ErrNotFound
	}
	return document.Decode(raw)
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

// List implements Store.
func (m *Memory) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
