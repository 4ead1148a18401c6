package module

import (
	"fmt"
	"sort"
)

// Registry holds exactly one live instance per module name. It is mutated
// only while the orchestrator constructs and wires modules.
type Registry struct {
	instances map[Name]Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{instances: make(map[Name]Module)}
}

// Add registers m under its name. Unknown and duplicate names are rejected.
func (r *Registry) Add(m Module) error {
	if m == nil {
		return fmt.Errorf("module: nil instance")
	}
	name := m.Name()
	if !name.Valid() {
		return fmt.Errorf("module: unknown name %q", name)
	}
	if _, exists := r.instances[name]; exists {
		return fmt.Errorf("module %s: already registered", name)
	}
	r.instances[name] = m
	return nil
}

// Get returns the instance registered under name.
func (r *Registry) Get(name Name) (Module, bool) {
	m, ok := r.instances[name]
	return m, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name Name) bool {
	_, ok := r.instances[name]
	return ok
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	return len(r.instances)
}

// Names returns the registered names in declaration order.
func (r *Registry) Names() []Name {
	names := make([]Name, 0, len(r.instances))
	for _, n := range All {
		if _, ok := r.instances[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

// SiblingsOf computes the view of every module except name. Each call
// returns an independent copy.
func (r *Registry) SiblingsOf(name Name) Siblings {
	others := make(map[Name]Module, len(r.instances))
	for n, m := range r.instances {
		if n == name {
			continue
		}
		others[n] = m
	}
	return Siblings{self: name, modules: others}
}

// Wire hands every Wirer its own siblings view.
func (r *Registry) Wire() {
	for _, name := range r.Names() {
		if w, ok := r.instances[name].(Wirer); ok {
			w.Wire(r.SiblingsOf(name))
		}
	}
}

// Each calls fn for every module in declaration order.
func (r *Registry) Each(fn func(Module)) {
	for _, name := range r.Names() {
		fn(r.instances[name])
	}
}

// Siblings is a read-only view of the other modules of one editor.
type Siblings struct {
	self    Name
	modules map[Name]Module
}

// Self returns the name of the module owning this view.
func (s Siblings) Self() Name {
	return s.self
}

// Get returns the sibling registered under name.
func (s Siblings) Get(name Name) (Module, bool) {
	m, ok := s.modules[name]
	return m, ok
}

// Names returns the sibling names, sorted.
func (s Siblings) Names() []Name {
	names := make([]Name, 0, len(s.modules))
	for n := range s.modules {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Len returns the number of siblings.
func (s Siblings) Len() int {
	return len(s.modules)
}

// Lookup returns the sibling registered under name as T. It reports false
// when the sibling is absent or does not implement T.
func Lookup[T any](s Siblings, name Name) (T, bool) {
	var zero T
	m, ok := s.modules[name]
	if !ok {
		return zero, false
	}
	t, ok := m.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Instance returns the module registered under name as T.
func Instance[T any](r *Registry, name Name) (T, bool) {
	var zero T
	m, ok := r.Get(name)
	if !ok {
		return zero, false
	}
	t, ok := m.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
