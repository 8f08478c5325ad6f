package beans

import (
	"sync"
	"weak"
)

// FactoryRegistry tracks live factories by id, holding them weakly so a
// registered factory can still be collected once its owner drops it. The
// id makes a factory addressable across component boundaries without
// passing the pointer around.
type FactoryRegistry struct {
	mu        sync.Mutex
	factories map[string]weak.Pointer[Factory]
}

// NewFactoryRegistry creates an empty registry.
func NewFactoryRegistry() *FactoryRegistry {
	return &FactoryRegistry{factories: make(map[string]weak.Pointer[Factory])}
}

// Register announces a factory under its id.
func (r *FactoryRegistry) Register(f *Factory) {
	if f == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[f.id] = weak.Make(f)
}

// Lookup returns the live factory registered under the id. Entries whose
// factory has been collected are pruned on access.
func (r *FactoryRegistry) Lookup(id string) (*Factory, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.factories[id]
	if !ok {
		return nil, false
	}
	f := p.Value()
	if f == nil {
		delete(r.factories, id)
		return nil, false
	}
	return f, true
}

// Deregister removes the id from the registry.
func (r *FactoryRegistry) Deregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, id)
}

var defaultRegistry = NewFactoryRegistry()

// DefaultRegistry returns the package-level registry factories join unless
// configured otherwise.
func DefaultRegistry() *FactoryRegistry {
	return defaultRegistry
}
