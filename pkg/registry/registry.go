// Package registry holds the host functions that the executeFunction action
// may call. Only names registered here can ever be invoked.
package registry

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/cuepoint/pkg/domain"
)

// Function is a host callback. It receives the action's args parameter.
type Function func(args map[string]any) (any, error)

// Registry manages the allowed functions.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]Function),
	}
}

// Register adds a function to the registry.
// If a function with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Unregister removes a function.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.funcs, name)
}

// Has reports whether a function is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.funcs))
}

// Execute looks up a function by name and executes it.
// Returns domain.ErrFunctionNotFound if the name is not registered.
func (r *Registry) Execute(name string, args map[string]any) (any, error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFunctionNotFound, name)
	}

	return fn(args)
}
