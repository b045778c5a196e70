package provider

import (
	"fmt"

	"github.com/ipvet/ipvet/util"
)

//Registry maps provider identifiers to their typed adapters. Adding a
//provider means registering a new Adapter, never branching on name strings
//elsewhere in the codebase.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

//NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

//Register adds an adapter under its name. Identifiers which are unsafe to
//use as storage key material are rejected.
func (r *Registry) Register(adapter Adapter) error {
	name := adapter.Name()
	if !util.ValidProviderName(name) {
		return fmt.Errorf("invalid provider identifier %q", name)
	}
	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("provider %q registered twice", name)
	}
	r.adapters[name] = adapter
	r.order = append(r.order, name)
	return nil
}

//Get returns the adapter registered under name
func (r *Registry) Get(name string) (Adapter, bool) {
	adapter, ok := r.adapters[name]
	return adapter, ok
}

//Names returns the provider identifiers in registration order. This is
//the fixed order used for sequential checks.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
