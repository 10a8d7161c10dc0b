package provider

import "fmt"

// Registry is the fixed, ordered set of provider adapters built once at
// process start. Registration order is the fallback order among
// non-preferred providers, so it must be deterministic. The registry is
// immutable after construction and safe for concurrent reads.
type Registry struct {
	ordered []Adapter
	byName  map[string]Adapter
}

// NewRegistry builds a Registry from the given adapters, preserving
// order. Exactly one adapter per name is allowed; an empty set or a
// duplicate name is a configuration error.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	if len(adapters) == 0 {
		return nil, fmt.Errorf("provider: registry requires at least one adapter")
	}
	r := &Registry{
		ordered: make([]Adapter, 0, len(adapters)),
		byName:  make(map[string]Adapter, len(adapters)),
	}
	for _, a := range adapters {
		name := a.Name()
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("provider: duplicate adapter registered for %q", name)
		}
		r.byName[name] = a
		r.ordered = append(r.ordered, a)
	}
	return r, nil
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// Ordered returns the adapters in registration order. Callers must not
// mutate the returned slice.
func (r *Registry) Ordered() []Adapter {
	return r.ordered
}

// Names returns the provider names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.ordered))
	for i, a := range r.ordered {
		names[i] = a.Name()
	}
	return names
}
