package resolve

import (
	"sync"
)

func NewRegistry(lookup Lookup) *Registry {
	return &Registry{
		lookup:    lookup,
		resolvers: make(map[string]*Resolver),
	}
}

// Registry hands out one resolver per target id, so every consumer of the
// same target shares a single cached resolution attempt.
type Registry struct {
	lookup Lookup

	mu        sync.Mutex
	resolvers map[string]*Resolver
}

func (r *Registry) For(targetID string) *Resolver {
	r.mu.Lock()
	defer r.mu.Unlock()

	resolver, ok := r.resolvers[targetID]
	if !ok {
		resolver = New(r.lookup, targetID)
		r.resolvers[targetID] = resolver
	}
	return resolver
}
