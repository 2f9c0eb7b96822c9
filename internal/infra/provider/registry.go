package provider

import "rental-notify/internal/domain/entity"

// Registry resolves the adapter for a channel. Channels without a
// configured gateway resolve to a NoopAdapter so delivery code never
// branches on deployment configuration.
type Registry struct {
	adapters map[entity.Channel]Adapter
}

// NewRegistry builds a registry from the given adapters. Later adapters
// win on channel collisions.
func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[entity.Channel]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Channel()] = a
	}
	return &Registry{adapters: m}
}

// Has reports whether ch has a configured gateway adapter.
func (r *Registry) Has(ch entity.Channel) bool {
	_, ok := r.adapters[ch]
	return ok
}

// Get returns the adapter registered for ch, or a fresh NoopAdapter when
// none is.
func (r *Registry) Get(ch entity.Channel) Adapter {
	if a, ok := r.adapters[ch]; ok {
		return a
	}
	return NewNoopAdapter(ch)
}
