package core

import (
	"fmt"
	"strings"
)

// ProviderRegistry is an ordered, append-only collection of provider
// descriptors. Registration happens once at startup; afterwards the registry
// is read-only and safe for unsynchronized concurrent reads. Iteration order
// equals registration order and defines the tie-break priority when more than
// one provider recognizes a project.
type ProviderRegistry struct {
	ordered []Provider
	byID    map[string]Provider
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{byID: make(map[string]Provider)}
}

func (r *ProviderRegistry) Register(provider Provider) error {
	if provider == nil {
		return fmt.Errorf("core: provider is nil")
	}
	id := strings.TrimSpace(provider.ID())
	if id == "" {
		return fmt.Errorf("core: provider id is required")
	}
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("core: provider already registered: %s", id)
	}
	r.byID[id] = provider
	r.ordered = append(r.ordered, provider)
	return nil
}

func (r *ProviderRegistry) Get(providerID string) (Provider, bool) {
	id := strings.TrimSpace(providerID)
	if id == "" {
		return nil, false
	}
	provider, ok := r.byID[id]
	return provider, ok
}

// All returns the providers in registration order. The returned slice is a
// copy; callers may not mutate registry state through it.
func (r *ProviderRegistry) All() []Provider {
	out := make([]Provider, len(r.ordered))
	copy(out, r.ordered)
	return out
}
