package reposync

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-repo-sync/core"
)

// ProviderPack bundles providers a downstream module contributes before the
// service is built, e.g. an enterprise GitLab instance next to the default
// hosted providers.
type ProviderPack struct {
	Name      string
	Providers []core.Provider
}

type extensionHooks struct {
	mu            sync.RWMutex
	providerPacks map[string]ProviderPack
}

var hooks = &extensionHooks{
	providerPacks: map[string]ProviderPack{},
}

// RegisterProviderPack stages a named provider pack for installation into
// every registry built afterwards. Pack names must be unique.
func RegisterProviderPack(pack ProviderPack) error {
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("reposync: provider pack name is required")
	}
	if len(pack.Providers) == 0 {
		return fmt.Errorf("reposync: provider pack %q has no providers", name)
	}

	normalized := ProviderPack{
		Name:      name,
		Providers: append([]core.Provider(nil), pack.Providers...),
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if _, exists := hooks.providerPacks[name]; exists {
		return fmt.Errorf("reposync: provider pack %q is already registered", name)
	}
	hooks.providerPacks[name] = normalized
	return nil
}

// ProviderPacks returns the staged packs in name order.
func ProviderPacks() []ProviderPack {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	names := make([]string, 0, len(hooks.providerPacks))
	for name := range hooks.providerPacks {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]ProviderPack, 0, len(names))
	for _, name := range names {
		out = append(out, hooks.providerPacks[name])
	}
	return out
}

// ResetProviderPacks clears staged packs; intended for tests.
func ResetProviderPacks() {
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	hooks.providerPacks = map[string]ProviderPack{}
}

func installProviderPacks(registry core.Registry) error {
	if registry == nil {
		return fmt.Errorf("reposync: registry is required")
	}
	for _, pack := range ProviderPacks() {
		for _, provider := range pack.Providers {
			if provider == nil {
				return fmt.Errorf("reposync: provider pack %q contains a nil provider", pack.Name)
			}
			if _, exists := registry.Get(provider.ID()); exists {
				continue
			}
			if err := registry.Register(provider); err != nil {
				return fmt.Errorf("reposync: install provider pack %q: %w", pack.Name, err)
			}
		}
	}
	return nil
}
