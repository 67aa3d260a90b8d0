package translation

import (
	"fmt"
	"strings"
	"time"

	"horse.fit/polyglot/internal/providerconf"
)

// Registry stores translation providers in dispatch priority order.
type Registry struct {
	order  []Provider
	byName map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Provider)}
}

// NewRegistryFromSpecs builds an ordered registry of HTTP providers from the
// validated provider config. defaultTimeout applies to specs without one.
func NewRegistryFromSpecs(specs []providerconf.ProviderSpec, defaultTimeout time.Duration) (*Registry, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}

	registry := NewRegistry()
	for _, spec := range specs {
		provider := NewLibreProvider(spec.ID, spec.BaseURL, spec.Timeout(defaultTimeout))
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register appends one provider to the priority order.
func (r *Registry) Register(provider Provider) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if provider == nil {
		return fmt.Errorf("provider is nil")
	}
	name := strings.ToLower(strings.TrimSpace(provider.Name()))
	if name == "" {
		return fmt.Errorf("provider name is required")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("provider %q is already registered", name)
	}
	r.byName[name] = provider
	r.order = append(r.order, provider)
	return nil
}

// Ordered returns providers in priority order.
func (r *Registry) Ordered() []Provider {
	if r == nil {
		return nil
	}
	out := make([]Provider, len(r.order))
	copy(out, r.order)
	return out
}

// Provider resolves a provider by name.
func (r *Registry) Provider(name string) (Provider, error) {
	if r == nil || len(r.byName) == 0 {
		return nil, fmt.Errorf("no translation providers are registered")
	}
	provider, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("translation provider %q is not registered (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return provider, nil
}

// Names returns provider names in priority order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.order))
	for _, provider := range r.order {
		names = append(names, provider.Name())
	}
	return names
}
