package providers

import (
	"fmt"
	"sync"

	"github.com/teilomillet/cardsplit/config"
)

// ProviderConstructor builds a provider for one batch from its credential
// and the resolved settings.
type ProviderConstructor func(apiKey string, settings config.Settings) Provider

// ProviderRegistry maps provider kinds to constructors. It is safe for
// concurrent use.
type ProviderRegistry struct {
	providers map[config.ProviderKind]ProviderConstructor
	mutex     sync.RWMutex
}

// NewProviderRegistry creates a registry with the given kinds registered.
// With no arguments every known provider is registered.
func NewProviderRegistry(kinds ...config.ProviderKind) *ProviderRegistry {
	registry := &ProviderRegistry{
		providers: make(map[config.ProviderKind]ProviderConstructor),
	}

	known := getKnownProviders()
	if len(kinds) == 0 {
		for kind, constructor := range known {
			registry.providers[kind] = constructor
		}
		return registry
	}
	for _, kind := range kinds {
		if constructor, ok := known[kind]; ok {
			registry.providers[kind] = constructor
		}
	}
	return registry
}

func getKnownProviders() map[config.ProviderKind]ProviderConstructor {
	return map[config.ProviderKind]ProviderConstructor{
		config.ProviderOpenAI: NewOpenAIProvider,
		config.ProviderGemini: NewGeminiProvider,
	}
}

// Register adds or replaces the constructor for kind.
func (r *ProviderRegistry) Register(kind config.ProviderKind, constructor ProviderConstructor) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.providers[kind] = constructor
}

// Get builds the provider selected by settings.Provider.
func (r *ProviderRegistry) Get(apiKey string, settings config.Settings) (Provider, error) {
	r.mutex.RLock()
	constructor, exists := r.providers[settings.Provider]
	r.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown provider: %s", settings.Provider)
	}
	return constructor(apiKey, settings), nil
}

// Kinds lists the registered provider kinds.
func (r *ProviderRegistry) Kinds() []config.ProviderKind {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	kinds := make([]config.ProviderKind, 0, len(r.providers))
	for kind := range r.providers {
		kinds = append(kinds, kind)
	}
	return kinds
}

var (
	defaultRegistry     *ProviderRegistry
	defaultRegistryOnce sync.Once
)

// GetDefaultRegistry returns the process-wide registry with every known
// provider registered.
func GetDefaultRegistry() *ProviderRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewProviderRegistry()
	})
	return defaultRegistry
}
