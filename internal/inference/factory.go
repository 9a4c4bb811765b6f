package inference

import (
	"fmt"

	"leakscan/internal/config"
	"leakscan/internal/port"
)

// ProviderFactory is a function that creates an InferenceProvider from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.InferenceProvider, error)

// registry of provider factories, populated by RegisterProvider from main.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewProvider creates an InferenceProvider from a provider config using the registered factory.
func NewProvider(cfg *config.ProviderConfig) (port.InferenceProvider, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown inference provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewStageProvider builds the provider chain for one pipeline stage. A single
// configured provider is returned as is; two or more are wrapped in a
// FallbackProvider.
func NewStageProvider(stage *config.StageConfig) (port.InferenceProvider, error) {
	cfgs := stage.Providers()
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no inference provider configured")
	}

	chain := make([]port.InferenceProvider, 0, len(cfgs))
	names := make([]string, 0, len(cfgs))
	for _, cfg := range cfgs {
		p, err := NewProvider(cfg)
		if err != nil {
			return nil, err
		}
		chain = append(chain, p)
		names = append(names, cfg.Provider)
	}

	if len(chain) == 1 {
		return chain[0], nil
	}
	return NewFallbackProvider(chain, names), nil
}
