package parser

import (
	"fmt"

	"ledgerd/internal/config"
	"ledgerd/internal/port"
)

// ProviderFactory is a function that creates a ChatModel from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.ChatModel, error)

// registry of model provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a model provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewModel creates a ChatModel from a provider config using the registered factory.
func NewModel(cfg *config.ParserProviderConfig) (port.ChatModel, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
