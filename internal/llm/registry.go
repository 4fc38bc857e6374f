// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Provider registry with factory pattern and graceful fallback

package llm

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ProviderFactory creates a provider from config
type ProviderFactory func(config *ProviderConfig) (Provider, error)

// Registry manages provider factories and handles fallback
type Registry struct {
	mu          sync.RWMutex
	factories   map[ProviderType]ProviderFactory
	mockFactory ProviderFactory
	logger      *zap.Logger
}

// DefaultRegistry is the global provider registry
var DefaultRegistry = NewRegistry()

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[ProviderType]ProviderFactory),
		logger:    zap.NewNop(),
	}
}

// SetMockFactory sets the mock provider factory for fallback
func (r *Registry) SetMockFactory(factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mockFactory = factory
	// Also register it as the mock provider type
	r.factories[ProviderMock] = factory
}

// Register adds a provider factory to the registry
func (r *Registry) Register(providerType ProviderType, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[providerType] = factory
}

// SetLogger sets the logger used to report fallbacks
func (r *Registry) SetLogger(logger *zap.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if logger == nil {
		logger = zap.NewNop()
	}
	r.logger = logger
}

// Get creates a provider, falling back to mock when the requested
// provider is unknown or cannot be constructed
func (r *Registry) Get(config *ProviderConfig) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if config == nil {
		config = &ProviderConfig{Type: ProviderMock}
	}
	config = config.WithDefaults()

	if err := config.Validate(); err != nil {
		r.logger.Warn("invalid provider config, using mock",
			zap.String("provider", string(config.Type)),
			zap.Error(err))
		return r.getMockProvider(config)
	}

	factory, ok := r.factories[config.Type]
	if !ok {
		r.logger.Warn("unknown provider, using mock", zap.String("provider", string(config.Type)))
		return r.getMockProvider(config)
	}

	prov, err := factory(config)
	if err != nil {
		r.logger.Warn("failed to create provider, using mock",
			zap.String("provider", string(config.Type)),
			zap.Error(err))
		return r.getMockProvider(config)
	}

	r.logger.Debug("provider ready",
		zap.String("provider", prov.Name()),
		zap.String("model", config.Model),
		zap.String("token", MaskToken(config.Token)))

	return prov
}

// getMockProvider returns a mock provider
func (r *Registry) getMockProvider(config *ProviderConfig) Provider {
	if r.mockFactory == nil {
		return &minimalMockProvider{}
	}
	prov, err := r.mockFactory(config)
	if err != nil {
		return &minimalMockProvider{}
	}
	return prov
}

// NewProvider creates a provider through the default registry
func NewProvider(config *ProviderConfig) Provider {
	return DefaultRegistry.Get(config)
}

// minimalMockProvider is a fallback when no mock factory is set
type minimalMockProvider struct{}

func (p *minimalMockProvider) Name() string { return "minimal-mock" }

func (p *minimalMockProvider) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	return "No LLM provider is configured.", nil
}
