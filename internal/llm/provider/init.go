// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Provider registration - registers all providers with the LLM registry

package provider

import (
	"github.com/sony-level/fourteen/internal/llm"
)

func init() {
	RegisterProviders(llm.DefaultRegistry)
}

// RegisterProviders registers all built-in providers with reg
func RegisterProviders(reg *llm.Registry) {
	// Set mock factory first (needed for fallback)
	reg.SetMockFactory(func(config *llm.ProviderConfig) (llm.Provider, error) {
		return NewMockProvider(), nil
	})

	// Every remote provider speaks the OpenAI chat completions protocol
	for _, pt := range []llm.ProviderType{
		llm.ProviderOpenAI,
		llm.ProviderSiliconFlow,
		llm.ProviderMistral,
		llm.ProviderOllama,
		llm.ProviderHTTP,
	} {
		reg.Register(pt, func(config *llm.ProviderConfig) (llm.Provider, error) {
			return NewOpenAIProvider(config)
		})
	}
}
