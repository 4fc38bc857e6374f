// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// LLM provider factory and configuration

package llm

import (
	"errors"
	"time"
)

// Defaults
const (
	DefaultTimeout     = 60 * time.Second
	MaxTimeout         = 300 * time.Second
	DefaultMaxTokens   = 2048
	DefaultTemperature = 0.7
)

// Provider errors
var (
	ErrUnknownProvider = errors.New("unknown provider type")
	ErrMissingEndpoint = errors.New("HTTP provider requires endpoint")
	ErrMissingToken    = errors.New("provider requires API token")
	ErrEmptyResponse   = errors.New("LLM returned empty response")
)

// ProviderConfig holds configuration for LLM providers
type ProviderConfig struct {
	Type        ProviderType  // Provider type: siliconflow, openai, mistral, ollama, http, mock
	Endpoint    string        // Base URL of an OpenAI-compatible API
	Model       string        // Model name (optional)
	Token       string        // Authentication token
	Timeout     time.Duration // Request timeout
	MaxTokens   int           // Completion token cap
	Temperature float32       // Sampling temperature
}

// Validate checks if the provider config is valid
func (c *ProviderConfig) Validate() error {
	switch c.Type {
	case ProviderHTTP:
		if c.Endpoint == "" {
			return ErrMissingEndpoint
		}
	case ProviderOpenAI, ProviderSiliconFlow, ProviderMistral:
		// Token validation happens in provider constructor
	case ProviderOllama, ProviderMock:
		// No validation required
	default:
		return ErrUnknownProvider
	}
	return nil
}

// WithDefaults applies default values to the config
func (c *ProviderConfig) WithDefaults() *ProviderConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Timeout > MaxTimeout {
		c.Timeout = MaxTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	return c
}

// MaskToken returns a masked version of the token for logging
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "[REDACTED]"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
