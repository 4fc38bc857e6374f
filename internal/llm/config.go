// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Provider resolution: explicit settings first, then auto-selection by available keys

package llm

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Well-known endpoints
const (
	SiliconFlowBaseURL = "https://api.siliconflow.cn/v1"
	MistralBaseURL     = "https://api.mistral.ai/v1"
	OllamaBaseURL      = "http://localhost:11434/v1"
)

// Environment variables consulted for tokens and auto-selection
const (
	EnvToken       = "FOURTEEN_TOKEN"
	EnvAPIKey      = "API_KEY"
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvMistralKey  = "MISTRAL_API_KEY"
	EnvOllamaHost  = "OLLAMA_HOST"
	ollamaCheckTTL = 2 * time.Second
)

// Settings are the merged provider settings from flags, env and config file
type Settings struct {
	Provider    string
	Model       string
	Endpoint    string
	Token       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// ProviderSelectionInfo contains details about how a provider was selected
type ProviderSelectionInfo struct {
	Provider   ProviderType
	Source     string // "configured" or "auto"
	AutoReason string
}

// Resolver turns settings into a provider config
type Resolver struct {
	Getenv          func(string) string
	OllamaAvailable func() bool
}

// DefaultResolver reads the process environment and checks for a local Ollama
var DefaultResolver = &Resolver{
	Getenv:          os.Getenv,
	OllamaAvailable: IsOllamaAvailable,
}

// ResolveProviderConfig resolves settings with the default resolver
func ResolveProviderConfig(s Settings) (*ProviderConfig, *ProviderSelectionInfo) {
	return DefaultResolver.Resolve(s)
}

// Resolve builds a ProviderConfig. An empty provider is auto-selected.
func (r *Resolver) Resolve(s Settings) (*ProviderConfig, *ProviderSelectionInfo) {
	config := &ProviderConfig{
		Type:        ProviderType(strings.ToLower(strings.TrimSpace(s.Provider))),
		Endpoint:    s.Endpoint,
		Model:       s.Model,
		Timeout:     s.Timeout,
		MaxTokens:   s.MaxTokens,
		Temperature: float32(s.Temperature),
	}
	info := &ProviderSelectionInfo{Source: "configured"}

	if config.Type == "" {
		config.Type, info.AutoReason = r.autoSelect()
		info.Source = "auto"
	}
	info.Provider = config.Type

	config.Token = r.providerToken(config.Type, s.Token)

	return config.WithDefaults(), info
}

// autoSelect chooses the best available provider
// Priority: siliconflow > openai > mistral > ollama > mock
func (r *Resolver) autoSelect() (ProviderType, string) {
	if r.Getenv(EnvToken) != "" {
		return ProviderSiliconFlow, EnvToken + " found"
	}
	if r.Getenv(EnvAPIKey) != "" {
		return ProviderSiliconFlow, EnvAPIKey + " found"
	}
	if r.Getenv(EnvOpenAIKey) != "" {
		return ProviderOpenAI, EnvOpenAIKey + " found"
	}
	if r.Getenv(EnvMistralKey) != "" {
		return ProviderMistral, EnvMistralKey + " found"
	}
	if r.OllamaAvailable != nil && r.OllamaAvailable() {
		return ProviderOllama, "local Ollama instance detected"
	}
	return ProviderMock, "no API keys found, using offline mode"
}

// providerToken returns the configured token or the provider's env key
func (r *Resolver) providerToken(pt ProviderType, configured string) string {
	if configured != "" {
		return configured
	}

	switch pt {
	case ProviderOpenAI:
		return r.Getenv(EnvOpenAIKey)
	case ProviderMistral:
		return r.Getenv(EnvMistralKey)
	case ProviderOllama, ProviderMock:
		return ""
	default:
		if tok := r.Getenv(EnvToken); tok != "" {
			return tok
		}
		return r.Getenv(EnvAPIKey)
	}
}

// SelectionDescription returns a human-readable description of provider selection
func SelectionDescription(info *ProviderSelectionInfo) string {
	if info.Source == "auto" {
		if info.AutoReason != "" {
			return "auto-selected: " + info.AutoReason
		}
		return "auto-selected based on available API keys"
	}
	return "configured"
}

// OllamaEndpoint returns the OpenAI-compatible base URL of the local Ollama
func OllamaEndpoint() string {
	host := os.Getenv(EnvOllamaHost)
	if host == "" {
		return OllamaBaseURL
	}
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// IsOllamaAvailable checks if Ollama is answering on its model listing endpoint
func IsOllamaAvailable() bool {
	cfg := openai.DefaultConfig("ollama")
	cfg.BaseURL = OllamaEndpoint()
	client := openai.NewClientWithConfig(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), ollamaCheckTTL)
	defer cancel()

	_, err := client.ListModels(ctx)
	return err == nil
}
