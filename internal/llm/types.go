// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// LLM types and interfaces for chat completion

package llm

import (
	"context"

	"github.com/sony-level/fourteen/internal/history"
)

// ProviderType identifies the LLM provider
type ProviderType string

const (
	ProviderOpenAI      ProviderType = "openai"
	ProviderSiliconFlow ProviderType = "siliconflow"
	ProviderMistral     ProviderType = "mistral"
	ProviderOllama      ProviderType = "ollama"
	ProviderHTTP        ProviderType = "http"
	ProviderMock        ProviderType = "mock"
)

// SupportedProviders lists all provider types
var SupportedProviders = []ProviderType{
	ProviderSiliconFlow,
	ProviderOpenAI,
	ProviderMistral,
	ProviderOllama,
	ProviderHTTP,
	ProviderMock,
}

// Provider interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string
	// Complete sends the conversation and returns the assistant reply
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}

// CompletionRequest is one chat completion call
type CompletionRequest struct {
	Messages    []history.Message
	MaxTokens   int
	Temperature float32
}
