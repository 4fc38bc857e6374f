// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// OpenAI-compatible chat completion provider

package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/sony-level/fourteen/internal/llm"
)

// Default models per provider
const (
	DefaultOpenAIModel      = "gpt-4o-mini"
	DefaultSiliconFlowModel = "deepseek-ai/DeepSeek-V3"
	DefaultMistralModel     = "mistral-small-latest"
	DefaultOllamaModel      = "llama3.2"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions API
type OpenAIProvider struct {
	name    string
	model   string
	timeout time.Duration
	client  *openai.Client
}

// NewOpenAIProvider creates a provider for config.Type, filling in the
// endpoint and model that type defaults to
func NewOpenAIProvider(config *llm.ProviderConfig) (*OpenAIProvider, error) {
	endpoint, model, err := defaultsFor(config)
	if err != nil {
		return nil, err
	}

	token := config.Token
	switch config.Type {
	case llm.ProviderOllama:
		if token == "" {
			token = "ollama"
		}
	case llm.ProviderHTTP:
	default:
		if token == "" {
			return nil, fmt.Errorf("%s: %w", config.Type, llm.ErrMissingToken)
		}
	}

	cfg := openai.DefaultConfig(token)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = llm.DefaultTimeout
	}

	return &OpenAIProvider{
		name:    string(config.Type),
		model:   model,
		timeout: timeout,
		client:  openai.NewClientWithConfig(cfg),
	}, nil
}

func defaultsFor(config *llm.ProviderConfig) (endpoint, model string, err error) {
	endpoint, model = config.Endpoint, config.Model

	var defEndpoint, defModel string
	switch config.Type {
	case llm.ProviderOpenAI:
		defModel = DefaultOpenAIModel
	case llm.ProviderSiliconFlow:
		defEndpoint, defModel = llm.SiliconFlowBaseURL, DefaultSiliconFlowModel
	case llm.ProviderMistral:
		defEndpoint, defModel = llm.MistralBaseURL, DefaultMistralModel
	case llm.ProviderOllama:
		defEndpoint, defModel = llm.OllamaEndpoint(), DefaultOllamaModel
	case llm.ProviderHTTP:
		if endpoint == "" {
			return "", "", llm.ErrMissingEndpoint
		}
		defModel = DefaultOpenAIModel
	default:
		return "", "", fmt.Errorf("%w: %s", llm.ErrUnknownProvider, config.Type)
	}

	if endpoint == "" {
		endpoint = defEndpoint
	}
	if model == "" {
		model = defModel
	}
	return endpoint, model, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Model returns the model requested on every call
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Complete sends the conversation and returns the first choice
func (p *OpenAIProvider) Complete(ctx context.Context, req *llm.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toChatMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s request timed out after %s: %w", p.name, p.timeout, err)
		}
		return "", fmt.Errorf("%s request failed: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", fmt.Errorf("%s: finish reason content_filter", p.name)
	}
	if choice.Message.Content == "" {
		return "", llm.ErrEmptyResponse
	}
	return choice.Message.Content, nil
}
