// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Mock LLM provider for testing and offline mode

package provider

import (
	"context"
	"sync"

	"github.com/sony-level/fourteen/internal/llm"
)

// OfflineReply is returned by the mock provider once its script is exhausted
const OfflineReply = "Offline mode: no language model is configured. " +
	"Set FOURTEEN_TOKEN, OPENAI_API_KEY or MISTRAL_API_KEY, or start a local Ollama, " +
	"then restart fourteen. Slash commands such as /readfile and /cd still work."

// MockProvider returns scripted replies in order
type MockProvider struct {
	mu       sync.Mutex
	replies  []string
	requests []*llm.CompletionRequest
}

// NewMockProvider creates a new mock provider
func NewMockProvider(replies ...string) *MockProvider {
	return &MockProvider{replies: replies}
}

// Name returns the provider name
func (p *MockProvider) Name() string {
	return "mock"
}

// Complete returns the next scripted reply, or OfflineReply
func (p *MockProvider) Complete(ctx context.Context, req *llm.CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)
	if len(p.replies) == 0 {
		return OfflineReply, nil
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply, nil
}

// Requests returns every request seen so far
func (p *MockProvider) Requests() []*llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*llm.CompletionRequest(nil), p.requests...)
}
