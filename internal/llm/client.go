// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Conversation client: sends history to a provider and records the exchange

package llm

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sony-level/fourteen/internal/history"
)

// Client asks questions against a conversation history
type Client struct {
	provider    Provider
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewClient creates a client for the given provider. MaxTokens and
// Temperature are taken from config when non-nil.
func NewClient(provider Provider, config *ProviderConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config == nil {
		config = &ProviderConfig{}
	}
	config.WithDefaults()
	return &Client{
		provider:    provider,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		logger:      logger,
	}
}

// Provider returns the underlying provider
func (c *Client) Provider() Provider {
	return c.provider
}

// Ask sends the history plus question and returns the reply. Both the
// question and the reply are appended to hist only on success. Failures are
// returned as *ServiceError.
func (c *Client) Ask(ctx context.Context, hist *history.History, question string) (string, error) {
	messages := append(hist.Messages(), history.Message{Role: history.RoleUser, Content: question})

	c.logger.Debug("sending completion",
		zap.String("provider", c.provider.Name()),
		zap.Int("messages", len(messages)))

	reply, err := c.provider.Complete(ctx, &CompletionRequest{
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err == nil && strings.TrimSpace(reply) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		se := Categorize(err)
		c.logger.Warn("completion failed",
			zap.String("provider", c.provider.Name()),
			zap.String("category", se.Category.String()),
			zap.Error(err))
		return "", se
	}

	hist.Add(history.RoleUser, question)
	hist.Add(history.RoleAssistant, reply)
	return reply, nil
}

// Reask rewinds hist to before the index-th question and asks it again
func (c *Client) Reask(ctx context.Context, hist *history.History, index int) (string, error) {
	question, err := hist.Rewind(index)
	if err != nil {
		return "", err
	}
	return c.Ask(ctx, hist, question)
}
