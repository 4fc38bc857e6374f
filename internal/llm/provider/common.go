// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Common utilities shared across providers

package provider

import (
	"github.com/sashabaranov/go-openai"

	"github.com/sony-level/fourteen/internal/history"
)

// toChatMessages converts history messages to the wire form
func toChatMessages(msgs []history.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}
