package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jwebster45206/ml-interface/pkg/chat"
)

// ErrEmptyResponse is returned when a service answers without any candidate
// text.
var ErrEmptyResponse = errors.New("services: empty response")

// LLMService sends a conversation to a text-generation service and returns
// the top candidate.
type LLMService interface {
	// Chat generates one reply. An empty req.Model selects the service's
	// configured model.
	Chat(ctx context.Context, req chat.GenerationRequest) (*chat.ChatResponse, error)
}

// ModelInitializer is implemented by services that must prepare a model
// before the first request.
type ModelInitializer interface {
	InitModel(ctx context.Context) error
}

// splitChatMessages extracts and combines all system messages into a single
// system prompt and returns the remaining non-system messages.
func splitChatMessages(messages []chat.ChatMessage) (string, []chat.ChatMessage) {
	var systemParts []string
	var nonSystemMessages []chat.ChatMessage

	for _, msg := range messages {
		if msg.Role == chat.ChatRoleSystem {
			systemParts = append(systemParts, msg.Content)
		} else {
			nonSystemMessages = append(nonSystemMessages, msg)
		}
	}

	return strings.Join(systemParts, "\n\n"), nonSystemMessages
}

func modelOrDefault(requested, configured string) string {
	if requested != "" {
		return requested
	}
	return configured
}
