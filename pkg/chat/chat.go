package chat

import (
	"encoding/json"
	"fmt"
)

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // NPC
	ChatRoleSystem = "system"    // Game world description
)

// ChatMessage represents a single role-tagged block of conversation context.
// Order matters: later messages are closer to the current turn.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// GenerationRequest is what a backend adapter sends to a text-generation service.
// An empty Model means the adapter's configured default.
type GenerationRequest struct {
	Model       string        `json:"model,omitempty"`
	Temperature float64       `json:"temperature"`
	Messages    []ChatMessage `json:"messages"`
}

// ChatResponse is the top candidate returned by a text-generation service.
type ChatResponse struct {
	Message string          `json:"message"`
	Model   string          `json:"model,omitempty"`
	Raw     json.RawMessage `json:"raw,omitempty"` // provider response body, kept for telemetry
}

// GenerationResult is the final product of one invocation.
// DispositionChange is nil when disposition extraction is disabled.
type GenerationResult struct {
	Reply             string
	DispositionChange *int
}

// String renders the result the way it is written to standard output.
func (r *GenerationResult) String() string {
	if r.DispositionChange == nil {
		return r.Reply
	}
	return fmt.Sprintf("%s [%d]", r.Reply, *r.DispositionChange)
}

func (gr *GenerationRequest) Validate() error {
	if len(gr.Messages) == 0 {
		return fmt.Errorf("no messages provided")
	}
	for i, m := range gr.Messages {
		switch m.Role {
		case ChatRoleUser, ChatRoleAgent, ChatRoleSystem:
		default:
			return fmt.Errorf("message %d has unknown role %q", i, m.Role)
		}
	}
	return nil
}
