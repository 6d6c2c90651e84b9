package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/ml-interface/pkg/chat"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	ChatFunc      func(ctx context.Context, req chat.GenerationRequest) (*chat.ChatResponse, error)
	InitModelFunc func(ctx context.Context) error

	// Track calls for testing
	ChatCalls      []chat.GenerationRequest
	InitModelCalls int

	responses []string
	mu        sync.Mutex // protects all fields above
}

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		ChatCalls: make([]chat.GenerationRequest, 0),
	}
}

// Chat records the request and answers from ChatFunc, then the queued
// responses, then "Mock response".
func (m *MockLLMAPI) Chat(ctx context.Context, req chat.GenerationRequest) (*chat.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := make([]chat.ChatMessage, len(req.Messages))
	copy(msgs, req.Messages)
	req.Messages = msgs
	m.ChatCalls = append(m.ChatCalls, req)

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}

	msg := "Mock response"
	if len(m.responses) > 0 {
		msg = m.responses[0]
		m.responses = m.responses[1:]
	}
	return &chat.ChatResponse{
		Message: msg,
		Model:   req.Model,
		Raw:     []byte(`{"mock":true}`),
	}, nil
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls++
	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx)
	}
	return nil
}

// SetResponses queues replies returned in order by Chat.
func (m *MockLLMAPI) SetResponses(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses[:0], responses...)
}

// SetChatError sets up the mock to return an error on Chat
func (m *MockLLMAPI) SetChatError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, req chat.GenerationRequest) (*chat.ChatResponse, error) {
		return nil, err
	}
}

// SetInitModelError sets up the mock to return an error on InitModel
func (m *MockLLMAPI) SetInitModelError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelFunc = func(ctx context.Context) error {
		return err
	}
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatCalls = make([]chat.GenerationRequest, 0)
	m.InitModelCalls = 0
	m.responses = nil
}

// GetCalls returns a copy of the recorded chat requests in a thread-safe way
func (m *MockLLMAPI) GetCalls() []chat.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]chat.GenerationRequest, len(m.ChatCalls))
	copy(calls, m.ChatCalls)
	return calls
}
