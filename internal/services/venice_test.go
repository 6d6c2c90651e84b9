package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/ml-interface/internal/config"
	"github.com/jwebster45206/ml-interface/pkg/chat"
)

func TestNewVeniceService(t *testing.T) {
	service, err := NewVeniceService(config.ProviderConfig{APIKey: "test-api-key", Model: "test-model"}, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.modelName != "test-model" {
		t.Errorf("Expected modelName test-model, got %s", service.modelName)
	}
	if service.baseURL != veniceBaseURL {
		t.Errorf("Expected default base URL, got %s", service.baseURL)
	}

	if _, err := NewVeniceService(config.ProviderConfig{Model: "test-model"}, discardLogger()); err == nil {
		t.Error("Expected error for missing API key")
	}
}

func TestVeniceService_Chat(t *testing.T) {
	var got VeniceChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Unexpected Authorization header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		_, _ = io.WriteString(w, `{"id":"1","model":"test-model","choices":[{"index":0,"message":{"role":"assistant","content":"Well met."},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	service, err := NewVeniceService(config.ProviderConfig{APIKey: "test-key", Model: "test-model", BaseURL: srv.URL}, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := service.Chat(context.Background(), chat.GenerationRequest{
		Model:       "override-model",
		Temperature: 0.9,
		Messages: []chat.ChatMessage{
			{Role: chat.ChatRoleSystem, Content: "You are Ajira."},
			{Role: chat.ChatRoleUser, Content: "Hello"},
		},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.Message != "Well met." {
		t.Errorf("Expected 'Well met.', got %q", resp.Message)
	}
	if got.Model != "override-model" {
		t.Errorf("Expected request model override-model, got %q", got.Model)
	}
	if got.Temperature != 0.9 {
		t.Errorf("Expected temperature 0.9, got %v", got.Temperature)
	}
	if len(got.Messages) != 2 {
		t.Errorf("Expected system messages to be passed through, got %d messages", len(got.Messages))
	}
	if got.VeniceParameters.IncludeVeniceSystemPrompt {
		t.Error("Expected Venice system prompt to be disabled")
	}
}

func TestVeniceService_ChatAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":{"message":"model not found","type":"invalid_request","code":"404"}}`)
	}))
	defer srv.Close()

	service, _ := NewVeniceService(config.ProviderConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, discardLogger())
	_, err := service.Chat(context.Background(), chat.GenerationRequest{
		Messages: []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "Hi"}},
	})
	if err == nil {
		t.Fatal("Expected API error")
	}
}

func TestVeniceService_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"chat-1","choices":[]}`)
	}))
	defer srv.Close()

	service, _ := NewVeniceService(config.ProviderConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, discardLogger())
	resp, err := service.Chat(context.Background(), chat.GenerationRequest{
		Messages: []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "Hi"}},
	})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("Expected ErrEmptyResponse, got %v", err)
	}
	if resp != nil {
		t.Errorf("Expected no response, got %+v", resp)
	}
}
