package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/jwebster45206/ml-interface/internal/config"
	"github.com/jwebster45206/ml-interface/pkg/chat"
)

// GeminiService implements LLMService for Google Gemini.
type GeminiService struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

func NewGeminiService(ctx context.Context, cfg config.ProviderConfig, logger *slog.Logger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: GEMINI_API_KEY is not set")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiService{client: client, modelName: cfg.Model, logger: logger}, nil
}

// Chat sends the conversation to Gemini. System messages become the system
// instruction and assistant messages take the "model" role.
func (g *GeminiService) Chat(ctx context.Context, gr chat.GenerationRequest) (*chat.ChatResponse, error) {
	system, contents := toGeminiContents(gr.Messages)
	model := modelOrDefault(gr.Model, g.modelName)

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(gr.Temperature)),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	start := time.Now()
	res, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	content, err := candidateText(res)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("Gemini chat completed",
		"model", model,
		"message_count", len(gr.Messages),
		"latency", time.Since(start))

	raw, err := json.Marshal(res)
	if err != nil {
		g.logger.Warn("Failed to encode Gemini response for telemetry", "error", err)
		raw = nil
	}
	return &chat.ChatResponse{Message: content, Model: model, Raw: raw}, nil
}

func toGeminiContents(messages []chat.ChatMessage) (string, []*genai.Content) {
	system, rest := splitChatMessages(messages)
	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		role := genai.Role(genai.RoleUser)
		if m.Role == chat.ChatRoleAgent {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return system, contents
}

// candidateText joins the text parts of the first candidate. Blocked prompts
// come back without candidates.
func candidateText(res *genai.GenerateContentResponse) (string, error) {
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: response has no candidates: %w", ErrEmptyResponse)
	}
	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini: candidate has no text: %w", ErrEmptyResponse)
	}
	return sb.String(), nil
}
