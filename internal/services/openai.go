package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/jwebster45206/ml-interface/internal/config"
	"github.com/jwebster45206/ml-interface/pkg/chat"
)

// OpenAIService implements LLMService using the OpenAI chat completions API.
type OpenAIService struct {
	client    oai.Client
	modelName string
	logger    *slog.Logger
}

// NewOpenAIService builds a client from the OpenAI settings. BaseURL may
// point at any OpenAI-compatible endpoint.
func NewOpenAIService(cfg config.ProviderConfig, logger *slog.Logger) (*OpenAIService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: OPENAI_API_KEY is not set")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
		// One invocation, one attempt.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIService{
		client:    oai.NewClient(reqOpts...),
		modelName: cfg.Model,
		logger:    logger,
	}, nil
}

// Chat sends the conversation and returns the first choice.
func (o *OpenAIService) Chat(ctx context.Context, gr chat.GenerationRequest) (*chat.ChatResponse, error) {
	params, err := o.buildParams(gr)
	if err != nil {
		return nil, fmt.Errorf("openai: build params: %w", err)
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: response has no choices: %w", ErrEmptyResponse)
	}
	content := resp.Choices[0].Message.Content

	o.logger.Debug("OpenAI chat completed",
		"model", string(params.Model),
		"message_count", len(gr.Messages),
		"completion_tokens", resp.Usage.CompletionTokens,
		"latency", time.Since(start))

	var raw json.RawMessage
	if r := resp.RawJSON(); r != "" {
		raw = json.RawMessage(r)
	}
	return &chat.ChatResponse{
		Message: content,
		Model:   string(params.Model),
		Raw:     raw,
	}, nil
}

func (o *OpenAIService) buildParams(gr chat.GenerationRequest) (oai.ChatCompletionNewParams, error) {
	messages := make([]oai.ChatCompletionMessageParamUnion, 0, len(gr.Messages))
	for _, m := range gr.Messages {
		msg, err := convertMessage(m)
		if err != nil {
			return oai.ChatCompletionNewParams{}, err
		}
		messages = append(messages, msg)
	}

	return oai.ChatCompletionNewParams{
		Model:       shared.ChatModel(modelOrDefault(gr.Model, o.modelName)),
		Messages:    messages,
		Temperature: param.NewOpt(gr.Temperature),
	}, nil
}

// convertMessage converts a chat message to an OpenAI SDK message param.
func convertMessage(m chat.ChatMessage) (oai.ChatCompletionMessageParamUnion, error) {
	switch m.Role {
	case chat.ChatRoleSystem:
		return oai.SystemMessage(m.Content), nil
	case chat.ChatRoleUser:
		return oai.UserMessage(m.Content), nil
	case chat.ChatRoleAgent:
		asst := oai.ChatCompletionAssistantMessageParam{}
		asst.Content.OfString = oai.String(m.Content)
		return oai.ChatCompletionMessageParamUnion{OfAssistant: &asst}, nil
	default:
		return oai.ChatCompletionMessageParamUnion{}, fmt.Errorf("openai: unknown message role %q", m.Role)
	}
}
