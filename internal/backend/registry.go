package backend

import (
	"context"
	"fmt"

	"github.com/jwebster45206/ml-interface/internal/services"
)

// Registered backend names.
const (
	NameEcho       = "dummy_readjson"
	NameOpenAIBase = "openai_chat_basic"
	NameOpenAI     = "openai_chat"
	NameAnthropic  = "anthropic_chat"
	NameVenice     = "venice_chat"
	NameOllama     = "ollama_chat"
	NameGemini     = "gemini_chat"
)

// DefaultRegistry returns a registry holding every built-in backend.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NameEcho, func(context.Context, Deps) (Backend, error) {
		return Echo{}, nil
	})

	r.Register(NameOpenAIBase, func(ctx context.Context, deps Deps) (Backend, error) {
		llm, err := services.NewOpenAIService(deps.Config.OpenAI, deps.Logger)
		if err != nil {
			return nil, err
		}
		return NewBasic(NameOpenAIBase, llm, deps), nil
	})

	r.Register(NameOpenAI, chatFactory(NameOpenAI, func(ctx context.Context, deps Deps) (services.LLMService, error) {
		return services.NewOpenAIService(deps.Config.OpenAI, deps.Logger)
	}))
	r.Register(NameAnthropic, chatFactory(NameAnthropic, func(ctx context.Context, deps Deps) (services.LLMService, error) {
		return services.NewAnthropicService(deps.Config.Anthropic, deps.Logger)
	}))
	r.Register(NameVenice, chatFactory(NameVenice, func(ctx context.Context, deps Deps) (services.LLMService, error) {
		return services.NewVeniceService(deps.Config.Venice, deps.Logger)
	}))
	r.Register(NameOllama, chatFactory(NameOllama, func(ctx context.Context, deps Deps) (services.LLMService, error) {
		return services.NewOllamaService(deps.Config.Ollama, deps.Logger), nil
	}))
	r.Register(NameGemini, chatFactory(NameGemini, func(ctx context.Context, deps Deps) (services.LLMService, error) {
		return services.NewGeminiService(ctx, deps.Config.Gemini, deps.Logger)
	}))

	return r
}

// chatFactory builds the full pipeline around a generation service,
// preparing its model first when the service needs that.
func chatFactory(name string, newLLM func(context.Context, Deps) (services.LLMService, error)) Factory {
	return func(ctx context.Context, deps Deps) (Backend, error) {
		if deps.Rand == nil {
			return nil, fmt.Errorf("%s: random source is required", name)
		}
		llm, err := newLLM(ctx, deps)
		if err != nil {
			return nil, err
		}
		if mi, ok := llm.(services.ModelInitializer); ok {
			if err := mi.InitModel(ctx); err != nil {
				return nil, fmt.Errorf("failed to initialize model: %w", err)
			}
		}
		return NewChat(name, llm, deps), nil
	}
}
