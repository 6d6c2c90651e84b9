package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/tidwall/gjson"

	"github.com/jwebster45206/ml-interface/internal/services"
	"github.com/jwebster45206/ml-interface/internal/telemetry"
	"github.com/jwebster45206/ml-interface/pkg/chat"
	"github.com/jwebster45206/ml-interface/pkg/prompts"
	"github.com/jwebster45206/ml-interface/pkg/snapshot"
	"github.com/jwebster45206/ml-interface/pkg/textfilter"
)

// Basic sends only the actor's name and the player's line. It ignores stats,
// history and disposition.
type Basic struct {
	name        string
	llm         services.LLMService
	temperature float64
	sink        telemetry.Sink
	logger      *slog.Logger
}

var (
	_ Backend   = (*Basic)(nil)
	_ Responder = (*Basic)(nil)
)

func NewBasic(name string, llm services.LLMService, deps Deps) *Basic {
	return &Basic{
		name:        name,
		llm:         llm,
		temperature: deps.Config.Temperature,
		sink:        deps.Telemetry,
		logger:      deps.Logger.With("backend", name),
	}
}

func (b *Basic) Predict(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	s, err := parseBasicInput(data)
	if err != nil {
		return "", err
	}
	resp, err := b.respond(ctx, s, data)
	if err != nil {
		return "", err
	}
	return resp.Result.String(), nil
}

// parseBasicInput accepts a full snapshot or the older flat form where actor
// is just the actor's name: {"actor": "Fargoth", "prompt": "..."}.
func parseBasicInput(data []byte) (*snapshot.Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return snapshot.Parse(data)
	}
	actor := gjson.GetBytes(data, "actor")
	if actor.Type != gjson.String {
		return snapshot.Parse(data)
	}
	s := &snapshot.Snapshot{Prompt: gjson.GetBytes(data, "prompt").String()}
	s.Actor.Name = actor.String()
	return s, nil
}

func (b *Basic) Respond(ctx context.Context, s *snapshot.Snapshot) (*Response, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return b.respond(ctx, s, data)
}

func (b *Basic) respond(ctx context.Context, s *snapshot.Snapshot, input []byte) (*Response, error) {
	if s.Actor.Name == "" {
		return nil, fmt.Errorf("%w: actor.name is required", snapshot.ErrInvalidSnapshot)
	}

	messages := prompts.BasicMessages(s.Actor.Name, s.Prompt)
	out, err := b.llm.Chat(ctx, chat.GenerationRequest{Temperature: b.temperature, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	reply := textfilter.StripQuotes(out.Message)

	rec := telemetry.NewRecord(b.name)
	rec.Model = out.Model
	rec.Input = input
	rec.Prompt = s.Prompt
	rec.Messages = messages
	rec.Reply = reply
	rec.Raw = out.Raw
	telemetry.Emit(ctx, b.sink, rec, b.logger)

	return &Response{
		Result:   chat.GenerationResult{Reply: reply},
		Messages: messages,
	}, nil
}
