package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/jwebster45206/ml-interface/internal/config"
	"github.com/jwebster45206/ml-interface/internal/services"
	"github.com/jwebster45206/ml-interface/internal/telemetry"
	"github.com/jwebster45206/ml-interface/pkg/chat"
	"github.com/jwebster45206/ml-interface/pkg/prompts"
	"github.com/jwebster45206/ml-interface/pkg/snapshot"
	"github.com/jwebster45206/ml-interface/pkg/textfilter"
)

// Chat runs the full pipeline: synthesize the conversation, generate a
// reply, and optionally ask the model to rate its change in attitude.
type Chat struct {
	name         string
	llm          services.LLMService
	temperature  float64
	historyLimit int
	disposition  config.DispositionConfig
	rng          prompts.Rand
	sink         telemetry.Sink
	stderr       io.Writer
	logger       *slog.Logger
}

var (
	_ Backend   = (*Chat)(nil)
	_ Responder = (*Chat)(nil)
)

// NewChat wires a generation service into the pipeline. name is recorded in
// telemetry.
func NewChat(name string, llm services.LLMService, deps Deps) *Chat {
	cfg := deps.Config
	return &Chat{
		name:         name,
		llm:          llm,
		temperature:  cfg.Temperature,
		historyLimit: cfg.HistoryLimit,
		disposition:  cfg.Disposition,
		rng:          deps.Rand,
		sink:         deps.Telemetry,
		stderr:       deps.Stderr,
		logger:       deps.Logger.With("backend", name),
	}
}

// Predict reads and validates the snapshot at path and returns the reply,
// with the disposition change appended when rating is enabled.
func (c *Chat) Predict(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	s, err := snapshot.Parse(data)
	if err != nil {
		return "", err
	}
	if err := s.Validate(); err != nil {
		return "", err
	}

	resp, err := c.respond(ctx, s, data)
	if err != nil {
		return "", err
	}
	return resp.Result.String(), nil
}

// Respond answers a snapshot held in memory.
func (c *Chat) Respond(ctx context.Context, s *snapshot.Snapshot) (*Response, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return c.respond(ctx, s, data)
}

func (c *Chat) respond(ctx context.Context, s *snapshot.Snapshot, input []byte) (*Response, error) {
	messages, err := prompts.New().
		WithSnapshot(s).
		WithRand(c.rng).
		WithHistoryLimit(c.historyLimit).
		WithPersuasionFilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	req := chat.GenerationRequest{Temperature: c.temperature, Messages: messages}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation request: %w", err)
	}

	start := time.Now()
	primary, err := c.llm.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	c.logger.Debug("Reply generated",
		"actor", s.Actor.Name,
		"message_count", len(messages),
		"latency", time.Since(start))

	resp := &Response{
		Result:   chat.GenerationResult{Reply: textfilter.StripQuotes(primary.Message)},
		Messages: messages,
	}

	if c.disposition.Enabled {
		if err := c.rate(ctx, messages, primary.Message, resp); err != nil {
			return nil, err
		}
	}

	rec := telemetry.NewRecord(c.name)
	rec.Model = primary.Model
	rec.Input = input
	rec.Prompt = s.Prompt
	rec.Messages = messages
	rec.Reply = resp.Result.Reply
	rec.Raw = primary.Raw
	rec.DispositionChange = resp.Result.DispositionChange
	telemetry.Emit(ctx, c.sink, rec, c.logger)

	return resp, nil
}

// rate asks for the disposition change in a second call. In strict mode any
// failure is returned; otherwise it is logged and the reply stands alone.
func (c *Chat) rate(ctx context.Context, messages []chat.ChatMessage, reply string, resp *Response) error {
	transcript := slices.Clone(messages)
	transcript = append(transcript,
		chat.ChatMessage{Role: chat.ChatRoleAgent, Content: reply},
		chat.ChatMessage{Role: chat.ChatRoleUser, Content: textfilter.DispositionInstruction},
	)

	rating, err := c.llm.Chat(ctx, chat.GenerationRequest{Temperature: c.temperature, Messages: transcript})
	if err != nil {
		return c.ratingFailed(fmt.Errorf("disposition generation failed: %w", err))
	}
	resp.Rating = rating.Message
	_, _ = fmt.Fprintln(c.stderr, rating.Message)

	change, err := textfilter.ExtractDisposition(rating.Message)
	if err != nil {
		return c.ratingFailed(err)
	}
	resp.Result.DispositionChange = &change
	return nil
}

func (c *Chat) ratingFailed(err error) error {
	if c.disposition.Strict {
		return err
	}
	c.logger.Warn("Returning reply without disposition change", "error", err)
	return nil
}
