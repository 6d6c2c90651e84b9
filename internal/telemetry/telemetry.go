// Package telemetry records each chat invocation for later dataset building.
// Sinks are optional; with nothing configured every call is a no-op.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/ml-interface/internal/config"
	"github.com/jwebster45206/ml-interface/pkg/chat"
)

// Record is one chat invocation: what came in, what was sent and what came back.
type Record struct {
	ID                uuid.UUID          `json:"id"`
	Backend           string             `json:"backend"`
	Model             string             `json:"model,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	Input             json.RawMessage    `json:"input"`
	Prompt            string             `json:"prompt"`
	Messages          []chat.ChatMessage `json:"messages"`
	Reply             string             `json:"reply"`
	Raw               json.RawMessage    `json:"raw,omitempty"`
	DispositionChange *int               `json:"disposition_change,omitempty"`
}

// NewRecord starts a record with a fresh ID.
func NewRecord(backend string) *Record {
	return &Record{
		ID:        uuid.New(),
		Backend:   backend,
		CreatedAt: time.Now().UTC(),
	}
}

// Sink stores records.
type Sink interface {
	Send(ctx context.Context, r *Record) error
	Close() error
}

// Multi sends each record to every sink.
type Multi []Sink

func (m Multi) Send(ctx context.Context, r *Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open connects every configured sink. A sink that cannot connect is logged
// and left out. The result is nil when no sink is available.
func Open(ctx context.Context, cfg config.TelemetryConfig, logger *slog.Logger) Sink {
	var sinks Multi

	if cfg.RedisURL != "" {
		q, err := NewRedisQueue(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Warn("Telemetry queue unavailable", "error", err)
		} else {
			sinks = append(sinks, q)
		}
	}

	if cfg.MongoDBURI != "" {
		store, err := NewMongoStore(ctx, cfg.MongoDBURI, cfg.Database, logger)
		if err != nil {
			logger.Warn("Telemetry store unavailable", "error", err)
		} else {
			sinks = append(sinks, store)
		}
	}

	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	default:
		return sinks
	}
}

// Emit sends r to s and logs a failure instead of returning it. A nil sink
// does nothing.
func Emit(ctx context.Context, s Sink, r *Record, logger *slog.Logger) {
	if s == nil || r == nil {
		return
	}
	if err := s.Send(ctx, r); err != nil {
		logger.Warn("Failed to send telemetry", "id", r.ID, "error", err)
		return
	}
	logger.Debug("Telemetry sent", "id", r.ID, "backend", r.Backend)
}
